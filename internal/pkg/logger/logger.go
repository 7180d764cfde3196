package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options - параметры логгера процесса
type Options struct {
	Level   string
	Format  string // json | console, пусто - по уровню
	Service string
}

// New собирает zap-логгер. Уровень debug без явного формата
// переключает вывод в цветной console для локальной разработки.
func New(opts Options) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "json"
		if level == zapcore.DebugLevel {
			format = "console"
		}
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "json":
	case "console":
		cfg.Development = true
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.Service != "" {
		log = log.With(zap.String("service", opts.Service))
	}

	return log, nil
}
