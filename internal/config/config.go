package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Log          LogConfig
	Worker       WorkerConfig
	ArcGIS       ArcGISConfig
	Submission   SubmissionConfig
	Reachability ReachabilityConfig
	CatalogPath  string
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type CacheConfig struct {
	AmenityCacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	BatchSize         int
	// RetryIdle - через сколько неподтверждённое сообщение читается повторно
	RetryIdle         time.Duration
}

// ArcGISConfig - настройки клиента ArcGIS feature services
type ArcGISConfig struct {
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// SubmissionConfig - настройки отправки анкеты в таблицу
type SubmissionConfig struct {
	WebhookURL     string
	RequestTimeout time.Duration
	PublishEvents  bool

	// SelectionLimits - максимум отмеченных чекбоксов в группе (near_miss:2)
	SelectionLimits map[string]int
}

type ReachabilityConfig struct {
	Debounce       time.Duration
	FeatureLimit   int
	BufferLimit    int
	SessionIdleTTL time.Duration
	RefreshTimeout time.Duration
	CircleSegments int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env необязателен: в контейнере всё приходит через окружение
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CORSOrigins: viper.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		Cache: CacheConfig{
			AmenityCacheTTL: time.Duration(viper.GetInt("AMENITY_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			BatchSize:         viper.GetInt("WORKER_BATCH_SIZE"),
			RetryIdle:         time.Duration(viper.GetInt("WORKER_RETRY_IDLE")) * time.Second,
		},
		ArcGIS: ArcGISConfig{
			RequestTimeout:    time.Duration(viper.GetInt("ARCGIS_REQUEST_TIMEOUT")) * time.Second,
			RequestsPerSecond: viper.GetFloat64("ARCGIS_RPS"),
			Burst:             viper.GetInt("ARCGIS_BURST"),
			UserAgent:         viper.GetString("ARCGIS_USER_AGENT"),
		},
		Submission: SubmissionConfig{
			WebhookURL:      viper.GetString("SUBMISSION_WEBHOOK_URL"),
			RequestTimeout:  time.Duration(viper.GetInt("SUBMISSION_REQUEST_TIMEOUT")) * time.Second,
			PublishEvents:   viper.GetBool("SUBMISSION_PUBLISH_EVENTS"),
			SelectionLimits: parseSelectionLimits(viper.GetString("SUBMISSION_SELECTION_LIMITS")),
		},
		Reachability: ReachabilityConfig{
			Debounce:       time.Duration(viper.GetInt("REACH_DEBOUNCE_MS")) * time.Millisecond,
			FeatureLimit:   viper.GetInt("REACH_FEATURE_LIMIT"),
			BufferLimit:    viper.GetInt("REACH_BUFFER_LIMIT"),
			SessionIdleTTL: time.Duration(viper.GetInt("REACH_SESSION_IDLE_TTL")) * time.Second,
			RefreshTimeout: time.Duration(viper.GetInt("REACH_REFRESH_TIMEOUT")) * time.Second,
			CircleSegments: viper.GetInt("REACH_CIRCLE_SEGMENTS"),
		},
		CatalogPath: viper.GetString("CATALOG_PATH"),
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults - значения по умолчанию для незаданных параметров
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 2
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Cache.AmenityCacheTTL == 0 {
		c.Cache.AmenityCacheTTL = 10 * time.Minute
	}
	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "survey-submission-archivers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.BatchSize == 0 {
		c.Worker.BatchSize = 20
	}
	if c.Worker.RetryIdle == 0 {
		c.Worker.RetryIdle = 30 * time.Second
	}
	if c.ArcGIS.RequestTimeout == 0 {
		c.ArcGIS.RequestTimeout = 15 * time.Second
	}
	if c.ArcGIS.RequestsPerSecond == 0 {
		c.ArcGIS.RequestsPerSecond = 5
	}
	if c.ArcGIS.Burst == 0 {
		c.ArcGIS.Burst = 6
	}
	if c.ArcGIS.UserAgent == "" {
		c.ArcGIS.UserAgent = "survey-reachability/1.0"
	}
	if c.Submission.RequestTimeout == 0 {
		c.Submission.RequestTimeout = 20 * time.Second
	}
	if len(c.Submission.SelectionLimits) == 0 {
		c.Submission.SelectionLimits = map[string]int{"near_miss": 2}
	}
	if c.Reachability.Debounce == 0 {
		c.Reachability.Debounce = 250 * time.Millisecond
	}
	if c.Reachability.FeatureLimit == 0 {
		c.Reachability.FeatureLimit = 2000
	}
	if c.Reachability.BufferLimit == 0 {
		c.Reachability.BufferLimit = 1000
	}
	if c.Reachability.SessionIdleTTL == 0 {
		c.Reachability.SessionIdleTTL = 30 * time.Minute
	}
	if c.Reachability.RefreshTimeout == 0 {
		c.Reachability.RefreshTimeout = 20 * time.Second
	}
	if c.Reachability.CircleSegments == 0 {
		c.Reachability.CircleSegments = 64
	}
}

// parseSelectionLimits разбирает строку вида "near_miss:2,barriers:3"
func parseSelectionLimits(s string) map[string]int {
	if s == "" {
		return nil
	}
	result := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		name, limit, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(limit), "%d", &n); err != nil || n <= 0 {
			continue
		}
		result[strings.TrimSpace(name)] = n
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// DatabaseEnabled - архив анкет в Postgres включается только при заданном хосте
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// RedisEnabled - кеш и стрим анкет подключаются только при заданном хосте
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
