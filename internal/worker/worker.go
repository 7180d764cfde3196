package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker интерфейс для всех воркеров
type Worker interface {
	// Start обрабатывает стрим до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop останавливает воркер
	Stop() error

	// Name возвращает имя воркера
	Name() string
}

// BatchFunc обрабатывает одну пачку сообщений и возвращает их количество
type BatchFunc func(ctx context.Context) (int, error)

// BaseWorker - общий цикл чтения стрима для воркеров
type BaseWorker struct {
	name          string
	consumerGroup string
	consumerName  string
	logger        *zap.Logger

	// IdleSleep - пауза при пустом стриме, ErrorSleep - после ошибки
	IdleSleep  time.Duration
	ErrorSleep time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
}

// NewBaseWorker создает BaseWorker; имя потребителя - hostname-pid
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	hostname, _ := os.Hostname()

	return &BaseWorker{
		name:          name,
		consumerGroup: consumerGroup,
		consumerName:  fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		logger:        logger.With(zap.String("worker", name)),
		IdleSleep:     100 * time.Millisecond,
		ErrorSleep:    time.Second,
		stopChan:      make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// ConsumerName возвращает имя потребителя в группе
func (w *BaseWorker) ConsumerName() string {
	return w.consumerName
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// Stop останавливает цикл Run; повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.logger.Info("Stopping worker")
	close(w.stopChan)
	w.stopped = true
	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// Run вызывает batch, пока воркер не остановлен. Ошибка пачки не прерывает цикл.
func (w *BaseWorker) Run(ctx context.Context, batch BatchFunc) error {
	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			w.logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := batch(ctx)
		pause := time.Duration(0)
		switch {
		case err != nil:
			w.logger.Error("Failed to process batch", zap.Error(err))
			pause = w.ErrorSleep
		case processed == 0:
			pause = w.IdleSleep
		}

		if pause > 0 {
			select {
			case <-w.stopChan:
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}
}
