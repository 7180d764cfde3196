// Package submission переносит события отправки анкет из Redis Stream в архив PostgreSQL.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/worker"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 20
	defaultRetryIdle = 30 * time.Second
)

// ArchiveWorker читает stream:survey:submissions и сохраняет анкеты в архив
type ArchiveWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	archive    repository.SubmissionArchive
	batchSize  int

	// RetryIdle - сколько неподтверждённое сообщение ждёт повторной попытки
	RetryIdle time.Duration
}

// NewArchiveWorker создает ArchiveWorker
func NewArchiveWorker(
	streamRepo repository.StreamRepository,
	archive repository.SubmissionArchive,
	consumerGroup string,
	batchSize int,
	logger *zap.Logger,
) *ArchiveWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &ArchiveWorker{
		BaseWorker: worker.NewBaseWorker("submission-archive", consumerGroup, logger),
		streamRepo: streamRepo,
		archive:    archive,
		batchSize:  batchSize,
		RetryIdle:  defaultRetryIdle,
	}
}

// Start создаёт consumer group и обрабатывает пачки до остановки
func (w *ArchiveWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ArchiveWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamSurveySubmissions, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	return w.Run(ctx, w.ProcessBatch)
}

// ProcessBatch читает пачку событий и сохраняет их.
// Битые сообщения подтверждаются и пропускаются, чтобы не застревать в группе.
// Сообщения, которые не удалось сохранить, остаются неподтверждёнными и
// забираются повторно, когда провисят в группе дольше RetryIdle.
func (w *ArchiveWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ClaimPending(
		ctx,
		domain.StreamSurveySubmissions,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.RetryIdle,
		w.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending: %w", err)
	}

	if len(messages) == 0 {
		messages, err = w.streamRepo.ConsumeBatch(
			ctx,
			domain.StreamSurveySubmissions,
			w.ConsumerGroup(),
			w.ConsumerName(),
			w.batchSize,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to consume batch: %w", err)
		}
	}
	if len(messages) == 0 {
		return 0, nil
	}

	ack := make([]string, 0, len(messages))
	saved := 0

	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			ack = append(ack, msg.ID)
			continue
		}

		if err := w.archive.Save(ctx, event.ToSubmission()); err != nil {
			logger.Error("Failed to archive submission",
				zap.String("message_id", msg.ID),
				zap.String("submission_id", event.SubmissionID.String()),
				zap.Error(err))
			continue
		}

		saved++
		ack = append(ack, msg.ID)
	}

	if len(ack) > 0 {
		if err := w.streamRepo.AckMessages(ctx, domain.StreamSurveySubmissions, w.ConsumerGroup(), ack); err != nil {
			// не критично: сохранение идемпотентно, сообщения будут забраны повторно
			logger.Error("Failed to ack messages", zap.Error(err))
		}
	}

	logger.Info("Batch processed",
		zap.Int("messages", len(messages)),
		zap.Int("archived", saved),
		zap.Int("skipped", len(ack)-saved),
		zap.Int("failed", len(messages)-len(ack)))

	return len(messages), nil
}

func parseMessage(msg domain.StreamMessage) (*domain.SubmissionEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("empty message")
	}

	var event domain.SubmissionEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.SubmissionID == uuid.Nil {
		return nil, fmt.Errorf("event without submission_id")
	}

	return &event, nil
}
