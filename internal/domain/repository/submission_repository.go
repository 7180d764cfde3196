package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
)

// SubmissionSink - приёмник анкет (вебхук таблицы).
// Ошибка означает только сетевой сбой: ответ сервера непрозрачен.
type SubmissionSink interface {
	Submit(ctx context.Context, payload domain.Payload) error
}

// SubmissionArchive - архив отправленных анкет
type SubmissionArchive interface {
	// Save сохраняет анкету; повторная запись того же ID обновляет статус
	Save(ctx context.Context, s *domain.Submission) error

	// GetByID возвращает анкету по идентификатору
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// ListRecent возвращает последние анкеты
	ListRecent(ctx context.Context, limit int) ([]*domain.Submission, error)
}
