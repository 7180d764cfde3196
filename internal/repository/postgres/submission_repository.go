package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/pkg/errors"
	"go.uber.org/zap"
)

type submissionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// submissionRow - строка survey_submissions
type submissionRow struct {
	ID        uuid.UUID       `db:"id"`
	Fields    []byte          `db:"fields"`
	Lat       sql.NullFloat64 `db:"lat"`
	Lon       sql.NullFloat64 `db:"lon"`
	Status    string          `db:"status"`
	Error     string          `db:"error"`
	CreatedAt time.Time       `db:"created_at"`
}

func NewSubmissionRepository(db *DB) repository.SubmissionArchive {
	return &submissionRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Save записывает анкету; повторная доставка того же события обновляет статус
func (r *submissionRepository) Save(ctx context.Context, s *domain.Submission) error {
	fields, err := json.Marshal(s.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		INSERT INTO survey_submissions (id, fields, field_names, lat, lon, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			archived_at = NOW()
	`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, fields, pq.Array(s.Payload.Names()),
		nullFloat(s.Lat), nullFloat(s.Lon),
		s.Status, s.Error, s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save submission",
			zap.String("id", s.ID.String()),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

// GetByID возвращает анкету из архива
func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `
		SELECT id, fields, lat, lon, status, error, created_at
		FROM survey_submissions
		WHERE id = $1
	`

	var row submissionRow
	err := r.db.GetContext(ctx, &row, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrSubmissionNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.String("id", id.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return row.toDomain()
}

// ListRecent возвращает последние анкеты, новые первыми
func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Submission, error) {
	query := `
		SELECT id, fields, lat, lon, status, error, created_at
		FROM survey_submissions
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	result := make([]*domain.Submission, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, nil
}

func (row *submissionRow) toDomain() (*domain.Submission, error) {
	var payload domain.Payload
	if err := json.Unmarshal(row.Fields, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload %s: %w", row.ID, err)
	}

	s := &domain.Submission{
		ID:        row.ID,
		Payload:   payload,
		Status:    row.Status,
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
	}
	if row.Lat.Valid {
		s.Lat = &row.Lat.Float64
	}
	if row.Lon.Valid {
		s.Lon = &row.Lon.Float64
	}

	return s, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
