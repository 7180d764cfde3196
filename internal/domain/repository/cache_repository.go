package repository

import (
	"context"
	"time"

	"github.com/survey-reachability/internal/domain"
)

// CacheRepository - кеш результатов запросов к источникам объектов
type CacheRepository interface {
	// GetAmenities получает результат запроса к источнику; nil, nil - промах
	GetAmenities(ctx context.Context, sourceID string, bbox domain.BoundingBox, limit int) ([]domain.Amenity, error)

	// SetAmenities сохраняет результат запроса к источнику
	SetAmenities(ctx context.Context, sourceID string, bbox domain.BoundingBox, limit int, amenities []domain.Amenity, ttl time.Duration) error
}
