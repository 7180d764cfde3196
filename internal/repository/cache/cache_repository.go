package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"go.uber.org/zap"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

// AmenitiesKey - ключ кеша результата запроса к источнику
func AmenitiesKey(sourceID string, bbox domain.BoundingBox, limit int) string {
	return fmt.Sprintf("amenities:%s:%s:%d", sourceID, bbox.CacheKey(), limit)
}

func (r *cacheRepository) get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// GetAmenities получает объекты источника из кеша
func (r *cacheRepository) GetAmenities(
	ctx context.Context,
	sourceID string,
	bbox domain.BoundingBox,
	limit int,
) ([]domain.Amenity, error) {
	data, err := r.get(ctx, AmenitiesKey(sourceID, bbox, limit))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var amenities []domain.Amenity
	if err := json.Unmarshal(data, &amenities); err != nil {
		r.logger.Error("Failed to unmarshal amenities from cache",
			zap.String("source", sourceID),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal amenities: %w", err)
	}

	// пустой результат тоже кешируется, отличаем его от промаха
	if amenities == nil {
		amenities = []domain.Amenity{}
	}

	return amenities, nil
}

// SetAmenities сохраняет объекты источника в кеше
func (r *cacheRepository) SetAmenities(
	ctx context.Context,
	sourceID string,
	bbox domain.BoundingBox,
	limit int,
	amenities []domain.Amenity,
	ttl time.Duration,
) error {
	if amenities == nil {
		amenities = []domain.Amenity{}
	}

	data, err := json.Marshal(amenities)
	if err != nil {
		r.logger.Error("Failed to marshal amenities", zap.Error(err))
		return fmt.Errorf("marshal amenities: %w", err)
	}

	return r.set(ctx, AmenitiesKey(sourceID, bbox, limit), data, ttl)
}
