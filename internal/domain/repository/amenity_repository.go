package repository

import (
	"context"

	"github.com/survey-reachability/internal/domain"
)

// AmenityRepository определяет методы для получения объектов инфраструктуры
// из внешних геосервисов
type AmenityRepository interface {
	// QueryFeatures возвращает точечные объекты источника внутри bbox,
	// не более limit штук
	QueryFeatures(
		ctx context.Context,
		source domain.AmenitySource,
		bbox domain.BoundingBox,
		limit int,
	) ([]domain.Amenity, error)
}
