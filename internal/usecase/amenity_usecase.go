package usecase

import (
	"context"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelSources - сколько источников опрашивается одновременно
const maxParallelSources = 4

// SourceResult - ответ одного источника. Err не nil - источник не ответил,
// Amenities при этом пуст.
type SourceResult struct {
	Source    domain.AmenitySource
	Amenities []domain.Amenity
	Err       error
}

// AmenityUseCase - запросы к внешним слоям объектов с кешированием
type AmenityUseCase struct {
	catalog     *domain.Catalog
	repo        repository.AmenityRepository
	cache       repository.CacheRepository
	cacheTTL    time.Duration
	bufferLimit int
	segments    int
	logger      *zap.Logger
}

// NewAmenityUseCase создает AmenityUseCase. cache может быть nil - тогда запросы идут напрямую.
func NewAmenityUseCase(
	catalog *domain.Catalog,
	repo repository.AmenityRepository,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
	bufferLimit int,
	segments int,
	logger *zap.Logger,
) *AmenityUseCase {
	return &AmenityUseCase{
		catalog:     catalog,
		repo:        repo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		bufferLimit: bufferLimit,
		segments:    segments,
		logger:      logger,
	}
}

// ListSources возвращает источники каталога
func (uc *AmenityUseCase) ListSources() []domain.AmenitySource {
	return uc.catalog.Sources
}

// QuerySource возвращает объекты одного источника внутри bbox
func (uc *AmenityUseCase) QuerySource(
	ctx context.Context,
	id string,
	bbox domain.BoundingBox,
	limit int,
) ([]domain.Amenity, error) {
	source, ok := uc.catalog.Source(id)
	if !ok {
		return nil, errors.ErrUnknownSource.WithDetails(map[string]interface{}{"source": id})
	}
	if !bbox.IsValid() {
		return nil, errors.ErrInvalidBoundingBox
	}

	return uc.query(ctx, source, bbox, limit)
}

// QueryAll опрашивает несколько источников параллельно.
// Ошибка одного источника попадает только в его SourceResult.
func (uc *AmenityUseCase) QueryAll(
	ctx context.Context,
	ids []string,
	bbox domain.BoundingBox,
	limit int,
) ([]SourceResult, error) {
	if !bbox.IsValid() {
		return nil, errors.ErrInvalidBoundingBox
	}

	results := make([]SourceResult, len(ids))
	for i, id := range ids {
		source, ok := uc.catalog.Source(id)
		if !ok {
			return nil, errors.ErrUnknownSource.WithDetails(map[string]interface{}{"source": id})
		}
		results[i].Source = source
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSources)

	for i := range results {
		i := i
		g.Go(func() error {
			amenities, err := uc.query(gctx, results[i].Source, bbox, limit)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Amenities = amenities
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (uc *AmenityUseCase) query(
	ctx context.Context,
	source domain.AmenitySource,
	bbox domain.BoundingBox,
	limit int,
) ([]domain.Amenity, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetAmenities(ctx, source.ID, bbox, limit)
		if err != nil {
			uc.logger.Warn("Amenity cache read failed, querying source",
				zap.String("source", source.ID),
				zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	amenities, err := uc.repo.QueryFeatures(ctx, source, bbox, limit)
	if err != nil {
		uc.logger.Error("Amenity source query failed",
			zap.String("source", source.ID),
			zap.Error(err))
		return nil, errors.ErrUpstreamError.WithDetails(map[string]interface{}{
			"source": source.ID,
			"error":  err.Error(),
		})
	}

	if uc.cache != nil {
		if err := uc.cache.SetAmenities(ctx, source.ID, bbox, limit, amenities, uc.cacheTTL); err != nil {
			uc.logger.Warn("Amenity cache write failed",
				zap.String("source", source.ID),
				zap.Error(err))
		}
	}

	return amenities, nil
}

// Features возвращает объекты источника как GeoJSON с деталями для попапа
func (uc *AmenityUseCase) Features(
	ctx context.Context,
	id string,
	bbox domain.BoundingBox,
	limit int,
) (*geojson.FeatureCollection, error) {
	amenities, err := uc.QuerySource(ctx, id, bbox, limit)
	if err != nil {
		return nil, err
	}

	source, _ := uc.catalog.Source(id)
	return FeatureCollection(amenities, source.PopupFields), nil
}

// WalkBuffers возвращает круги пешей доступности вокруг объектов источника
func (uc *AmenityUseCase) WalkBuffers(
	ctx context.Context,
	id string,
	bbox domain.BoundingBox,
) (*geojson.FeatureCollection, error) {
	amenities, err := uc.QuerySource(ctx, id, bbox, uc.bufferLimit)
	if err != nil {
		return nil, err
	}

	source, _ := uc.catalog.Source(id)
	radius := uc.catalog.WalkBuffer.RadiusMeters()

	fc := geojson.NewFeatureCollection()
	for _, a := range amenities {
		if !a.HasValidLocation() {
			continue
		}
		f := geojson.NewFeature(utils.CirclePolygon(*a.Location, radius, uc.segments))
		f.ID = a.ID
		f.Properties["source_id"] = source.ID
		f.Properties["amenity_id"] = a.ID
		f.Properties["radius_meters"] = radius
		f.Properties["color"] = source.BufferColor
		f.Properties["fill_opacity"] = 0.08
		f.Properties["weight"] = 1
		fc.Append(f)
	}

	return fc, nil
}

// FeatureCollection строит GeoJSON точек; объекты без координат пропускаются
func FeatureCollection(amenities []domain.Amenity, popupFields []string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range amenities {
		if !a.HasValidLocation() {
			continue
		}

		f := geojson.NewFeature(utils.ToOrbPoint(*a.Location))
		f.ID = a.ID
		for k, v := range a.Attributes {
			f.Properties[k] = v
		}
		lines := utils.BuildPopupLines(a, popupFields)
		f.Properties["source_id"] = a.SourceID
		f.Properties["popup"] = lines
		f.Properties["popup_html"] = utils.PopupHTML(lines, nil)
		fc.Append(f)
	}
	return fc
}
