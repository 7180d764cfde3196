package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/reachability"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

// UnreachableColor - обводка маркера, который не покрыт ни одним сценарием
const UnreachableColor = "#888"

// ReachabilityUseCase - оценка объектов относительно точки отсчёта
type ReachabilityUseCase struct {
	catalog      *domain.Catalog
	amenities    *AmenityUseCase
	featureLimit int
	segments     int
	logger       *zap.Logger
}

// NewReachabilityUseCase создает ReachabilityUseCase
func NewReachabilityUseCase(
	catalog *domain.Catalog,
	amenities *AmenityUseCase,
	featureLimit int,
	segments int,
	logger *zap.Logger,
) *ReachabilityUseCase {
	return &ReachabilityUseCase{
		catalog:      catalog,
		amenities:    amenities,
		featureLimit: featureLimit,
		segments:     segments,
		logger:       logger,
	}
}

// Catalog возвращает статический каталог
func (uc *ReachabilityUseCase) Catalog() *domain.Catalog {
	return uc.catalog
}

// Evaluate запрашивает объекты видимой области и классифицирует их
func (uc *ReachabilityUseCase) Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
	origin, err := uc.ResolveOrigin(req.Origin)
	if err != nil {
		return nil, err
	}
	active, err := uc.ResolveActive(req.Scenarios)
	if err != nil {
		return nil, err
	}
	sources, err := uc.ResolveSources(req.Sources)
	if err != nil {
		return nil, err
	}

	bbox := req.BBox.ToDomain()
	if !bbox.IsValid() {
		return nil, errors.ErrInvalidBoundingBox
	}

	limit := req.Limit
	if limit <= 0 {
		limit = uc.featureLimit
	}

	results, err := uc.amenities.QueryAll(ctx, sources, bbox, limit)
	if err != nil {
		return nil, err
	}

	layers, meta := uc.BuildLayers(origin, active, results)

	uc.logger.Debug("Reachability evaluated",
		zap.String("origin", origin.String()),
		zap.Int("layers", len(layers)),
		zap.Int("total", meta.Total),
		zap.Int("reachable", meta.Reachable))

	return &dto.EvaluateResponse{
		Origin:          origin,
		ActiveScenarios: active.Names(uc.catalog.Scenarios),
		Layers:          layers,
		Meta:            meta,
	}, nil
}

// BuildLayers классифицирует уже полученные объекты. Не делает запросов,
// поэтому вызывается при каждом перемещении точки или переключении сценария.
func (uc *ReachabilityUseCase) BuildLayers(
	origin domain.Point,
	active domain.ActiveSet,
	results []SourceResult,
) ([]dto.SourceLayer, dto.EvaluateMeta) {
	var meta dto.EvaluateMeta
	layers := make([]dto.SourceLayer, 0, len(results))

	for _, res := range results {
		layer := dto.SourceLayer{
			SourceID: res.Source.ID,
			Label:    res.Source.Label,
			Markers:  []dto.Marker{},
		}

		if res.Err != nil {
			layer.Error = res.Err.Error()
			meta.Failed++
			layers = append(layers, layer)
			continue
		}

		batch := reachability.EvaluateAll(origin, res.Amenities, uc.catalog.Scenarios, active.IsActive)
		if len(batch.Skipped) > 0 {
			uc.logger.Debug("Skipped amenities without valid coordinates",
				zap.String("source", res.Source.ID),
				zap.Int("count", len(batch.Skipped)))
		}

		for _, r := range batch.Results {
			layer.Markers = append(layer.Markers, NewMarker(res.Source, r))
			if r.Reachable() {
				meta.Reachable++
			}
		}
		layer.Skipped = len(batch.Skipped)

		meta.Total += len(layer.Markers)
		meta.Skipped += layer.Skipped
		layers = append(layers, layer)
	}

	return layers, meta
}

// NewMarker оформляет результат оценки для карты сценариев
func NewMarker(source domain.AmenitySource, r reachability.Result) dto.Marker {
	style := dto.MarkerStyle{
		Radius:      6,
		Color:       UnreachableColor,
		Weight:      1,
		FillColor:   source.BufferColor,
		FillOpacity: 0.25,
	}
	if r.Reachable() {
		style.Color = r.ReachedBy.Color
		style.Weight = 3
		style.FillOpacity = 0.9
	}

	fieldLines := utils.BuildPopupLines(r.Amenity, source.PopupFields)
	extra := utils.ReachabilityLines(r.ReachedByName(), r.DistanceMeters)

	popup := fieldLines
	if len(popup) == 0 {
		popup = []utils.PopupLine{{Value: utils.NoDetails}}
	}

	return dto.Marker{
		ID:             r.Amenity.ID,
		Lat:            r.Amenity.Location.Lat,
		Lon:            r.Amenity.Location.Lon,
		DistanceMeters: r.RoundedMeters(),
		Reachable:      r.Reachable(),
		ReachedBy:      r.ReachedByName(),
		Style:          style,
		Popup:          append(popup, extra...),
		PopupHTML:      utils.PopupHTML(fieldLines, extra),
	}
}

// Rings строит круги активных сценариев вокруг точки отсчёта
func (uc *ReachabilityUseCase) Rings(origin *dto.Point, names []string) (*geojson.FeatureCollection, error) {
	center, err := uc.ResolveOrigin(origin)
	if err != nil {
		return nil, err
	}
	active, err := uc.ResolveActive(names)
	if err != nil {
		return nil, err
	}

	return ScenarioRings(center, uc.catalog.Scenarios, active, uc.segments), nil
}

// ScenarioRings - GeoJSON колец в порядке каталога
func ScenarioRings(center domain.Point, scenarios []domain.Scenario, active domain.ActiveSet, segments int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range scenarios {
		if !active.IsActive(s) {
			continue
		}
		f := geojson.NewFeature(utils.CirclePolygon(center, s.RadiusMeters, segments))
		f.ID = s.Name
		f.Properties["name"] = s.Name
		f.Properties["radius_meters"] = s.RadiusMeters
		f.Properties["color"] = s.Color
		f.Properties["weight"] = 2
		f.Properties["fill_opacity"] = 0.06
		f.Properties["tooltip"] = RingTooltip(s)
		fc.Append(f)
	}
	return fc
}

// RingTooltip - подпись кольца сценария
func RingTooltip(s domain.Scenario) string {
	return fmt.Sprintf("%s — ~%d m", s.Name, utils.RoundMeters(s.RadiusMeters))
}

// ResolveOrigin - точка из запроса или точка по умолчанию
func (uc *ReachabilityUseCase) ResolveOrigin(p *dto.Point) (domain.Point, error) {
	if p == nil {
		return uc.catalog.DefaultOrigin, nil
	}
	origin := p.ToDomain()
	if !origin.IsValid() {
		return domain.Point{}, errors.ErrInvalidCoordinates
	}
	return origin, nil
}

// ResolveActive - набор сценариев по именам; nil - сценарии по умолчанию
func (uc *ReachabilityUseCase) ResolveActive(names []string) (domain.ActiveSet, error) {
	if names == nil {
		return uc.catalog.DefaultActive(), nil
	}

	set := domain.NewActiveSet()
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := uc.catalog.Scenario(name); !ok {
			return nil, errors.ErrUnknownScenario.WithDetails(map[string]interface{}{"scenario": name})
		}
		set[name] = true
	}
	return set, nil
}

// ResolveSources - источники по идентификаторам; nil - видимые по умолчанию
func (uc *ReachabilityUseCase) ResolveSources(ids []string) ([]string, error) {
	if ids == nil {
		return uc.catalog.DefaultVisibleSources(), nil
	}

	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := uc.catalog.Source(id); !ok {
			return nil, errors.ErrUnknownSource.WithDetails(map[string]interface{}{"source": id})
		}
		seen[id] = true
		result = append(result, id)
	}
	return result, nil
}

// ParseNames разбирает список имён через запятую; пустая строка - nil
func ParseNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
