package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/pkg/validator"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

// ScenarioHandler - каталог сценариев и их кольца
type ScenarioHandler struct {
	reachUC *usecase.ReachabilityUseCase
	logger  *zap.Logger
}

// NewScenarioHandler создает ScenarioHandler
func NewScenarioHandler(reachUC *usecase.ReachabilityUseCase, logger *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		reachUC: reachUC,
		logger:  logger,
	}
}

// List godoc
// @Summary Сценарии доступности
// @Description Сценарии в порядке каталога, точка отсчёта по умолчанию и радиус пешего буфера
// @Tags Scenarios
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=map[string]interface{}}
// @Router /api/v1/scenarios [get]
func (h *ScenarioHandler) List(c *fiber.Ctx) error {
	catalog := h.reachUC.Catalog()

	return utils.SendSuccess(c, fiber.Map{
		"scenarios":           catalog.Scenarios,
		"default_origin":      catalog.DefaultOrigin,
		"walk_buffer_meters":  catalog.WalkBuffer.RadiusMeters(),
		"walk_buffer_minutes": catalog.WalkBuffer.Minutes,
	}, &utils.Meta{Total: len(catalog.Scenarios)})
}

// Rings godoc
// @Summary Кольца сценариев
// @Description GeoJSON кругов включённых сценариев вокруг точки отсчёта. В tooltip имя сценария и округлённый радиус.
// @Tags Scenarios
// @Produce json
// @Param lat query number false "Широта точки отсчёта (по умолчанию из каталога, задаётся вместе с lon)"
// @Param lon query number false "Долгота точки отсчёта (по умолчанию из каталога)"
// @Param active query string false "Имена сценариев через запятую (по умолчанию включённые в каталоге)"
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/scenarios/rings [get]
func (h *ScenarioHandler) Rings(c *fiber.Ctx) error {
	var q dto.RingsQuery
	var err error
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		return utils.SendError(c, err)
	}
	if q.Lon, err = queryFloat(c, "lon"); err != nil {
		return utils.SendError(c, err)
	}
	q.Active = c.Query("active")

	if err := validator.Validate(&q); err != nil {
		return utils.SendError(c, err)
	}

	// точка отсчёта задаётся либо целиком, либо не задаётся
	if (q.Lat == nil) != (q.Lon == nil) {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"origin": "lat and lon must be given together",
		}))
	}

	var origin *dto.Point
	if q.Lat != nil {
		origin = &dto.Point{Lat: *q.Lat, Lon: *q.Lon}
	}

	var names []string
	if c.Context().QueryArgs().Has("active") {
		names = usecase.ParseNames(q.Active)
		if names == nil {
			names = []string{}
		}
	}

	fc, err := h.reachUC.Rings(origin, names)
	if err != nil {
		return utils.SendError(c, err)
	}

	return sendGeoJSON(c, fc)
}
