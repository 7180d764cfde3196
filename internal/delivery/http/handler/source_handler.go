package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/usecase"
	"go.uber.org/zap"
)

// SourceHandler - слои объектов ArcGIS
type SourceHandler struct {
	amenityUC *usecase.AmenityUseCase
	logger    *zap.Logger
}

// NewSourceHandler создает SourceHandler
func NewSourceHandler(amenityUC *usecase.AmenityUseCase, logger *zap.Logger) *SourceHandler {
	return &SourceHandler{
		amenityUC: amenityUC,
		logger:    logger,
	}
}

// List godoc
// @Summary Источники объектов
// @Description Слои объектов (ArcGIS feature services) в порядке каталога
// @Tags Sources
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]domain.AmenitySource}
// @Router /api/v1/sources [get]
func (h *SourceHandler) List(c *fiber.Ctx) error {
	sources := h.amenityUC.ListSources()
	return utils.SendSuccess(c, sources, &utils.Meta{Total: len(sources)})
}

// Features godoc
// @Summary Объекты источника в видимой области
// @Description GeoJSON точек источника внутри bbox с текстом попапа
// @Tags Sources
// @Produce json
// @Param id path string true "Идентификатор источника"
// @Param sw_lat query number true "Широта юго-западного угла"
// @Param sw_lon query number true "Долгота юго-западного угла"
// @Param ne_lat query number true "Широта северо-восточного угла"
// @Param ne_lon query number true "Долгота северо-восточного угла"
// @Param limit query int false "Максимум объектов" default(2000)
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sources/{id}/features [get]
func (h *SourceHandler) Features(c *fiber.Ctx) error {
	q, err := parseBBoxQuery(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	fc, err := h.amenityUC.Features(c.UserContext(), c.Params("id"), q.ToDomain(), q.Limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return sendGeoJSON(c, fc)
}

// Buffers godoc
// @Summary Пешие буферы объектов
// @Description GeoJSON кругов 15-минутной пешей доступности вокруг объектов источника
// @Tags Sources
// @Produce json
// @Param id path string true "Идентификатор источника"
// @Param sw_lat query number true "Широта юго-западного угла"
// @Param sw_lon query number true "Долгота юго-западного угла"
// @Param ne_lat query number true "Широта северо-восточного угла"
// @Param ne_lon query number true "Долгота северо-восточного угла"
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sources/{id}/buffers [get]
func (h *SourceHandler) Buffers(c *fiber.Ctx) error {
	q, err := parseBBoxQuery(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	fc, err := h.amenityUC.WalkBuffers(c.UserContext(), c.Params("id"), q.ToDomain())
	if err != nil {
		return utils.SendError(c, err)
	}

	return sendGeoJSON(c, fc)
}

// sendGeoJSON отдаёт коллекцию без обёртки data, чтобы её можно было сразу положить на карту
func sendGeoJSON(c *fiber.Ctx, fc interface{}) error {
	if err := c.JSON(fc); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return nil
}
