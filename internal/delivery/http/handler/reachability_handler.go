package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

// ReachabilityHandler - разовая оценка достижимости без сессии
type ReachabilityHandler struct {
	reachUC *usecase.ReachabilityUseCase
	logger  *zap.Logger
}

// NewReachabilityHandler создает ReachabilityHandler
func NewReachabilityHandler(reachUC *usecase.ReachabilityUseCase, logger *zap.Logger) *ReachabilityHandler {
	return &ReachabilityHandler{
		reachUC: reachUC,
		logger:  logger,
	}
}

// Evaluate godoc
// @Summary Оценка достижимости
// @Description Классифицирует объекты выбранных источников в bbox по включённым сценариям. Источник, не ответивший на запрос, возвращается пустым слоем с ошибкой.
// @Tags Reachability
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRequest true "Точка отсчёта, сценарии, источники и bbox"
// @Success 200 {object} utils.SuccessResponse{data=dto.EvaluateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reachability/evaluate [post]
func (h *ReachabilityHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.reachUC.Evaluate(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Meta.Total})
}
