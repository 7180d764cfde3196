package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/session"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

// SessionHandler - состояние карты сценариев одной страницы
type SessionHandler struct {
	sessions *session.Manager
	reachUC  *usecase.ReachabilityUseCase
	logger   *zap.Logger
}

// NewSessionHandler создает SessionHandler
func NewSessionHandler(sessions *session.Manager, reachUC *usecase.ReachabilityUseCase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		reachUC:  reachUC,
		logger:   logger,
	}
}

// Create godoc
// @Summary Открыть сессию карты
// @Description Создаёт контроллер страницы. Все поля тела необязательны; без viewport объекты не запрашиваются.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest false "Начальное состояние"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.SendError(c, err)
		}
	}

	// проверяем всё до создания, чтобы не оставлять полусобранную сессию
	var err error
	origin := h.reachUC.Catalog().DefaultOrigin
	if req.Origin != nil {
		if origin, err = h.reachUC.ResolveOrigin(req.Origin); err != nil {
			return utils.SendError(c, err)
		}
	}
	active, err := h.reachUC.ResolveActive(req.Scenarios)
	if err != nil {
		return utils.SendError(c, err)
	}
	sources, err := h.reachUC.ResolveSources(req.Sources)
	if err != nil {
		return utils.SendError(c, err)
	}

	ctrl := h.sessions.Create()
	apply := []func() error{
		func() error { return ctrl.SetOrigin(origin) },
		func() error { return ctrl.SetActiveScenarios(active) },
		func() error { return ctrl.SetVisibleSources(sources) },
	}
	if req.Viewport != nil {
		bbox := req.Viewport.ToDomain()
		apply = append(apply, func() error { return ctrl.SetViewport(bbox) })
	}
	for _, fn := range apply {
		if err := fn(); err != nil {
			_ = h.sessions.Delete(ctrl.ID())
			return utils.SendError(c, err)
		}
	}

	return utils.SendStatus(c, fiber.StatusCreated, ctrl.Snapshot(), nil)
}

// Get godoc
// @Summary Состояние сессии
// @Description Текущие слои с результатами оценки. pending=true, пока ждёт отложенное или незавершённое обновление.
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, ctrl.Snapshot(), nil)
}

// SetOrigin godoc
// @Summary Перенести точку отсчёта
// @Description Клик по карте: объекты пересчитываются сразу, без нового запроса
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SetOriginRequest true "Новая точка"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/origin [put]
func (h *SessionHandler) SetOrigin(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetOriginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if err := ctrl.SetOrigin(dto.Point{Lat: req.Lat, Lon: req.Lon}.ToDomain()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, ctrl.Snapshot(), nil)
}

// SetScenario godoc
// @Summary Включить или выключить сценарий
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param name path string true "Имя сценария (URL-encoded)"
// @Param request body dto.ToggleRequest true "Состояние"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/scenarios/{name} [put]
func (h *SessionHandler) SetScenario(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ToggleRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if err := ctrl.SetScenarioActive(c.Params("name"), req.Active); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, ctrl.Snapshot(), nil)
}

// SetSource godoc
// @Summary Показать или скрыть слой источника
// @Description Включённый слой запрашивается сразу для текущей видимой области
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param source path string true "Идентификатор источника"
// @Param request body dto.ToggleRequest true "Состояние"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/sources/{source} [put]
func (h *SessionHandler) SetSource(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ToggleRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if err := ctrl.SetSourceVisible(c.Params("source"), req.Active); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, ctrl.Snapshot(), nil)
}

// SetViewport godoc
// @Summary Сдвиг или масштаб карты
// @Description Запоминает видимую область. Обновление откладывается до паузы в событиях; immediate=true запрашивает сразу.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param immediate query bool false "Запросить без задержки"
// @Param request body dto.BBox true "Видимая область"
// @Success 202 {object} utils.SuccessResponse{data=dto.SessionState}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/viewport [put]
func (h *SessionHandler) SetViewport(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.BBox
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if c.QueryBool("immediate", false) {
		err = ctrl.SetViewport(req.ToDomain())
	} else {
		err = ctrl.ViewportChanged(req.ToDomain())
	}
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendStatus(c, fiber.StatusAccepted, ctrl.Snapshot(), nil)
}

// Delete godoc
// @Summary Закрыть сессию
// @Tags Sessions
// @Param id path string true "ID сессии"
// @Success 204 "Session closed"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := h.sessions.Delete(id); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) controller(c *fiber.Ctx) (*session.Controller, error) {
	id, err := sessionID(c)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(id)
}
