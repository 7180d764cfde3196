package handler

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SubmissionHandler - отправка анкеты и чтение архива
type SubmissionHandler struct {
	submissionUC *usecase.SubmissionUseCase
	logger       *zap.Logger
}

// NewSubmissionHandler создает SubmissionHandler
func NewSubmissionHandler(submissionUC *usecase.SubmissionUseCase, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionUC: submissionUC,
		logger:       logger,
	}
}

// Submit godoc
// @Summary Отправить анкету
// @Description Принимает элементы формы в порядке документа, собирает payload и пересылает его в таблицу. Без lat/lon анкета не отправляется.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param request body dto.SubmitFormRequest true "Элементы формы"
// @Success 200 {object} utils.SuccessResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/submissions [post]
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitFormRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	return h.submit(c, req.Fields)
}

// SubmitForm godoc
// @Summary Отправить анкету обычной формой
// @Description multipart/form-data или application/x-www-form-urlencoded. Повторяющийся ключ считается группой флажков.
// @Tags Submissions
// @Accept mpfd
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/submissions/form [post]
func (h *SubmissionHandler) SubmitForm(c *fiber.Ctx) error {
	pairs, err := formPairs(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if len(pairs) == 0 {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("Empty form"))
	}

	return h.submit(c, usecase.FormFieldsFromPairs(pairs))
}

func (h *SubmissionHandler) submit(c *fiber.Ctx, fields []domain.FormField) error {
	s, err := h.submissionUC.Submit(c.UserContext(), fields)
	if err != nil {
		if s != nil && stderrors.Is(err, errors.ErrSubmissionFailed) {
			h.logger.Warn("Survey not delivered", zap.String("id", s.ID.String()))
		}
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.SubmissionResponse{
		ID:     s.ID,
		Status: s.Status,
		Fields: s.Payload,
	}, nil)
}

// Get godoc
// @Summary Анкета из архива
// @Tags Submissions
// @Produce json
// @Param id path string true "ID анкеты"
// @Success 200 {object} utils.SuccessResponse{data=domain.Submission}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/submissions/{id} [get]
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, errors.ErrSubmissionNotFound)
	}

	s, err := h.submissionUC.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, s, nil)
}

// List godoc
// @Summary Последние анкеты из архива
// @Tags Submissions
// @Produce json
// @Param limit query int false "Количество" default(50)
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Submission}
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/submissions [get]
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	items, err := h.submissionUC.ListRecent(c.UserContext(), limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, items, &utils.Meta{Total: len(items), Limit: limit})
}

// formPairs читает поля формы. urlencoded сохраняет порядок тела,
// у multipart порядок теряется, поэтому ключи сортируются.
func formPairs(c *fiber.Ctx) ([]domain.PayloadEntry, error) {
	var pairs []domain.PayloadEntry

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, errors.ErrInvalidRequest.WithMessage("Invalid multipart form")
		}
		keys := make([]string, 0, len(form.Value))
		for k := range form.Value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range form.Value[k] {
				pairs = append(pairs, domain.PayloadEntry{Name: k, Value: v})
			}
		}
		return pairs, nil
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		pairs = append(pairs, domain.PayloadEntry{Name: string(key), Value: string(value)})
	})
	return pairs, nil
}
