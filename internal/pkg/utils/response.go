package utils

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/survey-reachability/internal/pkg/errors"
)

// SuccessResponse - конверт успешного ответа API
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// ErrorResponse - конверт ошибки с машинным кодом
type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

// Meta - сведения о выборке
type Meta struct {
	Total int `json:"total,omitempty"`
	Limit int `json:"limit,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return SendStatus(c, fiber.StatusOK, data, meta)
}

// SendStatus - успешный ответ с кодом, отличным от 200 (201, 202)
func SendStatus(c *fiber.Ctx, status int, data interface{}, meta *Meta) error {
	return c.Status(status).JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// SendError отдает AppError как есть, все прочее скрывается за 500
func SendError(c *fiber.Ctx, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
