package handler

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/validator"
	"github.com/survey-reachability/internal/usecase/dto"
)

// queryFloat читает необязательный числовой query-параметр
func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{name: "number"})
	}
	return &v, nil
}

// parseBBoxQuery читает sw_lat, sw_lon, ne_lat, ne_lon и limit
func parseBBoxQuery(c *fiber.Ctx) (*dto.BBoxQuery, error) {
	var q dto.BBoxQuery
	var err error

	for name, dst := range map[string]**float64{
		"sw_lat": &q.SWLat,
		"sw_lon": &q.SWLon,
		"ne_lat": &q.NELat,
		"ne_lon": &q.NELon,
	} {
		if *dst, err = queryFloat(c, name); err != nil {
			return nil, err
		}
	}
	q.Limit = c.QueryInt("limit", 0)

	if err := validator.Validate(&q); err != nil {
		return nil, err
	}
	if !q.ToDomain().IsValid() {
		return nil, errors.ErrInvalidBoundingBox
	}
	return &q, nil
}

// sessionID разбирает :id маршрута
func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrSessionNotFound
	}
	return id, nil
}

// parseBody разбирает JSON тело и валидирует его
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithMessage("Invalid request body")
	}
	return validator.Validate(req)
}
