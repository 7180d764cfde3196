package dto

import "github.com/survey-reachability/internal/domain"

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// ToDomain переводит точку в доменный тип
func (p Point) ToDomain() domain.Point {
	return domain.Point{Lat: p.Lat, Lon: p.Lon}
}

// BBox - видимая область карты (юго-западный и северо-восточный углы)
type BBox struct {
	SWLat float64 `json:"sw_lat" validate:"latitude"`
	SWLon float64 `json:"sw_lon" validate:"longitude"`
	NELat float64 `json:"ne_lat" validate:"latitude,gtefield=SWLat"`
	NELon float64 `json:"ne_lon" validate:"longitude,gtefield=SWLon"`
}

// ToDomain переводит bbox в доменный тип
func (b BBox) ToDomain() domain.BoundingBox {
	return domain.NewBoundingBox(b.SWLat, b.SWLon, b.NELat, b.NELon)
}

// BBoxQuery - bbox из query-параметров; все углы обязательны
type BBoxQuery struct {
	SWLat *float64 `query:"sw_lat" validate:"required,latitude"`
	SWLon *float64 `query:"sw_lon" validate:"required,longitude"`
	NELat *float64 `query:"ne_lat" validate:"required,latitude"`
	NELon *float64 `query:"ne_lon" validate:"required,longitude"`
	Limit int      `query:"limit" validate:"omitempty,min=1,max=2000"`
}

// ToDomain переводит bbox в доменный тип; вызывать после валидации
func (q BBoxQuery) ToDomain() domain.BoundingBox {
	return domain.NewBoundingBox(*q.SWLat, *q.SWLon, *q.NELat, *q.NELon)
}

// RingsQuery - запрос колец сценариев
type RingsQuery struct {
	Lat    *float64 `query:"lat" validate:"omitempty,latitude"`
	Lon    *float64 `query:"lon" validate:"omitempty,longitude"`
	Active string   `query:"active"` // имена через запятую; пусто - сценарии по умолчанию
}

// EvaluateRequest - запрос оценки достижимости объектов в видимой области.
// Scenarios/Sources == nil - значения по умолчанию, пустой список - ничего не выбрано.
type EvaluateRequest struct {
	Origin    *Point   `json:"origin,omitempty" validate:"omitempty"`
	Scenarios []string `json:"scenarios,omitempty" validate:"omitempty,max=20"`
	Sources   []string `json:"sources,omitempty" validate:"omitempty,max=20"`
	BBox      BBox     `json:"bbox"`
	Limit     int      `json:"limit,omitempty" validate:"omitempty,min=1,max=2000"`
}

// CreateSessionRequest - начальное состояние страницы, все поля необязательны
type CreateSessionRequest struct {
	Origin    *Point   `json:"origin,omitempty" validate:"omitempty"`
	Scenarios []string `json:"scenarios,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	Viewport  *BBox    `json:"viewport,omitempty" validate:"omitempty"`
}

// SetOriginRequest - клик по карте сценариев
type SetOriginRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// ToggleRequest - включение/выключение сценария или слоя
type ToggleRequest struct {
	Active bool `json:"active"`
}

// SubmitFormRequest - элементы формы анкеты в порядке документа
type SubmitFormRequest struct {
	Fields []domain.FormField `json:"fields" validate:"required,min=1,max=500"`
}
