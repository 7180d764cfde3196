package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/utils"
)

// Marker - объект на карте сценариев с результатом оценки
type Marker struct {
	ID             string            `json:"id"`
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	DistanceMeters int64             `json:"distance_meters"`
	Reachable      bool              `json:"reachable"`
	ReachedBy      string            `json:"reached_by,omitempty"`
	Style          MarkerStyle       `json:"style"`
	Popup          []utils.PopupLine `json:"popup"`
	PopupHTML      string            `json:"popup_html"`
}

// MarkerStyle - оформление circle marker
type MarkerStyle struct {
	Radius      int     `json:"radius"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
}

// SourceLayer - слой одного источника. Error заполнен, если источник не ответил:
// слой пуст, остальные слои не затронуты.
type SourceLayer struct {
	SourceID string   `json:"source_id"`
	Label    string   `json:"label"`
	Markers  []Marker `json:"markers"`
	Skipped  int      `json:"skipped,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// EvaluateMeta - сводка по всем слоям
type EvaluateMeta struct {
	Total     int `json:"total"`
	Reachable int `json:"reachable"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed_sources"`
}

// EvaluateResponse - ответ оценки достижимости
type EvaluateResponse struct {
	Origin          domain.Point  `json:"origin"`
	ActiveScenarios []string      `json:"active_scenarios"`
	Layers          []SourceLayer `json:"layers"`
	Meta            EvaluateMeta  `json:"meta"`
}

// SessionState - снимок состояния страницы
type SessionState struct {
	ID              uuid.UUID           `json:"id"`
	Origin          domain.Point        `json:"origin"`
	ActiveScenarios []string            `json:"active_scenarios"`
	VisibleSources  []string            `json:"visible_sources"`
	Viewport        *domain.BoundingBox `json:"viewport,omitempty"`
	// Generation - номер запроса, чьи данные сейчас показаны
	Generation uint64        `json:"generation"`
	Pending    bool          `json:"pending"`
	Layers     []SourceLayer `json:"layers"`
	Meta       EvaluateMeta  `json:"meta"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// SubmissionResponse - результат отправки анкеты
type SubmissionResponse struct {
	ID     uuid.UUID             `json:"id"`
	Status string                `json:"status"`
	Fields []domain.PayloadEntry `json:"fields"`
}
