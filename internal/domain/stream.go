package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamSurveySubmissions = "stream:survey:submissions"
)

// SubmissionEvent - событие об отправленной анкете (для архива)
type SubmissionEvent struct {
	SubmissionID uuid.UUID      `json:"submission_id"`
	Entries      []PayloadEntry `json:"entries"`
	Lat          *float64       `json:"lat,omitempty"`
	Lon          *float64       `json:"lon,omitempty"`
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}

// NewSubmissionEvent строит событие из результата отправки
func NewSubmissionEvent(s *Submission) *SubmissionEvent {
	return &SubmissionEvent{
		SubmissionID: s.ID,
		Entries:      s.Payload,
		Lat:          s.Lat,
		Lon:          s.Lon,
		Status:       s.Status,
		Error:        s.Error,
		SubmittedAt:  s.CreatedAt,
	}
}

// ToSubmission - обратное преобразование для записи в архив
func (e *SubmissionEvent) ToSubmission() *Submission {
	return &Submission{
		ID:        e.SubmissionID,
		Payload:   Payload(e.Entries),
		Lat:       e.Lat,
		Lon:       e.Lon,
		Status:    e.Status,
		Error:     e.Error,
		CreatedAt: e.SubmittedAt,
	}
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
