package domain

import (
	"time"

	"github.com/google/uuid"
)

// Типы элементов формы
const (
	FieldTypeText     = "text"
	FieldTypeSelect   = "select"
	FieldTypeRadio    = "radio"
	FieldTypeCheckbox = "checkbox"
	FieldTypeHidden   = "hidden"
	FieldTypeTextarea = "textarea"
)

// Статусы отправки, показываемые пользователю
const (
	StatusSubmitting = "Submitting..."
	StatusSubmitted  = "Submitted!"
	StatusFailed     = "Error: Failed to fetch"
)

// FormField - элемент HTML формы в том виде, в котором его видит браузер
type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	Label    string `json:"label,omitempty"` // видимый текст выбранной опции select
	Checked  bool   `json:"checked,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// PayloadEntry - пара ключ/значение в порядке появления в форме
type PayloadEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload - сериализованная анкета для отправки в таблицу
type Payload []PayloadEntry

// Get возвращает первое значение по имени
func (p Payload) Get(name string) (string, bool) {
	for _, e := range p {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Names - имена полей в порядке следования
func (p Payload) Names() []string {
	names := make([]string, 0, len(p))
	for _, e := range p {
		names = append(names, e.Name)
	}
	return names
}

// Submission - анкета с результатом доставки
type Submission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Payload   Payload   `json:"payload" db:"-"`
	Lat       *float64  `json:"lat,omitempty" db:"lat"`
	Lon       *float64  `json:"lon,omitempty" db:"lon"`
	Status    string    `json:"status" db:"status"`
	Error     string    `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Delivered - дошла ли анкета до таблицы
func (s *Submission) Delivered() bool {
	return s.Status == StatusSubmitted
}
