package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	// checkboxSeparator - разделитель значений одной группы флажков
	checkboxSeparator = "; "
	// defaultCheckboxValue - значение флажка без атрибута value
	defaultCheckboxValue = "yes"
	// placeholderMarker - текст опции-заглушки в select
	placeholderMarker = "select your answer"
)

// SubmissionUseCase - сбор и отправка анкеты
type SubmissionUseCase struct {
	sink    repository.SubmissionSink
	stream  repository.StreamRepository
	archive repository.SubmissionArchive
	limits  map[string]int
	logger  *zap.Logger
	now     func() time.Time
}

// NewSubmissionUseCase создает SubmissionUseCase.
// stream и archive необязательны (nil): без них события не публикуются и архив недоступен.
func NewSubmissionUseCase(
	sink repository.SubmissionSink,
	stream repository.StreamRepository,
	archive repository.SubmissionArchive,
	limits map[string]int,
	logger *zap.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		sink:    sink,
		stream:  stream,
		archive: archive,
		limits:  limits,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit проверяет анкету, собирает payload и отправляет его в таблицу.
// При сетевом сбое возвращает анкету со статусом ошибки и ErrSubmissionFailed.
func (uc *SubmissionUseCase) Submit(ctx context.Context, fields []domain.FormField) (*domain.Submission, error) {
	lat, lon, ok := locationValues(fields)
	if !ok {
		return nil, errors.ErrMissingLocation
	}
	if err := uc.checkSelectionLimits(fields); err != nil {
		return nil, err
	}

	payload := BuildPayload(fields)

	s := &domain.Submission{
		ID:        uuid.New(),
		Payload:   payload,
		Lat:       parseCoordinate(lat),
		Lon:       parseCoordinate(lon),
		Status:    domain.StatusSubmitting,
		CreatedAt: uc.now().UTC(),
	}

	uc.logger.Info("Submitting survey",
		zap.String("id", s.ID.String()),
		zap.Int("fields", len(payload)))

	if err := uc.sink.Submit(ctx, payload); err != nil {
		s.Status = domain.StatusFailed
		s.Error = err.Error()
		uc.logger.Warn("Survey submission failed",
			zap.String("id", s.ID.String()),
			zap.Error(err))
	} else {
		s.Status = domain.StatusSubmitted
	}

	uc.publish(ctx, s)

	if !s.Delivered() {
		return s, errors.ErrSubmissionFailed.WithDetails(map[string]interface{}{"id": s.ID.String()})
	}
	return s, nil
}

// publish отправляет событие в стрим архива; ошибка не влияет на ответ пользователю
func (uc *SubmissionUseCase) publish(ctx context.Context, s *domain.Submission) {
	if uc.stream == nil {
		return
	}
	if err := uc.stream.PublishToStream(ctx, domain.StreamSurveySubmissions, domain.NewSubmissionEvent(s)); err != nil {
		uc.logger.Error("Failed to publish submission event",
			zap.String("id", s.ID.String()),
			zap.Error(err))
	}
}

// Get возвращает анкету из архива
func (uc *SubmissionUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if uc.archive == nil {
		return nil, errors.ErrArchiveDisabled
	}
	return uc.archive.GetByID(ctx, id)
}

// ListRecent возвращает последние анкеты из архива
func (uc *SubmissionUseCase) ListRecent(ctx context.Context, limit int) ([]*domain.Submission, error) {
	if uc.archive == nil {
		return nil, errors.ErrArchiveDisabled
	}
	return uc.archive.ListRecent(ctx, limit)
}

func (uc *SubmissionUseCase) checkSelectionLimits(fields []domain.FormField) error {
	if len(uc.limits) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, f := range fields {
		if f.Disabled || f.Type != domain.FieldTypeCheckbox || !f.Checked {
			continue
		}
		counts[f.Name]++
	}

	for name, limit := range uc.limits {
		if counts[name] > limit {
			return errors.ErrTooManySelections.
				WithMessage(fmt.Sprintf("Please select at most %d options for %s.", limit, name)).
				WithDetails(map[string]interface{}{
					"field":    name,
					"limit":    limit,
					"selected": counts[name],
				})
		}
	}
	return nil
}

// BuildPayload собирает анкету так, как её видит таблица:
// отключённые и безымянные элементы пропускаются; select - текст выбранной опции,
// если это не заглушка; radio - только отмеченный; группа флажков - отмеченные
// значения одной строкой через "; " в конце анкеты; остальное - непустое значение без пробелов по краям.
func BuildPayload(fields []domain.FormField) domain.Payload {
	payload := make(domain.Payload, 0, len(fields))

	var groupOrder []string
	groups := make(map[string][]string)

	for _, f := range fields {
		if f.Name == "" || f.Disabled {
			continue
		}

		switch f.Type {
		case domain.FieldTypeSelect:
			label := strings.TrimSpace(f.Label)
			if !isPlaceholderText(label) {
				payload = append(payload, domain.PayloadEntry{Name: f.Name, Value: label})
			}

		case domain.FieldTypeRadio:
			if f.Checked {
				payload = append(payload, domain.PayloadEntry{Name: f.Name, Value: strings.TrimSpace(f.Value)})
			}

		case domain.FieldTypeCheckbox:
			if _, seen := groups[f.Name]; !seen {
				groupOrder = append(groupOrder, f.Name)
				groups[f.Name] = nil
			}
			if f.Checked {
				value := f.Value
				if value == "" {
					value = defaultCheckboxValue
				}
				groups[f.Name] = append(groups[f.Name], strings.TrimSpace(value))
			}

		default:
			if v := strings.TrimSpace(f.Value); v != "" {
				payload = append(payload, domain.PayloadEntry{Name: f.Name, Value: v})
			}
		}
	}

	for _, name := range groupOrder {
		if values := groups[name]; len(values) > 0 {
			payload = append(payload, domain.PayloadEntry{Name: name, Value: strings.Join(values, checkboxSeparator)})
		}
	}

	return payload
}

// FormFieldsFromPairs переводит обычную отправку формы (пары ключ/значение в порядке тела)
// в элементы формы. Повторяющийся ключ считается группой отмеченных флажков.
func FormFieldsFromPairs(pairs []domain.PayloadEntry) []domain.FormField {
	counts := make(map[string]int, len(pairs))
	for _, p := range pairs {
		counts[p.Name]++
	}

	fields := make([]domain.FormField, 0, len(pairs))
	for _, p := range pairs {
		f := domain.FormField{Name: p.Name, Type: domain.FieldTypeText, Value: p.Value}
		if counts[p.Name] > 1 {
			f.Type = domain.FieldTypeCheckbox
			f.Checked = true
		}
		fields = append(fields, f)
	}
	return fields
}

func isPlaceholderText(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "" || strings.Contains(t, placeholderMarker)
}

// locationValues ищет заполненные поля lat и lon
func locationValues(fields []domain.FormField) (lat, lon string, ok bool) {
	for _, f := range fields {
		switch f.Name {
		case "lat":
			if v := strings.TrimSpace(f.Value); v != "" && lat == "" {
				lat = v
			}
		case "lon":
			if v := strings.TrimSpace(f.Value); v != "" && lon == "" {
				lon = v
			}
		}
	}
	return lat, lon, lat != "" && lon != ""
}

func parseCoordinate(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
