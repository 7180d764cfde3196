package domain

import "fmt"

// DefaultWhere - фильтр ArcGIS "все записи"
const DefaultWhere = "1=1"

// AmenitySource - внешний слой ArcGIS с объектами инфраструктуры
type AmenitySource struct {
	ID             string   `json:"id" yaml:"id"`
	Label          string   `json:"label" yaml:"label"`
	URL            string   `json:"url" yaml:"url"`
	Where          string   `json:"where,omitempty" yaml:"where"`
	IDField        string   `json:"id_field" yaml:"id_field"`
	PopupFields    []string `json:"popup_fields" yaml:"popup_fields"`
	BufferColor    string   `json:"buffer_color" yaml:"buffer_color"`
	DefaultVisible bool     `json:"default_visible" yaml:"default_visible"`
}

// WhereClause возвращает фильтр источника или "1=1"
func (s AmenitySource) WhereClause() string {
	if s.Where == "" {
		return DefaultWhere
	}
	return s.Where
}

// OutFields - поля, запрашиваемые у сервиса: идентификатор + поля попапа
func (s AmenitySource) OutFields() []string {
	fields := make([]string, 0, len(s.PopupFields)+1)
	if s.IDField != "" {
		fields = append(fields, s.IDField)
	}
	for _, f := range s.PopupFields {
		if f != s.IDField {
			fields = append(fields, f)
		}
	}
	return fields
}

// Amenity - точка интереса из внешнего сервиса.
// Location == nil, если у объекта нет геометрии.
type Amenity struct {
	ID         string                 `json:"id"`
	SourceID   string                 `json:"source_id"`
	Location   *Point                 `json:"location,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// HasValidLocation - есть конечные координаты
func (a Amenity) HasValidLocation() bool {
	return a.Location != nil && a.Location.IsFinite()
}

// AttributeString возвращает атрибут как строку; пустая строка, если значения нет
func (a Amenity) AttributeString(field string) string {
	v, ok := a.Attributes[field]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
