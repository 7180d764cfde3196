package domain

// Scenario - вариант передвижения с эффективным радиусом достижимости
type Scenario struct {
	Name          string  `json:"name" yaml:"name"`
	RadiusMeters  float64 `json:"radius_meters" yaml:"radius_meters"`
	Color         string  `json:"color" yaml:"color"`
	DefaultActive bool    `json:"default_active" yaml:"default_active"`
}

// ActiveSet - какие сценарии сейчас включены (по имени)
type ActiveSet map[string]bool

// NewActiveSet строит набор из списка имён
func NewActiveSet(names ...string) ActiveSet {
	set := make(ActiveSet, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// IsActive - предикат для вычислителя достижимости
func (s ActiveSet) IsActive(sc Scenario) bool {
	return s[sc.Name]
}

// Clone копирует набор
func (s ActiveSet) Clone() ActiveSet {
	out := make(ActiveSet, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// Names возвращает включённые имена в порядке списка сценариев
func (s ActiveSet) Names(scenarios []Scenario) []string {
	names := make([]string, 0, len(s))
	for _, sc := range scenarios {
		if s[sc.Name] {
			names = append(names, sc.Name)
		}
	}
	return names
}
