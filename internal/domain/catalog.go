package domain

// WalkBuffer - параметры буфера пешей доступности вокруг объектов
type WalkBuffer struct {
	Minutes              float64 `json:"minutes" yaml:"minutes"`
	SpeedMetersPerMinute float64 `json:"speed_meters_per_minute" yaml:"speed_meters_per_minute"`
}

// RadiusMeters - радиус буфера: минуты * скорость
func (w WalkBuffer) RadiusMeters() float64 {
	return w.Minutes * w.SpeedMetersPerMinute
}

// Catalog - статическая конфигурация сценариев и источников.
// Не меняется во время работы, сценарии только включаются/выключаются.
type Catalog struct {
	DefaultOrigin Point           `json:"default_origin" yaml:"default_origin"`
	WalkBuffer    WalkBuffer      `json:"walk_buffer" yaml:"walk_buffer"`
	Scenarios     []Scenario      `json:"scenarios" yaml:"scenarios"`
	Sources       []AmenitySource `json:"sources" yaml:"sources"`
}

// Source ищет источник по идентификатору
func (c *Catalog) Source(id string) (AmenitySource, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return AmenitySource{}, false
}

// Scenario ищет сценарий по имени
func (c *Catalog) Scenario(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// DefaultActive - сценарии, включённые при открытии страницы
func (c *Catalog) DefaultActive() ActiveSet {
	set := make(ActiveSet)
	for _, s := range c.Scenarios {
		if s.DefaultActive {
			set[s.Name] = true
		}
	}
	return set
}

// DefaultVisibleSources - источники, включённые при открытии страницы
func (c *Catalog) DefaultVisibleSources() []string {
	var ids []string
	for _, s := range c.Sources {
		if s.DefaultVisible {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
