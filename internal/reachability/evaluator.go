// Package reachability классифицирует объекты по сценариям передвижения.
// Все функции чистые: состояние между вызовами не хранится.
package reachability

import (
	"sort"

	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/utils"
)

// Result - оценка одного объекта относительно точки отсчёта
type Result struct {
	Amenity        domain.Amenity
	DistanceMeters float64
	// ReachedBy - самый "короткий" активный сценарий, покрывающий расстояние; nil - недостижим
	ReachedBy *domain.Scenario
}

// Reachable - объект покрыт хотя бы одним активным сценарием
func (r Result) Reachable() bool {
	return r.ReachedBy != nil
}

// RoundedMeters - расстояние для отображения, классификация идёт по точному значению
func (r Result) RoundedMeters() int64 {
	return utils.RoundMeters(r.DistanceMeters)
}

// ReachedByName возвращает имя сценария или пустую строку
func (r Result) ReachedByName() string {
	if r.ReachedBy == nil {
		return ""
	}
	return r.ReachedBy.Name
}

// Batch - результат оценки набора объектов
type Batch struct {
	Results []Result
	// Skipped - объекты без геометрии или с некорректными координатами
	Skipped []domain.Amenity
}

// ActiveScenariosSorted возвращает включённые сценарии по возрастанию радиуса.
// Сортировка стабильная: при равных радиусах сохраняется порядок каталога.
func ActiveScenariosSorted(scenarios []domain.Scenario, isActive func(domain.Scenario) bool) []domain.Scenario {
	active := make([]domain.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if isActive != nil && isActive(s) {
			active = append(active, s)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].RadiusMeters < active[j].RadiusMeters
	})

	return active
}

// Classify возвращает первый сценарий, радиус которого не меньше distanceMeters.
// sortedActive должен быть результатом ActiveScenariosSorted.
func Classify(distanceMeters float64, sortedActive []domain.Scenario) *domain.Scenario {
	for i := range sortedActive {
		if distanceMeters <= sortedActive[i].RadiusMeters {
			s := sortedActive[i]
			return &s
		}
	}
	return nil
}

// Evaluate считает расстояние от origin до объекта и классифицирует его.
// false - у объекта нет геометрии или координаты некорректны.
func Evaluate(origin domain.Point, amenity domain.Amenity, sortedActive []domain.Scenario) (Result, bool) {
	if !amenity.HasValidLocation() {
		return Result{Amenity: amenity}, false
	}

	d := utils.HaversineMeters(origin, *amenity.Location)
	return Result{
		Amenity:        amenity,
		DistanceMeters: d,
		ReachedBy:      Classify(d, sortedActive),
	}, true
}

// EvaluateAll оценивает все объекты относительно origin.
// Объекты без координат не попадают в Results и перечисляются в Skipped.
func EvaluateAll(
	origin domain.Point,
	amenities []domain.Amenity,
	scenarios []domain.Scenario,
	isActive func(domain.Scenario) bool,
) Batch {
	sorted := ActiveScenariosSorted(scenarios, isActive)

	batch := Batch{Results: make([]Result, 0, len(amenities))}
	for _, a := range amenities {
		r, ok := Evaluate(origin, a, sorted)
		if !ok {
			batch.Skipped = append(batch.Skipped, a)
			continue
		}
		batch.Results = append(batch.Results, r)
	}

	return batch
}
