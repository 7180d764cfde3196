// Package session хранит состояние карты сценариев для каждой открытой страницы:
// точку отсчёта, включённые сценарии и слои, видимую область и последние результаты.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
	"go.uber.org/zap"
)

// AmenityFetcher - параллельный запрос объектов нескольких источников
type AmenityFetcher interface {
	QueryAll(ctx context.Context, ids []string, bbox domain.BoundingBox, limit int) ([]usecase.SourceResult, error)
}

// LayerBuilder - классификация уже полученных объектов
type LayerBuilder interface {
	BuildLayers(origin domain.Point, active domain.ActiveSet, results []usecase.SourceResult) ([]dto.SourceLayer, dto.EvaluateMeta)
}

// Options - параметры контроллера
type Options struct {
	Debounce       time.Duration
	RefreshTimeout time.Duration
	FeatureLimit   int
}

// Controller - состояние одной страницы.
// Точка и сценарии пересчитываются сразу по текущему набору объектов;
// смена видимой области запрашивает объекты заново после паузы Debounce.
// Каждый запрос получает номер поколения, ответ устаревшего поколения отбрасывается.
type Controller struct {
	mu sync.Mutex

	id      uuid.UUID
	catalog *domain.Catalog
	fetcher AmenityFetcher
	builder LayerBuilder
	opts    Options
	logger  *zap.Logger

	origin   domain.Point
	active   domain.ActiveSet
	visible  map[string]bool
	viewport *domain.BoundingBox

	results []usecase.SourceResult
	layers  []dto.SourceLayer
	meta    dto.EvaluateMeta

	timer      *time.Timer
	timerSeq   uint64 // сработавший таймер с другим номером уже отменён
	generation uint64 // последний выданный номер запроса
	applied    uint64 // номер запроса, чьи данные сейчас в results
	inflight   int

	updatedAt time.Time
	lastUsed  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewController создает контроллер со значениями каталога по умолчанию
func NewController(
	catalog *domain.Catalog,
	fetcher AmenityFetcher,
	builder LayerBuilder,
	opts Options,
	logger *zap.Logger,
) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	visible := make(map[string]bool)
	for _, id := range catalog.DefaultVisibleSources() {
		visible[id] = true
	}

	id := uuid.New()
	now := time.Now()

	return &Controller{
		id:        id,
		catalog:   catalog,
		fetcher:   fetcher,
		builder:   builder,
		opts:      opts,
		logger:    logger.With(zap.String("session", id.String())),
		origin:    catalog.DefaultOrigin,
		active:    catalog.DefaultActive(),
		visible:   visible,
		layers:    []dto.SourceLayer{},
		updatedAt: now,
		lastUsed:  now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ID возвращает идентификатор сессии
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// SetOrigin переносит точку отсчёта и пересчитывает текущие объекты без запроса
func (c *Controller) SetOrigin(p domain.Point) error {
	if !p.IsValid() {
		return errors.ErrInvalidCoordinates
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	c.origin = p
	c.rebuildLocked()
	return nil
}

// SetScenarioActive включает или выключает сценарий и пересчитывает объекты
func (c *Controller) SetScenarioActive(name string, active bool) error {
	if _, ok := c.catalog.Scenario(name); !ok {
		return errors.ErrUnknownScenario.WithDetails(map[string]interface{}{"scenario": name})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	if active {
		c.active[name] = true
	} else {
		delete(c.active, name)
	}
	c.rebuildLocked()
	return nil
}

// SetActiveScenarios заменяет набор включённых сценариев
func (c *Controller) SetActiveScenarios(set domain.ActiveSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	c.active = set.Clone()
	c.rebuildLocked()
	return nil
}

// SetSourceVisible включает или выключает слой источника.
// Включённый слой сразу запрашивается для текущей видимой области.
func (c *Controller) SetSourceVisible(id string, visible bool) error {
	if _, ok := c.catalog.Source(id); !ok {
		return errors.ErrUnknownSource.WithDetails(map[string]interface{}{"source": id})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	if c.visible[id] == visible {
		return nil
	}

	if !visible {
		delete(c.visible, id)
		c.results = dropSource(c.results, id)
		c.rebuildLocked()
		return nil
	}

	c.visible[id] = true
	if c.viewport != nil {
		c.stopTimerLocked()
		c.startFetchLocked()
	}
	return nil
}

// SetVisibleSources заменяет набор видимых слоёв и сразу запрашивает их
func (c *Controller) SetVisibleSources(ids []string) error {
	for _, id := range ids {
		if _, ok := c.catalog.Source(id); !ok {
			return errors.ErrUnknownSource.WithDetails(map[string]interface{}{"source": id})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	c.visible = make(map[string]bool, len(ids))
	for _, id := range ids {
		c.visible[id] = true
	}
	c.results = filterVisible(c.results, c.visible)
	c.rebuildLocked()

	if c.viewport != nil {
		c.stopTimerLocked()
		c.startFetchLocked()
	}
	return nil
}

// ViewportChanged запоминает видимую область и откладывает запрос на Debounce.
// Серия быстрых изменений даёт один запрос по последней области.
func (c *Controller) ViewportChanged(bbox domain.BoundingBox) error {
	if !bbox.IsValid() {
		return errors.ErrInvalidBoundingBox
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	c.viewport = &bbox
	c.stopTimerLocked()
	seq := c.timerSeq
	c.timer = time.AfterFunc(c.opts.Debounce, func() { c.onDebounce(seq) })
	return nil
}

// SetViewport запоминает видимую область и запрашивает объекты сразу
func (c *Controller) SetViewport(bbox domain.BoundingBox) error {
	if !bbox.IsValid() {
		return errors.ErrInvalidBoundingBox
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return err
	}

	c.viewport = &bbox
	c.stopTimerLocked()
	c.startFetchLocked()
	return nil
}

// Snapshot возвращает копию текущего состояния
func (c *Controller) Snapshot() dto.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = time.Now()

	state := dto.SessionState{
		ID:              c.id,
		Origin:          c.origin,
		ActiveScenarios: c.active.Names(c.catalog.Scenarios),
		VisibleSources:  c.visibleIDsLocked(),
		Generation:      c.applied,
		Pending:         c.timer != nil || c.inflight > 0,
		Layers:          make([]dto.SourceLayer, len(c.layers)),
		Meta:            c.meta,
		UpdatedAt:       c.updatedAt,
	}
	copy(state.Layers, c.layers)
	if c.viewport != nil {
		vp := *c.viewport
		state.Viewport = &vp
	}
	return state
}

// LastUsed - время последнего обращения к сессии
func (c *Controller) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Close останавливает таймер и отменяет запросы в полёте
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.cancel()
}

func (c *Controller) onDebounce(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.timerSeq {
		return
	}
	c.timer = nil
	c.startFetchLocked()
}

// startFetchLocked выдаёт новый номер поколения и запускает запрос
func (c *Controller) startFetchLocked() {
	if c.viewport == nil {
		return
	}

	c.generation++
	gen := c.generation
	ids := c.visibleIDsLocked()
	bbox := *c.viewport
	c.inflight++

	go c.fetch(gen, ids, bbox)
}

func (c *Controller) fetch(gen uint64, ids []string, bbox domain.BoundingBox) {
	ctx, cancel := c.ctx, context.CancelFunc(func() {})
	if c.opts.RefreshTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.opts.RefreshTimeout)
	}
	defer cancel()

	results, err := c.fetcher.QueryAll(ctx, ids, bbox, c.opts.FeatureLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if c.closed {
		return
	}
	if gen < c.generation {
		c.logger.Debug("Discarding stale refresh",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.generation))
		return
	}
	if err != nil {
		c.logger.Warn("Refresh failed", zap.Uint64("generation", gen), zap.Error(err))
		return
	}

	// слой могли скрыть, пока запрос был в полёте
	c.results = filterVisible(results, c.visible)
	c.applied = gen
	c.rebuildLocked()
}

func (c *Controller) rebuildLocked() {
	c.layers, c.meta = c.builder.BuildLayers(c.origin, c.active, c.results)
	now := time.Now()
	c.updatedAt = now
	c.lastUsed = now
}

func (c *Controller) stopTimerLocked() {
	c.timerSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) usableLocked() error {
	if c.closed {
		return errors.ErrSessionNotFound
	}
	c.lastUsed = time.Now()
	return nil
}

// visibleIDsLocked - видимые источники в порядке каталога
func (c *Controller) visibleIDsLocked() []string {
	ids := make([]string, 0, len(c.visible))
	for _, s := range c.catalog.Sources {
		if c.visible[s.ID] {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func dropSource(results []usecase.SourceResult, id string) []usecase.SourceResult {
	out := make([]usecase.SourceResult, 0, len(results))
	for _, r := range results {
		if r.Source.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func filterVisible(results []usecase.SourceResult, visible map[string]bool) []usecase.SourceResult {
	out := make([]usecase.SourceResult, 0, len(results))
	for _, r := range results {
		if visible[r.Source.ID] {
			out = append(out, r)
		}
	}
	return out
}
