package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"go.uber.org/zap"
)

// Manager - реестр контроллеров открытых страниц
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller

	catalog *domain.Catalog
	fetcher AmenityFetcher
	builder LayerBuilder
	opts    Options
	idleTTL time.Duration
	logger  *zap.Logger
}

// NewManager создает Manager. Сессии без обращений дольше idleTTL удаляются в Run.
func NewManager(
	catalog *domain.Catalog,
	fetcher AmenityFetcher,
	builder LayerBuilder,
	opts Options,
	idleTTL time.Duration,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Controller),
		catalog:  catalog,
		fetcher:  fetcher,
		builder:  builder,
		opts:     opts,
		idleTTL:  idleTTL,
		logger:   logger,
	}
}

// Create открывает новую сессию со значениями по умолчанию
func (m *Manager) Create() *Controller {
	c := NewController(m.catalog, m.fetcher, m.builder, m.opts, m.logger)

	m.mu.Lock()
	m.sessions[c.ID()] = c
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("Session created",
		zap.String("session", c.ID().String()),
		zap.Int("active_sessions", total))
	return c
}

// Get возвращает контроллер сессии
func (m *Manager) Get(id uuid.UUID) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return c, nil
}

// Delete закрывает сессию
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return errors.ErrSessionNotFound
	}
	c.Close()
	return nil
}

// Len - количество открытых сессий
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle закрывает сессии, к которым не обращались дольше idleTTL
func (m *Manager) EvictIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	var idle []*Controller

	m.mu.Lock()
	for id, c := range m.sessions {
		if now.Sub(c.LastUsed()) > m.idleTTL {
			idle = append(idle, c)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	if len(idle) > 0 {
		m.logger.Info("Evicted idle sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run периодически удаляет простаивающие сессии до отмены ctx
func (m *Manager) Run(ctx context.Context) {
	if m.idleTTL <= 0 {
		return
	}

	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.EvictIdle(now)
		}
	}
}

// Close закрывает все сессии
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Controller)
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
