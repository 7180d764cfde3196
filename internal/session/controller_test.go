package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/usecase"
)

var (
	origin = domain.Point{Lat: 47.6567, Lon: -122.3066}
	bboxA  = domain.NewBoundingBox(47.5, -122.5, 47.8, -122.1)
	bboxB  = domain.NewBoundingBox(47.6, -122.4, 47.7, -122.2)
)

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		DefaultOrigin: origin,
		WalkBuffer:    domain.WalkBuffer{Minutes: 15, SpeedMetersPerMinute: 80},
		Scenarios: []domain.Scenario{
			{Name: "Walk-only (15 min)", RadiusMeters: 1200, Color: "#2b8cbe", DefaultActive: true},
			{Name: "Walk + transit (15 min total)", RadiusMeters: 4400, Color: "#31a354", DefaultActive: true},
			{Name: "Walk + transit + micromobility (15 min total)", RadiusMeters: 4590, Color: "#ff7f00"},
		},
		Sources: []domain.AmenitySource{
			{ID: "groceries", Label: "Groceries", URL: "https://example.org/g", DefaultVisible: true},
			{ID: "parks", Label: "Parks", URL: "https://example.org/p"},
		},
	}
}

// fakeFetcher отдаёт один объект на источник; расстояние до него зависит от bbox.
// Вызов с номером из hold ждёт закрытия соответствующего канала.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	hold    map[int]chan struct{}
	catalog *domain.Catalog
}

type fetchCall struct {
	ids  []string
	bbox domain.BoundingBox
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{hold: make(map[int]chan struct{}), catalog: testCatalog()}
}

func (f *fakeFetcher) QueryAll(ctx context.Context, ids []string, bbox domain.BoundingBox, limit int) ([]usecase.SourceResult, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, fetchCall{ids: ids, bbox: bbox})
	wait := f.hold[n]
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// bboxA - объект в 1000 м, bboxB - в 3000 м
	distance := 1000.0
	if bbox == bboxB {
		distance = 3000.0
	}

	results := make([]usecase.SourceResult, 0, len(ids))
	for _, id := range ids {
		src, _ := f.catalog.Source(id)
		p := utils.DestinationPoint(origin, 0, distance)
		results = append(results, usecase.SourceResult{
			Source:    src,
			Amenities: []domain.Amenity{{ID: id + "-1", SourceID: id, Location: &p}},
		})
	}
	return results, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) call(i int) fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func newTestController(t *testing.T, fetcher *fakeFetcher, debounce time.Duration) *Controller {
	catalog := testCatalog()
	builder := usecase.NewReachabilityUseCase(catalog, nil, 2000, 32, zap.NewNop())
	c := NewController(catalog, fetcher, builder, Options{
		Debounce:       debounce,
		RefreshTimeout: 5 * time.Second,
		FeatureLimit:   2000,
	}, zap.NewNop())
	t.Cleanup(c.Close)
	return c
}

func waitGeneration(t *testing.T, c *Controller, gen uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.Generation == gen && !s.Pending
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_Defaults(t *testing.T) {
	c := newTestController(t, newFakeFetcher(), 10*time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, origin, s.Origin)
	assert.Equal(t, []string{"Walk-only (15 min)", "Walk + transit (15 min total)"}, s.ActiveScenarios)
	assert.Equal(t, []string{"groceries"}, s.VisibleSources)
	assert.Nil(t, s.Viewport)
	assert.Empty(t, s.Layers)
	assert.False(t, s.Pending)
}

func TestController_ViewportChanged_Debounced(t *testing.T) {
	fetcher := newFakeFetcher()
	c := newTestController(t, fetcher, 50*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.ViewportChanged(bboxA))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, c.ViewportChanged(bboxB))
	assert.True(t, c.Snapshot().Pending)

	waitGeneration(t, c, 1)

	assert.Equal(t, 1, fetcher.callCount(), "rapid viewport changes coalesce into one fetch")
	assert.Equal(t, bboxB, fetcher.call(0).bbox, "fetch uses the last viewport")

	s := c.Snapshot()
	require.Len(t, s.Layers, 1)
	require.Len(t, s.Layers[0].Markers, 1)
	assert.Equal(t, "Walk + transit (15 min total)", s.Layers[0].Markers[0].ReachedBy)
}

func TestController_DiscardsStaleResponse(t *testing.T) {
	fetcher := newFakeFetcher()
	release := make(chan struct{})
	fetcher.hold[0] = release

	c := newTestController(t, fetcher, time.Millisecond)

	require.NoError(t, c.SetViewport(bboxA)) // поколение 1 висит
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, c.SetViewport(bboxB)) // поколение 2 отвечает сразу

	require.Eventually(t, func() bool {
		return c.Snapshot().Generation == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, c.Snapshot().Pending, "generation 1 is still in flight")
	close(release)

	// даём ответу поколения 1 дойти и убеждаемся, что он отброшен
	require.Eventually(t, func() bool {
		return fetcher.callCount() == 2 && !c.Snapshot().Pending
	}, time.Second, 5*time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, uint64(2), s.Generation)
	assert.Equal(t, int64(3000), s.Layers[0].Markers[0].DistanceMeters)
}

func TestController_SetOrigin_ReevaluatesWithoutFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	c := newTestController(t, fetcher, time.Millisecond)

	require.NoError(t, c.SetViewport(bboxA))
	waitGeneration(t, c, 1)
	assert.True(t, c.Snapshot().Layers[0].Markers[0].Reachable)

	far := utils.DestinationPoint(origin, 180, 10000)
	require.NoError(t, c.SetOrigin(far))

	s := c.Snapshot()
	assert.Equal(t, far, s.Origin)
	assert.False(t, s.Layers[0].Markers[0].Reachable)
	assert.Equal(t, 1, fetcher.callCount(), "moving the origin does not refetch")

	assert.ErrorIs(t, c.SetOrigin(domain.Point{Lat: 100}), errors.ErrInvalidCoordinates)
}

func TestController_SetScenarioActive(t *testing.T) {
	fetcher := newFakeFetcher()
	c := newTestController(t, fetcher, time.Millisecond)

	require.NoError(t, c.SetViewport(bboxA))
	waitGeneration(t, c, 1)
	assert.Equal(t, "Walk-only (15 min)", c.Snapshot().Layers[0].Markers[0].ReachedBy)

	require.NoError(t, c.SetScenarioActive("Walk-only (15 min)", false))
	assert.Equal(t, "Walk + transit (15 min total)", c.Snapshot().Layers[0].Markers[0].ReachedBy)

	require.NoError(t, c.SetScenarioActive("Walk + transit (15 min total)", false))
	s := c.Snapshot()
	assert.Empty(t, s.ActiveScenarios)
	assert.False(t, s.Layers[0].Markers[0].Reachable)

	assert.ErrorIs(t, c.SetScenarioActive("Teleport", true), errors.ErrUnknownScenario)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestController_SetSourceVisible(t *testing.T) {
	fetcher := newFakeFetcher()
	c := newTestController(t, fetcher, time.Millisecond)

	require.NoError(t, c.SetViewport(bboxA))
	waitGeneration(t, c, 1)

	require.NoError(t, c.SetSourceVisible("parks", true))
	waitGeneration(t, c, 2)
	assert.Equal(t, []string{"groceries", "parks"}, fetcher.call(1).ids)
	assert.Len(t, c.Snapshot().Layers, 2)

	require.NoError(t, c.SetSourceVisible("groceries", false))
	s := c.Snapshot()
	assert.Equal(t, []string{"parks"}, s.VisibleSources)
	require.Len(t, s.Layers, 1)
	assert.Equal(t, "parks", s.Layers[0].SourceID)
	assert.Equal(t, 2, fetcher.callCount(), "hiding a layer does not refetch")

	assert.ErrorIs(t, c.SetSourceVisible("libraries", true), errors.ErrUnknownSource)
}

func TestController_HiddenSourceNotRestoredByInflightRefresh(t *testing.T) {
	fetcher := newFakeFetcher()
	release := make(chan struct{})
	fetcher.hold[0] = release
	c := newTestController(t, fetcher, time.Millisecond)

	require.NoError(t, c.SetVisibleSources([]string{"groceries", "parks"}))
	require.NoError(t, c.SetViewport(bboxA))
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"groceries", "parks"}, fetcher.call(0).ids)

	require.NoError(t, c.SetSourceVisible("parks", false))
	close(release)
	waitGeneration(t, c, 1)

	s := c.Snapshot()
	assert.Equal(t, []string{"groceries"}, s.VisibleSources)
	require.Len(t, s.Layers, 1)
	assert.Equal(t, "groceries", s.Layers[0].SourceID)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestController_Close_StopsPendingRefresh(t *testing.T) {
	fetcher := newFakeFetcher()
	c := newTestController(t, fetcher, 30*time.Millisecond)

	require.NoError(t, c.ViewportChanged(bboxA))
	c.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, fetcher.callCount())
	assert.ErrorIs(t, c.ViewportChanged(bboxA), errors.ErrSessionNotFound)
}

func TestController_InvalidViewport(t *testing.T) {
	c := newTestController(t, newFakeFetcher(), time.Millisecond)
	assert.ErrorIs(t, c.ViewportChanged(domain.NewBoundingBox(48, -122, 47, -121)), errors.ErrInvalidBoundingBox)
}
