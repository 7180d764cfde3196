package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/pkg/errors"
	"github.com/survey-reachability/internal/pkg/utils"
	"github.com/survey-reachability/internal/usecase"
	"github.com/survey-reachability/internal/usecase/dto"
)

var origin = domain.Point{Lat: 47.6567, Lon: -122.3066}

func amenityAt(id string, meters float64) domain.Amenity {
	p := utils.DestinationPoint(origin, 90, meters)
	return domain.Amenity{
		ID:         id,
		SourceID:   "groceries",
		Location:   &p,
		Attributes: map[string]interface{}{"NAME": "Store " + id},
	}
}

func newReachabilityUseCase(repo *MockAmenityRepository) *usecase.ReachabilityUseCase {
	catalog := testCatalog()
	amenities := usecase.NewAmenityUseCase(catalog, repo, nil, time.Minute, 1000, 32, zap.NewNop())
	return usecase.NewReachabilityUseCase(catalog, amenities, 2000, 32, zap.NewNop())
}

func seattleBBox() dto.BBox {
	return dto.BBox{SWLat: 47.5, SWLon: -122.5, NELat: 47.8, NELon: -122.1}
}

func TestReachabilityUseCase_Evaluate_Defaults(t *testing.T) {
	repo := new(MockAmenityRepository)
	repo.On("QueryFeatures", mock.Anything, mock.MatchedBy(func(s domain.AmenitySource) bool {
		return s.ID == "groceries"
	}), seattle, 2000).Return([]domain.Amenity{
		amenityAt("near", 1000),
		amenityAt("mid", 3000),
		amenityAt("far", 4500),
		{ID: "broken", SourceID: "groceries"},
	}, nil)

	uc := newReachabilityUseCase(repo)
	resp, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{BBox: seattleBBox()})
	require.NoError(t, err)

	assert.Equal(t, origin, resp.Origin)
	assert.Equal(t, []string{"Walk-only (15 min)", "Walk + transit (15 min total)"}, resp.ActiveScenarios)
	require.Len(t, resp.Layers, 1)

	layer := resp.Layers[0]
	assert.Equal(t, "groceries", layer.SourceID)
	assert.Equal(t, 1, layer.Skipped)
	require.Len(t, layer.Markers, 3)

	near, mid, far := layer.Markers[0], layer.Markers[1], layer.Markers[2]

	assert.Equal(t, "Walk-only (15 min)", near.ReachedBy)
	assert.Equal(t, int64(1000), near.DistanceMeters)
	assert.Equal(t, "#2b8cbe", near.Style.Color)
	assert.Equal(t, 3, near.Style.Weight)
	assert.Equal(t, 0.9, near.Style.FillOpacity)
	assert.Equal(t, "#1b9e77", near.Style.FillColor)

	assert.Equal(t, "Walk + transit (15 min total)", mid.ReachedBy)

	assert.False(t, far.Reachable, "micromobility is not active by default")
	assert.Equal(t, usecase.UnreachableColor, far.Style.Color)
	assert.Equal(t, 1, far.Style.Weight)
	assert.Equal(t, 0.25, far.Style.FillOpacity)
	assert.Contains(t, far.PopupHTML, "<div><strong>Reached by:</strong> None selected</div>")

	assert.Equal(t, dto.EvaluateMeta{Total: 3, Reachable: 2, Skipped: 1}, resp.Meta)
}

func TestReachabilityUseCase_Evaluate_SourceFailureIsolated(t *testing.T) {
	repo := new(MockAmenityRepository)
	repo.On("QueryFeatures", mock.Anything, mock.MatchedBy(func(s domain.AmenitySource) bool {
		return s.ID == "groceries"
	}), seattle, 10).Return([]domain.Amenity{amenityAt("near", 500)}, nil)
	repo.On("QueryFeatures", mock.Anything, mock.MatchedBy(func(s domain.AmenitySource) bool {
		return s.ID == "parks"
	}), seattle, 10).Return(nil, stderrors.New("timeout"))

	uc := newReachabilityUseCase(repo)
	resp, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{
		BBox:    seattleBBox(),
		Sources: []string{"groceries", "parks"},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Layers, 2)

	assert.Len(t, resp.Layers[0].Markers, 1)
	assert.Empty(t, resp.Layers[0].Error)

	assert.Empty(t, resp.Layers[1].Markers)
	assert.NotEmpty(t, resp.Layers[1].Error)
	assert.Equal(t, 1, resp.Meta.Failed)
}

func TestReachabilityUseCase_Evaluate_ExplicitSelection(t *testing.T) {
	repo := new(MockAmenityRepository)
	repo.On("QueryFeatures", mock.Anything, mock.Anything, seattle, 2000).Return([]domain.Amenity{amenityAt("a", 500)}, nil)

	uc := newReachabilityUseCase(repo)

	resp, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{
		BBox:      seattleBBox(),
		Scenarios: []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ActiveScenarios)
	assert.False(t, resp.Layers[0].Markers[0].Reachable, "no active scenarios reach nothing")

	custom := dto.Point{Lat: 47.3223, Lon: -122.3126}
	resp, err = uc.Evaluate(context.Background(), dto.EvaluateRequest{
		BBox:   seattleBBox(),
		Origin: &custom,
	})
	require.NoError(t, err)
	assert.Equal(t, custom.ToDomain(), resp.Origin)
}

func TestReachabilityUseCase_Evaluate_Errors(t *testing.T) {
	uc := newReachabilityUseCase(new(MockAmenityRepository))
	ctx := context.Background()

	_, err := uc.Evaluate(ctx, dto.EvaluateRequest{BBox: seattleBBox(), Scenarios: []string{"Teleport"}})
	assert.ErrorIs(t, err, errors.ErrUnknownScenario)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{BBox: seattleBBox(), Sources: []string{"libraries"}})
	assert.ErrorIs(t, err, errors.ErrUnknownSource)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{BBox: dto.BBox{SWLat: 48, SWLon: -122, NELat: 47, NELon: -121}})
	assert.ErrorIs(t, err, errors.ErrInvalidBoundingBox)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{BBox: seattleBBox(), Origin: &dto.Point{Lat: 91, Lon: 0}})
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
}

func TestReachabilityUseCase_BuildLayers_NoDetails(t *testing.T) {
	uc := newReachabilityUseCase(new(MockAmenityRepository))
	source, _ := testCatalog().Source("groceries")

	bare := amenityAt("bare", 100)
	bare.Attributes = nil

	layers, _ := uc.BuildLayers(origin, domain.NewActiveSet("Walk-only (15 min)"), []usecase.SourceResult{
		{Source: source, Amenities: []domain.Amenity{bare}},
	})

	require.Len(t, layers[0].Markers, 1)
	m := layers[0].Markers[0]
	assert.Equal(t, utils.NoDetails, m.Popup[0].Value)
	assert.Equal(t, "Reachable", m.Popup[1].Label)
	assert.Contains(t, m.PopupHTML, "<em>No details</em>")
}

func TestReachabilityUseCase_Rings(t *testing.T) {
	uc := newReachabilityUseCase(new(MockAmenityRepository))

	fc, err := uc.Rings(nil, nil)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Walk-only (15 min) — ~1200 m", fc.Features[0].Properties["tooltip"])
	assert.Equal(t, "#31a354", fc.Features[1].Properties["color"])

	fc, err = uc.Rings(&dto.Point{Lat: 47.3, Lon: -122.3}, []string{"Walk + transit + micromobility (15 min total)"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Walk + transit + micromobility (15 min total) — ~4590 m", fc.Features[0].Properties["tooltip"])

	_, err = uc.Rings(nil, []string{"Teleport"})
	assert.ErrorIs(t, err, errors.ErrUnknownScenario)
}

func TestParseNames(t *testing.T) {
	assert.Nil(t, usecase.ParseNames(""))
	assert.Equal(t, []string{"a", "b c"}, usecase.ParseNames(" a , ,b c"))
}
