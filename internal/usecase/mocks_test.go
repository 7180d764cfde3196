package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/survey-reachability/internal/domain"
)

// MockAmenityRepository is a mock of AmenityRepository
type MockAmenityRepository struct {
	mock.Mock
}

func (m *MockAmenityRepository) QueryFeatures(ctx context.Context, source domain.AmenitySource, bbox domain.BoundingBox, limit int) ([]domain.Amenity, error) {
	args := m.Called(ctx, source, bbox, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Amenity), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetAmenities(ctx context.Context, sourceID string, bbox domain.BoundingBox, limit int) ([]domain.Amenity, error) {
	args := m.Called(ctx, sourceID, bbox, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Amenity), args.Error(1)
}

func (m *MockCacheRepository) SetAmenities(ctx context.Context, sourceID string, bbox domain.BoundingBox, limit int, amenities []domain.Amenity, ttl time.Duration) error {
	args := m.Called(ctx, sourceID, bbox, limit, amenities, ttl)
	return args.Error(0)
}

// MockSubmissionSink is a mock of SubmissionSink
type MockSubmissionSink struct {
	mock.Mock
}

func (m *MockSubmissionSink) Submit(ctx context.Context, payload domain.Payload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		DefaultOrigin: domain.Point{Lat: 47.6567, Lon: -122.3066},
		WalkBuffer:    domain.WalkBuffer{Minutes: 15, SpeedMetersPerMinute: 80},
		Scenarios: []domain.Scenario{
			{Name: "Walk-only (15 min)", RadiusMeters: 1200, Color: "#2b8cbe", DefaultActive: true},
			{Name: "Walk + transit (15 min total)", RadiusMeters: 4400, Color: "#31a354", DefaultActive: true},
			{Name: "Walk + transit + micromobility (15 min total)", RadiusMeters: 4590, Color: "#ff7f00"},
		},
		Sources: []domain.AmenitySource{
			{
				ID: "groceries", Label: "Groceries (King County)", URL: "https://example.org/groceries",
				IDField: "OBJECTID", PopupFields: []string{"NAME", "CITY"}, BufferColor: "#1b9e77", DefaultVisible: true,
			},
			{
				ID: "parks", Label: "Parks", URL: "https://example.org/parks",
				IDField: "OBJECTID", PopupFields: []string{"SiteName"}, BufferColor: "#66a61e",
			},
		},
	}
}
