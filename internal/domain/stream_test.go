package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubmissionEvent_RoundTrip(t *testing.T) {
	lat := 47.6567
	lon := -122.3066
	s := &Submission{
		ID: uuid.New(),
		Payload: Payload{
			{Name: "lat", Value: "47.656700"},
			{Name: "lon", Value: "-122.306600"},
			{Name: "near_miss", Value: "cars; bikes"},
		},
		Lat:       &lat,
		Lon:       &lon,
		Status:    StatusSubmitted,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	back := NewSubmissionEvent(s).ToSubmission()

	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Payload, back.Payload)
	assert.Equal(t, *s.Lat, *back.Lat)
	assert.True(t, back.Delivered())
}

func TestPoint_IsFinite(t *testing.T) {
	tests := []struct {
		name     string
		point    Point
		expected bool
	}{
		{name: "regular point", point: Point{Lat: 47.6, Lon: -122.3}, expected: true},
		{name: "nan latitude", point: Point{Lat: math.NaN(), Lon: -122.3}, expected: false},
		{name: "infinite longitude", point: Point{Lat: 47.6, Lon: math.Inf(1)}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.point.IsFinite())
		})
	}
}

func TestBoundingBox_IsValid(t *testing.T) {
	assert.True(t, NewBoundingBox(47.5, -122.5, 47.8, -122.1).IsValid())
	assert.False(t, NewBoundingBox(47.8, -122.5, 47.5, -122.1).IsValid(), "inverted latitudes")
	assert.False(t, NewBoundingBox(-95, -122.5, 47.5, -122.1).IsValid(), "latitude out of range")
}

func TestCatalog_Defaults(t *testing.T) {
	c := &Catalog{
		Scenarios: []Scenario{
			{Name: "a", RadiusMeters: 100, DefaultActive: true},
			{Name: "b", RadiusMeters: 200},
		},
		Sources: []AmenitySource{
			{ID: "groceries", DefaultVisible: true},
			{ID: "parks"},
		},
	}

	assert.Equal(t, NewActiveSet("a"), c.DefaultActive())
	assert.Equal(t, []string{"groceries"}, c.DefaultVisibleSources())

	_, ok := c.Source("missing")
	assert.False(t, ok)
}

func TestAmenity_AttributeString(t *testing.T) {
	a := Amenity{Attributes: map[string]interface{}{
		"NAME":    "Fresh Market",
		"ZIPCODE": float64(98105),
		"RATIO":   0.5,
		"EMPTY":   nil,
	}}

	assert.Equal(t, "Fresh Market", a.AttributeString("NAME"))
	assert.Equal(t, "98105", a.AttributeString("ZIPCODE"))
	assert.Equal(t, "0.5", a.AttributeString("RATIO"))
	assert.Equal(t, "", a.AttributeString("EMPTY"))
	assert.Equal(t, "", a.AttributeString("MISSING"))
}
