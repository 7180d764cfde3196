package domain

import (
	"fmt"
	"math"
)

// Point - координаты WGS84 в десятичных градусах
type Point struct {
	Lat float64 `json:"lat" db:"lat" yaml:"lat"`
	Lon float64 `json:"lon" db:"lon" yaml:"lon"`
}

// IsFinite проверяет, что обе координаты - конечные числа
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// IsValid - конечные координаты в допустимых пределах
func (p Point) IsValid() bool {
	return p.IsFinite() && p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// NewBoundingBox строит bbox по юго-западному и северо-восточному углам видимой области
func NewBoundingBox(swLat, swLon, neLat, neLon float64) BoundingBox {
	return BoundingBox{MinLat: swLat, MinLon: swLon, MaxLat: neLat, MaxLon: neLon}
}

// IsValid проверяет углы bbox
func (b BoundingBox) IsValid() bool {
	sw := Point{Lat: b.MinLat, Lon: b.MinLon}
	ne := Point{Lat: b.MaxLat, Lon: b.MaxLon}
	return sw.IsValid() && ne.IsValid() && b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// Envelope возвращает bbox в формате ArcGIS envelope: xmin,ymin,xmax,ymax
func (b BoundingBox) Envelope() string {
	return fmt.Sprintf("%f,%f,%f,%f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// CacheKey - bbox, округлённый до 5 знаков (~1 м), для ключей кеша
func (b BoundingBox) CacheKey() string {
	return fmt.Sprintf("%.5f:%.5f:%.5f:%.5f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
