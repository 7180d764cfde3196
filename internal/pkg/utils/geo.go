package utils

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/survey-reachability/internal/domain"
)

// EarthRadiusMeters - радиус сферы, на которой карта считает distanceTo
const EarthRadiusMeters = 6371000.0

// HaversineMeters - расстояние по дуге большого круга в метрах
func HaversineMeters(a, b domain.Point) float64 {
	return haversineCentralAngle(a.Lat, a.Lon, b.Lat, b.Lon) * EarthRadiusMeters
}

func haversineCentralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	// защита от a > 1 из-за погрешности округления
	a = math.Min(1, a)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DestinationPoint - точка на расстоянии distanceM от origin по азимуту bearingDeg
func DestinationPoint(origin domain.Point, bearingDeg, distanceM float64) domain.Point {
	delta := distanceM / EarthRadiusMeters
	theta := bearingDeg * math.Pi / 180.0
	phi1 := origin.Lat * math.Pi / 180.0
	lambda1 := origin.Lon * math.Pi / 180.0

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	lon := math.Mod(lambda2*180.0/math.Pi+540, 360) - 180
	return domain.Point{Lat: phi2 * 180.0 / math.Pi, Lon: lon}
}

// CirclePolygon аппроксимирует круг радиуса radiusM многоугольником из segments вершин
func CirclePolygon(center domain.Point, radiusM float64, segments int) orb.Polygon {
	if segments < 8 {
		segments = 8
	}

	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := float64(i) * 360.0 / float64(segments)
		p := DestinationPoint(center, bearing, radiusM)
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

// ToOrbPoint переводит точку в порядок lon/lat
func ToOrbPoint(p domain.Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
