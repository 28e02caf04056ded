package geo

import (
	"math"

	"parking-planner-service/internal/domain"
)

// Mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b domain.Coordinates) float64 {
	if a == b {
		return 0
	}

	dLat := DegToRad(b.Lat - a.Lat)
	dLng := DegToRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(DegToRad(a.Lat))*math.Cos(DegToRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}
