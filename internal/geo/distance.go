package geo

import "math"

const earthRadiusMiles = 3958.8

// Miles returns the great-circle distance in miles between two coordinates
// using the haversine formula.
func Miles(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// WithinRadius reports whether (lat, lon) is within radiusMiles of the
// reference point.
func WithinRadius(refLat, refLon, lat, lon, radiusMiles float64) bool {
	return Miles(refLat, refLon, lat, lon) <= radiusMiles
}
