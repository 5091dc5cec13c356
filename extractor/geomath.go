package extractor

import "math"

const (
	earthRadius = 6372797.560856 // meters, matches the downstream graph builder
	pi180       = math.Pi / 180.0
)

// degreesToRadians rad = deg * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// euclideanDistance returns the approximate distance in meters between two
// fixed-point coordinates, using an equirectangular projection around the
// mean latitude
func euclideanDistance(lat1, lon1, lat2, lon2 int32) float64 {
	radLat1 := degreesToRadians(float64(lat1) / coordinatePrecision)
	radLon1 := degreesToRadians(float64(lon1) / coordinatePrecision)
	radLat2 := degreesToRadians(float64(lat2) / coordinatePrecision)
	radLon2 := degreesToRadians(float64(lon2) / coordinatePrecision)
	x := (radLon2 - radLon1) * math.Cos((radLat1+radLat2)/2.0)
	y := radLat2 - radLat1
	return math.Sqrt(x*x+y*y) * earthRadius
}
