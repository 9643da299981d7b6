// Package geospatial holds the pure great-circle math used by the
// discovery and routing fallbacks. Everything operates on bare
// lat/lon degrees so the package stays free of domain imports.
package geospatial

import "math"

const earthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance in kilometers between
// two points using the Haversine formula. Symmetric in its arguments and
// zero for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Destination projects a point the given distance (km) along the given
// initial bearing (degrees clockwise from north) over the Earth's surface.
func Destination(lat, lon, bearingDeg, distKm float64) (float64, float64) {
	delta := distKm / earthRadiusKm
	theta := toRad(bearingDeg)
	phi1 := toRad(lat)
	lambda1 := toRad(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return toDeg(phi2), normalizeLon(toDeg(lambda2))
}

// SampleLine returns n evenly spaced points on the straight segment from
// (lat1,lon1) to (lat2,lon2), endpoints inclusive. n is clamped to 2.
// Each element is {lat, lon}.
func SampleLine(lat1, lon1, lat2, lon2 float64, n int) [][2]float64 {
	if n < 2 {
		n = 2
	}
	pts := make([][2]float64, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		pts[i] = [2]float64{
			lat1 + (lat2-lat1)*f,
			lon1 + (lon2-lon1)*f,
		}
	}
	// Pin the endpoints exactly; interpolation rounding must not move them.
	pts[0] = [2]float64{lat1, lon1}
	pts[n-1] = [2]float64{lat2, lon2}
	return pts
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
