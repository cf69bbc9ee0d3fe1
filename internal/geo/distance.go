package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/tidwall/geodesic"
)

// Method selects the distance formula.
type Method string

const (
	// MethodGeodesic measures along the WGS84 ellipsoid.
	MethodGeodesic Method = "geodesic"
	// MethodSpherical measures along a great circle of a spherical Earth.
	MethodSpherical Method = "spherical"
)

// ParseMethod resolves a method name, empty means geodesic.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodGeodesic:
		return MethodGeodesic, nil
	case MethodSpherical:
		return MethodSpherical, nil
	}

	return "", fmt.Errorf("%w: unknown distance method %q", ErrInvalidInput, s)
}

// Distance returns the distance between a and b in kilometers, rounded to
// two decimals with ties away from zero.
func Distance(a, b Coordinate, method Method) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	var meters float64
	switch method {
	case "", MethodGeodesic:
		meters = GeodesicMeters(a, b)
	case MethodSpherical:
		meters = SphericalMeters(a, b)
	default:
		return 0, fmt.Errorf("%w: unknown distance method %q", ErrInvalidInput, method)
	}

	return Round(meters/1000, 2), nil
}

// Round rounds v to n decimals, halves away from zero.
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

// SphericalMeters is the haversine distance on a sphere of the WGS84
// equatorial radius.
func SphericalMeters(a, b Coordinate) float64 {
	return orbgeo.DistanceHaversine(orb.Point{a.Lon, a.Lat}, orb.Point{b.Lon, b.Lat})
}

// GeodesicMeters solves the inverse geodesic problem on the WGS84 ellipsoid.
func GeodesicMeters(a, b Coordinate) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &s12, nil, nil)
	return s12
}
