package geo

import "math"

// MaxMercatorLat is the latitude limit of the Web Mercator projection.
const MaxMercatorLat = 85.05112878

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// WorldPixel projects a coordinate to Web Mercator world pixels at the given
// zoom level for square tiles of tileSize pixels.
//
// Longitude [-180, 180] maps linearly to [0, size], latitude goes through the
// Mercator projection and is clamped to MaxMercatorLat.
func WorldPixel(c Coordinate, zoom, tileSize int) (x, y float64) {
	size := float64(tileSize) * math.Exp2(float64(zoom))

	lat := math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, c.Lat))
	latRad := degToRad(lat)

	x = (c.Lon + 180.0) / 360.0 * size
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * size

	return x, y
}

// FromWorldPixel is the inverse of WorldPixel.
func FromWorldPixel(x, y float64, zoom, tileSize int) Coordinate {
	size := float64(tileSize) * math.Exp2(float64(zoom))

	lon := x/size*360.0 - 180.0

	// y: [0..size] -> mercatorY: [PI..-PI]
	mercatorY := math.Pi - y/size*2.0*math.Pi
	latRad := (2.0 * math.Atan(math.Exp(mercatorY))) - (math.Pi * 0.5)

	lat := radToDeg(latRad)
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		lat = -MaxMercatorLat
	}

	return Coordinate{Lat: lat, Lon: lon}
}
