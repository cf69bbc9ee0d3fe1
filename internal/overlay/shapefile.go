package overlay

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/woozymasta/hazmap/internal/geo"

	"github.com/jonas-p/go-shp"
	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
)

// LoadShapefile converts an ESRI shapefile and its attribute table into
// GeoJSON features. Coordinates are taken as-is and must be WGS84.
func LoadShapefile(path string) (*geojson.FeatureCollection, error) {
	warnProjected(path)

	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fields := r.Fields()
	fc := geojson.NewFeatureCollection()

	for r.Next() {
		n, shape := r.Shape()

		g, err := shapeGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, n, err)
		}
		if g == nil {
			continue
		}

		f := geojson.NewFeature(g)
		for k, field := range fields {
			f.SetProperty(field.String(), attributeValue(r.ReadAttribute(n, k)))
		}
		fc.AddFeature(f)
	}

	log.Debug().
		Str("path", path).
		Int("features", len(fc.Features)).
		Int("fields", len(fields)).
		Msg("Shapefile loaded")

	return fc, nil
}

// attributeValue strips the NUL and blank padding of fixed width DBF fields.
func attributeValue(v string) string {
	return strings.TrimFunc(v, func(r rune) bool { return r == 0 || unicode.IsSpace(r) })
}

// warnProjected logs when the sidecar .prj declares a projected system.
func warnProjected(path string) {
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	data, err := os.ReadFile(prj)
	if err != nil {
		return
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "PROJCS") {
		log.Warn().
			Str("path", path).
			Msg("Shapefile uses a projected coordinate system, coordinates are not reprojected to WGS84")
	}
}

func shapeGeometry(shape shp.Shape) (*geojson.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return geojson.NewPointGeometry([]float64{s.X, s.Y}), nil
	case *shp.PointZ:
		return geojson.NewPointGeometry([]float64{s.X, s.Y}), nil
	case *shp.MultiPoint:
		return geojson.NewMultiPointGeometry(points(s.Points)...), nil
	case *shp.PolyLine:
		return lineGeometry(s.Parts, s.Points), nil
	case *shp.PolyLineZ:
		return lineGeometry(s.Parts, s.Points), nil
	case *shp.Polygon:
		return polygonGeometry(s.Parts, s.Points), nil
	case *shp.PolygonZ:
		return polygonGeometry(s.Parts, s.Points), nil
	}

	return nil, fmt.Errorf("%w: unsupported shape type %T", geo.ErrInvalidInput, shape)
}

func points(pts []shp.Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

// splitParts cuts the point list at the part offsets.
func splitParts(parts []int32, pts []shp.Point) [][][]float64 {
	rings := make([][][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		rings = append(rings, points(pts[start:end]))
	}
	return rings
}

func lineGeometry(parts []int32, pts []shp.Point) *geojson.Geometry {
	lines := splitParts(parts, pts)
	if len(lines) == 1 {
		return geojson.NewLineStringGeometry(lines[0])
	}
	return geojson.NewMultiLineStringGeometry(lines...)
}

// polygonGeometry groups rings into polygons. Shapefile outer rings are
// clockwise, holes counter-clockwise and follow their outer ring.
func polygonGeometry(parts []int32, pts []shp.Point) *geojson.Geometry {
	var polygons [][][][]float64
	for _, ring := range splitParts(parts, pts) {
		if signedArea(ring) <= 0 || len(polygons) == 0 {
			polygons = append(polygons, [][][]float64{ring})
			continue
		}
		last := len(polygons) - 1
		polygons[last] = append(polygons[last], ring)
	}

	if len(polygons) == 1 {
		return geojson.NewPolygonGeometry(polygons[0])
	}
	return geojson.NewMultiPolygonGeometry(polygons...)
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring [][]float64) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}
