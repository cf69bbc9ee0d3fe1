package overlay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/hazmap/internal/geo"

	"github.com/jonas-p/go-shp"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countries = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"name":"Bahamas"},
  "geometry":{"type":"Polygon","coordinates":[[[-79,26],[-78,26],[-78,27],[-79,27],[-79,26]]]}}]}`

func TestParse(t *testing.T) {
	fc, err := Parse([]byte(countries))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Bahamas", fc.Features[0].Properties["name"])

	fc, err = Parse([]byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, []float64{1, 2}, fc.Features[0].Geometry.Point)

	fc, err = Parse([]byte(`{"type":"LineString","coordinates":[[1,2],[3,4]]}`))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, geojson.GeometryLineString, fc.Features[0].Geometry.Type)
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "[1,2]", `{"type":"Topology"}`, "<html>"} {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, geo.ErrInvalidInput, in)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/countries.geojson":
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(countries))
		case "/broken.geojson":
			_, _ = w.Write([]byte("not json"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	fc, err := Fetch(ctx, srv.Client(), srv.URL+"/countries.geojson")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = Fetch(ctx, srv.Client(), srv.URL+"/missing.geojson")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = Fetch(ctx, srv.Client(), srv.URL+"/broken.geojson")
	assert.ErrorIs(t, err, geo.ErrInvalidInput)

	fc, err = Load(ctx, srv.Client(), srv.URL+"/countries.geojson")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.geojson")
	require.NoError(t, os.WriteFile(path, []byte(countries), 0o644))

	fc, err := Load(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	data, err := Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bahamas")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writePolygonShapefile(t *testing.T, path string) {
	t.Helper()

	// outer ring clockwise, hole counter-clockwise
	pts := []shp.Point{
		{X: -79, Y: 26}, {X: -79, Y: 27}, {X: -78, Y: 27}, {X: -78, Y: 26}, {X: -79, Y: 26},
		{X: -78.8, Y: 26.2}, {X: -78.2, Y: 26.2}, {X: -78.2, Y: 26.8}, {X: -78.8, Y: 26.8}, {X: -78.8, Y: 26.2},
	}
	polygon := &shp.Polygon{
		Box:       shp.BBoxFromPoints(pts),
		NumParts:  2,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0, 5},
		Points:    pts,
	}

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NAME", 25)})
	n := w.Write(polygon)
	w.WriteAttribute(int(n), 0, "Grand Bahama")
	w.Close()

	// The writer names the attribute table without the dot.
	base := strings.TrimSuffix(path, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	require.FileExists(t, base+".dbf")
}

func TestLoadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "island.shp")
	writePolygonShapefile(t, path)

	fc, err := Load(context.Background(), nil, path)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, "Grand Bahama", f.Properties["NAME"])
	require.Equal(t, geojson.GeometryPolygon, f.Geometry.Type)
	require.Len(t, f.Geometry.Polygon, 2, "outer ring and hole")
	assert.Equal(t, []float64{-79, 26}, f.Geometry.Polygon[0][0])
	assert.Len(t, f.Geometry.Polygon[1], 5)
}

func TestAttributeValue(t *testing.T) {
	assert.Equal(t, "Grand Bahama", attributeValue("Grand Bahama\x00\x00\x00\x00"))
	assert.Equal(t, "Grand Bahama", attributeValue("  Grand Bahama   \x00\x00"))
	assert.Equal(t, "", attributeValue("\x00\x00\x00"))
}

func TestLoadShapefile_Missing(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "none.shp"))
	assert.Error(t, err)
}

func TestPolygonGeometry_MultiPolygon(t *testing.T) {
	pts := []shp.Point{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0},
		{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 5, Y: 5},
	}

	g := polygonGeometry([]int32{0, 4}, pts)
	require.Equal(t, geojson.GeometryMultiPolygon, g.Type)
	assert.Len(t, g.MultiPolygon, 2)
}

func TestSignedArea(t *testing.T) {
	ccw := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	assert.Equal(t, 1.0, signedArea(ccw))

	cw := [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	assert.Equal(t, -1.0, signedArea(cw))
}
