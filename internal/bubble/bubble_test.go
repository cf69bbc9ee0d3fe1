package bubble

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/hazmap/internal/config"
	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/severity"
	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bordersJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"The Bahamas"},"geometry":{"type":"Point","coordinates":[-78.6,26.5]}}]}`

var _ webmap.Map = (*recorder)(nil)

// recorder is a webmap.Map that keeps every call.
type recorder struct {
	circles  []webmap.CircleMarker
	markers  []webmap.Marker
	overlays []webmap.GeoJSONLayer
	click    []string
	draw     []bool
	saved    []string
}

func (r *recorder) AddCircleMarker(c webmap.CircleMarker) { r.circles = append(r.circles, c) }
func (r *recorder) AddMarker(mk webmap.Marker)            { r.markers = append(r.markers, mk) }
func (r *recorder) AddClickForMarker(popup string)        { r.click = append(r.click, popup) }
func (r *recorder) AddDrawControl(export bool)            { r.draw = append(r.draw, export) }
func (r *recorder) Save(path string) error                { r.saved = append(r.saved, path); return nil }

func (r *recorder) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d circles, %d markers, %d overlays", len(r.circles), len(r.markers), len(r.overlays))
	return err
}

func (r *recorder) AddGeoJSON(layer webmap.GeoJSONLayer) error {
	r.overlays = append(r.overlays, layer)
	return nil
}

func bordersServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/countries.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(bordersJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func defaultWorld(t *testing.T, srv *httptest.Server) config.Map {
	t.Helper()
	world := config.Default().Maps[0]
	world.Borders.Source = srv.URL + "/countries.geojson"
	return world
}

func TestCircle(t *testing.T) {
	r := dataset.Record{Name: "Corn", Lon: -78.49, Lat: 26.57, Severity: 3}
	s, err := severity.Resolve(r.Severity)
	require.NoError(t, err)

	c := Circle(r, s)
	assert.Equal(t, "Corn", c.Popup)
	assert.Equal(t, 6.0, c.Radius)
	assert.Equal(t, severity.ColorModerate, c.Color)
	assert.Equal(t, severity.ColorModerate, c.FillColor)
	assert.True(t, c.Fill)
	assert.Equal(t, r.Location(), c.Location)
}

func TestBuild_Order(t *testing.T) {
	srv := bordersServer(t)
	world := defaultWorld(t, srv)
	rec := &recorder{}

	require.NoError(t, Build(context.Background(), srv.Client(), rec, world, dataset.Default()))

	require.Len(t, rec.circles, 6)
	wantColors := []string{
		severity.ColorHigh, severity.ColorLow, severity.ColorModerate,
		severity.ColorLow, severity.ColorHigh, severity.ColorLow,
	}
	for i, c := range rec.circles {
		assert.Equal(t, wantColors[i], c.Color, "record %d", i)
		assert.Equal(t, float64(dataset.Default()[i].Severity*2), c.Radius)
	}

	require.Len(t, rec.overlays, 1)
	assert.Equal(t, "countries", rec.overlays[0].Name)
	assert.Empty(t, rec.overlays[0].URL)
	assert.JSONEq(t, bordersJSON, string(rec.overlays[0].Data))
	assert.Equal(t, "red", rec.overlays[0].Style.Color)

	require.Len(t, rec.markers, 1)
	assert.Equal(t, "Flood Hazard Alert", rec.markers[0].Tooltip)
	assert.Equal(t, "blue", rec.markers[0].Icon.Color)

	assert.Empty(t, rec.saved)
	assert.Empty(t, rec.draw)

	var summary strings.Builder
	require.NoError(t, rec.Render(&summary))
	assert.Equal(t, "6 circles, 1 markers, 1 overlays", summary.String())
}

func TestBuild_UnresolvedLeavesMapUntouched(t *testing.T) {
	srv := bordersServer(t)
	world := defaultWorld(t, srv)
	records := dataset.Default()
	records[2].Severity = 6
	rec := &recorder{}

	err := Build(context.Background(), srv.Client(), rec, world, records)
	require.ErrorIs(t, err, severity.ErrUnresolvedStyle)

	assert.Empty(t, rec.circles)
	assert.Empty(t, rec.overlays)
	assert.Empty(t, rec.markers)
}

func TestBuild_LinkedBorders(t *testing.T) {
	world := config.Default().Maps[0]
	world.Borders.Link = true
	world.Alert = nil
	rec := &recorder{}

	require.NoError(t, Build(context.Background(), nil, rec, world, dataset.Default()[:2]))

	require.Len(t, rec.overlays, 1)
	assert.Equal(t, config.DefaultBordersURL, rec.overlays[0].URL)
	assert.Nil(t, rec.overlays[0].Data)
	assert.Empty(t, rec.markers)
	assert.Len(t, rec.circles, 2)
}

func TestBuild_BordersFailure(t *testing.T) {
	srv := bordersServer(t)
	world := config.Default().Maps[0]
	world.Borders.Source = srv.URL + "/missing.geojson"
	rec := &recorder{}

	err := Build(context.Background(), srv.Client(), rec, world, dataset.Default())
	require.Error(t, err)
	assert.Empty(t, rec.circles)
}

func TestGenerate_ExportsSixMarkers(t *testing.T) {
	srv := bordersServer(t)
	cfg := config.Default()
	cfg.Minify = false
	world := defaultWorld(t, srv)

	m, records, err := Generate(context.Background(), srv.Client(), cfg, world)
	require.NoError(t, err)
	require.Len(t, records, 6)

	path := filepath.Join(t.TempDir(), "bahamas.html")
	require.NoError(t, m.Save(path))

	page, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := webmap.ParseDocument(page)
	require.NoError(t, err)
	require.Len(t, doc.Circles, len(records))

	for i, c := range doc.Circles {
		want, err := severity.Resolve(records[i].Severity)
		require.NoError(t, err)
		assert.Equal(t, want.Color, c.Style.Color, records[i].Name)
		assert.Equal(t, want.Color, c.Style.FillColor, records[i].Name)
		assert.Equal(t, records[i].Name, c.Popup)
		assert.Equal(t, [2]float64{records[i].Lat, records[i].Lon}, c.Location)
	}

	require.Len(t, doc.Markers, 1)
	assert.Equal(t, "<b>HAZARD!</b>", doc.Markers[0].Popup)
	require.Len(t, doc.GeoJSON, 1)
	assert.Equal(t, "Stamen Toner", doc.Tiles.Name)
	assert.Equal(t, [2]float64{26.533319, -78.647118}, doc.Center)
	assert.Equal(t, 10, doc.Zoom)
}

func TestGenerate_ExportFailure(t *testing.T) {
	world := config.Default().Maps[0]
	world.Borders = nil

	m, _, err := Generate(context.Background(), nil, config.Default(), world)
	require.NoError(t, err)

	err = m.Save(filepath.Join(t.TempDir(), "no", "such", "dir", "map.html"))
	assert.ErrorIs(t, err, webmap.ErrExportFailure)
}
