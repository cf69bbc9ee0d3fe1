package webmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/woozymasta/hazmap/internal/geo"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	minjson "github.com/tdewolff/minify/v2/json"
)

var pageTemplate = template.Must(template.New("map").Parse(pageHTML))

// Document is the layer model embedded into the page and rendered by the
// page script.
type Document struct {
	Draw           *DrawModel     `json:"draw,omitempty"`
	ClickForMarker *string        `json:"clickForMarker,omitempty"`
	Tiles          TileLayer      `json:"tiles"`
	Circles        []CircleModel  `json:"circles"`
	Markers        []MarkerModel  `json:"markers"`
	GeoJSON        []GeoJSONModel `json:"geojson"`
	Center         [2]float64     `json:"center"`
	Zoom           int            `json:"zoom"`
	ControlScale   bool           `json:"controlScale"`
	LayerControl   bool           `json:"layerControl"`
}

// CircleModel is a rendered circle marker.
type CircleModel struct {
	ID       string      `json:"id"`
	Popup    string      `json:"popup,omitempty"`
	Style    CircleStyle `json:"style"`
	Location [2]float64  `json:"location"`
}

// CircleStyle holds Leaflet circle marker options.
type CircleStyle struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor,omitempty"`
	Radius      float64 `json:"radius"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Fill        bool    `json:"fill"`
}

// MarkerModel is a rendered pin marker.
type MarkerModel struct {
	Icon     *Icon      `json:"icon,omitempty"`
	ID       string     `json:"id"`
	Popup    string     `json:"popup,omitempty"`
	Tooltip  string     `json:"tooltip,omitempty"`
	Location [2]float64 `json:"location"`
}

// GeoJSONModel is a rendered GeoJSON overlay.
type GeoJSONModel struct {
	Style *PathStyle      `json:"style,omitempty"`
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	URL   string          `json:"url,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DrawModel configures the polygon drawing control.
type DrawModel struct {
	Filename string `json:"filename"`
	Export   bool   `json:"export"`
}

type pageData struct {
	Title    string
	Doc      *Document
	HasDraw  bool
	HasIcons bool
}

// Leaflet is a Map rendered with Leaflet.
type Leaflet struct {
	doc    Document
	title  string
	minify bool
}

var _ Map = (*Leaflet)(nil)

// New creates a map centered on base.Center with the selected tile layer.
func New(base BaseMap) (*Leaflet, error) {
	if err := geo.Validate(base); err != nil {
		return nil, err
	}

	tiles, err := ResolveTiles(base.Tiles, base.Attribution)
	if err != nil {
		return nil, err
	}

	title := base.Title
	if title == "" {
		title = "Map"
	}

	return &Leaflet{
		title:  title,
		minify: base.Minify,
		doc: Document{
			Tiles:        tiles,
			Center:       base.Center.LatLon(),
			Zoom:         base.Zoom,
			ControlScale: base.ControlScale,
			LayerControl: base.LayerControl,
			Circles:      []CircleModel{},
			Markers:      []MarkerModel{},
			GeoJSON:      []GeoJSONModel{},
		},
	}, nil
}

func newID(kind string) string {
	return kind + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Document returns a copy of the current layer model.
func (m *Leaflet) Document() Document {
	return m.doc
}

// AddCircleMarker adds a circle marker.
func (m *Leaflet) AddCircleMarker(c CircleMarker) {
	m.doc.Circles = append(m.doc.Circles, CircleModel{
		ID:       newID("circle_marker"),
		Popup:    c.Popup,
		Location: c.Location.LatLon(),
		Style: CircleStyle{
			Color:       c.Color,
			FillColor:   c.FillColor,
			Radius:      c.Radius,
			FillOpacity: c.FillOpacity,
			Fill:        c.Fill,
		},
	})
}

// AddMarker adds a pin marker.
func (m *Leaflet) AddMarker(mk Marker) {
	var icon *Icon
	if mk.Icon != nil {
		i := *mk.Icon
		if i.Prefix == "" {
			i.Prefix = "glyphicon"
		}
		i.Name = strings.TrimPrefix(i.Name, i.Prefix+"-")
		icon = &i
	}

	m.doc.Markers = append(m.doc.Markers, MarkerModel{
		ID:       newID("marker"),
		Icon:     icon,
		Popup:    mk.Popup,
		Tooltip:  mk.Tooltip,
		Location: mk.Location.LatLon(),
	})
}

// AddGeoJSON adds an overlay. Exactly one of Data or URL must be set and Data
// must be valid JSON.
func (m *Leaflet) AddGeoJSON(layer GeoJSONLayer) error {
	switch {
	case len(layer.Data) > 0 && layer.URL != "":
		return fmt.Errorf("%w: geojson layer %q has both data and url", geo.ErrInvalidInput, layer.Name)
	case len(layer.Data) == 0 && layer.URL == "":
		return fmt.Errorf("%w: geojson layer %q has no source", geo.ErrInvalidInput, layer.Name)
	case len(layer.Data) > 0 && !json.Valid(layer.Data):
		return fmt.Errorf("%w: geojson layer %q is not valid JSON", geo.ErrInvalidInput, layer.Name)
	}

	m.doc.GeoJSON = append(m.doc.GeoJSON, GeoJSONModel{
		ID:    newID("geo_json"),
		Name:  layer.Name,
		URL:   layer.URL,
		Data:  json.RawMessage(layer.Data),
		Style: layer.Style,
	})

	return nil
}

// AddClickForMarker places a marker wherever the map is clicked. The popup
// may use ${lat} and ${lng} placeholders.
func (m *Leaflet) AddClickForMarker(popup string) {
	m.doc.ClickForMarker = &popup
}

// AddDrawControl adds a drawing toolbar. With export the drawn shapes can be
// downloaded as data.geojson.
func (m *Leaflet) AddDrawControl(export bool) {
	m.doc.Draw = &DrawModel{Export: export, Filename: "data.geojson"}
}

// Render writes the unminified HTML document.
func (m *Leaflet) Render(w io.Writer) error {
	hasIcons := false
	for _, mk := range m.doc.Markers {
		if mk.Icon != nil {
			hasIcons = true
			break
		}
	}

	return pageTemplate.Execute(w, pageData{
		Title:    m.title,
		Doc:      &m.doc,
		HasDraw:  m.doc.Draw != nil,
		HasIcons: hasIcons,
	})
}

// Bytes renders the document, minified when enabled.
func (m *Leaflet) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	if !m.minify {
		return buf.Bytes(), nil
	}

	out, err := newMinifier().Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify: %w", err)
	}

	return out, nil
}

// Save renders the document and writes it to path.
func (m *Leaflet) Save(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExportFailure, path, err)
	}

	if err := WriteFile(path, data); err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("bytes", len(data)).
		Int("circles", len(m.doc.Circles)).
		Int("markers", len(m.doc.Markers)).
		Int("overlays", len(m.doc.GeoJSON)).
		Msg("Map saved")

	return nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("application/json", minjson.Minify)
	return m
}

// WriteFile writes data next to path and renames it into place so readers
// never see a partial file. The directory must already exist.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: output directory %q: %v", ErrExportFailure, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrExportFailure, dir)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrExportFailure, err)
	}

	return nil
}

var docRegex = regexp.MustCompile(`(?s)<script type="?application/json"? id="?hazmap-doc"?>(.*?)</script>`)

// ParseDocument extracts the layer model from a rendered page.
func ParseDocument(page []byte) (*Document, error) {
	match := docRegex.FindSubmatch(page)
	if match == nil {
		return nil, fmt.Errorf("%w: no map document found", geo.ErrInvalidInput)
	}

	var doc Document
	if err := json.Unmarshal(bytes.TrimSpace(match[1]), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", geo.ErrInvalidInput, err)
	}

	return &doc, nil
}
