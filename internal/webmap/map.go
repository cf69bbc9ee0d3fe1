// Package webmap assembles interactive Leaflet web maps and exports them as
// standalone HTML documents.
package webmap

import (
	"errors"
	"io"

	"github.com/woozymasta/hazmap/internal/geo"
)

// ErrExportFailure reports a map document that could not be written.
var ErrExportFailure = errors.New("export failure")

// Map is the set of operations the map builders rely on.
type Map interface {
	AddCircleMarker(c CircleMarker)
	AddMarker(mk Marker)
	AddGeoJSON(layer GeoJSONLayer) error
	AddClickForMarker(popup string)
	AddDrawControl(export bool)
	Render(w io.Writer) error
	Save(path string) error
}

// BaseMap configures the initial view.
type BaseMap struct {
	Title        string
	Tiles        string
	Attribution  string // required for custom tile URL templates
	Center       geo.Coordinate
	Zoom         int `validate:"gte=0,lte=20"`
	ControlScale bool
	LayerControl bool
	Minify       bool
}

// CircleMarker is a fixed pixel-radius circle.
type CircleMarker struct {
	Popup       string
	Color       string
	FillColor   string
	Location    geo.Coordinate
	Radius      float64
	FillOpacity float64
	Fill        bool
}

// Icon is an awesome-markers icon. Icon names may carry the prefix
// ("glyphicon-warning-sign") or not ("warning-sign").
type Icon struct {
	Color     string `yaml:"color" json:"markerColor,omitempty"`
	Name      string `yaml:"name" json:"icon"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix"`
	IconColor string `yaml:"icon_color,omitempty" json:"iconColor,omitempty"`
}

// Marker is a pin marker with optional popup, tooltip and icon.
type Marker struct {
	Icon     *Icon
	Popup    string
	Tooltip  string
	Location geo.Coordinate
}

// PathStyle is a Leaflet path style applied to every feature of a layer.
type PathStyle struct {
	Color       string  `yaml:"color,omitempty" json:"color,omitempty"`
	DashArray   string  `yaml:"dash_array,omitempty" json:"dashArray,omitempty"`
	FillColor   string  `yaml:"fill_color,omitempty" json:"fillColor,omitempty"`
	Weight      float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	FillOpacity float64 `yaml:"fill_opacity,omitempty" json:"fillOpacity,omitempty"`
}

// GeoJSONLayer is an overlay either embedded (Data) or loaded by the browser
// from URL.
type GeoJSONLayer struct {
	Style *PathStyle
	Name  string
	URL   string
	Data  []byte
}
