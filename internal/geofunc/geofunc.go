// Package geofunc holds the interactive map helpers: creating a custom map,
// adding a polygon drawing control with an optional overlay, and measuring
// the distance of a simple route.
package geofunc

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/overlay"
	"github.com/woozymasta/hazmap/internal/prompt"
	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/rs/zerolog/log"
)

// ClickPopup is shown by markers placed with a click.
const ClickPopup = "<b>Latitude:</b> ${lat}<br /><b>Longitude:</b> ${lng}"

// MapOptions parametrize CreateMap.
type MapOptions struct {
	Tiles       string
	Attribution string
	Location    geo.Coordinate
	Zoom        int `validate:"gte=0,lte=20"`
	Minify      bool
}

// PromptMapOptions asks for the map center, zoom level and tile style.
func PromptMapOptions(p *prompt.Prompter) (MapOptions, error) {
	location, err := p.Coordinate("")
	if err != nil {
		return MapOptions{}, err
	}

	zoom, err := p.Int("Enter zoom level: ")
	if err != nil {
		return MapOptions{}, err
	}

	tiles, err := p.String("Enter desired tile type: ")
	if err != nil {
		return MapOptions{}, err
	}

	return MapOptions{Location: location, Zoom: zoom, Tiles: tiles}, nil
}

// CreateMap builds a map centered on the chosen location with a scale bar,
// the chosen tile layer and click-to-place markers.
func CreateMap(opts MapOptions) (*webmap.Leaflet, error) {
	if err := geo.Validate(opts); err != nil {
		return nil, err
	}

	m, err := webmap.New(webmap.BaseMap{
		Title:        "Custom map",
		Tiles:        opts.Tiles,
		Attribution:  opts.Attribution,
		Center:       opts.Location,
		Zoom:         opts.Zoom,
		ControlScale: true,
		Minify:       opts.Minify,
	})
	if err != nil {
		return nil, err
	}

	m.AddClickForMarker(ClickPopup)

	log.Debug().
		Str("center", opts.Location.String()).
		Int("zoom", opts.Zoom).
		Str("tiles", opts.Tiles).
		Msg("Custom map created")

	return m, nil
}

// AddPolygon adds an exportable drawing control to m and, when source is
// set, the shapefile or GeoJSON found there as an overlay.
func AddPolygon(ctx context.Context, client *http.Client, m webmap.Map, source string) error {
	m.AddDrawControl(true)

	if source == "" {
		return nil
	}

	fc, err := overlay.Load(ctx, client, source)
	if err != nil {
		return fmt.Errorf("overlay %s: %w", source, err)
	}

	data, err := overlay.Marshal(fc)
	if err != nil {
		return fmt.Errorf("overlay %s: %w", source, err)
	}

	name := source
	if !strings.Contains(source, "://") {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	if err := m.AddGeoJSON(webmap.GeoJSONLayer{Name: name, Data: data}); err != nil {
		return err
	}

	log.Info().
		Str("source", source).
		Int("features", len(fc.Features)).
		Msg("Overlay added")

	return nil
}

// Route is a start and end point.
type Route struct {
	Start geo.Coordinate
	End   geo.Coordinate
}

// PromptRoute asks for the start and end points.
func PromptRoute(p *prompt.Prompter) (Route, error) {
	start, err := p.Coordinate("starting point ")
	if err != nil {
		return Route{}, err
	}

	end, err := p.Coordinate("end point ")
	if err != nil {
		return Route{}, err
	}

	return Route{Start: start, End: end}, nil
}

// Distance returns the route length in kilometers rounded to two decimals.
func (r Route) Distance(method geo.Method) (float64, error) {
	return geo.Distance(r.Start, r.End, method)
}

// FormatDistance renders a route length for display.
func FormatDistance(km float64) string {
	return fmt.Sprintf("Route Distance: %.2f KM", km)
}
