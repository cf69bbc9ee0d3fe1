// Package bubble builds severity bubble maps: one circle per record, sized
// and colored by severity tier, plus a border overlay and an alert marker.
package bubble

import (
	"context"
	"fmt"
	"net/http"

	"github.com/woozymasta/hazmap/internal/config"
	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/overlay"
	"github.com/woozymasta/hazmap/internal/severity"
	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/rs/zerolog/log"
)

// Circle styles a record: stroke and fill share the tier color.
func Circle(r dataset.Record, s severity.Style) webmap.CircleMarker {
	return webmap.CircleMarker{
		Location:  r.Location(),
		Popup:     r.Name,
		Radius:    s.Radius,
		Color:     s.Color,
		Fill:      true,
		FillColor: s.Color,
	}
}

// Build adds the layers of world to m. Every style is resolved before the
// first layer is added, so an unresolved severity leaves m untouched.
func Build(ctx context.Context, client *http.Client, m webmap.Map, world config.Map, records []dataset.Record) error {
	styles, err := severity.ResolveAll(dataset.Severities(records))
	if err != nil {
		return fmt.Errorf("map %s: %w", world.Name, err)
	}

	var borders *webmap.GeoJSONLayer
	if world.Borders != nil {
		layer, err := bordersLayer(ctx, client, world.Borders)
		if err != nil {
			return fmt.Errorf("map %s: borders: %w", world.Name, err)
		}
		borders = &layer
	}

	for i, r := range records {
		m.AddCircleMarker(Circle(r, styles[i]))

		log.Trace().
			Str("map", world.Name).
			Str("name", r.Name).
			Int("severity", r.Severity).
			Str("color", styles[i].Color).
			Msg("Circle marker added")
	}

	if borders != nil {
		if err := m.AddGeoJSON(*borders); err != nil {
			return fmt.Errorf("map %s: borders: %w", world.Name, err)
		}
	}

	if world.Alert != nil {
		m.AddMarker(webmap.Marker{
			Location: world.Alert.Location,
			Popup:    world.Alert.Popup,
			Tooltip:  world.Alert.Tooltip,
			Icon:     world.Alert.Icon,
		})
	}

	log.Debug().
		Str("map", world.Name).
		Int("records", len(records)).
		Bool("borders", borders != nil).
		Bool("alert", world.Alert != nil).
		Msg("Bubble map assembled")

	return nil
}

func bordersLayer(ctx context.Context, client *http.Client, b *config.Borders) (webmap.GeoJSONLayer, error) {
	style := b.Style
	layer := webmap.GeoJSONLayer{Name: b.Name, Style: &style}

	if b.Link {
		layer.URL = b.Source
		return layer, nil
	}

	fc, err := overlay.Load(ctx, client, b.Source)
	if err != nil {
		return webmap.GeoJSONLayer{}, err
	}
	if layer.Data, err = overlay.Marshal(fc); err != nil {
		return webmap.GeoJSONLayer{}, err
	}

	return layer, nil
}

// Generate loads the records of world and assembles its Leaflet map.
func Generate(ctx context.Context, client *http.Client, cfg *config.Config, world config.Map) (*webmap.Leaflet, []dataset.Record, error) {
	records, err := world.Records()
	if err != nil {
		return nil, nil, fmt.Errorf("map %s: points: %w", world.Name, err)
	}

	m, err := webmap.New(world.Base(cfg.Minify))
	if err != nil {
		return nil, nil, fmt.Errorf("map %s: %w", world.Name, err)
	}

	if err := Build(ctx, client, m, world, records); err != nil {
		return nil, nil, err
	}

	return m, records, nil
}
