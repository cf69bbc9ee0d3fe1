// Package overlay loads GeoJSON overlays from URLs, files and shapefiles.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/hazmap/internal/geo"

	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
)

// maxBody caps downloaded overlays.
const maxBody = 64 << 20

// Load reads an overlay from an http(s) URL, a shapefile or a GeoJSON file.
func Load(ctx context.Context, client *http.Client, source string) (*geojson.FeatureCollection, error) {
	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return Fetch(ctx, client, source)
	case strings.EqualFold(filepath.Ext(source), ".shp"):
		return LoadShapefile(source)
	default:
		return LoadFile(source)
	}
}

// Fetch downloads a GeoJSON document.
func Fetch(ctx context.Context, client *http.Client, url string) (*geojson.FeatureCollection, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	log.Info().Str("url", url).Msg("Downloading overlay")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	fc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	log.Debug().Str("url", url).Int("features", len(fc.Features)).Msg("Overlay downloaded")
	return fc, nil
}

// LoadFile reads a GeoJSON file.
func LoadFile(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return fc, nil
}

// Parse accepts a FeatureCollection, a single Feature or a bare Geometry and
// always returns a FeatureCollection.
func Parse(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: not a GeoJSON document: %v", geo.ErrInvalidInput, err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", geo.ErrInvalidInput, err)
		}
		return fc, nil

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", geo.ErrInvalidInput, err)
		}
		return geojson.NewFeatureCollection().AddFeature(f), nil

	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", geo.ErrInvalidInput, err)
		}
		return geojson.NewFeatureCollection().AddFeature(geojson.NewFeature(g)), nil
	}

	return nil, fmt.Errorf("%w: unsupported GeoJSON type %q", geo.ErrInvalidInput, head.Type)
}

// Marshal encodes a collection for embedding into a map.
func Marshal(fc *geojson.FeatureCollection) ([]byte, error) {
	return fc.MarshalJSON()
}
