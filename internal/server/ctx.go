package server

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"net/http"

	"github.com/woozymasta/hazmap/internal/bubble"
	"github.com/woozymasta/hazmap/internal/config"
	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/preview"
	"github.com/woozymasta/hazmap/internal/severity"

	"github.com/rs/zerolog/log"
)

// Point is a record with its resolved marker style.
type Point struct {
	dataset.Record
	Style severity.Style `json:"style"`
}

// asset is a prebuilt response body.
type asset struct {
	Body        []byte
	ETag        string
	ContentType string
}

func newAsset(body []byte, contentType string) asset {
	return asset{
		Body:        body,
		ETag:        fmt.Sprintf(`"%x-%08x"`, len(body), crc32.ChecksumIEEE(body)),
		ContentType: contentType,
	}
}

// ServerContext holds the rendered map served by the handlers.
type ServerContext struct {
	Map     config.Map
	Points  []Point
	Page    asset
	GeoJSON asset
	Preview asset
}

// NewServerContext renders world once: the HTML page, its point table as
// GeoJSON and the WebP preview.
func NewServerContext(ctx context.Context, client *http.Client, cfg *config.Config, world config.Map) (*ServerContext, error) {
	log.Info().Str("map", world.Name).Msg("Initializing server context")

	m, records, err := bubble.Generate(ctx, client, cfg, world)
	if err != nil {
		return nil, err
	}

	page, err := m.Bytes()
	if err != nil {
		return nil, err
	}

	styles, err := severity.ResolveAll(dataset.Severities(records))
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{Record: r, Style: styles[i]}
	}

	geojson, err := dataset.MarshalGeoJSON(records)
	if err != nil {
		return nil, err
	}

	opts, err := preview.ForMap(world, preview.NewTileFetcher(client, 0))
	if err != nil {
		return nil, err
	}
	img, err := preview.Render(ctx, opts, records)
	if err != nil {
		return nil, err
	}
	var webp bytes.Buffer
	if err := preview.Encode(&webp, img); err != nil {
		return nil, err
	}

	log.Info().
		Str("map", world.Name).
		Int("points", len(points)).
		Int("page_bytes", len(page)).
		Int("preview_bytes", webp.Len()).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Map:     world,
		Points:  points,
		Page:    newAsset(page, "text/html; charset=utf-8"),
		GeoJSON: newAsset(geojson, "application/geo+json"),
		Preview: newAsset(webp.Bytes(), "image/webp"),
	}, nil
}
