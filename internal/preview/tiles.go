package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"sync"

	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// DefaultConcurrency is the number of parallel tile downloads.
const DefaultConcurrency = 4

// UserAgent is sent with tile requests; public tile servers reject anonymous
// clients.
const UserAgent = "hazmap-preview/1.0"

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

type result struct {
	Image image.Image
	Coord TileCoordinate
}

// TileFetcher downloads basemap tiles with a bounded worker pool.
type TileFetcher struct {
	client      *http.Client
	concurrency int
}

// NewTileFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewTileFetcher(client *http.Client, concurrency int) *TileFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &TileFetcher{client: client, concurrency: concurrency}
}

// Fetch downloads the given tiles. Missing or undecodable tiles are skipped.
func (f *TileFetcher) Fetch(ctx context.Context, layer webmap.TileLayer, tiles []TileCoordinate) map[TileCoordinate]image.Image {
	jobs := make(chan TileCoordinate, len(tiles))
	results := make(chan result, len(tiles))

	for _, t := range tiles {
		jobs <- t
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < f.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if ctx.Err() != nil {
					return
				}

				url := layer.TileURL(c.Z, c.X, c.Y)
				img, err := f.download(ctx, url)
				if err != nil {
					log.Trace().Err(err).Str("url", url).Msg("Failed to download tile")
					continue
				}
				if img != nil {
					results <- result{Coord: c, Image: img}
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make(map[TileCoordinate]image.Image, len(tiles))
	for res := range results {
		out[res.Coord] = res.Image
	}

	log.Debug().
		Str("tiles", layer.Name).
		Int("requested", len(tiles)).
		Int("loaded", len(out)).
		Msg("Basemap tiles fetched")

	return out
}

func (f *TileFetcher) download(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		log.Trace().Str("url", url).Msg("Tile not found (404)")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	// Filter out empty/1px tiles often returned by map servers for OOB areas
	if img.Bounds().Dx() <= 1 {
		return nil, nil
	}

	return img, nil
}

// coveringTiles lists the tiles under a viewport whose top left corner is at
// world pixel (ox, oy). Columns wrap around the antimeridian, rows outside
// the world are dropped.
func coveringTiles(zoom int, ox, oy float64, width, height int) []TileCoordinate {
	n := 1 << zoom

	x0 := int(math.Floor(ox / tileSize))
	x1 := int(math.Floor((ox + float64(width) - 1) / tileSize))
	y0 := int(math.Max(0, math.Floor(oy/tileSize)))
	y1 := int(math.Min(float64(n-1), math.Floor((oy+float64(height)-1)/tileSize)))

	var tiles []TileCoordinate
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			tiles = append(tiles, TileCoordinate{Z: zoom, X: x, Y: y})
		}
	}
	return tiles
}

func wrap(x, n int) int {
	return ((x % n) + n) % n
}

// drawBasemap paints the tiles under the viewport onto canvas.
func drawBasemap(ctx context.Context, canvas *image.RGBA, f *TileFetcher, layer webmap.TileLayer, opts Options) {
	ox, oy := opts.origin()

	n := 1 << opts.Zoom
	placed := coveringTiles(opts.Zoom, ox, oy, opts.Width, opts.Height)

	// Wrapped columns share a download.
	unique := make(map[TileCoordinate]struct{}, len(placed))
	var fetch []TileCoordinate
	for _, t := range placed {
		c := TileCoordinate{Z: t.Z, X: wrap(t.X, n), Y: t.Y}
		if _, ok := unique[c]; !ok {
			unique[c] = struct{}{}
			fetch = append(fetch, c)
		}
	}

	images := f.Fetch(ctx, layer, fetch)

	for _, t := range placed {
		img, ok := images[TileCoordinate{Z: t.Z, X: wrap(t.X, n), Y: t.Y}]
		if !ok {
			continue
		}

		at := image.Pt(t.X*tileSize-int(ox), t.Y*tileSize-int(oy))
		dst := image.Rectangle{Min: at, Max: at.Add(image.Pt(tileSize, tileSize))}
		if img.Bounds().Dx() == tileSize && img.Bounds().Dy() == tileSize {
			draw.Draw(canvas, dst, img, img.Bounds().Min, draw.Over)
		} else {
			scaleInto(canvas, dst, img)
		}
	}
}
