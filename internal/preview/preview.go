// Package preview renders a static WebP image of a bubble map.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/hazmap/internal/config"
	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/severity"
	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Defaults for unset options.
const (
	DefaultWidth  = 800
	DefaultHeight = 600

	tileSize    = 256
	supersample = 2

	// Leaflet path defaults
	strokeWidth = 3.0
	fillOpacity = 0.2
)

var (
	background = color.NRGBA{R: 0xF2, G: 0xEF, B: 0xE9, A: 0xFF}
	alertColor = color.NRGBA{R: 0x38, G: 0xA9, B: 0xDC, A: 0xFF}
)

// Options control the preview rendering.
type Options struct {
	Tiles       *webmap.TileLayer // nil renders a plain background
	Fetcher     *TileFetcher
	Alert       *geo.Coordinate
	Center      geo.Coordinate
	Width       int
	Height      int
	Zoom        int
	Concurrency int
}

func (o *Options) defaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
}

// Project returns the image position of c.
func (o Options) Project(c geo.Coordinate) (x, y float64) {
	o.defaults()

	ox, oy := o.origin()
	px, py := geo.WorldPixel(c, o.Zoom, tileSize)

	return px - ox, py - oy
}

// origin is the world pixel of the image's top left corner.
func (o Options) origin() (x, y float64) {
	cx, cy := geo.WorldPixel(o.Center, o.Zoom, tileSize)
	return math.Floor(cx - float64(o.Width)/2), math.Floor(cy - float64(o.Height)/2)
}

// Render draws the basemap and one circle per record.
func Render(ctx context.Context, opts Options, records []dataset.Record) (*image.RGBA, error) {
	opts.defaults()

	styles, err := severity.ResolveAll(dataset.Severities(records))
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	if opts.Tiles != nil {
		fetcher := opts.Fetcher
		if fetcher == nil {
			fetcher = NewTileFetcher(nil, opts.Concurrency)
		}
		drawBasemap(ctx, canvas, fetcher, *opts.Tiles, opts)
	}

	// Markers are rasterized at a higher resolution and scaled down onto the
	// canvas for smooth edges.
	overlay := image.NewRGBA(image.Rect(0, 0, opts.Width*supersample, opts.Height*supersample))
	z := vector.NewRasterizer(overlay.Bounds().Dx(), overlay.Bounds().Dy())
	for i, r := range records {
		c, err := parseHex(styles[i].Color)
		if err != nil {
			return nil, err
		}
		x, y := opts.Project(r.Location())
		drawCircle(z, overlay, x*supersample, y*supersample, styles[i].Radius*supersample, c)
	}
	if opts.Alert != nil {
		x, y := opts.Project(*opts.Alert)
		drawDisc(z, overlay, x*supersample, y*supersample, 8*supersample, alertColor)
		drawDisc(z, overlay, x*supersample, y*supersample, 3*supersample, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	}
	scaleInto(canvas, canvas.Bounds(), overlay)

	ox, oy := opts.origin()
	nw := geo.FromWorldPixel(ox, oy, opts.Zoom, tileSize)
	se := geo.FromWorldPixel(ox+float64(opts.Width), oy+float64(opts.Height), opts.Zoom, tileSize)

	log.Debug().
		Int("width", opts.Width).
		Int("height", opts.Height).
		Int("zoom", opts.Zoom).
		Str("nw", nw.String()).
		Str("se", se.String()).
		Int("records", len(records)).
		Msg("Preview rendered")

	return canvas, nil
}

// Encode writes img as lossy WebP.
func Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 85})
}

// Save renders the preview and writes it to path.
func Save(ctx context.Context, path string, opts Options, records []dataset.Record) error {
	img, err := Render(ctx, opts, records)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: encode webp: %v", webmap.ErrExportFailure, err)
	}

	if err := webmap.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("bytes", buf.Len()).Msg("Preview saved")
	return nil
}

func scaleInto(dst draw.Image, r image.Rectangle, src image.Image) {
	xdraw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

// drawCircle paints a Leaflet style circle marker: translucent fill and a
// solid stroke centered on the radius.
func drawCircle(z *vector.Rasterizer, dst *image.RGBA, cx, cy, r float64, c color.NRGBA) {
	fill := c
	fill.A = uint8(math.Round(fillOpacity * 255))
	drawDisc(z, dst, cx, cy, r, fill)

	w := strokeWidth * supersample / 2
	z.Reset(dst.Bounds().Dx(), dst.Bounds().Dy())
	addCircle(z, cx, cy, r+w, false)
	addCircle(z, cx, cy, math.Max(r-w, 0), true)
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func drawDisc(z *vector.Rasterizer, dst *image.RGBA, cx, cy, r float64, c color.NRGBA) {
	z.Reset(dst.Bounds().Dx(), dst.Bounds().Dy())
	addCircle(z, cx, cy, r, false)
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// addCircle approximates a circle with a polygon. Reversed paths cancel the
// coverage of forward ones, which cuts holes.
func addCircle(z *vector.Rasterizer, cx, cy, r float64, reverse bool) {
	if r <= 0 {
		return
	}

	segments := int(math.Max(24, math.Min(180, 2*math.Pi*r/2)))
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		if reverse {
			a = -a
		}
		x := float32(cx + r*math.Cos(a))
		y := float32(cy + r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

// parseHex parses #RRGGBB colors.
func parseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", geo.ErrInvalidInput, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", geo.ErrInvalidInput, s)
	}

	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// ForMap derives the rendering options of a configured map. The basemap is
// only drawn when the preview asks for it.
func ForMap(world config.Map, fetcher *TileFetcher) (Options, error) {
	opts := Options{
		Center:  world.Center,
		Zoom:    world.Zoom,
		Fetcher: fetcher,
	}

	if world.Alert != nil {
		loc := world.Alert.Location
		opts.Alert = &loc
	}

	if p := world.Preview; p != nil {
		opts.Width = p.Width
		opts.Height = p.Height

		if p.Basemap {
			layer, err := webmap.ResolveTiles(world.Tiles, world.Attribution)
			if err != nil {
				return Options{}, err
			}
			opts.Tiles = &layer
		}
	}

	opts.defaults()
	return opts, nil
}
