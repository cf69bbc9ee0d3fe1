package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/geofunc"
	"github.com/woozymasta/hazmap/internal/logger"
	"github.com/woozymasta/hazmap/internal/prompt"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`
}

// MapFlags select the map center, zoom and tiles. Missing values are asked
// for on stdin.
type MapFlags struct {
	Lat         string `long:"lat"         description:"Map center latitude"`
	Lon         string `long:"lon"         description:"Map center longitude"`
	Zoom        string `short:"z" long:"zoom"  description:"Initial zoom level"`
	Tiles       string `short:"t" long:"tiles" env:"TILES" description:"Tile style name or URL template"`
	Attribution string `long:"attribution" env:"TILES_ATTRIBUTION" description:"Attribution for custom tiles"`
	NoMinify    bool   `long:"no-minify"   description:"Write unminified HTML"`
}

func (f MapFlags) options(p *prompt.Prompter) (geofunc.MapOptions, error) {
	var (
		mo  geofunc.MapOptions
		err error
	)

	if f.Lat == "" || f.Lon == "" || f.Zoom == "" {
		mo, err = geofunc.PromptMapOptions(p)
		if err != nil {
			return mo, err
		}
	} else {
		if mo.Location, err = geo.ParseCoordinate(f.Lat, f.Lon); err != nil {
			return mo, err
		}
		if mo.Zoom, err = geo.ParseInt(f.Zoom); err != nil {
			return mo, err
		}
		mo.Tiles = f.Tiles
	}

	mo.Attribution = f.Attribution
	mo.Minify = !f.NoMinify
	return mo, nil
}

type CreateCommand struct {
	MapFlags
	Output string `short:"o" long:"out" env:"OUTPUT_FILE" description:"Output HTML path" default:"custom_map.html"`
}

type PolygonCommand struct {
	MapFlags
	Output  string        `short:"o" long:"out"     env:"OUTPUT_FILE"  description:"Output HTML path" default:"polygon_map.html"`
	Source  string        `short:"s" long:"source"  description:"Shapefile, GeoJSON file or URL shown under the drawing layer"`
	Timeout time.Duration `short:"T" long:"timeout" env:"HTTP_TIMEOUT" description:"HTTP client timeout" default:"30s"`
}

type RouteCommand struct {
	StartLat string `long:"start-lat" description:"Starting point latitude"`
	StartLon string `long:"start-lon" description:"Starting point longitude"`
	EndLat   string `long:"end-lat"   description:"End point latitude"`
	EndLon   string `long:"end-lon"   description:"End point longitude"`
	Method   string `short:"m" long:"method" description:"Distance model" choice:"geodesic" choice:"spherical" default:"geodesic"`
}

var opts Options

func stdio() *prompt.Prompter {
	return prompt.New(os.Stdin, os.Stdout)
}

func (c *CreateCommand) Execute([]string) error {
	opts.Logger.Setup()

	mo, err := c.options(stdio())
	if err != nil {
		return err
	}

	m, err := geofunc.CreateMap(mo)
	if err != nil {
		return err
	}

	return m.Save(c.Output)
}

func (c *PolygonCommand) Execute([]string) error {
	opts.Logger.Setup()

	mo, err := c.options(stdio())
	if err != nil {
		return err
	}

	m, err := geofunc.CreateMap(mo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: c.Timeout}
	if err := geofunc.AddPolygon(ctx, client, m, c.Source); err != nil {
		return err
	}

	return m.Save(c.Output)
}

func (c *RouteCommand) Execute([]string) error {
	opts.Logger.Setup()

	method, err := geo.ParseMethod(c.Method)
	if err != nil {
		return err
	}

	var route geofunc.Route
	if c.StartLat == "" || c.StartLon == "" || c.EndLat == "" || c.EndLon == "" {
		if route, err = geofunc.PromptRoute(stdio()); err != nil {
			return err
		}
	} else {
		if route.Start, err = geo.ParseCoordinate(c.StartLat, c.StartLon); err != nil {
			return err
		}
		if route.End, err = geo.ParseCoordinate(c.EndLat, c.EndLon); err != nil {
			return err
		}
	}

	km, err := route.Distance(method)
	if err != nil {
		return err
	}

	log.Debug().
		Str("start", route.Start.String()).
		Str("end", route.End.String()).
		Str("method", string(method)).
		Float64("km", km).
		Msg("Route measured")

	fmt.Println(geofunc.FormatDistance(km))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	parser := flags.NewParser(&opts, flags.Default)

	commands := []struct {
		name, short, long string
		data              any
	}{
		{"create", "Create a custom map", "Creates a map with a scale bar and click-to-place markers.", &CreateCommand{}},
		{"polygon", "Create a map with a polygon drawing control", "Creates a map with an exportable drawing control and an optional shapefile or GeoJSON overlay.", &PolygonCommand{}},
		{"route", "Measure a simple route", "Prints the distance between a starting point and an end point.", &RouteCommand{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register command %s: %v\n", c.name, err)
			os.Exit(1)
		}
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
