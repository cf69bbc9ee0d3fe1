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

	"github.com/woozymasta/hazmap/internal/bubble"
	"github.com/woozymasta/hazmap/internal/config"
	"github.com/woozymasta/hazmap/internal/logger"
	"github.com/woozymasta/hazmap/internal/preview"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string        `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file, built-in sample map if empty"`
	Limit       []string      `short:"l" long:"limit"       env:"LIMIT_NAMES"  description:"Limit processing to specific map names"`
	Output      string        `short:"o" long:"out"         env:"OUTPUT_FILE"  description:"Output HTML path, only with a single map"`
	Concurrency int           `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Parallel basemap tile downloads" default:"4"`
	Timeout     time.Duration `short:"T" long:"timeout"     env:"HTTP_TIMEOUT" description:"HTTP client timeout" default:"30s"`
	Preview     bool          `short:"P" long:"preview"     description:"Also render WebP previews for maps without a preview section"`
	NoMinify    bool          `long:"no-minify"             description:"Write unminified HTML"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.NoMinify {
		cfg.Minify = false
	}

	// Filter maps if limit is set
	mapsToProcess := cfg.Maps
	if len(opts.Limit) > 0 {
		mapsToProcess = make([]config.Map, 0, len(opts.Limit))
		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if m, ok := cfg.Find(limitName); ok {
				mapsToProcess = append(mapsToProcess, m)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Map specified in --limit not found in configuration")
			}
		}
	}

	if opts.Output != "" {
		if len(mapsToProcess) != 1 {
			log.Fatal().Int("maps", len(mapsToProcess)).Msg("--out needs exactly one map, use --limit")
		}
		mapsToProcess[0].Output = opts.Output
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: opts.Concurrency,
		},
		Timeout: opts.Timeout,
	}
	fetcher := preview.NewTileFetcher(client, opts.Concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("maps_total", len(cfg.Maps)).
		Int("maps_queued", len(mapsToProcess)).
		Bool("minify", cfg.Minify).
		Msg("Starting bubble map build")

	failed := 0
	for _, world := range mapsToProcess {
		if err := build(ctx, client, fetcher, cfg, world, opts.Preview); err != nil {
			log.Error().Err(err).Str("map", world.Name).Msg("Failed to build map")
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Bubble map build finished with errors")
	}
	log.Info().Msg("Bubble map build finished successfully")
}

func build(ctx context.Context, client *http.Client, fetcher *preview.TileFetcher, cfg *config.Config, world config.Map, forcePreview bool) error {
	m, records, err := bubble.Generate(ctx, client, cfg, world)
	if err != nil {
		return err
	}

	if err := m.Save(cfg.OutputPath(world)); err != nil {
		return err
	}

	if world.Preview == nil && !forcePreview {
		return nil
	}

	opts, err := preview.ForMap(world, fetcher)
	if err != nil {
		return err
	}

	return preview.Save(ctx, cfg.PreviewPath(world), opts, records)
}
