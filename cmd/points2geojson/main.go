package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/logger"
	"github.com/woozymasta/hazmap/internal/webmap"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input    string `short:"i" long:"in"        description:"Input point table (csv, yaml or json). Reads from stdin if empty"`
	InFormat string `short:"t" long:"in-format" description:"Input format, guessed from the file extension if empty" choice:"csv" choice:"yaml" choice:"json"`
	Output   string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Format   string `short:"f" long:"format"    description:"Output format" choice:"json" choice:"yaml" default:"json"`
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

	records, err := readRecords(opts.Input, opts.InFormat)
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read points")
	}

	outputData, err := dataset.MarshalGeoJSON(records)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build GeoJSON")
	}

	if opts.Format == "yaml" {
		if outputData, err = toYAML(outputData); err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal YAML")
		}
	}

	if opts.Output == "" {
		fmt.Println(string(outputData))
		return
	}

	if err := webmap.WriteFile(opts.Output, outputData); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output file")
	}

	log.Info().
		Int("points", len(records)).
		Str("path", opts.Output).
		Str("format", opts.Format).
		Msg("Points converted")
}

func readRecords(path, format string) ([]dataset.Record, error) {
	f := dataset.Format(format)

	var in io.Reader = os.Stdin
	if path != "" {
		if f == "" {
			var err error
			if f, err = dataset.FormatFromPath(path); err != nil {
				return nil, err
			}
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()
		in = file
	}

	if f == "" {
		f = dataset.FormatCSV
	}

	return dataset.Read(in, f)
}

// toYAML re-encodes a JSON document as YAML.
func toYAML(data []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
