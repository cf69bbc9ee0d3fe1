// Package dataset holds hazard point records and their loaders.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/severity"

	geojson "github.com/paulmach/go.geojson"
	"gopkg.in/yaml.v3"
)

// Record is a single hazard observation.
// Severity is not range checked here, see severity.Resolve.
type Record struct {
	Name     string  `yaml:"name" json:"name" validate:"required"`
	Lon      float64 `yaml:"lon" json:"lon" validate:"longitude"`
	Lat      float64 `yaml:"lat" json:"lat" validate:"latitude"`
	Year     int     `yaml:"year" json:"year"`
	Severity int     `yaml:"severity" json:"severity"`
}

// Location returns the record position.
func (r Record) Location() geo.Coordinate {
	return geo.Coordinate{Lat: r.Lat, Lon: r.Lon}
}

// Default returns the Grand Bahama hurricane sample table.
func Default() []Record {
	return []Record{
		{Lon: -78.75, Lat: 26.51, Name: "Apple", Year: 1953, Severity: 5},
		{Lon: -78.50, Lat: 26.61, Name: "Banana", Year: 1987, Severity: 1},
		{Lon: -78.49, Lat: 26.57, Name: "Corn", Year: 1999, Severity: 2},
		{Lon: -78.58, Lat: 26.53, Name: "Dad", Year: 2001, Severity: 1},
		{Lon: -78.64, Lat: 26.57, Name: "Elephant", Year: 2015, Severity: 4},
		{Lon: -78.50, Lat: 26.66, Name: "Frangipan", Year: 2017, Severity: 1},
	}
}

// Validate checks every record, reporting the first bad row.
func Validate(records []Record) error {
	for i, r := range records {
		if err := geo.Validate(r); err != nil {
			return fmt.Errorf("row %d (%s): %w", i, r.Name, err)
		}
	}

	return nil
}

// Severities returns the severity column.
func Severities(records []Record) []int {
	levels := make([]int, len(records))
	for i, r := range records {
		levels[i] = r.Severity
	}

	return levels
}

// Format is a point table encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath guesses the table format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("%w: unsupported points file %q", geo.ErrInvalidInput, path)
}

// LoadFile reads and validates a point table from disk.
func LoadFile(path string) ([]Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Read(f, format)
}

// Read decodes and validates a point table.
func Read(r io.Reader, format Format) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&records)
		if err == io.EOF {
			err = nil
		}
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&records)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", geo.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", geo.ErrInvalidInput, format, err)
	}

	if err := Validate(records); err != nil {
		return nil, err
	}

	return records, nil
}

// readCSV expects a header with lon, lat, name, year and severity columns in
// any order.
func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"lon", "lat", "name", "year", "severity"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := Record{Name: row[cols["name"]]}
		if rec.Lon, err = geo.ParseFloat(row[cols["lon"]]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Lat, err = geo.ParseFloat(row[cols["lat"]]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Year, err = geo.ParseInt(row[cols["year"]]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Severity, err = geo.ParseInt(row[cols["severity"]]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// FeatureCollection converts records into GeoJSON points carrying their
// resolved styles. It fails when any severity cannot be styled.
func FeatureCollection(records []Record) (*geojson.FeatureCollection, error) {
	styles, err := severity.ResolveAll(Severities(records))
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for i, r := range records {
		f := geojson.NewPointFeature(r.Location().LonLat())
		f.SetProperty("name", r.Name)
		f.SetProperty("year", r.Year)
		f.SetProperty("severity", r.Severity)
		f.SetProperty("tier", styles[i].Tier.String())
		f.SetProperty("color", styles[i].Color)
		f.SetProperty("radius", styles[i].Radius)
		fc.AddFeature(f)
	}

	return fc, nil
}

// MarshalGeoJSON renders records as an indented GeoJSON document.
func MarshalGeoJSON(records []Record) ([]byte, error) {
	fc, err := FeatureCollection(records)
	if err != nil {
		return nil, err
	}

	raw, err := fc.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
