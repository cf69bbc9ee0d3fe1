package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/severity"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `lon,lat,name,year,severity
-78.75,26.51,Apple,1953,5
-78.50,26.61,Banana,1987,1
`

func TestDefault(t *testing.T) {
	records := Default()
	require.Len(t, records, 6)
	require.NoError(t, Validate(records))

	assert.Equal(t, []int{5, 1, 2, 1, 4, 1}, Severities(records))
	assert.Equal(t, "Frangipan", records[5].Name)
	assert.Equal(t, geo.Coordinate{Lat: 26.51, Lon: -78.75}, records[0].Location())
}

func TestRead_CSV(t *testing.T) {
	records, err := Read(strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{Lon: -78.75, Lat: 26.51, Name: "Apple", Year: 1953, Severity: 5}, records[0])
}

func TestRead_CSVColumnOrder(t *testing.T) {
	in := "name, severity, year, lat, lon\nCorn, 2, 1999, 26.57, -78.49\n"

	records, err := Read(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Corn", records[0].Name)
	assert.Equal(t, 2, records[0].Severity)
	assert.Equal(t, -78.49, records[0].Lon)
}

func TestRead_CSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing column", "lon,lat,name,year\n1,2,a,3\n"},
		{"bad number", "lon,lat,name,year,severity\nx,2,a,3,1\n"},
		{"bad severity", "lon,lat,name,year,severity\n1,2,a,3,high\n"},
		{"latitude out of range", "lon,lat,name,year,severity\n1,95,a,3,1\n"},
		{"missing name", "lon,lat,name,year,severity\n1,2,,3,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), FormatCSV)
			assert.ErrorIs(t, err, geo.ErrInvalidInput)
		})
	}
}

func TestRead_OutOfRangeSeverityIsAccepted(t *testing.T) {
	in := "lon,lat,name,year,severity\n1,2,a,3,9\n"

	records, err := Read(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 9, records[0].Severity)
}

func TestRead_YAMLAndJSON(t *testing.T) {
	yml := `
- {name: Apple, lon: -78.75, lat: 26.51, year: 1953, severity: 5}
- {name: Dad, lon: -78.58, lat: 26.53, year: 2001, severity: 1}
`
	records, err := Read(strings.NewReader(yml), FormatYAML)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	js := `[{"name":"Corn","lon":-78.49,"lat":26.57,"year":1999,"severity":2}]`
	records, err = Read(strings.NewReader(js), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "Corn", records[0].Name)

	_, err = Read(strings.NewReader("{"), FormatJSON)
	assert.ErrorIs(t, err, geo.ErrInvalidInput)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	records, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = LoadFile(filepath.Join(dir, "points.xlsx"))
	assert.ErrorIs(t, err, geo.ErrInvalidInput)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFeatureCollection(t *testing.T) {
	fc, err := FeatureCollection(Default())
	require.NoError(t, err)
	require.Len(t, fc.Features, 6)

	f := fc.Features[0]
	assert.Equal(t, geojson.GeometryPoint, f.Geometry.Type)
	assert.Equal(t, []float64{-78.75, 26.51}, f.Geometry.Point)
	assert.Equal(t, "Apple", f.Properties["name"])
	assert.Equal(t, severity.ColorHigh, f.Properties["color"])
	assert.Equal(t, "high", f.Properties["tier"])
	assert.Equal(t, 10.0, f.Properties["radius"])
}

func TestFeatureCollection_Unresolved(t *testing.T) {
	records := Default()
	records[3].Severity = 0

	_, err := FeatureCollection(records)
	assert.ErrorIs(t, err, severity.ErrUnresolvedStyle)
}

func TestMarshalGeoJSON(t *testing.T) {
	data, err := MarshalGeoJSON(Default()[:1])
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
	assert.Contains(t, string(data), "\n  ")
}
