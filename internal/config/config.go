// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"path/filepath"

	"github.com/woozymasta/hazmap/internal/dataset"
	"github.com/woozymasta/hazmap/internal/geo"
	"github.com/woozymasta/hazmap/internal/webmap"

	"gopkg.in/yaml.v3"
)

// Defaults reproduce the Grand Bahama hurricane map.
const (
	DefaultZoom       = 10
	DefaultTiles      = "Stamen toner"
	DefaultBordersURL = "http://geojson.xyz/naturalearth-3.3.0/ne_50m_admin_0_countries.geojson"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string `yaml:"attribution,omitempty"`
	OutputDir   string `yaml:"output_dir,omitempty"`
	Maps        []Map  `yaml:"maps" validate:"required,dive"`
	Minify      bool   `yaml:"minify,omitempty"`
}

// Map is a single bubble map definition.
type Map struct {
	Borders *Borders `yaml:"borders,omitempty"`
	Alert   *Alert   `yaml:"alert,omitempty"`
	Preview *Preview `yaml:"preview,omitempty"`

	Name        string           `yaml:"name" validate:"required"`
	Title       string           `yaml:"title,omitempty"`
	Tiles       string           `yaml:"tiles,omitempty"`
	Attribution string           `yaml:"attribution,omitempty"`
	Output      string           `yaml:"output,omitempty"`
	PointsFile  string           `yaml:"points_file,omitempty"`
	Points      []dataset.Record `yaml:"points,omitempty" validate:"dive"`
	Center      geo.Coordinate   `yaml:"center"`
	Zoom        int              `yaml:"zoom,omitempty" validate:"gte=0,lte=20"`

	ControlScale bool `yaml:"control_scale,omitempty"`
	LayerControl bool `yaml:"layer_control,omitempty"`
}

// UnmarshalYAML applies defaults for fields missing from the document, so an
// explicit zoom of 0 is kept.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	type plain Map
	p := plain{Zoom: DefaultZoom}
	if err := node.Decode(&p); err != nil {
		return err
	}

	*m = Map(p)
	return nil
}

// Borders is a decorative GeoJSON overlay. Embedded overlays are downloaded
// once at build time, linked ones are loaded by the browser.
type Borders struct {
	Name   string           `yaml:"name,omitempty"`
	Source string           `yaml:"source" validate:"required"`
	Style  webmap.PathStyle `yaml:"style,omitempty"`
	Link   bool             `yaml:"link,omitempty"`
}

// Alert is a single highlighted marker.
type Alert struct {
	Icon     *webmap.Icon   `yaml:"icon,omitempty"`
	Tooltip  string         `yaml:"tooltip,omitempty"`
	Popup    string         `yaml:"popup,omitempty"`
	Location geo.Coordinate `yaml:"location"`
}

// Preview configures the static WebP rendering.
type Preview struct {
	Output  string `yaml:"output,omitempty"`
	Width   int    `yaml:"width,omitempty" validate:"gte=0,lte=4096"`
	Height  int    `yaml:"height,omitempty" validate:"gte=0,lte=4096"`
	Basemap bool   `yaml:"basemap,omitempty"`
}

// Default returns the built-in configuration: one map of the sample
// hurricane table over Grand Bahama.
func Default() *Config {
	center := geo.Coordinate{Lat: 26.533319, Lon: -78.647118}

	return &Config{
		Minify: true,
		Maps: []Map{{
			Name:   "bahamas",
			Title:  "Grand Bahama hurricanes",
			Center: center,
			Zoom:   DefaultZoom,
			Tiles:  DefaultTiles,
			Borders: &Borders{
				Name:   "countries",
				Source: DefaultBordersURL,
				Style: webmap.PathStyle{
					Color:       "red",
					Weight:      1,
					DashArray:   "4",
					FillColor:   "gray",
					FillOpacity: 0.1,
				},
			},
			Alert: &Alert{
				Location: center,
				Tooltip:  "Flood Hazard Alert",
				Popup:    "<b>HAZARD!</b>",
				Icon:     &webmap.Icon{Color: "blue", Name: "glyphicon-warning-sign"},
			},
		}},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := geo.Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	for i := range c.Maps {
		world := &c.Maps[i]

		if world.Attribution == "" {
			world.Attribution = c.Attribution
		}
		if world.Title == "" {
			world.Title = world.Name
		}
		if world.Borders != nil && world.Borders.Name == "" {
			world.Borders.Name = "borders"
		}
	}
}

// Find returns the map with the given name.
func (c *Config) Find(name string) (Map, bool) {
	for _, m := range c.Maps {
		if m.Name == name {
			return m, true
		}
	}
	return Map{}, false
}

// OutputPath is where the map document is written.
func (c *Config) OutputPath(m Map) string {
	out := m.Output
	if out == "" {
		out = m.Name + ".html"
	}
	if c.OutputDir != "" && !filepath.IsAbs(out) {
		out = filepath.Join(c.OutputDir, out)
	}
	return out
}

// PreviewPath is where the WebP preview is written.
func (c *Config) PreviewPath(m Map) string {
	out := m.Name + ".webp"
	if m.Preview != nil && m.Preview.Output != "" {
		out = m.Preview.Output
	}
	if c.OutputDir != "" && !filepath.IsAbs(out) {
		out = filepath.Join(c.OutputDir, out)
	}
	return out
}

// Records returns the map's point table: the points file, then inline points,
// then the built-in sample table.
func (m Map) Records() ([]dataset.Record, error) {
	if m.PointsFile != "" {
		return dataset.LoadFile(m.PointsFile)
	}
	if len(m.Points) > 0 {
		return m.Points, nil
	}
	return dataset.Default(), nil
}

// Base returns the base map settings.
func (m Map) Base(minify bool) webmap.BaseMap {
	return webmap.BaseMap{
		Title:        m.Title,
		Tiles:        m.Tiles,
		Attribution:  m.Attribution,
		Center:       m.Center,
		Zoom:         m.Zoom,
		ControlScale: m.ControlScale,
		LayerControl: m.LayerControl,
		Minify:       minify,
	}
}
