package webmap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/woozymasta/hazmap/internal/geo"
)

// DefaultTiles is used when no tile style is given.
const DefaultTiles = "OpenStreetMap"

const osmAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`

// TileLayer describes a basemap source.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	Subdomains  string `json:"subdomains,omitempty"`
	MaxZoom     int    `json:"maxZoom"`
}

var tileLayers = []TileLayer{
	{
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: osmAttribution,
		MaxZoom:     19,
	},
	{
		Name:        "Stamen Toner",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> ` + osmAttribution,
		MaxZoom:     20,
	},
	{
		Name:        "Stamen Terrain",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_terrain/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> ` + osmAttribution,
		MaxZoom:     18,
	},
	{
		Name:        "Stamen Watercolor",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_watercolor/{z}/{x}/{y}.jpg",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> ` + osmAttribution,
		MaxZoom:     16,
	},
	{
		Name:        "CartoDB Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
	{
		Name:        "CartoDB Dark_Matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
	{
		Name:        "Esri WorldImagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri &mdash; Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
		MaxZoom:     18,
	},
}

// tileKey folds case and punctuation: "Stamen toner", "stamen_toner" and
// "StamenToner" all match.
func tileKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TileStyles lists the built-in tile style names.
func TileStyles() []string {
	names := make([]string, 0, len(tileLayers))
	for _, t := range tileLayers {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// ResolveTiles finds a built-in tile style by name or accepts a custom
// {z}/{x}/{y} URL template, which needs an attribution.
func ResolveTiles(style, attribution string) (TileLayer, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultTiles
	}

	if isTemplate(style) {
		if strings.TrimSpace(attribution) == "" {
			return TileLayer{}, fmt.Errorf("%w: custom tiles %q need an attribution", geo.ErrInvalidInput, style)
		}
		return TileLayer{
			Name:        "custom",
			URL:         style,
			Attribution: attribution,
			Subdomains:  "abc",
			MaxZoom:     20,
		}, nil
	}

	key := tileKey(style)
	for _, t := range tileLayers {
		if tileKey(t.Name) == key {
			if attribution != "" {
				t.Attribution = attribution
			}
			return t, nil
		}
	}

	return TileLayer{}, fmt.Errorf("%w: unknown tile style %q (known: %s)",
		geo.ErrInvalidInput, style, strings.Join(TileStyles(), ", "))
}

func isTemplate(s string) bool {
	return (strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")) &&
		strings.Contains(s, "{z}") && strings.Contains(s, "{x}") && strings.Contains(s, "{y}")
}

// TileURL expands a tile template for a single tile. {s} takes the first
// subdomain, {r} is dropped and {tms_y} flips the row.
func (t TileLayer) TileURL(z, x, y int) string {
	s := strings.ReplaceAll(t.URL, "{z}", fmt.Sprintf("%d", z))
	s = strings.ReplaceAll(s, "{x}", fmt.Sprintf("%d", x))
	s = strings.ReplaceAll(s, "{y}", fmt.Sprintf("%d", y))
	s = strings.ReplaceAll(s, "{r}", "")

	if strings.Contains(s, "{s}") {
		sub := "a"
		if t.Subdomains != "" {
			sub = t.Subdomains[:1]
		}
		s = strings.ReplaceAll(s, "{s}", sub)
	}

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", fmt.Sprintf("%d", maxCoord-y))
	}

	return s
}
