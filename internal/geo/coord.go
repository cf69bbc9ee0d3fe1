// Package geo handles coordinates, validation, projections and distances.
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput reports non-numeric or out-of-range user input.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"latitude"`
	Lon float64 `yaml:"lon" json:"lon" validate:"longitude"`
}

// LatLon returns the pair in Leaflet order.
func (c Coordinate) LatLon() [2]float64 {
	return [2]float64{c.Lat, c.Lon}
}

// LonLat returns the pair in GeoJSON order.
func (c Coordinate) LonLat() []float64 {
	return []float64{c.Lon, c.Lat}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	return Validate(c)
}

// Validate runs struct tag validation on v and wraps failures in ErrInvalidInput.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s=%v fails %q", fe.Namespace(), fe.Value(), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// ParseFloat parses user-entered text as a real number.
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}

	return v, nil
}

// ParseInt parses user-entered text as an integer.
func ParseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, s)
	}

	return v, nil
}

// ParseCoordinate parses latitude and longitude text and checks their ranges.
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	y, err := ParseFloat(lat)
	if err != nil {
		return Coordinate{}, err
	}
	x, err := ParseFloat(lon)
	if err != nil {
		return Coordinate{}, err
	}

	c := Coordinate{Lat: y, Lon: x}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}

	return c, nil
}
