// Package prompt reads typed values from an interactive session.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/hazmap/internal/geo"
)

// Prompter asks questions on out and reads one answer per line from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// String prints label and returns the trimmed answer line.
func (p *Prompter) String(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", fmt.Errorf("%w: no answer to %q", geo.ErrInvalidInput, strings.TrimSpace(label))
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// Float asks for a real number.
func (p *Prompter) Float(label string) (float64, error) {
	s, err := p.String(label)
	if err != nil {
		return 0, err
	}
	return geo.ParseFloat(s)
}

// Int asks for an integer.
func (p *Prompter) Int(label string) (int, error) {
	s, err := p.String(label)
	if err != nil {
		return 0, err
	}
	return geo.ParseInt(s)
}

// Coordinate asks for latitude then longitude, e.g. with prefix "starting
// point " the labels are "Enter starting point latitude: ". A bad latitude
// fails before the longitude is asked for.
func (p *Prompter) Coordinate(prefix string) (geo.Coordinate, error) {
	lat, err := p.Float("Enter " + prefix + "latitude: ")
	if err != nil {
		return geo.Coordinate{}, err
	}
	if err := (geo.Coordinate{Lat: lat}).Validate(); err != nil {
		return geo.Coordinate{}, err
	}

	lon, err := p.Float("Enter " + prefix + "longitude: ")
	if err != nil {
		return geo.Coordinate{}, err
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}

	return c, nil
}
