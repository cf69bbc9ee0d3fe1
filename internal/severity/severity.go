// Package severity maps hazard severity levels to marker styles.
//
// Levels bucket into three tiers, first matching branch wins:
//
//	1     -> low      (#FAD02C)
//	2, 3  -> moderate (#F89700)
//	4, 5  -> high     (#FF2511)
//
// The marker radius is the level times two.
package severity

import (
	"errors"
	"fmt"
)

// ErrUnresolvedStyle reports a severity level outside the defined tiers.
var ErrUnresolvedStyle = errors.New("unresolved style")

// Tier colors.
const (
	ColorLow      = "#FAD02C"
	ColorModerate = "#F89700"
	ColorHigh     = "#FF2511"
)

// Tier is a severity bucket.
type Tier int

// Tiers in ascending order.
const (
	TierUnknown Tier = iota
	TierLow
	TierModerate
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// Style is the visual encoding of a severity level.
type Style struct {
	Tier   Tier    `json:"tier"`
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
}

// Resolve returns the style for a severity level.
func Resolve(level int) (Style, error) {
	var s Style
	switch {
	case level == 1:
		s = Style{Tier: TierLow, Color: ColorLow}
	case level == 2 || level == 3:
		s = Style{Tier: TierModerate, Color: ColorModerate}
	case level == 4 || level == 5:
		s = Style{Tier: TierHigh, Color: ColorHigh}
	default:
		return Style{}, fmt.Errorf("%w: severity %d is outside 1..5", ErrUnresolvedStyle, level)
	}

	s.Radius = float64(level * 2)
	return s, nil
}

// ResolveAll resolves every level, failing on the first unresolved one with
// its index.
func ResolveAll(levels []int) ([]Style, error) {
	styles := make([]Style, len(levels))
	for i, level := range levels {
		s, err := Resolve(level)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		styles[i] = s
	}

	return styles, nil
}
