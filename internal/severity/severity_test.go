package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		level  int
		tier   Tier
		color  string
		radius float64
	}{
		{1, TierLow, ColorLow, 2},
		{2, TierModerate, ColorModerate, 4},
		{3, TierModerate, ColorModerate, 6},
		{4, TierHigh, ColorHigh, 8},
		{5, TierHigh, ColorHigh, 10},
	}

	for _, tt := range tests {
		s, err := Resolve(tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.tier, s.Tier, "level %d", tt.level)
		assert.Equal(t, tt.color, s.Color, "level %d", tt.level)
		assert.Equal(t, tt.radius, s.Radius, "level %d", tt.level)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	for _, level := range []int{0, -1, 6, 100} {
		_, err := Resolve(level)
		require.Error(t, err, "level %d", level)
		assert.ErrorIs(t, err, ErrUnresolvedStyle)
	}
}

func TestResolveAll(t *testing.T) {
	styles, err := ResolveAll([]int{5, 1, 2, 1, 4, 1})
	require.NoError(t, err)
	require.Len(t, styles, 6)

	colors := make([]string, len(styles))
	for i, s := range styles {
		colors[i] = s.Color
	}
	assert.Equal(t, []string{ColorHigh, ColorLow, ColorModerate, ColorLow, ColorHigh, ColorLow}, colors)
}

func TestResolveAll_FailsWhole(t *testing.T) {
	styles, err := ResolveAll([]int{1, 2, 7})
	assert.Nil(t, styles)
	assert.ErrorIs(t, err, ErrUnresolvedStyle)
	assert.Contains(t, err.Error(), "row 2")
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "low", TierLow.String())
	assert.Equal(t, "moderate", TierModerate.String())
	assert.Equal(t, "high", TierHigh.String())
	assert.Equal(t, "unknown", TierUnknown.String())
}
