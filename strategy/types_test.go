package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneMatchesClosedInterval(t *testing.T) {
	z := ExitZone{PnlLo: -5, PnlHi: 5}
	assert.True(t, z.Matches(-5))
	assert.True(t, z.Matches(5))
	assert.True(t, z.Matches(0))
	assert.False(t, z.Matches(5.0001))
	assert.False(t, z.Matches(-5.0001))
}

func TestEffectiveExitPercentDefaultsTo100(t *testing.T) {
	assert.Equal(t, 100.0, ExitZone{}.EffectiveExitPercent())
	assert.Equal(t, 50.0, ExitZone{ExitPercent: 50}.EffectiveExitPercent())
}

func TestValidateRequiresZeroZone(t *testing.T) {
	s := Strategy{ExitZones: []ExitZone{{PnlLo: 1, PnlHi: 100}}}
	require.ErrorIs(t, s.Validate(), ErrNoZeroZone)

	s.ExitZones = append(s.ExitZones, ExitZone{PnlLo: -100, PnlHi: 1})
	require.NoError(t, s.Validate())
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	s := Strategy{ExitZones: []ExitZone{{PnlLo: 10, PnlHi: -10}}}
	require.ErrorIs(t, s.Validate(), ErrInvalidZoneRange)
}

func TestDirectionSign(t *testing.T) {
	assert.Equal(t, 1.0, Long.Sign())
	assert.Equal(t, -1.0, Short.Sign())
}
