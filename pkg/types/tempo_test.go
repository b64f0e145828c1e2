package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorLabel(t *testing.T) {
	t.Run("Period", func(t *testing.T) {
		assert.Equal(t, PeriodOffPeak, ColorHCBlue.Period())
		assert.Equal(t, PeriodOffPeak, ColorHCWhite.Period())
		assert.Equal(t, PeriodOffPeak, ColorHCRed.Period())
		assert.Equal(t, PeriodOnPeak, ColorHPBlue.Period())
		assert.Equal(t, PeriodOnPeak, ColorHPWhite.Period())
		assert.Equal(t, PeriodOnPeak, ColorHPRed.Period())
		assert.Equal(t, PeriodUnknown, ColorLabel("Heures Creuses").Period())
	})

	t.Run("Valid", func(t *testing.T) {
		for _, label := range AllColorLabels {
			assert.True(t, label.Valid(), "%s should be valid", label)
		}
		assert.False(t, ColorLabel("").Valid())
		assert.False(t, ColorLabel("HC Vert").Valid())
	})
}

func TestSnapshotColorBuckets(t *testing.T) {
	var s ConsumptionSnapshot
	s.SetColorBuckets(map[ColorLabel]float64{
		ColorHCWhite: 3.5,
		ColorHPWhite: 4.2,
	})

	assert.Nil(t, s.TempoHCBlueKWH)
	assert.Nil(t, s.TempoHPBlueKWH)
	assert.Nil(t, s.TempoHCRedKWH)
	assert.Nil(t, s.TempoHPRedKWH)
	if assert.NotNil(t, s.TempoHCWhiteKWH) {
		assert.Equal(t, 3.5, *s.TempoHCWhiteKWH)
	}
	if assert.NotNil(t, s.TempoHPWhiteKWH) {
		assert.Equal(t, 4.2, *s.TempoHPWhiteKWH)
	}

	// replacing the buckets clears labels no longer present
	s.SetColorBuckets(map[ColorLabel]float64{ColorHCRed: 1.0})
	assert.Nil(t, s.TempoHCWhiteKWH)
	assert.Nil(t, s.TempoHPWhiteKWH)
	if assert.NotNil(t, s.TempoHCRedKWH) {
		assert.Equal(t, 1.0, *s.TempoHCRedKWH)
	}

	assert.Equal(t, s.TempoHCRedKWH, s.ColorKWH(ColorHCRed))
	assert.Nil(t, s.ColorKWH(ColorLabel("bogus")))
}
