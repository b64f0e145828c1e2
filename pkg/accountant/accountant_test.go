package accountant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempotrack/tempotrack/pkg/tariff"
	"github.com/tempotrack/tempotrack/pkg/types"
)

func offPeak(v float64) types.CumulativeCounters {
	return types.CumulativeCounters{OffPeakKWH: types.Float64Ptr(v)}
}

func onPeak(v float64) types.CumulativeCounters {
	return types.CumulativeCounters{OnPeakKWH: types.Float64Ptr(v)}
}

func TestApply(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC)
	}

	t.Run("On-Peak Label Copies Counter", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneDay,
			CurrentColor: types.ColorHPWhite,
		}
		a.Apply(onPeak(4.2), k, day(14, 0))

		buckets := a.Buckets()
		require.Len(t, buckets, 1)
		assert.Equal(t, 4.2, buckets[types.ColorHPWhite])
	})

	t.Run("Night Zone Stores Counter And Baseline", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneNight,
			CurrentColor: types.ColorHCBlue,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(2.0), k, day(3, 0))

		assert.Equal(t, 2.0, a.Buckets()[types.ColorHCBlue])
		require.NotNil(t, a.NightBaseline())
		assert.Equal(t, 2.0, *a.NightBaseline())

		// the baseline tracks the counter while still inside the zone
		a.Apply(offPeak(2.7), k, day(5, 30))
		assert.Equal(t, 2.7, *a.NightBaseline())
	})

	t.Run("Evening Subtracts Night Baseline", func(t *testing.T) {
		a := New(time.UTC)
		night := tariff.Knowledge{
			CurrentZone:  tariff.ZoneNight,
			CurrentColor: types.ColorHCBlue,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(2.0), night, day(3, 0))

		evening := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCWhite,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(5.5), evening, day(22, 30))

		buckets := a.Buckets()
		require.Contains(t, buckets, types.ColorHCWhite)
		assert.InDelta(t, 3.5, buckets[types.ColorHCWhite], 1e-9)
		assert.Equal(t, 2.0, buckets[types.ColorHCBlue], "night bucket survives into the evening")
	})

	t.Run("Evening Negative Delta Leaves Bucket Unchanged", func(t *testing.T) {
		a := New(time.UTC)
		night := tariff.Knowledge{
			CurrentZone:  tariff.ZoneNight,
			CurrentColor: types.ColorHCBlue,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(6.0), night, day(3, 0))

		evening := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCWhite,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(5.5), evening, day(22, 30))
		assert.NotContains(t, a.Buckets(), types.ColorHCWhite)
	})

	t.Run("Evening Same Color As Night Stores Directly", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCBlue,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(5.5), k, day(22, 30))
		assert.Equal(t, 5.5, a.Buckets()[types.ColorHCBlue])
	})

	t.Run("Evening Cold Start Seeds Baseline", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCWhite,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(5.5), k, day(23, 30))

		buckets := a.Buckets()
		assert.Equal(t, 5.5, buckets[types.ColorHCBlue], "unobserved night carries the counter")
		assert.Equal(t, 0.0, buckets[types.ColorHCWhite])
		require.NotNil(t, a.NightBaseline())
		assert.Equal(t, 5.5, *a.NightBaseline())

		// subsequent evening growth is attributed to the evening color
		a.Apply(offPeak(6.0), k, day(23, 45))
		buckets = a.Buckets()
		assert.InDelta(t, 0.5, buckets[types.ColorHCWhite], 1e-9)
		assert.Equal(t, 5.5, buckets[types.ColorHCBlue])
	})

	t.Run("Evening Without Night Knowledge Stores Nothing", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCWhite,
		}
		a.Apply(offPeak(5.5), k, day(22, 30))
		assert.Empty(t, a.Buckets())
	})

	t.Run("Stale Baseline From Another Day Is Never Subtracted", func(t *testing.T) {
		a := New(time.UTC)
		night := tariff.Knowledge{
			CurrentZone:  tariff.ZoneNight,
			CurrentColor: types.ColorHCBlue,
			NightColor:   types.ColorHCBlue,
		}
		a.Apply(offPeak(2.0), night, day(3, 0))

		evening := tariff.Knowledge{
			CurrentZone:  tariff.ZoneEvening,
			CurrentColor: types.ColorHCWhite,
			NightColor:   types.ColorHCBlue,
		}
		nextDay := time.Date(2024, 1, 16, 22, 30, 0, 0, time.UTC)
		a.Apply(offPeak(5.5), evening, nextDay)

		// the day-old 2.0 must not produce a 3.5 split; the counter reseeds
		// as a fresh cold start instead
		buckets := a.Buckets()
		assert.Equal(t, 0.0, buckets[types.ColorHCWhite])
		assert.Equal(t, 5.5, buckets[types.ColorHCBlue])
	})

	t.Run("Color Correction Within Zone Supersedes", func(t *testing.T) {
		a := New(time.UTC)
		white := tariff.Knowledge{
			CurrentZone:  tariff.ZoneDay,
			CurrentColor: types.ColorHPWhite,
		}
		a.Apply(onPeak(4.2), white, day(14, 0))

		red := tariff.Knowledge{
			CurrentZone:  tariff.ZoneDay,
			CurrentColor: types.ColorHPRed,
		}
		a.Apply(onPeak(4.3), red, day(15, 0))

		buckets := a.Buckets()
		require.Len(t, buckets, 1)
		assert.Equal(t, 4.3, buckets[types.ColorHPRed])
	})

	t.Run("Unknown Label Is Ignored", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneDay,
			CurrentColor: types.ColorLabel("HP Violet"),
		}
		a.Apply(onPeak(4.2), k, day(14, 0))
		assert.Empty(t, a.Buckets())
	})

	t.Run("Missing Counter Is Ignored", func(t *testing.T) {
		a := New(time.UTC)
		k := tariff.Knowledge{
			CurrentZone:  tariff.ZoneDay,
			CurrentColor: types.ColorHPBlue,
		}
		a.Apply(types.CumulativeCounters{}, k, day(14, 0))
		assert.Empty(t, a.Buckets())
	})
}

func TestDayChanged(t *testing.T) {
	cases := []struct {
		name      string
		prev, cur time.Time
		want      bool
	}{
		{
			"midnight crossing",
			time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC),
			true,
		},
		{
			"same day hours apart",
			time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
			false,
		},
		{
			"month boundary",
			time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 1, 0, 0, time.UTC),
			true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DayChanged(c.prev, c.cur))
		})
	}
}

func TestRollover(t *testing.T) {
	a := New(time.UTC)

	assert.False(t, a.RolloverDue(time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC)),
		"no rollover before the first observation")

	a.MarkObserved(time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC))
	assert.False(t, a.RolloverDue(time.Date(2024, 1, 1, 23, 55, 0, 0, time.UTC)))
	assert.True(t, a.RolloverDue(time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC)))

	night := tariff.Knowledge{
		CurrentZone:  tariff.ZoneNight,
		CurrentColor: types.ColorHCRed,
		NightColor:   types.ColorHCRed,
	}
	a.Apply(offPeak(1.2), night, time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC))
	require.NotEmpty(t, a.Buckets())
	require.NotNil(t, a.NightBaseline())

	a.Rollover()
	assert.Empty(t, a.Buckets())
	assert.Nil(t, a.NightBaseline())
}
