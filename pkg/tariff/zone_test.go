package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		hour, min, sec int
		want           Zone
	}{
		{0, 0, 0, ZoneNight},
		{3, 30, 0, ZoneNight},
		{5, 59, 59, ZoneNight},
		{6, 0, 0, ZoneDay},
		{12, 0, 0, ZoneDay},
		{21, 59, 59, ZoneDay},
		{22, 0, 0, ZoneEvening},
		{23, 59, 59, ZoneEvening},
	}
	for _, c := range cases {
		at := time.Date(2024, 1, 15, c.hour, c.min, c.sec, 0, time.UTC)
		assert.Equal(t, c.want, Classify(at), "%02d:%02d:%02d", c.hour, c.min, c.sec)
	}
}

func TestClassifyPartitionsDay(t *testing.T) {
	// every minute of the day belongs to exactly one zone and transitions
	// happen only at the three fixed boundaries
	prev := ZoneUnknown
	var transitions []string
	for minute := 0; minute < 24*60; minute++ {
		at := time.Date(2024, 1, 15, 0, minute, 0, 0, time.UTC)
		z := Classify(at)
		assert.NotEqual(t, ZoneUnknown, z)
		if z != prev {
			transitions = append(transitions, at.Format("15:04"))
			prev = z
		}
	}
	assert.Equal(t, []string{"00:00", "06:00", "22:00"}, transitions)
}

func TestZoneContains(t *testing.T) {
	at := time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)
	assert.True(t, ZoneEvening.Contains(at))
	assert.False(t, ZoneDay.Contains(at))
	assert.False(t, ZoneNight.Contains(at))
}
