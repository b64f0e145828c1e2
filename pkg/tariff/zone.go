package tariff

import "time"

// Zone is one of the three fixed pricing windows of the HC/HP scheme.
// Boundaries are closed on the low end and open on the high end, so every
// instant belongs to exactly one zone.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneNight        // [00:00, 06:00) off-peak
	ZoneDay          // [06:00, 22:00) on-peak
	ZoneEvening      // [22:00, 24:00) off-peak
)

func (z Zone) String() string {
	switch z {
	case ZoneNight:
		return "night"
	case ZoneDay:
		return "day"
	case ZoneEvening:
		return "evening"
	}
	return "unknown"
}

// Classify maps a wall-clock instant to its pricing zone.
func Classify(t time.Time) Zone {
	switch h := t.Hour(); {
	case h < 6:
		return ZoneNight
	case h < 22:
		return ZoneDay
	default:
		return ZoneEvening
	}
}

// Contains reports whether the instant falls inside the zone's clock window.
func (z Zone) Contains(t time.Time) bool {
	return Classify(t) == z
}
