// Package accountant attributes the day's cumulative energy counters to
// Tempo color buckets. The awkward part is the shared off-peak counter: the
// night and evening windows both feed it, but Tempo colors are assigned per
// gas-day spanning midnight, so the two windows usually carry different
// colors and the evening share has to be isolated by subtracting a baseline
// taken during the night window.
package accountant

import (
	"time"

	"github.com/tempotrack/tempotrack/pkg/tariff"
	"github.com/tempotrack/tempotrack/pkg/types"
)

// Accountant owns the mutable per-day attribution state: the color buckets
// and the night baseline. One instance per monitored power meter, single
// caller at a time.
type Accountant struct {
	loc *time.Location

	buckets map[types.ColorLabel]float64

	// zoneLabels remembers which label each zone last stored to, so a color
	// correction within a zone supersedes its previous bucket instead of
	// leaving two values for the same window.
	zoneLabels map[tariff.Zone]types.ColorLabel

	// nightBaselineKWH is the off-peak counter as last seen during the
	// night zone. It is tagged with the calendar day it was observed on so
	// a repeated color sequence can never borrow a stale baseline across
	// days (see the date check in Apply).
	nightBaselineKWH *float64
	baselineDay      time.Time

	lastObserved time.Time
}

// New returns an accountant using the given reference timezone for all
// calendar math.
func New(loc *time.Location) *Accountant {
	return &Accountant{
		loc:        loc,
		buckets:    make(map[types.ColorLabel]float64),
		zoneLabels: make(map[tariff.Zone]types.ColorLabel),
	}
}

// DayChanged reports whether the two instants fall on different calendar
// days. Elapsed duration is irrelevant; 23:50 and 00:05 the next day are a
// rollover, 10:00 and 23:00 the same day are not.
func DayChanged(prev, cur time.Time) bool {
	py, pm, pd := prev.Date()
	cy, cm, cd := cur.Date()
	return py != cy || pm != cm || pd != cd
}

// RolloverDue reports whether a day boundary was crossed since the previous
// observation. Always false before the first observation.
func (a *Accountant) RolloverDue(now time.Time) bool {
	if a.lastObserved.IsZero() {
		return false
	}
	return DayChanged(a.lastObserved.In(a.loc), now.In(a.loc))
}

// Rollover resets the per-day state: all color buckets and the night
// baseline.
func (a *Accountant) Rollover() {
	a.buckets = make(map[types.ColorLabel]float64)
	a.zoneLabels = make(map[tariff.Zone]types.ColorLabel)
	a.nightBaselineKWH = nil
	a.baselineDay = time.Time{}
}

// MarkObserved records the observation instant used by the next rollover
// check.
func (a *Accountant) MarkObserved(now time.Time) {
	a.lastObserved = now
}

// Apply attributes the fetched counters to the color bucket selected by the
// current tariff knowledge.
func (a *Accountant) Apply(counters types.CumulativeCounters, k tariff.Knowledge, at time.Time) {
	at = at.In(a.loc)
	label := k.CurrentColor
	if !label.Valid() {
		return
	}

	if label.Period() == types.PeriodOnPeak {
		// only one off/on-peak boundary occurs per day for on-peak hours,
		// so the counter maps straight onto the bucket
		if counters.OnPeakKWH != nil {
			a.set(tariff.ZoneDay, label, *counters.OnPeakKWH)
		}
		return
	}

	if counters.OffPeakKWH == nil {
		return
	}
	off := *counters.OffPeakKWH
	if off < 0 {
		return
	}

	switch k.CurrentZone {
	case tariff.ZoneNight:
		a.set(tariff.ZoneNight, label, off)
		// the baseline tracks the counter while still in the night zone;
		// it freezes once the zone changes
		a.setBaseline(off, at)

	case tariff.ZoneEvening:
		baseline := a.nightBaselineKWH
		if baseline != nil && DayChanged(a.baselineDay, at) {
			// a baseline from another day is never subtracted against
			baseline = nil
		}
		switch {
		case label == k.NightColor:
			// no color change across midnight: the whole off-peak counter
			// belongs to this one color
			a.set(tariff.ZoneEvening, label, off)
		case baseline != nil:
			// the normal case: the color changed at the night/evening
			// boundary, so the evening share is the growth since the
			// baseline. Negative deltas mean counter irregularities or
			// clock skew and leave the bucket unchanged.
			if inc := off - *baseline; inc >= 0 {
				a.set(tariff.ZoneEvening, label, inc)
			}
		case k.NightColor.Valid():
			// cold start during the evening: the night window was never
			// observed, so the counter so far is carried by the night color
			// and the evening share is measured from this observation on
			a.set(tariff.ZoneNight, k.NightColor, off)
			a.set(tariff.ZoneEvening, label, 0)
			a.setBaseline(off, at)
		}
	}
}

func (a *Accountant) setBaseline(kwh float64, at time.Time) {
	v := kwh
	a.nightBaselineKWH = &v
	a.baselineDay = at
}

// set stores the value under the zone's label, clearing the bucket the zone
// previously stored to when the label changed: within one zone, color
// corrections supersede rather than accumulate.
func (a *Accountant) set(zone tariff.Zone, label types.ColorLabel, kwh float64) {
	if prev, ok := a.zoneLabels[zone]; ok && prev != label {
		delete(a.buckets, prev)
	}
	a.zoneLabels[zone] = label
	a.buckets[label] = kwh
}

// Buckets returns a copy of the color accumulators; absent keys mean no
// energy attributed to that label today.
func (a *Accountant) Buckets() map[types.ColorLabel]float64 {
	out := make(map[types.ColorLabel]float64, len(a.buckets))
	for label, v := range a.buckets {
		out[label] = v
	}
	return out
}

// NightBaseline returns the current baseline value, or nil when none was
// taken today.
func (a *Accountant) NightBaseline() *float64 {
	if a.nightBaselineKWH == nil {
		return nil
	}
	v := *a.nightBaselineKWH
	return &v
}
