package tariff

import (
	"context"
	"log/slog"
	"time"

	"github.com/tempotrack/tempotrack/pkg/log"
	"github.com/tempotrack/tempotrack/pkg/types"
)

// Reference slots used by the cold-start backfill: they sit well inside the
// night and day windows so the fetched label cannot straddle a boundary.
const (
	nightReferenceHour = 1
	dayReferenceHour   = 14
)

// PricingSource fetches the Tempo label for the hour slot containing an
// instant. Implemented by the Ecojoko client.
type PricingSource interface {
	PricingDetail(ctx context.Context, at time.Time) (types.ColorLabel, bool, error)
}

// Knowledge is what has been learned about today's tariff so far. The
// per-zone labels are sticky for the calendar day once observed; the current
// pair is refreshed only when the clock leaves the zone it was resolved in.
type Knowledge struct {
	CurrentZone  Zone
	CurrentColor types.ColorLabel

	NightColor   types.ColorLabel
	DayColor     types.ColorLabel
	EveningColor types.ColorLabel
}

// StickyColor returns the remembered label for a zone, or "" if that zone
// has not been observed today.
func (k Knowledge) StickyColor(z Zone) types.ColorLabel {
	switch z {
	case ZoneNight:
		return k.NightColor
	case ZoneDay:
		return k.DayColor
	case ZoneEvening:
		return k.EveningColor
	}
	return ""
}

// Resolver keeps the tariff knowledge current with as few pricing-detail
// fetches as possible: one per zone transition plus the cold-start backfill.
type Resolver struct {
	src PricingSource
	loc *time.Location
	now func() time.Time

	k Knowledge
}

// NewResolver returns a resolver using the given source and reference
// timezone.
func NewResolver(src PricingSource, loc *time.Location) *Resolver {
	return &Resolver{
		src: src,
		loc: loc,
		now: time.Now,
	}
}

// Knowledge returns a copy of the current tariff knowledge.
func (r *Resolver) Knowledge() Knowledge {
	return r.k
}

// EnsureCurrent re-resolves the active zone and color only when the wall
// clock has left the zone of the last resolution. Calling it repeatedly
// inside one zone performs no fetches.
func (r *Resolver) EnsureCurrent(ctx context.Context) error {
	now := r.now().In(r.loc)
	if r.k.CurrentZone != ZoneUnknown && r.k.CurrentZone.Contains(now) {
		return nil
	}
	return r.resolve(ctx, now, true)
}

// Backfill recovers today's night (and, when already in the evening, day)
// labels that a cold start would otherwise miss until those zones recur.
// Called once, before the first cycle's fetches.
func (r *Resolver) Backfill(ctx context.Context) error {
	now := r.now().In(r.loc)

	night := time.Date(now.Year(), now.Month(), now.Day(), nightReferenceHour, 0, 0, 0, r.loc)
	if err := r.resolve(ctx, night, false); err != nil {
		return err
	}

	if Classify(now) == ZoneEvening {
		day := time.Date(now.Year(), now.Month(), now.Day(), dayReferenceHour, 0, 0, 0, r.loc)
		if err := r.resolve(ctx, day, false); err != nil {
			return err
		}
	}
	return nil
}

// ResetDay forgets all labels at day rollover; the next EnsureCurrent
// resolves from scratch.
func (r *Resolver) ResetDay() {
	r.k = Knowledge{}
}

func (r *Resolver) resolve(ctx context.Context, at time.Time, current bool) error {
	label, ok, err := r.src.PricingDetail(ctx, at)
	if err != nil {
		return err
	}
	if !ok {
		log.Ctx(ctx).DebugContext(ctx, "no pricing detail available", slog.Time("slot", at))
		return nil
	}

	zone := Classify(at)
	wantPeriod := types.PeriodOnPeak
	if zone != ZoneDay {
		wantPeriod = types.PeriodOffPeak
	}
	if label.Period() != wantPeriod {
		log.Ctx(ctx).WarnContext(ctx, "pricing label period does not match zone",
			slog.String("label", string(label)),
			slog.String("zone", zone.String()),
		)
	}

	switch zone {
	case ZoneNight:
		r.k.NightColor = label
	case ZoneDay:
		r.k.DayColor = label
	case ZoneEvening:
		r.k.EveningColor = label
	}
	if current {
		r.k.CurrentZone = zone
		r.k.CurrentColor = label
	}

	log.Ctx(ctx).DebugContext(ctx, "resolved tariff color",
		slog.String("zone", zone.String()),
		slog.String("label", string(label)),
		slog.Bool("current", current),
	)
	return nil
}
