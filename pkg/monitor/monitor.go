// Package monitor runs the refresh loop: one cycle per poll interval, each
// cycle producing a fresh ConsumptionSnapshot from whatever the gateway
// answered. Partial answers are normal; fields that could not be refreshed
// carry over from the previous snapshot.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tempotrack/tempotrack/pkg/accountant"
	"github.com/tempotrack/tempotrack/pkg/ecojoko"
	"github.com/tempotrack/tempotrack/pkg/log"
	"github.com/tempotrack/tempotrack/pkg/storage"
	"github.com/tempotrack/tempotrack/pkg/tariff"
	"github.com/tempotrack/tempotrack/pkg/types"
)

// Monitor owns the per-cycle orchestration: session and identity readiness,
// day rollover, tariff resolution, the fetch sequence, and snapshot
// assembly. Refresh is not safe for concurrent use; Run is the single
// caller.
type Monitor struct {
	client *ecojoko.Client
	res    *tariff.Resolver
	acct   *accountant.Accountant
	db     storage.Database

	loc          *time.Location
	feats        types.Features
	pollInterval time.Duration
	statInterval time.Duration

	now func() time.Time

	backfilled    bool
	lastStatFetch time.Time

	mu         sync.RWMutex
	latest     types.ConsumptionSnapshot
	haveLatest bool
}

// New wires a monitor from its parts. The resolver and accountant are
// created here so they share the client and timezone.
func New(client *ecojoko.Client, db storage.Database, loc *time.Location, feats types.Features, pollInterval, statInterval time.Duration) *Monitor {
	return &Monitor{
		client:       client,
		res:          tariff.NewResolver(client, loc),
		acct:         accountant.New(loc),
		db:           db,
		loc:          loc,
		feats:        feats,
		pollInterval: pollInterval,
		statInterval: statInterval,
		now:          time.Now,
	}
}

// Latest returns the most recent snapshot; false until the first cycle.
func (m *Monitor) Latest() (types.ConsumptionSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.haveLatest
}

func (m *Monitor) setLatest(snap types.ConsumptionSnapshot) {
	m.mu.Lock()
	m.latest = snap
	m.haveLatest = true
	m.mu.Unlock()
}

// Refresh runs one cycle and returns the resulting snapshot. Remote-side
// failures never propagate out: a failed step aborts the remaining steps and
// the snapshot keeps the previous cycle's values for everything that was not
// refreshed. A partially stale snapshot beats no snapshot. An authentication
// failure has already invalidated the session, so the next cycle begins with
// a fresh login.
func (m *Monitor) Refresh(ctx context.Context) types.ConsumptionSnapshot {
	now := m.now().In(m.loc)

	snap, _ := m.Latest()
	snap.Timestamp = now

	err := m.cycle(ctx, &snap, now)
	if err != nil {
		logCycleFailure(ctx, err)
	}

	if fw := m.client.Identity().FirmwareVersion; fw != "" {
		snap.FirmwareVersion = fw
	}
	m.setLatest(snap)

	if err == nil && m.db != nil {
		if err := m.db.InsertSnapshot(ctx, snap); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to persist snapshot", slog.Any("error", err))
		}
	}
	return snap
}

// cycle performs the ordered steps of one refresh; the first failure aborts
// the rest.
func (m *Monitor) cycle(ctx context.Context, snap *types.ConsumptionSnapshot, now time.Time) error {
	if m.acct.RolloverDue(now) {
		log.Ctx(ctx).InfoContext(ctx, "day rollover, resetting accumulators")
		m.acct.Rollover()
		m.res.ResetDay()
		// re-discover in case the device roster changed overnight
		m.client.ResetIdentity()
		snap.SetColorBuckets(nil)
	}
	m.acct.MarkObserved(now)

	if err := m.client.EnsureReady(ctx); err != nil {
		return err
	}

	if m.feats.UseTempo {
		if err := m.res.EnsureCurrent(ctx); err != nil {
			return err
		}
		if !m.backfilled {
			if err := m.res.Backfill(ctx); err != nil {
				return err
			}
			m.backfilled = true
		}
	}

	if watts, ok, err := m.client.RealtimePower(ctx); err != nil {
		return err
	} else if ok {
		snap.RealtimePowerW = types.Float64Ptr(watts)
	}

	if m.statDue(now) {
		if err := m.refreshStats(ctx, snap, now); err != nil {
			return err
		}
		m.lastStatFetch = now
	}
	return nil
}

// statDue gates the heavier stat endpoints to once per statInterval; the
// realtime endpoint alone runs every cycle.
func (m *Monitor) statDue(now time.Time) bool {
	return m.lastStatFetch.IsZero() || now.Sub(m.lastStatFetch) >= m.statInterval
}

// refreshStats fetches the cumulative counters, the last completed interval,
// and (when available) the temperature and humidity series, in a fixed order
// so the snapshot is assembled deterministically.
func (m *Monitor) refreshStats(ctx context.Context, snap *types.ConsumptionSnapshot, now time.Time) error {
	counters, ok, err := m.client.PeriodCounters(ctx, now, m.feats)
	if err != nil {
		return err
	}
	if ok {
		snap.TotalKWH = types.Float64Ptr(counters.TotalKWH)
		snap.OffPeakKWH = counters.OffPeakKWH
		snap.OnPeakKWH = counters.OnPeakKWH
		snap.ProductionSurplusKWH = counters.ProductionSurplusKWH

		if m.feats.UseTempo {
			m.acct.Apply(counters, m.res.Knowledge(), now)
			snap.SetColorBuckets(m.acct.Buckets())
		}
	}

	if power, kwh, ok, err := m.client.LastMeasure(ctx, now); err != nil {
		return err
	} else if ok {
		snap.LastIntervalPowerW = types.Float64Ptr(power)
		snap.LastIntervalKWH = types.Float64Ptr(kwh)
	}

	if m.feats.UseTempHum && m.client.Identity().HasTempHum() {
		if indoor, outdoor, ok, err := m.client.TempStat(ctx, now); err != nil {
			return err
		} else if ok {
			snap.IndoorTempC = types.Float64Ptr(indoor)
			snap.OutdoorTempC = types.Float64Ptr(outdoor)
		}
		if indoor, outdoor, ok, err := m.client.HumStat(ctx, now); err != nil {
			return err
		} else if ok {
			snap.IndoorHumPct = types.Float64Ptr(indoor)
			snap.OutdoorHumPct = types.Float64Ptr(outdoor)
		}
	}
	return nil
}

func logCycleFailure(ctx context.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, ecojoko.ErrAuthentication):
		log.Ctx(ctx).WarnContext(ctx, "authentication failed, re-login next cycle", slog.Any("error", err))
	case errors.Is(err, ecojoko.ErrCommunication):
		log.Ctx(ctx).WarnContext(ctx, "gateway unreachable, retrying next cycle", slog.Any("error", err))
	default:
		log.Ctx(ctx).ErrorContext(ctx, "refresh cycle failed", slog.Any("error", err))
	}
}

// Run refreshes immediately and then on every tick until the context is
// canceled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	log.Ctx(ctx).InfoContext(ctx, "starting monitor",
		slog.Duration("pollInterval", m.pollInterval),
		slog.Duration("statInterval", m.statInterval),
	)
	if m.db != nil {
		if last, err := m.db.GetLatestSnapshotTime(ctx); err == nil && !last.IsZero() {
			log.Ctx(ctx).InfoContext(ctx, "resuming after last persisted snapshot", slog.Time("at", last))
		}
	}

	for {
		m.Refresh(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
