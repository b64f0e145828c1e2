package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tempotrack/tempotrack/pkg/types"
)

// Memory keeps snapshots in process memory. Nothing survives a restart; it
// exists for running without a writable filesystem and for tests.
type Memory struct {
	mu    sync.RWMutex
	snaps map[int64]types.ConsumptionSnapshot
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[int64]types.ConsumptionSnapshot)}
}

func (m *Memory) InsertSnapshot(ctx context.Context, snap types.ConsumptionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Timestamp.UnixMilli()] = snap
	return nil
}

func (m *Memory) GetSnapshotHistory(ctx context.Context, start, end time.Time) ([]types.ConsumptionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.ConsumptionSnapshot
	for ts, snap := range m.snaps {
		if ts >= start.UnixMilli() && ts < end.UnixMilli() {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (m *Memory) GetLatestSnapshotTime(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest int64
	for ts := range m.snaps {
		if ts > latest {
			latest = ts
		}
	}
	if latest == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(latest), nil
}

func (m *Memory) Close() error {
	return nil
}
