package storage

import (
	"context"
	"time"

	"github.com/tempotrack/tempotrack/pkg/types"
)

// Database defines the interface for persisting refresh snapshots.
type Database interface {
	// InsertSnapshot appends one refresh cycle's snapshot. The snapshot's
	// own timestamp keys the row.
	InsertSnapshot(ctx context.Context, snap types.ConsumptionSnapshot) error

	// GetSnapshotHistory returns the snapshots within [start, end) in
	// ascending timestamp order.
	GetSnapshotHistory(ctx context.Context, start, end time.Time) ([]types.ConsumptionSnapshot, error)

	// GetLatestSnapshotTime returns the timestamp of the newest stored
	// snapshot, or the zero time when the store is empty.
	GetLatestSnapshotTime(ctx context.Context) (time.Time, error)

	// Lifecycle
	Close() error
}
