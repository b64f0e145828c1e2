package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/tempotrack/tempotrack/pkg/types"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	ts   INTEGER PRIMARY KEY,
	data TEXT NOT NULL
);
`

// SQLite stores snapshots in a single-file database. One row per refresh
// cycle, the snapshot JSON-encoded so the schema survives snapshot field
// additions without migrations.
type SQLite struct {
	path string
	db   *sql.DB
}

func configuredSQLite() *SQLite {
	s := &SQLite{}
	path := lflag.String("sqlite-path", "tempotrack.db", "Path to the sqlite database file")
	lflag.Do(func() {
		s.path = *path
	})
	return s
}

// Validate checks the configuration before Init.
func (s *SQLite) Validate() error {
	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	return nil
}

// Init opens the database and applies the schema.
func (s *SQLite) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLite) InsertSnapshot(ctx context.Context, snap types.ConsumptionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (ts, data) VALUES (?, ?)`,
		snap.Timestamp.UnixMilli(), string(data),
	)
	return err
}

func (s *SQLite) GetSnapshotHistory(ctx context.Context, start, end time.Time) ([]types.ConsumptionSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM snapshots WHERE ts >= ? AND ts < ? ORDER BY ts ASC`,
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ConsumptionSnapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var snap types.ConsumptionSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLite) GetLatestSnapshotTime(ctx context.Context) (time.Time, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(ts) FROM snapshots`).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.UnixMilli(ts.Int64), nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
