// Package store persists the latest analysis result and the run history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/scdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed keys of the latest-result slot.
const (
	KeyLatestResult   = "latestAnalysisResult"
	KeyLatestSettings = "latestAnalysisSettings"
)

// timeLayout keeps fractional seconds fixed-width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// busyTimeoutMs is how long a statement waits for a lock held elsewhere.
const busyTimeoutMs = 5000

// ErrNoResult is returned when no analysis has been stored yet.
var ErrNoResult = errors.New("no analysis results available")

// Entry is a single key/value pair.
type Entry struct {
	Key   string
	Value string
}

// ResultStore is a string key/value store. Put writes all entries or none.
type ResultStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, entries ...Entry) error
}

// RunLog records run metadata.
type RunLog interface {
	RecordRun(ctx context.Context, rec model.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
}

// Latest is the cached output of the most recent successful run.
type Latest struct {
	Output   string
	Settings model.Settings
}

// SaveLatest replaces the latest-result slot with output and settings.
func SaveLatest(ctx context.Context, rs ResultStore, output string, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return rs.Put(ctx,
		Entry{Key: KeyLatestResult, Value: output},
		Entry{Key: KeyLatestSettings, Value: string(raw)},
	)
}

// LatestOutput returns the cached raw output, or ErrNoResult.
func LatestOutput(ctx context.Context, rs ResultStore) (string, error) {
	out, ok, err := rs.Get(ctx, KeyLatestResult)
	if err != nil {
		return "", err
	}
	if !ok || out == "" {
		return "", ErrNoResult
	}
	return out, nil
}

// LoadLatest returns the cached output together with its settings snapshot.
// Both must be present.
func LoadLatest(ctx context.Context, rs ResultStore) (Latest, error) {
	out, err := LatestOutput(ctx, rs)
	if err != nil {
		return Latest{}, err
	}
	raw, ok, err := rs.Get(ctx, KeyLatestSettings)
	if err != nil {
		return Latest{}, err
	}
	if !ok || raw == "" {
		return Latest{}, ErrNoResult
	}
	var settings model.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Latest{}, fmt.Errorf("failed to decode cached settings: %w", err)
	}
	return Latest{Output: out, Settings: settings}, nil
}

// SQLite implements ResultStore and RunLog on a SQLite database.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := migrateUp(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout("+strconv.Itoa(busyTimeoutMs)+")")
	if err != nil {
		return nil, err
	}
	// One connection serializes writers within the process; the busy
	// timeout covers other processes such as a running watch.
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements ResultStore.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put implements ResultStore.
func (s *SQLite) Put(ctx context.Context, entries ...Entry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	now := time.Now().UTC().Format(timeLayout)
	for _, e := range entries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			e.Key, e.Value, now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordRun implements RunLog.
func (s *SQLite) RecordRun(ctx context.Context, rec model.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, success, error, file_count, command)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.DurationMs,
		rec.Success,
		rec.Error,
		rec.FileCount,
		rec.Command,
	)
	return err
}

// ListRuns implements RunLog. Newest runs come first; limit <= 0 lists all.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, success, error, file_count, command
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		var startedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &rec.DurationMs, &rec.Success, &rec.Error, &rec.FileCount, &rec.Command); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, err
		}
		rec.StartedAt = parsed
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
