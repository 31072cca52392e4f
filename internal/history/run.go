package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/workbench/internal/plugin/execute"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// Entry is a stored run.
type Entry struct {
	ID       string
	Feature  string
	Success  bool
	Message  string
	Error    string
	Data     json.RawMessage
	Started  time.Time
	Duration time.Duration
}

// Record stores a completed run. Store implements execute.Recorder.
func (s *Store) Record(ctx context.Context, run execute.Run) error {
	data, err := json.Marshal(run.Result.Data)
	if err != nil {
		// Keep the run even when its payload has no JSON form
		data = []byte("null")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, feature, success, message, error, data, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Feature, run.Result.Success, run.Result.Message, run.Result.Error,
		string(data), run.Started.UnixNano(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs of feature, newest first.
// An empty feature matches every feature.
func (s *Store) Recent(ctx context.Context, feature string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, feature, success, message, error, data, started_at, duration_ms
		 FROM runs
		 WHERE ? = '' OR feature = ?
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		feature, feature, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, feature, success, message, error, data, started_at, duration_ms
		 FROM runs WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// Count returns the number of stored runs of feature.
func (s *Store) Count(ctx context.Context, feature string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE feature = ?`, feature).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e          Entry
		data       string
		startedNS  int64
		durationMS int64
	)
	if err := sc.Scan(&e.ID, &e.Feature, &e.Success, &e.Message, &e.Error, &data, &startedNS, &durationMS); err != nil {
		return Entry{}, err
	}
	e.Data = json.RawMessage(data)
	e.Started = time.Unix(0, startedNS)
	e.Duration = time.Duration(durationMS) * time.Millisecond
	return e, nil
}
