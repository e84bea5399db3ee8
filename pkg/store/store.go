// Package store persists particulate readings in SQLite and fans appended
// readings out to live subscribers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/inactivist/aqimon/pkg/model"
)

const sqliteDriverName = "sqlite"

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    ts   INTEGER NOT NULL,
    pm25 REAL NOT NULL,
    pm10 REAL NOT NULL,
    epa  REAL NOT NULL
);
`

const schemaReadingsIndex = `
CREATE INDEX IF NOT EXISTS readings_ts_idx ON readings (ts);
`

// Store wraps the readings database. Timestamps are stored as UTC Unix
// milliseconds.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	onAppend []func(model.Reading)
}

// Open opens/creates a SQLite database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings; SQLite is not great with many writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the database cannot be reached.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing database handle. The schema must already
// exist; tests use this with sqlmock.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// OnAppend registers fn to run after every successful append. Registration
// is not concurrency-safe with appends; wire subscribers up front.
func (s *Store) OnAppend(fn func(model.Reading)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAppend = append(s.onAppend, fn)
}

// Append records one reading and notifies subscribers.
func (s *Store) Append(ctx context.Context, r model.Reading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (ts, pm25, pm10, epa) VALUES (?, ?, ?, ?)`,
		r.T, r.PM25, r.PM10, r.EPA)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}

	s.mu.Lock()
	subs := append([]func(model.Reading)(nil), s.onAppend...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(r)
	}
	return nil
}

// Window returns the readings inside the window ending at now, oldest
// first. The result is never nil, so an empty window serializes as a JSON
// array.
func (s *Store) Window(ctx context.Context, w model.Window, now time.Time) (model.Series, error) {
	query := `SELECT ts, pm25, pm10, epa FROM readings ORDER BY ts`
	var args []interface{}
	if since, bounded := w.Since(now); bounded {
		query = `SELECT ts, pm25, pm10, epa FROM readings WHERE ts >= ? ORDER BY ts`
		args = append(args, since.UnixMilli())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s window: %w", w, err)
	}
	defer rows.Close()

	series := make(model.Series, 0)
	for rows.Next() {
		var r model.Reading
		if err := rows.Scan(&r.T, &r.PM25, &r.PM10, &r.EPA); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		series = append(series, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return series, nil
}

// Latest returns the most recent reading, or the zero Reading when the
// table is empty.
func (s *Store) Latest(ctx context.Context) (model.Reading, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ts, pm25, pm10, epa FROM readings ORDER BY ts DESC LIMIT 1`)

	var r model.Reading
	if err := row.Scan(&r.T, &r.PM25, &r.PM10, &r.EPA); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reading{}, nil
		}
		return model.Reading{}, fmt.Errorf("query latest reading: %w", err)
	}
	return r, nil
}

// Prune deletes readings observed before cutoff and reports how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM readings WHERE ts < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune readings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, roll back to avoid leaving an open transaction.
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{schemaReadings, schemaReadingsIndex} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
