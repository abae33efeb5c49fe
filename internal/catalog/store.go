// Package catalog persists assembled events in a local SQLite catalog.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/quakeline/nordic-etl/internal/domain"
	"github.com/quakeline/nordic-etl/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	resource_id  TEXT PRIMARY KEY,
	description  TEXT NOT NULL DEFAULT '',
	origin_time  TEXT,
	latitude     REAL,
	longitude    REAL,
	depth        REAL,
	assembled_at TEXT NOT NULL,
	payload      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS events_origin_time ON events (origin_time);
`

// Store is an event catalog backed by a single SQLite file. Events are keyed
// by their file-derived resource id, so re-ingesting a bulletin is a no-op.
// It implements pipeline.BatchLoader.
type Store struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// Open opens (creating if needed) the catalog at path. Pass nil metrics to
// skip instrumentation.
func Open(path string, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// One writer at a time keeps modernc's file locking honest.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog schema: %w", err)
	}
	return &Store{db: db, metrics: metrics}, nil
}

// LoadBatch inserts a batch inside one transaction. Events already in the
// catalog are left untouched.
func (s *Store) LoadBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, ev := range events {
		inserted, err := insertEvent(ctx, tx, ev)
		if err != nil {
			s.count("error")
			return err
		}
		if inserted {
			s.count("inserted")
		} else {
			s.count("duplicate")
		}
	}
	return tx.Commit()
}

// Save inserts a single event. Returns false when the event already existed.
func (s *Store) Save(ctx context.Context, ev domain.Event) (bool, error) {
	inserted, err := insertEvent(ctx, s.db, ev)
	if err != nil {
		s.count("error")
		return false, err
	}
	if inserted {
		s.count("inserted")
	} else {
		s.count("duplicate")
	}
	return inserted, nil
}

// Has reports whether an event with the given id is already cataloged.
func (s *Store) Has(ctx context.Context, id domain.ResourceID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM events WHERE resource_id = ?`, string(id)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("catalog lookup: %w", err)
	}
	return n > 0, nil
}

// Get loads one event by id. Returns sql.ErrNoRows when absent.
func (s *Store) Get(ctx context.Context, id domain.ResourceID) (domain.Event, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM events WHERE resource_id = ?`, string(id)).Scan(&payload)
	if err != nil {
		return domain.Event{}, err
	}
	var ev domain.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("catalog payload: %w", err)
	}
	return ev, nil
}

// Count returns the number of cataloged events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, db execer, ev domain.Event) (bool, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return false, fmt.Errorf("serialize event %s: %w", ev.ResourceID, err)
	}
	var originTime any
	var lat, lon, depth any
	if len(ev.Origins) > 0 {
		o := ev.Origins[0]
		originTime = o.Time.UTC().Format("2006-01-02T15:04:05.000Z")
		lat, lon, depth = o.Latitude, o.Longitude, o.Depth
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO events (resource_id, description, origin_time, latitude, longitude, depth, assembled_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (resource_id) DO NOTHING`,
		string(ev.ResourceID), ev.Description, originTime, lat, lon, depth,
		ev.AssembledAt.UTC().Format("2006-01-02T15:04:05.000Z"), payload,
	)
	if err != nil {
		return false, fmt.Errorf("catalog insert %s: %w", ev.ResourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("catalog insert %s: %w", ev.ResourceID, err)
	}
	return n > 0, nil
}

func (s *Store) count(outcome string) {
	if s.metrics != nil {
		s.metrics.CatalogWrites.WithLabelValues(outcome).Inc()
	}
}
