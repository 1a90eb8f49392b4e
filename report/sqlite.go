package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iti/virnet"
	_ "modernc.org/sqlite" // SQLite driver
)

// schema holds one row per run and one row per (run, tick).
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    seed INTEGER NOT NULL,
    params TEXT NOT NULL,  -- JSON
    started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS counts (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    infected INTEGER NOT NULL,
    resistant INTEGER NOT NULL,
    susceptible INTEGER NOT NULL,
    PRIMARY KEY (run_id, tick)
);
`

// ErrNoRun is returned by Observe before BeginRun.
var ErrNoRun = errors.New("no run started")

// RunRecord describes one stored run.
type RunRecord struct {
	ID        int64
	Name      string
	Seed      int64
	Params    virnet.Params
	StartedAt time.Time
}

// SQLiteStore persists run logs in a SQLite database.
// It serves as an Observer for the run started by the latest BeginRun.
type SQLiteStore struct {
	db    *sql.DB
	runID int64

	// insert of one counts row, prepared by BeginRun
	insertCounts *sql.Stmt
}

// OpenSQLiteStore opens (creating if needed) the database at dbPath.
// ":memory:" gives a private in-memory database.
func OpenSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" && !strings.Contains(dbPath, "?") {
		dsn = dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer, and :memory: is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// BeginRun records a new run and makes it the target of Observe.
func (s *SQLiteStore) BeginRun(ctx context.Context, name string, params virnet.Params) (int64, error) {
	if params.Seed == nil {
		return 0, fmt.Errorf("run %q: params carry no seed", name)
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to encode params: %w", err)
	}

	if s.insertCounts == nil {
		s.insertCounts, err = s.db.PrepareContext(ctx,
			`INSERT INTO counts (run_id, tick, infected, resistant, susceptible) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare counts insert: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (name, seed, params, started_at) VALUES (?, ?, ?, ?)`,
		name, *params.Seed, string(encoded), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	s.runID = id
	return id, nil
}

// Observe stores the counts of snap under the current run.
func (s *SQLiteStore) Observe(snap virnet.Snapshot) error {
	if s.runID == 0 {
		return ErrNoRun
	}
	c := snap.Counts()
	_, err := s.insertCounts.Exec(s.runID, c.Tick, c.Infected, c.Resistant, c.Susceptible)
	if err != nil {
		return fmt.Errorf("failed to insert counts for tick %d: %w", c.Tick, err)
	}
	return nil
}

// Runs lists the stored runs in the order they were begun.
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, seed, params, started_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var params, started string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Seed, &params, &started); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &rec.Params); err != nil {
			return nil, fmt.Errorf("run %d: failed to decode params: %w", rec.ID, err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("run %d: failed to parse start time: %w", rec.ID, err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Counts returns the log of one run ordered by tick.
func (s *SQLiteStore) Counts(ctx context.Context, runID int64) ([]virnet.Counts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, infected, resistant, susceptible FROM counts WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	var log []virnet.Counts
	for rows.Next() {
		var c virnet.Counts
		if err := rows.Scan(&c.Tick, &c.Infected, &c.Resistant, &c.Susceptible); err != nil {
			return nil, fmt.Errorf("failed to scan counts: %w", err)
		}
		log = append(log, c)
	}
	return log, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.insertCounts != nil {
		s.insertCounts.Close()
	}
	return s.db.Close()
}
