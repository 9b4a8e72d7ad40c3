// Package history persists run outcomes to a local SQLite database, so a
// machine's benchmark history survives across invocations and can be
// compared over time.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	difficulty TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP NOT NULL,
	passed     INTEGER NOT NULL,
	total      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS job_results (
	run_id           TEXT NOT NULL REFERENCES runs(run_id),
	name             TEXT NOT NULL,
	duration_seconds REAL,
	success          INTEGER NOT NULL,
	exit_code        INTEGER NOT NULL,
	expected_seconds REAL NOT NULL,
	artifact         TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, name)
);
`

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// RunSummary is one historical run as listed by RecentRuns.
type RunSummary struct {
	RunID      string
	Difficulty string
	StartedAt  time.Time
	EndedAt    time.Time
	Passed     int
	Total      int
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun persists a finished run and all its job results atomically.
func (s *Store) RecordRun(rep *bench.RunReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	passed, total := rep.Passed()
	_, err = tx.Exec(`
		INSERT INTO runs (run_id, difficulty, started_at, ended_at, passed, total)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rep.RunID,
		bench.DifficultyLabel(rep.Order),
		rep.Start,
		rep.End,
		passed,
		total,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("recording run: %w", err)
	}

	for _, name := range rep.Order {
		res, ok := rep.Results[name]
		if !ok {
			continue
		}

		var duration any
		if res.Measured {
			duration = res.Duration.Seconds()
		}

		_, err = tx.Exec(`
			INSERT INTO job_results (run_id, name, duration_seconds, success, exit_code, expected_seconds, artifact)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rep.RunID,
			res.Name,
			duration,
			res.Success,
			res.ExitCode,
			res.Expected.Seconds(),
			res.Artifact,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("recording job result %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT run_id, difficulty, started_at, ended_at, passed, total
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Difficulty, &r.StartedAt, &r.EndedAt, &r.Passed, &r.Total); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// JobResults returns the stored job results of a run in insertion order.
func (s *Store) JobResults(runID string) ([]bench.JobResult, error) {
	rows, err := s.db.Query(`
		SELECT name, duration_seconds, success, exit_code, expected_seconds, artifact
		FROM job_results
		WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []bench.JobResult
	for rows.Next() {
		var (
			res      bench.JobResult
			duration sql.NullFloat64
			expected float64
		)
		if err := rows.Scan(&res.Name, &duration, &res.Success, &res.ExitCode, &expected, &res.Artifact); err != nil {
			return nil, err
		}
		if duration.Valid {
			res.Measured = true
			res.Duration = time.Duration(duration.Float64 * float64(time.Second))
		}
		res.Expected = time.Duration(expected * float64(time.Second))
		results = append(results, res)
	}
	return results, rows.Err()
}
