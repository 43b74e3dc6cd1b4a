// Package runlog keeps a local SQLite journal of conversion runs, so
// past runs can be listed and summarized from the CLI. The journal is
// bookkeeping only; it never holds CSS3.0 output data.
package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Entry is one recorded conversion run.
type Entry struct {
	ID        string
	Database  string
	OutputDir string
	Status    string
	Total     int
	Succeeded int
	Error     string
	StartedAt time.Time
	EndedAt   *time.Time
}

// Log provides read/write access to the run journal.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	return &Log{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	database_  TEXT NOT NULL,
	output_dir TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	total      INTEGER NOT NULL DEFAULT 0,
	succeeded  INTEGER NOT NULL DEFAULT 0,
	error      TEXT,
	started_at DATETIME NOT NULL,
	ended_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Migrate creates the journal schema.
func (l *Log) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "runlog: migrate")
}

// Close closes the journal.
func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a run and returns its id.
func (l *Log) Start(ctx context.Context, database, outputDir string) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, database_, output_dir, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, database, outputDir, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as finished with its segment tally.
func (l *Log) Complete(ctx context.Context, id string, total, succeeded int) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, total = ?, succeeded = ?, ended_at = ? WHERE id = ?`,
		StatusComplete, total, succeeded, time.Now().UTC(), id,
	)
	return eris.Wrapf(err, "runlog: complete run %s", id)
}

// Fail marks a run as failed with an error message and whatever tally
// was reached.
func (l *Log) Fail(ctx context.Context, id string, total, succeeded int, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, total = ?, succeeded = ?, error = ?, ended_at = ? WHERE id = ?`,
		StatusFailed, total, succeeded, errMsg, time.Now().UTC(), id,
	)
	return eris.Wrapf(err, "runlog: fail run %s", id)
}

// Stats is an aggregate view over the whole journal.
type Stats struct {
	Runs      int
	Complete  int
	Failed    int
	Running   int
	Total     int
	Succeeded int
}

// Stats aggregates run counts by status and segment tallies.
func (l *Log) Stats(ctx context.Context) (*Stats, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'complete' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(succeeded), 0)
		FROM runs`)
	var s Stats
	if err := row.Scan(&s.Runs, &s.Complete, &s.Failed, &s.Running, &s.Total, &s.Succeeded); err != nil {
		return nil, eris.Wrap(err, "runlog: stats")
	}
	return &s, nil
}

// List returns the most recent runs, newest first.
func (l *Log) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, database_, output_dir, status, total, succeeded, error, started_at, ended_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errStr *string
		var endedAt *time.Time
		if err := rows.Scan(&e.ID, &e.Database, &e.OutputDir, &e.Status,
			&e.Total, &e.Succeeded, &errStr, &e.StartedAt, &endedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		e.EndedAt = endedAt
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
