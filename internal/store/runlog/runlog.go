// Package runlog persists batch comparison runs to SQLite so past
// rankings can be reviewed. It stores derived results only, never
// fetched content.
package runlog

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"redditscout/internal/model"
)

// DB wraps the SQLite run history store.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  depth TEXT NOT NULL,
	  metric TEXT NOT NULL,
	  incomplete INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
	CREATE TABLE IF NOT EXISTS run_users (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  run_id INTEGER NOT NULL REFERENCES runs(id),
	  rank INTEGER NOT NULL,
	  username TEXT NOT NULL,
	  status TEXT NOT NULL,
	  influence REAL NOT NULL,
	  expertise REAL NOT NULL,
	  activity REAL NOT NULL,
	  composite REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_users_run ON run_users(run_id);
	`)
	return err
}

// Record stores one comparison run with its per-user rows.
func (d *DB) Record(ctx context.Context, at time.Time, res model.ComparisonResult) (int64, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	incomplete := 0
	if res.Incomplete {
		incomplete = 1
	}
	r, err := tx.ExecContext(ctx, `INSERT INTO runs(ts, depth, metric, incomplete) VALUES(?,?,?,?)`,
		at.Unix(), res.Depth, res.Metric, incomplete)
	if err != nil {
		return 0, err
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, u := range res.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_users(run_id, rank, username, status, influence, expertise, activity, composite)
			 VALUES(?,?,?,?,?,?,?,?)`,
			runID, u.Rank, u.Username, string(u.Status),
			u.Metrics.InfluenceScore, u.Metrics.ExpertiseSignal, u.Metrics.ActivityRate, u.Composite); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// Run is a stored comparison run header.
type Run struct {
	ID         int64
	TS         time.Time
	Depth      string
	Metric     string
	Incomplete bool
	Users      []RunUser
}

// RunUser is one stored ranking row.
type RunUser struct {
	Rank      int
	Username  string
	Status    string
	Influence float64
	Expertise float64
	Activity  float64
	Composite float64
}

// Recent returns the latest runs with their user rows, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, ts, depth, metric, incomplete FROM runs ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		var inc int
		if err := rows.Scan(&r.ID, &ts, &r.Depth, &r.Metric, &inc); err != nil {
			return nil, err
		}
		r.TS = time.Unix(ts, 0).UTC()
		r.Incomplete = inc != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		users, err := d.runUsers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Users = users
	}
	return out, nil
}

func (d *DB) runUsers(ctx context.Context, runID int64) ([]RunUser, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT rank, username, status, influence, expertise, activity, composite
		 FROM run_users WHERE run_id=? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunUser
	for rows.Next() {
		var u RunUser
		if err := rows.Scan(&u.Rank, &u.Username, &u.Status, &u.Influence, &u.Expertise, &u.Activity, &u.Composite); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
