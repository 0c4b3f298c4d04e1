package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Output kinds.
const (
	KindCameraLabel  = "camera_label"
	KindLidarBEV     = "lidar_bev"
	KindRadarScatter = "radar_scatter"
	KindRadarHeatmap = "radar_heatmap"
	KindRadarHTML    = "radar_html"
)

// Output statuses.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// ErrUnknownRun is returned when a run ID is not in the ledger.
var ErrUnknownRun = errors.New("unknown run")

// Ledger is a handle on the run database. It is safe for concurrent use.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the ledger at path and migrates it to the
// latest schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	// One connection keeps PRAGMAs in force and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	l := &Ledger{db: db, now: time.Now}
	if err := l.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Run is one invocation of the pipeline.
type Run struct {
	ID         string
	Version    string
	Started    time.Time
	Finished   time.Time // zero while the run is in progress
	ConfigJSON string
}

// StartRun records a new run and returns it.
func (l *Ledger) StartRun(ctx context.Context, version string, configJSON []byte) (*Run, error) {
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}
	r := &Run{
		ID:         uuid.NewString(),
		Version:    version,
		Started:    l.now(),
		ConfigJSON: string(configJSON),
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO prep_runs (run_id, version, started, config_json) VALUES (?, ?, ?, ?)`,
		r.ID, r.Version, r.Started.UnixNano(), r.ConfigJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return r, nil
}

// FinishRun stamps the run's finish time.
func (l *Ledger) FinishRun(ctx context.Context, runID string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE prep_runs SET finished = ? WHERE run_id = ?`, l.now().UnixNano(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

func scanRun(row interface{ Scan(...interface{}) error }) (*Run, error) {
	var (
		r        Run
		started  int64
		finished sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Version, &started, &finished, &r.ConfigJSON); err != nil {
		return nil, err
	}
	r.Started = time.Unix(0, started)
	if finished.Valid {
		r.Finished = time.Unix(0, finished.Int64)
	}
	return &r, nil
}

// GetRun looks up a run by ID.
func (l *Ledger) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT run_id, version, started, finished, config_json FROM prep_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	return r, nil
}

// Runs lists the most recent runs first. limit <= 0 lists all.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, version, started, finished, config_json FROM prep_runs
		 ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Output is the ledger row for one produced file.
type Output struct {
	Kind   string
	Key    string
	RunID  string
	Path   string
	Items  int
	Status string
	Detail string
}

// RecordOutput inserts or replaces the row for (o.Kind, o.Key).
func (l *Ledger) RecordOutput(ctx context.Context, o Output) error {
	if o.Kind == "" || o.Key == "" {
		return fmt.Errorf("output needs kind and key, got %q/%q", o.Kind, o.Key)
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO prep_outputs (kind, key, run_id, path, items, status, detail, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET
			run_id  = excluded.run_id,
			path    = excluded.path,
			items   = excluded.items,
			status  = excluded.status,
			detail  = excluded.detail,
			updated = excluded.updated`,
		o.Kind, o.Key, o.RunID, o.Path, o.Items, o.Status, o.Detail, l.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record output %s/%s: %w", o.Kind, o.Key, err)
	}
	return nil
}

// Outputs lists the outputs last written by a run, ordered by kind and key.
func (l *Ledger) Outputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT kind, key, run_id, path, items, status, detail
		FROM prep_outputs WHERE run_id = ? ORDER BY kind, key`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	defer rows.Close()

	var out []Output
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.Kind, &o.Key, &o.RunID, &o.Path, &o.Items, &o.Status, &o.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Summary aggregates a run's outputs by kind and status.
type Summary struct {
	Kind   string
	Status string
	Files  int
	Items  int
}

// Summarize groups a run's outputs by kind and status.
func (l *Ledger) Summarize(ctx context.Context, runID string) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT kind, status, COUNT(*), COALESCE(SUM(items), 0)
		FROM prep_outputs WHERE run_id = ?
		GROUP BY kind, status ORDER BY kind, status`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize run: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Kind, &s.Status, &s.Files, &s.Items); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
