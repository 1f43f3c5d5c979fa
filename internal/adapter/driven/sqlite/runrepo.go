package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Record persists one run and its sources in a single transaction.
func (r *RunRepo) Record(ctx context.Context, run model.SyncRun) (int64, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback()

	const insertRun = `
		INSERT INTO sync_runs (target_file, status, error, directive_count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insertRun,
		run.TargetFile,
		string(run.Status),
		run.Error,
		run.Directives,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert sync run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sync run id: %w", err)
	}

	const insertSource = `
		INSERT INTO sync_run_sources (run_id, locator, branch, filename)
		VALUES (?, ?, ?, ?)`
	for _, src := range run.Sources {
		if _, err := tx.ExecContext(ctx, insertSource, id, src.Locator, src.Branch, src.Filename); err != nil {
			return 0, fmt.Errorf("insert sync run source: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first, with their sources.
func (r *RunRepo) List(ctx context.Context, limit int) ([]model.SyncRun, error) {
	query := `
		SELECT id, target_file, status, error, directive_count, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var run model.SyncRun
		var status, startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.TargetFile, &status, &run.Error, &run.Directives, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		run.Status = model.RunStatus(status)

		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}

	for i := range runs {
		if runs[i].Sources, err = r.listSources(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// listSources returns the sources recorded for one run.
func (r *RunRepo) listSources(ctx context.Context, runID int64) ([]model.SyncSource, error) {
	const query = `
		SELECT locator, branch, filename FROM sync_run_sources
		WHERE run_id = ? ORDER BY id`
	rows, err := r.db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list sources for run %d: %w", runID, err)
	}
	defer rows.Close()

	var sources []model.SyncSource
	for rows.Next() {
		var src model.SyncSource
		if err := rows.Scan(&src.Locator, &src.Branch, &src.Filename); err != nil {
			return nil, fmt.Errorf("scan source for run %d: %w", runID, err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources for run %d: %w", runID, err)
	}

	return sources, nil
}

// parseTime tries the datetime formats SQLite may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
