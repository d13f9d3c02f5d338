package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SaveRun persists one sync run summary.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	s.logger.Debug("saving run", "run_id", run.ID)

	errsJSON, err := json.Marshal(emptyToSlice(run.Errors))
	if err != nil {
		return fmt.Errorf("store: encode run errors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sync_runs
		 (id, started_at, finished_at, seen, created, updated, systems_linked, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt,
		run.Seen, run.Created, run.Updated, run.SystemsLinked, string(errsJSON),
	)
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", run.ID, err)
	}

	return nil
}

// LatestRun returns the most recent run summary, or (nil, nil) when no
// run has happened yet.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	s.logger.Debug("getting latest run")

	run := &Run{}

	var errsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, seen, created, updated, systems_linked, errors
		 FROM sync_runs ORDER BY started_at DESC LIMIT 1`).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.Seen, &run.Created, &run.Updated, &run.SystemsLinked, &errsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("store: get latest run: %w", err)
	}

	if err := json.Unmarshal([]byte(errsJSON), &run.Errors); err != nil {
		return nil, fmt.Errorf("store: decode run errors: %w", err)
	}

	return run, nil
}
