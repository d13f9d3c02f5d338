package store

import (
	"context"
	"fmt"
)

// ReplaceAssignments swaps the stored assignment set for a client with the
// given set, atomically. Delete-then-insert in one transaction: after a
// sync the rows equal exactly what the current external record implies,
// with nothing accumulated from earlier runs. Callers pass a deduplicated
// set; the composite primary key backstops them.
func (s *Store) ReplaceAssignments(ctx context.Context, clientID int64, assignments []Assignment) error {
	s.logger.Debug("replacing assignments", "client_id", clientID, "count", len(assignments))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin assignment tx: %w", err)
	}

	if _, execErr := tx.StmtContext(ctx, s.assignmentStmts.deleteForClient).ExecContext(ctx, clientID); execErr != nil {
		rollbackErr := tx.Rollback()
		return fmt.Errorf("store: delete assignments for client %d: %w (rollback: %v)", clientID, execErr, rollbackErr)
	}

	insert := tx.StmtContext(ctx, s.assignmentStmts.insert)

	for _, a := range assignments {
		if _, execErr := insert.ExecContext(ctx, clientID, a.UserID, string(a.Role)); execErr != nil {
			rollbackErr := tx.Rollback()
			return fmt.Errorf("store: insert assignment (%d, %d, %s): %w (rollback: %v)",
				clientID, a.UserID, a.Role, execErr, rollbackErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit assignments for client %d: %w", clientID, err)
	}

	return nil
}

// ListAssignments returns a client's assignment rows ordered by role then
// user id.
func (s *Store) ListAssignments(ctx context.Context, clientID int64) ([]Assignment, error) {
	s.logger.Debug("listing assignments", "client_id", clientID)

	rows, err := s.assignmentStmts.listForClient.QueryContext(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("store: list assignments for client %d: %w", clientID, err)
	}
	defer rows.Close()

	var out []Assignment

	for rows.Next() {
		var a Assignment

		var role string

		if err := rows.Scan(&a.ClientID, &a.UserID, &role); err != nil {
			return nil, fmt.Errorf("store: scan assignment row: %w", err)
		}

		a.Role = Role(role)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate assignment rows: %w", err)
	}

	return out, nil
}

// AssignmentCounts returns the number of assignments per role across all
// clients. The dashboard's team views read this through the cache layer.
func (s *Store) AssignmentCounts(ctx context.Context) (map[Role]int, error) {
	s.logger.Debug("counting assignments by role")

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, COUNT(*) FROM assignments GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("store: count assignments: %w", err)
	}
	defer rows.Close()

	counts := make(map[Role]int)

	for rows.Next() {
		var role string

		var n int

		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("store: scan assignment count row: %w", err)
		}

		counts[Role(role)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate assignment count rows: %w", err)
	}

	return counts, nil
}
