package store

import (
	"context"
	"fmt"
)

// ListSystems returns the full vendor catalog ordered by name.
func (s *Store) ListSystems(ctx context.Context) ([]*System, error) {
	s.logger.Debug("listing systems")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category FROM systems ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list systems: %w", err)
	}
	defer rows.Close()

	var systems []*System

	for rows.Next() {
		sys := &System{}
		if err := rows.Scan(&sys.ID, &sys.Name, &sys.Category); err != nil {
			return nil, fmt.Errorf("store: scan system row: %w", err)
		}

		systems = append(systems, sys)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate system rows: %w", err)
	}

	return systems, nil
}

// InsertSystem adds a vendor catalog entry. The catalog is owned by the
// dashboard; this exists for it and for test fixtures.
func (s *Store) InsertSystem(ctx context.Context, name, category string) (int64, error) {
	s.logger.Debug("inserting system", "name", name)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO systems (name, category) VALUES (?, ?)`, name, category)
	if err != nil {
		return 0, fmt.Errorf("store: insert system %s: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert system %s: reading id: %w", name, err)
	}

	return id, nil
}

// LinkSystem records that a client uses a catalog system. Links are
// additive and idempotent: relinking an existing pair is a no-op.
// Returns whether a new link was created.
func (s *Store) LinkSystem(ctx context.Context, clientID, systemID int64) (bool, error) {
	s.logger.Debug("linking system", "client_id", clientID, "system_id", systemID)

	res, err := s.systemStmts.link.ExecContext(ctx, clientID, systemID, nowNano())
	if err != nil {
		return false, fmt.Errorf("store: link system %d to client %d: %w", systemID, clientID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: link system %d to client %d: rows affected: %w", systemID, clientID, err)
	}

	return affected > 0, nil
}

// ListClientSystems returns the catalog systems linked to a client.
func (s *Store) ListClientSystems(ctx context.Context, clientID int64) ([]*System, error) {
	s.logger.Debug("listing client systems", "client_id", clientID)

	rows, err := s.systemStmts.listForClient.QueryContext(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("store: list systems for client %d: %w", clientID, err)
	}
	defer rows.Close()

	var systems []*System

	for rows.Next() {
		sys := &System{}
		if err := rows.Scan(&sys.ID, &sys.Name, &sys.Category); err != nil {
			return nil, fmt.Errorf("store: scan client system row: %w", err)
		}

		systems = append(systems, sys)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate client system rows: %w", err)
	}

	return systems, nil
}
