package store

import (
	"context"
	"fmt"
)

// ListUsers returns every local user in ascending id order. The engine
// loads this once per run; resolution tie-breaks rely on the stable order.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	s.logger.Debug("listing users")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, directory_name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var users []*User

	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.DirectoryName, &u.Email); err != nil {
			return nil, fmt.Errorf("store: scan user row: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate user rows: %w", err)
	}

	return users, nil
}

// InsertUser adds a local user. User accounts are owned by the dashboard;
// this exists for it (and for test fixtures), never for the sync engine.
func (s *Store) InsertUser(ctx context.Context, displayName, directoryName, email string) (int64, error) {
	s.logger.Debug("inserting user", "display_name", displayName)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (display_name, directory_name, email) VALUES (?, ?, ?)`,
		displayName, directoryName, email)
	if err != nil {
		return 0, fmt.Errorf("store: insert user %s: %w", displayName, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert user %s: reading id: %w", displayName, err)
	}

	return id, nil
}
