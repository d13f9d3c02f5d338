package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys persisted by the dashboard's integration settings screen.
// Values here take precedence over environment and file configuration.
const (
	SettingDirectoryToken     = "directory.token" //nolint:gosec // setting key, not a credential
	SettingClientsCollection  = "directory.clients_collection"
	SettingContactsCollection = "directory.contacts_collection"
	SettingVendorsCollection  = "directory.vendors_collection"
)

// GetSetting returns a persisted integration setting, or empty string
// when the key has never been set.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.logger.Debug("getting setting", "key", key)

	var value string

	err := s.settingStmts.get.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("store: get setting %q: %w", key, err)
	}

	return value, nil
}

// SetSetting persists an integration setting (insert or update).
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.logger.Debug("setting", "key", key)

	if _, err := s.settingStmts.set.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("store: set setting %q: %w", key, err)
	}

	return nil
}
