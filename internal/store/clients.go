package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// scanClient scans a full client row. Used by every client-returning query
// to avoid duplicated column scanning.
func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	c := &Client{}

	var (
		externalID  sql.NullString
		frameworks  string
		onboardedAt sql.NullInt64
		lastSynced  sql.NullInt64
	)

	err := row.Scan(
		&c.ID, &externalID, &c.Name, &c.Status, &c.Priority, &c.ReviewCadence,
		&c.Website, &frameworks, &onboardedAt,
		&c.SEName, &c.PrimaryName, &c.SecondaryName, &c.ComplianceName,
		&c.TrustCenterURL, &c.TrustCenterPlatform,
		&lastSynced, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ExternalID = externalID.String
	c.OnboardedAt = onboardedAt.Int64
	c.LastSyncedAt = lastSynced.Int64

	if err := json.Unmarshal([]byte(frameworks), &c.Frameworks); err != nil {
		return nil, fmt.Errorf("decode frameworks for client %d: %w", c.ID, err)
	}

	return c, nil
}

// GetClientByExternalID returns the client synced from the given external
// record id. Returns (nil, nil) when no client exists — the upsert path
// uses the nil client to distinguish "create" from "update".
func (s *Store) GetClientByExternalID(ctx context.Context, externalID string) (*Client, error) {
	s.logger.Debug("getting client", "external_id", externalID)

	c, err := scanClient(s.clientStmts.getByExternalID.QueryRowContext(ctx, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("store: get client %s: %w", externalID, err)
	}

	return c, nil
}

// UpsertClient creates or updates the client keyed by externalID. The
// external id is the sole merge key: an existing client is updated in
// place and keeps its local id. Returns the stored client and whether it
// was created. Safe to call repeatedly with identical input.
func (s *Store) UpsertClient(ctx context.Context, externalID string, f ClientFields) (*Client, bool, error) {
	if externalID == "" {
		return nil, false, fmt.Errorf("store: upsert client: external id is empty")
	}

	frameworks, err := json.Marshal(emptyToSlice(f.Frameworks))
	if err != nil {
		return nil, false, fmt.Errorf("store: encode frameworks: %w", err)
	}

	now := nowNano()

	existing, err := s.GetClientByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		_, err := s.clientStmts.update.ExecContext(ctx,
			f.Name, f.Status, f.Priority, f.ReviewCadence, f.Website,
			string(frameworks), f.OnboardedAt, now, now, existing.ID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("store: update client %s: %w", externalID, err)
		}

		s.logger.Debug("updated client", "external_id", externalID, "client_id", existing.ID)

		updated := *existing
		updated.Name = f.Name
		updated.Status = f.Status
		updated.Priority = f.Priority
		updated.ReviewCadence = f.ReviewCadence
		updated.Website = f.Website
		updated.Frameworks = emptyToSlice(f.Frameworks)
		updated.OnboardedAt = f.OnboardedAt
		updated.LastSyncedAt = now
		updated.UpdatedAt = now

		return &updated, false, nil
	}

	res, err := s.clientStmts.insert.ExecContext(ctx,
		externalID, f.Name, f.Status, f.Priority, f.ReviewCadence, f.Website,
		string(frameworks), f.OnboardedAt, now, now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("store: insert client %s: %w", externalID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("store: insert client %s: reading id: %w", externalID, err)
	}

	s.logger.Debug("created client", "external_id", externalID, "client_id", id)

	return &Client{
		ID:            id,
		ExternalID:    externalID,
		Name:          f.Name,
		Status:        f.Status,
		Priority:      f.Priority,
		ReviewCadence: f.ReviewCadence,
		Website:       f.Website,
		Frameworks:    emptyToSlice(f.Frameworks),
		OnboardedAt:   f.OnboardedAt,
		LastSyncedAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, true, nil
}

// UpdateLegacyRoleNames writes the backward-compatibility singular pointer
// fields onto a client. Consumers that predate the assignments table still
// read these columns.
func (s *Store) UpdateLegacyRoleNames(ctx context.Context, clientID int64, se, primary, secondary, compliance string) error {
	s.logger.Debug("updating legacy role names", "client_id", clientID)

	_, err := s.clientStmts.legacyNames.ExecContext(ctx, se, primary, secondary, compliance, nowNano(), clientID)
	if err != nil {
		return fmt.Errorf("store: update legacy names for client %d: %w", clientID, err)
	}

	return nil
}

// UpdateTrustCenter writes the enrichment result onto a client.
func (s *Store) UpdateTrustCenter(ctx context.Context, clientID int64, url, platform string) error {
	s.logger.Debug("updating trust center", "client_id", clientID, "url", url)

	_, err := s.clientStmts.trustCenter.ExecContext(ctx, url, platform, nowNano(), clientID)
	if err != nil {
		return fmt.Errorf("store: update trust center for client %d: %w", clientID, err)
	}

	return nil
}

// CountClients returns the number of client rows.
func (s *Store) CountClients(ctx context.Context) (int, error) {
	var n int

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count clients: %w", err)
	}

	return n, nil
}

// emptyToSlice normalizes a nil slice to an empty one so frameworks always
// serialize as a JSON array.
func emptyToSlice(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
