// Package store persists the dashboard's reconciled state in an embedded
// SQLite database: clients, users, role assignments, the vendor systems
// catalog, run history, and integration settings.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// walJournalSizeLimit caps the WAL journal at 64 MiB.
const walJournalSizeLimit = 67108864

// Store wraps the SQLite database with prepared statements for the hot
// reconciliation paths. Colder queries (catalog listing, run history) go
// through the connection directly.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	clientStmts     clientStatements
	assignmentStmts assignmentStatements
	systemStmts     systemStatements
	settingStmts    settingStatements
}

type clientStatements struct {
	getByExternalID, insert, update, legacyNames, trustCenter *sql.Stmt
}

type assignmentStatements struct {
	deleteForClient, insert, listForClient *sql.Stmt
}

type systemStatements struct {
	link, listForClient *sql.Stmt
}

type settingStatements struct {
	get, set *sql.Stmt
}

// NewStore opens the database at dbPath, applies migrations, and prepares
// the repeated statements. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("opening dashboard database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if err := setPragmas(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, logger: logger}

	if err := s.prepareAllStatements(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: prepare statements: %w", err)
	}

	logger.Info("dashboard database ready", "path", dbPath)

	return s, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = FULL", "synchronous FULL"},
		{"PRAGMA foreign_keys = ON", "foreign keys"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("store: set pragma %s: %w", p.desc, err)
		}

		logger.Debug("pragma set", "pragma", p.desc)
	}

	return nil
}

// runMigrations applies all pending schema migrations to the database.
// Uses the goose v3 Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	// Strip the "migrations/" prefix so goose sees files at the root of the FS.
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("store: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// nowNano returns the current time as Unix nanoseconds, the timestamp
// representation used across all tables.
func nowNano() int64 {
	return time.Now().UnixNano()
}

// --- SQL query constants ---

// Client queries.
const (
	sqlClientColumns = `id, external_id, name, status, priority, review_cadence,
		website, frameworks, onboarded_at,
		se_name, primary_name, secondary_name, compliance_name,
		trust_center_url, trust_center_platform,
		last_synced_at, created_at, updated_at`

	sqlGetClientByExternalID = `SELECT ` + sqlClientColumns +
		` FROM clients WHERE external_id = ?`

	sqlInsertClient = `INSERT INTO clients
		(external_id, name, status, priority, review_cadence, website,
		 frameworks, onboarded_at, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqlUpdateClient = `UPDATE clients SET
		name = ?, status = ?, priority = ?, review_cadence = ?, website = ?,
		frameworks = ?, onboarded_at = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ?`

	sqlUpdateLegacyNames = `UPDATE clients SET
		se_name = ?, primary_name = ?, secondary_name = ?, compliance_name = ?,
		updated_at = ?
		WHERE id = ?`

	sqlUpdateTrustCenter = `UPDATE clients SET
		trust_center_url = ?, trust_center_platform = ?, updated_at = ?
		WHERE id = ?`
)

// Assignment queries.
const (
	sqlDeleteAssignments = `DELETE FROM assignments WHERE client_id = ?`

	sqlInsertAssignment = `INSERT INTO assignments (client_id, user_id, role)
		VALUES (?, ?, ?)`

	sqlListAssignments = `SELECT client_id, user_id, role FROM assignments
		WHERE client_id = ? ORDER BY role, user_id`
)

// System link queries.
const (
	sqlLinkSystem = `INSERT OR IGNORE INTO client_systems
		(client_id, system_id, linked_at) VALUES (?, ?, ?)`

	sqlListClientSystems = `SELECT s.id, s.name, s.category
		FROM systems s JOIN client_systems cs ON cs.system_id = s.id
		WHERE cs.client_id = ? ORDER BY s.name`
)

// Integration settings queries.
const (
	sqlGetSetting = `SELECT value FROM integration_settings WHERE key = ?`

	sqlSetSetting = `INSERT INTO integration_settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// stmtDef maps a SQL string to the prepared statement pointer it should
// populate. Used by the generic prepare helper to eliminate repetitive
// error handling.
type stmtDef struct {
	dest **sql.Stmt
	sql  string
	name string
}

// prepareAll prepares a batch of statements, returning on first error.
func prepareAll(ctx context.Context, db *sql.DB, defs []stmtDef) error {
	for i := range defs {
		stmt, err := db.PrepareContext(ctx, defs[i].sql)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", defs[i].name, err)
		}

		*defs[i].dest = stmt
	}

	return nil
}

func (s *Store) prepareAllStatements(ctx context.Context) error {
	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.clientStmts.getByExternalID, sqlGetClientByExternalID, "getClientByExternalID"},
		{&s.clientStmts.insert, sqlInsertClient, "insertClient"},
		{&s.clientStmts.update, sqlUpdateClient, "updateClient"},
		{&s.clientStmts.legacyNames, sqlUpdateLegacyNames, "updateLegacyNames"},
		{&s.clientStmts.trustCenter, sqlUpdateTrustCenter, "updateTrustCenter"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.assignmentStmts.deleteForClient, sqlDeleteAssignments, "deleteAssignments"},
		{&s.assignmentStmts.insert, sqlInsertAssignment, "insertAssignment"},
		{&s.assignmentStmts.listForClient, sqlListAssignments, "listAssignments"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.systemStmts.link, sqlLinkSystem, "linkSystem"},
		{&s.systemStmts.listForClient, sqlListClientSystems, "listClientSystems"},
	}); err != nil {
		return err
	}

	return prepareAll(ctx, s.db, []stmtDef{
		{&s.settingStmts.get, sqlGetSetting, "getSetting"},
		{&s.settingStmts.set, sqlSetSetting, "setSetting"},
	})
}

// Close closes all prepared statements and the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing dashboard database")

	if err := s.closeStatements(); err != nil {
		s.logger.Error("error closing statements", "error", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close database: %w", err)
	}

	return nil
}

func (s *Store) closeStatements() error {
	stmts := []*sql.Stmt{
		s.clientStmts.getByExternalID, s.clientStmts.insert, s.clientStmts.update,
		s.clientStmts.legacyNames, s.clientStmts.trustCenter,
		s.assignmentStmts.deleteForClient, s.assignmentStmts.insert,
		s.assignmentStmts.listForClient,
		s.systemStmts.link, s.systemStmts.listForClient,
		s.settingStmts.get, s.settingStmts.set,
	}

	var errs []string

	for _, stmt := range stmts {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close statements: %s", strings.Join(errs, "; "))
	}

	return nil
}
