package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Migration represents one schema version
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. Append only; never edit an
// applied entry.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_claims",
		SQL: `
			CREATE TABLE IF NOT EXISTS claims (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				lecturer_name TEXT NOT NULL,
				hours_worked TEXT NOT NULL,
				hourly_rate TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				claim_month INTEGER NOT NULL CHECK (claim_month BETWEEN 1 AND 12),
				claim_year INTEGER NOT NULL,
				submission_date DATETIME NOT NULL,
				submitted_at DATETIME NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING',
				verified_by TEXT,
				verified_at DATETIME,
				verification_comments TEXT,
				approved_by TEXT,
				approved_at DATETIME,
				approval_comments TEXT,
				rejected_by TEXT,
				rejected_at DATETIME,
				rejection_reason TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_claims_lecturer ON claims(lecturer_name);
			CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
			CREATE INDEX IF NOT EXISTS idx_claims_period ON claims(lecturer_name, claim_year, claim_month);
		`,
	},
	{
		Version: 2,
		Name:    "create_documents",
		SQL: `
			CREATE TABLE IF NOT EXISTS documents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				claim_id INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
				file_name TEXT NOT NULL,
				file_path TEXT NOT NULL,
				file_size INTEGER NOT NULL DEFAULT 0,
				mime_type TEXT NOT NULL DEFAULT '',
				uploaded_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_documents_claim ON documents(claim_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_claim_history",
		SQL: `
			CREATE TABLE IF NOT EXISTS claim_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				claim_id INTEGER NOT NULL REFERENCES claims(id),
				status TEXT NOT NULL,
				changed_by TEXT NOT NULL,
				comments TEXT NOT NULL DEFAULT '',
				action TEXT NOT NULL,
				changed_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_history_claim ON claim_history(claim_id, changed_at, id);
		`,
	},
}

// Migrator applies pending schema versions
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// Run applies all pending migrations in order
func (m *Migrator) Run() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := m.apply(migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}
		m.logger.Info("Applied migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))
	}
	return nil
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(migration.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		migration.Version, migration.Name,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
