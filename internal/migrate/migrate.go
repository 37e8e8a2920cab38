package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/migrations"
)

// ErrDirty is returned when a previous migration failed half way.
var ErrDirty = errors.New("database is in dirty state")

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Status pairs a migration with whether it has been applied.
type Status struct {
	Migration
	Applied bool
}

// Migrator applies the embedded migrations to a database.
type Migrator struct {
	db     *sql.DB
	source fs.FS
	logger *zap.Logger
}

// New creates a Migrator reading the embedded migration files.
func New(db *sql.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, source: migrations.FS, logger: logger}
}

// WithSource replaces the migration file system. Used by tests.
func (m *Migrator) WithSource(source fs.FS) *Migrator {
	m.source = source
	return m
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func (m *Migrator) EnsureMigrationsTable(ctx context.Context) error {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pragma_table_info('schema_migrations') WHERE name = 'dirty'
	`).Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	if err == nil {
		// Legacy table without the dirty column.
		if _, err := m.db.ExecContext(ctx, `DROP TABLE IF EXISTS schema_migrations`); err != nil {
			return err
		}
	}

	_, err = m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// GetCurrentVersion returns the current migration version and dirty state.
func (m *Migrator) GetCurrentVersion(ctx context.Context) (int, bool, error) {
	var version, dirty int

	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty == 1, nil
}

// SetVersion records the migration version and dirty state.
func (m *Migrator) SetVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}

	if version <= 0 {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// LoadMigrations reads all migration files and returns them sorted by version.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	var result []Migration
	seen := make(map[int]string)

	err := fs.WalkDir(m.source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]
		if other, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %d: %s and %s", version, other, name)
		}
		seen[version] = name

		upSQL, err := fs.ReadFile(m.source, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		downPath := path.Join(path.Dir(p), fmt.Sprintf("%s_%s.down.sql", matches[1], name))
		downSQL, err := fs.ReadFile(m.source, downPath)
		if err != nil {
			downSQL = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// RunMigration executes a single migration (up or down) inside a transaction.
// The dirty flag stays set if any statement fails.
func (m *Migrator) RunMigration(ctx context.Context, mig Migration, up bool) error {
	direction := "up"
	sqlContent := mig.UpSQL
	targetVersion := mig.Version
	if !up {
		direction = "down"
		sqlContent = mig.DownSQL
		targetVersion = mig.Version - 1
	}

	m.logger.Info("applying migration",
		zap.String("direction", direction),
		zap.Int("version", mig.Version),
		zap.String("name", mig.Name))

	if err := m.SetVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", mig.Version, err)
	}
	for _, stmt := range SplitSQL(sqlContent) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", mig.Version, direction, err, stmt)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d %s: %w", mig.Version, direction, err)
	}

	if err := m.SetVersion(ctx, targetVersion, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a migration file into statements. Line comments are dropped
// and the split is on semicolons, so statements must not embed them.
func SplitSQL(content string) []string {
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// MigrateUp runs all pending up migrations and reports how many were applied.
func (m *Migrator) MigrateUp(ctx context.Context, all []Migration, currentVersion int) (int, error) {
	count := 0
	for _, mig := range all {
		if mig.Version <= currentVersion {
			continue
		}
		if err := m.RunMigration(ctx, mig, true); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// MigrateUpTo runs up migrations to a specific version.
func (m *Migrator) MigrateUpTo(ctx context.Context, all []Migration, currentVersion, targetVersion int) error {
	for _, mig := range all {
		if mig.Version <= currentVersion {
			continue
		}
		if mig.Version > targetVersion {
			break
		}
		if err := m.RunMigration(ctx, mig, true); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDownTo runs down migrations to a specific version.
func (m *Migrator) MigrateDownTo(ctx context.Context, all []Migration, currentVersion, targetVersion int) error {
	for i := len(all) - 1; i >= 0; i-- {
		mig := all[i]
		if mig.Version > currentVersion {
			continue
		}
		if mig.Version <= targetVersion {
			break
		}
		if mig.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", mig.Version)
		}
		if err := m.RunMigration(ctx, mig, false); err != nil {
			return err
		}
	}
	return nil
}

// prepare ensures the bookkeeping table exists, refuses dirty databases and
// loads the migration files.
func (m *Migrator) prepare(ctx context.Context) ([]Migration, int, error) {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, dirty, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return nil, currentVersion, fmt.Errorf("%w at version %d", ErrDirty, currentVersion)
	}

	all, err := m.LoadMigrations()
	if err != nil {
		return nil, currentVersion, fmt.Errorf("failed to load migrations: %w", err)
	}
	return all, currentVersion, nil
}

// Up runs all pending migrations and returns the resulting version.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	all, current, err := m.prepare(ctx)
	if err != nil {
		return current, err
	}

	applied, err := m.MigrateUp(ctx, all, current)
	if err != nil {
		return current, err
	}

	version, _, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return current, err
	}
	m.logger.Info("migrations complete", zap.Int("version", version), zap.Int("applied", applied))
	return version, nil
}

// To migrates up or down until the database is at targetVersion.
func (m *Migrator) To(ctx context.Context, targetVersion int) error {
	if targetVersion < 0 {
		return fmt.Errorf("invalid target version %d", targetVersion)
	}

	all, current, err := m.prepare(ctx)
	if err != nil {
		return err
	}

	switch {
	case targetVersion > current:
		if len(all) == 0 || all[len(all)-1].Version < targetVersion {
			return fmt.Errorf("unknown target version %d", targetVersion)
		}
		return m.MigrateUpTo(ctx, all, current, targetVersion)
	case targetVersion < current:
		return m.MigrateDownTo(ctx, all, current, targetVersion)
	default:
		m.logger.Info("already at target version", zap.Int("version", current))
		return nil
	}
}

// Status lists every known migration with whether it is applied.
func (m *Migrator) Status(ctx context.Context) ([]Status, int, error) {
	all, current, err := m.prepare(ctx)
	if err != nil {
		return nil, current, err
	}

	statuses := make([]Status, len(all))
	for i, mig := range all {
		statuses[i] = Status{Migration: mig, Applied: mig.Version <= current}
	}
	return statuses, current, nil
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	_, err := New(db, nil).Up(ctx)
	return err
}
