// Package migration applies the numbered SQL files under migrations/ and
// tracks the schema version in a one-row schema_version table.
package migration

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
	"time"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	Name string
	// Placeholder is the first bind parameter, "?" or "$1".
	Placeholder string
	// Lock, when set, runs first in every migration transaction so that
	// concurrent processes apply migrations one at a time.
	Lock string
}

var (
	DialectSQLite   = Dialect{Name: "sqlite", Placeholder: "?"}
	DialectPostgres = Dialect{
		Name:        "postgres",
		Placeholder: "$1",
		// arbitrary key shared by every habitlens process
		Lock: "SELECT pg_advisory_xact_lock(7215001)",
	}
)

// ErrOutdated is returned by Check when migrations are pending.
var ErrOutdated = errors.New("database schema is outdated")

// ErrTooNew is returned when the database was migrated by a newer build.
var ErrTooNew = errors.New("database schema is newer than this build supports")

var fileName = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_-]+)\.sql$`)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status compares the database against the available migrations
type Status struct {
	Current int
	Latest  int
	Pending []Migration
}

func (s Status) UpToDate() bool {
	return len(s.Pending) == 0
}

type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner reads NNN_name.sql files from the root of migrations
func NewRunner(db *sql.DB, migrations fs.FS, dialect Dialect) *Runner {
	return &Runner{db: db, fs: migrations, dialect: dialect}
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	return nil
}

// CurrentVersion returns the recorded schema version, 0 for a fresh database.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var v int
	err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// SetVersion records version without running any migration.
func (r *Runner) SetVersion(ctx context.Context, version int) error {
	if err := r.ensureVersionTable(ctx); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.writeVersion(ctx, tx, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Runner) writeVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.insertVersionSQL(), version); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", version, err)
	}
	return nil
}

func (r *Runner) insertVersionSQL() string {
	return "INSERT INTO schema_version (version) VALUES (" + r.dialect.Placeholder + ")"
}

// Migrations returns the migration files sorted by version.
func (r *Runner) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", e.Name())
		}
		version, err := strconv.Atoi(m[1])
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s", e.Name())
		}
		body, err := fs.ReadFile(r.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: m[2], SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

// Status reports the current version and the migrations still to run.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return Status{}, err
	}
	all, err := r.Migrations()
	if err != nil {
		return Status{}, err
	}

	st := Status{Current: current}
	if len(all) > 0 {
		st.Latest = all[len(all)-1].Version
	}
	if current > st.Latest {
		return st, fmt.Errorf("%w: version %d, supported %d; upgrade habitlens", ErrTooNew, current, st.Latest)
	}
	for _, m := range all {
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// Apply runs every pending migration, each in its own transaction together
// with the version bump. It returns how many were applied.
func (r *Runner) Apply(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}
	if st.UpToDate() {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", st.Current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating schema from version %d to %d", st.Current, st.Latest))
	start := time.Now()
	applied := 0
	for _, m := range st.Pending {
		ok, err := r.applyOne(ctx, m)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
			logFn(fmt.Sprintf("  ✓ %03d %s", m.Version, m.Name))
		}
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(start).Round(time.Millisecond)))
	return applied, nil
}

// applyOne runs m unless another process got there first while this one
// waited on the lock.
func (r *Runner) applyOne(ctx context.Context, m Migration) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if r.dialect.Lock != "" {
		if _, err := tx.ExecContext(ctx, r.dialect.Lock); err != nil {
			return false, fmt.Errorf("failed to lock for migration %d: %w", m.Version, err)
		}
		var current int
		err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("failed to read schema version: %w", err)
		}
		if current >= m.Version {
			return false, nil
		}
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if err := r.writeVersion(ctx, tx, m.Version); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return true, nil
}

// Check fails with ErrOutdated or ErrTooNew unless the schema matches the
// latest migration exactly.
func (r *Runner) Check(ctx context.Context) error {
	st, err := r.Status(ctx)
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("%w: version %d, required %d; run 'habitlens migrate'", ErrOutdated, st.Current, st.Latest)
	}
	return nil
}
