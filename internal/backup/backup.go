// Package backup keeps rotating snapshots of the SQLite journal.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/logger"
)

const (
	DirName     = "backups"
	filePrefix  = constants.AppName + "-"
	fileSuffix  = ".db"
	stampLayout = "20060102-150405"
)

// snapshot file names: habitlens-YYYYMMDD-HHMMSS[-N].db
var namePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(filePrefix) + `(\d{8}-\d{6})(?:-(\d+))?` + regexp.QuoteMeta(fileSuffix) + `$`)

// Snapshot describes one backup file
type Snapshot struct {
	Path      string
	Timestamp time.Time
	Seq       int
	Size      int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

type Option func(*Manager)

// WithKeep sets how many snapshots survive rotation
func WithKeep(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager manages snapshots of the database at dbPath in a "backups"
// directory next to it.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   constants.DefaultBackupKeep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and prunes the oldest beyond the keep limit.
func (m *Manager) Create() (Snapshot, error) {
	snap, err := m.create()
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return snap, nil
}

func (m *Manager) create() (Snapshot, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Snapshot{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := m.now().UTC().Truncate(time.Second)
	path, seq, err := m.freeName(stamp)
	if err != nil {
		return Snapshot{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Snapshot{}, fmt.Errorf("failed to back up database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	logger.Debug("Created backup", "path", path, "size", info.Size())
	return Snapshot{Path: path, Timestamp: stamp, Seq: seq, Size: info.Size()}, nil
}

// freeName finds an unused file name for stamp, numbering collisions.
func (m *Manager) freeName(stamp time.Time) (string, int, error) {
	base := filePrefix + stamp.Format(stampLayout)
	for seq := 0; seq <= 100; seq++ {
		name := base + fileSuffix
		if seq > 0 {
			name = base + "-" + strconv.Itoa(seq) + fileSuffix
		}
		path := filepath.Join(m.dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, seq, nil
		}
	}
	return "", 0, fmt.Errorf("failed to generate a unique backup file name")
}

// vacuumInto copies src to dst through VACUUM INTO, which yields a
// consistent copy even while another connection has the database open.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		return err
	}
	return nil
}

func verify(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

// List returns the snapshots newest first. Files that do not look like
// snapshots are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := namePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		ts, err := time.Parse(stampLayout, match[1])
		if err != nil {
			continue
		}
		seq := 0
		if match[2] != "" {
			seq, _ = strconv.Atoi(match[2])
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:      filepath.Join(m.dir, e.Name()),
			Timestamp: ts,
			Seq:       seq,
			Size:      info.Size(),
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Timestamp.After(snaps[j].Timestamp)
		}
		return snaps[i].Seq > snaps[j].Seq
	})
	return snaps, nil
}

func (m *Manager) rotate() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snaps[min(m.keep, len(snaps)):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", s.Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first so a restore can itself be undone. The
// caller must close any open connection to the database beforehand.
func (m *Manager) Restore(path string) (Snapshot, error) {
	if err := verifyFile(path); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous Snapshot
	if _, err := os.Stat(m.dbPath); err == nil {
		if previous, err = m.create(); err != nil {
			return Snapshot{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	return previous, nil
}

func verifyFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file does not exist: %s", path)
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
