package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/storage/sqlite"
)

func tickingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func newJournalDB(t *testing.T) (string, *sqlite.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habitlens.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return path, store
}

func addHabit(t *testing.T, store *sqlite.Store, name string) {
	t.Helper()
	ctx := context.Background()
	u, err := store.EnsureUser(ctx, "tester")
	if err != nil {
		t.Fatalf("EnsureUser() failed: %v", err)
	}
	if _, err := store.AddHabit(ctx, models.Habit{UserID: u.ID, Name: name, Category: "health", Unit: "hours"}); err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestCreateWhileOpen(t *testing.T) {
	path, store := newJournalDB(t)
	addHabit(t, store, "Sleep")

	mgr := NewManager(path, WithClock(tickingClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), time.Second)))
	snap, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if filepath.Base(snap.Path) != "habitlens-20240310-090000.db" {
		t.Errorf("snapshot name = %s", filepath.Base(snap.Path))
	}
	if filepath.Dir(snap.Path) != mgr.Dir() {
		t.Errorf("snapshot dir = %s, want %s", filepath.Dir(snap.Path), mgr.Dir())
	}
	if snap.Size == 0 {
		t.Error("snapshot is empty")
	}
	if got := countHabits(t, snap.Path); got != 1 {
		t.Errorf("snapshot has %d habits, want 1", got)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("Create() should fail without a database")
	}
}

func TestSameSecondSnapshotsAreNumbered(t *testing.T) {
	path, _ := newJournalDB(t)
	frozen := func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	mgr := NewManager(path, WithClock(frozen))

	want := []string{"habitlens-20240310-090000.db", "habitlens-20240310-090000-1.db", "habitlens-20240310-090000-2.db"}
	for i, name := range want {
		snap, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() #%d failed: %v", i, err)
		}
		if filepath.Base(snap.Path) != name {
			t.Errorf("Create() #%d = %s, want %s", i, filepath.Base(snap.Path), name)
		}
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(snaps) != 3 || snaps[0].Seq != 2 || snaps[2].Seq != 0 {
		t.Errorf("List() order = %+v, want newest sequence first", snaps)
	}
}

func TestRotation(t *testing.T) {
	path, _ := newJournalDB(t)
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mgr := NewManager(path, WithKeep(3), WithClock(tickingClock(start, time.Minute)))

	for range 5 {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("kept %d snapshots, want 3", len(snaps))
	}
	if !snaps[0].Timestamp.Equal(start.Add(4*time.Minute)) || !snaps[2].Timestamp.Equal(start.Add(2*time.Minute)) {
		t.Errorf("kept %v .. %v, want the three newest", snaps[0].Timestamp, snaps[2].Timestamp)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	path, _ := newJournalDB(t)
	mgr := NewManager(path)

	if snaps, err := mgr.List(); err != nil || len(snaps) != 0 {
		t.Errorf("List() without a directory = %v, %v", snaps, err)
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "habitlens-latest.db", "habitlens-20240310.db", "other-20240310-090000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("List() = %+v, want no snapshots", snaps)
	}
}

func TestRestore(t *testing.T) {
	path, store := newJournalDB(t)
	addHabit(t, store, "Sleep")

	mgr := NewManager(path, WithClock(tickingClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), time.Minute)))
	snap, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	addHabit(t, store, "Water")
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	previous, err := mgr.Restore(snap.Path)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if got := countHabits(t, path); got != 1 {
		t.Errorf("restored database has %d habits, want 1", got)
	}
	if got := countHabits(t, previous.Path); got != 2 {
		t.Errorf("pre-restore snapshot has %d habits, want 2", got)
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	path, _ := newJournalDB(t)
	mgr := NewManager(path)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("definitely not sqlite, padded to look like a header........"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("Restore() should reject a non-database file")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("Restore() should reject a missing file")
	}
}
