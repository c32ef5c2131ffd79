package journal

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitlens/internal/cache"
	apperrors "github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/storage/sqlite"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc   *Service
	store *sqlite.Store
	cache *cache.MemoryCache
	user  models.User
}

func setup(t *testing.T) testEnv {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "journal.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pageCache := cache.NewMemoryCache(time.Minute)
	svc := NewService(store, pageCache,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)

	user, err := svc.ResolveUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ResolveUser() failed: %v", err)
	}
	return testEnv{svc: svc, store: store, cache: pageCache, user: user}
}

func (e testEnv) habit(t *testing.T, name string) models.Habit {
	t.Helper()
	h, err := e.svc.CreateHabit(context.Background(), e.user.ID, models.Habit{Name: name, TargetValue: 8, Unit: "hours"})
	if err != nil {
		t.Fatalf("CreateHabit() failed: %v", err)
	}
	return h
}

func TestResolveUserRejectsBlank(t *testing.T) {
	env := setup(t)
	if _, err := env.svc.ResolveUser(context.Background(), "  "); !apperrors.IsInvalidInput(err) {
		t.Errorf("ResolveUser(blank) error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateHabit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	h, err := env.svc.CreateHabit(ctx, env.user.ID, models.Habit{Name: "  Sleep ", Unit: "hours", TargetValue: 8})
	if err != nil {
		t.Fatalf("CreateHabit() failed: %v", err)
	}
	if h.Name != "Sleep" || h.Category != "health" || h.UserID != env.user.ID {
		t.Errorf("CreateHabit() = %+v", h)
	}

	tests := []struct {
		name    string
		habit   models.Habit
		wantErr func(error) bool
	}{
		{"duplicate name", models.Habit{Name: "Sleep", Unit: "hours"}, apperrors.IsConflict},
		{"missing unit", models.Habit{Name: "Water"}, apperrors.IsInvalidInput},
		{"bad unit", models.Habit{Name: "Water", Unit: "ml2"}, apperrors.IsInvalidInput},
		{"blank name", models.Habit{Name: "  ", Unit: "ml"}, apperrors.IsInvalidInput},
		{"infinite target", models.Habit{Name: "Water", Unit: "ml", TargetValue: math.Inf(1)}, apperrors.IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateHabit(ctx, env.user.ID, tt.habit)
			if !tt.wantErr(err) {
				t.Errorf("CreateHabit() error = %v", err)
			}
		})
	}
}

func TestHabitOwnership(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	h := env.habit(t, "Sleep")

	bob, err := env.svc.ResolveUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ResolveUser() failed: %v", err)
	}

	if _, err := env.svc.GetHabit(ctx, bob.ID, h.ID); !apperrors.IsNotFound(err) {
		t.Errorf("GetHabit(other user) error = %v, want ErrNotFound", err)
	}
	h.Name = "Stolen"
	if _, err := env.svc.UpdateHabit(ctx, bob.ID, h); !apperrors.IsNotFound(err) {
		t.Errorf("UpdateHabit(other user) error = %v, want ErrNotFound", err)
	}
	if err := env.svc.DeleteHabit(ctx, bob.ID, h.ID); !apperrors.IsNotFound(err) {
		t.Errorf("DeleteHabit(other user) error = %v, want ErrNotFound", err)
	}
	if _, _, err := env.svc.LogHabit(ctx, bob.ID, h.ID, 3, ""); !apperrors.IsNotFound(err) {
		t.Errorf("LogHabit(other user) error = %v, want ErrNotFound", err)
	}
}

func TestFindHabit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	h := env.habit(t, "Reading")

	byID, err := env.svc.FindHabit(ctx, env.user.ID, h.ID)
	if err != nil || byID.ID != h.ID {
		t.Errorf("FindHabit(id) = %+v, %v", byID, err)
	}
	byName, err := env.svc.FindHabit(ctx, env.user.ID, "Reading")
	if err != nil || byName.ID != h.ID {
		t.Errorf("FindHabit(name) = %+v, %v", byName, err)
	}
	if _, err := env.svc.FindHabit(ctx, env.user.ID, "Nope"); !apperrors.IsNotFound(err) {
		t.Errorf("FindHabit(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRelogUpdatesInPlace(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	h := env.habit(t, "Sleep")

	first, created, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 4.0, "")
	if err != nil {
		t.Fatalf("LogHabit() failed: %v", err)
	}
	if !created {
		t.Error("first log should be created")
	}

	second, created, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 7.0, "")
	if err != nil {
		t.Fatalf("LogHabit() failed: %v", err)
	}
	if created {
		t.Error("second log should update in place")
	}
	if first.ID != second.ID {
		t.Errorf("relog produced a new row: %s vs %s", first.ID, second.ID)
	}

	entry, err := env.svc.GetEntry(ctx, env.user.ID, "2024-03-10")
	if err != nil {
		t.Fatalf("GetEntry(today) failed: %v", err)
	}
	logs, err := env.svc.LogsForEntry(ctx, env.user.ID, entry.ID)
	if err != nil {
		t.Fatalf("LogsForEntry() failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Value != 7.0 {
		t.Errorf("logs = %+v, want exactly one with value 7.0", logs)
	}
}

func TestLogHabitValidation(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	h := env.habit(t, "Sleep")

	if _, _, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, math.NaN(), ""); !apperrors.IsInvalidInput(err) {
		t.Errorf("LogHabit(NaN) error = %v, want ErrInvalidInput", err)
	}
	if _, _, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 1, "03/10/2024"); !apperrors.IsInvalidInput(err) {
		t.Errorf("LogHabit(bad date) error = %v, want ErrInvalidInput", err)
	}
	if _, _, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 1, "2024-02-01"); err != nil {
		t.Errorf("LogHabit(past date) failed: %v", err)
	}
}

func TestEntries(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	created, err := env.svc.CreateEntry(ctx, env.user.ID, models.DailyEntry{ProductivityScore: 7, MoodScore: 8, Notes: " good day "})
	if err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	if created.Date != "2024-03-10" || created.Notes != "good day" {
		t.Errorf("CreateEntry() = %+v", created)
	}

	if _, err := env.svc.CreateEntry(ctx, env.user.ID, models.DailyEntry{Date: "2024-03-10", ProductivityScore: 5, MoodScore: 5}); !apperrors.IsConflict(err) {
		t.Errorf("CreateEntry(duplicate) error = %v, want ErrConflict", err)
	}
	if _, err := env.svc.CreateEntry(ctx, env.user.ID, models.DailyEntry{Date: "2024-03-09", ProductivityScore: 11, MoodScore: 5}); !apperrors.IsInvalidInput(err) {
		t.Errorf("CreateEntry(score 11) error = %v, want ErrInvalidInput", err)
	}

	created.MoodScore = 3
	created.Date = "1999-01-01"
	updated, err := env.svc.UpdateEntry(ctx, env.user.ID, created)
	if err != nil {
		t.Fatalf("UpdateEntry() failed: %v", err)
	}
	if updated.MoodScore != 3 || updated.Date != "2024-03-10" {
		t.Errorf("UpdateEntry() = %+v, want mood 3 and unchanged date", updated)
	}

	bob, _ := env.svc.ResolveUser(ctx, "bob")
	if _, err := env.svc.UpdateEntry(ctx, bob.ID, updated); !apperrors.IsNotFound(err) {
		t.Errorf("UpdateEntry(other user) error = %v, want ErrNotFound", err)
	}

	if err := env.svc.DeleteEntry(ctx, env.user.ID, updated.ID); err != nil {
		t.Fatalf("DeleteEntry() failed: %v", err)
	}
	entries, err := env.svc.ListEntries(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListEntries() after delete = %d entries", len(entries))
	}
}

func TestEnsureEntryForToday(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	first, err := env.svc.EnsureEntryForToday(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("EnsureEntryForToday() failed: %v", err)
	}
	second, err := env.svc.EnsureEntryForToday(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("EnsureEntryForToday() failed: %v", err)
	}
	if first.ID != second.ID || first.Date != "2024-03-10" {
		t.Errorf("EnsureEntryForToday() = %+v then %+v", first, second)
	}
	if first.ProductivityScore != 5 || first.MoodScore != 5 {
		t.Errorf("default scores = %d/%d", first.ProductivityScore, first.MoodScore)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*60*60)
	svc := NewService(nil, nil,
		WithClock(func() time.Time { return time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC) }),
		WithLocation(loc),
	)
	if got := svc.Today(); got != "2024-03-09" {
		t.Errorf("Today() = %s, want 2024-03-09", got)
	}
}

func TestListEntriesCache(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	h := env.habit(t, "Sleep")

	if _, _, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 7, "2024-03-09"); err != nil {
		t.Fatalf("LogHabit() failed: %v", err)
	}

	entries, err := env.svc.ListEntries(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].LogCount != 1 {
		t.Fatalf("ListEntries() = %+v", entries)
	}
	if _, ok, _ := env.cache.Get(ctx, env.user.ID); !ok {
		t.Fatal("ListEntries() should populate the cache")
	}

	// Writes through the store directly bypass invalidation, so the cached page is served
	if _, err := env.store.AddEntry(ctx, models.DailyEntry{UserID: env.user.ID, Date: "2024-03-01", ProductivityScore: 5, MoodScore: 5}); err != nil {
		t.Fatalf("AddEntry() failed: %v", err)
	}
	cached, err := env.svc.ListEntries(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(cached) != 1 {
		t.Errorf("expected cached page with 1 entry, got %d", len(cached))
	}

	// A write through the service invalidates the page
	if _, _, err := env.svc.LogHabit(ctx, env.user.ID, h.ID, 8, "2024-03-10"); err != nil {
		t.Fatalf("LogHabit() failed: %v", err)
	}
	if _, ok, _ := env.cache.Get(ctx, env.user.ID); ok {
		t.Fatal("LogHabit() should invalidate the cache")
	}
	fresh, err := env.svc.ListEntries(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(fresh) != 3 || fresh[0].Date != "2024-03-10" {
		t.Errorf("fresh ListEntries() = %+v", fresh)
	}
}
