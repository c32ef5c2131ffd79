package storage

import (
	"context"
	"time"

	"github.com/julianstephens/habitlens/internal/migration"
	"github.com/julianstephens/habitlens/internal/models"
)

// Scope narrows read queries to one user. An empty UserID means all users.
type Scope struct {
	UserID string `json:"user_id"`
}

// AllUsers reports whether the scope spans every user
func (s Scope) AllUsers() bool {
	return s.UserID == ""
}

// LogStore is the read-only view the analytics core consumes
type LogStore interface {
	// ListHabits returns habits in scope ordered by name, then id.
	ListHabits(ctx context.Context, scope Scope) ([]models.Habit, error)
	// ListLogsForHabit returns one record per log joined to its entry, ordered by date.
	ListLogsForHabit(ctx context.Context, habitID string) ([]models.LogRecord, error)
	// ListLogDates returns the entry dates the habit was logged on, ascending.
	ListLogDates(ctx context.Context, habitID string) ([]time.Time, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Path() string
	// Migrate applies pending schema migrations and returns how many ran.
	Migrate(logFn func(string)) (int, error)
	MigrationStatus() (migration.Status, error)

	LogStore

	// Users
	EnsureUser(ctx context.Context, username string) (models.User, error)
	GetUserByName(ctx context.Context, username string) (models.User, error)

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	// Entries
	AddEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error)
	GetEntry(ctx context.Context, userID, date string) (models.DailyEntry, error)
	GetEntryByID(ctx context.Context, id string) (models.DailyEntry, error)
	UpdateEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, userID string) ([]models.DailyEntry, error)
	EnsureEntryForDate(ctx context.Context, userID, date string) (models.DailyEntry, error)

	// Logs
	UpsertLog(ctx context.Context, entryID, habitID string, value float64) (models.HabitLog, bool, error)
	ListLogsForEntry(ctx context.Context, entryID string) ([]models.HabitLog, error)
}
