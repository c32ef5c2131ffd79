// Package journal orchestrates habit and daily entry writes on behalf of a
// user, keeping the journal page cache coherent.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitlens/internal/cache"
	"github.com/julianstephens/habitlens/internal/constants"
	apperrors "github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/logger"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/storage"
	"github.com/julianstephens/habitlens/internal/utils"
	"github.com/julianstephens/habitlens/internal/validation"
)

// Service is the write path of the journal
type Service struct {
	store storage.Provider
	cache cache.PageCache
	clock func() time.Time
	loc   *time.Location
	log   *log.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for "today".
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService returns a journal service. A nil cache disables page caching.
func NewService(store storage.Provider, pageCache cache.PageCache, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: pageCache,
		clock: time.Now,
		loc:   time.Local,
		log:   logger.With("component", "journal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the service timezone as YYYY-MM-DD.
func (s *Service) Today() string {
	return utils.FormatDate(s.clock().In(s.loc))
}

// Now returns the service clock reading in the service timezone
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

// ResolveUser returns the user with the given name, creating it on first use.
func (s *Service) ResolveUser(ctx context.Context, username string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("%w: user name is required", apperrors.ErrInvalidInput)
	}
	return s.store.EnsureUser(ctx, username)
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("Failed to invalidate journal cache", "user", userID, "error", err)
	}
}

// Habits

func (s *Service) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, storage.Scope{UserID: userID})
}

// GetHabit returns the habit when it belongs to userID.
func (s *Service) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if h.UserID != userID {
		return models.Habit{}, fmt.Errorf("habit %w", apperrors.ErrNotFound)
	}
	return h, nil
}

// FindHabit resolves a habit by id or, failing that, by name.
func (s *Service) FindHabit(ctx context.Context, userID, idOrName string) (models.Habit, error) {
	if h, err := s.GetHabit(ctx, userID, idOrName); err == nil {
		return h, nil
	} else if !apperrors.IsNotFound(err) {
		return models.Habit{}, err
	}
	return s.store.GetHabitByName(ctx, userID, strings.TrimSpace(idOrName))
}

func normalizeHabit(h models.Habit) models.Habit {
	h.Name = strings.TrimSpace(h.Name)
	h.Unit = strings.TrimSpace(h.Unit)
	h.Category = strings.TrimSpace(h.Category)
	if h.Category == "" {
		h.Category = constants.DefaultCategory
	}
	return h
}

func (s *Service) CreateHabit(ctx context.Context, userID string, habit models.Habit) (models.Habit, error) {
	habit = normalizeHabit(habit)
	habit.ID = ""
	habit.UserID = userID
	if err := validation.ValidateHabit(habit); err != nil {
		return models.Habit{}, err
	}

	created, err := s.store.AddHabit(ctx, habit)
	if err != nil {
		return models.Habit{}, err
	}
	s.log.Info("Habit created", "user", userID, "habit", created.Name)
	return created, nil
}

func (s *Service) UpdateHabit(ctx context.Context, userID string, habit models.Habit) (models.Habit, error) {
	if _, err := s.GetHabit(ctx, userID, habit.ID); err != nil {
		return models.Habit{}, err
	}
	habit = normalizeHabit(habit)
	habit.UserID = userID
	if err := validation.ValidateHabit(habit); err != nil {
		return models.Habit{}, err
	}
	return s.store.UpdateHabit(ctx, habit)
}

// DeleteHabit removes the habit and its logs.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, habitID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Entries

func (s *Service) getOwnedEntry(ctx context.Context, userID, entryID string) (models.DailyEntry, error) {
	e, err := s.store.GetEntryByID(ctx, entryID)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if e.UserID != userID {
		return models.DailyEntry{}, fmt.Errorf("entry %w", apperrors.ErrNotFound)
	}
	return e, nil
}

// GetEntry returns the user's entry for date.
func (s *Service) GetEntry(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	return s.store.GetEntry(ctx, userID, date)
}

// CreateEntry adds an entry. A second entry for the same date is a conflict.
func (s *Service) CreateEntry(ctx context.Context, userID string, entry models.DailyEntry) (models.DailyEntry, error) {
	entry.ID = ""
	entry.UserID = userID
	entry.Notes = strings.TrimSpace(entry.Notes)
	if entry.Date == "" {
		entry.Date = s.Today()
	}
	if err := validation.ValidateEntry(entry); err != nil {
		return models.DailyEntry{}, err
	}

	created, err := s.store.AddEntry(ctx, entry)
	if err != nil {
		return models.DailyEntry{}, err
	}
	s.invalidate(ctx, userID)
	return created, nil
}

// UpdateEntry changes scores and notes. The date of an entry is fixed.
func (s *Service) UpdateEntry(ctx context.Context, userID string, entry models.DailyEntry) (models.DailyEntry, error) {
	existing, err := s.getOwnedEntry(ctx, userID, entry.ID)
	if err != nil {
		return models.DailyEntry{}, err
	}
	entry.UserID = userID
	entry.Date = existing.Date
	entry.Notes = strings.TrimSpace(entry.Notes)
	if err := validation.ValidateEntry(entry); err != nil {
		return models.DailyEntry{}, err
	}

	updated, err := s.store.UpdateEntry(ctx, entry)
	if err != nil {
		return models.DailyEntry{}, err
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

// DeleteEntry removes the entry and its logs.
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if _, err := s.getOwnedEntry(ctx, userID, entryID); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, entryID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// EnsureEntryForToday returns today's entry, creating it with default scores.
func (s *Service) EnsureEntryForToday(ctx context.Context, userID string) (models.DailyEntry, error) {
	entry, err := s.store.EnsureEntryForDate(ctx, userID, s.Today())
	if err != nil {
		return models.DailyEntry{}, err
	}
	s.invalidate(ctx, userID)
	return entry, nil
}

// ListEntries returns the user's entries newest first, served from the page
// cache when possible.
func (s *Service) ListEntries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	if s.cache != nil {
		page, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn("Journal cache read failed", "user", userID, "error", err)
		} else if ok {
			var entries []models.DailyEntry
			if err := json.Unmarshal(page, &entries); err == nil {
				return entries, nil
			}
			s.log.Warn("Discarding corrupt journal cache entry", "user", userID)
		}
	}

	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.DailyEntry{}
	}

	if s.cache != nil {
		if page, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, userID, page); err != nil {
				s.log.Warn("Journal cache write failed", "user", userID, "error", err)
			}
		}
	}
	return entries, nil
}

// Logs

// LogHabit records value for the habit on date, or today when date is
// empty. The entry is created on demand and a repeated log for the same day
// overwrites the value. created reports whether a new log row was written.
func (s *Service) LogHabit(ctx context.Context, userID, habitID string, value float64, date string) (models.HabitLog, bool, error) {
	if date == "" {
		date = s.Today()
	} else if _, err := utils.ParseDate(date, s.loc); err != nil {
		return models.HabitLog{}, false, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	if err := validation.ValidateLog(models.HabitLog{HabitID: habitID, Value: value}); err != nil {
		return models.HabitLog{}, false, err
	}

	habit, err := s.GetHabit(ctx, userID, habitID)
	if err != nil {
		return models.HabitLog{}, false, err
	}

	entry, err := s.store.EnsureEntryForDate(ctx, userID, date)
	if err != nil {
		return models.HabitLog{}, false, err
	}

	l, created, err := s.store.UpsertLog(ctx, entry.ID, habit.ID, value)
	if err != nil {
		return models.HabitLog{}, false, err
	}
	s.invalidate(ctx, userID)

	s.log.Debug("Habit logged", "user", userID, "habit", habit.Name, "date", date, "value", value, "created", created)
	return l, created, nil
}

// LogsForEntry returns the logs recorded on one of the user's entries.
func (s *Service) LogsForEntry(ctx context.Context, userID, entryID string) ([]models.HabitLog, error) {
	if _, err := s.getOwnedEntry(ctx, userID, entryID); err != nil {
		return nil, err
	}
	return s.store.ListLogsForEntry(ctx, entryID)
}
