// Package seed fills a store with demo data for trying out analytics.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/julianstephens/habitlens/internal/constants"
	apperrors "github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/journal"
	"github.com/julianstephens/habitlens/internal/logger"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/utils"
)

const (
	DemoUser = "testuser"
	Days     = 14
)

// DemoHabits are created for the demo user in this order.
var DemoHabits = []models.Habit{
	{Name: "Sleep", Category: constants.CategoryHealth, TargetValue: 8, Unit: "hours"},
	{Name: "Drink Water", Category: constants.CategoryHealth, TargetValue: 2500, Unit: "ml"},
	{Name: "Reading", Category: constants.CategoryProductivity, TargetValue: 30, Unit: "pages"},
	{Name: "Coding", Category: constants.CategoryProductivity, TargetValue: 4, Unit: "hours"},
	{Name: "Meditation", Category: constants.CategoryMindfulness, TargetValue: 15, Unit: "minutes"},
}

// Summary counts what a seed run wrote
type Summary struct {
	User           models.User
	HabitsCreated  int
	EntriesCreated int
	LogsCreated    int
}

type Seeder struct {
	journal *journal.Service
	rng     *rand.Rand
}

// New returns a seeder. The same seed yields the same generated values.
func New(j *journal.Service, seed uint64) *Seeder {
	return &Seeder{
		journal: j,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// between returns a uniform int in [lo, hi]
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

// Run seeds the demo user. Existing habits, entries and logs are kept, so a
// second run only fills gaps.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	user, err := s.journal.ResolveUser(ctx, DemoUser)
	if err != nil {
		return sum, fmt.Errorf("failed to resolve demo user: %w", err)
	}
	sum.User = user

	habits := make([]models.Habit, len(DemoHabits))
	for i, demo := range DemoHabits {
		h, err := s.journal.FindHabit(ctx, user.ID, demo.Name)
		if apperrors.IsNotFound(err) {
			h, err = s.journal.CreateHabit(ctx, user.ID, demo)
			if err == nil {
				sum.HabitsCreated++
			}
		}
		if err != nil {
			return sum, fmt.Errorf("failed to seed habit %q: %w", demo.Name, err)
		}
		habits[i] = h
	}
	sleep, water, reading := habits[0], habits[1], habits[2]

	today := s.journal.Now()
	for i := range Days {
		date := utils.FormatDate(today.AddDate(0, 0, -i))

		productivity := s.between(3, 10)
		mood := s.between(3, 10)
		sleepHours := 5 + 4*s.rng.Float64()
		switch {
		case sleepHours > 7.5:
			productivity = max(productivity, s.between(8, 10))
		case sleepHours < 6:
			productivity = min(productivity, s.between(1, 5))
		}

		entry, err := s.journal.GetEntry(ctx, user.ID, date)
		if apperrors.IsNotFound(err) {
			entry, err = s.journal.CreateEntry(ctx, user.ID, models.DailyEntry{
				Date:              date,
				ProductivityScore: productivity,
				MoodScore:         mood,
				Notes:             "Log for " + date,
			})
			if err == nil {
				sum.EntriesCreated++
			}
		}
		if err != nil {
			return sum, fmt.Errorf("failed to seed entry %s: %w", date, err)
		}

		existing, err := s.journal.LogsForEntry(ctx, user.ID, entry.ID)
		if err != nil {
			return sum, err
		}
		logged := make(map[string]bool, len(existing))
		for _, l := range existing {
			logged[l.HabitID] = true
		}

		values := map[string]float64{
			sleep.ID: math.Round(sleepHours*10) / 10,
			water.ID: float64(s.between(1000, 3000)),
		}
		if s.rng.Float64() > 0.3 {
			values[reading.ID] = float64(s.between(10, 50))
		}

		for _, h := range []models.Habit{sleep, water, reading} {
			v, ok := values[h.ID]
			if !ok || logged[h.ID] {
				continue
			}
			if _, _, err := s.journal.LogHabit(ctx, user.ID, h.ID, v, date); err != nil {
				return sum, fmt.Errorf("failed to seed %s log for %s: %w", h.Name, date, err)
			}
			sum.LogsCreated++
		}
	}

	logger.Info("Seed complete",
		"user", user.Username,
		"habits", sum.HabitsCreated,
		"entries", sum.EntriesCreated,
		"logs", sum.LogsCreated,
	)
	return sum, nil
}
