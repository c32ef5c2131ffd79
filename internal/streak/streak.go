// Package streak computes consecutive-day logging streaks.
package streak

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/habitlens/internal/storage"
	"github.com/julianstephens/habitlens/internal/utils"
)

// Streaks holds the current and longest runs of consecutive logged days
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Calculate computes streaks from log dates. Dates are reduced to calendar
// days in now's location using their own year/month/day, deduplicated and
// sorted. The current streak is zero unless the last day is today or
// yesterday.
func Calculate(dates []time.Time, now time.Time) Streaks {
	if len(dates) == 0 {
		return Streaks{}
	}

	loc := now.Location()
	days := make([]time.Time, 0, len(dates))
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		y, m, dd := d.Date()
		day := time.Date(y, m, dd, 0, 0, 0, 0, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if consecutive(days[i-1], days[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	today := utils.DateOnly(now)
	yesterday := today.AddDate(0, 0, -1)

	last := days[len(days)-1]
	if last.Before(yesterday) {
		return Streaks{Current: 0, Longest: longest}
	}

	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if !consecutive(days[i-1], days[i]) {
			break
		}
		current++
	}

	return Streaks{Current: current, Longest: longest}
}

// consecutive uses AddDate so DST transitions don't break runs
func consecutive(prev, next time.Time) bool {
	return prev.AddDate(0, 0, 1).Equal(next)
}

// DateSource is the slice of the store the calculator needs
type DateSource interface {
	ListLogDates(ctx context.Context, habitID string) ([]time.Time, error)
}

var _ DateSource = (storage.LogStore)(nil)

// Calculator computes streaks for stored habits against an injected clock
type Calculator struct {
	store DateSource
	clock func() time.Time
}

// NewCalculator returns a Calculator; a nil clock means time.Now.
func NewCalculator(store DateSource, clock func() time.Time) *Calculator {
	if clock == nil {
		clock = time.Now
	}
	return &Calculator{store: store, clock: clock}
}

// ForHabit returns the streaks of the habit as of the calculator's clock.
func (c *Calculator) ForHabit(ctx context.Context, habitID string) (Streaks, error) {
	dates, err := c.store.ListLogDates(ctx, habitID)
	if err != nil {
		return Streaks{}, fmt.Errorf("failed to load log dates for habit %s: %w", habitID, err)
	}
	return Calculate(dates, c.clock()), nil
}
