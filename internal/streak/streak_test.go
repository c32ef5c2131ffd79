package streak

import (
	"context"
	"errors"
	"testing"
	"time"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = d(s)
	}
	return out
}

func TestCalculate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []time.Time
		want  Streaks
	}{
		{"empty", nil, Streaks{0, 0}},
		{"only today", dates("2024-03-10"), Streaks{1, 1}},
		{"only yesterday", dates("2024-03-09"), Streaks{1, 1}},
		{"stale single day", dates("2024-03-07"), Streaks{0, 1}},
		{"run ending today", dates("2024-03-08", "2024-03-09", "2024-03-10"), Streaks{3, 3}},
		{"run ending yesterday", dates("2024-03-07", "2024-03-08", "2024-03-09"), Streaks{3, 3}},
		{"gap breaks current", dates("2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-09", "2024-03-10"), Streaks{2, 4}},
		{"stale run keeps longest", dates("2024-02-01", "2024-02-02", "2024-02-03"), Streaks{0, 3}},
		{"unsorted with duplicates", dates("2024-03-10", "2024-03-08", "2024-03-09", "2024-03-09"), Streaks{3, 3}},
		{"month boundary", dates("2024-02-28", "2024-02-29", "2024-03-01"), Streaks{0, 3}},
		{"isolated today after a pair", dates("2024-03-05", "2024-03-06", "2024-03-10"), Streaks{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.dates, now)
			if got != tt.want {
				t.Errorf("Calculate() = %+v, want %+v", got, tt.want)
			}
			if got.Current > got.Longest {
				t.Errorf("current %d exceeds longest %d", got.Current, got.Longest)
			}
		})
	}
}

func TestCalculateUsesCalendarDayInClockLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// Stored dates are UTC midnight; converting them to New York time
	// would move each one to the previous evening.
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, loc)
	got := Calculate(dates("2024-03-09", "2024-03-10"), now)
	if got != (Streaks{2, 2}) {
		t.Errorf("Calculate() = %+v, want {2 2}", got)
	}
}

func TestCalculateAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts 2024-03-10 in New York
	now := time.Date(2024, 3, 11, 12, 0, 0, 0, loc)
	got := Calculate(dates("2024-03-09", "2024-03-10", "2024-03-11"), now)
	if got != (Streaks{3, 3}) {
		t.Errorf("Calculate() = %+v, want {3 3}", got)
	}
}

type fakeDates struct {
	dates []time.Time
	err   error
}

func (f fakeDates) ListLogDates(ctx context.Context, habitID string) ([]time.Time, error) {
	return f.dates, f.err
}

func TestCalculatorForHabit(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }

	c := NewCalculator(fakeDates{dates: dates("2024-03-09", "2024-03-10")}, clock)
	got, err := c.ForHabit(context.Background(), "h1")
	if err != nil {
		t.Fatalf("ForHabit() failed: %v", err)
	}
	if got != (Streaks{2, 2}) {
		t.Errorf("ForHabit() = %+v, want {2 2}", got)
	}

	failing := NewCalculator(fakeDates{err: errors.New("boom")}, clock)
	if _, err := failing.ForHabit(context.Background(), "h1"); err == nil {
		t.Error("ForHabit() should propagate store errors")
	}
}
