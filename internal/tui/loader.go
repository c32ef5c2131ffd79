package tui

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/storage"
	"github.com/julianstephens/habitlens/internal/streak"
	"github.com/julianstephens/habitlens/internal/tui/components/habittable"
)

// Loader produces the dashboard rows for a set of controls
type Loader interface {
	Load(ctx context.Context, c analytics.Controls) ([]habittable.Row, error)
}

// DashboardLoader joins the analytics report with per-habit streaks.
type DashboardLoader struct {
	store   storage.LogStore
	engine  *analytics.Engine
	streaks *streak.Calculator
	scope   storage.Scope
}

func NewDashboardLoader(store storage.LogStore, engine *analytics.Engine, streaks *streak.Calculator, scope storage.Scope) *DashboardLoader {
	return &DashboardLoader{store: store, engine: engine, streaks: streaks, scope: scope}
}

func (l *DashboardLoader) Load(ctx context.Context, c analytics.Controls) ([]habittable.Row, error) {
	habits, err := l.store.ListHabits(ctx, l.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	report, err := l.engine.AnalyzeAll(ctx, l.scope, c)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*analytics.Result, len(report.Results))
	for i := range report.Results {
		results[report.Results[i].Habit.ID] = &report.Results[i]
	}

	rows := make([]habittable.Row, 0, len(habits))
	for _, h := range habits {
		st, err := l.streaks.ForHabit(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, habittable.Row{Habit: h, Streaks: st, Result: results[h.ID]})
	}
	return rows, nil
}
