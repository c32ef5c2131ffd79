// Package analytics turns habit logs into smoothed, filtered series and
// correlates them with the daily productivity or mood scores.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/logger"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/plot"
	"github.com/julianstephens/habitlens/internal/series"
	"github.com/julianstephens/habitlens/internal/storage"
)

// Result is the analysis of one habit
type Result struct {
	Habit       models.Habit
	Metric      models.Metric
	Correlation float64
	SampleCount int
	Trend       *series.Line
	// TrendOmitted is set when no trend line could be fitted.
	TrendOmitted   bool
	ScatterPlot    []byte
	TimeSeriesPlot []byte
}

// CorrelationText is the display form of the correlation
func (r Result) CorrelationText() string {
	return FormatCorrelation(r.Correlation)
}

// MarshalJSON encodes plots as data URIs and an undefined correlation as null.
func (r Result) MarshalJSON() ([]byte, error) {
	var corr *float64
	if !math.IsNaN(r.Correlation) {
		c := r.Correlation
		corr = &c
	}
	return json.Marshal(struct {
		Habit          models.Habit  `json:"habit"`
		Metric         models.Metric `json:"metric"`
		Correlation    *float64      `json:"correlation"`
		CorrelationTxt string        `json:"correlation_display"`
		SampleCount    int           `json:"sample_count"`
		Trend          *series.Line  `json:"trend,omitempty"`
		TrendOmitted   bool          `json:"trend_omitted"`
		ScatterPlot    string        `json:"scatter_plot,omitempty"`
		TimeSeriesPlot string        `json:"time_series_plot,omitempty"`
	}{
		Habit:          r.Habit,
		Metric:         r.Metric,
		Correlation:    corr,
		CorrelationTxt: r.CorrelationText(),
		SampleCount:    r.SampleCount,
		Trend:          r.Trend,
		TrendOmitted:   r.TrendOmitted,
		ScatterPlot:    plot.DataURI(r.ScatterPlot),
		TimeSeriesPlot: plot.DataURI(r.TimeSeriesPlot),
	})
}

// Report is the analysis of every habit in a scope
type Report struct {
	Controls Controls      `json:"controls"`
	Scope    storage.Scope `json:"scope"`
	Results  []Result      `json:"results"`
	// Skipped lists ids of habits with too little data, in store order.
	Skipped []string `json:"skipped"`
}

// FormatCorrelation renders r with two decimals, or N/A when undefined.
func FormatCorrelation(r float64) string {
	if math.IsNaN(r) {
		return constants.NotAvailable
	}
	return fmt.Sprintf("%.2f", r)
}

// Engine runs the analytics pipeline against a log store
type Engine struct {
	store      storage.LogStore
	renderer   plot.Renderer
	maxWorkers int
	log        *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxWorkers bounds how many habits AnalyzeAll processes at once.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxWorkers = n
		}
	}
}

// NewEngine returns an engine reading from store. A nil renderer disables plots.
func NewEngine(store storage.LogStore, renderer plot.Renderer, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		renderer:   renderer,
		maxWorkers: constants.DefaultMaxWorkers,
		log:        logger.With("component", "analytics"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the pipeline for one habit. The bool is false when the habit
// has too little data and was skipped.
func (e *Engine) Analyze(ctx context.Context, habit models.Habit, c Controls) (Result, bool, error) {
	records, err := e.store.ListLogsForHabit(ctx, habit.ID)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to load logs for habit %q: %w", habit.Name, err)
	}

	s, ok := BuildSeries(records)
	if !ok {
		e.log.Debug("Skipping habit with too few logs", "habit", habit.Name, "rows", len(records))
		return Result{}, false, nil
	}

	s = Smooth(s, c.Window, c.Metric)

	s = FilterOutliers(s, c.StdThreshold)
	if len(s) < constants.MinSeriesPoints {
		e.log.Debug("Skipping habit after outlier filtering", "habit", habit.Name, "rows", len(s))
		return Result{}, false, nil
	}

	if c.Normalize {
		s = Normalize(s)
	}

	result := Result{
		Habit:       habit,
		Metric:      c.Metric,
		Correlation: Correlate(s, c.Metric),
		SampleCount: len(s),
	}

	xs, ys := s.Values(), s.Metric(c.Metric)
	if line, err := series.LinearFit(xs, ys); err == nil {
		result.Trend = &line
	} else {
		result.TrendOmitted = true
	}

	e.render(&result, s, c)
	return result, true, nil
}

// render fills the plot artifacts. A failed artifact is left empty.
func (e *Engine) render(result *Result, s series.Series, c Controls) {
	if e.renderer == nil {
		return
	}

	habitLabel := result.Habit.Name
	if c.Normalize {
		habitLabel += " (normalized)"
	} else if result.Habit.Unit != "" {
		habitLabel += " (" + result.Habit.Unit + ")"
	}
	metricLabel := c.Metric.Label()

	scatter, err := e.renderer.Scatter(plot.ScatterInput{
		Title:  fmt.Sprintf("%s vs %s", result.Habit.Name, metricLabel),
		XLabel: habitLabel,
		YLabel: metricLabel,
		X:      s.Values(),
		Y:      s.Metric(c.Metric),
		Trend:  result.Trend,
	})
	if err != nil {
		e.log.Warn("Failed to render scatter plot", "habit", result.Habit.Name, "error", err)
	} else {
		result.ScatterPlot = scatter
	}

	timeSeries, err := e.renderer.TimeSeries(plot.TimeSeriesInput{
		Title:      fmt.Sprintf("%s over time", result.Habit.Name),
		Dates:      s.Dates(),
		Left:       s.Values(),
		LeftLabel:  habitLabel,
		Right:      s.Metric(c.Metric),
		RightLabel: metricLabel,
	})
	if err != nil {
		e.log.Warn("Failed to render time series plot", "habit", result.Habit.Name, "error", err)
	} else {
		result.TimeSeriesPlot = timeSeries
	}
}

// AnalyzeAll analyzes every habit in scope concurrently. Results keep the
// store's habit order. Any store error fails the whole report.
func (e *Engine) AnalyzeAll(ctx context.Context, scope storage.Scope, c Controls) (Report, error) {
	habits, err := e.store.ListHabits(ctx, scope)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list habits: %w", err)
	}

	type slot struct {
		result Result
		ok     bool
	}
	slots := make([]slot, len(habits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)
	for i, habit := range habits {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, ok, err := e.Analyze(gctx, habit, c)
			if err != nil {
				return err
			}
			slots[i] = slot{result: res, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{
		Controls: c,
		Scope:    scope,
		Results:  make([]Result, 0, len(habits)),
		Skipped:  []string{},
	}
	for i, sl := range slots {
		if sl.ok {
			report.Results = append(report.Results, sl.result)
		} else {
			report.Skipped = append(report.Skipped, habits[i].ID)
		}
	}

	e.log.Debug("Analytics report built", "habits", len(habits), "results", len(report.Results), "skipped", len(report.Skipped))
	return report, nil
}
