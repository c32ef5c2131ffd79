package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/plot"
	"github.com/julianstephens/habitlens/internal/storage"
)

type fakeStore struct {
	habits  []models.Habit
	logs    map[string][]models.LogRecord
	listErr error
	logErr  error
}

func (f *fakeStore) ListHabits(ctx context.Context, scope storage.Scope) ([]models.Habit, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Habit
	for _, h := range f.habits {
		if scope.AllUsers() || h.UserID == scope.UserID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLogsForHabit(ctx context.Context, habitID string) ([]models.LogRecord, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	return f.logs[habitID], nil
}

func (f *fakeStore) ListLogDates(ctx context.Context, habitID string) ([]time.Time, error) {
	var out []time.Time
	for _, r := range f.logs[habitID] {
		out = append(out, r.Date)
	}
	return out, nil
}

type fakeRenderer struct {
	mu           sync.Mutex
	scatterCalls int
	seriesCalls  int
	scatterErr   error
	lastScatter  plot.ScatterInput
}

func (f *fakeRenderer) Scatter(in plot.ScatterInput) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scatterCalls++
	f.lastScatter = in
	if f.scatterErr != nil {
		return nil, f.scatterErr
	}
	return []byte("scatter"), nil
}

func (f *fakeRenderer) TimeSeries(in plot.TimeSeriesInput) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	return []byte("timeseries"), nil
}

func habit(id, user, name string) models.Habit {
	return models.Habit{ID: id, UserID: user, Name: name, Unit: "hours"}
}

func logRecord(d int, value float64, prod int) models.LogRecord {
	return models.LogRecord{Date: day(d), Value: value, ProductivityScore: prod, MoodScore: 5}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	store := &fakeStore{
		habits: []models.Habit{habit("h1", "u1", "Sleep")},
		logs: map[string][]models.LogRecord{
			"h1": {logRecord(1, 5, 6), logRecord(2, 9, 9), logRecord(3, 1, 3)},
		},
	}
	renderer := &fakeRenderer{}
	engine := NewEngine(store, renderer)

	controls := Controls{Window: 1, StdThreshold: 3.0, Metric: models.MetricProductivity, Normalize: false}
	report, err := engine.AnalyzeAll(context.Background(), storage.Scope{UserID: "u1"}, controls)
	if err != nil {
		t.Fatalf("AnalyzeAll() failed: %v", err)
	}

	if len(report.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", report.Skipped)
	}
	if len(report.Results) != 1 {
		t.Fatalf("Results = %d, want 1", len(report.Results))
	}
	r := report.Results[0]
	if r.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", r.SampleCount)
	}
	if !(r.Correlation > 0) {
		t.Errorf("Correlation = %v, want positive", r.Correlation)
	}
	if len(r.ScatterPlot) == 0 || len(r.TimeSeriesPlot) == 0 {
		t.Error("expected one scatter and one time-series artifact")
	}
	if renderer.scatterCalls != 1 || renderer.seriesCalls != 1 {
		t.Errorf("renderer calls = %d scatter, %d series", renderer.scatterCalls, renderer.seriesCalls)
	}
	if r.Trend == nil || r.TrendOmitted {
		t.Error("expected a fitted trend line")
	}
	if report.Controls != controls {
		t.Errorf("report controls = %+v, want %+v", report.Controls, controls)
	}
}

func TestAnalyzeSkipsSparseHabits(t *testing.T) {
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"empty": nil,
			"one":   {logRecord(1, 5, 6)},
		},
	}
	engine := NewEngine(store, &fakeRenderer{})

	controlSets := []Controls{
		DefaultControls(),
		{Window: 3, StdThreshold: 0.5, Metric: models.MetricMood, Normalize: true},
		{Window: 7, StdThreshold: 10, Metric: models.MetricProductivity, Normalize: false},
	}
	for _, id := range []string{"empty", "one"} {
		for _, c := range controlSets {
			_, ok, err := engine.Analyze(context.Background(), habit(id, "u1", id), c)
			if err != nil {
				t.Fatalf("Analyze() failed: %v", err)
			}
			if ok {
				t.Errorf("Analyze(%s, %+v) should skip", id, c)
			}
		}
	}
}

func TestAnalyzeSkipsWhenFilteringLeavesTooFewRows(t *testing.T) {
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"h1": {
				logRecord(1, 1, 5), logRecord(2, 2, 5), logRecord(3, 3, 5),
				logRecord(4, 4, 5), logRecord(5, 5, 5), logRecord(6, 6, 5), logRecord(7, 7, 5),
			},
		},
	}
	engine := NewEngine(store, nil)

	// A zero threshold keeps only values equal to the mean
	_, ok, err := engine.Analyze(context.Background(), habit("h1", "u1", "x"), Controls{Window: 1, StdThreshold: 0, Metric: models.MetricProductivity})
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if ok {
		t.Error("Analyze() should skip when fewer than 2 rows survive filtering")
	}
}

func TestAnalyzeConstantValuesOmitsTrend(t *testing.T) {
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"h1": {logRecord(1, 4, 2), logRecord(2, 4, 6), logRecord(3, 4, 9)},
		},
	}
	renderer := &fakeRenderer{}
	engine := NewEngine(store, renderer)

	res, ok, err := engine.Analyze(context.Background(), habit("h1", "u1", "Water"), DefaultControls())
	if err != nil || !ok {
		t.Fatalf("Analyze() = %v, %v", ok, err)
	}
	if !math.IsNaN(res.Correlation) {
		t.Errorf("Correlation = %v, want NaN", res.Correlation)
	}
	if res.CorrelationText() != "N/A" {
		t.Errorf("CorrelationText() = %q, want N/A", res.CorrelationText())
	}
	if !res.TrendOmitted || res.Trend != nil {
		t.Error("trend should be omitted for constant x values")
	}
	if renderer.lastScatter.Trend != nil {
		t.Error("renderer received a trend line")
	}
	if len(res.ScatterPlot) == 0 {
		t.Error("scatter should still be rendered without a trend")
	}
}

func assertValues(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func TestAnalyzeNormalizesHabitValues(t *testing.T) {
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"h1": {logRecord(1, 2, 1), logRecord(2, 4, 2), logRecord(3, 6, 3), logRecord(4, 8, 4), logRecord(5, 10, 5)},
		},
	}
	renderer := &fakeRenderer{}
	engine := NewEngine(store, renderer)
	h := habit("h1", "u1", "Sleep")

	c := Controls{Window: 1, StdThreshold: 3, Metric: models.MetricProductivity, Normalize: true}
	if _, ok, err := engine.Analyze(context.Background(), h, c); err != nil || !ok {
		t.Fatalf("Analyze() = %v, %v", ok, err)
	}
	x := renderer.lastScatter.X
	assertValues(t, "normalized x", x, []float64{1, 3.25, 5.5, 7.75, 10})
	if x[0] != 1 || x[4] != 10 {
		t.Errorf("endpoints = %v, %v; want exactly 1 and 10", x[0], x[4])
	}
	assertValues(t, "metric y", renderer.lastScatter.Y, []float64{1, 2, 3, 4, 5})
	if !strings.Contains(renderer.lastScatter.XLabel, "normalized") {
		t.Errorf("XLabel = %q", renderer.lastScatter.XLabel)
	}

	c.Normalize = false
	if _, _, err := engine.Analyze(context.Background(), h, c); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	assertValues(t, "raw x", renderer.lastScatter.X, []float64{2, 4, 6, 8, 10})
}

func TestAnalyzeSmoothsBeforeFiltering(t *testing.T) {
	// One spike at the end: dropped as an outlier when raw, kept once the
	// moving average has pulled it toward its neighbours.
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"h1": {
				logRecord(1, 1, 1), logRecord(2, 1, 2), logRecord(3, 1, 3), logRecord(4, 1, 4),
				logRecord(5, 1, 5), logRecord(6, 1, 6), logRecord(7, 50, 7),
			},
		},
	}
	renderer := &fakeRenderer{}
	engine := NewEngine(store, renderer)
	h := habit("h1", "u1", "Coffee")

	raw, ok, err := engine.Analyze(context.Background(), h, Controls{Window: 1, StdThreshold: 2.2, Metric: models.MetricProductivity})
	if err != nil || !ok {
		t.Fatalf("Analyze() = %v, %v", ok, err)
	}
	if raw.SampleCount != 6 {
		t.Errorf("unsmoothed SampleCount = %d, want 6", raw.SampleCount)
	}

	smoothed, ok, err := engine.Analyze(context.Background(), h, Controls{Window: 3, StdThreshold: 2.2, Metric: models.MetricProductivity})
	if err != nil || !ok {
		t.Fatalf("Analyze() = %v, %v", ok, err)
	}
	if smoothed.SampleCount != 7 {
		t.Errorf("smoothed SampleCount = %d, want 7", smoothed.SampleCount)
	}
	assertValues(t, "smoothed x", renderer.lastScatter.X, []float64{1, 1, 1, 1, 1, 52.0 / 3, 25.5})
	assertValues(t, "smoothed y", renderer.lastScatter.Y, []float64{1.5, 2, 3, 4, 5, 6, 6.5})
}

func TestAnalyzeRenderFailureKeepsResult(t *testing.T) {
	store := &fakeStore{
		logs: map[string][]models.LogRecord{
			"h1": {logRecord(1, 5, 6), logRecord(2, 9, 9), logRecord(3, 1, 3)},
		},
	}
	engine := NewEngine(store, &fakeRenderer{scatterErr: errors.New("no canvas")})

	res, ok, err := engine.Analyze(context.Background(), habit("h1", "u1", "Sleep"), DefaultControls())
	if err != nil || !ok {
		t.Fatalf("Analyze() = %v, %v", ok, err)
	}
	if len(res.ScatterPlot) != 0 {
		t.Error("failed scatter should be empty")
	}
	if len(res.TimeSeriesPlot) == 0 {
		t.Error("time series should still render")
	}
}

func TestAnalyzeAllOrderAndScope(t *testing.T) {
	store := &fakeStore{logs: map[string][]models.LogRecord{}}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("h%02d", i)
		store.habits = append(store.habits, habit(id, "u1", "Habit "+id))
		if i%3 != 0 {
			store.logs[id] = []models.LogRecord{logRecord(1, float64(i), 3), logRecord(2, float64(i+1), 7)}
		}
	}
	store.habits = append(store.habits, habit("other", "u2", "Other"))
	store.logs["other"] = []models.LogRecord{logRecord(1, 1, 1), logRecord(2, 2, 2)}

	engine := NewEngine(store, &fakeRenderer{}, WithMaxWorkers(3))
	report, err := engine.AnalyzeAll(context.Background(), storage.Scope{UserID: "u1"}, DefaultControls())
	if err != nil {
		t.Fatalf("AnalyzeAll() failed: %v", err)
	}

	if len(report.Results)+len(report.Skipped) != 20 {
		t.Fatalf("results %d + skipped %d, want 20", len(report.Results), len(report.Skipped))
	}
	prev := ""
	for _, r := range report.Results {
		if r.Habit.UserID != "u1" {
			t.Errorf("result for habit outside scope: %s", r.Habit.ID)
		}
		if r.Habit.ID <= prev {
			t.Errorf("results out of store order: %s after %s", r.Habit.ID, prev)
		}
		prev = r.Habit.ID
	}
	if len(report.Skipped) != 7 || report.Skipped[0] != "h00" || report.Skipped[6] != "h18" {
		t.Errorf("Skipped = %v", report.Skipped)
	}

	all, err := engine.AnalyzeAll(context.Background(), storage.Scope{}, DefaultControls())
	if err != nil {
		t.Fatalf("AnalyzeAll(all users) failed: %v", err)
	}
	if len(all.Results) != len(report.Results)+1 {
		t.Errorf("global scope results = %d, want %d", len(all.Results), len(report.Results)+1)
	}
}

func TestAnalyzeAllStoreErrors(t *testing.T) {
	boom := errors.New("db down")

	engine := NewEngine(&fakeStore{listErr: boom}, nil)
	if _, err := engine.AnalyzeAll(context.Background(), storage.Scope{}, DefaultControls()); !errors.Is(err, boom) {
		t.Errorf("AnalyzeAll() error = %v, want wrapped list error", err)
	}

	engine = NewEngine(&fakeStore{habits: []models.Habit{habit("h1", "u1", "x")}, logErr: boom}, nil)
	if _, err := engine.AnalyzeAll(context.Background(), storage.Scope{}, DefaultControls()); !errors.Is(err, boom) {
		t.Errorf("AnalyzeAll() error = %v, want wrapped log error", err)
	}
}

func TestAnalyzeAllCanceled(t *testing.T) {
	store := &fakeStore{habits: []models.Habit{habit("h1", "u1", "x")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewEngine(store, nil).AnalyzeAll(ctx, storage.Scope{}, DefaultControls()); !errors.Is(err, context.Canceled) {
		t.Errorf("AnalyzeAll() error = %v, want context.Canceled", err)
	}
}

func TestResultJSON(t *testing.T) {
	res := Result{
		Habit:       habit("h1", "u1", "Sleep"),
		Metric:      models.MetricMood,
		Correlation: math.NaN(),
		SampleCount: 2,
		ScatterPlot: []byte{1, 2, 3},
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"correlation":null`, `"correlation_display":"N/A"`, `"scatter_plot":"data:image/png;base64,`, `"metric":"mood"`} {
		if !strings.Contains(body, want) {
			t.Errorf("JSON %s missing %s", body, want)
		}
	}
	if strings.Contains(body, "time_series_plot") {
		t.Errorf("empty plot should be omitted: %s", body)
	}
}
