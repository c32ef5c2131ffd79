package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/julianstephens/habitlens/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func slicesApproxEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !approxEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestFromRecordsSortsStable(t *testing.T) {
	records := []models.LogRecord{
		{Date: day(3), Value: 3, ProductivityScore: 7, MoodScore: 2},
		{Date: day(1), Value: 1, ProductivityScore: 5, MoodScore: 6},
		{Date: day(3), Value: 30, ProductivityScore: 8, MoodScore: 3},
		{Date: day(2), Value: 2, ProductivityScore: 6, MoodScore: 4},
	}

	s := FromRecords(records)
	want := []float64{1, 2, 3, 30}
	if got := s.Values(); !slicesApproxEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
	if got := s.Metric(models.MetricMood); !slicesApproxEqual(got, []float64{6, 4, 2, 3}) {
		t.Errorf("Metric(mood) = %v", got)
	}
	if got := s.Metric(models.MetricProductivity); !slicesApproxEqual(got, []float64{5, 6, 7, 8}) {
		t.Errorf("Metric(productivity) = %v", got)
	}
}

func TestWithValuesDoesNotAlias(t *testing.T) {
	s := Series{{Date: day(1), Value: 1}, {Date: day(2), Value: 2}}
	replaced := s.WithValues([]float64{10, 20})
	if s[0].Value != 1 {
		t.Error("WithValues() modified the receiver")
	}
	if replaced[1].Value != 20 {
		t.Errorf("WithValues() = %v", replaced.Values())
	}

	mood := s.WithMetric(models.MetricMood, []float64{3, 4})
	if mood[0].Mood != 3 || s[0].Mood != 0 {
		t.Error("WithMetric() should replace only the copy")
	}
}

func TestRollingMean(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		window int
		want   []float64
	}{
		{"window 1 is identity", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"window 0 is identity", []float64{1, 2, 3}, 0, []float64{1, 2, 3}},
		{"odd window clipped at edges", []float64{1, 2, 3, 4, 5}, 3, []float64{1.5, 2, 3, 4, 4.5}},
		{"even window leans left", []float64{1, 2, 3, 4}, 2, []float64{1, 1.5, 2.5, 3.5}},
		{"window 4 centered left", []float64{1, 2, 3, 4}, 4, []float64{1.5, 2, 2.5, 3}},
		{"window wider than series", []float64{2, 4, 6}, 7, []float64{4, 4, 4}},
		{"empty", nil, 3, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollingMean(tt.xs, tt.window)
			if len(got) != len(tt.xs) {
				t.Fatalf("RollingMean() length = %d, want %d", len(got), len(tt.xs))
			}
			if !slicesApproxEqual(got, tt.want) {
				t.Errorf("RollingMean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPopMeanStd(t *testing.T) {
	mean, std := PopMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !approxEqual(mean, 5) || !approxEqual(std, 2) {
		t.Errorf("PopMeanStd() = %v, %v; want 5, 2", mean, std)
	}

	_, std = PopMeanStd([]float64{3, 3, 3})
	if std != 0 {
		t.Errorf("std of constant column = %v, want 0", std)
	}

	mean, _ = PopMeanStd(nil)
	if !math.IsNaN(mean) {
		t.Errorf("PopMeanStd(nil) mean = %v, want NaN", mean)
	}
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 8, 2})
	if lo != -1 || hi != 8 {
		t.Errorf("MinMax() = %v, %v", lo, hi)
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64 // NaN means expect NaN
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}, math.NaN()},
		{"constant y", []float64{1, 2, 3}, []float64{4, 4, 4}, math.NaN()},
		{"single point", []float64{1}, []float64{1}, math.NaN()},
		{"length mismatch", []float64{1, 2}, []float64{1}, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pearson(tt.x, tt.y)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("Pearson() = %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearsonBounded(t *testing.T) {
	x := []float64{0.1, 0.7, 0.2, 0.9, 0.4, 0.35}
	y := []float64{3, 8, 1, 9, 6, 2}
	r := Pearson(x, y)
	if r < -1 || r > 1 || math.IsNaN(r) {
		t.Errorf("Pearson() = %v, want value in [-1, 1]", r)
	}
	if self := Pearson(x, x); math.Abs(self-1) > 1e-12 {
		t.Errorf("Pearson(x, x) = %v, want 1", self)
	}
}

func TestLinearFit(t *testing.T) {
	line, err := LinearFit([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	if err != nil {
		t.Fatalf("LinearFit() failed: %v", err)
	}
	if !approxEqual(line.Intercept, 1) || !approxEqual(line.Slope, 2) {
		t.Errorf("LinearFit() = %+v, want intercept 1 slope 2", line)
	}
	if !approxEqual(line.At(10), 21) {
		t.Errorf("At(10) = %v, want 21", line.At(10))
	}

	if _, err := LinearFit([]float64{2, 2, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrDegenerateFit) {
		t.Errorf("LinearFit(constant x) error = %v, want ErrDegenerateFit", err)
	}
	if _, err := LinearFit([]float64{1}, []float64{1}); !errors.Is(err, ErrDegenerateFit) {
		t.Errorf("LinearFit(single point) error = %v, want ErrDegenerateFit", err)
	}
}
