// Package series holds the per-habit time series and the numeric kernels the
// analytics pipeline runs over it.
package series

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/julianstephens/habitlens/internal/models"
)

// ErrDegenerateFit is returned when a trend line cannot be fitted
var ErrDegenerateFit = errors.New("trend line needs at least two distinct x values")

// Point is one day of a habit series
type Point struct {
	Date         time.Time
	Value        float64
	Productivity float64
	Mood         float64
}

// Series is ordered ascending by date
type Series []Point

// FromRecords builds a series from store records, stable-sorted by date.
func FromRecords(records []models.LogRecord) Series {
	s := make(Series, len(records))
	for i, r := range records {
		s[i] = Point{
			Date:         r.Date,
			Value:        r.Value,
			Productivity: float64(r.ProductivityScore),
			Mood:         float64(r.MoodScore),
		}
	}
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
	return s
}

// Clone returns an independent copy of s
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Values returns the habit value column
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Metric returns the score column selected by m
func (s Series) Metric(m models.Metric) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		if m == models.MetricMood {
			out[i] = p.Mood
		} else {
			out[i] = p.Productivity
		}
	}
	return out
}

// Dates returns the date column
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// WithValues returns a copy of s with the habit value column replaced.
func (s Series) WithValues(values []float64) Series {
	out := s.Clone()
	for i := range out {
		out[i].Value = values[i]
	}
	return out
}

// WithMetric returns a copy of s with the m score column replaced.
func (s Series) WithMetric(m models.Metric, values []float64) Series {
	out := s.Clone()
	for i := range out {
		if m == models.MetricMood {
			out[i].Mood = values[i]
		} else {
			out[i].Productivity = values[i]
		}
	}
	return out
}

// RollingMean returns the centered moving average of xs over window points.
// The window for index i spans [i-window/2, i+(window-1)/2] clipped to the
// bounds, so edges average fewer points and even windows lean left, the
// same as pandas rolling(center=True, min_periods=1).
func RollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	if window <= 1 {
		copy(out, xs)
		return out
	}
	left := window / 2
	right := (window - 1) / 2
	for i := range xs {
		lo := max(0, i-left)
		hi := min(len(xs)-1, i+right)
		out[i] = floats.Sum(xs[lo:hi+1]) / float64(hi-lo+1)
	}
	return out
}

// PopMeanStd returns the mean and population standard deviation of xs.
func PopMeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(xs, nil)
}

// MinMax returns the smallest and largest element of xs.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(xs), floats.Max(xs)
}

// Pearson returns the sample correlation of x and y, or NaN when fewer than
// two points are given or either column has zero variance.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	if constant(x) || constant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	// Rounding can push |r| a hair past 1
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	lo, hi := MinMax(xs)
	return lo == hi
}

// Line is y = Intercept + Slope*x
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at x
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// LinearFit returns the ordinary least squares degree-1 fit of y on x.
func LinearFit(x, y []float64) (Line, error) {
	if len(x) != len(y) || len(x) < 2 || constant(x) {
		return Line{}, ErrDegenerateFit
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Line{}, ErrDegenerateFit
	}
	return Line{Intercept: alpha, Slope: beta}, nil
}
