package analytics

import (
	"math"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/series"
)

// BuildSeries orders records by date. It reports false when there are too
// few rows to analyze.
func BuildSeries(records []models.LogRecord) (series.Series, bool) {
	s := series.FromRecords(records)
	return s, len(s) >= constants.MinSeriesPoints
}

// Smooth replaces the habit value and the selected metric with their
// centered moving averages. A window of 1 or less leaves s unchanged.
func Smooth(s series.Series, window int, metric models.Metric) series.Series {
	if window <= 1 {
		return s
	}
	out := s.WithValues(series.RollingMean(s.Values(), window))
	return out.WithMetric(metric, series.RollingMean(s.Metric(metric), window))
}

// FilterOutliers drops rows whose habit value lies more than threshold
// population standard deviations from the mean. Short series and
// zero-variance series are returned unchanged.
func FilterOutliers(s series.Series, threshold float64) series.Series {
	if len(s) <= constants.OutlierFilterMinRows {
		return s
	}
	mean, std := series.PopMeanStd(s.Values())
	if std == 0 || math.IsNaN(std) {
		return s
	}

	limit := threshold * std
	out := make(series.Series, 0, len(s))
	for _, p := range s {
		if math.Abs(p.Value-mean) <= limit {
			out = append(out, p)
		}
	}
	return out
}

// Normalize min-max scales the habit value into [1, 10]. A constant series
// is returned unchanged.
func Normalize(s series.Series) series.Series {
	lo, hi := series.MinMax(s.Values())
	if len(s) == 0 || lo == hi {
		return s
	}

	span := constants.NormalizeHigh - constants.NormalizeLow
	values := make([]float64, len(s))
	for i, p := range s {
		switch p.Value {
		case lo:
			values[i] = constants.NormalizeLow
		case hi:
			values[i] = constants.NormalizeHigh
		default:
			values[i] = constants.NormalizeLow + (p.Value-lo)*span/(hi-lo)
		}
	}
	return s.WithValues(values)
}

// Correlate returns the Pearson correlation of the habit value against the
// metric, or NaN when it is undefined.
func Correlate(s series.Series, metric models.Metric) float64 {
	return series.Pearson(s.Values(), s.Metric(metric))
}
