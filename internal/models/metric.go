package models

import "strings"

// Metric selects which daily score a habit is compared against
type Metric string

const (
	MetricProductivity Metric = "productivity"
	MetricMood         Metric = "mood"
)

// ParseMetric returns the metric named by s and whether it was recognized.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricProductivity:
		return MetricProductivity, true
	case MetricMood:
		return MetricMood, true
	default:
		return "", false
	}
}

// Label returns a display label for the metric
func (m Metric) Label() string {
	switch m {
	case MetricMood:
		return "Mood"
	default:
		return "Productivity"
	}
}
