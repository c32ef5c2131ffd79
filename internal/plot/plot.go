// Package plot renders analytics charts as PNG images.
package plot

import (
	"encoding/base64"
	"time"

	"github.com/julianstephens/habitlens/internal/series"
)

// ScatterInput describes a habit-vs-metric scatter chart
type ScatterInput struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
	// Trend is drawn across the x range when set.
	Trend *series.Line
}

// TimeSeriesInput describes a dual-axis line chart over shared dates
type TimeSeriesInput struct {
	Title      string
	Dates      []time.Time
	Left       []float64
	LeftLabel  string
	Right      []float64
	RightLabel string
}

// Renderer draws charts. Implementations must be safe for concurrent use.
type Renderer interface {
	Scatter(in ScatterInput) ([]byte, error)
	TimeSeries(in TimeSeriesInput) ([]byte, error)
}

// DataURI embeds a PNG in a data URI, or returns "" for an empty image.
func DataURI(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
