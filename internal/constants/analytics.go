package constants

const (
	// Request control defaults
	DefaultWindow       = 1
	DefaultStdThreshold = 3.0
	DefaultMetric       = "productivity"
	DefaultNormalize    = false
	DefaultMaxWorkers   = 4

	// MinSeriesPoints is the smallest series correlation and trend fitting are defined for.
	MinSeriesPoints = 2
	// OutlierFilterMinRows: outlier filtering runs only on series longer than this.
	OutlierFilterMinRows = 5

	// Normalized habit values are scaled into [NormalizeLow, NormalizeHigh].
	NormalizeLow  = 1.0
	NormalizeHigh = 10.0

	// Plot defaults
	DefaultPlotWidth  = 640
	DefaultPlotHeight = 480

	// NotAvailable is shown in place of an undefined correlation.
	NotAvailable = "N/A"
)
