package analytics

import (
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/habitlens/internal/config"
	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/models"
)

// Query keys read by ParseControls
const (
	KeyWindow    = "window"
	KeyStd       = "std"
	KeyMetric    = "metric"
	KeyNormalize = "normalize"
)

// Controls parameterize one analytics request
type Controls struct {
	Window       int           `json:"window"`
	StdThreshold float64       `json:"std"`
	Metric       models.Metric `json:"metric"`
	Normalize    bool          `json:"normalize"`
}

// DefaultControls returns the built-in controls
func DefaultControls() Controls {
	return Controls{
		Window:       constants.DefaultWindow,
		StdThreshold: constants.DefaultStdThreshold,
		Metric:       models.Metric(constants.DefaultMetric),
		Normalize:    constants.DefaultNormalize,
	}
}

// DefaultsFromConfig returns controls seeded from the analytics config
// section. Invalid config values keep the built-in default.
func DefaultsFromConfig(cfg config.AnalyticsConfig) Controls {
	c := DefaultControls()
	if cfg.Window >= 1 {
		c.Window = cfg.Window
	}
	if cfg.Std > 0 && !math.IsInf(cfg.Std, 0) {
		c.StdThreshold = cfg.Std
	}
	if m, ok := models.ParseMetric(cfg.Metric); ok {
		c.Metric = m
	}
	c.Normalize = cfg.Normalize
	return c
}

// ParseControls reads controls through get, such as gin's c.Query or
// url.Values.Get, falling back to the built-in defaults.
func ParseControls(get func(key string) string) Controls {
	return DefaultControls().Parse(get)
}

// Parse reads controls through get using c as the defaults. Values that are
// missing or invalid fall back silently.
func (c Controls) Parse(get func(key string) string) Controls {
	out := c

	if v := strings.TrimSpace(get(KeyWindow)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			out.Window = n
		}
	}

	if v := strings.TrimSpace(get(KeyStd)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && !math.IsInf(f, 0) {
			out.StdThreshold = f
		}
	}

	if m, ok := models.ParseMetric(get(KeyMetric)); ok {
		out.Metric = m
	}

	if v := strings.TrimSpace(get(KeyNormalize)); v != "" {
		switch strings.ToLower(v) {
		case "on", "yes":
			out.Normalize = true
		case "off", "no":
			out.Normalize = false
		default:
			if b, err := strconv.ParseBool(v); err == nil {
				out.Normalize = b
			}
		}
	}

	return out
}
