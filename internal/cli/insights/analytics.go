package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/storage"
)

type AnalyticsCmd struct {
	Window    string `short:"w" help:"Centered moving average window (default from config)."`
	Std       string `short:"s" help:"Outlier threshold in standard deviations (default from config)."`
	Metric    string `short:"m" help:"Score to correlate against: productivity or mood."`
	Normalize string `short:"n" help:"Scale habit values into 1-10 (true/false)."`
	All       bool   `short:"a" help:"Analyze every user's habits instead of only yours."`
	Out       string `short:"o" help:"Directory to write plot PNGs into." type:"path"`
	JSON      bool   `help:"Print the report as JSON."`
}

func (c *AnalyticsCmd) get(key string) string {
	switch key {
	case analytics.KeyWindow:
		return c.Window
	case analytics.KeyStd:
		return c.Std
	case analytics.KeyMetric:
		return c.Metric
	case analytics.KeyNormalize:
		return c.Normalize
	}
	return ""
}

func (c *AnalyticsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	scope := storage.Scope{}
	if !c.All {
		user, err := ctx.ActingUser(bg)
		if err != nil {
			return err
		}
		scope.UserID = user.ID
	}

	report, err := ctx.Engine.AnalyzeAll(bg, scope, ctx.Controls.Parse(c.get))
	if err != nil {
		return err
	}

	if c.Out != "" {
		written, err := WritePlots(c.Out, report)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, cli.MutedStyle.Render(fmt.Sprintf("Wrote %d plot(s) to %s", written, c.Out)))
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(FormatControls(report.Controls))
	if len(report.Results) == 0 {
		fmt.Println("Not enough data to analyze yet. Log a habit on at least two days.")
		return nil
	}
	fmt.Println(cli.RenderTable([]string{"Habit", "Samples", "Correlation", "Trend"}, ReportRows(report)))
	if n := len(report.Skipped); n > 0 {
		fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("%d habit(s) skipped for lack of data", n)))
	}
	return nil
}

// FormatControls summarizes the controls a report was computed with
func FormatControls(c analytics.Controls) string {
	return fmt.Sprintf("metric=%s window=%d std=%g normalize=%t", c.Metric, c.Window, c.StdThreshold, c.Normalize)
}

// ReportRows renders one table row per result.
func ReportRows(report analytics.Report) [][]string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		trend := "-"
		if r.Trend != nil {
			trend = fmt.Sprintf("%+.3f/unit", r.Trend.Slope)
		}
		rows = append(rows, []string{r.Habit.Name, strconv.Itoa(r.SampleCount), r.CorrelationText(), trend})
	}
	return rows
}

// PlotFileBase names the files of one habit's plots.
func PlotFileBase(r analytics.Result) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(r.Habit.Name) {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch):
			b.WriteRune(ch)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	id := r.Habit.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.TrimSuffix(b.String(), "-") + "-" + id
}

// WritePlots saves every rendered plot in dir and returns how many were written.
func WritePlots(dir string, report analytics.Report) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create plot directory: %w", err)
	}

	written := 0
	for _, r := range report.Results {
		base := PlotFileBase(r)
		for suffix, png := range map[string][]byte{"scatter": r.ScatterPlot, "timeseries": r.TimeSeriesPlot} {
			if len(png) == 0 {
				continue
			}
			path := filepath.Join(dir, base+"-"+suffix+".png")
			if err := os.WriteFile(path, png, 0644); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", path, err)
			}
			written++
		}
	}
	return written, nil
}
