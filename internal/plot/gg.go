package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/julianstephens/habitlens/internal/constants"
)

var (
	ErrEmptyData        = errors.New("no data to plot")
	ErrMismatchedLength = errors.New("plot columns have different lengths")
)

var (
	colorBackground = color.White
	colorAxis       = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF}
	colorGrid       = color.NRGBA{R: 0xE5, G: 0xE5, B: 0xE5, A: 0xFF}
	colorHabit      = color.NRGBA{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF}
	colorMetric     = color.NRGBA{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF}
	colorTrend      = color.NRGBA{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF}
)

const (
	marginLeft   = 64.0
	marginRight  = 64.0
	marginTop    = 40.0
	marginBottom = 56.0
	tickCount    = 5
	fontSize     = 12.0
)

// Options configures the gg renderer
type Options struct {
	Width  int
	Height int
	// FontPath optionally points at a TrueType font; empty uses basicfont.
	FontPath string
}

// GGRenderer draws charts with fogleman/gg
type GGRenderer struct {
	width  int
	height int
	ttf    *truetype.Font
}

var _ Renderer = (*GGRenderer)(nil)

// NewRenderer builds a renderer, parsing the optional font once.
func NewRenderer(opts Options) (*GGRenderer, error) {
	if opts.Width <= 0 {
		opts.Width = constants.DefaultPlotWidth
	}
	if opts.Height <= 0 {
		opts.Height = constants.DefaultPlotHeight
	}

	r := &GGRenderer{width: opts.Width, height: opts.Height}
	if strings.TrimSpace(opts.FontPath) != "" {
		fontBytes, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		parsed, err := truetype.Parse(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TTF: %w", err)
		}
		r.ttf = parsed
	}
	return r, nil
}

// face returns a fresh font face; truetype faces cache glyphs and are not
// safe to share between goroutines.
func (r *GGRenderer) face() font.Face {
	if r.ttf == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(r.ttf, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// frame maps data coordinates onto the plot area
type frame struct {
	x0, x1, y0, y1 float64 // pixel bounds of the plot area
	minX, maxX     float64
	minY, maxY     float64
}

func (f frame) px(x float64) float64 {
	return f.x0 + (x-f.minX)/(f.maxX-f.minX)*(f.x1-f.x0)
}

func (f frame) py(y float64) float64 {
	return f.y1 - (y-f.minY)/(f.maxY-f.minY)*(f.y1-f.y0)
}

func (f frame) withY(minY, maxY float64) frame {
	f.minY, f.maxY = minY, maxY
	return f
}

// bounds returns a padded finite range covering xs
func bounds(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func (r *GGRenderer) newContext(title string) (*gg.Context, frame) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(r.face())

	dc.SetColor(colorAxis)
	dc.DrawStringAnchored(title, float64(r.width)/2, marginTop/2, 0.5, 0.5)

	return dc, frame{
		x0: marginLeft,
		x1: float64(r.width) - marginRight,
		y0: marginTop,
		y1: float64(r.height) - marginBottom,
	}
}

func drawGridAndLeftAxis(dc *gg.Context, f frame, label string) {
	dc.SetLineWidth(1)
	for i := 0; i <= tickCount; i++ {
		v := f.minY + float64(i)*(f.maxY-f.minY)/tickCount
		y := f.py(v)
		dc.SetColor(colorGrid)
		dc.DrawLine(f.x0, y, f.x1, y)
		dc.Stroke()
		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(formatTick(v), f.x0-6, y, 1, 0.5)
	}

	dc.SetColor(colorAxis)
	dc.DrawLine(f.x0, f.y0, f.x0, f.y1)
	dc.DrawLine(f.x0, f.y1, f.x1, f.y1)
	dc.Stroke()

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 14, (f.y0+f.y1)/2)
	dc.DrawStringAnchored(label, 14, (f.y0+f.y1)/2, 0.5, 0.5)
	dc.Pop()
}

func drawRightAxis(dc *gg.Context, f frame, label string, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(1)
	dc.DrawLine(f.x1, f.y0, f.x1, f.y1)
	dc.Stroke()
	for i := 0; i <= tickCount; i++ {
		v := f.minY + float64(i)*(f.maxY-f.minY)/tickCount
		dc.DrawStringAnchored(formatTick(v), f.x1+6, f.py(v), 0, 0.5)
	}

	w := float64(dc.Width())
	dc.Push()
	dc.RotateAbout(gg.Radians(90), w-14, (f.y0+f.y1)/2)
	dc.DrawStringAnchored(label, w-14, (f.y0+f.y1)/2, 0.5, 0.5)
	dc.Pop()
}

func formatTick(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Scatter draws y against x with an optional trend line.
func (r *GGRenderer) Scatter(in ScatterInput) ([]byte, error) {
	if len(in.X) == 0 {
		return nil, ErrEmptyData
	}
	if len(in.X) != len(in.Y) {
		return nil, ErrMismatchedLength
	}

	dc, f := r.newContext(in.Title)
	f.minX, f.maxX = bounds(in.X)
	f.minY, f.maxY = bounds(in.Y)

	drawGridAndLeftAxis(dc, f, in.YLabel)
	for i := 0; i <= tickCount; i++ {
		v := f.minX + float64(i)*(f.maxX-f.minX)/tickCount
		dc.DrawStringAnchored(formatTick(v), f.px(v), f.y1+14, 0.5, 0.5)
	}
	dc.DrawStringAnchored(in.XLabel, (f.x0+f.x1)/2, float64(r.height)-14, 0.5, 0.5)

	dc.SetColor(colorHabit)
	for i := range in.X {
		if math.IsNaN(in.X[i]) || math.IsNaN(in.Y[i]) {
			continue
		}
		dc.DrawCircle(f.px(in.X[i]), f.py(in.Y[i]), 4)
		dc.Fill()
	}

	if in.Trend != nil {
		dc.Push()
		dc.DrawRectangle(f.x0, f.y0, f.x1-f.x0, f.y1-f.y0)
		dc.Clip()
		dc.SetColor(colorTrend)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.DrawLine(f.px(f.minX), f.py(in.Trend.At(f.minX)), f.px(f.maxX), f.py(in.Trend.At(f.maxX)))
		dc.Stroke()
		dc.Pop()
	}

	return encode(dc)
}

// TimeSeries draws Left on the left axis and Right on the right axis over a shared date axis.
func (r *GGRenderer) TimeSeries(in TimeSeriesInput) ([]byte, error) {
	if len(in.Dates) == 0 {
		return nil, ErrEmptyData
	}
	if len(in.Left) != len(in.Dates) || len(in.Right) != len(in.Dates) {
		return nil, ErrMismatchedLength
	}

	xs := make([]float64, len(in.Dates))
	for i, d := range in.Dates {
		xs[i] = float64(d.Unix())
	}

	dc, f := r.newContext(in.Title)
	f.minX, f.maxX = bounds(xs)
	leftMin, leftMax := bounds(in.Left)
	rightMin, rightMax := bounds(in.Right)
	left := f.withY(leftMin, leftMax)
	right := f.withY(rightMin, rightMax)

	drawGridAndLeftAxis(dc, left, in.LeftLabel)
	drawRightAxis(dc, right, in.RightLabel, colorMetric)

	dc.SetColor(colorAxis)
	for _, i := range dateTickIndexes(len(in.Dates)) {
		dc.DrawStringAnchored(in.Dates[i].Format(constants.DateFormat), f.px(xs[i]), f.y1+14, 0.5, 0.5)
	}

	drawLine(dc, left, xs, in.Left, colorHabit)
	drawLine(dc, right, xs, in.Right, colorMetric)

	return encode(dc)
}

func drawLine(dc *gg.Context, f frame, xs, ys []float64, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(2)
	started := false
	for i := range xs {
		if math.IsNaN(ys[i]) {
			started = false
			continue
		}
		if started {
			dc.LineTo(f.px(xs[i]), f.py(ys[i]))
		} else {
			dc.MoveTo(f.px(xs[i]), f.py(ys[i]))
			started = true
		}
	}
	dc.Stroke()
	for i := range xs {
		if math.IsNaN(ys[i]) {
			continue
		}
		dc.DrawCircle(f.px(xs[i]), f.py(ys[i]), 3)
		dc.Fill()
	}
}

// dateTickIndexes spreads at most three date labels without repeats
func dateTickIndexes(n int) []int {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []int{0}
	case n == 2:
		return []int{0, 1}
	default:
		return []int{0, n / 2, n - 1}
	}
}
