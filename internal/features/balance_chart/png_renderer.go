package balance_chart

// PNG backend for LineChartConfig built on fogleman/gg.
// Layout, top to bottom: legend and latest-point tooltip, plot area with y gridlines,
// x tick labels, x axis title. The y axis title is drawn rotated on the left.

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"account-chart/internal/infra/fs"
	"account-chart/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 1600
	defaultHeight = 900

	// sizes below are for an 800px wide chart and scale with the width
	baseWidth        = 800.0
	tickFontSize     = 12.0
	headerFontSize   = 14.0
	lineWidth        = 3.0
	pointRadius      = 4.0
	tickLength       = 8.0
	labelGap         = 12.0
	headerHeight     = 70.0
	rightMargin      = 30.0
	bottomLabelSpace = 30.0
)

var (
	backgroundColor = color.White
	gridColor       = color.RGBA{R: 0, G: 0, B: 0, A: 26}
)

// PNGRenderer writes charts as <OutputDir>/<Canvas>.png.
type PNGRenderer struct {
	OutputDir string
	Width     int
	Height    int
	FontPath  string
}

func NewPNGRenderer(outputDir string, width, height int, fontPath string) *PNGRenderer {
	return &PNGRenderer{OutputDir: outputDir, Width: width, Height: height, FontPath: fontPath}
}

// RenderLineChart draws cfg and saves it as PNG.
func (r *PNGRenderer) RenderLineChart(cfg LineChartConfig) (string, error) {
	start := time.Now()

	img, err := r.Draw(cfg)
	if err != nil {
		return "", err
	}

	dir, err := fs.EnsureDir(r.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}

	canvas := cfg.Canvas
	if canvas == "" {
		canvas = Canvas
	}
	filename := filepath.Join(dir, canvas+".png")
	size, err := savePNGAtomic(dir, filename, img)
	if err != nil {
		log.LogError("Failed to save chart", zap.String("filename", filename), zap.Error(err))
		return "", err
	}

	log.LogInfo("Line chart generated successfully",
		zap.String("filename", filename),
		zap.Int64("fileSize", size),
		zap.Int("pointsCount", len(cfg.Labels)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return filename, nil
}

// savePNGAtomic writes img to a unique temp file in dir and renames it onto filename,
// so concurrent renders never expose a truncated chart to a reader of filename.
func savePNGAtomic(dir, filename string, img image.Image) (int64, error) {
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary chart file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := gg.SavePNG(tmpName, img); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to save chart: %w", err)
	}
	size, err := fs.CheckNonEmpty(tmpName)
	if err != nil {
		return 0, err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to set chart permissions: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to move chart into place: %w", err)
	}
	return size, nil
}

// Draw renders cfg into an image without touching the disk.
// Every label goes through the configured formatters before anything is drawn,
// so a formatter error aborts the whole chart.
func (r *PNGRenderer) Draw(cfg LineChartConfig) (image.Image, error) {
	values := cfg.Series.Values
	if len(cfg.Labels) == 0 || len(values) == 0 {
		return nil, ErrEmptySeries
	}
	if len(cfg.Labels) != len(values) {
		return nil, fmt.Errorf("line chart has %d labels but %d values", len(cfg.Labels), len(values))
	}

	xLabels, err := formatLabels(cfg.Labels, cfg.XAxis.LabelFormat)
	if err != nil {
		return nil, fmt.Errorf("x axis tick: %w", err)
	}
	tipTitle, tipLabel, err := latestTooltip(cfg)
	if err != nil {
		return nil, fmt.Errorf("tooltip title: %w", err)
	}

	yScale, err := ComputeScale(values, cfg.YAxis)
	if err != nil {
		return nil, err
	}
	yTicks := yScale.Ticks()
	if len(yTicks) == 0 {
		return nil, fmt.Errorf("%w: no gridlines for %+v", ErrScaleOverflow, yScale)
	}
	yLabels := make([]string, len(yTicks))
	for i, v := range yTicks {
		yLabels[i] = formatValue(v, cfg.YAxis.ValueFormat)
	}

	width, height := r.size(cfg)
	k := float64(width) / baseWidth

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	fontPath, fontOK := findFont(r.FontPath)
	setFont := func(size float64) {
		if fontOK {
			if err := dc.LoadFontFace(fontPath, size*k); err != nil {
				fontOK = false
			}
		}
	}

	// plot area
	setFont(tickFontSize)
	maxYLabel := 0.0
	for _, l := range yLabels {
		w, _ := dc.MeasureString(l)
		maxYLabel = math.Max(maxYLabel, w)
	}
	_, tickTextHeight := dc.MeasureString("0")

	setFont(cfg.YAxis.Title.FontSize)
	_, yTitleHeight := dc.MeasureString(cfg.YAxis.Title.Text)
	setFont(cfg.XAxis.Title.FontSize)
	_, xTitleHeight := dc.MeasureString(cfg.XAxis.Title.Text)

	left := labelGap*k + yTitleHeight + labelGap*k + maxYLabel + (labelGap+tickLength)*k
	right := float64(width) - rightMargin*k
	top := headerHeight * k
	bottom := float64(height) - (bottomLabelSpace*k + tickTextHeight + xTitleHeight + labelGap*k)
	plotW, plotH := right-left, bottom-top
	if plotW <= 0 || plotH <= 0 {
		return nil, fmt.Errorf("chart size %dx%d too small", width, height)
	}

	yPos := func(v float64) float64 {
		return bottom - (v-yScale.Min)/(yScale.Max-yScale.Min)*plotH
	}
	xPos := func(i int) float64 {
		if len(values) == 1 {
			return left + plotW/2
		}
		return left + float64(i)/float64(len(values)-1)*plotW
	}

	drawHeader(dc, cfg, tipTitle, tipLabel, left, k, setFont)

	// y gridlines, ticks and labels
	setFont(tickFontSize)
	dc.SetLineWidth(1)
	for i, v := range yTicks {
		y := yPos(v)
		dc.SetColor(gridColor)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()

		dc.SetColor(colorOr(cfg.YAxis.TickColor, color.Black))
		dc.DrawLine(left-tickLength*k, y, left, y)
		dc.Stroke()
		dc.DrawStringAnchored(yLabels[i], left-(tickLength+labelGap/2)*k, y, 1, 0.35)
	}

	// axes
	dc.SetColor(color.Black)
	dc.SetLineWidth(1.5)
	dc.DrawLine(left, top, left, bottom)
	dc.Stroke()
	dc.DrawLine(left, bottom, right, bottom)
	dc.Stroke()

	// x ticks and labels, thinned out when they would overlap
	every := labelStride(dc, xLabels, plotW, k)
	dc.SetLineWidth(1)
	for i, l := range xLabels {
		if i%every != 0 {
			continue
		}
		x := xPos(i)
		dc.SetColor(colorOr(cfg.XAxis.TickColor, color.Black))
		dc.DrawLine(x, bottom, x, bottom+tickLength*k)
		dc.Stroke()
		dc.DrawStringAnchored(l, x, bottom+(tickLength+labelGap)*k+tickTextHeight/2, 0.5, 0.5)
	}

	// axis titles
	if cfg.XAxis.Display && cfg.XAxis.Title.Text != "" {
		setFont(cfg.XAxis.Title.FontSize)
		dc.SetColor(colorOr(cfg.XAxis.Title.Color, color.Black))
		dc.DrawStringAnchored(cfg.XAxis.Title.Text, left+plotW/2, float64(height)-labelGap*k-xTitleHeight/2, 0.5, 0.5)
	}
	if cfg.YAxis.Display && cfg.YAxis.Title.Text != "" {
		setFont(cfg.YAxis.Title.FontSize)
		dc.SetColor(colorOr(cfg.YAxis.Title.Color, color.Black))
		cx, cy := labelGap*k+yTitleHeight/2, top+plotH/2
		dc.Push()
		dc.RotateAbout(-math.Pi/2, cx, cy)
		dc.DrawStringAnchored(cfg.YAxis.Title.Text, cx, cy, 0.5, 0.5)
		dc.Pop()
	}

	// series
	seriesColor := colorOr(cfg.Series.Color, SeriesColor)
	if cfg.Series.Fill {
		cr, cg, cb, _ := seriesColor.RGBA()
		dc.SetRGBA255(int(cr>>8), int(cg>>8), int(cb>>8), 60)
		dc.MoveTo(xPos(0), yPos(math.Max(yScale.Min, 0)))
		for i, v := range values {
			dc.LineTo(xPos(i), yPos(v))
		}
		dc.LineTo(xPos(len(values)-1), yPos(math.Max(yScale.Min, 0)))
		dc.ClosePath()
		dc.Fill()
	}

	dc.SetColor(seriesColor)
	dc.SetLineWidth(lineWidth * k)
	for i, v := range values {
		if i == 0 {
			dc.MoveTo(xPos(i), yPos(v))
		} else {
			dc.LineTo(xPos(i), yPos(v))
		}
	}
	dc.Stroke()

	for i, v := range values {
		dc.DrawCircle(xPos(i), yPos(v), pointRadius*k)
		dc.Fill()
	}

	return dc.Image(), nil
}

// drawHeader draws the legend and the tooltip of the most recent point.
func drawHeader(dc *gg.Context, cfg LineChartConfig, title, label string, left, k float64, setFont func(float64)) {
	seriesColor := colorOr(cfg.Series.Color, SeriesColor)
	box := 12 * k

	setFont(headerFontSize)
	if cfg.Series.Label != "" {
		w, _ := dc.MeasureString(cfg.Series.Label)
		cx := float64(dc.Width()) / 2
		dc.SetColor(seriesColor)
		dc.DrawRectangle(cx-(box+6*k+w)/2, 14*k, box, box)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(cfg.Series.Label, cx-(box+6*k+w)/2+box+6*k, 14*k+box/2, 0, 0.35)
	}

	if title == "" && label == "" {
		return
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, left, 38*k, 0, 0.35)
	dc.SetColor(seriesColor)
	dc.DrawRectangle(left, 52*k, box, box)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, left+box+6*k, 52*k+box/2, 0, 0.35)
}

func latestTooltip(cfg LineChartConfig) (string, string, error) {
	last := len(cfg.Labels) - 1
	title, err := formatLabel(cfg.Labels[last], cfg.Tooltip.Title)
	if err != nil {
		return "", "", err
	}
	var label string
	if cfg.Tooltip.Label != nil {
		label = cfg.Tooltip.Label(cfg.Series.Label, cfg.Series.Values[last])
	} else {
		label = TooltipLabel(cfg.Series.Label, cfg.Series.Values[last])
	}
	return title, label, nil
}

// labelStride returns n such that drawing every nth label keeps them from overlapping.
func labelStride(dc *gg.Context, labels []string, plotW, k float64) int {
	if len(labels) < 2 {
		return 1
	}
	widest := 0.0
	for _, l := range labels {
		w, _ := dc.MeasureString(l)
		widest = math.Max(widest, w)
	}
	spacing := plotW / float64(len(labels)-1)
	every := int(math.Ceil((widest + labelGap*k) / spacing))
	if every < 1 {
		every = 1
	}
	return every
}

func formatLabels(labels []string, f LabelFormatter) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		s, err := formatLabel(l, f)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func formatLabel(label string, f LabelFormatter) (string, error) {
	if f == nil {
		return label, nil
	}
	return f(label)
}

func formatValue(v float64, f ValueFormatter) string {
	if f == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return f(v)
}

func colorOr(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

func (r *PNGRenderer) size(cfg LineChartConfig) (int, int) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = r.Width
	}
	if h <= 0 {
		h = r.Height
	}
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}
