package balance_chart

import (
	"errors"
	"image/color"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/datefmt"
	"account-chart/internal/features/currency"
)

// Canvas is the name of the account history chart; the PNG is written as <Canvas>.png.
const Canvas = "account_history_chart"

// SeriesColor is the line and point colour, rgb(35, 209, 96).
var SeriesColor = color.RGBA{R: 35, G: 209, B: 96, A: 255}

// ErrEmptySeries is returned when a config has no points to draw.
var ErrEmptySeries = errors.New("line chart has no data points")

// LabelFormatter renders a category label, e.g. an x axis tick or a tooltip title.
type LabelFormatter func(label string) (string, error)

// ValueFormatter renders a numeric value, e.g. a y axis tick.
type ValueFormatter func(value float64) string

// Title is an axis title.
type Title struct {
	Text     string
	Color    color.Color
	FontSize float64
}

// Axis configures one axis. Only the y axis uses the numeric fields.
type Axis struct {
	Display      bool
	Title        Title
	TickColor    color.Color
	BeginAtZero  bool
	SuggestedMax *float64
	StepSize     *float64

	LabelFormat LabelFormatter // x axis
	ValueFormat ValueFormatter // y axis
}

// Tooltip formats the caption shown for a hovered point.
type Tooltip struct {
	Title LabelFormatter
	Label func(seriesLabel string, value float64) string
}

// Series is one line of the chart.
type Series struct {
	Label   string
	Values  []float64
	Color   color.Color
	Fill    bool
	Tension float64
}

// LineChartConfig describes a line chart declaratively; a Renderer turns it into an image.
type LineChartConfig struct {
	Canvas string
	Labels []string
	Series Series
	XAxis  Axis
	YAxis  Axis

	Tooltip Tooltip

	Width  int
	Height int
}

// Renderer draws a line chart and returns the path of the output.
type Renderer interface {
	RenderLineChart(cfg LineChartConfig) (string, error)
}

// NewAccountHistoryConfig builds the balance chart for h:
// one green "Balance" series, dates on x, US dollars on y starting at zero.
func NewAccountHistoryConfig(h *history.BalanceHistory) LineChartConfig {
	return LineChartConfig{
		Canvas: Canvas,
		Labels: h.Labels,
		Series: Series{
			Label:   "Balance",
			Values:  h.Values,
			Color:   SeriesColor,
			Fill:    false,
			Tension: 0,
		},
		XAxis: Axis{
			Display:     true,
			Title:       Title{Text: "Date", Color: color.Black, FontSize: 16},
			TickColor:   color.Black,
			LabelFormat: datefmt.Format,
		},
		YAxis: Axis{
			Display:      true,
			Title:        Title{Text: "Balance (USD)", Color: color.Black, FontSize: 16},
			TickColor:    color.Black,
			BeginAtZero:  true,
			SuggestedMax: h.ChartMax,
			StepSize:     h.StepVal,
			ValueFormat:  currency.FormatUSD,
		},
		Tooltip: Tooltip{
			Title: datefmt.Format,
			Label: TooltipLabel,
		},
	}
}

// TooltipLabel renders "<series>: <USD value>", dropping the prefix for an unnamed series.
func TooltipLabel(seriesLabel string, value float64) string {
	label := seriesLabel
	if label != "" {
		label += ": "
	}
	return label + currency.FormatUSD(value)
}
