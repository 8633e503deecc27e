package balance_chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/datefmt"
)

func ptr(v float64) *float64 { return &v }

func sampleHistory() *history.BalanceHistory {
	return &history.BalanceHistory{
		Labels: []string{"01-01-2024", "01-11-2024", "01-21-2024", "02-01-2024"},
		Values: []float64{100, 250.75, 180, 320},
	}
}

func TestNewAccountHistoryConfig(t *testing.T) {
	h := sampleHistory()
	h.ChartMax = ptr(500)
	cfg := NewAccountHistoryConfig(h)

	if cfg.Canvas != "account_history_chart" {
		t.Errorf("Canvas = %q", cfg.Canvas)
	}
	if cfg.Series.Label != "Balance" || cfg.Series.Fill || cfg.Series.Tension != 0 {
		t.Errorf("Series = %+v", cfg.Series)
	}
	if cfg.Series.Color != (color.RGBA{35, 209, 96, 255}) {
		t.Errorf("Series.Color = %v", cfg.Series.Color)
	}
	if !cfg.YAxis.BeginAtZero {
		t.Error("y axis must begin at zero")
	}
	if cfg.YAxis.SuggestedMax == nil || *cfg.YAxis.SuggestedMax != 500 {
		t.Errorf("SuggestedMax = %v", cfg.YAxis.SuggestedMax)
	}
	if cfg.XAxis.Title.Text != "Date" || cfg.YAxis.Title.Text != "Balance (USD)" {
		t.Errorf("titles = %q, %q", cfg.XAxis.Title.Text, cfg.YAxis.Title.Text)
	}

	tick, err := cfg.XAxis.LabelFormat("01-11-2024")
	if err != nil || tick != "January 11st, 2024" {
		t.Errorf("x tick = %q, %v", tick, err)
	}
	if got := cfg.YAxis.ValueFormat(1500); got != "$1,500.00" {
		t.Errorf("y tick = %q", got)
	}
	title, err := cfg.Tooltip.Title("02-01-2024")
	if err != nil || title != "February 1st, 2024" {
		t.Errorf("tooltip title = %q, %v", title, err)
	}
	if got := cfg.Tooltip.Label(cfg.Series.Label, 320); got != "Balance: $320.00" {
		t.Errorf("tooltip label = %q", got)
	}
}

func TestTooltipLabel_NoSeriesLabel(t *testing.T) {
	if got := TooltipLabel("", 12.5); got != "$12.50" {
		t.Errorf("TooltipLabel = %q", got)
	}
}

func TestComputeScale(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		axis   Axis
		want   AxisScale
	}{
		{"begin at zero", []float64{100, 150.5}, Axis{BeginAtZero: true}, AxisScale{0, 160, 20}},
		{"suggested max", []float64{100, 150.5}, Axis{BeginAtZero: true, SuggestedMax: ptr(200)}, AxisScale{0, 200, 50}},
		{"suggested max below data", []float64{100, 150.5}, Axis{BeginAtZero: true, SuggestedMax: ptr(50)}, AxisScale{0, 160, 20}},
		{"step size", []float64{0, 120}, Axis{BeginAtZero: true, StepSize: ptr(50)}, AxisScale{0, 150, 50}},
		{"negative balance", []float64{-30, 40}, Axis{BeginAtZero: true}, AxisScale{-30, 40, 10}},
		{"flat zero", []float64{0, 0}, Axis{BeginAtZero: true}, AxisScale{0, 1, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeScale(tt.values, tt.axis)
			if err != nil {
				t.Fatalf("ComputeScale: %v", err)
			}
			if !near(got.Min, tt.want.Min) || !near(got.Max, tt.want.Max) || !near(got.Step, tt.want.Step) {
				t.Errorf("ComputeScale = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeScale_TinyStepIgnored(t *testing.T) {
	got, err := ComputeScale([]float64{0, 10000}, Axis{BeginAtZero: true, StepSize: ptr(1)})
	if err != nil {
		t.Fatalf("ComputeScale: %v", err)
	}
	if got.Step == 1 {
		t.Errorf("step_val of 1 over a 10000 range should be replaced, got %+v", got)
	}
}

func TestAxisScale_Ticks(t *testing.T) {
	ticks := AxisScale{Min: 0, Max: 200, Step: 50}.Ticks()
	want := []float64{0, 50, 100, 150, 200}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks = %v", ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("Ticks[%d] = %v, want %v", i, ticks[i], want[i])
		}
	}
}

func TestComputeScale_Overflow(t *testing.T) {
	tests := []struct {
		name string
		h    *history.BalanceHistory
	}{
		{"chart_max near MaxFloat64", &history.BalanceHistory{
			Labels:   []string{"01-01-2024", "01-02-2024"},
			Values:   []float64{1, 2},
			ChartMax: ptr(1.7e308),
		}},
		{"span overflows", &history.BalanceHistory{
			Labels: []string{"01-01-2024", "01-02-2024"},
			Values: []float64{-1e308, 1e308},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.h.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			cfg := NewAccountHistoryConfig(tt.h)
			if _, err := ComputeScale(cfg.Series.Values, cfg.YAxis); !errors.Is(err, ErrScaleOverflow) {
				t.Errorf("ComputeScale err = %v, want ErrScaleOverflow", err)
			}
			r := NewPNGRenderer(t.TempDir(), 800, 450, "")
			if _, err := r.Draw(cfg); !errors.Is(err, ErrScaleOverflow) {
				t.Errorf("Draw err = %v, want ErrScaleOverflow", err)
			}
		})
	}
}

func TestAxisScale_TicksRejectsBadScale(t *testing.T) {
	bad := []AxisScale{
		{Min: 0, Max: math.Inf(1), Step: 1},
		{Min: 0, Max: 1, Step: math.NaN()},
		{Min: 10, Max: 0, Step: 1},
		{Min: 0, Max: 1e6, Step: 1},
	}
	for _, s := range bad {
		if ticks := s.Ticks(); ticks != nil {
			t.Errorf("%+v.Ticks() = %d ticks, want nil", s, len(ticks))
		}
	}
}

func TestComputeScale_StepSizeAtGridLimit(t *testing.T) {
	got, err := ComputeScale([]float64{0.5, 199.5}, Axis{BeginAtZero: true, StepSize: ptr(1)})
	if err != nil {
		t.Fatalf("ComputeScale: %v", err)
	}
	if got.Step != 1 {
		t.Errorf("Step = %v, want 1", got.Step)
	}
	if n := len(got.Ticks()); n != 201 {
		t.Errorf("Ticks = %d, want 201", n)
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestDraw_ProducesChart(t *testing.T) {
	r := NewPNGRenderer(t.TempDir(), 800, 450, "")
	img, err := r.Draw(NewAccountHistoryConfig(sampleHistory()))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 800, 450) {
		t.Errorf("Bounds = %v", img.Bounds())
	}
	if !containsColor(img, SeriesColor) {
		t.Error("chart has no pixel in the series colour")
	}
}

func TestDraw_SinglePoint(t *testing.T) {
	h := &history.BalanceHistory{Labels: []string{"03-03-2024"}, Values: []float64{42}}
	r := NewPNGRenderer(t.TempDir(), 800, 450, "")
	if _, err := r.Draw(NewAccountHistoryConfig(h)); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

func TestDraw_FormatErrorPropagates(t *testing.T) {
	h := sampleHistory()
	h.Labels[2] = "13-01-2024"
	r := NewPNGRenderer(t.TempDir(), 800, 450, "")

	_, err := r.Draw(NewAccountHistoryConfig(h))
	var fe *datefmt.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *datefmt.FormatError", err)
	}
	if fe.Input != "13-01-2024" {
		t.Errorf("FormatError.Input = %q", fe.Input)
	}
}

func TestDraw_EmptySeries(t *testing.T) {
	r := NewPNGRenderer(t.TempDir(), 800, 450, "")
	_, err := r.Draw(NewAccountHistoryConfig(&history.BalanceHistory{}))
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}

func TestDraw_MismatchedSeries(t *testing.T) {
	cfg := NewAccountHistoryConfig(sampleHistory())
	cfg.Series.Values = cfg.Series.Values[:2]
	r := NewPNGRenderer(t.TempDir(), 800, 450, "")
	if _, err := r.Draw(cfg); err == nil {
		t.Error("expected error for mismatched labels and values")
	}
}

func TestRenderLineChart_WritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	var renderer Renderer = NewPNGRenderer(dir, 800, 450, "")

	path, err := renderer.RenderLineChart(NewAccountHistoryConfig(sampleHistory()))
	if err != nil {
		t.Fatalf("RenderLineChart: %v", err)
	}
	if path != filepath.Join(dir, "account_history_chart.png") {
		t.Errorf("path = %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "png" || cfg.Width != 800 || cfg.Height != 450 {
		t.Errorf("decoded %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestRenderLineChart_Concurrent(t *testing.T) {
	dir := t.TempDir()
	r := NewPNGRenderer(dir, 400, 225, "")
	cfg := NewAccountHistoryConfig(sampleHistory())

	var wg sync.WaitGroup
	errs := make(chan error, 4*10)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				path, err := r.RenderLineChart(cfg)
				if err != nil {
					errs <- err
					continue
				}
				f, err := os.Open(path)
				if err != nil {
					errs <- err
					continue
				}
				_, err = png.Decode(f)
				f.Close()
				if err != nil {
					errs <- fmt.Errorf("decode %s: %w", path, err)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp")); len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func containsColor(img image.Image, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)).(color.RGBA) == want {
				return true
			}
		}
	}
	return false
}
