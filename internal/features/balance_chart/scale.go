package balance_chart

import (
	"errors"
	"fmt"
	"math"
)

const (
	maxYTicks = 8
	// a step_val that would produce more gridlines than this is ignored
	maxGridLines = 200
)

// ErrScaleOverflow is returned when the values span more than float64 can represent.
var ErrScaleOverflow = errors.New("y axis range overflows")

// AxisScale is the numeric range of the y axis and the distance between gridlines.
type AxisScale struct {
	Min, Max, Step float64
}

// Ticks returns the gridline values from Min to Max inclusive.
// A scale that is not finite or would need more than maxGridLines intervals yields nil.
func (s AxisScale) Ticks() []float64 {
	span := (s.Max - s.Min) / s.Step
	if math.IsNaN(span) || math.IsInf(span, 0) || span < 0 || span > maxGridLines {
		return nil
	}
	n := int(math.Round(span))
	ticks := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		ticks = append(ticks, s.Min+float64(i)*s.Step)
	}
	return ticks
}

// ComputeScale fits the y axis around values, honouring BeginAtZero, SuggestedMax and StepSize.
// Values whose span overflows float64 give ErrScaleOverflow.
func ComputeScale(values []float64, axis Axis) (AxisScale, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(values) == 0 {
		lo, hi = 0, 0
	}

	if axis.BeginAtZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if axis.SuggestedMax != nil && *axis.SuggestedMax > hi {
		hi = *axis.SuggestedMax
	}
	if hi == lo {
		pad := math.Abs(hi) * 0.1
		if pad == 0 {
			pad = 1
		}
		hi += pad
		if !axis.BeginAtZero || lo != 0 {
			lo -= pad
		}
	}

	if !finite(lo) || !finite(hi) || !finite(hi-lo) {
		return AxisScale{}, fmt.Errorf("%w: [%g, %g]", ErrScaleOverflow, lo, hi)
	}

	step := 0.0
	if axis.StepSize != nil && *axis.StepSize > 0 && gridLines(lo, hi, *axis.StepSize) <= maxGridLines {
		step = *axis.StepSize
	} else {
		step = niceStep((hi - lo) / maxYTicks)
	}

	scale := AxisScale{
		Min:  math.Floor(lo/step) * step,
		Max:  math.Ceil(hi/step) * step,
		Step: step,
	}
	if !finite(scale.Min) || !finite(scale.Max) || !finite(scale.Step) || !finite(scale.Max-scale.Min) {
		return AxisScale{}, fmt.Errorf("%w: [%g, %g]", ErrScaleOverflow, lo, hi)
	}
	return scale, nil
}

// gridLines counts the intervals between the rounded axis ends for step.
func gridLines(lo, hi, step float64) float64 {
	return math.Ceil(hi/step) - math.Floor(lo/step)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}
