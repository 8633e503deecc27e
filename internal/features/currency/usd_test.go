package currency

import (
	"math"
	"testing"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "$0.00"},
		{"cents", 0.5, "$0.50"},
		{"small", 100, "$100.00"},
		{"thousands", 1234.5, "$1,234.50"},
		{"millions", 1234567.891, "$1,234,567.89"},
		{"negative", -5, "-$5.00"},
		{"negative thousands", -2500.25, "-$2,500.25"},
		{"negative rounds to zero", -0.001, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUSD(tt.amount); got != tt.want {
				t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatUSD_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := FormatUSD(v); got != "$-" {
			t.Errorf("FormatUSD(%v) = %q, want %q", v, got, "$-")
		}
	}
}

func TestUSDSymbol(t *testing.T) {
	if got := USD.Symbol(); got != "$" {
		t.Errorf("Symbol() = %q, want %q", got, "$")
	}
}
