package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"account-chart/internal/infra/log"

	"go.uber.org/zap"
)

// ErrInvalidPayload is returned for JSON that decodes but cannot be charted.
var ErrInvalidPayload = errors.New("invalid balance history payload")

// BalanceHistory is the payload served by the account graph data endpoint.
// Labels are month-day-year dates, one balance per label.
type BalanceHistory struct {
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	ChartMax *float64  `json:"chart_max,omitempty"` // suggested y axis ceiling
	StepVal  *float64  `json:"step_val,omitempty"`  // y axis tick step
}

// Len returns the number of points.
func (h *BalanceHistory) Len() int {
	return len(h.Labels)
}

// Latest returns the last label and value. ok is false for an empty history.
func (h *BalanceHistory) Latest() (label string, value float64, ok bool) {
	if h.Len() == 0 {
		return "", 0, false
	}
	return h.Labels[h.Len()-1], h.Values[h.Len()-1], true
}

// Validate checks the invariants the chart relies on.
func (h *BalanceHistory) Validate() error {
	if len(h.Labels) != len(h.Values) {
		return fmt.Errorf("%w: %d labels but %d values", ErrInvalidPayload, len(h.Labels), len(h.Values))
	}
	if len(h.Labels) == 0 {
		return fmt.Errorf("%w: no data points", ErrInvalidPayload)
	}
	for i, v := range h.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: value %d is not finite", ErrInvalidPayload, i)
		}
	}
	if h.ChartMax != nil && *h.ChartMax < 0 {
		return fmt.Errorf("%w: chart_max %v is negative", ErrInvalidPayload, *h.ChartMax)
	}
	if h.StepVal != nil && *h.StepVal <= 0 {
		return fmt.Errorf("%w: step_val %v must be positive", ErrInvalidPayload, *h.StepVal)
	}
	return nil
}

// Decode parses and validates a payload. The body must be exactly one JSON value;
// trailing data is a decode error.
func Decode(data []byte) (*BalanceHistory, error) {
	var h BalanceHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to decode balance history JSON: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

// FetchHistory performs the single GET for url and decodes the result.
func (c *Client) FetchHistory(ctx context.Context, url string) (*BalanceHistory, error) {
	start := time.Now()

	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("history fetch failed: %w", err)
	}

	h, err := Decode(body)
	if err != nil {
		log.LogError("Balance history payload rejected", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("history fetch failed: %w", err)
	}

	log.LogInfo("Balance history fetched",
		zap.String("url", url),
		zap.Int("points", h.Len()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return h, nil
}
