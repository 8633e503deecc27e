//go:build integration

package tests

import (
	"context"
	"os"
	"testing"
	"time"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/features/balance_chart"
)

func historyURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("HISTORY_URL")
	if url == "" {
		t.Skip("HISTORY_URL not set")
	}
	return url
}

func TestIntegration_FetchHistory(t *testing.T) {
	client := history.NewClient(history.Options{Timeout: 15 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := client.FetchHistory(ctx, historyURL(t))
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if h.Len() == 0 {
		t.Fatalf("expected at least one point")
	}
	t.Logf("fetched %d points, latest %s", h.Len(), h.Labels[h.Len()-1])
}

func TestIntegration_RenderChart(t *testing.T) {
	p := &balance_chart.Pipeline{
		Fetcher:  history.NewClient(history.Options{}),
		Renderer: balance_chart.NewPNGRenderer(t.TempDir(), 0, 0, ""),
		URL:      historyURL(t),
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if fi, err := os.Stat(res.ChartPath); err != nil || fi.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}
}
