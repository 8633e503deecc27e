package balance_chart

import (
	"context"
	"fmt"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/infra/fs"
	"account-chart/internal/infra/log"

	"go.uber.org/zap"
)

// Fetcher loads a balance history from a URL.
type Fetcher interface {
	FetchHistory(ctx context.Context, url string) (*history.BalanceHistory, error)
}

// Pipeline is the fetch-then-render flow for one account.
type Pipeline struct {
	Fetcher  Fetcher
	Renderer Renderer
	URL      string

	// SnapshotDir, when set, receives balance_history.json after each successful fetch.
	SnapshotDir string
}

// Result is what one pipeline run produced.
type Result struct {
	ChartPath string
	History   *history.BalanceHistory
}

// Run fetches the history and renders it. Any failure is returned; nothing is drawn
// from stale or partial data.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	h, err := p.Fetcher.FetchHistory(ctx, p.URL)
	if err != nil {
		return nil, err
	}

	if p.SnapshotDir != "" {
		path, err := fs.SaveHistorySnapshot(p.SnapshotDir, p.URL, h)
		if err != nil {
			log.LogWarn("Failed to save balance history snapshot", zap.Error(err))
		} else {
			log.LogDebug("Balance history snapshot saved", zap.String("path", path))
		}
	}

	chartPath, err := p.Renderer.RenderLineChart(NewAccountHistoryConfig(h))
	if err != nil {
		return nil, fmt.Errorf("failed to render balance chart: %w", err)
	}
	return &Result{ChartPath: chartPath, History: h}, nil
}
