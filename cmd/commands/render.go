package commands

// Command to fetch the balance history once and render the chart PNG

import (
	"context"
	"fmt"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/features/balance_chart"
	"account-chart/internal/infra/config"
	"account-chart/internal/infra/fs"
	logging "account-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch the balance history and render account_history_chart.png",
	Long: `Fetch {labels, values, chart_max?, step_val?} from --url and draw the
"Balance" line chart. The chart is written to <out>/account_history_chart.png.`,
	RunE: runRender,
}

func init() {
	flags := renderCmd.Flags()
	addHistoryFlags(flags)
	flags.String("out", "", "chart output directory (default etc/charts)")
	flags.Int("width", 0, "chart width in pixels (default 1600)")
	flags.Int("height", 0, "chart height in pixels (default 900)")
	flags.String("font", "", "path to a TTF font")
	flags.Bool("save-data", false, "save the fetched history to <data-dir>/balance_history.json")
	flags.String("data-dir", "", "snapshot directory (default data_out)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateHistory(); err != nil {
		return err
	}

	p := newPipeline(cfg, newHistoryClient(cfg))
	if save, _ := cmd.Flags().GetBool("save-data"); save {
		p.SnapshotDir = cfg.App.DataDir
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		logging.LogError("Failed to render balance chart", zap.String("url", cfg.History.URL), zap.Error(err))
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.ChartPath)
	return nil
}

func newPipeline(cfg *config.Config, client *history.Client) *balance_chart.Pipeline {
	return &balance_chart.Pipeline{
		Fetcher:  client,
		Renderer: balance_chart.NewPNGRenderer(cfg.Chart.OutputDir, cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.FontPath),
		URL:      cfg.History.URL,
	}
}

// loadHistory reads the saved snapshot when --from-file is set, otherwise fetches --url.
func loadHistory(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*history.BalanceHistory, error) {
	if fromFile, _ := cmd.Flags().GetBool("from-file"); fromFile {
		snap, err := fs.LoadHistorySnapshot(cfg.App.DataDir)
		if err != nil {
			return nil, err
		}
		logging.LogInfo("Using saved balance history",
			zap.String("source", snap.Source),
			zap.String("fetchedAt", snap.FetchedAt))
		return snap.History, nil
	}

	if err := cfg.ValidateHistory(); err != nil {
		return nil, err
	}
	return newHistoryClient(cfg).FetchHistory(ctx, cfg.History.URL)
}
