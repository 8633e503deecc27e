package commands

// Root command for Cobra CLI
// Registers all subcommands (render, table, export, bot)
// Opens the log file before any subcommand runs

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/infra/config"
	logging "account-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "account-chart",
	Short: "Account Chart - balance history charts for a single account",
	Long: `Account Chart fetches an account's balance history and renders it as a
"Balance" line chart with USD ticks and human readable dates. The same data can
be printed as a table, exported to XLSX or posted to Telegram on a schedule.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return logging.Init(cfg.App.LogsDir)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("logs-dir", "", "directory for app.log (default logs)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(botCmd)
}

// addHistoryFlags registers the flags shared by every command that fetches the history.
func addHistoryFlags(flags *pflag.FlagSet) {
	flags.String("url", "", "balance history endpoint (env: HISTORY_URL)")
	flags.Int("retries", 0, "retries for 429/5xx responses (default 2, 0 disables)")
	flags.Int("timeout", 0, "request timeout in seconds (default 10)")
}

func newHistoryClient(cfg *config.Config) *history.Client {
	return history.NewClient(history.Options{
		Timeout:         cfg.History.Timeout(),
		MaxRetries:      cfg.History.MaxRetries,
		MaxResponseSize: cfg.History.MaxResponseSize,
		RateLimit:       cfg.History.RateLimit,
	})
}
