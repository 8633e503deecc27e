package commands

// Command to print the balance history as a console table

import (
	"os"

	"account-chart/internal/features/report"
	"account-chart/internal/infra/config"

	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the balance history as a table",
	RunE:  runTable,
}

func init() {
	flags := tableCmd.Flags()
	addHistoryFlags(flags)
	flags.Bool("from-file", false, "read <data-dir>/balance_history.json instead of fetching")
	flags.String("data-dir", "", "snapshot directory (default data_out)")
	flags.Bool("color", isTerminal(), "colour balance changes")
}

func runTable(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	h, err := loadHistory(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	color, _ := cmd.Flags().GetBool("color")
	return report.RenderHistoryTable(cmd.OutOrStdout(), h, report.TableOptions{Color: color})
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
