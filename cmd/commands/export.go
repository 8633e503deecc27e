package commands

// Command to export the balance history to an XLSX workbook

import (
	"fmt"

	"account-chart/internal/features/export"
	"account-chart/internal/infra/config"
	logging "account-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the balance history to XLSX",
	RunE:  runExport,
}

func init() {
	flags := exportCmd.Flags()
	addHistoryFlags(flags)
	flags.String("xlsx", "balance_history.xlsx", "output workbook path")
	flags.Bool("from-file", false, "read <data-dir>/balance_history.json instead of fetching")
	flags.String("data-dir", "", "snapshot directory (default data_out)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	h, err := loadHistory(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("xlsx")
	if err := export.WriteHistoryXLSX(path, h); err != nil {
		return err
	}

	logging.LogSuccess("Balance history exported", zap.String("path", path), zap.Int("rows", h.Len()))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
