package export

import (
	"fmt"
	"path/filepath"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/datefmt"
	"account-chart/internal/infra/fs"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported history.
const SheetName = "Balance History"

// usdNumFmt is Excel's "$#,##0.00" style with negatives in red and a leading minus.
const usdNumFmt = `"$"#,##0.00;[Red]\-"$"#,##0.00`

// WriteHistoryXLSX writes h to path with columns Date, Formatted Date and Balance.
func WriteHistoryXLSX(path string, h *history.BalanceHistory) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if _, err := fs.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(usdNumFmt)})
	if err != nil {
		return fmt.Errorf("creating currency style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &[]interface{}{"Date", "Formatted Date", "Balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, label := range h.Labels {
		formatted, err := datefmt.Format(label)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]interface{}{label, formatted, h.Values[i]}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	last := fmt.Sprintf("C%d", len(h.Labels)+1)
	if err := f.SetCellStyle(SheetName, "C2", last, moneyStyle); err != nil {
		return fmt.Errorf("styling balances: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "C", 22); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
