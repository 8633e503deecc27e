package report

import (
	"fmt"
	"io"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/datefmt"
	"account-chart/internal/features/currency"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableOptions controls RenderHistoryTable.
type TableOptions struct {
	Color bool // colour positive and negative changes
}

// RenderHistoryTable prints one row per point: date, balance and change from the previous point.
// A label the date formatter rejects aborts the table.
func RenderHistoryTable(w io.Writer, h *history.BalanceHistory, opts TableOptions) error {
	if err := h.Validate(); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Date", "Balance", "Change"})

	for i, label := range h.Labels {
		date, err := datefmt.Format(label)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		change := ""
		if i > 0 {
			change = formatChange(h.Values[i]-h.Values[i-1], opts.Color)
		}
		t.AppendRow(table.Row{i + 1, date, currency.FormatUSD(h.Values[i]), change})
	}

	t.AppendSeparator()
	first, last := h.Values[0], h.Values[len(h.Values)-1]
	latestLabel, latestValue := "Latest", currency.FormatUSD(last)
	if opts.Color {
		latestLabel, latestValue = text.Bold.Sprint(latestLabel), text.Bold.Sprint(latestValue)
	}
	t.AppendFooter(table.Row{"", latestLabel, latestValue, formatChange(last-first, opts.Color)})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	t.Render()
	return nil
}

func formatChange(delta float64, color bool) string {
	s := currency.FormatUSD(delta)
	if delta > 0 {
		s = "+" + s
	}
	if !color {
		return s
	}
	switch {
	case delta > 0:
		return text.FgGreen.Sprint(s)
	case delta < 0:
		return text.FgRed.Sprint(s)
	}
	return s
}
