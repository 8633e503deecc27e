package main

import (
	"fmt"
	"os"

	"account-chart/internal/clients_api/history"
	"account-chart/internal/features/balance_chart"
)

// go run etc/tools/test_chart.go
// in etc/charts/account_history_chart.png, no network needed
func main() {
	fmt.Println("Generating test chart...")

	step := 250.0
	h := &history.BalanceHistory{
		Labels:  []string{"01-01-2024", "01-02-2024", "01-03-2024", "01-11-2024", "01-12-2024", "01-13-2024", "01-21-2024", "01-22-2024", "01-23-2024", "01-31-2024"},
		Values:  []float64{1200, 1350.5, 980.25, 1100, 1725.8, 1610, 1890.4, 2050, 1995.75, 2310.1},
		StepVal: &step,
	}

	renderer := balance_chart.NewPNGRenderer("etc/charts", 0, 0, "")
	chartPath, err := renderer.RenderLineChart(balance_chart.NewAccountHistoryConfig(h))
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s\n", chartPath)
	fmt.Println("Open the file to see the result!")
}
