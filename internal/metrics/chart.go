package metrics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderUsageChart writes a stacked bar chart of daily token usage as a
// standalone HTML page.
func RenderUsageChart(w io.Writer, usage []DailyUsage) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Trip Planner Usage",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Token Usage",
			Subtitle: fmt.Sprintf("%d day(s)", len(usage)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	dates := make([]string, 0, len(usage))
	prompt := make([]opts.BarData, 0, len(usage))
	completion := make([]opts.BarData, 0, len(usage))
	fallback := make([]opts.BarData, 0, len(usage))

	// GetDailyUsage is newest first; the chart reads left to right.
	for i := len(usage) - 1; i >= 0; i-- {
		d := usage[i]
		dates = append(dates, d.Date)
		prompt = append(prompt, opts.BarData{Value: d.TotalPrompt})
		completion = append(completion, opts.BarData{Value: d.TotalCompletion})
		fallback = append(fallback, opts.BarData{Value: d.FallbackRuns})
	}

	bar.SetXAxis(dates).
		AddSeries("Prompt tokens", prompt, charts.WithBarChartOpts(opts.BarChart{Stack: "tokens"})).
		AddSeries("Completion tokens", completion, charts.WithBarChartOpts(opts.BarChart{Stack: "tokens"})).
		AddSeries("Fallback runs", fallback)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render usage chart: %w", err)
	}
	return nil
}
