package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"ai-trip-planner/internal/metrics"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	userID string
	limit  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored itineraries for a user",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var usageFlags struct {
	days  int
	chart string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage and system health",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

var cleanupDays int

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old metric records",
	Args:  cobra.NoArgs,
	RunE:  runMetricsCleanup,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.userID, "user", "cli", "user id to list plans for")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 10, "maximum number of plans")
	usageCmd.Flags().IntVar(&usageFlags.days, "days", 7, "number of days to report")
	usageCmd.Flags().StringVar(&usageFlags.chart, "chart", "", "also write an HTML usage chart to this file")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "keep records for the last N days")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	plans, err := current.app.History(cmd.Context(), historyFlags.userID, historyFlags.limit)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRUN ID\tDESTINATION\tDAYS\tSTRATEGY")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			p.CreatedAt.Format("2006-01-02 15:04"), p.RunID, p.Destination, p.TravelDays, p.Strategy)
	}
	return w.Flush()
}

func runUsage(cmd *cobra.Command, _ []string) error {
	usage, err := current.app.Usage(cmd.Context(), usageFlags.days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPROMPT\tCOMPLETION\tRUNS\tFALLBACK")
	for _, d := range usage {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution, d.FallbackRuns)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	h := current.app.Health()
	fmt.Fprintf(out, "\nalloc=%dMB sys=%dMB goroutines=%d data=%s\n", h.AllocMB, h.SysMB, h.Goroutines, h.DataSize)

	if usageFlags.chart != "" {
		if err := writeUsageChart(usageFlags.chart, usage); err != nil {
			return err
		}
		fmt.Fprintf(out, "chart written to %s\n", usageFlags.chart)
	}
	return nil
}

func writeUsageChart(path string, usage []metrics.DailyUsage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return metrics.RenderUsageChart(f, usage)
}

func runMetricsCleanup(cmd *cobra.Command, _ []string) error {
	affected, err := current.app.CleanupMetrics(cmd.Context(), cleanupDays)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
	return nil
}
