package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/logger"

	"github.com/spf13/cobra"
)

// session holds what PersistentPreRunE builds for the subcommands.
type session struct {
	app     *app.App
	log     *logger.Logger
	cleanup func()
}

var current session

var rootCmd = &cobra.Command{
	Use:   "ai-trip-planner",
	Short: "Build day-by-day travel itineraries",
	Long: `ai-trip-planner turns a trip request (traveler preferences, candidate
attractions and a research bundle) into a validated, time-blocked itinerary,
optionally enriched with routes and Street View imagery.`,
	PersistentPreRunE:  bootstrap,
	PersistentPostRunE: shutdown,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func init() {
	rootCmd.AddCommand(planCmd, historyCmd, usageCmd, metricsCleanupCmd)
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if current.cleanup != nil {
		current.cleanup()
		current.cleanup = nil
	}
	return err
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || !cmd.HasParent() {
		return nil
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	application, cleanup, err := app.Bootstrap(cmd.Context(), cfg, log)
	if err != nil {
		cleanup()
		return err
	}

	current = session{app: application, log: log, cleanup: cleanup}
	return nil
}

func shutdown(*cobra.Command, []string) error {
	if current.cleanup != nil {
		current.cleanup()
		current.cleanup = nil
	}
	if current.log != nil {
		current.log.Sync()
	}
	return nil
}
