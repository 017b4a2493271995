package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stepsched/internal/stepfile"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run the schedule whenever a file changes",
		Long: `Schedule the steps in a file, then schedule them again every time the
file is saved. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	addSchedulerFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	opts, err := reportOptions(cmd, cfg)
	if err != nil {
		return err
	}

	path := args[0]
	if path == stdinSource {
		return fmt.Errorf("watch needs a file")
	}

	out := cmd.OutOrStdout()
	rerun := func() {
		// A broken edit is reported and the watch continues.
		outcomes := scheduleAll(cmd, cfg, logger, []string{path})
		if err := writeOutcomes(out, outcomes, opts); err != nil {
			logger.Warn("schedule failed", "source", path, "error", err.Error())
		}
	}

	rerun()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for changes", "source", path)
	return stepfile.Watch(ctx, path, stepfile.DefaultDebounce, rerun)
}
