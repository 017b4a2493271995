package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stepsched/internal/config"
	"github.com/Iron-Ham/stepsched/internal/logging"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
	"github.com/Iron-Ham/stepsched/internal/stepfile"
)

// stdinSource names input read from standard input.
const stdinSource = "-"

// loadConfig reads the effective configuration. Unlike config.Get it reports
// invalid values instead of silently falling back to defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the command logger. Without a log directory it writes to
// the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.Dir == "" {
		return logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level), nil
	}
	return logging.NewLoggerWithRotation(cfg.Logging.Dir, cfg.Logging.Level, cfg.Logging.Rotation())
}

// loadStepfile reads a stepfile from path, or from stdin when path is empty
// or "-". Files pick their format by extension; stdin uses inputFormat.
func loadStepfile(cmd *cobra.Command, path, inputFormat string) (*stepfile.Stepfile, error) {
	if path != "" && path != stdinSource {
		return stepfile.ParseFile(path)
	}
	format, err := stepfile.ParseFormat(inputFormat)
	if err != nil {
		return nil, err
	}
	return stepfile.Parse(cmd.InOrStdin(), format)
}

// resolveOptions combines scheduler settings with precedence
// flag > stepfile > configuration.
func resolveOptions(cmd *cobra.Command, cfg *config.Config, sf *stepfile.Stepfile, logger *logging.Logger) (scheduler.Options, error) {
	opts := scheduler.Options{
		Workers:    cfg.Scheduler.Workers,
		TimeOffset: cfg.Scheduler.TimeOffset,
		Logger:     logger,
	}
	if sf.Workers != nil {
		opts.Workers = *sf.Workers
	}
	if sf.TimeOffset != nil {
		opts.TimeOffset = *sf.TimeOffset
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if f := cmd.Flags().Lookup("offset"); f != nil && f.Changed {
		opts.TimeOffset, _ = cmd.Flags().GetInt("offset")
	}

	cost, err := scheduler.NamedCost(cfg.Scheduler.Cost, sf.Durations)
	if err != nil {
		return scheduler.Options{}, err
	}
	opts.Cost = cost

	if err := opts.Validate(); err != nil {
		return scheduler.Options{}, err
	}
	return opts, nil
}

// addSchedulerFlags registers the flags that override scheduler settings.
func addSchedulerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", scheduler.DefaultWorkers, "number of workers")
	cmd.Flags().IntP("offset", "o", scheduler.DefaultTimeOffset, "time added to every step's cost")
	cmd.Flags().String("input-format", "text", "format of stdin input: text or yaml")
}

// sourceName is how an input is named in output.
func sourceName(path string) string {
	if path == "" || path == stdinSource {
		return ""
	}
	return path
}
