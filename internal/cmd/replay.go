package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stepsched/internal/logging"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
	"github.com/Iron-Ham/stepsched/internal/tui"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Step through a schedule interactively",
		Long: `Schedule the steps in a file and open an interactive view that steps
through the run one instant at a time, showing each worker, the ready
queue and the completion order so far.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}

	addSchedulerFlags(cmd)
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the replay, so logs only go to a file.
	logger := logging.NopLogger()
	if cfg.Logging.Dir != "" {
		if logger, err = newLogger(cmd, cfg); err != nil {
			return err
		}
	}
	defer logger.Close()

	path := args[0]
	if path == stdinSource {
		return fmt.Errorf("replay needs a file: standard input is used for keys")
	}
	sf, err := loadStepfile(cmd, path, "")
	if err != nil {
		return err
	}
	opts, err := resolveOptions(cmd, cfg, sf, logger.WithSource(path))
	if err != nil {
		return err
	}
	result, err := scheduler.Run(sf.Graph(), opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		tui.New(path, result),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	return nil
}
