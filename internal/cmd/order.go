package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stepsched/internal/report"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
)

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order [file]",
		Short: "Print the order in which a single worker completes the steps",
		Long: `Print the order in which a single worker with no time offset completes
the steps. This is the alphabetically smallest order that respects every
dependency.

With --levels, print the steps grouped by how many rounds of prerequisites
they wait on instead.`,
		Example: `  stepsched order steps.txt
  stepsched order --levels plan.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOrder,
	}

	cmd.Flags().Bool("levels", false, "group steps into dependency levels")
	cmd.Flags().String("format", "", "output format: text or json (default from config)")
	cmd.Flags().String("input-format", "text", "format of stdin input: text or yaml")
	return cmd
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := reportOptions(cmd, cfg)
	if err != nil {
		return err
	}

	path := stdinSource
	if len(args) == 1 {
		path = args[0]
	}
	inputFormat, _ := cmd.Flags().GetString("input-format")
	sf, err := loadStepfile(cmd, path, inputFormat)
	if err != nil {
		return err
	}
	g := sf.Graph()

	if levels, _ := cmd.Flags().GetBool("levels"); levels {
		lv, blocked := g.Levels()
		return report.WriteLevels(cmd.OutOrStdout(), lv, blocked, opts.Format)
	}

	order, err := scheduler.Order(g)
	if err != nil {
		return err
	}
	return report.WriteOrder(cmd.OutOrStdout(), sourceName(path), order, opts.Format)
}
