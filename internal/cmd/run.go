package cmd

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stepsched/internal/config"
	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/logging"
	"github.com/Iron-Ham/stepsched/internal/report"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Schedule steps on a pool of workers",
		Long: `Schedule the steps in each input on a pool of workers and report the
completion order and the total elapsed time.

Reads standard input when no file is given or the file is "-". Several
files are scheduled concurrently and reported in the order given.

Worker count and time offset come from, in order of precedence: flags,
values in a YAML plan, the config file, and the built-in defaults.`,
		Example: `  stepsched run steps.txt
  stepsched run -w 2 -o 0 --trace steps.txt
  stepsched run --format json a.txt b.yaml
  stepsched run --progress steps.txt
  cat steps.txt | stepsched run`,
		RunE: runRun,
	}

	addSchedulerFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

// addOutputFlags adds the flags shared by commands that report results.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "output format: text or json (default from config)")
	cmd.Flags().Bool("trace", false, "include the per-step dispatch table")
	cmd.Flags().Bool("progress", false, "stream dispatches and completions to stderr as they are simulated")
}

// outcome is the result of scheduling one input.
type outcome struct {
	index  int
	source string
	result *scheduler.Result
	err    error
}

func runRun(cmd *cobra.Command, args []string) error {
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

	paths := args
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}
	if n := countStdin(paths); n > 1 {
		return fmt.Errorf("standard input given %d times; it can only be read once", n)
	}

	outcomes := scheduleAll(cmd, cfg, logger, paths)
	return writeOutcomes(cmd.OutOrStdout(), outcomes, opts)
}

// reportOptions merges output flags over the configured defaults.
func reportOptions(cmd *cobra.Command, cfg *config.Config) (report.Options, error) {
	name := cfg.Output.Format
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		name = f.Value.String()
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return report.Options{}, err
	}

	trace := cfg.Output.Trace
	if f := cmd.Flags().Lookup("trace"); f != nil && f.Changed {
		trace, _ = cmd.Flags().GetBool("trace")
	}
	return report.Options{Format: format, Trace: trace}, nil
}

// scheduleAll schedules every input concurrently and returns the outcomes
// in argument order.
func scheduleAll(cmd *cobra.Command, cfg *config.Config, logger *logging.Logger, paths []string) []outcome {
	inputFormat, _ := cmd.Flags().GetString("input-format")

	var progress *progressWriter
	if on, _ := cmd.Flags().GetBool("progress"); on {
		progress = &progressWriter{w: cmd.ErrOrStderr()}
	}

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		p.Go(func() outcome {
			out := outcome{index: i, source: sourceName(path)}
			out.result, out.err = scheduleOne(cmd, cfg, logger, progress, path, inputFormat)
			return out
		})
	}

	outcomes := p.Wait()
	slices.SortFunc(outcomes, func(a, b outcome) int { return a.index - b.index })
	return outcomes
}

func scheduleOne(cmd *cobra.Command, cfg *config.Config, logger *logging.Logger, progress *progressWriter, path, inputFormat string) (*scheduler.Result, error) {
	sf, err := loadStepfile(cmd, path, inputFormat)
	if err != nil {
		return nil, err
	}
	opts, err := resolveOptions(cmd, cfg, sf, logger.WithSource(sourceName(path)))
	if err != nil {
		return nil, err
	}
	if progress != nil {
		opts.Bus = event.NewBus()
		progress.follow(opts.Bus, sourceName(path))
	}
	return scheduler.Run(sf.Graph(), opts)
}

func countStdin(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == stdinSource {
			n++
		}
	}
	return n
}

// progressWriter prints step events from any number of concurrent runs,
// one whole line at a time.
type progressWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// follow subscribes to the events of one run on bus.
func (p *progressWriter) follow(bus *event.Bus, source string) {
	if source == "" {
		source = "stdin"
	}
	write := func(e event.Event) {
		p.mu.Lock()
		defer p.mu.Unlock()
		fmt.Fprintf(p.w, "%s: t=%d %s\n", source, e.Time(), report.Describe(e))
	}
	bus.Subscribe(event.TypeStepDispatched, write)
	bus.Subscribe(event.TypeStepCompleted, write)
	bus.Subscribe(event.TypeRunStalled, write)
}

// writeOutcomes renders every outcome and reports how many failed.
func writeOutcomes(w io.Writer, outcomes []outcome, opts report.Options) error {
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			if err := report.WriteError(w, o.source, o.err, opts); err != nil {
				return err
			}
			continue
		}
		if err := report.Write(w, o.source, o.result, opts); err != nil {
			return err
		}
	}

	switch {
	case failed == 0:
		return nil
	case len(outcomes) == 1:
		return outcomes[0].err
	default:
		return fmt.Errorf("%d of %d inputs failed", failed, len(outcomes))
	}
}
