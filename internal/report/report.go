// Package report renders scheduling results for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
	"github.com/Iron-Ham/stepsched/internal/tui/styles"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a configured format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", errors.NewValidationError("unknown output format, expected text or json").
			WithField("format").
			WithValue(name)
	}
}

// Options controls rendering.
type Options struct {
	Format Format
	// Trace adds the per-step dispatch table.
	Trace bool
}

// Summary is the machine-readable form of a result.
type Summary struct {
	Source      string                 `json:"source,omitempty"`
	Order       string                 `json:"order"`
	Steps       []string               `json:"steps"`
	Elapsed     int                    `json:"elapsed"`
	Workers     int                    `json:"workers"`
	TimeOffset  int                    `json:"time_offset"`
	Utilization float64                `json:"utilization"`
	Trace       []taskqueue.Assignment `json:"trace,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Pending     []string               `json:"pending,omitempty"`
}

// NewSummary flattens a result. The trace is only kept when requested.
func NewSummary(source string, r *scheduler.Result, trace bool) Summary {
	s := Summary{
		Source:      source,
		Order:       r.Sequence(),
		Steps:       r.Order,
		Elapsed:     r.Elapsed,
		Workers:     r.Workers,
		TimeOffset:  r.TimeOffset,
		Utilization: r.Utilization(),
	}
	if s.Steps == nil {
		s.Steps = []string{}
	}
	if trace {
		s.Trace = r.Assignments
	}
	return s
}

// ErrorSummary reports a failed run in the same shape as a successful one.
func ErrorSummary(source string, err error) Summary {
	s := Summary{Source: source, Steps: []string{}, Error: err.Error()}
	var cycleErr *errors.CycleError
	if errors.As(err, &cycleErr) {
		s.Pending = cycleErr.Pending
	}
	return s
}

// Write renders one result.
func Write(w io.Writer, source string, r *scheduler.Result, opts Options) error {
	summary := NewSummary(source, r, opts.Trace)
	if opts.Format == FormatJSON {
		return writeJSON(w, summary)
	}
	_, err := io.WriteString(w, newTextRenderer(w).summary(summary))
	return err
}

// WriteError renders a failed run.
func WriteError(w io.Writer, source string, runErr error, opts Options) error {
	summary := ErrorSummary(source, runErr)
	if opts.Format == FormatJSON {
		return writeJSON(w, summary)
	}
	_, err := io.WriteString(w, newTextRenderer(w).failure(summary))
	return err
}

// WriteOrder renders a bare completion order. Text output is the order on a
// single line.
func WriteOrder(w io.Writer, source, order string, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Source string `json:"source,omitempty"`
			Order  string `json:"order"`
		}{source, order})
	}
	_, err := fmt.Fprintln(w, order)
	return err
}

// WriteLevels renders the execution levels of a graph, one level per line.
func WriteLevels(w io.Writer, levels [][]string, blocked []string, format Format) error {
	if format == FormatJSON {
		if levels == nil {
			levels = [][]string{}
		}
		return writeJSON(w, struct {
			Levels  [][]string `json:"levels"`
			Blocked []string   `json:"blocked,omitempty"`
		}{levels, blocked})
	}

	tr := newTextRenderer(w)
	var sb strings.Builder
	for i, level := range levels {
		fmt.Fprintf(&sb, "%s %s\n", tr.label.Render(fmt.Sprintf("%3d", i)), strings.Join(level, " "))
	}
	if len(blocked) > 0 {
		fmt.Fprintf(&sb, "%s %s\n", tr.bad.Render("blocked"), strings.Join(blocked, " "))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// textRenderer holds styles bound to the destination writer, so color is
// only emitted when w is a terminal.
type textRenderer struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	bad    lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newTextRenderer(w io.Writer) *textRenderer {
	r := lipgloss.NewRenderer(w)
	return &textRenderer{
		title:  r.NewStyle().Bold(true).Foreground(styles.PrimaryColor),
		label:  r.NewStyle().Foreground(styles.MutedColor),
		value:  r.NewStyle().Bold(true).Foreground(styles.TextColor),
		bad:    r.NewStyle().Bold(true).Foreground(styles.ErrorColor),
		muted:  r.NewStyle().Foreground(styles.MutedColor).Italic(true),
		header: r.NewStyle().Bold(true).Foreground(styles.PrimaryColor).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle().Foreground(styles.BorderColor),
	}
}

func (tr *textRenderer) heading(source string) string {
	if source == "" {
		source = "stdin"
	}
	return tr.title.Render("stepsched") + tr.muted.Render(" · "+source)
}

func (tr *textRenderer) field(name, value string) string {
	return tr.label.Render(fmt.Sprintf("%-8s", name)) + " " + tr.value.Render(value)
}

func (tr *textRenderer) summary(s Summary) string {
	lines := []string{
		tr.heading(s.Source),
		tr.field("order", s.Order),
		tr.field("elapsed", strconv.Itoa(s.Elapsed)),
		tr.field("workers", fmt.Sprintf("%d (offset %d)", s.Workers, s.TimeOffset)),
		tr.field("busy", fmt.Sprintf("%.0f%%", s.Utilization*100)),
	}
	if len(s.Trace) > 0 {
		lines = append(lines, tr.trace(s.Trace))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (tr *textRenderer) failure(s Summary) string {
	lines := []string{
		tr.heading(s.Source),
		tr.bad.Render("error") + " " + s.Error,
	}
	return strings.Join(lines, "\n") + "\n"
}

func (tr *textRenderer) trace(assignments []taskqueue.Assignment) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tr.border).
		Headers("STEP", "WORKER", "START", "END").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tr.header
			}
			return tr.cell
		})
	for _, a := range assignments {
		t.Row(a.Label, strconv.Itoa(a.Worker), strconv.Itoa(a.Start), strconv.Itoa(a.Deadline))
	}
	return t.String()
}

// Describe returns a one-line account of an event, or "" for an event it
// does not know.
func Describe(e event.Event) string {
	switch ev := e.(type) {
	case event.RunStartedEvent:
		return fmt.Sprintf("run started: %d steps on %d workers", ev.Steps, ev.Workers)
	case event.StepReadyEvent:
		return fmt.Sprintf("%s ready", ev.Label)
	case event.StepDispatchedEvent:
		return fmt.Sprintf("%s dispatched to W%d until %d", ev.Label, ev.Worker, ev.Deadline)
	case event.StepCompletedEvent:
		if len(ev.Unblocked) > 0 {
			return fmt.Sprintf("%s completed, unblocks %s", ev.Label, strings.Join(ev.Unblocked, " "))
		}
		return fmt.Sprintf("%s completed", ev.Label)
	case event.RunDrainedEvent:
		return fmt.Sprintf("drained after %d steps", ev.Completed)
	case event.RunStalledEvent:
		return fmt.Sprintf("stalled with %s pending", strings.Join(ev.Pending, " "))
	default:
		return ""
	}
}
