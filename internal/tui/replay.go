// Package tui provides the interactive replay of a scheduling run.
//
// The replay steps through the run one instant of simulated time at a time,
// showing what every worker is doing, which steps are waiting in the ready
// queue, and the completion order so far.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/stepsched/internal/report"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
	"github.com/Iron-Ham/stepsched/internal/tui/styles"
)

// playInterval is how long autoplay stays on each frame.
const playInterval = 600 * time.Millisecond

type tickMsg struct{}

// Model is the bubbletea model for the replay view.
type Model struct {
	source string
	result *scheduler.Result
	frames []Frame
	cursor int

	playing  bool
	quitting bool
	width    int

	keys keyMap
	help help.Model
}

// New creates a replay positioned at the first frame.
func New(source string, r *scheduler.Result) Model {
	return Model{
		source: source,
		result: r,
		frames: BuildFrames(r),
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.cursor >= m.last() {
			m.playing = false
			return m, nil
		}
		m.cursor++
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.seek(m.cursor + 1)
		case key.Matches(msg, m.keys.Prev):
			m.seek(m.cursor - 1)
		case key.Matches(msg, m.keys.First):
			m.seek(0)
		case key.Matches(msg, m.keys.Last):
			m.seek(m.last())
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Play):
			m.playing = !m.playing
			if m.playing {
				if m.cursor >= m.last() {
					m.cursor = 0
				}
				return m, tick()
			}
		}
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(playInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) seek(i int) {
	m.cursor = max(0, min(i, m.last()))
}

func (m Model) last() int {
	return max(0, len(m.frames)-1)
}

// Cursor returns the index of the frame on screen.
func (m Model) Cursor() int { return m.cursor }

// Playing reports whether autoplay is on.
func (m Model) Playing() bool { return m.playing }

// Frames returns every frame of the replay.
func (m Model) Frames() []Frame { return m.frames }

// Current returns the frame on screen. It reports false for an empty run.
func (m Model) Current() (Frame, bool) {
	if len(m.frames) == 0 {
		return Frame{}, false
	}
	return m.frames[m.cursor], true
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	source := m.source
	if source == "" {
		source = "stdin"
	}
	header := styles.Title.Render("stepsched replay") + styles.Subtitle.Render(" · "+source)

	frame, ok := m.Current()
	if !ok {
		return header + "\n\n" + styles.Muted.Render("nothing to replay: the run had no steps") +
			"\n" + styles.HelpBar.Render(m.help.View(m.keys)) + "\n"
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render(fmt.Sprintf("t=%d / %d   frame %d/%d",
		frame.Time, m.result.Elapsed, m.cursor+1, len(m.frames))))
	if m.playing {
		b.WriteString(" " + styles.Secondary.Render("▶"))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.ContentBox.Render(m.renderBody(frame)))
	b.WriteString("\n")
	b.WriteString(styles.HelpBar.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderBody(f Frame) string {
	var lines []string
	for i, lane := range f.Lanes {
		name := styles.LaneLabel.Render(fmt.Sprintf("W%d", i))
		if lane.Idle() {
			lines = append(lines, name+styles.LaneIdle.Render("idle"))
			continue
		}
		lines = append(lines, name+styles.LaneBusy.Render(lane.Label)+
			styles.Muted.Render(fmt.Sprintf("  %d → %d", lane.Start, lane.Deadline)))
	}
	lines = append(lines, "")

	lines = append(lines, section("ready", f.Ready, taskqueue.StepReady))
	lines = append(lines, section("done", f.Done, taskqueue.StepRetired)+
		styles.Muted.Render(fmt.Sprintf("  (%d/%d)", len(f.Done), len(m.result.Order))))
	lines = append(lines, "")

	for _, e := range f.Events {
		if desc := report.Describe(e); desc != "" {
			lines = append(lines, styles.Text.Render(desc))
		}
	}
	if m.width > 0 {
		// Border and padding take four columns.
		for i := range lines {
			lines[i] = fitWidth(lines[i], m.width-4)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fitWidth truncates s to maxWidth visual columns, adding "..." if truncated.
// Escape sequences from styling are preserved.
func fitWidth(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

func section(name string, labels []string, status taskqueue.StepStatus) string {
	label := styles.SectionLabel.Render(name)
	if len(labels) == 0 {
		return label + styles.Muted.Render("-")
	}
	return label + styles.StepStyle(status.String()).Render(strings.Join(labels, " "))
}
