// Package styles holds the shared color palette and lipgloss styles used by
// the replay view and the text report.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Step state colors
	StepBlocked = lipgloss.Color("#9CA3AF") // Gray
	StepReady   = lipgloss.Color("#F59E0B") // Amber
	StepActive  = lipgloss.Color("#10B981") // Green
	StepRetired = lipgloss.Color("#A78BFA") // Purple

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	// Worker lanes
	LaneLabel = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(4)

	LaneBusy = lipgloss.NewStyle().
			Bold(true).
			Foreground(StepActive)

	LaneIdle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Section label ("ready", "done", ...)
	SectionLabel = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(8)

	// Content area
	ContentBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)
)

// StepStyle returns the foreground style for a step in the given state
// name ("blocked", "ready", "active", "retired").
func StepStyle(state string) lipgloss.Style {
	switch state {
	case "ready":
		return lipgloss.NewStyle().Foreground(StepReady)
	case "active":
		return lipgloss.NewStyle().Foreground(StepActive).Bold(true)
	case "retired":
		return lipgloss.NewStyle().Foreground(StepRetired)
	default:
		return lipgloss.NewStyle().Foreground(StepBlocked)
	}
}
