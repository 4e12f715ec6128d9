package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - chosen for readable contrast on dark terminals
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	GreenColor   = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	BlueColor    = lipgloss.Color("#60A5FA") // Blue
	CyanColor    = lipgloss.Color("#22D3EE") // Cyan

	// Convenience styles for colors
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Green   = lipgloss.NewStyle().Foreground(GreenColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	// Per-role styles, matching the provider that runs each stage
	Critique  = lipgloss.NewStyle().Bold(true).Foreground(BlueColor)
	FactCheck = lipgloss.NewStyle().Bold(true).Foreground(CyanColor)
	Synthesis = lipgloss.NewStyle().Bold(true).Foreground(GreenColor)
	Final     = lipgloss.NewStyle().Bold(true).Foreground(WarningColor)

	RoundBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// ForStage returns the style for a stage kind label.
func ForStage(kind string) lipgloss.Style {
	switch kind {
	case "factcheck":
		return FactCheck
	case "synthesis":
		return Synthesis
	case "final":
		return Final
	default:
		return Critique
	}
}
