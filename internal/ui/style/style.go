// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Amber  = lipgloss.Color("#D97706")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Bell    = "♪"
	Cached  = "↺"
	Eye     = "◉"
)

// Title renders a bold heading in the brand color.
func Title(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(Amber).Render(s)
}

// Faint renders secondary text.
func Faint(s string) string {
	return lipgloss.NewStyle().Foreground(Slate).Render(s)
}
