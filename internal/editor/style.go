package editor

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the terminal view.
type Styles struct {
	Pill      lipgloss.Style
	Cursor    lipgloss.Style
	Selection lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds the default styles for renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Pill: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#553fb5", Dark: "#d9d0ff"}).
			Background(lipgloss.AdaptiveColor{Light: "#e8e3ff", Dark: "#4b3d8f"}),
		Cursor:    r.NewStyle().Reverse(true),
		Selection: r.NewStyle().Background(lipgloss.AdaptiveColor{Light: "#cfe3ff", Dark: "#334466"}),
		Status:    r.NewStyle().Bold(true),
		Help:      r.NewStyle().Faint(true),
	}
}

// DefaultStyles returns NewStyles for the default renderer.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}
