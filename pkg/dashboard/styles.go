package dashboard

import "github.com/charmbracelet/lipgloss"

// Styles collects every lipgloss style the view uses, built once at
// startup.
type Styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Clock       lipgloss.Style
	Banner      lipgloss.Style
	BannerTitle lipgloss.Style
	Panel       lipgloss.Style
	Good        lipgloss.Style
	Busy        lipgloss.Style
	Bad         lipgloss.Style
	Muted       lipgloss.Style
	Spinner     lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles picks colors that hold up on both dark and light
// terminals.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	alert := lipgloss.Color("#EF4444")
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		Tab: lipgloss.NewStyle().Foreground(subtle).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}),
		Clock: lipgloss.NewStyle().Foreground(subtle),
		Banner: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(alert).Padding(0, 1),
		BannerTitle: lipgloss.NewStyle().Bold(true).Foreground(alert),
		Panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).Padding(0, 1),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Busy:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308")),
		Bad:     lipgloss.NewStyle().Foreground(alert),
		Muted:   lipgloss.NewStyle().Foreground(subtle),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")),
		Help:    lipgloss.NewStyle().Foreground(subtle),
	}
}
