package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the dashboard actions. help.Model renders it through
// ShortHelp and FullHelp.
type keyMap struct {
	WindowAll  key.Binding
	WindowHour key.Binding
	WindowDay  key.Binding
	WindowWeek key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		WindowAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all readings"),
		),
		WindowHour: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "last hour"),
		),
		WindowDay: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "last day"),
		),
		WindowWeek: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "last week"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.WindowHour, k.WindowDay, k.WindowWeek, k.WindowAll, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.WindowAll, k.WindowHour, k.WindowDay, k.WindowWeek},
		{k.Refresh, k.Help, k.Quit},
	}
}
