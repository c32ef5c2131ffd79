package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Metric     key.Binding
	Normalize  key.Binding
	WindowUp   key.Binding
	WindowDown key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Metric, k.Normalize, k.WindowUp, k.WindowDown, k.Refresh, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Metric, k.Normalize, k.WindowUp, k.WindowDown},
		{k.Refresh, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Metric: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle metric"),
		),
		Normalize: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "toggle normalize"),
		),
		WindowUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "widen window"),
		),
		WindowDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrow window"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
