// Package tui is the interactive analytics dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/tui/components/habittable"
)

// MaxWindow caps the smoothing window reachable with '+'.
const MaxWindow = 30

type loadedMsg struct {
	controls analytics.Controls
	rows     []habittable.Row
	err      error
}

type Model struct {
	loader   Loader
	controls analytics.Controls
	keys     KeyMap
	help     help.Model
	table    habittable.Model
	loading  bool
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(loader Loader, controls analytics.Controls) Model {
	return Model{
		loader:   loader,
		controls: controls,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		table:    habittable.New(0, 10),
		loading:  true,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(loader Loader, controls analytics.Controls) error {
	_, err := tea.NewProgram(NewModel(loader, controls), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// Controls returns the controls the dashboard is currently showing.
func (m Model) Controls() analytics.Controls {
	return m.controls
}

func (m Model) load() tea.Cmd {
	loader, c := m.loader, m.controls
	return func() tea.Msg {
		rows, err := loader.Load(context.Background(), c)
		return loadedMsg{controls: c, rows: rows, err: err}
	}
}

func (m Model) reload() (Model, tea.Cmd) {
	m.loading = true
	return m, m.load()
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}
