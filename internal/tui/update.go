package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlens/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case loadedMsg:
		// a newer request is already in flight
		if msg.controls != m.controls {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.table.SetRows(msg.rows)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Metric):
			if m.controls.Metric == models.MetricMood {
				m.controls.Metric = models.MetricProductivity
			} else {
				m.controls.Metric = models.MetricMood
			}
			return m.reload()
		case key.Matches(msg, m.keys.Normalize):
			m.controls.Normalize = !m.controls.Normalize
			return m.reload()
		case key.Matches(msg, m.keys.WindowUp):
			if m.controls.Window >= MaxWindow {
				return m, nil
			}
			m.controls.Window++
			return m.reload()
		case key.Matches(msg, m.keys.WindowDown):
			if m.controls.Window <= 1 {
				return m, nil
			}
			m.controls.Window--
			return m.reload()
		case key.Matches(msg, m.keys.Refresh):
			return m.reload()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
