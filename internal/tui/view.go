package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := ""
	switch {
	case m.loading:
		status = controlStyle.Render("loading...")
	case m.err != nil:
		status = errorStyle.Render("Error: " + m.err.Error())
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("habitlens"), m.viewControls()),
		status,
		m.table.View(),
		m.help.View(m),
	))
}

func (m Model) viewControls() string {
	normalize := "off"
	if m.controls.Normalize {
		normalize = "on"
	}
	return controlStyle.Render(fmt.Sprintf("metric: %s  window: %d  std: %g  normalize: %s",
		m.controls.Metric, m.controls.Window, m.controls.StdThreshold, normalize))
}
