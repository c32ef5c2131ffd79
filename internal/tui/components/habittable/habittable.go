// Package habittable renders the dashboard rows as a bubbles table.
package habittable

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/streak"
)

// Row is one habit on the dashboard. Result is nil for skipped habits.
type Row struct {
	Habit   models.Habit
	Streaks streak.Streaks
	Result  *analytics.Result
}

var columns = []table.Column{
	{Title: "Habit", Width: 20},
	{Title: "Category", Width: 14},
	{Title: "Target", Width: 14},
	{Title: "Streak", Width: 8},
	{Title: "Best", Width: 6},
	{Title: "Corr", Width: 7},
	{Title: "Samples", Width: 8},
}

type Model struct {
	table table.Model
	rows  []Row
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	if width > 0 {
		t.SetWidth(width)
	}

	return Model{table: t}
}

// Cells formats a row the way the table shows it.
func Cells(r Row) table.Row {
	corr, samples := constants.NotAvailable, "-"
	if r.Result != nil {
		corr = r.Result.CorrelationText()
		samples = strconv.Itoa(r.Result.SampleCount)
	}
	return table.Row{
		r.Habit.Name,
		r.Habit.Category,
		fmt.Sprintf("%g %s", r.Habit.TargetValue, r.Habit.Unit),
		strconv.Itoa(r.Streaks.Current),
		strconv.Itoa(r.Streaks.Longest),
		corr,
		samples,
	}
}

func (m *Model) SetRows(rows []Row) {
	m.rows = rows
	cells := make([]table.Row, len(rows))
	for i, r := range rows {
		cells[i] = Cells(r)
	}
	m.table.SetRows(cells)
}

func (m Model) Rows() []Row {
	return m.rows
}

// Selected returns the highlighted row, if any.
func (m Model) Selected() (Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[i], true
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(max(height, 3))
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "\n  No habits yet.\n  Add one with 'habitlens habit add'."
	}
	return m.table.View()
}
