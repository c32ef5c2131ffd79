package entries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlens/internal/constants"
)

type entryForm struct {
	Productivity string
	Mood         string
	Notes        string
}

func validateScore(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("score must be a whole number")
	}
	if n < constants.MinScore || n > constants.MaxScore {
		return fmt.Errorf("score must be between %d and %d", constants.MinScore, constants.MaxScore)
	}
	return nil
}

func newEntryForm(date string, fm *entryForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Daily entry").
				Description(date),
			huh.NewInput().
				Title("Productivity (1-10)").
				Value(&fm.Productivity).
				Validate(validateScore),
			huh.NewInput().
				Title("Mood (1-10)").
				Value(&fm.Mood).
				Validate(validateScore),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// scores parses a completed form
func (fm entryForm) scores() (int, int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(fm.Productivity))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid productivity score %q", fm.Productivity)
	}
	m, err := strconv.Atoi(strings.TrimSpace(fm.Mood))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid mood score %q", fm.Mood)
	}
	return p, m, nil
}
