package insights

import (
	"context"
	"fmt"
	"strconv"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/models"
)

type StreakCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or id (default: all habits)."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.Journal.FindHabit(bg, user.ID, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		habits, err = ctx.Journal.ListHabits(bg, user.ID)
		if err != nil {
			return err
		}
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		st, err := ctx.Streaks.ForHabit(bg, h.ID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{h.Name, strconv.Itoa(st.Current), strconv.Itoa(st.Longest)})
	}
	fmt.Println(cli.RenderTable([]string{"Habit", "Current", "Longest"}, rows))
	return nil
}
