package insights

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlens/internal/cli"
)

type LogCmd struct {
	Habit string  `arg:"" help:"Habit name or id."`
	Value float64 `arg:"" help:"Measured value."`
	Date  string  `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	h, err := ctx.Journal.FindHabit(bg, user.ID, c.Habit)
	if err != nil {
		return err
	}

	l, created, err := ctx.Journal.LogHabit(bg, user.ID, h.ID, c.Value, c.Date)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = ctx.Journal.Today()
	}
	verb := "Logged"
	if !created {
		verb = "Updated"
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s %s = %g %s for %s", verb, h.Name, l.Value, h.Unit, date)))
	return nil
}
