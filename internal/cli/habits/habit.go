package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/models"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit with its streaks."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its logs."`
}

type HabitAddCmd struct {
	Name     string  `arg:"" help:"Habit name."`
	Unit     string  `short:"u" help:"Unit of measure (e.g. hours, ml, pages)." required:""`
	Target   float64 `short:"t" help:"Daily target value." default:"0"`
	Category string  `short:"c" help:"Category (health, productivity, mindfulness or any label)." default:"health"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}

	h, err := ctx.Journal.CreateHabit(bg, user.ID, models.Habit{
		Name:        c.Name,
		Category:    c.Category,
		TargetValue: c.Target,
		Unit:        c.Unit,
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added habit: %s (%s)", h.Name, h.ID)))
	return nil
}

type HabitEditCmd struct {
	Habit    string   `arg:"" help:"Habit name or id."`
	Name     string   `help:"New name."`
	Unit     string   `short:"u" help:"New unit."`
	Target   *float64 `short:"t" help:"New daily target."`
	Category string   `short:"c" help:"New category."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	h, err := ctx.Journal.FindHabit(bg, user.ID, c.Habit)
	if err != nil {
		return err
	}

	if c.Name != "" {
		h.Name = c.Name
	}
	if c.Unit != "" {
		h.Unit = c.Unit
	}
	if c.Target != nil {
		h.TargetValue = *c.Target
	}
	if c.Category != "" {
		h.Category = c.Category
	}

	updated, err := ctx.Journal.UpdateHabit(bg, user.ID, h)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("Updated habit: " + updated.Name))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	habits, err := ctx.Journal.ListHabits(bg, user.ID)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, []string{h.Name, h.Category, FormatTarget(h), h.ID})
	}
	fmt.Println(cli.RenderTable([]string{"Name", "Category", "Target", "ID"}, rows))
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	h, err := ctx.Journal.FindHabit(bg, user.ID, c.Habit)
	if err != nil {
		return err
	}
	st, err := ctx.Streaks.ForHabit(bg, h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", h.Name)
	fmt.Printf("  Category:       %s\n", h.Category)
	fmt.Printf("  Target:         %s\n", FormatTarget(h))
	fmt.Printf("  Current streak: %d\n", st.Current)
	fmt.Printf("  Longest streak: %d\n", st.Longest)
	fmt.Println(cli.MutedStyle.Render("  id " + h.ID))
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	h, err := ctx.Journal.FindHabit(bg, user.ID, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Journal.DeleteHabit(bg, user.ID, h.ID); err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("Deleted habit: " + h.Name))
	return nil
}

// FormatTarget renders "8 hours" style targets
func FormatTarget(h models.Habit) string {
	return strings.TrimSpace(fmt.Sprintf("%g %s", h.TargetValue, h.Unit))
}
