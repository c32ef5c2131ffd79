package entries

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/models"
)

type EntryCmd struct {
	Add  EntryAddCmd  `cmd:"" help:"Add a daily entry."`
	Edit EntryEditCmd `cmd:"" help:"Edit the scores or notes of a daily entry."`
	List EntryListCmd `cmd:"" help:"List daily entries, newest first."`
}

// stdinIsTerminal is swapped in tests
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runForm fills fm interactively; swapped in tests.
var runForm = func(date string, fm *entryForm) error {
	return newEntryForm(date, fm).Run()
}

type EntryAddCmd struct {
	Date         string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
	Productivity int    `short:"p" help:"Productivity score 1-10."`
	Mood         int    `short:"m" help:"Mood score 1-10."`
	Notes        string `short:"n" help:"Free-form notes."`
	Interactive  bool   `short:"i" help:"Fill the entry in a form."`
}

func (c *EntryAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = ctx.Journal.Today()
	}

	entry := models.DailyEntry{
		Date:              date,
		ProductivityScore: c.Productivity,
		MoodScore:         c.Mood,
		Notes:             c.Notes,
	}
	missing := c.Productivity == 0 || c.Mood == 0
	if c.Interactive || (missing && stdinIsTerminal()) {
		if err := fillInteractively(&entry); err != nil {
			return err
		}
	} else if missing {
		return errors.New("--productivity and --mood are required (or use --interactive)")
	}

	created, err := ctx.Journal.CreateEntry(bg, user.ID, entry)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added entry for %s (productivity %d, mood %d)",
		created.Date, created.ProductivityScore, created.MoodScore)))
	return nil
}

type EntryEditCmd struct {
	Date         string  `arg:"" help:"Date of the entry (YYYY-MM-DD)."`
	Productivity int     `short:"p" help:"New productivity score 1-10."`
	Mood         int     `short:"m" help:"New mood score 1-10."`
	Notes        *string `short:"n" help:"New notes."`
	Interactive  bool    `short:"i" help:"Edit the entry in a form."`
}

func (c *EntryEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	entry, err := ctx.Journal.GetEntry(bg, user.ID, c.Date)
	if err != nil {
		return err
	}

	if c.Productivity != 0 {
		entry.ProductivityScore = c.Productivity
	}
	if c.Mood != 0 {
		entry.MoodScore = c.Mood
	}
	if c.Notes != nil {
		entry.Notes = *c.Notes
	}
	noFlags := c.Productivity == 0 && c.Mood == 0 && c.Notes == nil
	if c.Interactive || (noFlags && stdinIsTerminal()) {
		if err := fillInteractively(&entry); err != nil {
			return err
		}
	} else if noFlags {
		return errors.New("nothing to change; pass --productivity, --mood, --notes or --interactive")
	}

	updated, err := ctx.Journal.UpdateEntry(bg, user.ID, entry)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("Updated entry for " + updated.Date))
	return nil
}

// fillInteractively prefills the form with entry and copies the answers back.
func fillInteractively(entry *models.DailyEntry) error {
	fm := entryForm{Notes: entry.Notes}
	if entry.ProductivityScore != 0 {
		fm.Productivity = strconv.Itoa(entry.ProductivityScore)
	}
	if entry.MoodScore != 0 {
		fm.Mood = strconv.Itoa(entry.MoodScore)
	}
	if err := runForm(entry.Date, &fm); err != nil {
		return err
	}
	p, m, err := fm.scores()
	if err != nil {
		return err
	}
	entry.ProductivityScore, entry.MoodScore, entry.Notes = p, m, fm.Notes
	return nil
}

type EntryListCmd struct {
	Limit int `short:"l" help:"Show at most this many entries (0 for all)." default:"30"`
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	user, err := ctx.ActingUser(bg)
	if err != nil {
		return err
	}
	entries, err := ctx.Journal.ListEntries(bg, user.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date,
			strconv.Itoa(e.ProductivityScore),
			strconv.Itoa(e.MoodScore),
			strconv.Itoa(e.LogCount),
			truncate(e.Notes, 40),
		})
	}
	fmt.Println(cli.RenderTable([]string{"Date", "Productivity", "Mood", "Logs", "Notes"}, rows))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
