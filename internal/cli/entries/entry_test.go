package entries

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/habitlens/internal/cli/clitest"
	apperrors "github.com/julianstephens/habitlens/internal/errors"
)

func nonInteractive(t *testing.T) {
	t.Helper()
	prevTTY, prevForm := stdinIsTerminal, runForm
	stdinIsTerminal = func() bool { return false }
	runForm = func(string, *entryForm) error {
		t.Fatal("form should not run")
		return nil
	}
	t.Cleanup(func() { stdinIsTerminal, runForm = prevTTY, prevForm })
}

func TestEntryAdd(t *testing.T) {
	nonInteractive(t)
	ctx := clitest.NewContext(t)

	if err := (&EntryAddCmd{Date: "2024-03-01", Productivity: 7, Mood: 6, Notes: "ok"}).Run(ctx); err != nil {
		t.Fatalf("EntryAddCmd.Run() failed: %v", err)
	}
	if err := (&EntryAddCmd{Date: "2024-03-01", Productivity: 5, Mood: 5}).Run(ctx); !apperrors.IsConflict(err) {
		t.Errorf("duplicate entry error = %v, want ErrConflict", err)
	}
	if err := (&EntryAddCmd{Date: "2024-03-02", Productivity: 5}).Run(ctx); err == nil {
		t.Error("missing mood without a terminal should fail")
	}
	if err := (&EntryAddCmd{Date: "2024-03-02", Productivity: 12, Mood: 5}).Run(ctx); !apperrors.IsInvalidInput(err) {
		t.Errorf("score 12 error = %v, want ErrInvalidInput", err)
	}
	if err := (&EntryListCmd{Limit: 10}).Run(ctx); err != nil {
		t.Errorf("EntryListCmd.Run() failed: %v", err)
	}
}

func TestEntryAddInteractive(t *testing.T) {
	ctx := clitest.NewContext(t)
	prevTTY, prevForm := stdinIsTerminal, runForm
	t.Cleanup(func() { stdinIsTerminal, runForm = prevTTY, prevForm })

	stdinIsTerminal = func() bool { return true }
	var gotDate string
	runForm = func(date string, fm *entryForm) error {
		gotDate = date
		fm.Productivity, fm.Mood, fm.Notes = "9", "4", "from the form"
		return nil
	}

	if err := (&EntryAddCmd{Date: "2024-03-05"}).Run(ctx); err != nil {
		t.Fatalf("EntryAddCmd.Run() failed: %v", err)
	}
	if gotDate != "2024-03-05" {
		t.Errorf("form date = %q", gotDate)
	}

	bg := context.Background()
	user, _ := ctx.ActingUser(bg)
	e, err := ctx.Journal.GetEntry(bg, user.ID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if e.ProductivityScore != 9 || e.MoodScore != 4 || e.Notes != "from the form" {
		t.Errorf("entry = %+v", e)
	}

	runForm = func(string, *entryForm) error { return errors.New("user aborted") }
	if err := (&EntryAddCmd{Date: "2024-03-06", Interactive: true}).Run(ctx); err == nil {
		t.Error("an aborted form should fail the command")
	}
}

func TestEntryEdit(t *testing.T) {
	nonInteractive(t)
	ctx := clitest.NewContext(t)
	bg := context.Background()

	if err := (&EntryAddCmd{Date: "2024-03-01", Productivity: 7, Mood: 6}).Run(ctx); err != nil {
		t.Fatalf("EntryAddCmd.Run() failed: %v", err)
	}

	notes := "edited"
	if err := (&EntryEditCmd{Date: "2024-03-01", Mood: 2, Notes: &notes}).Run(ctx); err != nil {
		t.Fatalf("EntryEditCmd.Run() failed: %v", err)
	}
	user, _ := ctx.ActingUser(bg)
	e, err := ctx.Journal.GetEntry(bg, user.ID, "2024-03-01")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if e.ProductivityScore != 7 || e.MoodScore != 2 || e.Notes != "edited" {
		t.Errorf("entry = %+v", e)
	}

	if err := (&EntryEditCmd{Date: "2024-03-01"}).Run(ctx); err == nil {
		t.Error("edit without changes should fail")
	}
	if err := (&EntryEditCmd{Date: "2024-02-01", Mood: 3}).Run(ctx); !apperrors.IsNotFound(err) {
		t.Errorf("editing a missing entry error = %v, want ErrNotFound", err)
	}
}

func TestValidateScore(t *testing.T) {
	for _, ok := range []string{"1", "10", " 5 "} {
		if err := validateScore(ok); err != nil {
			t.Errorf("validateScore(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"0", "11", "x", ""} {
		if err := validateScore(bad); err == nil {
			t.Errorf("validateScore(%q) should fail", bad)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a much longer note", 6); got != "a muc…" {
		t.Errorf("truncate() = %q", got)
	}
}
