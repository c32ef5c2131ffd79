package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/seed"
)

type SeedCmd struct {
	Seed uint64 `help:"Random seed for reproducible data (default: time based)."`
}

func (c *SeedCmd) Run(ctx *cli.Context) error {
	s := c.Seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}

	sum, err := seed.New(ctx.Journal, s).Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Seeded user %q: %d habit(s), %d entr(ies), %d log(s) created",
		sum.User.Username, sum.HabitsCreated, sum.EntriesCreated, sum.LogsCreated)))
	fmt.Println(cli.MutedStyle.Render("Run with HABITLENS_USER=" + seed.DemoUser + " to explore the demo data."))
	return nil
}
