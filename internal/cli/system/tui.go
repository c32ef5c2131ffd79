package system

import (
	"context"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/storage"
	"github.com/julianstephens/habitlens/internal/tui"
)

type TuiCmd struct {
	All bool `short:"a" help:"Show every user's habits."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	scope := storage.Scope{}
	if !c.All {
		user, err := ctx.ActingUser(context.Background())
		if err != nil {
			return err
		}
		scope.UserID = user.ID
	}

	// plots are not shown in the terminal
	engine := analytics.NewEngine(ctx.Store, nil, analytics.WithMaxWorkers(ctx.Config.Analytics.MaxWorkers))
	loader := tui.NewDashboardLoader(ctx.Store, engine, ctx.Streaks, scope)
	return tui.Run(loader, ctx.Controls)
}
