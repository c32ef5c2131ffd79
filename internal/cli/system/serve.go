package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address (default from server.addr)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	if !ctx.Config.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx.Journal, ctx.Engine, ctx.Streaks, server.Options{
		DefaultUser: ctx.Config.User,
		Controls:    ctx.Controls,
	})
	return srv.Run(sigCtx, addr)
}
