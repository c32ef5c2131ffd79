// Package clitest builds command contexts backed by a temporary SQLite store.
package clitest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/config"
	"github.com/julianstephens/habitlens/internal/storage/sqlite"
)

// NewContext returns an initialized context acting as user "tester" in UTC.
func NewContext(t *testing.T) *cli.Context {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.User = "tester"
	cfg.Timezone = "UTC"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "cli.db")
	cfg.Plot.Width, cfg.Plot.Height = 320, 240

	store := sqlite.NewStore(cfg.Database.DSN)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	ctx, err := cli.NewContext(context.Background(), cfg, store)
	if err != nil {
		t.Fatalf("NewContext() failed: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx
}
