package main

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/cli/entries"
	"github.com/julianstephens/habitlens/internal/cli/habits"
	"github.com/julianstephens/habitlens/internal/cli/insights"
	"github.com/julianstephens/habitlens/internal/cli/system"
	"github.com/julianstephens/habitlens/internal/config"
	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/logger"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `name:"config-file" help:"Config file path." type:"string" default:"${config_file}"`
	Database   string `help:"SQLite path or PostgreSQL connection string (overrides database.dsn). PostgreSQL credentials must NOT be embedded; use the OS keyring or HABITLENS_DB_CONNECTION." type:"string"`
	User       string `short:"U" help:"Act as this user (overrides the user config key)."`
	Debug      bool   `help:"Log at debug level and mirror logs to stderr."`

	Init      system.InitCmd        `cmd:"" help:"Initialize habitlens storage."`
	Migrate   system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Habit     habits.HabitCmd       `cmd:"" help:"Manage habits."`
	Entry     entries.EntryCmd      `cmd:"" help:"Manage daily entries."`
	Log       insights.LogCmd       `cmd:"" help:"Log a habit value for a day."`
	Streak    insights.StreakCmd    `cmd:"" help:"Show habit streaks."`
	Analytics insights.AnalyticsCmd `cmd:"" help:"Correlate habits with productivity or mood."`
	Serve     system.ServeCmd       `cmd:"" help:"Serve the JSON API."`
	Tui       system.TuiCmd         `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Seed      system.SeedCmd        `cmd:"" help:"Create demo data for the testuser account."`
	Keyring   system.KeyringCmd     `cmd:"" help:"Manage credentials in the OS keyring."`
	Backup    system.BackupCmd      `cmd:"" help:"Snapshot or restore the SQLite database."`
}

// commands that must run before, or without, a loaded store
var skipLoad = map[string]bool{"init": true, "migrate": true, "keyring": true, "backup": true}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit journal with productivity and mood analytics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database.DSN = CLI.Database
	}
	if CLI.User != "" {
		cfg.User = CLI.User
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}

	if err := logger.Init(logger.Config{
		Dir:    cfg.Log.Dir,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Debug:  cfg.Log.Debug,
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	store, err := cli.OpenStore(cfg.Database.DSN)
	if err != nil {
		errors.Fatal(err)
	}

	command := strings.Fields(kctx.Command())[0]
	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	appCtx, err := cli.NewContext(context.Background(), cfg, store)
	if err != nil {
		_ = store.Close()
		errors.Fatal(err)
	}

	logger.Debug("Running command", "command", command, "store", store.Path(), "user", cfg.User)
	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close resources", "error", closeErr)
	}
	_ = logger.Close()
	errors.Fatal(err)
}
