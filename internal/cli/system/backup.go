package system

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitlens/internal/backup"
	"github.com/julianstephens/habitlens/internal/cli"
	"github.com/julianstephens/habitlens/internal/storage/sqlite"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the SQLite database."`
	List    BackupListCmd    `cmd:"" help:"List snapshots, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a snapshot."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite storage")
	}
	return backup.NewManager(ctx.Store.Path(), backup.WithKeep(ctx.Config.Backup.Keep)), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Create()
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created backup %s (%s)", filepath.Base(snap.Path), humanize.Bytes(uint64(snap.Size)))))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("No backups found in " + mgr.Dir())
		return nil
	}

	rows := make([][]string, 0, len(snaps))
	for i, s := range snaps {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Timestamp.Local().Format("2006-01-02 15:04:05"),
			humanize.Bytes(uint64(s.Size)),
			filepath.Base(s.Path),
		})
	}
	fmt.Println(cli.RenderTable([]string{"#", "Taken", "Size", "File"}, rows))
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" help:"Snapshot number from 'backup list', or a path to a snapshot file."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	path := c.Backup
	if n, err := strconv.Atoi(c.Backup); err == nil {
		snaps, err := mgr.List()
		if err != nil {
			return err
		}
		if n < 1 || n > len(snaps) {
			return fmt.Errorf("no backup #%d; there are %d", n, len(snaps))
		}
		path = snaps[n-1].Path
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("restored database failed to load: %w", err)
	}

	if previous.Path != "" {
		fmt.Println(cli.MutedStyle.Render("Saved the previous database as " + filepath.Base(previous.Path)))
	}
	fmt.Println(cli.SuccessStyle.Render("Restored database from " + filepath.Base(path)))
	return nil
}
