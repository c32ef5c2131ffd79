package system

import (
	"fmt"

	"github.com/julianstephens/habitlens/internal/cli"
)

type MigrateCmd struct {
	Status bool `help:"Only report pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if c.Status {
		st, err := ctx.Store.MigrationStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version %d of %d\n", st.Current, st.Latest)
		for _, m := range st.Pending {
			fmt.Printf("  pending %03d %s\n", m.Version, m.Name)
		}
		if st.UpToDate() {
			fmt.Println(cli.SuccessStyle.Render("Database is up to date."))
		}
		return nil
	}

	count, err := ctx.Store.Migrate(func(msg string) { fmt.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count > 0 {
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Applied %d migration(s).", count)))
	}
	return nil
}
