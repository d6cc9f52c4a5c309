package cli

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/storage"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Backend.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized habitquest storage at: %s\n", ctx.Backend.GetConfigPath())
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	migrator, ok := ctx.Backend.(storage.Migrator)
	if !ok {
		fmt.Fprintln(ctx.Out, "This store has no schema to migrate.")
		return nil
	}

	if err := migrator.Open(); err != nil {
		return err
	}

	count, err := migrator.Migrate(func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Out, "No migrations to apply. Database is up to date.")
		return nil
	}
	current, _, err := migrator.SchemaStatus()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "\nSuccessfully applied %d migration(s), schema version %d.\n", count, current)
	return nil
}
