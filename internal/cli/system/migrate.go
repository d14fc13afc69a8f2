package system

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
)

// MigrateCmd brings an existing database up to the latest schema. Init is
// idempotent and applies only pending migrations.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("Database is up to date.")
	return nil
}
