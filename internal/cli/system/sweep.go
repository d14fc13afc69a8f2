package system

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/constants"
)

// SweepCmd expires every overdue activity once and exits.
type SweepCmd struct{}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	n, err := svc.Sweep(svc.Now())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	if n == 0 {
		fmt.Println("Nothing overdue.")
		return nil
	}
	fmt.Printf("Expired %d overdue activit%s. See '%s inbox list' for penalties.\n", n, plural(n, "y", "ies"), constants.AppName)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
