package day

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/export"
)

// ExportCmd writes a resolved day as an iCalendar file.
type ExportCmd struct {
	Date   string `help:"Date to export (YYYY-MM-DD). Defaults to today."`
	Output string `help:"Output file. Defaults to stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	now := svc.Now()
	day, err := resolveDate(c.Date, now)
	if err != nil {
		return err
	}

	instances, err := svc.Observe(day, now)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WriteICS(w, instances, now); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "Exported %d activities to %s\n", len(instances), c.Output)
	}
	return nil
}
