package day

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
)

// SkipCmd closes an activity without reward or penalty.
type SkipCmd struct {
	Ref string `arg:"" help:"Activity number from 'today', or its ID (prefix)."`
}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	inst, err := cli.ResolveInstance(svc, c.Ref)
	if err != nil {
		return err
	}

	if err := svc.Skip(inst.ID, svc.Now()); err != nil {
		return err
	}
	fmt.Printf("» Skipped %s\n", inst.Name)
	return nil
}
