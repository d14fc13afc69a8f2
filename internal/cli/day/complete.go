package day

import (
	"errors"
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/reward"
)

type CompleteCmd struct {
	Ref       string `arg:"" help:"Activity number from 'today', or its ID (prefix)."`
	Intensity string `help:"Named intensity from the policy file (e.g. light, moderate, hard)."`
	VegGoal   bool   `help:"The daily vegetable goal was met." name:"veg-goal"`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	inst, err := cli.ResolveInstance(svc, c.Ref)
	if err != nil {
		return err
	}

	policy := ctx.Policy()
	var multipliers []reward.Multiplier
	if c.Intensity != "" {
		m, err := policy.IntensityMultiplier(c.Intensity)
		if err != nil {
			return err
		}
		multipliers = append(multipliers, m)
	}
	if c.VegGoal {
		multipliers = append(multipliers, reward.VegetableGoalBonus(true, policy.Rewards.VegetableBonus))
	}

	r, err := svc.Complete(inst.ID, svc.Now(), multipliers...)
	if err != nil {
		if errors.Is(err, apperrors.ErrActivityWindowClosed) {
			return fmt.Errorf("too late: %w", err)
		}
		return fmt.Errorf("failed to complete %s: %w", c.Ref, err)
	}

	name := inst.Name
	if name == "" {
		name = inst.ID
	}
	fmt.Printf("✓ Completed %s: +%d currency", name, r.CurrencyDelta)
	if r.LevelDelta > 0 {
		fmt.Printf(", +%d level", r.LevelDelta)
	}
	fmt.Println()
	return nil
}
