package system

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/validation"
)

// ValidateCmd checks every set and the weekly layout for conflicts.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	sets, err := ctx.Store.GetAllActivitySets()
	if err != nil {
		return fmt.Errorf("failed to get activity sets: %w", err)
	}
	penalties, err := ctx.Store.GetAllPenalties()
	if err != nil {
		return fmt.Errorf("failed to get penalties: %w", err)
	}

	v := validation.New(penalties)
	var result validation.ValidationResult
	for _, set := range sets {
		r := v.ValidateSet(set)
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}

	week, err := v.ValidateWeek(svc.Templates())
	if err != nil {
		return fmt.Errorf("failed to validate week: %w", err)
	}
	result.Conflicts = append(result.Conflicts, week.Conflicts...)

	fmt.Print(result.FormatReport())
	if !result.HasConflicts() {
		fmt.Println()
	}
	return nil
}
