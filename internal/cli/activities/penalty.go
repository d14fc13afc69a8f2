package activities

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/models"
)

type PenaltyAddCmd struct {
	Name      string `arg:"" help:"Penalty name."`
	LevelDrop int    `arg:"" help:"Levels lost when applied."`
}

func (c *PenaltyAddCmd) Run(ctx *cli.Context) error {
	p := models.Penalty{Name: c.Name, LevelDrop: c.LevelDrop}
	if err := p.Validate(); err != nil {
		return err
	}

	created, err := ctx.Store.AddPenalty(p)
	if err != nil {
		return fmt.Errorf("failed to add penalty: %w", err)
	}

	fmt.Printf("Added penalty: %s (ID: %d, level -%d)\n", created.Name, created.ID, created.LevelDrop)
	return nil
}

type PenaltyListCmd struct{}

func (c *PenaltyListCmd) Run(ctx *cli.Context) error {
	penalties, err := ctx.Store.GetAllPenalties()
	if err != nil {
		return err
	}

	fallback := ctx.Policy().Policy().Fallback
	fmt.Printf("Fallback: %s (level -%d)\n", fallback.Name, fallback.LevelDrop)

	if len(penalties) == 0 {
		fmt.Println("No penalties defined.")
		return nil
	}
	for _, p := range penalties {
		fmt.Printf("[%d] %s (level -%d)\n", p.ID, p.Name, p.LevelDrop)
	}
	return nil
}
