package activities

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/models"
)

type ItemAddCmd struct {
	SetID       int64  `arg:"" help:"Activity set to add the item to."`
	Name        string `arg:"" help:"Activity name."`
	Start       string `help:"Window start (HH:MM)." required:""`
	End         string `help:"Window end (HH:MM), exclusive." required:""`
	Penalty     *int64 `help:"Penalty ID applied when the window is missed."`
	Reward      int    `help:"Currency earned on completion." default:"0"`
	LevelReward int    `help:"Levels gained on completion." default:"0"`
}

func (c *ItemAddCmd) Run(ctx *cli.Context) error {
	if c.Penalty != nil {
		if _, err := ctx.Store.GetPenalty(*c.Penalty); err != nil {
			return fmt.Errorf("failed to find penalty with ID %d: %w", *c.Penalty, err)
		}
	}

	item := models.ActivityItem{
		SetID:       c.SetID,
		Name:        c.Name,
		StartTime:   c.Start,
		EndTime:     c.End,
		PenaltyID:   c.Penalty,
		RewardValue: c.Reward,
		LevelReward: c.LevelReward,
	}
	if err := item.Validate(); err != nil {
		return err
	}

	created, err := ctx.Store.AddActivityItem(item)
	if err != nil {
		return fmt.Errorf("failed to add activity item: %w", err)
	}

	fmt.Printf("Added activity: %s %s-%s (ID: %d) to set %d\n", created.Name, created.StartTime, created.EndTime, created.ID, c.SetID)
	return nil
}
