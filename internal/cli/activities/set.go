package activities

import (
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/models"
)

type SetAddCmd struct {
	Name  string   `arg:"" help:"Name of the activity set."`
	Items []string `help:"Item as Name@HH:MM-HH:MM. Repeatable." name:"item" short:"i"`
}

func (c *SetAddCmd) Run(ctx *cli.Context) error {
	set := models.ActivitySet{Name: c.Name}
	for _, spec := range c.Items {
		item, err := cli.ParseItemSpec(spec)
		if err != nil {
			return err
		}
		set.Items = append(set.Items, item)
	}
	if err := set.Validate(); err != nil {
		return err
	}

	created, err := ctx.Store.AddActivitySet(set)
	if err != nil {
		return fmt.Errorf("failed to add activity set: %w", err)
	}

	fmt.Printf("Added activity set: %s (ID: %d, %d items)\n", created.Name, created.ID, len(created.Items))
	return nil
}

type SetListCmd struct{}

func (c *SetListCmd) Run(ctx *cli.Context) error {
	sets, err := ctx.Store.GetAllActivitySets()
	if err != nil {
		return err
	}

	if len(sets) == 0 {
		fmt.Println("No activity sets found.")
		return nil
	}

	for _, s := range sets {
		fmt.Printf("[%d] %s (%d items)\n", s.ID, s.Name, len(s.Items))
	}
	return nil
}

type SetShowCmd struct {
	ID int64 `arg:"" help:"Activity set ID."`
}

func (c *SetShowCmd) Run(ctx *cli.Context) error {
	set, err := ctx.Store.GetActivitySet(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find activity set with ID %d: %w", c.ID, err)
	}

	fmt.Printf("%s (ID: %d)\n", set.Name, set.ID)
	if len(set.Items) == 0 {
		fmt.Println("  (no items)")
		return nil
	}
	for _, item := range set.Items {
		penalty := "default"
		if item.PenaltyID != nil {
			penalty = fmt.Sprintf("#%d", *item.PenaltyID)
		}
		fmt.Printf("  [%d] %s-%s  %s  (reward %d, level +%d, penalty %s)\n",
			item.ID, item.StartTime, item.EndTime, item.Name, item.RewardValue, item.LevelReward, penalty)
	}
	return nil
}

type SetDeleteCmd struct {
	ID int64 `arg:"" help:"Activity set ID to delete."`
}

func (c *SetDeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	// Check if set exists first
	set, err := ctx.Store.GetActivitySet(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find activity set with ID %d: %w", c.ID, err)
	}

	if err := svc.Templates().DeleteActivitySet(c.ID); err != nil {
		return fmt.Errorf("failed to delete activity set: %w", err)
	}

	fmt.Printf("Deleted activity set: %s (ID: %d). Assignments that used it were cleared.\n", set.Name, c.ID)
	return nil
}
