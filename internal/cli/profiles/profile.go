package profiles

import (
	"errors"
	"fmt"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/constants"
	apperrors "github.com/julianstephens/keepup/internal/errors"
)

type ProfileCreateCmd struct {
	Name      string `arg:"" help:"Your name."`
	Birthdate string `arg:"" help:"Birthdate (YYYY-MM-DD). Sets the starting level."`
}

func (c *ProfileCreateCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	profile, err := svc.CreateProfile(c.Name, c.Birthdate)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileExists) {
			return fmt.Errorf("a profile already exists. Use '%s profile show' to view it", constants.AppName)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	fmt.Printf("Created profile for %s (level %d)\n", profile.Name, profile.Level)
	return nil
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Store.GetProfile()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no profile yet. Create one with '%s profile create NAME YYYY-MM-DD'", constants.AppName)
		}
		return err
	}

	fmt.Printf("Name:      %s\n", profile.Name)
	fmt.Printf("Birthdate: %s\n", profile.Birthdate)
	fmt.Printf("Level:     %d\n", profile.Level)
	fmt.Printf("Currency:  %d\n", profile.Currency)
	fmt.Printf("Since:     %s\n", profile.CreatedAt.Format(constants.DateFormat))
	return nil
}

// ProfileLevelCmd compares the current level with the level the policy
// derives from age alone.
type ProfileLevelCmd struct{}

func (c *ProfileLevelCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	profile, err := ctx.Store.GetProfile()
	if err != nil {
		return err
	}

	ageLevel, err := svc.LevelForAge(profile, svc.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Current level: %d\n", profile.Level)
	fmt.Printf("Age level:     %d\n", ageLevel)
	switch diff := profile.Level - ageLevel; {
	case diff > 0:
		fmt.Printf("You are %d level(s) ahead.\n", diff)
	case diff < 0:
		fmt.Printf("You are %d level(s) behind.\n", -diff)
	default:
		fmt.Println("You are right on track.")
	}
	return nil
}
