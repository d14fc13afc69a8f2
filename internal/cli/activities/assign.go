package activities

import (
	"errors"
	"fmt"

	"github.com/julianstephens/keepup/internal/calendar"
	"github.com/julianstephens/keepup/internal/cli"
	apperrors "github.com/julianstephens/keepup/internal/errors"
)

type AssignWeeklyCmd struct {
	Day   string `arg:"" help:"Weekday (mon, tuesday, 0-6)."`
	SetID int64  `arg:"" help:"Activity set used every week on that day."`
}

func (c *AssignWeeklyCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	day, err := cli.ParseWeekday(c.Day)
	if err != nil {
		return err
	}

	if err := svc.Templates().AssignWeekly(day, &c.SetID); err != nil {
		return assignError(err, c.SetID)
	}
	fmt.Printf("%s routine: set %d\n", day, c.SetID)
	return nil
}

type AssignParityCmd struct {
	Day    string `arg:"" help:"Weekday (mon, tuesday, 0-6)."`
	Parity string `arg:"" help:"Month parity: odd (Jan, Mar, ...) or even (Feb, Apr, ...)." enum:"odd,even"`
	SetID  int64  `arg:"" help:"Activity set used on that day in months of that parity."`
}

func (c *AssignParityCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	day, err := cli.ParseWeekday(c.Day)
	if err != nil {
		return err
	}
	parity, err := calendar.ParseParity(c.Parity)
	if err != nil {
		return err
	}

	if err := svc.Templates().AssignParity(day, parity, &c.SetID); err != nil {
		return assignError(err, c.SetID)
	}
	fmt.Printf("%s %s months: set %d\n", day, parity, c.SetID)
	return nil
}

type AssignClearCmd struct {
	Day    string `arg:"" help:"Weekday (mon, tuesday, 0-6)."`
	Scheme string `help:"Which assignment to clear." enum:"weekly,parity,all" default:"all"`
	Parity string `help:"Clear only one parity slot (odd or even)."`
}

func (c *AssignClearCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	day, err := cli.ParseWeekday(c.Day)
	if err != nil {
		return err
	}
	tmpl := svc.Templates()

	if c.Scheme == "weekly" || c.Scheme == "all" {
		if err := tmpl.UnassignWeekly(day); err != nil {
			return err
		}
	}
	if c.Scheme == "parity" || c.Scheme == "all" {
		parities := []calendar.Parity{calendar.Odd, calendar.Even}
		if c.Parity != "" {
			p, err := calendar.ParseParity(c.Parity)
			if err != nil {
				return err
			}
			parities = []calendar.Parity{p}
		}
		for _, p := range parities {
			if err := tmpl.UnassignParity(day, p); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Cleared %s assignment(s) for %s\n", c.Scheme, day)
	return nil
}

type AssignShowCmd struct{}

func (c *AssignShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	weekly, parity, err := svc.Templates().Week()
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %-8s %-8s %-8s\n", "Day", "Routine", "Odd", "Even")
	for i := range weekly {
		fmt.Printf("%-10s %-8s %-8s %-8s\n", weekly[i].DayOfWeek,
			cli.FormatSetRef(weekly[i].ActivitySetID),
			cli.FormatSetRef(parity[i].ActivitySetIDOdd),
			cli.FormatSetRef(parity[i].ActivitySetIDEven))
	}
	return nil
}

func assignError(err error, setID int64) error {
	if errors.Is(err, apperrors.ErrInvalidAssignment) {
		return fmt.Errorf("activity set %d does not exist", setID)
	}
	return fmt.Errorf("failed to save assignment: %w", err)
}
