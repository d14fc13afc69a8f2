package day

import (
	"fmt"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/constants"
	"github.com/julianstephens/keepup/internal/models"
)

type TodayCmd struct {
	Date string `help:"Show another date (YYYY-MM-DD) instead of today."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
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

	keys := calendar.Derive(day)
	fmt.Printf("%s, %s (%s month)\n\n", keys.Weekday, keys.LocalDate, keys.Parity)
	if len(instances) == 0 {
		fmt.Println("Nothing scheduled. Enjoy the rest day.")
		return nil
	}

	for i, inst := range instances {
		fmt.Printf("%2d. %s %s-%s  %-24s %s%s\n", i+1, cli.StatusMark(inst.Status),
			inst.StartTime, inst.EndTime, inst.Name, inst.ID[:8], remaining(inst, now))
	}

	if unread, err := ctx.Store.CountUnread(); err == nil && unread > 0 {
		fmt.Printf("\n📬 %d unread message(s). Run '%s inbox list'.\n", unread, constants.AppName)
	}
	return nil
}

func resolveDate(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return now, nil
	}
	return calendar.ParseDateInLocation(date, now.Location())
}

func remaining(inst models.ActivityInstance, now time.Time) string {
	if inst.Status != models.StatusPending {
		return "  " + string(inst.Status)
	}
	if now.Before(inst.WindowStart) {
		return ""
	}
	left := inst.WindowEnd.Sub(now).Round(time.Minute)
	return fmt.Sprintf("  (%s left)", left)
}
