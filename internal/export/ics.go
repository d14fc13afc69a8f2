// Package export renders resolved days as iCalendar data.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/julianstephens/keepup/internal/constants"
	"github.com/julianstephens/keepup/internal/models"
)

// Calendar builds one VEVENT per instance. UIDs are the instance ids, so
// re-exporting a day updates events in a subscribed calendar instead of
// duplicating them.
func Calendar(instances []models.ActivityInstance, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, constants.ICSProductID)

	for _, inst := range instances {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, inst.ID+"@"+constants.AppName)
		event.Props.SetText(ical.PropSummary, inst.Name)
		event.Props.SetText(ical.PropDescription, description(inst))
		event.Props.SetText(ical.PropCategories, string(inst.Scheme))
		event.Props.SetText(ical.PropStatus, eventStatus(inst.Status))

		// UTC avoids shipping VTIMEZONE blocks
		event.Props.SetDateTime(ical.PropDateTimeStart, inst.WindowStart.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, inst.WindowEnd.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// WriteICS encodes instances to w. An empty day still produces a valid
// calendar with no events.
func WriteICS(w io.Writer, instances []models.ActivityInstance, stamp time.Time) error {
	if len(instances) == 0 {
		return writeEmpty(w)
	}
	cal := Calendar(instances, stamp)
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func writeEmpty(w io.Writer) error {
	_, err := fmt.Fprintf(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:%s\r\nEND:VCALENDAR\r\n", constants.ICSProductID)
	return err
}

func description(inst models.ActivityInstance) string {
	desc := fmt.Sprintf("%s-%s, status %s", inst.StartTime, inst.EndTime, inst.Status)
	if inst.RewardValue > 0 {
		desc += fmt.Sprintf(", reward %d", inst.RewardValue)
	}
	return desc
}

func eventStatus(s models.InstanceStatus) string {
	switch s {
	case models.StatusCompleted:
		return "CONFIRMED"
	case models.StatusSkipped, models.StatusExpired:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}
