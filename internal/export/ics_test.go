package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/keepup/internal/models"
)

func instance(id, name string, start time.Time, status models.InstanceStatus) models.ActivityInstance {
	return models.ActivityInstance{
		ID:          id,
		Date:        start.Format("2006-01-02"),
		Scheme:      models.SchemeWeekly,
		Name:        name,
		StartTime:   start.Format("15:04"),
		EndTime:     start.Add(time.Hour).Format("15:04"),
		WindowStart: start,
		WindowEnd:   start.Add(time.Hour),
		RewardValue: 5,
		Status:      status,
	}
}

func TestWriteICS_RoundTrip(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	start := time.Date(2024, 1, 8, 6, 0, 0, 0, tokyo)
	instances := []models.ActivityInstance{
		instance("a", "Run", start, models.StatusCompleted),
		instance("b", "Read", start.Add(15*time.Hour), models.StatusPending),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, instances, start))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Run", summary)

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "a@keepup", uid)

	dtStart, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, dtStart.Equal(start), "start %v != %v", dtStart, start)

	status, err := events[1].Props.Text(ical.PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "TENTATIVE", status)
}

func TestWriteICS_EmptyDay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, nil, time.Now()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.NotContains(t, out, "VEVENT")
}

func TestEventStatus(t *testing.T) {
	assert.Equal(t, "CONFIRMED", eventStatus(models.StatusCompleted))
	assert.Equal(t, "CANCELLED", eventStatus(models.StatusExpired))
	assert.Equal(t, "CANCELLED", eventStatus(models.StatusSkipped))
	assert.Equal(t, "TENTATIVE", eventStatus(models.StatusPending))
}
