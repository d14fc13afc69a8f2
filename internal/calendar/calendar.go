// Package calendar derives the per-day keys the scheduler is indexed by and
// holds the wall-clock helpers shared across the application.
package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/keepup/internal/constants"
)

type Parity string

const (
	Odd  Parity = "odd"
	Even Parity = "even"
)

// ParseParity accepts "odd" or "even".
func ParseParity(s string) (Parity, error) {
	switch Parity(s) {
	case Odd, Even:
		return Parity(s), nil
	default:
		return "", fmt.Errorf("invalid month parity %q (expected odd or even)", s)
	}
}

// Keys are the calendar lookups for one day.
type Keys struct {
	Weekday   time.Weekday // Sunday = 0
	Parity    Parity       // January = 1 is odd
	LocalDate string       // YYYY-MM-DD in t's location
}

// Derive computes the keys for t in t's own location. Callers convert t to the
// viewer's zone first; no UTC normalization happens here.
func Derive(t time.Time) Keys {
	parity := Even
	if int(t.Month())%2 != 0 {
		parity = Odd
	}
	return Keys{
		Weekday:   t.Weekday(),
		Parity:    parity,
		LocalDate: t.Format(constants.DateFormat),
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns T. Used by tests and dry runs.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) as midnight in loc.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// At places an HH:MM wall-clock time on day's calendar date in day's location.
func At(day time.Time, timeStr string) (time.Time, error) {
	tod, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
