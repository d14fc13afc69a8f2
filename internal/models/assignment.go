package models

import (
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
)

type Scheme string

const (
	SchemeWeekly Scheme = "weekly"
	SchemeParity Scheme = "parity"
)

// Rank orders schemes when two instances share a window start.
func (s Scheme) Rank() int {
	if s == SchemeWeekly {
		return 0
	}
	return 1
}

// WeeklyAssignment maps a weekday to the set used every week ("Day Routine").
type WeeklyAssignment struct {
	DayOfWeek     time.Weekday `json:"day_of_week"`
	ActivitySetID *int64       `json:"activity_set_id"`
}

// ParityAssignment maps a weekday to alternate sets picked by month parity.
type ParityAssignment struct {
	DayOfWeek         time.Weekday `json:"day_of_week"`
	ActivitySetIDOdd  *int64       `json:"activity_set_id_odd"`
	ActivitySetIDEven *int64       `json:"activity_set_id_even"`
}

// Slot returns the column for the given parity.
func (a ParityAssignment) Slot(p calendar.Parity) *int64 {
	if p == calendar.Odd {
		return a.ActivitySetIDOdd
	}
	return a.ActivitySetIDEven
}

// WithSlot returns a copy with only the parity's column replaced.
func (a ParityAssignment) WithSlot(p calendar.Parity, setID *int64) ParityAssignment {
	if p == calendar.Odd {
		a.ActivitySetIDOdd = setID
	} else {
		a.ActivitySetIDEven = setID
	}
	return a
}

// RecurrenceRule is either a WeeklyRule or a ParityRule.
type RecurrenceRule interface {
	Scheme() Scheme
	// SetFor returns the set due for the given calendar keys, or nil.
	SetFor(keys calendar.Keys) *int64
}

type WeeklyRule struct {
	SetID *int64
}

func (WeeklyRule) Scheme() Scheme { return SchemeWeekly }

func (r WeeklyRule) SetFor(calendar.Keys) *int64 { return r.SetID }

type ParityRule struct {
	OddSetID  *int64
	EvenSetID *int64
}

func (ParityRule) Scheme() Scheme { return SchemeParity }

func (r ParityRule) SetFor(keys calendar.Keys) *int64 {
	if keys.Parity == calendar.Odd {
		return r.OddSetID
	}
	return r.EvenSetID
}

func (a WeeklyAssignment) Rule() RecurrenceRule {
	return WeeklyRule{SetID: a.ActivitySetID}
}

func (a ParityAssignment) Rule() RecurrenceRule {
	return ParityRule{OddSetID: a.ActivitySetIDOdd, EvenSetID: a.ActivitySetIDEven}
}
