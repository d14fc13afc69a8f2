// Package templates reads and writes the weekly and parity assignment tables
// and the activity sets they point at.
package templates

import (
	"fmt"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/storage"
)

// Store is the subset of storage.Provider the adapter needs.
type Store interface {
	storage.Queries
	InTx(fn func(q storage.Queries) error) error
}

type Adapter struct {
	store Store
}

func New(store Store) *Adapter {
	return &Adapter{store: store}
}

// GetWeeklyAssignment returns the weekday's weekly set, or nil when there is none.
func (a *Adapter) GetWeeklyAssignment(day time.Weekday) (*int64, error) {
	row, err := a.store.GetWeeklyAssignment(day)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.ActivitySetID, nil
}

// GetParityAssignment returns the set in the weekday's parity slot, or nil.
func (a *Adapter) GetParityAssignment(day time.Weekday, parity calendar.Parity) (*int64, error) {
	row, err := a.store.GetParityAssignment(day)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Slot(parity), nil
}

func (a *Adapter) GetActivitySet(id int64) (models.ActivitySet, error) {
	return a.store.GetActivitySet(id)
}

// Rules returns the weekly rule followed by the parity rule for day. Missing
// rows become rules with no set.
func (a *Adapter) Rules(day time.Weekday) ([]models.RecurrenceRule, error) {
	weekly, err := a.store.GetWeeklyAssignment(day)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	parity, err := a.store.GetParityAssignment(day)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return []models.RecurrenceRule{weekly.Rule(), parity.Rule()}, nil
}

// AssignWeekly points day's weekly slot at setID. A nil setID unassigns.
func (a *Adapter) AssignWeekly(day time.Weekday, setID *int64) error {
	return a.store.InTx(func(q storage.Queries) error {
		if err := checkSet(q, setID); err != nil {
			return err
		}
		return q.PutWeeklyAssignment(models.WeeklyAssignment{DayOfWeek: day, ActivitySetID: setID})
	})
}

// AssignParity sets one parity slot of day and keeps the sibling slot as stored.
func (a *Adapter) AssignParity(day time.Weekday, parity calendar.Parity, setID *int64) error {
	return a.store.InTx(func(q storage.Queries) error {
		if err := checkSet(q, setID); err != nil {
			return err
		}

		row, err := q.GetParityAssignment(day)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		row.DayOfWeek = day
		return q.PutParityAssignment(row.WithSlot(parity, setID))
	})
}

func (a *Adapter) UnassignWeekly(day time.Weekday) error {
	return a.AssignWeekly(day, nil)
}

func (a *Adapter) UnassignParity(day time.Weekday, parity calendar.Parity) error {
	return a.AssignParity(day, parity, nil)
}

// DeleteActivitySet clears every assignment pointing at id and removes the set,
// in one transaction.
func (a *Adapter) DeleteActivitySet(id int64) error {
	return a.store.InTx(func(q storage.Queries) error {
		cleared, err := q.ClearSetReferences(id)
		if err != nil {
			return err
		}
		if err := q.DeleteActivitySet(id); err != nil {
			return err
		}
		logger.Info("Deleted activity set", "set_id", id, "cleared_assignments", cleared)
		return nil
	})
}

// Week returns the weekly and parity rows for all seven days, Sunday first.
func (a *Adapter) Week() ([]models.WeeklyAssignment, []models.ParityAssignment, error) {
	weekly := make([]models.WeeklyAssignment, 0, 7)
	parity := make([]models.ParityAssignment, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		w, err := a.store.GetWeeklyAssignment(d)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, err
		}
		p, err := a.store.GetParityAssignment(d)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, err
		}
		w.DayOfWeek, p.DayOfWeek = d, d
		weekly = append(weekly, w)
		parity = append(parity, p)
	}
	return weekly, parity, nil
}

func checkSet(q storage.Queries, setID *int64) error {
	if setID == nil {
		return nil
	}
	if _, err := q.GetActivitySet(*setID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: activity set %d does not exist", apperrors.ErrInvalidAssignment, *setID)
		}
		return err
	}
	return nil
}
