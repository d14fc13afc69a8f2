package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
)

// Source supplies the templates a day is resolved from.
type Source interface {
	// Rules returns one rule per recurrence scheme configured for the weekday.
	Rules(day time.Weekday) ([]models.RecurrenceRule, error)
	GetActivitySet(id int64) (models.ActivitySet, error)
}

type Scheduler struct {
	src Source
}

func New(src Source) *Scheduler {
	return &Scheduler{src: src}
}

// ResolveDay lists the activity instances owed on day's local date, ordered by
// window start, then scheme (weekly first), then item id. An item owed through
// both schemes appears once, under the weekly scheme. A day without any
// assignment resolves to an empty slice. day's location is the viewer's zone.
func (s *Scheduler) ResolveDay(day time.Time, resolvedAt time.Time) ([]models.ActivityInstance, error) {
	keys := calendar.Derive(day)

	rules, err := s.src.Rules(keys.Weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurrence rules: %w", err)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Scheme().Rank() < rules[j].Scheme().Rank()
	})

	log := logger.With("date", keys.LocalDate)
	instances := []models.ActivityInstance{}
	seen := make(map[int64]bool)
	for _, rule := range rules {
		setID := rule.SetFor(keys)
		if setID == nil {
			continue
		}

		set, err := s.src.GetActivitySet(*setID)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// A dangling reference means no obligation, same as an empty slot
			log.Warn("Assignment references missing activity set", "set_id", *setID, "scheme", rule.Scheme())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load activity set %d: %w", *setID, err)
		}

		for _, item := range set.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			inst, err := Materialize(day, keys.LocalDate, rule.Scheme(), item, resolvedAt)
			if err != nil {
				return nil, err
			}
			instances = append(instances, inst)
		}
	}

	Sort(instances)
	return instances, nil
}

// Materialize snapshots item into a pending instance on date.
func Materialize(day time.Time, date string, scheme models.Scheme, item models.ActivityItem, resolvedAt time.Time) (models.ActivityInstance, error) {
	start, err := calendar.At(day, item.StartTime)
	if err != nil {
		return models.ActivityInstance{}, fmt.Errorf("item %d start: %w", item.ID, err)
	}
	end, err := calendar.At(day, item.EndTime)
	if err != nil {
		return models.ActivityInstance{}, fmt.Errorf("item %d end: %w", item.ID, err)
	}

	return models.ActivityInstance{
		ID:          models.InstanceID(date, item.ID),
		Date:        date,
		ItemID:      item.ID,
		SetID:       item.SetID,
		Scheme:      scheme,
		Name:        item.Name,
		StartTime:   item.StartTime,
		EndTime:     item.EndTime,
		WindowStart: start,
		WindowEnd:   end,
		PenaltyID:   item.PenaltyID,
		RewardValue: item.RewardValue,
		LevelReward: item.LevelReward,
		Status:      models.StatusPending,
		ResolvedAt:  resolvedAt,
	}, nil
}

// Sort orders instances in place by window start, scheme rank and item id.
func Sort(instances []models.ActivityInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if !a.WindowStart.Equal(b.WindowStart) {
			return a.WindowStart.Before(b.WindowStart)
		}
		if a.Scheme.Rank() != b.Scheme.Rank() {
			return a.Scheme.Rank() < b.Scheme.Rank()
		}
		return a.ItemID < b.ItemID
	})
}
