package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type InstanceStatus string

const (
	StatusPending   InstanceStatus = "pending"
	StatusCompleted InstanceStatus = "completed"
	StatusSkipped   InstanceStatus = "skipped"
	StatusExpired   InstanceStatus = "expired"
)

// Terminal reports whether no further transitions are allowed.
func (s InstanceStatus) Terminal() bool {
	return s != StatusPending
}

// instanceNamespace seeds deterministic instance ids.
var instanceNamespace = uuid.MustParse("6f1c2a9e-4d1b-5c7a-9e2f-1b3d5c7e9a0b")

// ActivityInstance is one activity item owed on one date. Name, window and
// reward fields are copied from the item when the day is materialized.
type ActivityInstance struct {
	ID          string         `json:"id"`
	Date        string         `json:"date"` // YYYY-MM-DD format
	ItemID      int64          `json:"item_id"`
	SetID       int64          `json:"set_id"`
	Scheme      Scheme         `json:"scheme"`
	Name        string         `json:"name"`
	StartTime   string         `json:"start_time"` // HH:MM format
	EndTime     string         `json:"end_time"`   // HH:MM format
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	PenaltyID   *int64         `json:"penalty_id,omitempty"`
	RewardValue int            `json:"reward_value"`
	LevelReward int            `json:"level_reward"`
	Status      InstanceStatus `json:"status"`
	ResolvedAt  time.Time      `json:"resolved_at"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
}

// InstanceID derives the stable id of the (date, item) pair.
func InstanceID(date string, itemID int64) string {
	return uuid.NewSHA1(instanceNamespace, []byte(fmt.Sprintf("%s|%d", date, itemID))).String()
}

// Item rebuilds the item snapshot the instance was materialized from.
func (i ActivityInstance) Item() ActivityItem {
	return ActivityItem{
		ID:          i.ItemID,
		SetID:       i.SetID,
		Name:        i.Name,
		StartTime:   i.StartTime,
		EndTime:     i.EndTime,
		PenaltyID:   i.PenaltyID,
		RewardValue: i.RewardValue,
		LevelReward: i.LevelReward,
	}
}

// Open reports whether now is still inside the completion window.
func (i ActivityInstance) Open(now time.Time) bool {
	return now.Before(i.WindowEnd)
}

// Overdue reports whether a pending instance has passed its window end.
func (i ActivityInstance) Overdue(now time.Time) bool {
	return i.Status == StatusPending && !now.Before(i.WindowEnd)
}
