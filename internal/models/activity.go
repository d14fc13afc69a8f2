package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/keepup/internal/constants"
)

// Penalty is a named level loss that activity items reference.
type Penalty struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LevelDrop int    `json:"level_drop"`
}

func (p *Penalty) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("penalty name cannot be empty")
	}
	if p.LevelDrop < 0 {
		return fmt.Errorf("level drop cannot be negative, got %d", p.LevelDrop)
	}
	return nil
}

type ActivityItem struct {
	ID          int64  `json:"id"`
	SetID       int64  `json:"set_id"`
	Name        string `json:"name"`
	StartTime   string `json:"start_time"` // HH:MM format
	EndTime     string `json:"end_time"`   // HH:MM format
	PenaltyID   *int64 `json:"penalty_id,omitempty"`
	RewardValue int    `json:"reward_value"`
	LevelReward int    `json:"level_reward"`
	Position    int    `json:"position"`
}

func (i *ActivityItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("activity name cannot be empty")
	}
	start, err := time.Parse(constants.TimeFormat, i.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time (expected HH:MM): %w", err)
	}
	end, err := time.Parse(constants.TimeFormat, i.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time (expected HH:MM): %w", err)
	}
	// Windows never span midnight
	if end.Before(start) {
		return fmt.Errorf("end time %s is before start time %s", i.EndTime, i.StartTime)
	}
	if i.RewardValue < 0 {
		return fmt.Errorf("reward value cannot be negative, got %d", i.RewardValue)
	}
	if i.LevelReward < 0 {
		return fmt.Errorf("level reward cannot be negative, got %d", i.LevelReward)
	}
	return nil
}

type ActivitySet struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Items []ActivityItem `json:"items"`
}

func (s *ActivitySet) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("activity set name cannot be empty")
	}
	for idx := range s.Items {
		if err := s.Items[idx].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx+1, err)
		}
	}
	return nil
}
