package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/keepup/internal/constants"
)

// Profile is the single user record per installation.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Birthdate string    `json:"birthdate"` // YYYY-MM-DD format
	Level     int       `json:"level"`
	Currency  int       `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if _, err := time.Parse(constants.DateFormat, p.Birthdate); err != nil {
		return fmt.Errorf("invalid birthdate (expected YYYY-MM-DD): %w", err)
	}
	if p.Level < 1 {
		return fmt.Errorf("level must be at least 1, got %d", p.Level)
	}
	if p.Currency < 0 {
		return fmt.Errorf("currency cannot be negative, got %d", p.Currency)
	}
	return nil
}

// BirthdateTime parses Birthdate as midnight in loc.
func (p *Profile) BirthdateTime(loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, p.Birthdate)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
