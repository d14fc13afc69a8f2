// Package reward turns completions and expiries into profile deltas. Nothing in
// here does I/O; the engine applies the results inside a transaction.
package reward

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/keepup/internal/models"
)

// AgeBand maps every age at or above MinAge (up to the next band) to Level.
type AgeBand struct {
	MinAge int `yaml:"min_age" json:"min_age"`
	Level  int `yaml:"level" json:"level"`
}

// Policy holds the balance knobs. The zero value is usable: one level per year
// of age, and a "Missed activity" penalty that drops one level.
type Policy struct {
	Bands    []AgeBand
	Fallback models.Penalty
}

// DefaultFallback applies when an item's penalty reference is missing.
var DefaultFallback = models.Penalty{Name: "Missed activity", LevelDrop: 1}

func (p Policy) fallback() models.Penalty {
	if p.Fallback.Name == "" {
		return DefaultFallback
	}
	return p.Fallback
}

// Reward is what a completion earns. Both fields are never negative.
type Reward struct {
	CurrencyDelta int
	LevelDelta    int
}

// Multiplier scales the base reward of a completion.
type Multiplier struct {
	Name   string
	Factor float64
}

// Intensity scales by how hard the activity was, using a factor from the policy file.
func Intensity(factor float64) Multiplier {
	return Multiplier{Name: "intensity", Factor: factor}
}

// VegetableGoalBonus scales by factor when the daily vegetable goal was met.
func VegetableGoalBonus(met bool, factor float64) Multiplier {
	if !met {
		return Multiplier{Name: "vegetable_goal", Factor: 1}
	}
	return Multiplier{Name: "vegetable_goal", Factor: factor}
}

// AgeOn returns whole years between birthdate and asOf, floored at zero.
func AgeOn(birthdate, asOf time.Time) int {
	years := asOf.Year() - birthdate.Year()
	if asOf.Month() < birthdate.Month() || (asOf.Month() == birthdate.Month() && asOf.Day() < birthdate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// LevelFromBirthdate maps age to a level through bands. With no bands, level
// equals age. The result is never below 1.
func LevelFromBirthdate(birthdate, asOf time.Time, bands []AgeBand) int {
	age := AgeOn(birthdate, asOf)
	if len(bands) == 0 {
		return clampLevel(age)
	}

	sorted := make([]AgeBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinAge < sorted[j].MinAge })

	level := 1
	for _, b := range sorted {
		if age < b.MinAge {
			break
		}
		// Bands out of order never make level go down
		if b.Level > level {
			level = b.Level
		}
	}
	return clampLevel(level)
}

// RewardForCompletion scales item's base reward by every multiplier. Factors
// that are non-positive, NaN or infinite are ignored.
func RewardForCompletion(item models.ActivityItem, multipliers ...Multiplier) Reward {
	factor := 1.0
	for _, m := range multipliers {
		if m.Factor <= 0 || math.IsNaN(m.Factor) || math.IsInf(m.Factor, 0) {
			continue
		}
		factor *= m.Factor
	}

	currency := int(math.Round(float64(item.RewardValue) * factor))
	if currency < 0 {
		currency = 0
	}
	level := item.LevelReward
	if level < 0 {
		level = 0
	}
	return Reward{CurrencyDelta: currency, LevelDelta: level}
}

// PenaltyForExpiry returns the item's configured penalty, or the policy fallback
// when the reference is unset or points at nothing.
func (p Policy) PenaltyForExpiry(item models.ActivityItem, penalties map[int64]models.Penalty) models.Penalty {
	if item.PenaltyID != nil {
		if pen, ok := penalties[*item.PenaltyID]; ok {
			if pen.LevelDrop < 0 {
				pen.LevelDrop = 0
			}
			return pen
		}
	}
	return p.fallback()
}

// ApplyReward adds r to the profile.
func ApplyReward(profile models.Profile, r Reward) models.Profile {
	profile.Currency = clampCurrency(profile.Currency + r.CurrencyDelta)
	profile.Level = clampLevel(profile.Level + r.LevelDelta)
	return profile
}

// ApplyPenalty lowers the level. Currency is never touched.
func ApplyPenalty(profile models.Profile, pen models.Penalty) models.Profile {
	drop := pen.LevelDrop
	if drop < 0 {
		drop = 0
	}
	profile.Level = clampLevel(profile.Level - drop)
	return profile
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}

func clampCurrency(currency int) int {
	if currency < 0 {
		return 0
	}
	return currency
}
