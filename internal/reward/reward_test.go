package reward

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/keepup/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeOn(t *testing.T) {
	birth := date(1999, time.March, 15)
	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"day before birthday", date(2024, time.March, 14), 24},
		{"on birthday", date(2024, time.March, 15), 25},
		{"later in year", date(2024, time.December, 1), 25},
		{"before birth", date(1998, time.January, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeOn(birth, tt.asOf))
		})
	}
}

func TestLevelFromBirthdate_DefaultIsAge(t *testing.T) {
	birth := date(1999, time.March, 15)
	asOf := date(2024, time.June, 1)

	assert.Equal(t, 25, LevelFromBirthdate(birth, asOf, nil))
	// Stable across repeated calls on the same day
	assert.Equal(t, LevelFromBirthdate(birth, asOf, nil), LevelFromBirthdate(birth, asOf, nil))
}

func TestLevelFromBirthdate_NeverBelowOne(t *testing.T) {
	birth := date(2024, time.May, 1)
	assert.Equal(t, 1, LevelFromBirthdate(birth, date(2024, time.June, 1), nil))
	assert.Equal(t, 1, LevelFromBirthdate(birth, date(2020, time.June, 1), nil))
}

func TestLevelFromBirthdate_Bands(t *testing.T) {
	bands := []AgeBand{
		{MinAge: 30, Level: 4},
		{MinAge: 0, Level: 1},
		{MinAge: 18, Level: 2},
		{MinAge: 25, Level: 3},
	}
	birth := date(1999, time.March, 15)

	tests := []struct {
		asOf time.Time
		want int
	}{
		{date(2010, time.January, 1), 1},
		{date(2017, time.March, 15), 2},
		{date(2024, time.March, 14), 2},
		{date(2024, time.March, 15), 3},
		{date(2040, time.January, 1), 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromBirthdate(birth, tt.asOf, bands), "asOf %s", tt.asOf.Format("2006-01-02"))
	}
}

func TestLevelFromBirthdate_Monotone(t *testing.T) {
	bands := []AgeBand{{MinAge: 10, Level: 5}, {MinAge: 20, Level: 3}}
	birth := date(2000, time.January, 1)

	prev := 0
	for year := 2000; year <= 2040; year++ {
		level := LevelFromBirthdate(birth, date(year, time.June, 1), bands)
		assert.GreaterOrEqual(t, level, prev, "level dropped at %d", year)
		prev = level
	}
}

func TestRewardForCompletion(t *testing.T) {
	item := models.ActivityItem{RewardValue: 10, LevelReward: 1}

	tests := []struct {
		name        string
		multipliers []Multiplier
		want        Reward
	}{
		{"base", nil, Reward{CurrencyDelta: 10, LevelDelta: 1}},
		{"intensity", []Multiplier{Intensity(1.5)}, Reward{CurrencyDelta: 15, LevelDelta: 1}},
		{"stacked", []Multiplier{Intensity(1.5), VegetableGoalBonus(true, 2)}, Reward{CurrencyDelta: 30, LevelDelta: 1}},
		{"goal missed", []Multiplier{VegetableGoalBonus(false, 2)}, Reward{CurrencyDelta: 10, LevelDelta: 1}},
		{"rounds half away", []Multiplier{Intensity(1.25)}, Reward{CurrencyDelta: 13, LevelDelta: 1}},
		{"ignores bad factors", []Multiplier{Intensity(-2), Intensity(0), Intensity(math.NaN()), Intensity(math.Inf(1))}, Reward{CurrencyDelta: 10, LevelDelta: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewardForCompletion(item, tt.multipliers...))
		})
	}
}

func TestRewardForCompletion_NeverNegative(t *testing.T) {
	r := RewardForCompletion(models.ActivityItem{RewardValue: -5, LevelReward: -1})
	assert.Equal(t, Reward{}, r)
}

func TestPenaltyForExpiry(t *testing.T) {
	penaltyID := int64(3)
	missingID := int64(9)
	penalties := map[int64]models.Penalty{3: {ID: 3, Name: "Skipped workout", LevelDrop: 2}}

	var policy Policy
	assert.Equal(t, "Skipped workout", policy.PenaltyForExpiry(models.ActivityItem{PenaltyID: &penaltyID}, penalties).Name)
	assert.Equal(t, DefaultFallback, policy.PenaltyForExpiry(models.ActivityItem{PenaltyID: &missingID}, penalties))
	assert.Equal(t, DefaultFallback, policy.PenaltyForExpiry(models.ActivityItem{}, penalties))

	custom := Policy{Fallback: models.Penalty{Name: "Slacked", LevelDrop: 3}}
	assert.Equal(t, 3, custom.PenaltyForExpiry(models.ActivityItem{}, nil).LevelDrop)
}

func TestApplyReward(t *testing.T) {
	profile := models.Profile{Level: 5, Currency: 10}
	got := ApplyReward(profile, Reward{CurrencyDelta: 7, LevelDelta: 2})
	assert.Equal(t, 7, got.Level)
	assert.Equal(t, 17, got.Currency)
}

func TestApplyPenalty_ClampsLevelAndKeepsCurrency(t *testing.T) {
	profile := models.Profile{Level: 2, Currency: 40}
	got := ApplyPenalty(profile, models.Penalty{LevelDrop: 5})
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 40, got.Currency)

	got = ApplyPenalty(profile, models.Penalty{LevelDrop: -3})
	assert.Equal(t, 2, got.Level, "negative drop must not raise the level")
}
