// Package config loads the balance policy file: age bands, fallback penalty,
// reward multipliers and the watcher schedule.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/reward"
)

type Config struct {
	Levels  LevelsConfig  `yaml:"levels"`
	Penalty PenaltyConfig `yaml:"penalty"`
	Rewards RewardsConfig `yaml:"rewards"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// LevelsConfig maps age to level. No bands means one level per year of age.
type LevelsConfig struct {
	Bands []reward.AgeBand `yaml:"bands"`
}

// PenaltyConfig is applied when an item has no usable penalty configured.
type PenaltyConfig struct {
	FallbackName      string `yaml:"fallback_name"       env:"KEEPUP_FALLBACK_PENALTY_NAME" env-default:"Missed activity"`
	FallbackLevelDrop int    `yaml:"fallback_level_drop" env:"KEEPUP_FALLBACK_LEVEL_DROP"   env-default:"1"`
}

type RewardsConfig struct {
	// Intensity names the factors accepted by "complete --intensity".
	Intensity      map[string]float64 `yaml:"intensity"`
	VegetableBonus float64            `yaml:"vegetable_bonus" env:"KEEPUP_VEGETABLE_BONUS" env-default:"1"`
}

type WatchConfig struct {
	Spec string `yaml:"spec" env:"KEEPUP_WATCH_SPEC" env-default:"@every 1m"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"KEEPUP_LOG_LEVEL" env-default:"warn"`
}

// DefaultIntensity is used when the policy file names no intensities. The
// factors are neutral; real weights belong in the policy file.
var DefaultIntensity = map[string]float64{
	"light":    1,
	"moderate": 1,
	"hard":     1,
}

// Load reads the policy from path, with environment overrides on top.
// Priority: ENV > YAML > defaults (via env-default tags). A missing file is
// only an error when explicit is set.
func Load(path string, explicit bool) (*Config, error) {
	var cfg Config

	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if len(cfg.Rewards.Intensity) == 0 {
		cfg.Rewards.Intensity = make(map[string]float64, len(DefaultIntensity))
		for k, v := range DefaultIntensity {
			cfg.Rewards.Intensity[k] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	for i, b := range c.Levels.Bands {
		if b.MinAge < 0 {
			errs = append(errs, fmt.Sprintf("levels.bands[%d].min_age must be >= 0", i))
		}
		if b.Level < 1 {
			errs = append(errs, fmt.Sprintf("levels.bands[%d].level must be >= 1", i))
		}
	}
	if strings.TrimSpace(c.Penalty.FallbackName) == "" {
		errs = append(errs, "penalty.fallback_name is required")
	}
	if c.Penalty.FallbackLevelDrop < 0 {
		errs = append(errs, "penalty.fallback_level_drop must be >= 0")
	}
	for name, f := range c.Rewards.Intensity {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, fmt.Sprintf("rewards.intensity.%s must be a positive number", name))
		}
	}
	if c.Rewards.VegetableBonus <= 0 {
		errs = append(errs, "rewards.vegetable_bonus must be positive")
	}
	if _, err := cron.ParseStandard(c.Watch.Spec); err != nil {
		errs = append(errs, fmt.Sprintf("watch.spec: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Policy converts the file into what the reward calculator consumes.
func (c *Config) Policy() reward.Policy {
	return reward.Policy{
		Bands: c.Levels.Bands,
		Fallback: models.Penalty{
			Name:      c.Penalty.FallbackName,
			LevelDrop: c.Penalty.FallbackLevelDrop,
		},
	}
}

// IntensityMultiplier looks up a named intensity.
func (c *Config) IntensityMultiplier(name string) (reward.Multiplier, error) {
	f, ok := c.Rewards.Intensity[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(c.Rewards.Intensity))
		for k := range c.Rewards.Intensity {
			names = append(names, k)
		}
		sort.Strings(names)
		return reward.Multiplier{}, fmt.Errorf("unknown intensity %q (expected one of: %s)", name, strings.Join(names, ", "))
	}
	return reward.Intensity(f), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
