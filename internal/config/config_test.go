package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/keepup/internal/reward"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
levels:
  bands:
    - min_age: 0
      level: 1
    - min_age: 13
      level: 5
    - min_age: 18
      level: 10

penalty:
  fallback_name: "Missed it"
  fallback_level_drop: 2

rewards:
  intensity:
    easy: 0.5
    brutal: 3
  vegetable_bonus: 2

watch:
  spec: "@every 30s"

log:
  level: "debug"
`

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Penalty.FallbackName != "Missed activity" {
		t.Errorf("FallbackName = %q", cfg.Penalty.FallbackName)
	}
	if cfg.Penalty.FallbackLevelDrop != 1 {
		t.Errorf("FallbackLevelDrop = %d", cfg.Penalty.FallbackLevelDrop)
	}
	if cfg.Rewards.VegetableBonus != 1 {
		t.Errorf("VegetableBonus = %v", cfg.Rewards.VegetableBonus)
	}
	if cfg.Watch.Spec != "@every 1m" {
		t.Errorf("Watch.Spec = %q", cfg.Watch.Spec)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if len(cfg.Levels.Bands) != 0 {
		t.Errorf("expected no bands, got %v", cfg.Levels.Bands)
	}
	for _, name := range []string{"light", "moderate", "hard"} {
		if f, ok := cfg.Rewards.Intensity[name]; !ok || f != 1 {
			t.Errorf("default intensity %s should be neutral, got %v", name, cfg.Rewards.Intensity)
		}
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	if err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Levels.Bands) != 3 || cfg.Levels.Bands[2].Level != 10 {
		t.Errorf("bands = %+v", cfg.Levels.Bands)
	}
	if cfg.Penalty.FallbackName != "Missed it" || cfg.Penalty.FallbackLevelDrop != 2 {
		t.Errorf("penalty = %+v", cfg.Penalty)
	}
	if len(cfg.Rewards.Intensity) != 2 || cfg.Rewards.Intensity["brutal"] != 3 {
		t.Errorf("intensity = %v", cfg.Rewards.Intensity)
	}
	if cfg.Watch.Spec != "@every 30s" {
		t.Errorf("Watch.Spec = %q", cfg.Watch.Spec)
	}

	p := cfg.Policy()
	birth := time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := reward.LevelFromBirthdate(birth, now, p.Bands); got != 5 {
		t.Errorf("LevelFromBirthdate = %d, want 5", got)
	}
	if p.Fallback.LevelDrop != 2 {
		t.Errorf("Fallback = %+v", p.Fallback)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("KEEPUP_FALLBACK_LEVEL_DROP", "4")
	t.Setenv("KEEPUP_WATCH_SPEC", "@hourly")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Penalty.FallbackLevelDrop != 4 {
		t.Errorf("FallbackLevelDrop = %d, want 4", cfg.Penalty.FallbackLevelDrop)
	}
	if cfg.Watch.Spec != "@hourly" {
		t.Errorf("Watch.Spec = %q", cfg.Watch.Spec)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "negative drop",
			yaml:    "penalty:\n  fallback_level_drop: -1\n",
			wantErr: "fallback_level_drop",
		},
		{
			name:    "zero band level",
			yaml:    "levels:\n  bands:\n    - min_age: 5\n      level: 0\n",
			wantErr: "levels.bands[0].level",
		},
		{
			name:    "bad intensity",
			yaml:    "rewards:\n  intensity:\n    weird: -2\n",
			wantErr: "rewards.intensity.weird",
		},
		{
			name:    "bad cron spec",
			yaml:    "watch:\n  spec: \"every now and then\"\n",
			wantErr: "watch.spec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeYAML(t, t.TempDir(), tt.yaml)
			_, err := Load(path, true)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestIntensityMultiplier(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, err := cfg.IntensityMultiplier("Hard")
	if err != nil {
		t.Fatalf("IntensityMultiplier: %v", err)
	}
	if m.Factor != 1 {
		t.Errorf("Factor = %v, want 1", m.Factor)
	}

	custom := &Config{Rewards: RewardsConfig{Intensity: map[string]float64{"brutal": 3}}}
	m, err = custom.IntensityMultiplier("Brutal")
	if err != nil {
		t.Fatalf("IntensityMultiplier: %v", err)
	}
	if m.Factor != 3 {
		t.Errorf("Factor = %v, want 3", m.Factor)
	}

	if _, err := cfg.IntensityMultiplier("extreme"); err == nil {
		t.Error("expected error for unknown intensity")
	} else if !strings.Contains(err.Error(), "hard, light, moderate") {
		t.Errorf("error should list known intensities: %v", err)
	}
}
