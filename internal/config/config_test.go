package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.IntervalSeconds != 60 {
		t.Errorf("expected default interval 60, got %d", cfg.Scan.IntervalSeconds)
	}
	if cfg.Scan.WindowSize != 35 {
		t.Errorf("expected default window 35, got %d", cfg.Scan.WindowSize)
	}
	if cfg.Market.StrikeGap != 50 {
		t.Errorf("expected default strike gap 50, got %d", cfg.Market.StrikeGap)
	}
	if cfg.Score.MinConfidence != 70 || cfg.Score.EarlyConfidence != 85 {
		t.Errorf("unexpected confidence floors: %d/%d", cfg.Score.MinConfidence, cfg.Score.EarlyConfidence)
	}
	if cfg.Trailing.Enabled == nil || !*cfg.Trailing.Enabled || cfg.Trailing.Trigger != 0.6 {
		t.Errorf("unexpected trailing defaults: %+v", cfg.Trailing)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("scan:\n  interval_seconds: 30\nscore:\n  min_confidence: 75\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MIN_CONFIDENCE", "80")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.IntervalSeconds != 30 {
		t.Errorf("expected yaml interval 30, got %d", cfg.Scan.IntervalSeconds)
	}
	if cfg.Score.MinConfidence != 80 {
		t.Errorf("environment must override yaml, got %d", cfg.Score.MinConfidence)
	}
}

func TestLoadTrailingDisabledSurvivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("trailing:\n  enabled: false\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trailing.Enabled == nil || *cfg.Trailing.Enabled {
		t.Error("explicit trailing.enabled=false must not be overridden by defaults")
	}
	if cfg.Trailing.Trigger != 0.6 || cfg.Trailing.Distance != 0.4 {
		t.Errorf("trigger/distance defaults must still apply: %+v", cfg.Trailing)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled telegram without a token must fail validation")
	}
	cfg.Telegram.Enabled = false

	cfg.Scan.IntervalSeconds = 5
	if err := cfg.Validate(); err == nil {
		t.Error("sub-10s interval must fail validation")
	}
	cfg.Scan.IntervalSeconds = 60

	cfg.VWAP.MinATRMultiple = 3.0
	if err := cfg.Validate(); err == nil {
		t.Error("inverted VWAP band must fail validation")
	}
	cfg.VWAP.MinATRMultiple = 0.1

	cfg.Exit.MinHoldMinutes = 60
	if err := cfg.Validate(); err == nil {
		t.Error("min hold above max hold must fail validation")
	}
	cfg.Exit.MinHoldMinutes = 10

	cfg.VWAP.MinScore = 100
	if err := cfg.Validate(); err == nil {
		t.Error("vwap.min_score of 100 must fail validation")
	}
}
