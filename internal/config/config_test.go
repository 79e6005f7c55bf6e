package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
note:
  s0: 100
  r: 0.035
  barrier: 80
  maturity: "2025-12-19"
simulation:
  paths: 10000
  steps: 252
  seed: 42
data_source:
  type: csv
  csv_path: data/history.csv
valuations:
  - name: issue
    valuation_date: "2019-12-20"
    t: 1.75
  - name: today
    valuation_date: "2024-04-05"
    calibration_from: "2023-04-05"
    calibration_to: "2024-04-05"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ParsesAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.Note.Rate == nil || *cfg.Note.Rate != 0.035 {
		t.Errorf("expected r 0.035, got %v", cfg.Note.Rate)
	}
	if cfg.Simulation.Seed == nil || *cfg.Simulation.Seed != 42 {
		t.Errorf("expected seed 42, got %v", cfg.Simulation.Seed)
	}
	if len(cfg.Valuations) != 2 || cfg.Valuations[1].CalibrationFrom != "2023-04-05" {
		t.Errorf("unexpected valuations %+v", cfg.Valuations)
	}
	if cfg.Report.RollingWindow != 30 {
		t.Errorf("expected default rolling window 30, got %d", cfg.Report.RollingWindow)
	}
	if cfg.DataSource.DateLayout != DateLayout {
		t.Errorf("expected default date layout, got %q", cfg.DataSource.DateLayout)
	}
	if cfg.Note.Sigma != nil {
		t.Error("sigma should stay unset when not configured")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VALUATOR_SEED", "7")
	t.Setenv("VALUATOR_PATHS", "500")
	t.Setenv("CRON_SCHEDULE", "0 0 18 * * 1-5")
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg.Simulation.Seed != 7 || cfg.Simulation.Paths != 500 {
		t.Errorf("env overrides not applied: seed %v paths %d", *cfg.Simulation.Seed, cfg.Simulation.Paths)
	}
	if cfg.Schedule.Cron != "0 0 18 * * 1-5" {
		t.Errorf("unexpected cron %q", cfg.Schedule.Cron)
	}

	t.Setenv("VALUATOR_SEED", "abc")
	if _, err := Load(writeConfig(t, sampleYAML)); err == nil {
		t.Error("expected error for non-numeric seed")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		want    string
	}{
		{"missing rate", [2]string{"  r: 0.035\n", ""}, "note.r"},
		{"zero paths", [2]string{"paths: 10000", "paths: 0"}, "simulation.paths"},
		{"bad date", [2]string{`"2024-04-05"` + "\n    calibration_from", `"05/04/2024"` + "\n    calibration_from"}, "valuation_date"},
		{"unknown source", [2]string{"type: csv", "type: excel"}, "not supported"},
		{"lookback with from", [2]string{"    calibration_to:", "    calibration_days: 365\n    calibration_to:"}, "exclusive"},
		{"negative lookback", [2]string{"    t: 1.75\n", "    t: 1.75\n    calibration_days: -1\n"}, "calibration_days"},
	}
	for _, tt := range tests {
		body := strings.Replace(sampleYAML, tt.replace[0], tt.replace[1], 1)
		cfg, err := Load(writeConfig(t, body))
		if err != nil {
			t.Fatalf("%s: load: %v", tt.name, err)
		}
		err = cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestValidate_RelativeValuationDate(t *testing.T) {
	body := strings.Replace(sampleYAML, `valuation_date: "2024-04-05"
    calibration_from: "2023-04-05"
    calibration_to: "2024-04-05"`, `valuation_date: today
    calibration_days: 365`, 1)
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	v := cfg.Valuations[1]
	if v.ValuationDate != Today || v.CalibrationDays != 365 {
		t.Errorf("unexpected valuation %+v", v)
	}
}
