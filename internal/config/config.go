package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of every date in the config file.
const DateLayout = "2006-01-02"

// Today as a valuation_date resolves to the current date each time the
// valuations run.
const Today = "today"

// Config holds all application configuration.
type Config struct {
	Note       NoteConfig        `yaml:"note"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Valuations []ValuationConfig `yaml:"valuations"`
	DataSource struct {
		Type       string `yaml:"type"` // yahoo | csv
		Symbol     string `yaml:"symbol"`
		CSVPath    string `yaml:"csv_path"`
		DateLayout string `yaml:"date_layout"`
	} `yaml:"data_source"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Report struct {
		ChartDir      string `yaml:"chart_dir"`
		RollingWindow int    `yaml:"rolling_window"`
	} `yaml:"report"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// NoteConfig holds the note terms shared by every valuation. Sigma is optional;
// when absent it is estimated from the calibration window.
type NoteConfig struct {
	S0       float64  `yaml:"s0"`
	T        float64  `yaml:"t"`
	Rate     *float64 `yaml:"r"`
	Sigma    *float64 `yaml:"sigma"`
	Barrier  float64  `yaml:"barrier"`
	Maturity string   `yaml:"maturity"`
}

// SimulationConfig controls the Monte Carlo engine.
type SimulationConfig struct {
	Paths     int     `yaml:"paths"`
	Steps     int     `yaml:"steps"`
	Seed      *uint64 `yaml:"seed"`
	Workers   int     `yaml:"workers"`
	ChunkSize int     `yaml:"chunk_size"`
}

// ValuationConfig is one run of the engine: a valuation date and the window of
// history used to calibrate sigma. Zero-valued overrides fall back to Note.
//
// CalibrationDays, when set, replaces calibration_from with a lookback from
// calibration_to (or from the valuation date when calibration_to is empty).
type ValuationConfig struct {
	Name            string   `yaml:"name"`
	ValuationDate   string   `yaml:"valuation_date"` // date or "today"
	CalibrationFrom string   `yaml:"calibration_from"`
	CalibrationTo   string   `yaml:"calibration_to"`
	CalibrationDays int      `yaml:"calibration_days"`
	S0              float64  `yaml:"s0"`
	T               float64  `yaml:"t"`
	Sigma           *float64 `yaml:"sigma"`
}

// Load reads config from a YAML file, then a .env file if present, then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("VALUATOR_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("VALUATOR_SEED: %w", err)
		}
		cfg.Simulation.Seed = &seed
	}
	if v := os.Getenv("VALUATOR_PATHS"); v != "" {
		paths, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("VALUATOR_PATHS: %w", err)
		}
		cfg.Simulation.Paths = paths
	}
	if v := os.Getenv("VALUATOR_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("VALUATOR_WORKERS: %w", err)
		}
		cfg.Simulation.Workers = workers
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults. Pricing inputs have none; Validate rejects them when missing.
	if cfg.DataSource.Type == "" {
		cfg.DataSource.Type = "yahoo"
	}
	if cfg.DataSource.DateLayout == "" {
		cfg.DataSource.DateLayout = DateLayout
	}
	if cfg.Report.RollingWindow == 0 {
		cfg.Report.RollingWindow = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Note.Rate == nil {
		return fmt.Errorf("note.r is required")
	}
	if c.Simulation.Paths <= 0 {
		return fmt.Errorf("simulation.paths must be positive")
	}
	if c.Simulation.Steps <= 0 {
		return fmt.Errorf("simulation.steps must be positive")
	}
	if c.Note.Maturity != "" {
		if _, err := time.Parse(DateLayout, c.Note.Maturity); err != nil {
			return fmt.Errorf("note.maturity: %w", err)
		}
	}
	switch c.DataSource.Type {
	case "yahoo":
		if c.DataSource.Symbol == "" {
			return fmt.Errorf("data_source.symbol is required for yahoo")
		}
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv")
		}
	default:
		return fmt.Errorf("data_source.type %q is not supported", c.DataSource.Type)
	}
	if len(c.Valuations) == 0 {
		return fmt.Errorf("at least one valuation is required")
	}
	for i, v := range c.Valuations {
		if v.Name == "" {
			return fmt.Errorf("valuations[%d].name is required", i)
		}
		if v.ValuationDate != Today {
			if _, err := time.Parse(DateLayout, v.ValuationDate); err != nil {
				return fmt.Errorf("valuations[%d].valuation_date: %w", i, err)
			}
		}
		if v.CalibrationDays < 0 {
			return fmt.Errorf("valuations[%d].calibration_days must not be negative", i)
		}
		if v.CalibrationDays > 0 && v.CalibrationFrom != "" {
			return fmt.Errorf("valuations[%d]: calibration_days and calibration_from are exclusive", i)
		}
		for field, s := range map[string]string{"calibration_from": v.CalibrationFrom, "calibration_to": v.CalibrationTo} {
			if s == "" {
				continue
			}
			if _, err := time.Parse(DateLayout, s); err != nil {
				return fmt.Errorf("valuations[%d].%s: %w", i, field, err)
			}
		}
		if v.S0 == 0 && c.Note.S0 == 0 {
			return fmt.Errorf("valuations[%d]: s0 is required (note.s0 or valuation s0)", i)
		}
		if v.T == 0 && c.Note.T == 0 && c.Note.Maturity == "" {
			return fmt.Errorf("valuations[%d]: t is required (note.t, note.maturity or valuation t)", i)
		}
	}
	return nil
}
