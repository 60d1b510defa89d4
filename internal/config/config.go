package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the entire bot configuration.
// The discord token is deliberately not part of it; it comes from the
// environment so it never ends up in a file next to the code
type Config struct {
	Tracking TrackingConfig `koanf:"tracking"`
	Away     AwayConfig     `koanf:"away"`
	Log      LogConfig      `koanf:"log"`
}

// TrackingConfig decides which activity counts
type TrackingConfig struct {
	// Category names whose channels count toward activity.
	// Compared by exact, case-sensitive match
	Categories []string `koanf:"categories"`
	// File the last-activity mapping is persisted to
	StoreFile string `koanf:"store_file"`
}

// AwayConfig drives the inactivity sweep
type AwayConfig struct {
	// Name of the role applied to inactive members
	RoleName string `koanf:"role_name"`
	// Channel scanned for exemption messages
	LeaveChannel string `koanf:"leave_channel"`
	// Literal keyword that exempts its author for a cycle
	ExemptKeyword string `koanf:"exempt_keyword"`
	// Days without activity before a member is marked away
	ThresholdDays int `koanf:"threshold_days"`
	// Minutes between sweep cycles
	SweepIntervalMinutes int `koanf:"sweep_interval_minutes"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level (debug, info, warn, error)
	Level string `koanf:"level"`
	// Rotating log file. Empty logs to the console only
	File string `koanf:"file"`
	// Maximum size of the log file in megabytes before rotation
	MaxSizeMB int `koanf:"max_size_mb"`
	// Maximum rotated files to keep
	MaxBackups int `koanf:"max_backups"`
}

// Default returns the configuration the file does not have to spell out.
// The tracked categories have no default; every deployment has its own
func Default() Config {
	return Config{
		Tracking: TrackingConfig{
			StoreFile: "lastActivity.json",
		},
		Away: AwayConfig{
			RoleName:             "MIA",
			LeaveChannel:         "on-leave-notice",
			ExemptKeyword:        "!onleave",
			ThresholdDays:        7,
			SweepIntervalMinutes: 60,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the TOML file at path on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return Config{}, fmt.Errorf("could not load config file %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if len(cfg.Tracking.Categories) == 0 {
		return errors.New("no tracked categories configured")
	}
	if cfg.Tracking.StoreFile == "" {
		return errors.New("no store file configured")
	}
	if cfg.Away.RoleName == "" {
		return errors.New("no away role name configured")
	}
	if cfg.Away.ThresholdDays <= 0 {
		return fmt.Errorf("inactivity threshold must be positive, got %d days", cfg.Away.ThresholdDays)
	}
	if cfg.Away.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %d minutes", cfg.Away.SweepIntervalMinutes)
	}
	return nil
}

func (away *AwayConfig) Threshold() time.Duration {
	return time.Duration(away.ThresholdDays) * 24 * time.Hour
}

func (away *AwayConfig) SweepInterval() time.Duration {
	return time.Duration(away.SweepIntervalMinutes) * time.Minute
}
