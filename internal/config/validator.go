package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values the store cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if err := cfg.Codec.Params().Validate(); err != nil {
		return fmt.Errorf("codec: %w", err)
	}

	switch cfg.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}

	if cfg.Maintenance.Enabled {
		if _, err := cron.ParseStandard(cfg.Maintenance.Schedule); err != nil {
			return fmt.Errorf("maintenance: invalid schedule %q: %w", cfg.Maintenance.Schedule, err)
		}
	}

	return nil
}
