package config

import (
	"github.com/fracktal-labs/fracktal/internal/logger"
	"github.com/fracktal-labs/fracktal/pkg/codec"
)

// Config is the full module configuration. Every field is a pure value; the
// only environment coupling is the loader's env overrides.
type Config struct {
	// DataDir is where the store keeps its index database, artifact files
	// and logs.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	Codec       CodecConfig       `json:"codec" mapstructure:"codec"`
	Logging     logger.Config     `json:"logging" mapstructure:"logging"`
	Watcher     WatcherConfig     `json:"watcher" mapstructure:"watcher"`
	Maintenance MaintenanceConfig `json:"maintenance" mapstructure:"maintenance"`
}

// CodecConfig mirrors codec.Params for file/env configuration.
type CodecConfig struct {
	SymbolRange      int `json:"symbol_range" mapstructure:"symbol_range"`
	HashDepth        int `json:"hash_depth" mapstructure:"hash_depth"`
	MinPatternLength int `json:"min_pattern_length" mapstructure:"min_pattern_length"`
	MinOccurrences   int `json:"min_occurrences" mapstructure:"min_occurrences"`
	MinSavings       int `json:"min_savings" mapstructure:"min_savings"`
	MaxPatternLength int `json:"max_pattern_length" mapstructure:"max_pattern_length"`
	ScanBudget       int `json:"scan_budget" mapstructure:"scan_budget"`
}

// WatcherConfig controls the storage directory watcher.
type WatcherConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// MaintenanceConfig controls scheduled corpus maintenance.
type MaintenanceConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Schedule string `json:"schedule" mapstructure:"schedule"` // standard cron expression
}

// Params converts the codec section into codec.Params.
func (c CodecConfig) Params() codec.Params {
	return codec.Params{
		SymbolRange:      c.SymbolRange,
		HashDepth:        c.HashDepth,
		MinPatternLength: c.MinPatternLength,
		MinOccurrences:   c.MinOccurrences,
		MinSavings:       c.MinSavings,
		MaxPatternLength: c.MaxPatternLength,
		ScanBudget:       c.ScanBudget,
	}
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	p := codec.DefaultParams()
	return &Config{
		Codec: CodecConfig{
			SymbolRange:      p.SymbolRange,
			HashDepth:        p.HashDepth,
			MinPatternLength: p.MinPatternLength,
			MinOccurrences:   p.MinOccurrences,
			MinSavings:       p.MinSavings,
			MaxPatternLength: p.MaxPatternLength,
			ScanBudget:       p.ScanBudget,
		},
		Logging: logger.Config{
			Level:    "info",
			Console:  false,
			MaxSize:  50,
			MaxAge:   14,
			Compress: true,
		},
		Watcher: WatcherConfig{Enabled: true},
		Maintenance: MaintenanceConfig{
			Enabled:  false,
			Schedule: "0 * * * *",
		},
	}
}
