// Package config provides configuration file support for recall.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/recall-project/recall/pkg/errclass"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".recall.yaml"

// Config represents the recall configuration.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Search  SearchConfig  `yaml:"search"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// HistoryConfig configures history display behavior.
type HistoryConfig struct {
	// DisplayLimit caps the number of entries shown by history listings.
	// Zero means unlimited.
	DisplayLimit int `yaml:"display_limit"`
}

// SearchConfig configures relevance-ranked search.
type SearchConfig struct {
	// MaxResults caps ranked search output. Zero means unlimited.
	MaxResults int `yaml:"max_results"`
}

// ExportConfig configures timeline export.
type ExportConfig struct {
	// Path is the default JSONL file the timeline is exported to.
	Path string `yaml:"path"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{DisplayLimit: 0},
		Search:  SearchConfig{MaxResults: 50},
		Export:  ExportConfig{Path: "timeline.jsonl"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the given path.
// Returns default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil // No config file is OK, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errclass.ErrConfigInvalid.WithMessagef("parse %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to the given path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	if c.History.DisplayLimit < 0 {
		return errclass.ErrConfigInvalid.WithMessage("history.display_limit must be non-negative")
	}
	if c.Search.MaxResults < 0 {
		return errclass.ErrConfigInvalid.WithMessage("search.max_results must be non-negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errclass.ErrConfigInvalid.WithMessagef("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return errclass.ErrConfigInvalid.WithMessagef("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}
