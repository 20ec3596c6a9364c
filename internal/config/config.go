// Package config loads the luxql configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/luxql/internal/translate"
)

// Config is the complete luxql configuration.
type Config struct {
	// Schema is the schema file path (.json, .yaml, .yml or .cue). Empty
	// means the embedded default schema.
	Schema string `yaml:"schema"`
	// Database is the sqlite cache path. Empty disables caching.
	Database string `yaml:"database"`
	// Translate holds scoring weights and query defaults.
	Translate translate.Config `yaml:"translate"`
}

// DefaultConfig returns a Config with the embedded schema, no cache and
// the standard translation weights.
func DefaultConfig() *Config {
	return &Config{
		Translate: translate.DefaultConfig(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	t := c.Translate
	weights := []struct {
		name  string
		value int
	}{
		{"translate.name_weight", t.NameWeight},
		{"translate.record_name_weight", t.RecordNameWeight},
		{"translate.record_text_weight", t.RecordTextWeight},
		{"translate.reference_name_weight", t.ReferenceNameWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%s must not be negative", w.name)
		}
	}
	if t.PageLength <= 0 {
		return fmt.Errorf("translate.page_length must be positive")
	}
	if t.RelatedLimit <= 0 {
		return fmt.Errorf("translate.related_limit must be positive")
	}
	if t.SortDefault == "" {
		return fmt.Errorf("translate.sort_default is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load returns the defaults when path is empty, otherwise the file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFromFile(path)
}
