// Package config holds the layoutctl configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the layoutctl configuration. Command-line flags override it.
type Config struct {
	Schema  string  `yaml:"schema"`
	Record  string  `yaml:"record"`
	Output  string  `yaml:"output"`
	Store   Store   `yaml:"store"`
	Logging Logging `yaml:"logging"`
}

// Store configures the record store used by put and get.
type Store struct {
	Provider  string        `yaml:"provider"` // "badger" or "mem"
	Dir       string        `yaml:"dir"`      // badger directory
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Output: "json",
		Store: Store{
			Provider:  "badger",
			Dir:       "./data",
			Namespace: "default",
			TTL:       24 * time.Hour,
		},
		Logging: Logging{Level: "warn"},
	}
}

// LoadConfig reads path over the defaults, so a partial file only sets
// what it names.
func LoadConfig(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = abs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg with owner-only permissions.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case "json", "yaml", "cbor", "msgpack", "proto":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	switch c.Store.Provider {
	case "badger", "mem":
	default:
		return fmt.Errorf("config: unknown store provider %q", c.Store.Provider)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	return nil
}
