// Package config loads and validates the bptreectl command's configuration
// file, grounded on the ambient YAML config style used elsewhere in the
// example pack.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a bptreectl invocation needs beyond its
// subcommand flags: where the device file lives, the index's fixed key
// size, and where to expose Prometheus metrics when running "serve".
type Config struct {
	DevicePath string  `yaml:"device_path"`
	KeySize    int     `yaml:"key_size"`
	Metrics    Metrics `yaml:"metrics"`
	Logging    Logging `yaml:"logging"`
}

// Metrics controls the "serve" subcommand's HTTP listener.
type Metrics struct {
	Bind    string `yaml:"bind"`
	Enabled bool   `yaml:"enabled"`
}

// Logging controls the slog handler installed at the CLI boundary.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration bptreectl uses when no --config
// flag is given.
func DefaultConfig() *Config {
	return &Config{
		DevicePath: "./index.img",
		KeySize:    32,
		Metrics: Metrics{
			Bind:    "127.0.0.1:9090",
			Enabled: false,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads and parses a YAML configuration file. Defaults are applied
// first so a partial file only overrides the fields it names.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
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

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
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

// Validate rejects a configuration the index engine could never open:
// key_size below 1, or a device path left empty. The upper bound on
// key_size is checked by btree.Create, not here.
func (c *Config) Validate() error {
	if c.DevicePath == "" {
		return fmt.Errorf("config: device_path must not be empty")
	}
	if c.KeySize < 1 {
		return fmt.Errorf("config: key_size must be positive, got %d", c.KeySize)
	}
	return nil
}
