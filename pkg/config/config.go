// Package config handles configuration for uiflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOutputDir is where capture writes dumps when nothing else is set.
const DefaultOutputDir = "ui_dumps"

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Device settings
	ADB             string `yaml:"adb"`              // adb binary
	Device          string `yaml:"device"`           // device serial
	CommandInterval string `yaml:"command_interval"` // minimum gap between adb calls, e.g. "250ms"

	// Capture settings
	OutputDir string `yaml:"output_dir"`

	// Interpolation defaults for ${NAME} values in flows
	Env map[string]string `yaml:"env"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.Interval(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// Interval parses CommandInterval. Empty means no pacing.
func (c *Config) Interval() (time.Duration, error) {
	if c.CommandInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandInterval)
	if err != nil {
		return 0, fmt.Errorf("command_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("command_interval: negative duration %s", c.CommandInterval)
	}
	return d, nil
}

// OutputDirOrDefault returns OutputDir, falling back to DefaultOutputDir.
func (c *Config) OutputDirOrDefault() string {
	if c.OutputDir == "" {
		return DefaultOutputDir
	}
	return c.OutputDir
}
