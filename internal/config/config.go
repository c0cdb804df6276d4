package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/d21d3q/gorfdecode/internal/options"
	"github.com/d21d3q/gorfdecode/internal/output"
)

const defaultWorkers = 4

// Config holds the analyze tool settings that can live in a file. LogLevel,
// when set, takes precedence over Verbosity.
type Config struct {
	Format       string   `yaml:"format"`
	Verbosity    int      `yaml:"verbosity"`
	LogLevel     string   `yaml:"log_level"`
	Workers      int      `yaml:"workers"`
	Protocols    []string `yaml:"protocols,flow"`
	ShowSwitches bool     `yaml:"show_switches"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Format:  string(output.FormatJSON),
		Workers: defaultWorkers,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative, got %d", c.Verbosity)
	}
	if _, err := options.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
