// Package config loads tool settings and headless scenario scripts.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the tool-wide settings read from a YAML file. Zero values
// fall back to defaults in Normalize.
type Config struct {
	CatalogDirs []string `yaml:"catalog_dirs"`
	OutputDir   string   `yaml:"output_dir"`

	Workers   int  `yaml:"workers"`
	UseOpenCV bool `yaml:"use_opencv"`

	Brush BrushConfig `yaml:"brush"`
}

// BrushConfig holds the default brush settings.
type BrushConfig struct {
	Radius  int     `yaml:"radius"`
	Opacity float64 `yaml:"opacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills unset fields with defaults and clamps out-of-range values.
func (c *Config) Normalize() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Brush.Radius <= 0 {
		c.Brush.Radius = 5
	}
	if c.Brush.Opacity <= 0 || c.Brush.Opacity > 1 {
		c.Brush.Opacity = 1.0
	}
}

// Load reads a YAML configuration file and normalizes it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}
