// Package config holds the meshbvh tool settings.
package config

import (
	"runtime"

	"github.com/achilleasa/meshbvh/bvh"
	"github.com/achilleasa/meshbvh/log"
	"github.com/pkg/errors"
)

// Config holds all tool settings.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// BuildConfig holds BVH builder settings.
type BuildConfig struct {
	Workers int `yaml:"workers"` // 0 selects GOMAXPROCS
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config with the default settings.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:      "notice",
			File:       "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Validate checks that all settings are within range.
func (c *Config) Validate() error {
	if c.Build.Workers < 0 {
		return errors.Errorf("config: build.workers must not be negative; got %d", c.Build.Workers)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "config: invalid logging.level")
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("config: logging rotation settings must not be negative")
	}
	return nil
}

// BuildOptions converts the build settings into bvh builder options.
func (c *Config) BuildOptions() bvh.Options {
	workers := c.Build.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return bvh.Options{Workers: workers}
}
