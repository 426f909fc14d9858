// Package config loads mixprof's TOML configuration file.
//
// The file lives at ~/.config/mixprof/config.toml and is entirely
// optional: every field has a default, and command-line flags override
// whatever the file says. Precedence is flag > file > default.
//
// Example:
//
//	method = "py-spy"
//	formats = ["svg", "png"]
//	output_dir = "profiling_results"
//	open = true
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[history]
//	backend = "file"
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mixprof/mixprof/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	// Method is the default profiling method for run/profile.
	Method string `toml:"method"`

	// Formats are the default output image formats.
	Formats []string `toml:"formats"`

	// OutputDir is where artifacts are written.
	OutputDir string `toml:"output_dir"`

	// NodeThreshold and EdgeThreshold are the default gprof2dot pruning
	// percentages. Zero means use gprof2dot defaults.
	NodeThreshold float64 `toml:"node_threshold"`
	EdgeThreshold float64 `toml:"edge_threshold"`

	// Open controls whether run opens the rendered artifact on success.
	Open bool `toml:"open"`

	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// HistoryConfig selects and configures the run-history backend.
type HistoryConfig struct {
	// Backend is "file" (default) or "mongo".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo history backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Method:    "cprofile",
		Formats:   []string{"svg"},
		OutputDir: "profiling_results",
		Cache:     CacheConfig{Backend: "file"},
		History:   HistoryConfig{Backend: "file"},
	}
}

// Path returns the default config file location
// ($HOME/.config/mixprof/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mixprof", "config.toml"), nil
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads the config from the default path.
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks backend names and threshold ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend: %s (must be 'file', 'redis', or 'none')", c.Cache.Backend)
	}

	switch c.History.Backend {
	case "", "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown history backend: %s (must be 'file' or 'mongo')", c.History.Backend)
	}

	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
	}
	if c.History.Backend == "mongo" && c.History.Mongo.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "history.mongo.uri is required for the mongo backend")
	}

	if c.NodeThreshold < 0 || c.NodeThreshold > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "node_threshold must be a percentage (0-100)")
	}
	if c.EdgeThreshold < 0 || c.EdgeThreshold > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "edge_threshold must be a percentage (0-100)")
	}
	return nil
}
