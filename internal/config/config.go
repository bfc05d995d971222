// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Downloads DownloadsConfig  `toml:"downloads"`
	Cache     CacheConfig      `toml:"cache"`
	Quality   QualityConfig    `toml:"quality"`
	Providers []ProviderConfig `toml:"providers"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DownloadsConfig struct {
	Dir        string `toml:"dir"`
	HLSWorkers int    `toml:"hls_workers"`
}

type CacheConfig struct {
	Path string        `toml:"path"`
	TTL  time.Duration `toml:"ttl"`
}

type QualityConfig struct {
	Excluded []string `toml:"excluded"`
}

// ProviderConfig describes one content source. Kind selects the
// adapter: "json" for API-backed sources, "html" for scraped ones.
type ProviderConfig struct {
	Value        string        `toml:"value"`
	Name         string        `toml:"name"`
	Kind         string        `toml:"kind"`
	BaseURL      string        `toml:"base_url"`
	Capabilities []string      `toml:"capabilities"`
	Enabled      *bool         `toml:"enabled"`
	Timeout      time.Duration `toml:"timeout"`
}

// IsEnabled reports whether the provider is enabled. Providers are
// enabled unless the config says otherwise.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file but
// skips validation. Used by commands that inspect or repair a config.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = "./downloads"
	}
	if c.Downloads.HLSWorkers == 0 {
		c.Downloads.HLSWorkers = 4
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "./data/streamdex.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
}
