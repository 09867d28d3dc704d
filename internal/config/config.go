package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all hornkb configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Tree decoding
	Decoder DecoderConfig `yaml:"decoder"`

	// Mangle evaluation of decoded knowledge bases
	Mangle MangleConfig `yaml:"mangle"`

	// Multi-source compilation
	Batch BatchConfig `yaml:"batch"`

	// Source directory watching
	Watch WatchConfig `yaml:"watch"`

	// Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "hornkb",
		Version: "0.3.0",

		Decoder: DecoderConfig{
			MaxDepth:     256,
			QueryMarkers: []string{"?", "?-"},
		},

		Mangle: MangleConfig{
			FactLimit:    100000,
			QueryTimeout: "30s",
		},

		Batch: BatchConfig{
			Concurrency: 4,
		},

		Watch: WatchConfig{
			Extensions: []string{".pl", ".pro"},
			Debounce:   "200ms",
		},

		Metrics: MetricsConfig{
			Path: "/metrics",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies HORNKB_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv("HORNKB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if os.Getenv("HORNKB_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"HORNKB_MAX_DEPTH", &c.Decoder.MaxDepth},
		{"HORNKB_CONCURRENCY", &c.Batch.Concurrency},
		{"HORNKB_FACT_LIMIT", &c.Mangle.FactLimit},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", v.name, raw, err)
		}
		*v.dst = n
	}

	if timeout := os.Getenv("HORNKB_QUERY_TIMEOUT"); timeout != "" {
		c.Mangle.QueryTimeout = timeout
	}
	if addr := os.Getenv("HORNKB_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}
	return nil
}

// GetQueryTimeout returns the Mangle query timeout as a duration.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Mangle.QueryTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce interval as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Decoder.MaxDepth <= 0 {
		return fmt.Errorf("decoder.max_depth must be positive, got %d", c.Decoder.MaxDepth)
	}
	if len(c.Decoder.QueryMarkers) == 0 {
		return fmt.Errorf("decoder.query_markers must not be empty")
	}
	for _, m := range c.Decoder.QueryMarkers {
		if m == "" {
			return fmt.Errorf("decoder.query_markers contains an empty marker")
		}
	}
	if c.Batch.Concurrency < 0 {
		return fmt.Errorf("batch.concurrency must not be negative, got %d", c.Batch.Concurrency)
	}
	if c.Mangle.FactLimit < 0 {
		return fmt.Errorf("mangle.fact_limit must not be negative, got %d", c.Mangle.FactLimit)
	}
	if _, err := time.ParseDuration(c.Mangle.QueryTimeout); err != nil {
		return fmt.Errorf("invalid mangle.query_timeout %q: %w", c.Mangle.QueryTimeout, err)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}

	if c.Metrics.Addr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid logging format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}
