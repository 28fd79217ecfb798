package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"shapeshift/internal/transform"
)

// Config holds all shapeshift configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Structure building and transform defaults
	Engine EngineConfig `yaml:"engine"`

	// Pipeline orchestration
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Usage metrics
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the data operations.
type EngineConfig struct {
	// Depth used by wrap and complex when none is given
	DefaultDepth int `yaml:"default_depth"`

	// Upper bound on any requested depth
	MaxDepth int `yaml:"max_depth"`

	// Complexity recorded on pipeline runs and chains
	Complexity int `yaml:"complexity"`

	// Transforms run by the standard pipeline when none are given
	DefaultTransforms []string `yaml:"default_transforms"`
}

// PipelineConfig configures the orchestrator.
type PipelineConfig struct {
	// Retries allowed per step when the error hook asks for one
	MaxRetries int `yaml:"max_retries"`

	// Ask for a retry on every step failure
	RetryOnFailure bool `yaml:"retry_on_failure"`
}

// MetricsConfig configures usage accounting.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "shapeshift",
		Version: "0.3.0",

		Engine: EngineConfig{
			DefaultDepth:      1,
			MaxDepth:          32,
			Complexity:        1,
			DefaultTransforms: []string{"uppercase"},
		},

		Pipeline: PipelineConfig{
			MaxRetries: 0,
		},

		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "shapeshift",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

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

// applyEnvOverrides applies environment variable overrides. Unparseable
// numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("SHAPESHIFT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("SHAPESHIFT_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxDepth = n
		}
	}
	if v := os.Getenv("SHAPESHIFT_COMPLEXITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.Complexity = n
		}
	}
	if v := os.Getenv("SHAPESHIFT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// ClampDepth bounds depth to [0, MaxDepth].
func (c *Config) ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if c.Engine.MaxDepth > 0 && depth > c.Engine.MaxDepth {
		return c.Engine.MaxDepth
	}
	return depth
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("engine.max_depth must be >= 0, got %d", c.Engine.MaxDepth)
	}
	if c.Engine.DefaultDepth < 0 {
		return fmt.Errorf("engine.default_depth must be >= 0, got %d", c.Engine.DefaultDepth)
	}
	if c.Engine.MaxDepth > 0 && c.Engine.DefaultDepth > c.Engine.MaxDepth {
		return fmt.Errorf("engine.default_depth %d exceeds engine.max_depth %d", c.Engine.DefaultDepth, c.Engine.MaxDepth)
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline.max_retries must be >= 0, got %d", c.Pipeline.MaxRetries)
	}

	for _, name := range c.Engine.DefaultTransforms {
		if _, err := transform.ParseKind(name); err != nil {
			return fmt.Errorf("engine.default_transforms: %w", err)
		}
	}

	if c.Logging.Level != "" {
		validLevel := false
		for _, l := range ValidLogLevels {
			if strings.EqualFold(c.Logging.Level, l) {
				validLevel = true
				break
			}
		}
		if !validLevel {
			return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
		}
	}

	return nil
}
