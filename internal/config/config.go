// Package config is HiveHyde-Anti's single init-time configuration
// object, with one required field: apiBaseUrl.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hivehyde/internal/types"
)

// Config is the object passed to Initialize. APIBaseUrl is the only
// required field; everything else defaults to fixed numeric constants
// and can be overridden per-deployment.
type Config struct {
	APIBaseUrl      string             `yaml:"api_base_url"`
	LifespanMs      int64              `yaml:"lifespan_ms"`
	RefreshBufferMs int64              `yaml:"refresh_buffer_ms"`
	Weights         map[string]float64 `yaml:"weights"`
}

// DefaultWeights are the fixed and capability-conditional probe
// weights the risk engine sums.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"canvas":            15,
		"webgl":             15,
		"audio":             20,
		"performance":       5,
		"plugins":           5,
		"mouse_trajectory":  25,
		"anomaly_scan":      50,
	}
}

// DefaultConfig returns a Config with default lifespans and weights
// and an empty APIBaseUrl, which Validate will reject.
func DefaultConfig() *Config {
	return &Config{
		LifespanMs:      types.DefaultLifespanMs,
		RefreshBufferMs: types.DefaultRefreshBufferMs,
		Weights:         DefaultWeights(),
	}
}

// Validate enforces the ConfigMissing error kind: init without
// apiBaseUrl is fatal.
func (c *Config) Validate() error {
	if c == nil || c.APIBaseUrl == "" {
		return fmt.Errorf("%w", types.ErrConfigMissing)
	}
	return nil
}

// Weight returns the configured weight for a probe name, falling back
// to the caller-supplied default when the deployment config omits it.
func (c *Config) Weight(name string, fallback float64) float64 {
	if c.Weights != nil {
		if w, ok := c.Weights[name]; ok {
			return w
		}
	}
	return fallback
}

// Load reads a YAML config file, filling in defaults for any field the
// file omits.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if cfg.LifespanMs == 0 {
		cfg.LifespanMs = types.DefaultLifespanMs
	}
	if cfg.RefreshBufferMs == 0 {
		cfg.RefreshBufferMs = types.DefaultRefreshBufferMs
	}
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}
	return cfg, nil
}
