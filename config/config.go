package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/transitsim/errors"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.WrapInvalid(err, "config", "UnmarshalYAML", "parse duration")
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Pacing bounds the randomized sleep between agent loop iterations.
type Pacing struct {
	Min Duration `yaml:"min"`
	Max Duration `yaml:"max"`
}

// Metrics configures the optional Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Config represents the complete simulation configuration
type Config struct {
	// Scenario selects the seeded topology by name
	Scenario string `yaml:"scenario"`
	// Duration bounds the run; zero means run until interrupted
	Duration Duration `yaml:"duration"`
	// Messaging enables the broker and the bus/stop adapters
	Messaging bool `yaml:"messaging"`
	// StopAdmitCapacity is the number of buses a stop serves concurrently
	StopAdmitCapacity int `yaml:"stop_admit_capacity"`
	// EventLog is the path of the broker event log; empty disables it
	EventLog string  `yaml:"event_log"`
	Pacing   Pacing  `yaml:"pacing"`
	Metrics  Metrics `yaml:"metrics"`
}

// Default returns a configuration that runs out of the box
func Default() Config {
	return Config{
		Scenario:          "downtown",
		Duration:          Duration(60 * time.Second),
		Messaging:         true,
		StopAdmitCapacity: 1,
		EventLog:          "",
		Pacing: Pacing{
			Min: Duration(1 * time.Second),
			Max: Duration(5 * time.Second),
		},
		Metrics: Metrics{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Load reads a YAML configuration file, applying defaults for absent fields
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WrapFatal(err, "config", "Load", "read config file")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapInvalid(err, "config", "Load", "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for correctness
func (c Config) Validate() error {
	if c.Scenario == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "config", "Validate", "scenario name")
	}
	if c.Duration < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("duration %s is negative: %w", c.Duration.Std(), errors.ErrInvalidConfig),
			"config", "Validate", "duration")
	}
	if c.StopAdmitCapacity < 1 {
		return errors.WrapInvalid(
			fmt.Errorf("stop_admit_capacity %d must be at least 1: %w",
				c.StopAdmitCapacity, errors.ErrInvalidConfig),
			"config", "Validate", "stop admit capacity")
	}
	if c.Pacing.Min <= 0 || c.Pacing.Max <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("pacing bounds must be positive: %w", errors.ErrInvalidConfig),
			"config", "Validate", "pacing")
	}
	if c.Pacing.Max < c.Pacing.Min {
		return errors.WrapInvalid(
			fmt.Errorf("pacing max %s below min %s: %w",
				c.Pacing.Max.Std(), c.Pacing.Min.Std(), errors.ErrInvalidConfig),
			"config", "Validate", "pacing")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.WrapInvalid(
			fmt.Errorf("metrics enabled without listen address: %w", errors.ErrInvalidConfig),
			"config", "Validate", "metrics address")
	}
	return nil
}
