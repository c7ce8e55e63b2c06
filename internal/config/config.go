// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig marks a configuration that loaded but fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a source (file or environment) that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxBatchSize caps the number of records accepted by POST /score/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MediumThreshold and HighThreshold are the strict risk cutoffs.
	MediumThreshold float64 `koanf:"medium_threshold"`
	HighThreshold   float64 `koanf:"high_threshold"`

	// Weights overrides the coefficient of individual fields, keyed by
	// field name (e.g. missed_lab_tests). Unset fields keep canonical weights.
	Weights map[string]float64 `koanf:"weights"`

	// Caps overrides the clamp ceiling of individual fields.
	Caps map[string]float64 `koanf:"caps"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		MaxBatchSize:    500,
		MetricsEnabled:  true,
		MediumThreshold: 30,
		HighThreshold:   60,
	}
}
