package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SpecPath string // report spec file (.json, .yaml, or .hcl)
	OutDir   string // directory bound as the out_dir variable for writers

	LogFormat string
	LogLevel  string

	Parallel         bool          // execute sibling components concurrently
	Workers          int           // worker cap when Parallel is set
	ComponentTimeout time.Duration // per-component bound, 0 disables
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SpecPath == "" {
		return nil, errors.New("SpecPath is a required configuration field and cannot be empty")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	return &cfg, nil
}
