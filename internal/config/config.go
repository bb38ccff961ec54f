// Package config loads the YAML configuration for a tablesync coordinator
// daemon (cmd/tablesyncd), the file-based analogue of the teacher's
// flag-based cmd/server/main.go config (DSN, -http, -grpc, tenant flags).
//
// What: CoordinatorConfig — the process-drain delay and the optional
// listen address for the gRPC transport.
// How: gopkg.in/yaml.v3, the same library the teacher depends on
// (exercised in internal/testhelper/examples_test.go).
// Why: A long-running daemon is better served by a config file than by a
// pile of flags (the file is read once, at startup); the teacher's own cmd/server/main.go is a
// one-shot process, ours is meant to run as a service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CoordinatorConfig configures a coordinator process.
type CoordinatorConfig struct {
	// Delay is how often the coordinator drains its pending queue, as a
	// Go duration string (e.g. "250ms"). Empty or "0" means
	// immediate-processing mode (spec.md §4.3, §5). The coordinator drains
	// at most once a second: a shorter delay runs every second, and any
	// fraction of a second in a longer one is dropped.
	Delay string `yaml:"delay"`
	// GRPCAddr is the optional listen address for transport/grpc. Empty
	// disables the gRPC transport.
	GRPCAddr string `yaml:"grpc_addr"`
}

// Default returns the zero-delay, no-transport configuration: immediate
// processing, in-process only.
func Default() CoordinatorConfig {
	return CoordinatorConfig{}
}

// Load reads and parses a CoordinatorConfig from the YAML file at path.
func Load(path string) (CoordinatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CoordinatorConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg CoordinatorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CoordinatorConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if _, err := cfg.DrainDelay(); err != nil {
		return CoordinatorConfig{}, err
	}
	return cfg, nil
}

// DrainDelay parses Delay into a time.Duration, treating an empty string
// as zero (immediate-processing mode).
func (c CoordinatorConfig) DrainDelay() (time.Duration, error) {
	if c.Delay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		return 0, fmt.Errorf("config: invalid delay %q: %w", c.Delay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: delay must not be negative, got %s", d)
	}
	return d, nil
}
