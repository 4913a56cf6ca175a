// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package jdiconfig provides configuration loading for cmd/jdi-inspect.
//
// Configuration is loaded from a single file specified by:
//   - JDIPIPELINE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides,
// matching the teacher's lib/config package.
package jdiconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jdi-foundation/jdipipeline/lib/jdi"
)

// Config is the configuration for cmd/jdi-inspect.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// DispatcherQueueSize is loaded from the file but not read by
	// cmd/jdi-inspect; the mock connection's pending-event buffer has
	// no bound.
	DispatcherQueueSize int `yaml:"dispatcher_queue_size"`

	// DefaultSuspendPolicy is validated on load but not read by
	// cmd/jdi-inspect; every request manager applies
	// jdi.SuspendEventThread unless a create call's own args override it.
	DefaultSuspendPolicy string `yaml:"default_suspend_policy"`

	// DisabledKinds lists event kinds cmd/jdi-inspect should not
	// subscribe to, letting an operator quiet noisy kinds like
	// method-entry/exit without touching code.
	DisabledKinds []string `yaml:"disabled_kinds"`
}

// Default returns the default configuration. LoadFile starts from these
// values before applying the file, and cmd/jdi-inspect uses them as-is
// when neither --config nor JDIPIPELINE_CONFIG is given.
func Default() *Config {
	return &Config{
		LogLevel:             "info",
		DispatcherQueueSize:  0,
		DefaultSuspendPolicy: string(jdi.SuspendEventThread),
		DisabledKinds:        nil,
	}
}

// Load loads configuration from the JDIPIPELINE_CONFIG environment
// variable. There is no fallback: if it is unset, this fails.
func Load() (*Config, error) {
	path := os.Getenv("JDIPIPELINE_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("JDIPIPELINE_CONFIG environment variable not set; " +
			"set it to the path of your jdipipeline.yaml config file, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jdiconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("jdiconfig: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("jdiconfig: invalid log_level %q", c.LogLevel)
	}

	switch jdi.SuspendPolicy(c.DefaultSuspendPolicy) {
	case jdi.SuspendEventThread, jdi.SuspendAll, jdi.SuspendNone:
	default:
		return fmt.Errorf("jdiconfig: invalid default_suspend_policy %q", c.DefaultSuspendPolicy)
	}

	for _, kind := range c.DisabledKinds {
		if !isKnownKind(jdi.Kind(kind)) {
			return fmt.Errorf("jdiconfig: unknown disabled_kinds entry %q", kind)
		}
	}
	return nil
}

// IsDisabled reports whether kind appears in DisabledKinds.
func (c *Config) IsDisabled(kind jdi.Kind) bool {
	for _, disabled := range c.DisabledKinds {
		if jdi.Kind(disabled) == kind {
			return true
		}
	}
	return false
}

func isKnownKind(kind jdi.Kind) bool {
	for _, known := range jdi.Kinds() {
		if known == kind {
			return true
		}
	}
	return false
}
