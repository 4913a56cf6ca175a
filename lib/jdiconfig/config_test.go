// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

package jdiconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jdipipeline.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
default_suspend_policy: all
disabled_kinds:
  - step
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DefaultSuspendPolicy != "all" {
		t.Errorf("DefaultSuspendPolicy = %q, want all", cfg.DefaultSuspendPolicy)
	}
	if len(cfg.DisabledKinds) != 1 || cfg.DisabledKinds[0] != "step" {
		t.Errorf("DisabledKinds = %v, want [step]", cfg.DisabledKinds)
	}
}

func TestLoadFileMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected an error loading a missing file")
	}
}

func TestLoadRequiresEnvVar(t *testing.T) {
	t.Setenv("JDIPIPELINE_CONFIG", "")
	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JDIPIPELINE_CONFIG is unset, with no fallback")
	}
}

func TestLoadUsesEnvVar(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")
	t.Setenv("JDIPIPELINE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "trace"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestValidateRejectsUnknownSuspendPolicy(t *testing.T) {
	cfg := Default()
	cfg.DefaultSuspendPolicy = "everything"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown suspend policy")
	}
}

func TestValidateRejectsUnknownDisabledKind(t *testing.T) {
	cfg := Default()
	cfg.DisabledKinds = []string{"not_a_real_kind"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown disabled_kinds entry")
	}
}

func TestIsDisabled(t *testing.T) {
	cfg := Default()
	cfg.DisabledKinds = []string{"step", "breakpoint"}

	if !cfg.IsDisabled("step") {
		t.Error("IsDisabled(step) = false, want true")
	}
	if cfg.IsDisabled("method_entry") {
		t.Error("IsDisabled(method_entry) = true, want false")
	}
}
