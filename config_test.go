// config_test.go - Tests for configuration loading and logger construction

package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guhost.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// ===== Sprint 1: Flags and defaults =====

func TestParseConfig_Defaults(t *testing.T) {
	cfg, _, err := ParseConfig("guhost", nil, discardLogger())
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("defaults changed: %+v", cfg)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	cfg, _, err := ParseConfig("guhost", []string{
		"-display", "headless", "-frameskip", "2", "-max-skips", "4", "-vsync", "5",
		"-rate", "30", "-clock", "counting", "-strict", "-scale", "9",
	}, discardLogger())
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Display != "headless" || cfg.FrameSkip != 2 || cfg.MaxSkips != 4 || cfg.VSync != 5 {
		t.Fatalf("pacing flags = %+v", cfg)
	}
	if cfg.FrameRate != 30 || cfg.ClockMode != "counting" || !cfg.StrictLists {
		t.Fatalf("clock flags = %+v", cfg)
	}
	if cfg.Scale != 4 {
		t.Fatalf("scale %d not clamped to 4", cfg.Scale)
	}
}

func TestParseConfig_Help(t *testing.T) {
	_, _, err := ParseConfig("guhost", []string{"-h"}, discardLogger())
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"display", func(c *Config) { c.Display = "vga" }, "unknown display"},
		{"renderer", func(c *Config) { c.Renderer = "metal" }, "unknown renderer"},
		{"clock", func(c *Config) { c.ClockMode = "fast" }, "unknown clock mode"},
		{"rate", func(c *Config) { c.FrameRate = 61 }, "frame rate"},
		{"negative frameskip", func(c *Config) { c.FrameSkip = -1 }, "must not be negative"},
		{"tick gap", func(c *Config) { c.MaxTickGap = 0 }, "max tick gap"},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 0 }, "sample rate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

// ===== Sprint 2: Config file =====

func TestParseConfig_FileThenFlags(t *testing.T) {
	path := writeConfig(t, `
display: terminal
frameskip: 1
max_skips: 2
constant_blend: false
log:
  level: debug
audio:
  enabled: true
  sample_rate: 22050
`)
	cfg, _, err := ParseConfig("guhost", []string{"-config", path, "-max-skips", "5"}, discardLogger())
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Display != "terminal" || cfg.FrameSkip != 1 || cfg.ConstantBlend {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxSkips != 5 {
		t.Fatalf("flag did not override file: max skips %d", cfg.MaxSkips)
	}
	if cfg.Log.Level != "debug" || !cfg.Audio.Enabled || cfg.Audio.SampleRate != 22050 {
		t.Fatalf("nested values = %+v %+v", cfg.Log, cfg.Audio)
	}
	if caps := cfg.HostCaps(); caps.ConstantBlend || !caps.BlendEquations {
		t.Fatalf("caps = %+v", caps)
	}
}

func TestLoadConfigFile_MalformedKeepsBase(t *testing.T) {
	path := writeConfig(t, "frameskip: [not a number\n")
	base := DefaultConfig()
	if got := LoadConfigFile(path, base, discardLogger()); got != base {
		t.Fatalf("malformed file changed config: %+v", got)
	}
}

func TestLoadConfigFile_MissingKeepsBase(t *testing.T) {
	base := DefaultConfig()
	got := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"), base, discardLogger())
	if got != base {
		t.Fatalf("missing file changed config: %+v", got)
	}
}

func TestConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.yaml", "-frames", "3"}, "b.yaml"},
		{[]string{"-frames", "3"}, ""},
		{[]string{"-config"}, ""},
	}
	for _, tc := range tests {
		if got := configPathFromArgs(tc.args); got != tc.want {
			t.Errorf("configPathFromArgs(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

// ===== Sprint 3: Logger =====

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("frame", "op", "swap")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"op":"swap"`) {
		t.Fatalf("json output = %q", out)
	}

	if _, err := NewLogger(&buf, LogConfig{Level: "loud"}); err == nil {
		t.Fatal("bad level accepted")
	}
	if _, err := NewLogger(&buf, LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Fatal("bad format accepted")
	}
}
