// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/export"
	"github.com/bureau-foundation/diagnostics/lib/report"
	"github.com/bureau-foundation/diagnostics/lib/sealed"
)

// clearEnvironment blanks every variable Load reads so the developer's
// shell cannot leak into a test. t.Setenv restores them afterwards and
// forbids t.Parallel, which these tests must not use anyway.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DIAGNOSTICS_CONFIG", "DIAGNOSTICS_ENVIRONMENT", "DIAGNOSTICS_CAPACITY",
		"DIAGNOSTICS_CHANNEL_CAPACITY", "DIAGNOSTICS_SEND_TIMEOUT", "DIAGNOSTICS_SAMPLE_INTERVAL",
		"DIAGNOSTICS_DISABLE_SAMPLING", "DIAGNOSTICS_EXPORT_DIR", "DIAGNOSTICS_FORMAT",
		"DIAGNOSTICS_COMPRESSION", "DIAGNOSTICS_RECIPIENTS", "DIAGNOSTICS_CLIPBOARD",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	clearEnvironment(t)
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Collector.Capacity != 10_000 || cfg.Collector.ChannelCapacity != 1024 {
		t.Errorf("collector = %+v", cfg.Collector)
	}
	if cfg.Collector.SendTimeout != "5ms" || cfg.Collector.SampleInterval != "1s" {
		t.Errorf("durations = %s, %s", cfg.Collector.SendTimeout, cfg.Collector.SampleInterval)
	}
	if !strings.HasSuffix(cfg.Export.Directory, "diagnostics") || strings.Contains(cfg.Export.Directory, "${") {
		t.Errorf("expected an expanded export directory, got %s", cfg.Export.Directory)
	}
	if cfg.Export.Format != "json" || cfg.Export.Compression != "none" || cfg.Export.Clipboard != "auto" {
		t.Errorf("export = %+v", cfg.Export)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, "diagnostics.yaml", `
environment: production
collector:
  capacity: 500
  sample_interval: 250ms
export:
  directory: /var/diagnostics
  format: cbor
  compression: zstd
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != Production || cfg.Collector.Capacity != 500 || cfg.Collector.SampleInterval != "250ms" {
		t.Errorf("collector = %+v (%s)", cfg.Collector, cfg.Environment)
	}
	options := cfg.ExportOptions()
	if options.Format != report.FormatCBOR || options.Compression != export.CompressionZstd {
		t.Errorf("ExportOptions = %+v", options)
	}
	if cfg.Export.Directory != "/var/diagnostics" {
		t.Errorf("directory = %s", cfg.Export.Directory)
	}
}

func TestLoadJSONCFromEnvironment(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, "diagnostics.jsonc", `{
  // Small buffer for the kiosk build.
  "collector": {
    "capacity": 64,
    "disable_sampling": true,
  },
  "export": {"directory": "/tmp/reports"},
}`)
	t.Setenv("DIAGNOSTICS_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Collector.Capacity != 64 || !cfg.Collector.DisableSampling {
		t.Errorf("collector = %+v", cfg.Collector)
	}
	if cfg.Export.Directory != "/tmp/reports" {
		t.Errorf("directory = %s", cfg.Export.Directory)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, "diagnostics.yaml", `
environment: production
collector:
  capacity: 1000
  sample_interval: 2s
export:
  directory: /base
  compression: none
development:
  export:
    directory: /dev-only
production:
  collector:
    capacity: 5000
  export:
    compression: lz4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Collector.Capacity != 5000 {
		t.Errorf("expected capacity=5000 from production override, got %d", cfg.Collector.Capacity)
	}
	if cfg.Collector.SampleInterval != "2s" {
		t.Errorf("expected sample_interval=2s from base, got %s", cfg.Collector.SampleInterval)
	}
	if cfg.Export.Compression != "lz4" {
		t.Errorf("expected compression=lz4, got %s", cfg.Export.Compression)
	}
	if cfg.Export.Directory != "/base" {
		t.Errorf("development section applied in production: %s", cfg.Export.Directory)
	}
}

func TestEnvironmentVariablesOverrideFile(t *testing.T) {
	clearEnvironment(t)
	path := writeConfig(t, "diagnostics.yaml", `
collector:
  capacity: 1000
  send_timeout: 10ms
export:
  directory: /file
  format: json
`)
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	t.Setenv("REPORT_ROOT", "")
	t.Setenv("DIAGNOSTICS_CAPACITY", "250")
	t.Setenv("DIAGNOSTICS_EXPORT_DIR", "${REPORT_ROOT:-/fallback}/out")
	t.Setenv("DIAGNOSTICS_FORMAT", "cbor")
	t.Setenv("DIAGNOSTICS_RECIPIENTS", keypair.PublicKey)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Collector.Capacity != 250 {
		t.Errorf("capacity = %d, want 250 from environment", cfg.Collector.Capacity)
	}
	if cfg.Collector.SendTimeout != "10ms" {
		t.Errorf("send_timeout = %s, want 10ms from file", cfg.Collector.SendTimeout)
	}
	if cfg.Export.Directory != "/fallback/out" {
		t.Errorf("directory = %s", cfg.Export.Directory)
	}
	if cfg.Export.Format != "cbor" {
		t.Errorf("format = %s", cfg.Export.Format)
	}
	if len(cfg.Export.Recipients) != 1 || cfg.Export.Recipients[0] != keypair.PublicKey {
		t.Errorf("recipients = %v", cfg.Export.Recipients)
	}

	settings := cfg.CollectorSettings()
	if settings.Capacity != 250 || settings.SendTimeout != 10*time.Millisecond || settings.SampleInterval != time.Second {
		t.Errorf("CollectorSettings = %+v", settings)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnvironment(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{"${HOME}/diagnostics", map[string]string{"HOME": "/home/user"}, "/home/user/diagnostics"},
		{"${DIAGNOSTICS_TEST_MISSING:-default}", map[string]string{}, "default"},
		{"${PRESENT:-default}", map[string]string{"PRESENT": "value"}, "value"},
		{"${A}/${B}", map[string]string{"A": "first", "B": "second"}, "first/second"},
		{"no variables here", map[string]string{}, "no variables here"},
	}
	for _, tt := range tests {
		if result := expandVars(tt.input, tt.vars); result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:   "capacity clamped",
			modify: func(c *Config) { c.Collector.Capacity = 1 << 30 },
			check: func(t *testing.T, c *Config) {
				if c.Collector.Capacity != 1<<20 {
					t.Errorf("capacity = %d", c.Collector.Capacity)
				}
			},
		},
		{
			name:   "interval clamped",
			modify: func(c *Config) { c.Collector.SampleInterval = "1ms" },
			check: func(t *testing.T, c *Config) {
				if c.Collector.SampleInterval != "100ms" {
					t.Errorf("sample_interval = %s", c.Collector.SampleInterval)
				}
			},
		},
		{
			name:   "empty enums take defaults",
			modify: func(c *Config) { c.Export.Format, c.Export.Compression, c.Export.Clipboard = "", "", "" },
			check: func(t *testing.T, c *Config) {
				if c.Export.Format != "json" || c.Export.Compression != "none" || c.Export.Clipboard != "auto" {
					t.Errorf("export = %+v", c.Export)
				}
			},
		},
		{name: "invalid environment", modify: func(c *Config) { c.Environment = "staging" }, wantErr: "environment"},
		{name: "bad duration", modify: func(c *Config) { c.Collector.SendTimeout = "soon" }, wantErr: "send_timeout"},
		{name: "negative duration", modify: func(c *Config) { c.Collector.SampleInterval = "-1s" }, wantErr: "sample_interval"},
		{name: "bad format", modify: func(c *Config) { c.Export.Format = "xml" }, wantErr: "export.format"},
		{name: "bad compression", modify: func(c *Config) { c.Export.Compression = "gzip" }, wantErr: "export.compression"},
		{name: "bad clipboard", modify: func(c *Config) { c.Export.Clipboard = "fax" }, wantErr: "export.clipboard"},
		{name: "bad recipient", modify: func(c *Config) { c.Export.Recipients = []string{"ssh-rsa nope"} }, wantErr: "export.recipients"},
		{name: "empty directory", modify: func(c *Config) { c.Export.Directory = "" }, wantErr: "export.directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("Validate() = %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Fatalf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestEnsureExportDirectory(t *testing.T) {
	cfg := Default()
	cfg.Export.Directory = filepath.Join(t.TempDir(), "nested", "reports")
	if err := cfg.EnsureExportDirectory(); err != nil {
		t.Fatalf("EnsureExportDirectory failed: %v", err)
	}
	if info, err := os.Stat(cfg.Export.Directory); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
