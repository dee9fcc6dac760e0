// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/diagnostics/lib/clipboard"
	"github.com/bureau-foundation/diagnostics/lib/collector"
	"github.com/bureau-foundation/diagnostics/lib/export"
	"github.com/bureau-foundation/diagnostics/lib/report"
	"github.com/bureau-foundation/diagnostics/lib/ring"
	"github.com/bureau-foundation/diagnostics/lib/sampler"
	"github.com/bureau-foundation/diagnostics/lib/sealed"
)

// Environment selects which override section of the file applies.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the complete configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment"`

	Collector CollectorConfig `yaml:"collector" json:"collector"`
	Export    ExportConfig    `yaml:"export" json:"export"`

	// Per-environment overrides, applied after the base values.
	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// Overrides holds the sections an environment may override. Only
// non-zero fields take effect.
type Overrides struct {
	Collector *CollectorConfig `yaml:"collector,omitempty" json:"collector,omitempty"`
	Export    *ExportConfig    `yaml:"export,omitempty" json:"export,omitempty"`
}

// CollectorConfig configures event collection.
type CollectorConfig struct {
	// Capacity is the ring buffer size in events.
	// Default: 10000. Clamped to [1, 1048576].
	Capacity int `yaml:"capacity" json:"capacity"`

	// ChannelCapacity bounds the producer queue.
	// Default: 1024.
	ChannelCapacity int `yaml:"channel_capacity" json:"channel_capacity"`

	// SendTimeout is how long a producer waits on a full queue.
	// Default: 5ms.
	SendTimeout string `yaml:"send_timeout" json:"send_timeout"`

	// SampleInterval is the resource sampling period.
	// Default: 1s. Clamped to [100ms, 10s].
	SampleInterval string `yaml:"sample_interval" json:"sample_interval"`

	// DisableSampling turns the resource sampler off.
	DisableSampling bool `yaml:"disable_sampling" json:"disable_sampling"`
}

// ExportConfig configures report export.
type ExportConfig struct {
	// Directory receives exported reports.
	// Default: ${HOME}/diagnostics
	Directory string `yaml:"directory" json:"directory"`

	// Format is json or cbor. Default: json.
	Format string `yaml:"format" json:"format"`

	// Compression is none, zstd, or lz4. Default: none.
	Compression string `yaml:"compression" json:"compression"`

	// Recipients are age public keys; when set, exported files are
	// encrypted to them.
	Recipients []string `yaml:"recipients" json:"recipients"`

	// Clipboard is auto, system, or osc52. Default: auto.
	Clipboard string `yaml:"clipboard" json:"clipboard"`
}

// EnvironmentVariables lists the variables that override file values.
// A variable that is unset or empty leaves the field alone.
type EnvironmentVariables struct {
	Environment     string   `env:"DIAGNOSTICS_ENVIRONMENT"`
	Capacity        int      `env:"DIAGNOSTICS_CAPACITY"`
	ChannelCapacity int      `env:"DIAGNOSTICS_CHANNEL_CAPACITY"`
	SendTimeout     string   `env:"DIAGNOSTICS_SEND_TIMEOUT"`
	SampleInterval  string   `env:"DIAGNOSTICS_SAMPLE_INTERVAL"`
	DisableSampling bool     `env:"DIAGNOSTICS_DISABLE_SAMPLING"`
	Directory       string   `env:"DIAGNOSTICS_EXPORT_DIR"`
	Format          string   `env:"DIAGNOSTICS_FORMAT"`
	Compression     string   `env:"DIAGNOSTICS_COMPRESSION"`
	Recipients      []string `env:"DIAGNOSTICS_RECIPIENTS" envSeparator:","`
	Clipboard       string   `env:"DIAGNOSTICS_CLIPBOARD"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Collector: CollectorConfig{
			Capacity:        ring.DefaultCapacity,
			ChannelCapacity: collector.DefaultChannelCapacity,
			SendTimeout:     collector.DefaultSendTimeout.String(),
			SampleInterval:  sampler.DefaultInterval.String(),
		},
		Export: ExportConfig{
			Directory:   filepath.Join("${HOME}", "diagnostics"),
			Format:      string(report.FormatJSON),
			Compression: string(export.CompressionNone),
			Clipboard:   string(clipboard.ModeAuto),
		},
	}
}

// Load builds the configuration from the defaults, the file at path
// (or DIAGNOSTICS_CONFIG when path is empty), and DIAGNOSTICS_*
// variables, then validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DIAGNOSTICS_CONFIG")
	}
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}
	cfg.applyEnvironmentOverrides()
	if err := cfg.applyEnvironmentVariables(); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile merges one file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if collectorOverrides := overrides.Collector; collectorOverrides != nil {
		if collectorOverrides.Capacity != 0 {
			c.Collector.Capacity = collectorOverrides.Capacity
		}
		if collectorOverrides.ChannelCapacity != 0 {
			c.Collector.ChannelCapacity = collectorOverrides.ChannelCapacity
		}
		if collectorOverrides.SendTimeout != "" {
			c.Collector.SendTimeout = collectorOverrides.SendTimeout
		}
		if collectorOverrides.SampleInterval != "" {
			c.Collector.SampleInterval = collectorOverrides.SampleInterval
		}
		// A bool has no unset state, so an override section that
		// mentions the collector always decides sampling.
		c.Collector.DisableSampling = collectorOverrides.DisableSampling
	}

	if exportOverrides := overrides.Export; exportOverrides != nil {
		if exportOverrides.Directory != "" {
			c.Export.Directory = exportOverrides.Directory
		}
		if exportOverrides.Format != "" {
			c.Export.Format = exportOverrides.Format
		}
		if exportOverrides.Compression != "" {
			c.Export.Compression = exportOverrides.Compression
		}
		if len(exportOverrides.Recipients) > 0 {
			c.Export.Recipients = exportOverrides.Recipients
		}
		if exportOverrides.Clipboard != "" {
			c.Export.Clipboard = exportOverrides.Clipboard
		}
	}
}

func (c *Config) applyEnvironmentVariables() error {
	variables := EnvironmentVariables{
		Environment:     string(c.Environment),
		Capacity:        c.Collector.Capacity,
		ChannelCapacity: c.Collector.ChannelCapacity,
		SendTimeout:     c.Collector.SendTimeout,
		SampleInterval:  c.Collector.SampleInterval,
		DisableSampling: c.Collector.DisableSampling,
		Directory:       c.Export.Directory,
		Format:          c.Export.Format,
		Compression:     c.Export.Compression,
		Recipients:      c.Export.Recipients,
		Clipboard:       c.Export.Clipboard,
	}
	if err := env.Parse(&variables); err != nil {
		return fmt.Errorf("parsing DIAGNOSTICS_* environment: %w", err)
	}
	c.Environment = Environment(variables.Environment)
	c.Collector = CollectorConfig{
		Capacity:        variables.Capacity,
		ChannelCapacity: variables.ChannelCapacity,
		SendTimeout:     variables.SendTimeout,
		SampleInterval:  variables.SampleInterval,
		DisableSampling: variables.DisableSampling,
	}
	c.Export = ExportConfig{
		Directory:   variables.Directory,
		Format:      variables.Format,
		Compression: variables.Compression,
		Recipients:  variables.Recipients,
		Clipboard:   variables.Clipboard,
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Export.Directory = expandVars(c.Export.Directory, map[string]string{
		"HOME": homeDirectory(),
	})
}

func homeDirectory() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the process environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate clamps capacities and intervals into range and reports
// every invalid value.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	c.Collector.Capacity = ring.ClampCapacity(c.Collector.Capacity)
	if c.Collector.ChannelCapacity <= 0 {
		c.Collector.ChannelCapacity = collector.DefaultChannelCapacity
	}

	if timeout, err := parseDuration(c.Collector.SendTimeout, collector.DefaultSendTimeout); err != nil {
		errs = append(errs, fmt.Errorf("collector.send_timeout: %w", err))
	} else {
		c.Collector.SendTimeout = timeout.String()
	}
	if interval, err := parseDuration(c.Collector.SampleInterval, sampler.DefaultInterval); err != nil {
		errs = append(errs, fmt.Errorf("collector.sample_interval: %w", err))
	} else {
		c.Collector.SampleInterval = sampler.ClampInterval(interval).String()
	}

	if c.Export.Directory == "" {
		errs = append(errs, errors.New("export.directory is required"))
	}
	if format, err := report.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	} else {
		c.Export.Format = string(format)
	}
	if compression, err := export.ParseCompression(c.Export.Compression); err != nil {
		errs = append(errs, fmt.Errorf("export.compression: %w", err))
	} else {
		c.Export.Compression = string(compression)
	}
	if mode, err := clipboard.ParseMode(c.Export.Clipboard); err != nil {
		errs = append(errs, fmt.Errorf("export.clipboard: %w", err))
	} else {
		c.Export.Clipboard = string(mode)
	}
	if _, err := sealed.ParseRecipients(c.Export.Recipients); err != nil {
		errs = append(errs, fmt.Errorf("export.recipients: %w", err))
	}

	return errors.Join(errs...)
}

// parseDuration parses value, treating "" as fallback. Negative
// durations are rejected.
func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	return duration, nil
}

// CollectorSettings converts the validated collector section into a
// collector.Config. Logger, Clock, and Source are left for the caller.
func (c *Config) CollectorSettings() collector.Config {
	sendTimeout, _ := parseDuration(c.Collector.SendTimeout, collector.DefaultSendTimeout)
	sampleInterval, _ := parseDuration(c.Collector.SampleInterval, sampler.DefaultInterval)
	return collector.Config{
		Capacity:        c.Collector.Capacity,
		ChannelCapacity: c.Collector.ChannelCapacity,
		SendTimeout:     sendTimeout,
		SampleInterval:  sampleInterval,
		DisableSampling: c.Collector.DisableSampling,
	}
}

// ExportOptions converts the validated export section into
// export.Options.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		Format:      report.Format(c.Export.Format),
		Compression: export.Compression(c.Export.Compression),
		Recipients:  c.Export.Recipients,
	}
}

// EnsureExportDirectory creates the export directory if needed.
func (c *Config) EnsureExportDirectory() error {
	if err := os.MkdirAll(c.Export.Directory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", c.Export.Directory, err)
	}
	return nil
}
