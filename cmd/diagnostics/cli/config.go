// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/lib/clipboard"
	"github.com/bureau-foundation/diagnostics/lib/config"
)

// ConfigFile adds --config to a command's parameter struct and loads
// the layered configuration.
//
//	type recordParams struct {
//	    cli.ConfigFile
//	    Duration time.Duration `flag:"duration" default:"1m"`
//	}
type ConfigFile struct {
	Path string
}

// AddFlags registers --config.
func (c *ConfigFile) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&c.Path, "config", "c", "",
		"configuration file (.yaml, .json, or .jsonc); defaults to $DIAGNOSTICS_CONFIG")
}

// Load reads and validates the configuration. Every failure is a
// validation error: the user fixes the file or the environment.
func (c *ConfigFile) Load() (*config.Config, error) {
	cfg, err := config.Load(c.Path)
	if err != nil {
		return nil, Validation("%w", err).
			WithHint("Check the file passed to --config and any DIAGNOSTICS_* variables.")
	}
	return cfg, nil
}

// ClipboardSink returns the clipboard sink selected by cfg.
func ClipboardSink(cfg *config.Config) (clipboard.Sink, error) {
	mode, err := clipboard.ParseMode(cfg.Export.Clipboard)
	if err != nil {
		return nil, Validation("%w", err)
	}
	sink, err := clipboard.New(mode)
	if err != nil {
		return nil, Validation("%w", err)
	}
	return sink, nil
}
