// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/diagnostics/lib/config"
)

func TestConfigFile_Flag(t *testing.T) {
	var params struct {
		ConfigFile
	}
	flagSet := FlagsFromParams("test", &params)
	if err := flagSet.Parse([]string{"-c", "settings.yaml"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params.Path != "settings.yaml" {
		t.Errorf("Path = %q", params.Path)
	}
}

func TestConfigFile_LoadErrorIsValidation(t *testing.T) {
	t.Setenv("DIAGNOSTICS_CONFIG", "")
	file := ConfigFile{Path: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := file.Load()

	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Fatalf("Load() error = %v, want validation ToolError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestClipboardSink(t *testing.T) {
	cfg := config.Default()
	for _, mode := range []string{"", "auto", "system", "osc52"} {
		cfg.Export.Clipboard = mode
		if sink, err := ClipboardSink(cfg); err != nil || sink == nil {
			t.Errorf("ClipboardSink(%q) = %v, %v", mode, sink, err)
		}
	}
	cfg.Export.Clipboard = "carrier-pigeon"
	if _, err := ClipboardSink(cfg); err == nil {
		t.Error("unknown mode accepted")
	}
}
