// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor implements "diagnostics monitor", an interactive
// terminal view of a running collector. Key presses in the monitor are
// themselves recorded as user_action events, so the monitor doubles as
// a live demonstration of the pipeline.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/collector"
	"github.com/bureau-foundation/diagnostics/lib/export"
	"github.com/bureau-foundation/diagnostics/lib/report"
)

type params struct {
	cli.ConfigFile
	Refresh time.Duration `flag:"refresh" desc:"status refresh interval" default:"1s"`
}

// Command returns the "monitor" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "monitor",
		Summary: "Watch the collector live and export reports interactively",
		Description: `Start a collector with resource sampling and show its status, the
latest resource sample, and the newest events. Press e to write a
report to the export directory, c to copy one to the clipboard.`,
		Usage: "diagnostics monitor [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("monitor", &p) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if !cli.IsTerminal(os.Stdout) {
				return cli.Validation("monitor needs a terminal").
					WithHint("Use 'diagnostics record' for non-interactive collection.")
			}
			cfg, err := p.Load()
			if err != nil {
				return err
			}
			sink, err := cli.ClipboardSink(cfg)
			if err != nil {
				return err
			}

			settings := cfg.CollectorSettings()
			// The TUI owns the terminal; collector logs would corrupt it.
			settings.Logger = slog.New(slog.DiscardHandler)
			diagnostics := collector.New(settings)
			if err := diagnostics.Start(); err != nil {
				return cli.Internal("starting collector: %w", err)
			}
			defer diagnostics.Stop()

			options := cfg.ExportOptions()
			model := NewModel(Config{
				Collector: diagnostics,
				Export: func(built *report.Report) (string, error) {
					if err := cfg.EnsureExportDirectory(); err != nil {
						return "", err
					}
					path := filepath.Join(cfg.Export.Directory, export.FileName(time.Now(), options))
					if err := export.ToFile(built, path, options); err != nil {
						return "", err
					}
					logger.Info("report exported", "path", path)
					return path, nil
				},
				Copy: func(ctx context.Context, built *report.Report) error {
					return export.ToClipboard(ctx, built, sink)
				},
				RefreshInterval: p.Refresh,
				Output:          os.Stdout,
			})

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return cli.Internal("running monitor: %w", err)
			}
			status := diagnostics.Status()
			fmt.Printf("collected %d events (%d dropped, %d evicted)\n",
				status.EventCount, status.DroppedCount, status.EvictedCount)
			return nil
		},
	}
}
