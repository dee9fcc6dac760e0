// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package record implements "diagnostics record": run the collector for
// a fixed duration, then export one report.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/clock"
	"github.com/bureau-foundation/diagnostics/lib/collector"
	"github.com/bureau-foundation/diagnostics/lib/config"
	"github.com/bureau-foundation/diagnostics/lib/export"
)

type params struct {
	cli.ConfigFile
	cli.JSONOutput

	Duration    time.Duration `flag:"duration,d" desc:"how long to collect before exporting" default:"1m"`
	Output      string        `flag:"output,o" desc:"report path (default: timestamped file in the export directory)"`
	Format      string        `flag:"format" desc:"json or cbor (overrides config)"`
	Compression string        `flag:"compression" desc:"none, zstd, or lz4 (overrides config)"`
	Recipients  []string      `flag:"recipient" desc:"age public key to encrypt the report to (repeatable, overrides config)"`
	Clipboard   bool          `flag:"clipboard" desc:"also copy the JSON report to the clipboard"`
}

// Result is the --json output of a recording.
type Result struct {
	Path           string `json:"path"`
	ReportID       string `json:"report_id"`
	EventCount     int    `json:"event_count"`
	DroppedCount   uint64 `json:"dropped_count"`
	EvictedCount   uint64 `json:"evicted_count"`
	SamplerDropped uint64 `json:"sampler_dropped"`
	Copied         bool   `json:"copied_to_clipboard"`
}

// Command returns the "record" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "record",
		Summary: "Collect diagnostics for a fixed duration and export a report",
		Description: `Start the collector with resource sampling, wait for --duration (or
until interrupted), then write one anonymized report.

Interrupting with Ctrl-C ends the collection early; the report still
covers everything gathered up to that point.`,
		Usage: "diagnostics record [flags]",
		Examples: []cli.Example{
			{
				Description: "Record for one minute into the export directory",
				Command:     "diagnostics record",
			},
			{
				Description: "Record for ten seconds, compressed, and copy to the clipboard",
				Command:     "diagnostics record -d 10s --compression zstd --clipboard",
			},
			{
				Description: "Encrypt the report for a support engineer",
				Command:     "diagnostics record --recipient age1...",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("record", &p) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if p.Duration <= 0 {
				return cli.Validation("--duration must be positive, got %s", p.Duration)
			}
			cfg, err := p.Load()
			if err != nil {
				return err
			}
			if err := p.applyOverrides(cfg); err != nil {
				return err
			}
			result, err := Run(ctx, cfg, Options{
				Duration:  p.Duration,
				Output:    p.Output,
				Clipboard: p.Clipboard,
				Clock:     clock.Real(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			if done, err := p.EmitJSON(result); done {
				return err
			}
			fmt.Printf("wrote %s (%d events", result.Path, result.EventCount)
			if result.DroppedCount > 0 || result.EvictedCount > 0 {
				fmt.Printf(", %d dropped, %d evicted", result.DroppedCount, result.EvictedCount)
			}
			fmt.Println(")")
			if result.Copied {
				fmt.Println("copied to clipboard")
			}
			return nil
		},
	}
}

func (p *params) applyOverrides(cfg *config.Config) error {
	if p.Format != "" {
		cfg.Export.Format = p.Format
	}
	if p.Compression != "" {
		cfg.Export.Compression = p.Compression
	}
	if len(p.Recipients) > 0 {
		cfg.Export.Recipients = p.Recipients
	}
	if err := cfg.Validate(); err != nil {
		return cli.Validation("%w", err)
	}
	return nil
}

// Options parameterizes Run beyond the configuration.
type Options struct {
	Duration  time.Duration
	Output    string
	Clipboard bool

	// Collector constructs the collector. Defaults to collector.New.
	Collector func(collector.Config) *collector.Collector

	Clock  clock.Clock
	Logger *slog.Logger
}

// Run records for options.Duration (or until ctx is cancelled) and
// writes the report.
func Run(ctx context.Context, cfg *config.Config, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	settings := cfg.CollectorSettings()
	settings.Clock = clk
	settings.Logger = logger
	newCollector := options.Collector
	if newCollector == nil {
		newCollector = collector.New
	}
	diagnostics := newCollector(settings)
	if err := diagnostics.Start(); err != nil {
		return nil, cli.Internal("starting collector: %w", err)
	}
	defer diagnostics.Stop()

	diagnostics.LogState("recording", fmt.Sprintf("duration=%s", options.Duration))
	logger.Info("recording", "duration", options.Duration, "capacity", settings.Capacity)

	interrupted := false
	select {
	case <-clk.After(options.Duration):
	case <-ctx.Done():
		interrupted = true
	}
	if interrupted {
		diagnostics.LogAction("interrupt", "recording ended early")
		logger.Info("recording interrupted")
	}

	// The report is written even when the caller's context was
	// cancelled by an interrupt.
	exportContext := context.WithoutCancel(ctx)
	built, err := diagnostics.ExportReport(exportContext)
	if err != nil {
		return nil, cli.Internal("building report: %w", err)
	}
	status := diagnostics.Status()

	options.Output, err = outputPath(cfg, options.Output, clk.Now())
	if err != nil {
		return nil, err
	}
	if err := export.ToFile(built, options.Output, cfg.ExportOptions()); err != nil {
		return nil, cli.Internal("%w", err)
	}
	logger.Info("report written", "path", options.Output, "events", built.Metadata.EventCount)

	result := &Result{
		Path:           options.Output,
		ReportID:       built.Metadata.ReportID,
		EventCount:     built.Metadata.EventCount,
		DroppedCount:   status.DroppedCount,
		EvictedCount:   status.EvictedCount,
		SamplerDropped: status.SamplerDropped,
	}

	if options.Clipboard {
		sink, err := cli.ClipboardSink(cfg)
		if err != nil {
			return nil, err
		}
		if err := export.ToClipboard(exportContext, built, sink); err != nil {
			// The file is already written; a clipboard failure is
			// reported but does not lose the report.
			logger.Warn("clipboard copy failed", "error", err)
			return result, cli.Transient("%w", err).
				WithHint(fmt.Sprintf("The report was saved to %s.", options.Output))
		}
		result.Copied = true
	}
	return result, nil
}

// outputPath returns explicit unchanged, or a timestamped name inside
// the configured export directory (created if missing).
func outputPath(cfg *config.Config, explicit string, now time.Time) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if err := cfg.EnsureExportDirectory(); err != nil {
		return "", cli.Internal("%w", err)
	}
	return filepath.Join(cfg.Export.Directory, export.FileName(now, cfg.ExportOptions())), nil
}
