// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the diagnostics CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	anonymizecmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/anonymize"
	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	keygencmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/keygen"
	monitorcmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/monitor"
	recordcmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/record"
	showcmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/show"
	sysinfocmd "github.com/bureau-foundation/diagnostics/cmd/diagnostics/sysinfo"
	"github.com/bureau-foundation/diagnostics/lib/version"
)

// Root builds and returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "diagnostics",
		Description: `diagnostics: in-process diagnostics collection and anonymized reports.

Collect user actions, state changes, timed operations, warnings,
errors, and periodic resource samples into a bounded buffer, then
export them as a self-contained report with identifying strings
replaced by per-session hashes.`,
		Subcommands: []*cli.Command{
			recordcmd.Command(),
			monitorcmd.Command(),
			showcmd.Command(),
			sysinfocmd.Command(),
			anonymizecmd.Command(),
			keygencmd.Command(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Record for 30 seconds and write a report",
				Command:     "diagnostics record -d 30s",
			},
			{
				Description: "Watch collection live",
				Command:     "diagnostics monitor",
			},
			{
				Description: "Inspect a report",
				Command:     "diagnostics show --summary ~/diagnostics/diagnostics_20260101_120000.json",
			},
		},
	}
}

func versionCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if done, err := params.EmitJSON(version.Current()); done {
				return err
			}
			fmt.Printf("diagnostics %s\n", version.Full())
			return nil
		},
	}
}
