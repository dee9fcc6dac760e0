// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysinfo implements "diagnostics sysinfo": print the static
// system information that every report carries.
package sysinfo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
)

type params struct {
	cli.JSONOutput
}

// Command returns the "sysinfo" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "sysinfo",
		Summary: "Show the system information included in reports",
		Description: `Probe the host the same way a report export does and print the result.
System information is never anonymized, so this is exactly what a
report will disclose about the machine.`,
		Usage: "diagnostics sysinfo [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("sysinfo", &p) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			info := hwinfo.Probe(ctx)
			logger.Debug("system probed", "os", info.OS, "cores", info.CPUCores)
			if done, err := p.EmitJSON(info); done {
				return err
			}
			return Print(os.Stdout, info)
		},
	}
}

// Print writes info as an aligned table.
func Print(w io.Writer, info hwinfo.SystemInfo) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"OS", info.OS},
		{"Name", info.OSName},
		{"Version", info.OSVersion},
		{"Kernel", info.KernelVersion},
		{"Architecture", info.CPUArch},
		{"CPU", info.CPUBrand},
		{"Cores", fmt.Sprint(info.CPUCores)},
		{"RAM", fmt.Sprintf("%d MB", info.RAMTotalMB)},
		{"Disk", string(info.DiskType)},
	}
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s:\t%s\n", row.label, value)
	}
	return tw.Flush()
}
