// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package show implements "diagnostics show": decode a report file,
// check it, and print it.
package show

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/export"
	"github.com/bureau-foundation/diagnostics/lib/report"
	"github.com/bureau-foundation/diagnostics/lib/secret"
)

type params struct {
	Identity    string `flag:"identity,i" desc:"age identity file for encrypted reports"`
	SummaryOnly bool   `flag:"summary" desc:"print metadata and summary without events"`
	Color       string `flag:"color" desc:"auto, always, or never" default:"auto"`
}

// Command returns the "show" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "show",
		Summary: "Decode, validate, and print a report file",
		Description: `Read a report written by "diagnostics record" or the monitor, undoing
encryption and compression, and print it as JSON. CBOR reports are
printed as their JSON equivalent.

The report is checked for internal consistency. Problems are listed on
stderr and the command exits 1.`,
		Usage: "diagnostics show [flags] <report>",
		Examples: []cli.Example{
			{
				Description: "Print a report",
				Command:     "diagnostics show ~/diagnostics/diagnostics_20260101_120000.json",
			},
			{
				Description: "Summarize an encrypted, compressed report",
				Command:     "diagnostics show --summary -i key.txt report.json.zst.age",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("show", &p) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one report path, got %d arguments", len(args))
			}
			color, err := p.colorEnabled(os.Stdout)
			if err != nil {
				return err
			}
			return Show(os.Stdout, os.Stderr, args[0], Options{
				IdentityPath: p.Identity,
				SummaryOnly:  p.SummaryOnly,
				Color:        color,
				Logger:       logger,
			})
		},
	}
}

func (p *params) colorEnabled(stdout *os.File) (bool, error) {
	switch p.Color {
	case "", "auto":
		return cli.IsTerminal(stdout), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, cli.Validation("--color must be auto, always, or never, got %q", p.Color)
}

// Options controls Show.
type Options struct {
	IdentityPath string
	SummaryOnly  bool
	Color        bool
	Logger       *slog.Logger
}

// Show loads path, prints it to stdout, and lists validation problems
// on stderr. An invalid report returns an ExitError with code 1 after
// printing.
func Show(stdout, stderr io.Writer, path string, options Options) error {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var identity *secret.Buffer
	if options.IdentityPath != "" {
		var err error
		identity, err = ReadIdentity(options.IdentityPath)
		if err != nil {
			return err
		}
		defer identity.Close()
	}

	loaded, err := export.Load(path, identity)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.NotFound("%w", err)
		}
		if errors.Is(err, export.ErrSerialization) && identity == nil && strings.Contains(err.Error(), "age-encrypted") {
			return cli.Validation("%w", err).WithHint("Pass the matching identity with --identity.")
		}
		return cli.Internal("%w", err)
	}
	logger.Debug("report loaded",
		"path", path,
		"format", loaded.Format,
		"compression", loaded.Compression,
		"encrypted", loaded.Encrypted,
	)

	var value any = loaded.Report
	if options.SummaryOnly {
		value = struct {
			SchemaVersion string         `json:"schema_version"`
			Metadata      report.Metadata `json:"metadata"`
			Summary       report.Summary  `json:"summary"`
		}{loaded.Report.SchemaVersion, loaded.Report.Metadata, loaded.Report.Summary}
	}
	var rendered bytes.Buffer
	encoder := json.NewEncoder(&rendered)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return cli.Internal("rendering report: %w", err)
	}
	if err := write(stdout, rendered.String(), options.Color); err != nil {
		return cli.Internal("writing output: %w", err)
	}

	if err := report.Validate(loaded.Report); err != nil {
		fmt.Fprintf(stderr, "%s: report is invalid:\n", path)
		for _, problem := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(stderr, "  %s\n", problem)
		}
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// write prints text, syntax-highlighted when color is set. Falls back
// to plain text if highlighting fails.
func write(w io.Writer, text string, color bool) error {
	if color {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, text, "json", "terminal256", "monokai"); err == nil {
			_, err = io.WriteString(w, highlighted.String())
			return err
		}
	}
	_, err := io.WriteString(w, text)
	return err
}

// ReadIdentity reads an age identity file (as written by "diagnostics
// keygen" or age-keygen) into a protected buffer. Comment and blank
// lines are skipped; the first remaining line is the key.
func ReadIdentity(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cli.NotFound("identity file: %w", err)
		}
		return nil, cli.Internal("reading identity file: %w", err)
	}
	defer clear(data)

	for line := range bytes.SplitSeq(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key := make([]byte, len(line))
		copy(key, line)
		buffer, err := secret.NewFromBytes(key)
		if err != nil {
			return nil, cli.Internal("protecting identity: %w", err)
		}
		return buffer, nil
	}
	return nil, cli.Validation("identity file %s contains no key", path)
}
