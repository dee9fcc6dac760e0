// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package anonymize implements "diagnostics anonymize": show what the
// report anonymizer does to a path or a piece of text.
package anonymize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/anonymize"
)

type params struct {
	Username string `flag:"username" desc:"username to redact (default: the local OS user)"`
}

// Command returns the "anonymize" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "anonymize",
		Summary: "Preview how reports anonymize paths and text",
		Description: `Run arguments through the anonymizer used for report export. Every
invocation uses a fresh random key, so tokens are consistent within one
run and unrelated across runs.`,
		Subcommands: []*cli.Command{
			subcommand("path", "Anonymize file paths segment by segment",
				"diagnostics anonymize path /home/alice/projects/demo/main.go",
				(*anonymize.Anonymizer).Path),
			subcommand("text", "Anonymize free text (paths, addresses, e-mail, domains, username)",
				`diagnostics anonymize text "failed to open /home/alice/a.txt from 10.0.0.5"`,
				(*anonymize.Anonymizer).Text),
		},
	}
}

func subcommand(name, summary, example string, transform func(*anonymize.Anonymizer, string) string) *cli.Command {
	var p params
	return &cli.Command{
		Name:     name,
		Summary:  summary,
		Usage:    "diagnostics anonymize " + name + " [flags] <value>...",
		Examples: []cli.Example{{Command: example}},
		Flags:    func() *pflag.FlagSet { return cli.FlagsFromParams(name, &p) },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("expected at least one value to anonymize")
			}
			username := p.Username
			if username == "" {
				username = anonymize.LocalUsername()
			}
			return Run(os.Stdout, args, username, transform)
		},
	}
}

// Run anonymizes each value with one fresh session and prints one
// result per line.
func Run(w io.Writer, values []string, username string, transform func(*anonymize.Anonymizer, string) string) error {
	anonymizer, err := anonymize.NewRandom(username)
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer anonymizer.Close()
	for _, value := range values {
		if _, err := fmt.Fprintln(w, transform(anonymizer, value)); err != nil {
			return cli.Internal("writing output: %w", err)
		}
	}
	return nil
}
