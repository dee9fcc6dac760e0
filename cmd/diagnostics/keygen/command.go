// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keygen implements "diagnostics keygen": create an age
// keypair for encrypted report export.
package keygen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/diagnostics/cmd/diagnostics/cli"
	"github.com/bureau-foundation/diagnostics/lib/sealed"
)

type params struct {
	Output string `flag:"output,o" desc:"write the identity to this file (created with mode 0600, never overwritten)"`
}

// Command returns the "keygen" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age keypair for encrypted reports",
		Description: `Generate an age X25519 identity. The public key (age1...) goes into
export.recipients or --recipient; the identity decrypts reports with
"diagnostics show --identity". The file format is the one age-keygen
writes, so age itself can also decrypt the reports.`,
		Usage: "diagnostics keygen [flags]",
		Examples: []cli.Example{
			{
				Description: "Create an identity file and print the public key",
				Command:     "diagnostics keygen -o ~/.config/diagnostics/identity.txt",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("keygen", &p) },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer keypair.Close()

			if p.Output == "" {
				return WriteIdentity(os.Stdout, keypair, time.Now())
			}
			if err := writeFile(p.Output, keypair); err != nil {
				return err
			}
			logger.Info("identity written", "path", p.Output)
			fmt.Fprintf(os.Stderr, "Public key: %s\n", keypair.PublicKey)
			return nil
		},
	}
}

// WriteIdentity writes keypair in age-keygen's identity file format.
func WriteIdentity(w io.Writer, keypair *sealed.Keypair, created time.Time) error {
	_, err := fmt.Fprintf(w, "# created: %s\n# public key: %s\n%s\n",
		created.UTC().Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey.Bytes())
	return err
}

func writeFile(path string, keypair *sealed.Keypair) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return cli.Validation("%s already exists", path).WithHint("Choose another path; identities are never overwritten.")
		}
		return cli.Internal("creating identity file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = cli.Internal("closing identity file: %w", closeErr)
		}
	}()
	if err := WriteIdentity(file, keypair, time.Now()); err != nil {
		return cli.Internal("writing identity file: %w", err)
	}
	return nil
}
