// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxOSC52Size bounds the text OSC52 will send. Terminals silently
// truncate or drop larger sequences, which would leave a partial
// report on the clipboard.
const MaxOSC52Size = 1 << 20

// OSC52 copies by writing an OSC 52 escape sequence to the terminal.
//
// The sequence is terminated with BEL rather than ST: a single byte
// survives layered terminals (SSH, tmux, screen) intact. Inside tmux the
// sequence is sent twice, once wrapped in a DCS passthrough (for
// allow-passthrough on) and once bare (for set-clipboard on).
type OSC52 struct {
	// Open returns the terminal to write to. Writing to /dev/tty
	// bypasses any TUI that owns stdout; the sequence has no visible
	// effect on screen.
	Open func() (io.WriteCloser, error)

	// Getenv reads TMUX and TERM for tmux detection.
	Getenv func(string) string
}

// NewOSC52 returns an OSC52 sink writing to /dev/tty.
func NewOSC52() OSC52 {
	return OSC52{
		Open: func() (io.WriteCloser, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		Getenv: os.Getenv,
	}
}

func (o OSC52) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(text) > MaxOSC52Size {
		return fmt.Errorf("%w: %d bytes exceeds the OSC 52 limit of %d", ErrUnavailable, len(text), MaxOSC52Size)
	}
	terminal, err := o.Open()
	if err != nil {
		return fmt.Errorf("%w: opening terminal: %v", ErrUnavailable, err)
	}
	defer terminal.Close()

	sequence := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07"
	if o.inTmux() {
		if _, err := io.WriteString(terminal, "\x1bPtmux;\x1b"+sequence+"\x1b\\"); err != nil {
			return fmt.Errorf("writing OSC 52 passthrough: %w", err)
		}
	}
	if _, err := io.WriteString(terminal, sequence); err != nil {
		return fmt.Errorf("writing OSC 52: %w", err)
	}
	return nil
}

func (o OSC52) inTmux() bool {
	term := o.Getenv("TERM")
	return o.Getenv("TMUX") != "" ||
		strings.HasPrefix(term, "tmux") ||
		strings.HasPrefix(term, "screen")
}
