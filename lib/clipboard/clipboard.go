// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clipboard puts exported reports on the user's clipboard.
//
// Two mechanisms are available. [System] uses the platform clipboard
// (pbcopy, xclip/xsel/wl-copy, or the Windows API, via
// atotto/clipboard). [OSC52] writes the OSC 52 escape sequence to the
// controlling terminal, which works over SSH and inside tmux where no
// system clipboard is reachable. [New] with [ModeAuto] tries the system
// clipboard and falls back to OSC 52.
//
// A Sink is called once per copy request; failures are returned to the
// caller and never retried.
package clipboard

import (
	"context"
	"errors"
	"fmt"
)

// Sink accepts text for the clipboard.
type Sink interface {
	Copy(ctx context.Context, text string) error
}

// Mode selects a Sink implementation.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeSystem Mode = "system"
	ModeOSC52  Mode = "osc52"
)

// ErrUnavailable means no clipboard mechanism could be used.
var ErrUnavailable = errors.New("clipboard unavailable")

// ParseMode validates a mode name. The empty string selects ModeAuto.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeSystem, ModeOSC52:
		return Mode(name), nil
	}
	return "", fmt.Errorf("unknown clipboard mode %q (want auto, system, or osc52)", name)
}

// New returns the Sink for mode.
func New(mode Mode) (Sink, error) {
	switch mode {
	case ModeAuto, "":
		return Fallback{System{}, NewOSC52()}, nil
	case ModeSystem:
		return System{}, nil
	case ModeOSC52:
		return NewOSC52(), nil
	}
	return nil, fmt.Errorf("unknown clipboard mode %q", mode)
}

// Fallback tries each sink in order and stops at the first success.
type Fallback []Sink

func (f Fallback) Copy(ctx context.Context, text string) error {
	var failures []error
	for _, sink := range f {
		err := sink.Copy(ctx, text)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return ErrUnavailable
	}
	return errors.Join(failures...)
}
