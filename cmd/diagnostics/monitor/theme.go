// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the monitor's palette, as ANSI 256-color codes.
type Theme struct {
	Title      lipgloss.Color
	Running    lipgloss.Color
	Stopped    lipgloss.Color
	Counter    lipgloss.Color
	FaintText  lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	StatusBack lipgloss.Color
}

// DefaultTheme is used unless a test substitutes its own.
var DefaultTheme = Theme{
	Title:      lipgloss.Color("75"),
	Running:    lipgloss.Color("78"),
	Stopped:    lipgloss.Color("203"),
	Counter:    lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Warning:    lipgloss.Color("214"),
	Error:      lipgloss.Color("196"),
	Success:    lipgloss.Color("114"),
	StatusBack: lipgloss.Color("236"),
}

type styles struct {
	title      lipgloss.Style
	running    lipgloss.Style
	stopped    lipgloss.Style
	counter    lipgloss.Style
	faint      lipgloss.Style
	warning    lipgloss.Style
	failure    lipgloss.Style
	success    lipgloss.Style
	statusBar  lipgloss.Style
	helpKey    lipgloss.Style
	helpAction lipgloss.Style
}

// newStyles builds styles on a renderer pinned to ANSI256. The monitor
// always draws to a terminal, and a fixed profile keeps output stable
// when tests render without one.
func newStyles(output io.Writer, theme Theme) styles {
	renderer := lipgloss.NewRenderer(output, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)
	return styles{
		title:      renderer.NewStyle().Bold(true).Foreground(theme.Title),
		running:    renderer.NewStyle().Bold(true).Foreground(theme.Running),
		stopped:    renderer.NewStyle().Bold(true).Foreground(theme.Stopped),
		counter:    renderer.NewStyle().Foreground(theme.Counter),
		faint:      renderer.NewStyle().Foreground(theme.FaintText),
		warning:    renderer.NewStyle().Foreground(theme.Warning),
		failure:    renderer.NewStyle().Foreground(theme.Error),
		success:    renderer.NewStyle().Foreground(theme.Success),
		statusBar:  renderer.NewStyle().Background(theme.StatusBack).Padding(0, 1),
		helpKey:    renderer.NewStyle().Bold(true).Foreground(theme.Counter),
		helpAction: renderer.NewStyle().Foreground(theme.FaintText),
	}
}
