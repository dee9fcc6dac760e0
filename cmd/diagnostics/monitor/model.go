// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/diagnostics/lib/collector"
	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/report"
)

// Collector is the part of *collector.Collector the monitor drives.
type Collector interface {
	Start() error
	Stop() error
	Status() collector.Status
	Snapshot(ctx context.Context) ([]event.Event, error)
	LogAction(kind, detail string)
	LogOperation(kind string, duration time.Duration, outcome event.Outcome)
	LogWarning(message string)
	ExportReport(ctx context.Context) (*report.Report, error)
}

// Exporter writes a built report and returns where it went.
type Exporter func(r *report.Report) (string, error)

// Copier puts a built report on the clipboard.
type Copier func(ctx context.Context, r *report.Report) error

// Config wires a Model to its collaborators.
type Config struct {
	Collector Collector
	Export    Exporter
	Copy      Copier

	// RefreshInterval is how often the status bar and event list are
	// refreshed. Zero selects one second.
	RefreshInterval time.Duration

	// Output anchors the lipgloss renderer. Defaults to io.Discard.
	Output io.Writer
}

// recentEvents is how many of the newest events the list shows.
const recentEvents = 12

type refreshMsg struct {
	status collector.Status
	recent []event.Event
	err    error
}

type tickMsg time.Time

type resultMsg struct {
	text string
	err  error
}

// Model is the bubbletea model for "diagnostics monitor".
type Model struct {
	collector Collector
	export    Exporter
	copy      Copier
	interval  time.Duration

	keys   KeyMap
	styles styles

	status collector.Status
	recent []event.Event
	latest *event.ResourceSnapshot

	message    string
	messageErr bool
	busy       bool

	width    int
	quitting bool
}

// NewModel creates a monitor model. The collector is expected to be
// running already.
func NewModel(config Config) Model {
	interval := config.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}
	output := config.Output
	if output == nil {
		output = io.Discard
	}
	return Model{
		collector: config.Collector,
		export:    config.Export,
		copy:      config.Copy,
		interval:  interval,
		keys:      DefaultKeyMap,
		styles:    newStyles(output, DefaultTheme),
		status:    config.Collector.Status(),
		width:     80,
	}
}

// Init starts the refresh loop.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.refresh(), model.tick())
}

func (model Model) tick() tea.Cmd {
	return tea.Tick(model.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (model Model) refresh() tea.Cmd {
	collector := model.collector
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		events, err := collector.Snapshot(ctx)
		if len(events) > recentEvents {
			events = events[len(events)-recentEvents:]
		}
		return refreshMsg{status: collector.Status(), recent: events, err: err}
	}
}

// Update handles key presses, refresh results, and window resizes.
// Every key press is recorded as a user_action event before it is
// acted on.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		model.collector.LogAction("key", message.String())
		return model.handleKey(message)

	case tickMsg:
		return model, tea.Batch(model.refresh(), model.tick())

	case refreshMsg:
		model.status = message.status
		if message.err == nil {
			model.recent = message.recent
			for index := len(message.recent) - 1; index >= 0; index-- {
				if snapshot, ok := message.recent[index].Payload.(event.ResourceSnapshot); ok {
					model.latest = &snapshot
					break
				}
			}
		}
		return model, nil

	case resultMsg:
		model.busy = false
		if message.err != nil {
			model.message = message.err.Error()
			model.messageErr = true
		} else {
			model.message = message.text
			model.messageErr = false
		}
		return model, model.refresh()

	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		model.quitting = true
		return model, tea.Quit

	case key.Matches(message, model.keys.Export):
		if model.busy {
			return model, nil
		}
		model.busy = true
		model.message = "exporting..."
		model.messageErr = false
		return model, model.exportFile()

	case key.Matches(message, model.keys.Clipboard):
		if model.busy {
			return model, nil
		}
		model.busy = true
		model.message = "copying..."
		model.messageErr = false
		return model, model.copyReport()

	case key.Matches(message, model.keys.Pause):
		return model, model.togglePause()

	case key.Matches(message, model.keys.Operation):
		// A synthetic timed operation, for exercising the pipeline.
		duration := time.Duration(rand.IntN(900)+100) * time.Millisecond
		model.collector.LogOperation("monitor_probe", duration, event.OutcomeSuccess)
		return model, model.refresh()

	case key.Matches(message, model.keys.Warning):
		model.collector.LogWarning("warning raised from the monitor")
		return model, model.refresh()
	}
	return model, model.refresh()
}

func (model Model) exportFile() tea.Cmd {
	collector, export := model.collector, model.export
	return func() tea.Msg {
		built, err := collector.ExportReport(context.Background())
		if err != nil {
			return resultMsg{err: fmt.Errorf("export failed: %w", err)}
		}
		path, err := export(built)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: fmt.Sprintf("exported %d events to %s", built.Metadata.EventCount, path)}
	}
}

func (model Model) copyReport() tea.Cmd {
	collector, copier := model.collector, model.copy
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		built, err := collector.ExportReport(ctx)
		if err != nil {
			return resultMsg{err: fmt.Errorf("export failed: %w", err)}
		}
		if err := copier(ctx, built); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{text: fmt.Sprintf("copied %d events to the clipboard", built.Metadata.EventCount)}
	}
}

func (model Model) togglePause() tea.Cmd {
	collector, running := model.collector, model.status.Running
	return func() tea.Msg {
		if running {
			if err := collector.Stop(); err != nil {
				return resultMsg{err: fmt.Errorf("stopping collector: %w", err)}
			}
			return resultMsg{text: "collection paused; export still includes the stopped run"}
		}
		if err := collector.Start(); err != nil {
			return resultMsg{err: fmt.Errorf("starting collector: %w", err)}
		}
		return resultMsg{text: "collection restarted with an empty buffer"}
	}
}

// View renders the monitor.
func (model Model) View() string {
	if model.quitting {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(model.styles.title.Render("diagnostics monitor"))
	builder.WriteString("\n\n")

	builder.WriteString(model.statusLine())
	builder.WriteString("\n")
	builder.WriteString(model.resourceLine())
	builder.WriteString("\n\n")

	if len(model.recent) == 0 {
		builder.WriteString(model.styles.faint.Render("  no events yet"))
		builder.WriteString("\n")
	}
	for _, recorded := range model.recent {
		builder.WriteString(model.fit("  " + model.eventLine(recorded)))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	if model.message != "" {
		style := model.styles.success
		if model.messageErr {
			style = model.styles.failure
		}
		builder.WriteString(model.fit(style.Render(model.message)))
		builder.WriteString("\n")
	}
	builder.WriteString(model.fit(model.helpLine()))
	return builder.String()
}

func (model Model) statusLine() string {
	state := model.styles.running.Render("● recording")
	if !model.status.Running {
		state = model.styles.stopped.Render("○ stopped")
	}
	counters := fmt.Sprintf("events %d/%d  dropped %d  evicted %d  sampler dropped %d",
		model.status.EventCount, model.status.BufferCapacity,
		model.status.DroppedCount, model.status.EvictedCount, model.status.SamplerDropped)
	return model.fit(model.styles.statusBar.Render(state + "  " + model.styles.counter.Render(counters)))
}

func (model Model) resourceLine() string {
	if model.latest == nil {
		return model.styles.faint.Render("  waiting for the first resource sample")
	}
	return model.fit(model.styles.counter.Render("  " + event.Describe(*model.latest)))
}

func (model Model) eventLine(recorded event.Event) string {
	line := recorded.String()
	switch recorded.Type() {
	case event.TypeWarning:
		return model.styles.warning.Render(line)
	case event.TypeError:
		return model.styles.failure.Render(line)
	case event.TypeResourceSnapshot:
		return model.styles.faint.Render(line)
	}
	return line
}

func (model Model) helpLine() string {
	parts := make([]string, 0, len(model.keys.ShortHelp()))
	for _, binding := range model.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, model.styles.helpKey.Render(help.Key)+" "+model.styles.helpAction.Render(help.Desc))
	}
	return strings.Join(parts, "  ")
}

// fit truncates a styled line to the window width without splitting
// escape sequences.
func (model Model) fit(line string) string {
	if model.width <= 0 {
		return line
	}
	return ansi.Truncate(line, model.width, "…")
}
