// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/anonymize"
	"github.com/bureau-foundation/diagnostics/lib/clock"
	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
	"github.com/bureau-foundation/diagnostics/lib/report"
	"github.com/bureau-foundation/diagnostics/lib/ring"
	"github.com/bureau-foundation/diagnostics/lib/sampler"
	"github.com/bureau-foundation/diagnostics/lib/version"
)

const (
	DefaultChannelCapacity = 1024
	DefaultSendTimeout     = 5 * time.Millisecond
)

var (
	// ErrChannelFull means an event was dropped because the channel
	// stayed full for the whole send timeout. Producers never see it;
	// it is counted in Status.DroppedCount.
	ErrChannelFull = errors.New("event channel full")

	// ErrNotRunning means the collector has not been started, or has
	// been stopped or has failed.
	ErrNotRunning = errors.New("collector not running")

	// ErrCollectorFailed means the collector goroutine panicked.
	ErrCollectorFailed = errors.New("collector goroutine failed")
)

// Config holds the parameters for New. The zero value is a usable
// production configuration.
type Config struct {
	// Capacity of the ring buffer, clamped with ring.ClampCapacity.
	// Zero selects ring.DefaultCapacity.
	Capacity int

	// ChannelCapacity bounds the queue between producers and the
	// collector goroutine. Zero selects DefaultChannelCapacity.
	ChannelCapacity int

	// SendTimeout is how long a producer waits on a full channel before
	// dropping its event. Zero selects DefaultSendTimeout; a negative
	// value never waits.
	SendTimeout time.Duration

	// SampleInterval is passed to the sampler (see
	// sampler.ClampInterval).
	SampleInterval time.Duration

	// Source provides host readings. Defaults to hwinfo.NewHostSource().
	Source hwinfo.Source

	// DisableSampling runs the collector without the sampler goroutine.
	DisableSampling bool

	// Prober captures static system information at export time.
	// Defaults to hwinfo.Probe.
	Prober func(context.Context) hwinfo.SystemInfo

	// Clock provides timestamps and send timeouts. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger receives lifecycle and failure messages. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// Status is a point-in-time view of the collector. Counters cover the
// current (or most recent) run.
type Status struct {
	Running        bool      `json:"running"`
	EventCount     int       `json:"event_count"`
	BufferCapacity int       `json:"buffer_capacity"`
	DroppedCount   uint64    `json:"dropped_count"`
	EvictedCount   uint64    `json:"evicted_count"`
	SamplerDropped uint64    `json:"sampler_dropped"`
	StartedAt      time.Time `json:"started_at,omitzero"`
}

// Collector is safe for concurrent use. Create one with New.
type Collector struct {
	capacity        int
	channelCapacity int
	sendTimeout     time.Duration
	sampleInterval  time.Duration
	source          hwinfo.Source
	sampling        bool
	prober          func(context.Context) hwinfo.SystemInfo
	clock           clock.Clock
	logger          *slog.Logger

	// lifecycle serializes Start, Stop, and ExportReport. Producers
	// never take it.
	lifecycle sync.Mutex

	current atomic.Pointer[session]
	running atomic.Bool

	eventCount  atomic.Int64
	evicted     atomic.Uint64
	dropped     atomic.Uint64
	failures    atomic.Uint64
	lastFailure atomic.Pointer[error]

	// storeHook, when set, runs on the collector goroutine before each
	// event is stored.
	storeHook func(event.Event)
}

// session is one Start/Stop run. Everything except ring is safe to
// read from any goroutine; ring belongs to the collector goroutine
// until done is closed.
type session struct {
	events   chan event.Event
	requests chan chan []event.Event
	start    time.Time
	cancel   context.CancelFunc

	// done closes when the collector goroutine exits, samplerDone when
	// the sampler goroutine exits.
	done        chan struct{}
	samplerDone chan struct{}

	ring    *ring.Ring[event.Event]
	sampler *sampler.Sampler

	stoppedAt atomic.Pointer[time.Time]

	// joined is guarded by Collector.lifecycle.
	joined bool
}

// New returns a stopped Collector.
func New(config Config) *Collector {
	collector := &Collector{
		capacity:        ring.ClampCapacity(config.Capacity),
		channelCapacity: config.ChannelCapacity,
		sendTimeout:     config.SendTimeout,
		sampleInterval:  sampler.ClampInterval(config.SampleInterval),
		source:          config.Source,
		sampling:        !config.DisableSampling,
		prober:          config.Prober,
		clock:           config.Clock,
		logger:          config.Logger,
	}
	if config.Capacity == 0 {
		collector.capacity = ring.DefaultCapacity
	}
	if collector.channelCapacity <= 0 {
		collector.channelCapacity = DefaultChannelCapacity
	}
	if collector.sendTimeout == 0 {
		collector.sendTimeout = DefaultSendTimeout
	}
	if collector.source == nil {
		collector.source = hwinfo.NewHostSource()
	}
	if collector.prober == nil {
		collector.prober = hwinfo.Probe
	}
	if collector.clock == nil {
		collector.clock = clock.Real()
	}
	if collector.logger == nil {
		collector.logger = slog.New(slog.DiscardHandler)
	}
	return collector
}

// Start begins a run: a fresh ring, a fresh anonymization session, the
// collector goroutine, and (unless disabled) the sampler. Starting a
// running collector does nothing.
func (c *Collector) Start() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.running.Load() {
		return nil
	}
	if previous := c.current.Load(); previous != nil && !previous.joined {
		// The previous run failed without Stop.
		c.joinLocked(previous)
	}

	if _, err := anonymize.Begin(); err != nil {
		return fmt.Errorf("starting anonymization session: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &session{
		events:      make(chan event.Event, c.channelCapacity),
		requests:    make(chan chan []event.Event),
		start:       c.clock.Now(),
		cancel:      cancel,
		done:        make(chan struct{}),
		samplerDone: make(chan struct{}),
		ring:        ring.New[event.Event](c.capacity),
	}

	if c.sampling {
		run.sampler = sampler.New(sampler.Config{
			Source:   c.source,
			Interval: c.sampleInterval,
			Clock:    c.clock,
			Logger:   c.logger,
			Emit: func(payload event.Payload) bool {
				return c.enqueue(run, payload, false) == nil
			},
		})
	}

	c.eventCount.Store(0)
	c.evicted.Store(0)
	c.dropped.Store(0)
	c.lastFailure.Store(nil)
	c.current.Store(run)
	c.running.Store(true)

	go c.collect(ctx, run)
	if run.sampler != nil {
		go func() {
			defer close(run.samplerDone)
			if err := run.sampler.Run(ctx); err != nil {
				c.logger.Error("resource sampler stopped", "error", err)
			}
		}()
	} else {
		close(run.samplerDone)
	}

	c.logger.Info("diagnostics collector started",
		"capacity", c.capacity,
		"channel_capacity", c.channelCapacity,
		"sampling", c.sampling,
		"sample_interval", c.sampleInterval,
	)
	return nil
}

// Stop ends the run: it cancels both goroutines, waits for them, and
// ends the anonymization session. Events already queued are stored
// before the collector goroutine exits. The ring stays readable through
// Snapshot and ExportReport until the next Start. Stopping a stopped
// collector does nothing.
func (c *Collector) Stop() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	run := c.current.Load()
	if run == nil || run.joined {
		return nil
	}
	c.joinLocked(run)
	c.logger.Info("diagnostics collector stopped",
		"events", c.eventCount.Load(),
		"dropped", c.dropped.Load(),
		"evicted", c.evicted.Load(),
	)
	return nil
}

func (c *Collector) joinLocked(run *session) {
	c.running.Store(false)
	run.cancel()
	<-run.done
	<-run.samplerDone
	stoppedAt := c.clock.Now()
	run.stoppedAt.Store(&stoppedAt)
	run.joined = true
	if err := anonymize.End(); err != nil {
		c.logger.Warn("ending anonymization session", "error", err)
	}
}

// LogEvent records payload with the current run-relative timestamp. It
// waits at most the send timeout for channel space and otherwise drops
// the event.
func (c *Collector) LogEvent(payload event.Payload) {
	if payload == nil {
		c.dropped.Add(1)
		return
	}
	run := c.current.Load()
	if err := c.enqueue(run, payload, true); err != nil {
		c.dropped.Add(1)
	}
}

// LogAction records a UserAction.
func (c *Collector) LogAction(kind, detail string) {
	c.LogEvent(event.UserAction{Kind: kind, Context: detail})
}

// LogState records an AppState transition.
func (c *Collector) LogState(kind, detail string) {
	c.LogEvent(event.AppState{Kind: kind, Context: detail})
}

// LogOperation records a completed operation.
func (c *Collector) LogOperation(kind string, duration time.Duration, outcome event.Outcome) {
	c.LogEvent(event.Operation{Kind: kind, Duration: duration, Outcome: outcome})
}

// LogWarning records a Warning.
func (c *Collector) LogWarning(message string) {
	c.LogEvent(event.Warning{Message: message})
}

// LogError records an Error.
func (c *Collector) LogError(message string) {
	c.LogEvent(event.Error{Message: message})
}

// enqueue stamps payload and sends it to run's channel. With wait set
// it blocks up to the send timeout for space.
func (c *Collector) enqueue(run *session, payload event.Payload, wait bool) error {
	if run == nil || !c.running.Load() {
		return ErrNotRunning
	}
	stamped := event.Event{Timestamp: c.clock.Since(run.start), Payload: payload}
	select {
	case run.events <- stamped:
		return nil
	default:
	}
	if !wait || c.sendTimeout < 0 {
		return ErrChannelFull
	}
	select {
	case run.events <- stamped:
		return nil
	case <-c.clock.After(c.sendTimeout):
		return ErrChannelFull
	}
}

// collect is the collector goroutine.
func (c *Collector) collect(ctx context.Context, run *session) {
	defer close(run.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			c.fail(recovered)
		}
	}()

	for {
		// Snapshot requests first, so a busy channel cannot starve an
		// export.
		select {
		case reply := <-run.requests:
			c.drain(run)
			reply <- run.ring.Snapshot()
			continue
		default:
		}

		select {
		case <-ctx.Done():
			c.drain(run)
			return
		case reply := <-run.requests:
			c.drain(run)
			reply <- run.ring.Snapshot()
		case stamped := <-run.events:
			c.store(run, stamped)
		}
	}
}

// drain stores the events queued at the time of the call. Events sent
// during the drain wait for the next loop iteration.
func (c *Collector) drain(run *session) {
	for pending := len(run.events); pending > 0; pending-- {
		select {
		case stamped := <-run.events:
			c.store(run, stamped)
		default:
			return
		}
	}
}

func (c *Collector) store(run *session, stamped event.Event) {
	if c.storeHook != nil {
		c.storeHook(stamped)
	}
	run.ring.Push(stamped)
	c.eventCount.Store(int64(run.ring.Len()))
	c.evicted.Store(run.ring.Evicted())
}

func (c *Collector) fail(recovered any) {
	c.running.Store(false)
	c.failures.Add(1)
	failure := fmt.Errorf("%w: %v", ErrCollectorFailed, recovered)
	c.lastFailure.Store(&failure)
	c.logger.Error("diagnostics collector failed", "panic", recovered, "events", c.eventCount.Load())
}

// Snapshot returns a copy of the ring, oldest first, including every
// event queued before the call. After Stop (or a failure) it returns
// what the last run stored. Before the first Start it returns nil.
func (c *Collector) Snapshot(ctx context.Context) ([]event.Event, error) {
	run := c.current.Load()
	if run == nil {
		return nil, nil
	}
	reply := make(chan []event.Event, 1)
	select {
	case run.requests <- reply:
	case <-run.done:
		return run.ring.Snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case events := <-reply:
		return events, nil
	case <-run.done:
		// The goroutine failed while serving the request.
		return run.ring.Snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status reports counters for the current run without waiting on the
// collector goroutine.
func (c *Collector) Status() Status {
	status := Status{
		Running:        c.running.Load(),
		EventCount:     int(c.eventCount.Load()),
		BufferCapacity: c.capacity,
		DroppedCount:   c.dropped.Load(),
		EvictedCount:   c.evicted.Load(),
	}
	if run := c.current.Load(); run != nil {
		status.StartedAt = run.start
		if run.sampler != nil {
			status.SamplerDropped = run.sampler.Dropped()
		}
	}
	return status
}

// LastFailure returns the error from the most recent collector
// goroutine failure in the current run, or nil.
func (c *Collector) LastFailure() error {
	if failure := c.lastFailure.Load(); failure != nil {
		return *failure
	}
	return nil
}

// Failures returns how many runs ended in a collector goroutine
// failure over the Collector's lifetime.
func (c *Collector) Failures() uint64 { return c.failures.Load() }

// ExportReport snapshots the ring, probes the system, and builds an
// anonymized report. While running it uses the run's anonymization
// session; after Stop it uses a one-off key that is wiped on return.
func (c *Collector) ExportReport(ctx context.Context) (built *report.Report, err error) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	defer func() {
		if recovered := recover(); recovered != nil {
			c.logger.Error("building report panicked", "panic", recovered)
			err = fmt.Errorf("building report: panic: %v", recovered)
		}
	}()

	run := c.current.Load()
	if run == nil {
		return nil, ErrNotRunning
	}
	events, err := c.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshotting events: %w", err)
	}
	info := c.prober(ctx)

	duration := c.clock.Since(run.start)
	if stoppedAt := run.stoppedAt.Load(); stoppedAt != nil {
		duration = stoppedAt.Sub(run.start)
	}

	anonymizer := anonymize.Current()
	if anonymizer == nil {
		anonymizer, err = anonymize.NewRandom(anonymize.LocalUsername())
		if err != nil {
			return nil, fmt.Errorf("creating export anonymizer: %w", err)
		}
		defer anonymizer.Close()
	}

	builder := report.NewBuilder(report.BuilderConfig{
		Anonymizer: anonymizer,
		Generator:  version.Generator(),
		Clock:      c.clock,
	})
	built = builder.Build(events, info, duration)
	c.logger.Info("diagnostics report built",
		"report_id", built.Metadata.ReportID,
		"events", built.Metadata.EventCount,
	)
	return built, nil
}
