// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/anonymize"
	"github.com/bureau-foundation/diagnostics/lib/clock"
	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
	"github.com/bureau-foundation/diagnostics/lib/testutil"
)

// Collector tests share the process-wide anonymization session, so
// they do not run in parallel.

var epoch = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

var testSystem = hwinfo.SystemInfo{OS: "linux", CPUArch: "amd64", CPUCores: 2, DiskType: hwinfo.DiskUnknown}

func testProber(context.Context) hwinfo.SystemInfo { return testSystem }

// newTestCollector returns a collector without a sampler that is
// stopped at the end of the test.
func newTestCollector(t *testing.T, config Config) *Collector {
	t.Helper()
	config.DisableSampling = config.Source == nil
	if config.Prober == nil {
		config.Prober = testProber
	}
	collector := New(config)
	t.Cleanup(func() { collector.Stop() })
	return collector
}

func start(t *testing.T, collector *Collector) {
	t.Helper()
	if err := collector.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func snapshot(t *testing.T, collector *Collector) []event.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := collector.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return events
}

func TestNewDefaults(t *testing.T) {
	collector := New(Config{})
	status := collector.Status()
	if status.Running || status.BufferCapacity != 10_000 || !status.StartedAt.IsZero() {
		t.Errorf("Status = %+v", status)
	}
	if collector.channelCapacity != DefaultChannelCapacity || collector.sendTimeout != DefaultSendTimeout {
		t.Errorf("channel %d, timeout %v", collector.channelCapacity, collector.sendTimeout)
	}
	if events, err := collector.Snapshot(context.Background()); err != nil || events != nil {
		t.Errorf("Snapshot before Start = %v, %v", events, err)
	}
	if _, err := collector.ExportReport(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ExportReport before Start = %v, want ErrNotRunning", err)
	}
}

func TestLogBeforeStartIsDropped(t *testing.T) {
	collector := newTestCollector(t, Config{})
	collector.LogAction("click", "")
	collector.LogEvent(nil)
	if dropped := collector.Status().DroppedCount; dropped != 2 {
		t.Errorf("DroppedCount = %d, want 2", dropped)
	}
}

func TestTimestampsAreRunRelative(t *testing.T) {
	fake := clock.Fake(epoch)
	collector := newTestCollector(t, Config{Clock: fake})
	start(t, collector)

	collector.LogState("startup", "")
	fake.Advance(1500 * time.Millisecond)
	collector.LogAction("open", "/tmp/a.txt")
	fake.Advance(time.Second)
	collector.LogOperation("decode", 20*time.Millisecond, event.OutcomeSuccess)

	events := snapshot(t, collector)
	want := []time.Duration{0, 1500 * time.Millisecond, 2500 * time.Millisecond}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for index, e := range events {
		if e.Timestamp != want[index] {
			t.Errorf("event %d timestamp = %v, want %v", index, e.Timestamp, want[index])
		}
	}
	if got := collector.Status().StartedAt; !got.Equal(epoch) {
		t.Errorf("StartedAt = %v, want %v", got, epoch)
	}
}

func TestHelpersProduceTypedPayloads(t *testing.T) {
	collector := newTestCollector(t, Config{})
	start(t, collector)
	collector.LogAction("click", "button")
	collector.LogState("idle", "")
	collector.LogOperation("save", time.Second, event.OutcomeFailure)
	collector.LogWarning("disk nearly full")
	collector.LogError("save failed")

	var types []event.Type
	for _, e := range snapshot(t, collector) {
		types = append(types, e.Type())
	}
	want := []event.Type{event.TypeUserAction, event.TypeAppState, event.TypeOperation, event.TypeWarning, event.TypeError}
	if !slices.Equal(types, want) {
		t.Errorf("types = %v, want %v", types, want)
	}
}

func TestCapacityScenario(t *testing.T) {
	collector := newTestCollector(t, Config{Capacity: 100})
	start(t, collector)
	for index := range 150 {
		collector.LogAction("click", string(rune('a'+index%26)))
	}

	built, err := collector.ExportReport(context.Background())
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if built.Metadata.EventCount != 100 || len(built.Events) != 100 {
		t.Errorf("event_count = %d, events = %d, want 100", built.Metadata.EventCount, len(built.Events))
	}
	if got := built.Summary.EventCounts[event.TypeUserAction]; got != 100 {
		t.Errorf("summary user_action = %d, want 100", got)
	}
	status := collector.Status()
	if status.EventCount != 100 || status.EvictedCount != 50 || status.DroppedCount != 0 {
		t.Errorf("Status = %+v", status)
	}
	if built.SystemInfo != testSystem {
		t.Errorf("SystemInfo = %+v", built.SystemInfo)
	}
	if !strings.HasPrefix(built.Metadata.Generator, "bureau-diagnostics/") {
		t.Errorf("Generator = %q", built.Metadata.Generator)
	}
}

func TestProducersNeverBlockOnSaturatedChannel(t *testing.T) {
	release := make(chan struct{})
	var entered atomic.Bool
	collector := newTestCollector(t, Config{ChannelCapacity: 1, SendTimeout: time.Millisecond})
	collector.storeHook = func(event.Event) {
		entered.Store(true)
		<-release
	}
	start(t, collector)
	// Registered after newTestCollector's cleanup, so it runs first.
	t.Cleanup(func() { close(release) })

	collector.LogAction("first", "")
	testutil.Eventually(t, 5*time.Second, entered.Load, "collector goroutine never took the first event")
	collector.LogAction("queued", "")

	const flood = 50
	began := time.Now() //nolint:realclock // measuring real producer latency
	for range flood {
		collector.LogAction("flood", "")
	}
	elapsed := time.Since(began) //nolint:realclock // measuring real producer latency

	if dropped := collector.Status().DroppedCount; dropped != flood {
		t.Errorf("DroppedCount = %d, want %d", dropped, flood)
	}
	// 50 sends bounded by a 1ms timeout each; generous for loaded CI.
	if elapsed > 2*time.Second {
		t.Errorf("producers blocked for %v", elapsed)
	}
}

func TestConcurrentProducers(t *testing.T) {
	collector := newTestCollector(t, Config{Capacity: 10_000, SendTimeout: time.Second})
	start(t, collector)

	var group sync.WaitGroup
	for producer := range 8 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 100 {
				collector.LogAction("producer", string(rune('0'+producer)))
			}
		}()
	}
	group.Wait()

	events := snapshot(t, collector)
	status := collector.Status()
	if len(events)+int(status.DroppedCount) != 800 {
		t.Errorf("stored %d + dropped %d, want 800", len(events), status.DroppedCount)
	}
}

func TestCollectorPanicIsContained(t *testing.T) {
	collector := newTestCollector(t, Config{})
	collector.storeHook = func(e event.Event) {
		if action, ok := e.Payload.(event.UserAction); ok && action.Kind == "explode" {
			panic("store failed")
		}
	}
	start(t, collector)
	collector.LogAction("before", "")
	collector.LogAction("explode", "")

	testutil.Eventually(t, 5*time.Second, func() bool { return !collector.Status().Running }, "collector still running after panic")
	if err := collector.LastFailure(); !errors.Is(err, ErrCollectorFailed) || !strings.Contains(err.Error(), "store failed") {
		t.Errorf("LastFailure = %v", err)
	}
	if collector.Failures() != 1 {
		t.Errorf("Failures = %d", collector.Failures())
	}

	collector.LogAction("after", "")
	if collector.Status().DroppedCount != 1 {
		t.Errorf("event after failure not dropped: %+v", collector.Status())
	}

	events := snapshot(t, collector)
	if len(events) != 1 || events[0].Payload.(event.UserAction).Kind != "before" {
		t.Errorf("ring after failure = %v", events)
	}

	// Start recovers from the failed run.
	collector.storeHook = nil
	start(t, collector)
	if err := collector.LastFailure(); err != nil {
		t.Errorf("LastFailure after restart = %v", err)
	}
	collector.LogAction("again", "")
	if events := snapshot(t, collector); len(events) != 1 {
		t.Errorf("events after restart = %v", events)
	}
}

func TestStopKeepsEventsUntilRestart(t *testing.T) {
	fake := clock.Fake(epoch)
	collector := newTestCollector(t, Config{Clock: fake})
	start(t, collector)
	if anonymize.Current() == nil {
		t.Fatal("Start did not begin an anonymization session")
	}
	start(t, collector) // no-op while running

	collector.LogAction("a", "")
	collector.LogAction("b", "")
	collector.LogAction("c", "")
	fake.Advance(90 * time.Second)
	if err := collector.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := collector.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if anonymize.Current() != nil {
		t.Error("Stop left the anonymization session active")
	}

	fake.Advance(time.Hour)
	built, err := collector.ExportReport(context.Background())
	if err != nil {
		t.Fatalf("ExportReport after Stop: %v", err)
	}
	if built.Metadata.EventCount != 3 {
		t.Errorf("event_count = %d, want 3", built.Metadata.EventCount)
	}
	if built.Metadata.CollectionDurationMS != 90_000 {
		t.Errorf("collection_duration_ms = %d, want 90000", built.Metadata.CollectionDurationMS)
	}
	if anonymize.Current() != nil {
		t.Error("export after Stop began a session")
	}

	start(t, collector)
	if status := collector.Status(); !status.Running || status.EventCount != 0 {
		t.Errorf("Status after restart = %+v", status)
	}
	if events := snapshot(t, collector); len(events) != 0 {
		t.Errorf("restart kept %d events", len(events))
	}
}

func TestExportAnonymizesWithSessionKey(t *testing.T) {
	collector := newTestCollector(t, Config{})
	start(t, collector)
	collector.LogAction("open", "/home/carol/secret.pdf")

	built, err := collector.ExportReport(context.Background())
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	payload, ok := built.Events[0].Payload()
	if !ok {
		t.Fatal("event payload did not decode")
	}
	got := payload.Payload.(event.UserAction).Context
	if want := anonymize.Path("/home/carol/secret.pdf"); got != want {
		t.Errorf("context = %q, want session token %q", got, want)
	}
	if strings.Contains(got, "carol") || !strings.HasSuffix(got, ".pdf") {
		t.Errorf("context = %q", got)
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls uint64
}

func (s *countingSource) Read(context.Context) (hwinfo.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return hwinfo.Reading{
		CPU:         hwinfo.CPUReading{Busy: float64(s.calls), Idle: float64(s.calls)},
		MemoryUsed:  512 << 20,
		MemoryTotal: 1 << 30,
	}, nil
}

func (s *countingSource) Calls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSamplerFeedsRing(t *testing.T) {
	fake := clock.Fake(epoch)
	source := &countingSource{}
	collector := newTestCollector(t, Config{Clock: fake, Source: source, SampleInterval: time.Second})
	start(t, collector)

	for tick := uint64(1); tick <= 3; tick++ {
		fake.WaitForTimers(1)
		fake.Advance(time.Second)
		testutil.Eventually(t, 5*time.Second, func() bool { return source.Calls() > tick }, "sampler did not read on tick %d", tick)
	}
	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(snapshot(t, collector)) == 3
	}, "expected three resource snapshots")

	for _, e := range snapshot(t, collector) {
		sample, ok := e.Payload.(event.ResourceSnapshot)
		if !ok {
			t.Fatalf("payload %T, want ResourceSnapshot", e.Payload)
		}
		if sample.CPUPercent != 50 || sample.MemoryUsed != 512<<20 {
			t.Errorf("sample = %+v", sample)
		}
	}
	if dropped := collector.Status().SamplerDropped; dropped != 0 {
		t.Errorf("SamplerDropped = %d", dropped)
	}
}
