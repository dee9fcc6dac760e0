// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package collector gathers diagnostic events in memory while a host
// application runs.
//
// A [Collector] owns two goroutines between [Collector.Start] and
// [Collector.Stop]:
//
//   - the collector goroutine, the only reader of the event channel and
//     the only owner of the ring buffer;
//   - the sampler goroutine, which feeds periodic resource snapshots
//     into the same channel.
//
// Producers call [Collector.LogEvent] or one of the typed helpers from
// any goroutine. A producer never blocks for longer than the configured
// send timeout: when the channel stays full, or the collector is not
// running, the event is dropped and counted. Producer calls never fail
// and never panic.
//
// [Collector.Snapshot] and [Collector.ExportReport] read the ring
// through a request channel that the collector goroutine services ahead
// of pending events, after first storing everything already queued.
// [Collector.Status] reads atomics only and never waits.
//
// A panic in the collector goroutine is recovered: the collector stops
// accepting events, [Collector.LastFailure] reports
// [ErrCollectorFailed], and the ring keeps what was stored before the
// failure. Start cleans up a failed run before beginning a new one.
//
// Start begins the process-wide anonymization session (see
// lib/anonymize) and Stop ends it, so reports exported within one run
// use consistent tokens and nothing links two runs.
package collector
