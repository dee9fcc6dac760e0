// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets the diagnostics pipeline take its notion of time
// by injection.
//
// The collector stamps events with an offset from its own start, the
// sampler wakes on a ticker, and producers wait a bounded time for
// channel space. All three read time through a [Clock]. Production
// code passes [Real]; tests pass [Fake] and move time explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	sampler := sampler.New(source, sink, sampler.WithClock(fake))
//	go sampler.Run(ctx)
//	fake.WaitForTimers(1)       // the sampler has created its ticker
//	fake.Advance(time.Second)   // exactly one tick is delivered
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
