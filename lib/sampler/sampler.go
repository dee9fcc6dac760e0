// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampler periodically converts host counters into
// [event.ResourceSnapshot] payloads.
//
// A Sampler owns no buffer. Each tick it takes a [hwinfo.Reading],
// turns cumulative counters into per-interval values against the
// previous reading, and hands the payload to a non-blocking emit
// function. If emit refuses the payload (the collector's channel is
// full) the sample is counted and discarded; the next tick produces a
// fresh one.
//
// A failing source produces one [event.Warning] when the failure
// starts, then stays quiet until a reading succeeds again.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/clock"
	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
)

const (
	DefaultInterval = time.Second
	MinInterval     = 100 * time.Millisecond
	MaxInterval     = 10 * time.Second
)

// ErrSampling prefixes the Warning emitted when the source fails.
var ErrSampling = errors.New("resource sampling failed")

// ClampInterval returns interval bounded to [MinInterval, MaxInterval].
// Zero selects DefaultInterval.
func ClampInterval(interval time.Duration) time.Duration {
	switch {
	case interval == 0:
		return DefaultInterval
	case interval < MinInterval:
		return MinInterval
	case interval > MaxInterval:
		return MaxInterval
	}
	return interval
}

// Config holds the parameters for New.
type Config struct {
	// Source provides host readings. Required.
	Source hwinfo.Source

	// Emit delivers a payload without blocking and reports whether it
	// was accepted. Required.
	Emit func(event.Payload) bool

	// Interval between samples, clamped with ClampInterval.
	Interval time.Duration

	// Clock drives the ticker. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives failure transitions. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Sampler is a periodic resource reader. Run it on its own goroutine.
type Sampler struct {
	source   hwinfo.Source
	emit     func(event.Payload) bool
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger

	dropped atomic.Uint64
}

// New returns a Sampler. It panics if Source or Emit is nil.
func New(config Config) *Sampler {
	if config.Source == nil || config.Emit == nil {
		panic("sampler: Source and Emit are required")
	}
	sampler := &Sampler{
		source:   config.Source,
		emit:     config.Emit,
		interval: ClampInterval(config.Interval),
		clock:    config.Clock,
		logger:   config.Logger,
	}
	if sampler.clock == nil {
		sampler.clock = clock.Real()
	}
	if sampler.logger == nil {
		sampler.logger = slog.New(slog.DiscardHandler)
	}
	return sampler
}

// Interval returns the effective sampling interval.
func (s *Sampler) Interval() time.Duration { return s.interval }

// Dropped returns the number of payloads Emit refused.
func (s *Sampler) Dropped() uint64 { return s.dropped.Load() }

// Run samples until ctx is cancelled and returns nil. A panic inside
// the source or emit function stops sampling and is returned as an
// error instead of unwinding the caller's goroutine.
func (s *Sampler) Run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("resource sampler panicked", "panic", recovered)
			err = fmt.Errorf("sampler: panic: %v", recovered)
		}
	}()

	previous, havePrevious := s.read(ctx, false)
	failing := !havePrevious

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		current, ok := s.read(ctx, failing)
		if !ok {
			failing = true
			continue
		}
		if failing {
			s.logger.Info("resource sampling recovered")
			failing = false
		}
		if havePrevious {
			s.deliver(snapshot(previous, current))
		}
		previous, havePrevious = current, true
	}
}

// read takes one reading. The first failure of a streak is reported
// as a Warning; later ones are silent.
func (s *Sampler) read(ctx context.Context, failing bool) (hwinfo.Reading, bool) {
	reading, err := s.source.Read(ctx)
	if err == nil {
		return reading, true
	}
	if ctx.Err() != nil {
		return hwinfo.Reading{}, false
	}
	if !failing {
		s.logger.Warn("resource sampling failed", "error", err)
		s.deliver(event.Warning{Message: fmt.Sprintf("%v: %v", ErrSampling, err)})
	}
	return hwinfo.Reading{}, false
}

func (s *Sampler) deliver(payload event.Payload) {
	if !s.emit(payload) {
		s.dropped.Add(1)
	}
}

func snapshot(previous, current hwinfo.Reading) event.ResourceSnapshot {
	return event.ResourceSnapshot{
		CPUPercent:  hwinfo.CPUPercent(previous.CPU, current.CPU),
		MemoryUsed:  current.MemoryUsed,
		MemoryTotal: current.MemoryTotal,
		DiskRead:    hwinfo.Delta(previous.DiskRead, current.DiskRead),
		DiskWrite:   hwinfo.Delta(previous.DiskWrite, current.DiskWrite),
	}
}
