// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/diagnostics/lib/anonymize"
	"github.com/bureau-foundation/diagnostics/lib/clock"
	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
)

// BuilderConfig holds the parameters for NewBuilder.
type BuilderConfig struct {
	// Anonymizer scrubs events. If nil, the process-wide session in
	// lib/anonymize is used.
	Anonymizer *anonymize.Anonymizer

	// Generator is written to Metadata.Generator.
	Generator string

	// Clock provides GeneratedAt. Defaults to clock.Real().
	Clock clock.Clock
}

// Builder turns collected events into a Report.
type Builder struct {
	anonymizer *anonymize.Anonymizer
	generator  string
	clock      clock.Clock
}

// NewBuilder returns a Builder.
func NewBuilder(config BuilderConfig) *Builder {
	builder := &Builder{
		anonymizer: config.Anonymizer,
		generator:  config.Generator,
		clock:      config.Clock,
	}
	if builder.clock == nil {
		builder.clock = clock.Real()
	}
	return builder
}

// Build anonymizes events, converts them to wire form, and computes
// the summary. The output depends only on the inputs except for
// ReportID and GeneratedAt. events is not modified.
func (b *Builder) Build(events []event.Event, info hwinfo.SystemInfo, collectionDuration time.Duration) *Report {
	wire := make([]Event, 0, len(events))
	for _, e := range events {
		wire = append(wire, EncodeEvent(b.anonymize(e)))
	}
	return &Report{
		SchemaVersion: SchemaVersion,
		Metadata: Metadata{
			ReportID:             uuid.NewString(),
			GeneratedAt:          b.clock.Now().UTC().Truncate(time.Second),
			CollectionDurationMS: collectionDuration.Milliseconds(),
			EventCount:           len(wire),
			Generator:            b.generator,
		},
		SystemInfo: info,
		Events:     wire,
		Summary:    Summarize(wire),
	}
}

func (b *Builder) anonymize(e event.Event) event.Event {
	if b.anonymizer != nil {
		return b.anonymizer.Event(e)
	}
	return anonymize.Event(e)
}
