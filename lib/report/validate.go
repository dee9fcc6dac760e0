// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/diagnostics/lib/event"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid report")

// Validate checks the internal consistency of a decoded report: a 1.x
// schema version, a report ID, an event count matching the events, and
// summary counts matching a recount. All problems are reported at once.
func Validate(report *Report) error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	major, _, _ := strings.Cut(report.SchemaVersion, ".")
	if major != "1" {
		add("unsupported schema_version %q", report.SchemaVersion)
	}
	if report.Metadata.ReportID == "" {
		add("metadata.report_id is empty")
	}
	if report.Metadata.EventCount != len(report.Events) {
		add("metadata.event_count is %d but the report has %d events", report.Metadata.EventCount, len(report.Events))
	}
	for index, wire := range report.Events {
		if wire.Type == "" {
			add("event %d has no type", index)
		}
	}

	recount := Summarize(report.Events).EventCounts
	for eventType, count := range recount {
		if got := report.Summary.EventCounts[eventType]; got != count {
			add("summary.event_counts[%s] is %d but the report has %d", eventType, got, count)
		}
	}
	for eventType, count := range report.Summary.EventCounts {
		if _, seen := recount[eventType]; !seen && count != 0 {
			add("summary.event_counts[%s] is %d but the report has none", eventType, count)
		}
	}
	for _, eventType := range event.Types {
		if _, ok := report.Summary.EventCounts[eventType]; !ok {
			add("summary.event_counts is missing %s", eventType)
		}
	}

	return errors.Join(problems...)
}
