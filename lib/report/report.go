// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/bureau-foundation/diagnostics/lib/event"
	"github.com/bureau-foundation/diagnostics/lib/hwinfo"
)

// SchemaVersion is written to every report.
const SchemaVersion = "1.0"

// Report is one exported diagnostics report.
type Report struct {
	SchemaVersion string            `json:"schema_version"`
	Metadata      Metadata          `json:"metadata"`
	SystemInfo    hwinfo.SystemInfo `json:"system_info"`
	Events        []Event           `json:"events"`
	Summary       Summary           `json:"summary"`
}

// Metadata identifies a report and the collection it came from.
type Metadata struct {
	// ReportID is a random UUID, unique per export.
	ReportID string `json:"report_id"`

	// GeneratedAt is the wall-clock export time in UTC.
	GeneratedAt time.Time `json:"generated_at"`

	// CollectionDurationMS is how long the collector had been running
	// (or ran, if stopped) when the report was built.
	CollectionDurationMS int64 `json:"collection_duration_ms"`

	// EventCount always equals len(Report.Events).
	EventCount int `json:"event_count"`

	// Generator names the program and version that produced the report.
	Generator string `json:"generator,omitempty"`
}

// Summary aggregates the events in a report.
type Summary struct {
	// EventCounts has an entry for every known event type, zero
	// included, plus any unknown types present in the report.
	EventCounts map[event.Type]int `json:"event_counts"`

	ResourceStats ResourceStats `json:"resource_stats"`
}

// ResourceStats summarizes resource_snapshot events. All values are
// zero when Samples is zero. RAM values are megabytes.
type ResourceStats struct {
	Samples int     `json:"samples"`
	CPUMin  float64 `json:"cpu_min"`
	CPUMax  float64 `json:"cpu_max"`
	CPUAvg  float64 `json:"cpu_avg"`
	RAMMin  uint64  `json:"ram_min"`
	RAMMax  uint64  `json:"ram_max"`
	RAMAvg  float64 `json:"ram_avg"`
}

// Summarize computes the summary of a list of wire events.
func Summarize(events []Event) Summary {
	summary := Summary{EventCounts: make(map[event.Type]int, len(event.Types))}
	for _, eventType := range event.Types {
		summary.EventCounts[eventType] = 0
	}

	stats := &summary.ResourceStats
	var cpuTotal, ramTotal float64
	for _, wire := range events {
		summary.EventCounts[wire.Type]++

		resource, ok := wire.Data.(ResourceData)
		if !ok {
			continue
		}
		if stats.Samples == 0 {
			stats.CPUMin, stats.CPUMax = resource.CPUPercent, resource.CPUPercent
			stats.RAMMin, stats.RAMMax = resource.MemoryUsedMB, resource.MemoryUsedMB
		}
		stats.Samples++
		stats.CPUMin = min(stats.CPUMin, resource.CPUPercent)
		stats.CPUMax = max(stats.CPUMax, resource.CPUPercent)
		stats.RAMMin = min(stats.RAMMin, resource.MemoryUsedMB)
		stats.RAMMax = max(stats.RAMMax, resource.MemoryUsedMB)
		cpuTotal += resource.CPUPercent
		ramTotal += float64(resource.MemoryUsedMB)
	}
	if stats.Samples > 0 {
		stats.CPUAvg = cpuTotal / float64(stats.Samples)
		stats.RAMAvg = ramTotal / float64(stats.Samples)
	}
	return summary
}
