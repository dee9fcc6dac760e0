// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report defines the diagnostics report wire format (schema
// 1.0) and builds reports from collected events.
//
// A [Report] is built fresh for each export by [Builder.Build], which
// anonymizes every event, converts it to its wire form, and computes
// the [Summary]. A report is never mutated after it is built; it is
// serialized once and dropped.
//
// # Schema
//
//	{
//	  "schema_version": "1.0",
//	  "metadata": {"report_id", "generated_at", "collection_duration_ms", "event_count", "generator"},
//	  "system_info": {"os", "os_name", "os_version", "kernel_version", "cpu_arch", "cpu_brand", "cpu_cores", "ram_total_mb", "disk_type"},
//	  "events": [{"timestamp_ms", "type", "data": {...}}],
//	  "summary": {"event_counts": {type: count}, "resource_stats": {...}}
//	}
//
// The data object of each event depends on its type:
//
//	resource_snapshot  cpu_percent, memory_used_mb, memory_total_mb, disk_read_bytes, disk_write_bytes
//	user_action        kind, context (optional)
//	app_state          kind, context (optional)
//	operation          kind, duration_ms, outcome
//	warning, error     message
//
// Readers must accept any 1.x report. Minor versions may add fields and
// event types; an unknown event type decodes with its data as a plain
// map. A change to the meaning of an existing field requires a new
// major version.
//
// # Formats
//
// [Marshal] writes indented JSON or deterministic CBOR (see
// lib/codec). [Unmarshal] detects which one it was given.
package report
