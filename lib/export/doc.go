// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package export writes diagnostic reports to files and the clipboard.
//
// File export is a pipeline: [report.Marshal] (JSON or CBOR), then
// optional compression (zstd or LZ4 frames), then optional age
// encryption to one or more recipients. Each layer appends its suffix
// to the default file name, so diagnostics_20260102_150405.json.zst.age
// says how to undo it. [Load] reverses the pipeline by sniffing magic
// bytes, not by trusting the name.
//
// Files are replaced atomically: the encoded bytes go to a temporary
// file in the target directory, which is synced and renamed over the
// target. A failure at any step leaves the previous file (or nothing)
// in place, never a truncated report.
//
// Every failure is an [*Error] whose Kind selects one of the sentinels
// [ErrSerialization], [ErrIO], or [ErrClipboard] for errors.Is.
// Failures are reported, never retried.
package export
