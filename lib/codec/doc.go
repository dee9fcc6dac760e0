// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for compact
// diagnostics reports.
//
// Reports are JSON by default: that is what users paste into bug
// trackers. CBOR is the alternative for large exports and for tooling
// that reads reports back. Both formats are produced from the same Go
// types, and those types carry only `json` struct tags; fxamacker/cbor
// reads `json` tags when `cbor` tags are absent, so one tag controls
// field naming and omitempty for both.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Time values are written as RFC 3339 text so the CBOR and JSON forms
// of a report carry the same timestamp string.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
package codec
