// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Diagnostics records user actions, application state, timed
// operations, warnings, errors, and resource samples, and exports them
// as anonymized JSON or CBOR reports.
//
// Usage:
//
//	diagnostics record [-d 1m] [--clipboard]
//	diagnostics monitor
//	diagnostics show [--summary] [-i identity] <report>
//	diagnostics sysinfo [--json]
//	diagnostics anonymize path|text <value>...
//	diagnostics keygen [-o identity]
//
// Configuration comes from --config (or DIAGNOSTICS_CONFIG) and
// DIAGNOSTICS_* environment variables; see lib/config.
package main
