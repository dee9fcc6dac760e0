// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the diagnostics
// binary: reporting a fatal error to stderr when the structured logger
// may not be initialized, and exiting after an unrecoverable error in
// main().
package process
