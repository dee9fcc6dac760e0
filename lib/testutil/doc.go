// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so individual tests never call
// time.After directly. They are the only place in the test suite where
// a real wall-clock timeout appears; everything else runs on
// [clock.FakeClock].
//
// [Eventually] polls a condition that another goroutine will make true
// (a collector draining its channel, a sampler emitting a snapshot).
//
// [WriteTree] lays out a directory of small files, used to fake sysfs
// and configuration directories.
//
// All helpers call t.Fatalf on failure.
//
// This package has no internal dependencies.
package testutil
