// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds short-lived key material outside the Go heap.
//
// On Linux, [Buffer] memory comes from an anonymous mmap region that is
// locked into RAM (mlock) and excluded from core dumps
// (MADV_DONTDUMP). When the kernel refuses the lock (RLIMIT_MEMLOCK in
// a container, for example) or on other platforms, the buffer falls
// back to ordinary heap memory and [Buffer.Protected] reports false.
// Either way, Close zeros the contents.
//
// The diagnostics anonymizer keeps its per-session hashing key in a
// Buffer created by [NewRandom] so the key never reaches swap or a
// crash dump and is wiped when the session ends. Age identities for
// encrypted reports (lib/sealed) are held the same way.
//
// Depends on golang.org/x/sys/unix.
package secret
