// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// TB is the subset of testing.TB the helpers need. Tests of the
// helpers substitute a recorder.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// pollInterval is how often Eventually re-evaluates its condition.
const pollInterval = 2 * time.Millisecond

// RequireReceive returns the next value from ch, failing the test if
// none arrives within timeout or ch is closed first.
//
//	snapshot := testutil.RequireReceive(t, sink, 5*time.Second, "waiting for a resource snapshot")
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	var zero T
	select {
	case value, ok := <-ch:
		if ok {
			return value
		}
		t.Fatalf("channel closed without a value: %s", formatMessage(msgAndArgs))
	case <-time.After(timeout):
		t.Fatalf("no value after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	return zero
}

// RequireSend delivers value on ch, failing the test if the receiver
// does not take it within timeout.
func RequireSend[T any](t TB, ch chan<- T, value T, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case ch <- value:
	case <-time.After(timeout):
		t.Fatalf("send not accepted after %v: %s", timeout, formatMessage(msgAndArgs))
	}
}

// RequireClosed fails the test unless ch is closed (or yields a value)
// within timeout. Typical use is waiting on a goroutine's done channel.
//
//	testutil.RequireClosed(t, done, 5*time.Second, "sampler exit")
func RequireClosed(t TB, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("channel still open after %v: %s", timeout, formatMessage(msgAndArgs))
	}
}

// Eventually re-evaluates condition until it holds, failing the test
// once timeout has passed.
//
//	testutil.Eventually(t, 5*time.Second, func() bool {
//	    return collector.Status().EventCount == 3
//	}, "collector draining")
func Eventually(t TB, timeout time.Duration, condition func() bool, msgAndArgs ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("condition still false after %v: %s", timeout, formatMessage(msgAndArgs))
			return
		}
		time.Sleep(pollInterval)
	}
}

// formatMessage renders the optional trailing arguments: nothing, a
// single value, or a format string and its arguments.
func formatMessage(msgAndArgs []any) string {
	switch {
	case len(msgAndArgs) == 0:
		return "(no message)"
	case len(msgAndArgs) == 1:
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
