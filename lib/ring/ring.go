// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ring provides a fixed-capacity circular buffer that keeps the
// most recent N elements. It is the storage behind the diagnostics
// collector's event history.
//
// A Ring is not safe for concurrent use. The collector confines each
// Ring to a single goroutine and hands out copies (via [Ring.Snapshot]
// or [Ring.All]) to everyone else.
package ring

import "iter"

const (
	// MinCapacity is the smallest capacity New will honour. Zero and
	// negative requests are raised to it.
	MinCapacity = 1

	// MaxCapacity is the largest capacity New will honour. A ring of
	// diagnostic events this size is already several hundred MB in the
	// worst case; larger requests are lowered to it.
	MaxCapacity = 1 << 20

	// DefaultCapacity is the capacity used when configuration does not
	// specify one.
	DefaultCapacity = 10_000
)

// ClampCapacity returns capacity bounded to [MinCapacity, MaxCapacity].
func ClampCapacity(capacity int) int {
	if capacity < MinCapacity {
		return MinCapacity
	}
	if capacity > MaxCapacity {
		return MaxCapacity
	}
	return capacity
}

// Ring is a fixed-size FIFO. Pushing onto a full ring overwrites the
// oldest element.
type Ring[T any] struct {
	data []T
	// head is the index of the oldest element when the ring is
	// non-empty.
	head   int
	length int
	// evicted counts elements overwritten since creation (or the last
	// Clear).
	evicted uint64
}

// New creates a ring whose capacity is capacity clamped to
// [MinCapacity, MaxCapacity]. The backing array is allocated up front
// and never resized.
func New[T any](capacity int) *Ring[T] {
	return &Ring[T]{data: make([]T, ClampCapacity(capacity))}
}

// Push appends item, evicting the oldest element if the ring is full.
func (ring *Ring[T]) Push(item T) {
	capacity := len(ring.data)
	if ring.length < capacity {
		ring.data[(ring.head+ring.length)%capacity] = item
		ring.length++
		return
	}
	// Full: the slot at head holds the oldest element. Overwrite it
	// and advance head so the next-oldest becomes the front.
	ring.data[ring.head] = item
	ring.head = (ring.head + 1) % capacity
	ring.evicted++
}

// Len returns the number of elements currently stored.
func (ring *Ring[T]) Len() int { return ring.length }

// Cap returns the fixed capacity.
func (ring *Ring[T]) Cap() int { return len(ring.data) }

// Evicted returns how many elements have been overwritten by Push.
func (ring *Ring[T]) Evicted() uint64 { return ring.evicted }

// Clear removes all elements. Capacity is unchanged.
func (ring *Ring[T]) Clear() {
	var zero T
	for index := range ring.data {
		ring.data[index] = zero
	}
	ring.head = 0
	ring.length = 0
	ring.evicted = 0
}

// Snapshot returns a copy of the contents, oldest first.
func (ring *Ring[T]) Snapshot() []T {
	result := make([]T, ring.length)
	capacity := len(ring.data)
	// At most two contiguous runs: head..end and 0..wrap.
	firstRun := min(ring.length, capacity-ring.head)
	copy(result, ring.data[ring.head:ring.head+firstRun])
	copy(result[firstRun:], ring.data[:ring.length-firstRun])
	return result
}

// All returns an iterator over the contents in insertion order. The
// contents are copied when All is called, so pushes made while the
// iterator is being consumed are not observed, and the iterator can be
// ranged over any number of times with the same result.
func (ring *Ring[T]) All() iter.Seq[T] {
	snapshot := ring.Snapshot()
	return func(yield func(T) bool) {
		for _, item := range snapshot {
			if !yield(item) {
				return
			}
		}
	}
}
