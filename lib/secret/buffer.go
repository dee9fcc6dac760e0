// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// Buffer holds sensitive bytes. A Buffer must not be copied after
// creation. After Close, Bytes panics.
type Buffer struct {
	mu        sync.Mutex
	data      []byte
	protected bool
	closed    bool
}

// New allocates a zero-filled buffer of the given size, protected when
// the platform allows it.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	data, err := allocateProtected(size)
	if err != nil {
		return &Buffer{data: make([]byte, size)}, nil
	}
	return &Buffer{data: data, protected: true}, nil
}

// NewRandom allocates a buffer of the given size and fills it from
// crypto/rand.
func NewRandom(size int) (*Buffer, error) {
	buffer, err := New(size)
	if err != nil {
		return nil, err
	}
	if _, err := rand.Read(buffer.data); err != nil {
		buffer.Close()
		return nil, fmt.Errorf("secret: reading random bytes: %w", err)
	}
	return buffer, nil
}

// NewFromBytes copies source into a new buffer and zeros source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret data. The slice aliases the buffer's memory;
// do not retain it past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Protected reports whether the buffer lives in locked, dump-excluded
// memory rather than on the Go heap.
func (b *Buffer) Protected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.protected
}

// Close zeros the contents and releases protected memory. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	Zero(b.data)

	var err error
	if b.protected {
		err = releaseProtected(b.data)
	}
	b.data = nil
	return err
}

// Zero overwrites data with zeros.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
