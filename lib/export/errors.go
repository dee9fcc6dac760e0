// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"errors"
	"fmt"
)

// Kind classifies an export failure.
type Kind string

const (
	KindSerialization Kind = "serialization"
	KindIO            Kind = "io"
	KindClipboard     Kind = "clipboard"
)

var (
	ErrSerialization = errors.New("report serialization failed")
	ErrIO            = errors.New("report file write failed")
	ErrClipboard     = errors.New("clipboard copy failed")
)

// Error is returned by every export operation.
type Error struct {
	Kind Kind

	// Path is the target file, empty for clipboard exports.
	Path string

	Err error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export %s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindSerialization:
		return ErrSerialization
	case KindIO:
		return ErrIO
	case KindClipboard:
		return ErrClipboard
	}
	return nil
}

// recoverInto converts a panic in an export path into an *Error of the
// given kind. Use as: defer recoverInto(&err, kind, path).
func recoverInto(err *error, kind Kind, path string) {
	if recovered := recover(); recovered != nil {
		*err = &Error{Kind: kind, Path: path, Err: fmt.Errorf("panic: %v", recovered)}
	}
}
