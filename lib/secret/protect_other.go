// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package secret

import "errors"

func allocateProtected(int) ([]byte, error) {
	return nil, errors.New("secret: protected memory is only implemented on linux")
}

func releaseProtected([]byte) error { return nil }
