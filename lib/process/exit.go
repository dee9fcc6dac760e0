// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors returned before or outside the command logger.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}

// Report writes err the way Fatal does, without exiting. Multi-line
// errors (a message followed by a hint) are written as they are.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
