// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestToolError_Hint(t *testing.T) {
	err := Validation("missing report path")
	if err.Error() != "missing report path" {
		t.Errorf("Error() = %q", err.Error())
	}
	if chained := err.WithHint("Pass the file to show."); chained != err {
		t.Error("WithHint should return the same pointer")
	}
	if want := "missing report path\n\nPass the file to show."; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestToolError_WrapsCause(t *testing.T) {
	inner := NotFound("report %s: %w", "r.json", os.ErrNotExist).WithHint("check the path")
	wrapped := fmt.Errorf("show failed: %w", inner)

	var toolError *ToolError
	if !errors.As(wrapped, &toolError) {
		t.Fatal("errors.As should find ToolError in wrapped chain")
	}
	if toolError.Category != CategoryNotFound || toolError.Hint != "check the path" {
		t.Errorf("ToolError = %+v", toolError)
	}
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("cause lost through ToolError")
	}
}

func TestToolError_AllCategories(t *testing.T) {
	tests := []struct {
		err  *ToolError
		want ErrorCategory
	}{
		{Validation("x"), CategoryValidation},
		{NotFound("x"), CategoryNotFound},
		{Transient("x"), CategoryTransient},
		{Internal("x"), CategoryInternal},
	}
	for _, test := range tests {
		if test.err.Category != test.want {
			t.Errorf("Category = %q, want %q", test.err.Category, test.want)
		}
	}
}
