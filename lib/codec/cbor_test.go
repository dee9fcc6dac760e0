// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sample struct {
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Context   string    `json:"context,omitempty"`
	Generated time.Time `json:"generated"`
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	original := sample{
		Name:      "user_action",
		Count:     42,
		Context:   "toolbar",
		Generated: time.Date(2026, 3, 4, 5, 6, 7, 8000, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != original.Name || decoded.Count != original.Count || decoded.Context != original.Context {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}
	if !decoded.Generated.Equal(original.Generated) {
		t.Errorf("Generated = %v, want %v", decoded.Generated, original.Generated)
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()
	value := map[string]int{"warning": 2, "error": 1, "app_state": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding differs between runs: %x != %x", first, again)
		}
	}
}

func TestJSONTagsNameFields(t *testing.T) {
	t.Parallel()
	data, err := Marshal(sample{Name: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"name"`) || !strings.Contains(notation, `"generated"`) {
		t.Errorf("json tag names missing from %s", notation)
	}
	if strings.Contains(notation, `"context"`) {
		t.Errorf("omitempty field present in %s", notation)
	}
}

func TestTimeEncodedAsText(t *testing.T) {
	t.Parallel()
	data, err := Marshal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if notation != `"2026-01-02T03:04:05Z"` {
		t.Errorf("time encoded as %s, want RFC 3339 text", notation)
	}
}

func TestUnknownDataDecodesAsStringMap(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]any{"field": "value", "nested": map[string]any{"n": 1}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := top["nested"].(map[string]any); !ok {
		t.Errorf("nested decoded as %T, want map[string]any", top["nested"])
	}
}

func TestRawMessageDefersDecoding(t *testing.T) {
	t.Parallel()
	type envelope struct {
		Type string     `json:"type"`
		Data RawMessage `json:"data"`
	}
	data, err := Marshal(map[string]any{"type": "warning", "data": map[string]string{"message": "low disk"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := Unmarshal(decoded.Data, &payload); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if decoded.Type != "warning" || payload.Message != "low disk" {
		t.Errorf("got type %q message %q", decoded.Type, payload.Message)
	}
}
