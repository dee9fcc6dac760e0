// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/event"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// newTestAnonymizer builds an Anonymizer with a key filled with fill so
// tests can create two distinct, reproducible sessions.
func newTestAnonymizer(t *testing.T, fill byte, username string) *Anonymizer {
	t.Helper()
	anonymizer, err := New(bytes.Repeat([]byte{fill}, KeySize), username)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { anonymizer.Close() })
	return anonymizer
}

func TestNewRejectsShortKey(t *testing.T) {
	t.Parallel()
	if _, err := New(make([]byte, 16), ""); err == nil {
		t.Fatal("New with 16-byte key succeeded, want error")
	}
}

func TestHashFormat(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 1, "")

	for _, input := range []string{"", "a", "some longer input with spaces", "日本語"} {
		got := anonymizer.Hash(input)
		if !tokenPattern.MatchString(got) {
			t.Errorf("Hash(%q) = %q, want 8 lowercase hex characters", input, got)
		}
	}
	if anonymizer.Hash("a") == anonymizer.Hash("b") {
		t.Error("Hash(a) == Hash(b)")
	}
}

func TestPathDeterministicWithinSession(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 1, "")

	first := anonymizer.Path("/home/alice/img.jpg")
	second := anonymizer.Path("/home/alice/img.jpg")
	if first != second {
		t.Errorf("same session produced %q then %q", first, second)
	}
}

func TestPathDiffersAcrossSessions(t *testing.T) {
	t.Parallel()
	first := newTestAnonymizer(t, 1, "").Path("/home/alice/img.jpg")
	second := newTestAnonymizer(t, 2, "").Path("/home/alice/img.jpg")
	if first == second {
		t.Errorf("different keys produced identical output %q", first)
	}
}

func TestPathShape(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 1, "")

	tests := []struct {
		name      string
		input     string
		extension string
	}{
		{"relative", "a/b/photo.png", ".png"},
		{"absolute", "/home/alice/img.jpg", ".jpg"},
		{"windows", `C:\Users\alice\report.docx`, ".docx"},
		{"double extension keeps last", "backups/archive.tar.gz", ".gz"},
		{"no extension", "usr/local/bin", ""},
		{"dotfile", "home/alice/.bashrc", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := anonymizer.Path(test.input)

			inputSegments := splitSegments(test.input)
			gotSegments := splitSegments(got)
			if len(gotSegments) != len(inputSegments) {
				t.Fatalf("Path(%q) = %q: %d segments, want %d", test.input, got, len(gotSegments), len(inputSegments))
			}
			for index, segment := range gotSegments {
				if segment == "" {
					if inputSegments[index] != "" {
						t.Errorf("segment %d emptied", index)
					}
					continue
				}
				if index == len(gotSegments)-1 {
					if !strings.HasSuffix(segment, test.extension) {
						t.Errorf("final segment %q lost extension %q", segment, test.extension)
					}
					segment = strings.TrimSuffix(segment, test.extension)
				}
				if !tokenPattern.MatchString(segment) {
					t.Errorf("segment %d = %q, want 8-hex token", index, segment)
				}
			}
		})
	}
}

var separatorPattern = regexp.MustCompile(`[/\\]`)

func splitSegments(path string) []string {
	return separatorPattern.Split(path, -1)
}

func TestPathPreservesNavigationAndSeparators(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 1, "")

	got := anonymizer.Path("../photos//./cat.png")
	parts := strings.Split(got, "/")
	if len(parts) != 5 {
		t.Fatalf("Path = %q, want 5 parts", got)
	}
	if parts[0] != ".." || parts[2] != "" || parts[3] != "." {
		t.Errorf("navigation segments not preserved: %q", got)
	}
	if parts[1] != anonymizer.Hash("photos") {
		t.Errorf("segment 1 = %q, want Hash(photos)", parts[1])
	}
	if parts[4] != anonymizer.Hash("cat.png")+".png" {
		t.Errorf("segment 4 = %q, want Hash(cat.png)+.png", parts[4])
	}
}

func TestPathIsOneWay(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 7, "")

	got := anonymizer.Path("/home/alice/img.jpg")
	for _, original := range []string{"home", "alice", "img"} {
		if strings.Contains(got, original) {
			t.Errorf("Path output %q contains original substring %q", got, original)
		}
	}
	if !strings.HasSuffix(got, ".jpg") {
		t.Errorf("Path output %q does not preserve .jpg", got)
	}
}

func TestExtension(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"photo.png":        ".png",
		"archive.tar.gz":   ".gz",
		".bashrc":          "",
		"noext":            "",
		"trailing.":        "",
		"weird.ext-ension": "",
		"long.abcdefghijk": "",
		"upper.JPEG":       ".JPEG",
	}
	for input, expected := range tests {
		if got := extension(input); got != expected {
			t.Errorf("extension(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestTextReplacesIdentifiers(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 3, "alice")

	tests := []struct {
		name     string
		input    string
		prefix   string
		token    string
		suffix   string
		isPath   bool
		fullPath string
	}{
		{name: "ipv4", input: "connect to 192.168.1.10 failed", prefix: "connect to ", token: "192.168.1.10", suffix: " failed"},
		{name: "ipv6", input: "peer fe80::1ff:fe23:4567:890a down", prefix: "peer ", token: "fe80::1ff:fe23:4567:890a", suffix: " down"},
		{name: "domain", input: "resolved api.example.com quickly", prefix: "resolved ", token: "api.example.com", suffix: " quickly"},
		{name: "email", input: "mail bob@example.org now", prefix: "mail ", token: "bob@example.org", suffix: " now"},
		{name: "username", input: "user alice logged in", prefix: "user ", token: "alice", suffix: " logged in"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			want := test.prefix + anonymizer.Hash(test.token) + test.suffix
			if got := anonymizer.Text(test.input); got != want {
				t.Errorf("Text(%q) = %q, want %q", test.input, got, want)
			}
		})
	}
}

func TestTextPathToken(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 3, "alice")

	got := anonymizer.Text("cannot open /home/alice/a.png.")
	want := "cannot open " + anonymizer.Path("/home/alice/a.png") + "."
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
	if strings.Contains(got, "alice") {
		t.Errorf("username leaked: %q", got)
	}
}

func TestTextUsernameConsistentWithPathSegment(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 3, "alice")

	inText := anonymizer.Text("alice")
	inPath := strings.Split(anonymizer.Path("/home/alice/x"), "/")[2]
	if inText != inPath {
		t.Errorf("username token %q in text, %q in path", inText, inPath)
	}
}

func TestTextLeavesOrdinaryTextAlone(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 3, "alice")

	for _, input := range []string{
		"",
		"render finished",
		"retry at 12:30:45 succeeded",
		"std::vector allocation failed",
		"version 1.2.3 loaded",
		"loopback ::1 refused",
		"malice is not the username",
	} {
		if got := anonymizer.Text(input); got != input {
			t.Errorf("Text(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestTextMultipleMatches(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 4, "")

	got := anonymizer.Text("10.0.0.1 -> 10.0.0.2 via gw.example.net")
	want := anonymizer.Hash("10.0.0.1") + " -> " + anonymizer.Hash("10.0.0.2") + " via " + anonymizer.Hash("gw.example.net")
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestValueTreatsRootedStringsAsPaths(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 5, "")

	got := anonymizer.Value("/home/alice/My Photos/cat.jpg")
	parts := strings.Split(got, "/")
	if len(parts) != 5 {
		t.Fatalf("Value = %q, want 5 parts (space kept inside one segment)", got)
	}
	if parts[3] != anonymizer.Hash("My Photos") {
		t.Errorf("segment with space = %q, want Hash(My Photos)", parts[3])
	}

	message := "failed to read settings"
	if got := anonymizer.Value(message); got != message {
		t.Errorf("Value(%q) = %q, want unchanged", message, got)
	}
}

func TestEventAnonymizesStringFieldsOnly(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 6, "alice")

	snapshot := event.ResourceSnapshot{CPUPercent: 42.5, MemoryUsed: 1 << 30, MemoryTotal: 4 << 30, DiskRead: 10, DiskWrite: 20}
	tests := []struct {
		name  string
		input event.Payload
		check func(t *testing.T, got event.Payload)
	}{
		{
			name:  "resource snapshot untouched",
			input: snapshot,
			check: func(t *testing.T, got event.Payload) {
				if got != event.Payload(snapshot) {
					t.Errorf("got %+v, want %+v", got, snapshot)
				}
			},
		},
		{
			name:  "user action context path",
			input: event.UserAction{Kind: "open_file", Context: "/home/alice/img.jpg"},
			check: func(t *testing.T, got event.Payload) {
				action := got.(event.UserAction)
				if action.Kind != "open_file" {
					t.Errorf("Kind = %q, want open_file", action.Kind)
				}
				if action.Context != anonymizer.Path("/home/alice/img.jpg") {
					t.Errorf("Context = %q", action.Context)
				}
			},
		},
		{
			name:  "app state context text",
			input: event.AppState{Kind: "connected", Context: "server 10.1.2.3"},
			check: func(t *testing.T, got event.Payload) {
				state := got.(event.AppState)
				if state.Context != "server "+anonymizer.Hash("10.1.2.3") {
					t.Errorf("Context = %q", state.Context)
				}
			},
		},
		{
			name:  "operation keeps duration and outcome",
			input: event.Operation{Kind: "decode", Duration: 250 * time.Millisecond, Outcome: event.OutcomeFailure},
			check: func(t *testing.T, got event.Payload) {
				operation := got.(event.Operation)
				if operation.Duration != 250*time.Millisecond || operation.Outcome != event.OutcomeFailure || operation.Kind != "decode" {
					t.Errorf("got %+v", operation)
				}
			},
		},
		{
			name:  "warning message",
			input: event.Warning{Message: "user alice has no quota"},
			check: func(t *testing.T, got event.Payload) {
				if strings.Contains(got.(event.Warning).Message, "alice") {
					t.Errorf("username leaked: %q", got.(event.Warning).Message)
				}
			},
		},
		{
			name:  "error message",
			input: event.Error{Message: "open C:\\Users\\alice\\a.txt denied"},
			check: func(t *testing.T, got event.Payload) {
				message := got.(event.Error).Message
				if strings.Contains(message, "alice") || strings.Contains(message, "Users") {
					t.Errorf("path leaked: %q", message)
				}
				if !strings.HasPrefix(message, "open ") || !strings.HasSuffix(message, ".txt denied") {
					t.Errorf("surrounding text changed: %q", message)
				}
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			input := event.Event{Timestamp: 3 * time.Second, Payload: test.input}
			got := anonymizer.Event(input)
			if got.Timestamp != input.Timestamp {
				t.Errorf("Timestamp changed: %v", got.Timestamp)
			}
			if got.Type() != input.Type() {
				t.Errorf("Type changed: %q -> %q", input.Type(), got.Type())
			}
			test.check(t, got.Payload)
		})
	}
}

func TestEventDoesNotModifyInput(t *testing.T) {
	t.Parallel()
	anonymizer := newTestAnonymizer(t, 6, "")

	input := event.Event{Payload: event.UserAction{Kind: "open", Context: "/srv/data/file.bin"}}
	anonymizer.Event(input)
	if input.Payload.(event.UserAction).Context != "/srv/data/file.bin" {
		t.Errorf("input mutated: %+v", input.Payload)
	}
}

func TestHashAfterClosePanics(t *testing.T) {
	t.Parallel()
	anonymizer, err := NewRandom("")
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	anonymizer.Close()

	defer func() {
		if recover() == nil {
			t.Error("Hash after Close did not panic")
		}
	}()
	anonymizer.Hash("x")
}
