// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the diagnostic event taxonomy: a timestamp plus
// exactly one payload drawn from a closed set of variants.
//
// The set of payload types is fixed. [Payload] has an unexported method
// so no other package can add a variant, and every consumer (the
// anonymizer, the report summary, the wire encoder) switches over the
// concrete types exhaustively. Adding a variant is a schema change: bump
// the report schema version and extend each of those switches.
//
// Events are values. Nothing in this package hands out pointers into a
// payload, so an Event cannot be mutated after construction by anyone
// holding a copy.
package event

import (
	"fmt"
	"time"
)

// Type is the wire tag of a payload variant. The string values are part
// of the report schema.
type Type string

const (
	TypeResourceSnapshot Type = "resource_snapshot"
	TypeUserAction       Type = "user_action"
	TypeAppState         Type = "app_state"
	TypeOperation        Type = "operation"
	TypeWarning          Type = "warning"
	TypeError            Type = "error"
)

// Types lists every payload type in schema order.
var Types = []Type{
	TypeResourceSnapshot,
	TypeUserAction,
	TypeAppState,
	TypeOperation,
	TypeWarning,
	TypeError,
}

// Valid reports whether t is one of the known payload types.
func (t Type) Valid() bool {
	switch t {
	case TypeResourceSnapshot, TypeUserAction, TypeAppState,
		TypeOperation, TypeWarning, TypeError:
		return true
	}
	return false
}

// Payload is implemented by exactly the variant types in this package.
type Payload interface {
	// Type returns the wire tag for this variant.
	Type() Type

	payload()
}

// Event is one observation. Timestamp is the offset from collector
// start, taken from a monotonic clock reading, so it never goes
// backwards even if the wall clock is adjusted.
type Event struct {
	Timestamp time.Duration
	Payload   Payload
}

// Type returns the payload's type, or "" for an event with no payload.
func (e Event) Type() Type {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Type()
}

// String renders the event for log lines and the monitor UI.
func (e Event) String() string {
	return fmt.Sprintf("+%s %s %s", e.Timestamp.Truncate(time.Millisecond), e.Type(), Describe(e.Payload))
}

// ResourceSnapshot is one sample of host resource usage. Memory values
// are bytes. DiskRead and DiskWrite are bytes transferred since the
// previous sample, not cumulative counters.
type ResourceSnapshot struct {
	CPUPercent  float64
	MemoryUsed  uint64
	MemoryTotal uint64
	DiskRead    uint64
	DiskWrite   uint64
}

// UserAction records something the user did. Kind is a short
// host-defined identifier ("open_file", "zoom_in"); Context is optional
// free text and may contain paths or other identifying data.
type UserAction struct {
	Kind    string
	Context string
}

// AppState records an application state transition.
type AppState struct {
	Kind    string
	Context string
}

// Outcome is the result of an Operation.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// Operation records a timed unit of work.
type Operation struct {
	Kind     string
	Duration time.Duration
	Outcome  Outcome
}

// Warning is a non-fatal problem reported by the host or by the
// pipeline itself (e.g. a resource sampling failure).
type Warning struct {
	Message string
}

// Error is a failure reported by the host.
type Error struct {
	Message string
}

func (ResourceSnapshot) Type() Type { return TypeResourceSnapshot }
func (UserAction) Type() Type       { return TypeUserAction }
func (AppState) Type() Type         { return TypeAppState }
func (Operation) Type() Type        { return TypeOperation }
func (Warning) Type() Type          { return TypeWarning }
func (Error) Type() Type            { return TypeError }

func (ResourceSnapshot) payload() {}
func (UserAction) payload()       {}
func (AppState) payload()         {}
func (Operation) payload()        {}
func (Warning) payload()          {}
func (Error) payload()            {}

// Describe returns a one-line human summary of a payload.
func Describe(payload Payload) string {
	switch value := payload.(type) {
	case ResourceSnapshot:
		return fmt.Sprintf("cpu=%.1f%% mem=%dMB/%dMB disk r=%dB w=%dB",
			value.CPUPercent, value.MemoryUsed>>20, value.MemoryTotal>>20, value.DiskRead, value.DiskWrite)
	case UserAction:
		return withContext(value.Kind, value.Context)
	case AppState:
		return withContext(value.Kind, value.Context)
	case Operation:
		return fmt.Sprintf("%s %s in %s", value.Kind, value.Outcome, value.Duration)
	case Warning:
		return value.Message
	case Error:
		return value.Message
	case nil:
		return "<empty>"
	default:
		panic(fmt.Sprintf("event: unknown payload type %T", payload))
	}
}

func withContext(kind, context string) string {
	if context == "" {
		return kind
	}
	return kind + " (" + context + ")"
}
