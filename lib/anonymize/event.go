// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"fmt"

	"github.com/bureau-foundation/diagnostics/lib/event"
)

// Event returns a copy of e with every string field of its payload
// anonymized. Numeric fields, durations, and outcome enums pass through
// unchanged. The input is not modified.
func (a *Anonymizer) Event(e event.Event) event.Event {
	switch payload := e.Payload.(type) {
	case event.ResourceSnapshot:
		// No string fields.
	case event.UserAction:
		payload.Kind = a.Value(payload.Kind)
		payload.Context = a.Value(payload.Context)
		e.Payload = payload
	case event.AppState:
		payload.Kind = a.Value(payload.Kind)
		payload.Context = a.Value(payload.Context)
		e.Payload = payload
	case event.Operation:
		payload.Kind = a.Value(payload.Kind)
		e.Payload = payload
	case event.Warning:
		payload.Message = a.Value(payload.Message)
		e.Payload = payload
	case event.Error:
		payload.Message = a.Value(payload.Message)
		e.Payload = payload
	case nil:
	default:
		panic(fmt.Sprintf("anonymize: unknown payload type %T", e.Payload))
	}
	return e
}

// Event anonymizes an event with the process-wide session.
func Event(e event.Event) event.Event { return current().Event(e) }
