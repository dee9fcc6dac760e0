// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/codec"
	"github.com/bureau-foundation/diagnostics/lib/event"
)

// Event is the wire form of one event. Data holds one of
// [ResourceData], [ActionData], [OperationData], or [MessageData]
// chosen by Type; for an unknown type it is a map[string]any.
type Event struct {
	TimestampMS int64      `json:"timestamp_ms"`
	Type        event.Type `json:"type"`
	Data        any        `json:"data"`
}

// ResourceData is the data of a resource_snapshot event.
type ResourceData struct {
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryUsedMB   uint64  `json:"memory_used_mb"`
	MemoryTotalMB  uint64  `json:"memory_total_mb"`
	DiskReadBytes  uint64  `json:"disk_read_bytes"`
	DiskWriteBytes uint64  `json:"disk_write_bytes"`
}

// ActionData is the data of user_action and app_state events.
type ActionData struct {
	Kind    string `json:"kind"`
	Context string `json:"context,omitempty"`
}

// OperationData is the data of an operation event.
type OperationData struct {
	Kind       string        `json:"kind"`
	DurationMS int64         `json:"duration_ms"`
	Outcome    event.Outcome `json:"outcome"`
}

// MessageData is the data of warning and error events.
type MessageData struct {
	Message string `json:"message"`
}

// EncodeEvent converts an event to its wire form. It does not
// anonymize; callers pass events that are already scrubbed.
func EncodeEvent(e event.Event) Event {
	wire := Event{TimestampMS: e.Timestamp.Milliseconds(), Type: e.Type()}
	switch payload := e.Payload.(type) {
	case event.ResourceSnapshot:
		wire.Data = ResourceData{
			CPUPercent:     payload.CPUPercent,
			MemoryUsedMB:   payload.MemoryUsed / bytesPerMB,
			MemoryTotalMB:  payload.MemoryTotal / bytesPerMB,
			DiskReadBytes:  payload.DiskRead,
			DiskWriteBytes: payload.DiskWrite,
		}
	case event.UserAction:
		wire.Data = ActionData{Kind: payload.Kind, Context: payload.Context}
	case event.AppState:
		wire.Data = ActionData{Kind: payload.Kind, Context: payload.Context}
	case event.Operation:
		wire.Data = OperationData{Kind: payload.Kind, DurationMS: payload.Duration.Milliseconds(), Outcome: payload.Outcome}
	case event.Warning:
		wire.Data = MessageData{Message: payload.Message}
	case event.Error:
		wire.Data = MessageData{Message: payload.Message}
	default:
		panic(fmt.Sprintf("report: cannot encode payload type %T", e.Payload))
	}
	return wire
}

const bytesPerMB = 1024 * 1024

// Payload converts a wire event back into an [event.Event]. Memory
// values come back rounded down to whole megabytes. Returns false for
// event types this build does not know.
func (e Event) Payload() (event.Event, bool) {
	result := event.Event{Timestamp: time.Duration(e.TimestampMS) * time.Millisecond}
	switch data := e.Data.(type) {
	case ResourceData:
		result.Payload = event.ResourceSnapshot{
			CPUPercent:  data.CPUPercent,
			MemoryUsed:  data.MemoryUsedMB * bytesPerMB,
			MemoryTotal: data.MemoryTotalMB * bytesPerMB,
			DiskRead:    data.DiskReadBytes,
			DiskWrite:   data.DiskWriteBytes,
		}
	case ActionData:
		if e.Type == event.TypeAppState {
			result.Payload = event.AppState{Kind: data.Kind, Context: data.Context}
		} else {
			result.Payload = event.UserAction{Kind: data.Kind, Context: data.Context}
		}
	case OperationData:
		result.Payload = event.Operation{
			Kind:     data.Kind,
			Duration: time.Duration(data.DurationMS) * time.Millisecond,
			Outcome:  data.Outcome,
		}
	case MessageData:
		if e.Type == event.TypeError {
			result.Payload = event.Error{Message: data.Message}
		} else {
			result.Payload = event.Warning{Message: data.Message}
		}
	default:
		return event.Event{}, false
	}
	return result, true
}

// wireJSON and wireCBOR mirror Event with the data left undecoded, so
// the type tag can be read first.
type wireJSON struct {
	TimestampMS int64           `json:"timestamp_ms"`
	Type        event.Type      `json:"type"`
	Data        json.RawMessage `json:"data"`
}

type wireCBOR struct {
	TimestampMS int64            `json:"timestamp_ms"`
	Type        event.Type       `json:"type"`
	Data        codec.RawMessage `json:"data"`
}

// UnmarshalJSON decodes data into the Go type matching the event type.
func (e *Event) UnmarshalJSON(input []byte) error {
	var wire wireJSON
	if err := json.Unmarshal(input, &wire); err != nil {
		return err
	}
	data, err := decodeData(wire.Type, len(wire.Data) == 0, func(target any) error {
		return json.Unmarshal(wire.Data, target)
	})
	if err != nil {
		return err
	}
	*e = Event{TimestampMS: wire.TimestampMS, Type: wire.Type, Data: data}
	return nil
}

// UnmarshalCBOR is the CBOR counterpart of UnmarshalJSON.
func (e *Event) UnmarshalCBOR(input []byte) error {
	var wire wireCBOR
	if err := codec.Unmarshal(input, &wire); err != nil {
		return err
	}
	data, err := decodeData(wire.Type, len(wire.Data) == 0, func(target any) error {
		return codec.Unmarshal(wire.Data, target)
	})
	if err != nil {
		return err
	}
	*e = Event{TimestampMS: wire.TimestampMS, Type: wire.Type, Data: data}
	return nil
}

func decodeData(eventType event.Type, empty bool, decode func(target any) error) (any, error) {
	if empty {
		return nil, fmt.Errorf("%s event has no data", eventType)
	}
	var (
		data any
		err  error
	)
	switch eventType {
	case event.TypeResourceSnapshot:
		var resource ResourceData
		err = decode(&resource)
		data = resource
	case event.TypeUserAction, event.TypeAppState:
		var action ActionData
		err = decode(&action)
		data = action
	case event.TypeOperation:
		var operation OperationData
		err = decode(&operation)
		data = operation
	case event.TypeWarning, event.TypeError:
		var message MessageData
		err = decode(&message)
		data = message
	default:
		var unknown map[string]any
		err = decode(&unknown)
		data = unknown
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s event data: %w", eventType, err)
	}
	return data, nil
}
