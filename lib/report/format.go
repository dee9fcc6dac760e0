// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/diagnostics/lib/codec"
)

// Format selects the serialization of a report.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name from configuration or flags.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR:
		return Format(name), nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json or cbor)", name)
}

// Extension returns the file extension for the format, with the dot.
func (f Format) Extension() string {
	if f == FormatCBOR {
		return ".cbor"
	}
	return ".json"
}

// Marshal serializes a report. JSON output is indented with two
// spaces and ends in a newline.
func Marshal(report *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding report as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		data, err := codec.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("encoding report as CBOR: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// Unmarshal decodes a report in either format. It does not validate;
// see [Validate].
func Unmarshal(data []byte) (*Report, Format, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, "", err
	}
	var report Report
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &report)
	case FormatCBOR:
		err = codec.Unmarshal(data, &report)
	}
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s report: %w", format, err)
	}
	return &report, format, nil
}

// DetectFormat reports whether data looks like a JSON object or a CBOR
// map.
func DetectFormat(data []byte) (Format, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return "", errors.New("empty report")
	}
	switch first := trimmed[0]; {
	case first == '{':
		return FormatJSON, nil
	case first>>5 == 5:
		// CBOR major type 5 (map).
		return FormatCBOR, nil
	}
	return "", errors.New("report is neither a JSON object nor a CBOR map")
}
