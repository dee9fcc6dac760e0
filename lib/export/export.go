// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/diagnostics/lib/clipboard"
	"github.com/bureau-foundation/diagnostics/lib/report"
	"github.com/bureau-foundation/diagnostics/lib/sealed"
	"github.com/bureau-foundation/diagnostics/lib/secret"
)

// Options controls the file export pipeline. The zero value writes
// plain indented JSON.
type Options struct {
	Format      report.Format
	Compression Compression

	// Recipients are age public keys (age1...). When non-empty the
	// file is encrypted so that any one of them can read it.
	Recipients []string
}

// Extension returns the full file suffix the options produce, for
// example ".json.zst.age".
func (o Options) Extension() string {
	format := o.Format
	if format == "" {
		format = report.FormatJSON
	}
	extension := format.Extension() + o.Compression.Extension()
	if len(o.Recipients) > 0 {
		extension += ".age"
	}
	return extension
}

// DefaultFileName returns the conventional name for a JSON report
// generated at t, in t's location: diagnostics_YYYYMMDD_HHMMSS.json.
func DefaultFileName(t time.Time) string {
	return FileName(t, Options{})
}

// FileName is DefaultFileName with the suffixes for options.
func FileName(t time.Time, options Options) string {
	return "diagnostics_" + t.Format("20060102_150405") + options.Extension()
}

// Encode runs the serialization, compression, and encryption layers and
// returns the bytes a file export would contain.
func Encode(r *report.Report, options Options) (data []byte, err error) {
	defer recoverInto(&err, KindSerialization, "")
	data, err = report.Marshal(r, options.Format)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Err: err}
	}
	data, err = compress(data, options.Compression)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Err: err}
	}
	if len(options.Recipients) > 0 {
		data, err = sealed.Encrypt(data, options.Recipients)
		if err != nil {
			return nil, &Error{Kind: KindSerialization, Err: err}
		}
	}
	return data, nil
}

// ToFile encodes r and atomically replaces path with the result. The
// parent directory must exist.
func ToFile(r *report.Report, path string, options Options) (err error) {
	data, err := Encode(r, options)
	if err != nil {
		var exportError *Error
		if errors.As(err, &exportError) {
			exportError.Path = path
		}
		return err
	}
	defer recoverInto(&err, KindIO, path)
	if err := writeAtomic(path, data); err != nil {
		return &Error{Kind: KindIO, Path: path, Err: err}
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path, syncs it,
// and renames it into place. The temporary file is removed on every
// failure path.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming into place: %w", err)
	}

	// Make the rename itself durable.
	parent, err := os.Open(directory)
	if err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

// ToClipboard copies r as indented JSON, byte-identical to a plain
// JSON file export.
func ToClipboard(ctx context.Context, r *report.Report, sink clipboard.Sink) (err error) {
	defer recoverInto(&err, KindClipboard, "")
	data, err := report.Marshal(r, report.FormatJSON)
	if err != nil {
		return &Error{Kind: KindSerialization, Err: err}
	}
	if err := sink.Copy(ctx, string(data)); err != nil {
		return &Error{Kind: KindClipboard, Err: err}
	}
	return nil
}

// Loaded describes a report read back by Load.
type Loaded struct {
	Report      *report.Report
	Format      report.Format
	Compression Compression
	Encrypted   bool
}

// Load reads a report file written by ToFile, undoing each layer.
// privateKey is required only for encrypted files.
func Load(path string, privateKey *secret.Buffer) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, Path: path, Err: err}
	}
	loaded, err := Decode(data, privateKey)
	if err != nil {
		var exportError *Error
		if errors.As(err, &exportError) {
			exportError.Path = path
		}
		return nil, err
	}
	return loaded, nil
}

// Decode is Load on bytes already in memory.
func Decode(data []byte, privateKey *secret.Buffer) (*Loaded, error) {
	loaded := &Loaded{}
	if sealed.IsEncrypted(data) {
		if privateKey == nil {
			return nil, &Error{Kind: KindSerialization, Err: errors.New("report is age-encrypted and no identity was given")}
		}
		plaintext, err := sealed.Decrypt(data, privateKey)
		if err != nil {
			return nil, &Error{Kind: KindSerialization, Err: err}
		}
		data = append([]byte(nil), plaintext.Bytes()...)
		plaintext.Close()
		loaded.Encrypted = true
	}

	data, compression, err := decompress(data)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Err: err}
	}
	loaded.Compression = compression

	loaded.Report, loaded.Format, err = report.Unmarshal(data)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Err: err}
	}
	return loaded, nil
}
