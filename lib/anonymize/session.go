// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"os"
	"os/user"
	"strings"
	"sync"
)

// The process-wide session. Begin installs it, End wipes it. Reports
// built between one Begin/End pair share a key; nothing outlives End.
var (
	sessionMutex sync.Mutex
	session      *Anonymizer
)

// Begin starts the process-wide anonymization session with a fresh
// random key and the local username, and returns it. If a session is
// already active, Begin returns it unchanged.
func Begin() (*Anonymizer, error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	if session != nil {
		return session, nil
	}
	anonymizer, err := NewRandom(LocalUsername())
	if err != nil {
		return nil, err
	}
	session = anonymizer
	return session, nil
}

// End wipes the process-wide session key. The next Begin (or the next
// package-level call) starts an unrelated session.
func End() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	if session == nil {
		return nil
	}
	err := session.Close()
	session = nil
	return err
}

// Current returns the active session, or nil if none is active.
func Current() *Anonymizer {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return session
}

// current returns the active session, beginning one if needed. Begin
// only fails if the system random source fails, which the runtime
// already treats as fatal.
func current() *Anonymizer {
	anonymizer, err := Begin()
	if err != nil {
		panic("anonymize: starting session: " + err.Error())
	}
	return anonymizer
}

// Path anonymizes a path with the process-wide session.
func Path(path string) string { return current().Path(path) }

// Text anonymizes free text with the process-wide session.
func Text(text string) string { return current().Text(text) }

// Value anonymizes a string field with the process-wide session.
func Value(value string) string { return current().Value(value) }

// LocalUsername returns the login name of the current OS user, without
// any Windows domain prefix. Returns "" if it cannot be determined.
func LocalUsername() string {
	name := ""
	if account, err := user.Current(); err == nil {
		name = account.Username
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = os.Getenv("USERNAME")
	}
	if index := strings.LastIndexByte(name, '\\'); index >= 0 {
		name = name[index+1:]
	}
	return name
}
