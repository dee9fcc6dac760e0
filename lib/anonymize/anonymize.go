// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package anonymize scrubs identifying strings out of diagnostic events
// before they leave the process.
//
// Every replacement is the first [HashLength] hex characters of a
// BLAKE3 keyed hash of the original text. The key is random per
// session (see [Begin]) and lives in a [secret.Buffer], so:
//
//   - within one session the same input always maps to the same token,
//     which keeps a report internally consistent (the same file shows up
//     under the same name in every event that mentions it);
//   - across sessions tokens are unrelated, so two reports cannot be
//     joined on hashed values;
//   - nothing maps a token back to its input. No table of originals is
//     kept anywhere.
//
// Detection rules:
//
//   - path-like strings (containing / or \) are split on separators and
//     each segment is hashed independently; the final segment keeps its
//     extension and the path keeps its depth;
//   - IPv4 and IPv6 addresses, e-mail addresses, and domain-like
//     label.label tokens are hashed whole;
//   - exact occurrences of the local OS username are hashed whole.
package anonymize

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"regexp"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/diagnostics/lib/secret"
)

// HashLength is the number of hex characters in every replacement
// token.
const HashLength = 8

// KeySize is the size of the session key in bytes (the BLAKE3 key
// size).
const KeySize = 32

// maxExtensionLength bounds what counts as a file extension. Longer
// suffixes after the last dot are treated as part of the name and
// hashed.
const maxExtensionLength = 10

// Anonymizer applies the detection rules with one key. It is safe for
// concurrent use.
type Anonymizer struct {
	mu     sync.Mutex
	key    *secret.Buffer
	hasher *blake3.Hasher
	closed bool

	// pattern matches every token kind in one pass so that replacement
	// output is never rescanned (a hashed path ends in an extension
	// that would otherwise look like a domain).
	pattern *regexp.Regexp
}

// Token group names in the combined pattern, in priority order.
const (
	groupPath     = "path"
	groupEmail    = "email"
	groupIPv6     = "ipv6"
	groupIPv4     = "ipv4"
	groupDomain   = "domain"
	groupUsername = "username"
)

const (
	pathPattern   = `[^\s"'<>()\[\]{},;|/\\]*(?:[/\\][^\s"'<>()\[\]{},;|/\\]*)+`
	emailPattern  = `[A-Za-z0-9._%+\-]+@(?:[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,}`
	ipv6Pattern   = `(?:[0-9A-Fa-f]{0,4}:){2,7}[0-9A-Fa-f]{0,4}(?:%[0-9A-Za-z]+)?`
	ipv4Pattern   = `\b\d{1,3}(?:\.\d{1,3}){3}\b`
	domainPattern = `\b(?:[A-Za-z0-9](?:[A-Za-z0-9\-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z][A-Za-z0-9\-]*[A-Za-z0-9]\b`
)

// New creates an Anonymizer from a key and the local username to
// redact. The key is copied; the caller keeps ownership of its slice.
// An empty username disables username matching.
func New(key []byte, username string) (*Anonymizer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("anonymize: key must be %d bytes, got %d", KeySize, len(key))
	}
	keyCopy := make([]byte, KeySize)
	copy(keyCopy, key)
	buffer, err := secret.NewFromBytes(keyCopy)
	if err != nil {
		return nil, fmt.Errorf("anonymize: protecting key: %w", err)
	}
	return newWithBuffer(buffer, username)
}

// NewRandom creates an Anonymizer with a fresh random key.
func NewRandom(username string) (*Anonymizer, error) {
	buffer, err := secret.NewRandom(KeySize)
	if err != nil {
		return nil, fmt.Errorf("anonymize: generating session key: %w", err)
	}
	return newWithBuffer(buffer, username)
}

func newWithBuffer(buffer *secret.Buffer, username string) (*Anonymizer, error) {
	hasher, err := blake3.NewKeyed(buffer.Bytes())
	if err != nil {
		buffer.Close()
		return nil, fmt.Errorf("anonymize: BLAKE3 keyed hash initialization failed: %w", err)
	}
	return &Anonymizer{
		key:     buffer,
		hasher:  hasher,
		pattern: compilePattern(username),
	}, nil
}

func compilePattern(username string) *regexp.Regexp {
	alternatives := []string{
		group(groupPath, pathPattern),
		group(groupEmail, emailPattern),
		group(groupIPv6, ipv6Pattern),
		group(groupIPv4, ipv4Pattern),
		group(groupDomain, domainPattern),
	}
	if username != "" {
		alternatives = append(alternatives, group(groupUsername, `\b`+regexp.QuoteMeta(username)+`\b`))
	}
	return regexp.MustCompile(strings.Join(alternatives, "|"))
}

func group(name, pattern string) string {
	return "(?P<" + name + ">" + pattern + ")"
}

// Close wipes the key. Hashing after Close panics.
func (a *Anonymizer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.hasher = nil
	return a.key.Close()
}

// Hash returns the replacement token for value.
func (a *Anonymizer) Hash(value string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		panic("anonymize: Hash on closed Anonymizer")
	}
	a.hasher.Reset()
	a.hasher.Write([]byte(value))
	digest := a.hasher.Sum(nil)
	return hex.EncodeToString(digest[:HashLength/2])
}

// Path hashes each segment of path independently. Separators (both /
// and \), empty segments, and the "." and ".." navigation segments are
// kept as they are, so the result has the same depth and shape as the
// input. The final segment keeps its extension: a/b/c.jpg becomes
// h1/h2/h3.jpg.
func (a *Anonymizer) Path(path string) string {
	var builder strings.Builder
	builder.Grow(len(path))

	start := 0
	for index := 0; index <= len(path); index++ {
		if index < len(path) && !isSeparator(path[index]) {
			continue
		}
		segment := path[start:index]
		isLast := index == len(path)
		builder.WriteString(a.pathSegment(segment, isLast))
		if !isLast {
			builder.WriteByte(path[index])
		}
		start = index + 1
	}
	return builder.String()
}

func (a *Anonymizer) pathSegment(segment string, isLast bool) string {
	switch segment {
	case "", ".", "..":
		return segment
	}
	if !isLast {
		return a.Hash(segment)
	}
	return a.Hash(segment) + extension(segment)
}

// extension returns the suffix from the last dot of name, or "" when
// name has no usable extension (dotfiles, overly long or non-alphanumeric
// suffixes).
func extension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	suffix := name[dot+1:]
	if len(suffix) > maxExtensionLength {
		return ""
	}
	for index := 0; index < len(suffix); index++ {
		character := suffix[index]
		isAlphanumeric := (character >= 'a' && character <= 'z') ||
			(character >= 'A' && character <= 'Z') ||
			(character >= '0' && character <= '9')
		if !isAlphanumeric {
			return ""
		}
	}
	return name[dot:]
}

func isSeparator(character byte) bool {
	return character == '/' || character == '\\'
}

// Text replaces every identifier found in text with its token and
// leaves everything around the matches untouched. Path-like tokens are
// rewritten with [Anonymizer.Path].
func (a *Anonymizer) Text(text string) string {
	matches := a.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	names := a.pattern.SubexpNames()
	var builder strings.Builder
	builder.Grow(len(text))
	previous := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		builder.WriteString(text[previous:start])
		builder.WriteString(a.replaceToken(text[start:end], matchedGroup(names, match)))
		previous = end
	}
	builder.WriteString(text[previous:])
	return builder.String()
}

func matchedGroup(names []string, match []int) string {
	for index := 1; index < len(names); index++ {
		if match[2*index] >= 0 && names[index] != "" {
			return names[index]
		}
	}
	return ""
}

func (a *Anonymizer) replaceToken(token, kind string) string {
	switch kind {
	case groupPath:
		// Sentence punctuation directly after a path belongs to the
		// sentence, not to the file name.
		trimmed := strings.TrimRight(token, ".:!?")
		return a.Path(trimmed) + token[len(trimmed):]
	case groupIPv6:
		// The IPv6 pattern is deliberately loose; only hash candidates
		// that actually parse, so clock times like 12:30:45 survive.
		candidate := token
		if zone := strings.IndexByte(candidate, '%'); zone >= 0 {
			candidate = candidate[:zone]
		}
		if _, err := netip.ParseAddr(candidate); err != nil || hexGroups(candidate) < 2 {
			return token
		}
		return a.Hash(token)
	default:
		return a.Hash(token)
	}
}

// hexGroups counts the non-empty colon-separated groups in an IPv6
// candidate. Scope operators like std::io parse as "::" but have no
// groups; loopback "::1" has one and identifies nobody.
func hexGroups(candidate string) int {
	count := 0
	for _, part := range strings.Split(candidate, ":") {
		if part != "" {
			count++
		}
	}
	return count
}

// Value anonymizes one string field. Values that look like a bare path
// (rooted, home-relative, or a single token containing a separator) are
// treated as paths in full, so segments containing spaces are still
// hashed as single segments; everything else goes through
// [Anonymizer.Text].
func (a *Anonymizer) Value(value string) string {
	if looksLikePath(value) {
		return a.Path(value)
	}
	return a.Text(value)
}

func looksLikePath(value string) bool {
	if !strings.ContainsAny(value, `/\`) || strings.ContainsAny(value, "\n\t") {
		return false
	}
	switch {
	case strings.HasPrefix(value, "/"), strings.HasPrefix(value, `\`),
		strings.HasPrefix(value, "~/"), strings.HasPrefix(value, "./"),
		strings.HasPrefix(value, "../"):
		return true
	case len(value) >= 3 && value[1] == ':' && isSeparator(value[2]):
		return true
	}
	return !strings.ContainsRune(value, ' ')
}
