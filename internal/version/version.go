// Package version parses package version strings and orders them.
package version

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a version string has no leading numeric component
var ErrMalformed = errors.New("malformed version")

// ParseError wraps ErrMalformed with the offending text
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed version %q: must start with a digit", e.Text)
}

// Unwrap allows errors.Is(err, ErrMalformed)
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Overlay identifies the repository a version definition came from.
// 0 is the primary tree; larger values take precedence.
type Overlay uint32

// SuffixKind is the release type of a suffix group. The declaration order is the sort order.
type SuffixKind int

const (
	SuffixAlpha SuffixKind = iota
	SuffixBeta
	SuffixPre
	SuffixRC
	SuffixNone // no suffix; sits between rc and p
	SuffixP
)

// longest names first so "pre" wins over "p"
var suffixNames = []struct {
	name string
	kind SuffixKind
}{
	{"alpha", SuffixAlpha},
	{"beta", SuffixBeta},
	{"pre", SuffixPre},
	{"rc", SuffixRC},
	{"p", SuffixP},
}

func (k SuffixKind) String() string {
	for _, s := range suffixNames {
		if s.kind == k {
			return s.name
		}
	}
	return "none"
}

// Suffix is one "_kind[N]" group. Number is empty when no digits follow the kind.
type Suffix struct {
	Kind   SuffixKind
	Number string
}

// Key is a parsed version. It is immutable; the slices it holds are never written after Parse.
type Key struct {
	raw        string
	components []string // as written
	nums       []string // components with trailing all-zero components dropped
	letter     byte
	suffixes   []Suffix
	revision   string
	tail       string
	overlay    Overlay
}

// Parse parses text into a Key. It fails only when text does not start with a digit;
// trailing text that does not fit the grammar is kept as an opaque tail.
func Parse(text string) (Key, error) {
	if text == "" || !isDigit(text[0]) {
		return Key{}, &ParseError{Text: text}
	}

	k := Key{raw: text}
	i := 0
	for {
		start := i
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		k.components = append(k.components, text[start:i])
		if i+1 < len(text) && text[i] == '.' && isDigit(text[i+1]) {
			i++
			continue
		}
		break
	}

	if i < len(text) && text[i] >= 'a' && text[i] <= 'z' && atBoundary(text, i+1) {
		k.letter = text[i]
		i++
	}

	for i < len(text) && text[i] == '_' {
		next, s, ok := parseSuffix(text, i+1)
		if !ok {
			break
		}
		k.suffixes = append(k.suffixes, s)
		i = next
	}

	if strings.HasPrefix(text[i:], "-r") {
		j := i + 2
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j > i+2 && j == len(text) {
			k.revision = text[i+2 : j]
			i = j
		}
	}

	k.tail = text[i:]
	k.nums = trimZeroComponents(k.components)
	return k, nil
}

func parseSuffix(text string, i int) (int, Suffix, bool) {
	for _, s := range suffixNames {
		if !strings.HasPrefix(text[i:], s.name) {
			continue
		}
		j := i + len(s.name)
		start := j
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if !atBoundary(text, j) {
			continue
		}
		return j, Suffix{Kind: s.kind, Number: text[start:j]}, true
	}
	return i, Suffix{}, false
}

// atBoundary reports whether position i ends a grammar element.
func atBoundary(text string, i int) bool {
	return i == len(text) || text[i] == '_' || text[i] == '-'
}

func trimZeroComponents(components []string) []string {
	n := len(components)
	for n > 1 && strings.Trim(components[n-1], "0") == "" {
		n--
	}
	return components[:n:n]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// String returns the text the key was parsed from
func (k Key) String() string {
	return k.raw
}

// Overlay returns the provenance tag
func (k Key) Overlay() Overlay {
	return k.overlay
}

// WithOverlay returns a copy of k carrying provenance o
func (k Key) WithOverlay(o Overlay) Key {
	k.overlay = o
	return k
}

// Components returns the numeric release components as written
func (k Key) Components() []string {
	return append([]string(nil), k.components...)
}

// Letter returns the trailing letter, or 0 when absent
func (k Key) Letter() byte {
	return k.letter
}

// Suffixes returns the suffix groups in order
func (k Key) Suffixes() []Suffix {
	return append([]Suffix(nil), k.suffixes...)
}

// Revision returns the revision digits, or "0" when absent
func (k Key) Revision() string {
	if k.revision == "" {
		return "0"
	}
	return k.revision
}

// Strict reports whether the whole text matched the grammar
func (k Key) Strict() bool {
	return k.tail == ""
}

// IsZero reports whether k is the zero Key (never returned by a successful Parse)
func (k Key) IsZero() bool {
	return k.raw == ""
}

// Equal reports whether k and o compare equal. Provenance is ignored.
func (k Key) Equal(o Key) bool {
	return Compare(k, o) == 0
}

// Less reports whether k sorts before o
func (k Key) Less(o Key) bool {
	return Compare(k, o) < 0
}
