// Package mask parses package atoms and the profile lists built from them.
package mask

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/version"
)

// ErrInvalidAtom is returned for text that is not a package atom
var ErrInvalidAtom = errors.New("invalid atom")

// Op is the version comparison of an atom
type Op int

const (
	OpAny          Op = iota // no version given
	OpEqual                  // =
	OpGreaterEqual           // >=
	OpLessEqual              // <=
	OpGreater                // >
	OpLess                   // <
	OpTilde                  // ~, equal ignoring revision
)

// longest first so ">=" is not read as ">"
var opPrefixes = []struct {
	text string
	op   Op
}{
	{">=", OpGreaterEqual},
	{"<=", OpLessEqual},
	{">", OpGreater},
	{"<", OpLess},
	{"=", OpEqual},
	{"~", OpTilde},
}

// Atom selects versions of one package: [op]category/name[-version][*][:slot]
type Atom struct {
	Op       Op
	Category string
	Name     string
	Version  version.Key // zero when Op is OpAny
	Wildcard bool        // "=cat/pkg-1.2*"
	Slot     string      // normalized; empty means any slot
	HasSlot  bool
	text     string
}

func (a Atom) String() string {
	return a.text
}

// ParseAtom parses one atom
func ParseAtom(s string) (Atom, error) {
	a := Atom{text: s}
	rest := s

	for _, p := range opPrefixes {
		if strings.HasPrefix(rest, p.text) {
			a.Op = p.op
			rest = rest[len(p.text):]
			break
		}
	}

	if i := strings.IndexByte(rest, ':'); i >= 0 {
		a.Slot = models.NormalizeSlot(rest[i+1:])
		a.HasSlot = true
		rest = rest[:i]
	}

	category, pv, ok := strings.Cut(rest, "/")
	if !ok {
		return Atom{}, fmt.Errorf("%w %q: missing category", ErrInvalidAtom, s)
	}
	if err := models.ValidateCategory(category); err != nil {
		return Atom{}, fmt.Errorf("%w %q: %v", ErrInvalidAtom, s, err)
	}
	a.Category = category

	if a.Op == OpAny {
		if err := models.ValidatePackageName(pv); err != nil {
			return Atom{}, fmt.Errorf("%w %q: %v", ErrInvalidAtom, s, err)
		}
		a.Name = pv
		return a, nil
	}

	if strings.HasSuffix(pv, "*") {
		if a.Op != OpEqual {
			return Atom{}, fmt.Errorf("%w %q: wildcard needs the = operator", ErrInvalidAtom, s)
		}
		a.Wildcard = true
		pv = strings.TrimSuffix(pv, "*")
	}

	name, key, err := version.SplitPackageVersion(pv)
	if err != nil {
		return Atom{}, fmt.Errorf("%w %q: %v", ErrInvalidAtom, s, err)
	}
	if err := models.ValidatePackageName(name); err != nil {
		return Atom{}, fmt.Errorf("%w %q: %v", ErrInvalidAtom, s, err)
	}
	a.Name = name
	a.Version = key
	return a, nil
}

// Match reports whether the atom selects the given version
func (a Atom) Match(category, name string, key version.Key, slot string) bool {
	if a.Category != category || a.Name != name {
		return false
	}
	if a.HasSlot && a.Slot != models.NormalizeSlot(slot) {
		return false
	}

	switch a.Op {
	case OpAny:
		return true
	case OpEqual:
		if a.Wildcard {
			return strings.HasPrefix(key.String(), a.Version.String())
		}
		return version.Compare(key, a.Version) == 0
	case OpTilde:
		return version.CompareIgnoringRevision(key, a.Version) == 0
	case OpGreater:
		return version.Compare(key, a.Version) > 0
	case OpGreaterEqual:
		return version.Compare(key, a.Version) >= 0
	case OpLess:
		return version.Compare(key, a.Version) < 0
	case OpLessEqual:
		return version.Compare(key, a.Version) <= 0
	}
	return false
}
