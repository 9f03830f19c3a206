package mask

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wiredhikari/eix/internal/version"
)

// List is a set of atoms indexed by category/name
type List struct {
	atoms map[string][]Atom
	n     int
}

// NewList creates an empty list
func NewList() *List {
	return &List{atoms: make(map[string][]Atom)}
}

// Add appends an atom
func (l *List) Add(a Atom) {
	key := a.Category + "/" + a.Name
	l.atoms[key] = append(l.atoms[key], a)
	l.n++
}

// Len returns the number of atoms
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.n
}

// Match reports whether any atom selects the version. A nil list matches nothing.
func (l *List) Match(category, name string, key version.Key, slot string) bool {
	if l == nil {
		return false
	}
	for _, a := range l.atoms[category+"/"+name] {
		if a.Match(category, name, key, slot) {
			return true
		}
	}
	return false
}

// LineFilter turns a raw line into atom text; ok=false skips the line
type LineFilter func(line string) (atom string, ok bool)

// MaskLine accepts every non-comment line (package.mask)
func MaskLine(line string) (string, bool) {
	return line, true
}

// SystemLine accepts only "*atom" lines (packages) and strips the star
func SystemLine(line string) (string, bool) {
	if !strings.HasPrefix(line, "*") {
		return "", false
	}
	return line[1:], true
}

// Read parses atoms from r into the list. name labels errors. Bad lines are
// reported together and do not stop the read.
func (l *List) Read(r io.Reader, name string, filter LineFilter) error {
	var errs []error
	sc := bufio.NewScanner(r)
	lineNr := 0
	for sc.Scan() {
		lineNr++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		text, ok := filter(line)
		if !ok {
			continue
		}
		a, err := ParseAtom(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", name, lineNr, err))
			continue
		}
		l.Add(a)
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(errs...)
}

// LoadFiles reads every file into a new list. Missing files are skipped.
func LoadFiles(paths []string, filter LineFilter) (*List, error) {
	l := NewList()
	var errs []error
	for _, path := range paths {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := l.Read(f, path, filter); err != nil {
			errs = append(errs, err)
		}
		f.Close()
	}
	return l, errors.Join(errs...)
}

// Set holds the profile lists a scan applies to each version
type Set struct {
	Hard   *List // package.mask
	System *List // "*" entries of packages
}

// LoadSet loads hard masks and the system set
func LoadSet(maskFiles, packagesFiles []string) (*Set, error) {
	hard, hardErr := LoadFiles(maskFiles, MaskLine)
	system, sysErr := LoadFiles(packagesFiles, SystemLine)
	return &Set{Hard: hard, System: system}, errors.Join(hardErr, sysErr)
}

// IsHardMasked reports whether a package.mask atom selects the version
func (s *Set) IsHardMasked(category, name string, key version.Key, slot string) bool {
	return s != nil && s.Hard.Match(category, name, key, slot)
}

// IsSystem reports whether the version is in the system set
func (s *Set) IsSystem(category, name string, key version.Key, slot string) bool {
	return s != nil && s.System.Match(category, name, key, slot)
}
