// Package query selects packages from a finished index.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/version"
)

// Fields a pattern can be matched against
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldHomepage    = "homepage"
	FieldLicense     = "license"
	FieldProvide     = "provide"
)

// AllFields lists every searchable field
var AllFields = []string{FieldName, FieldDescription, FieldHomepage, FieldLicense, FieldProvide}

// Criteria is a conjunction of filters. Zero values match everything.
type Criteria struct {
	Pattern    string // case-insensitive regular expression
	Fields     []string
	Category   string
	Duplicates *models.DuplicateStatus
	Overlay    *version.Overlay
	SlotsMany  bool
	SystemOnly bool
	StableOnly bool
}

type matcher struct {
	re     *regexp.Regexp
	fields []string
	c      Criteria
}

func compile(c Criteria) (*matcher, error) {
	m := &matcher{c: c, fields: c.Fields}
	if len(m.fields) == 0 {
		m.fields = []string{FieldName}
	}
	for _, f := range m.fields {
		if !isField(f) {
			return nil, fmt.Errorf("unknown search field %q (valid: %s)", f, strings.Join(AllFields, ", "))
		}
	}
	if c.Pattern != "" {
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		m.re = re
	}
	return m, nil
}

func isField(f string) bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// Run returns the packages of idx matching c, sorted by full name
func Run(idx *models.Index, c Criteria) ([]*models.Package, error) {
	m, err := compile(c)
	if err != nil {
		return nil, err
	}
	var out []*models.Package
	for _, p := range idx.Packages() {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *matcher) match(p *models.Package) bool {
	c := m.c
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Duplicates != nil && p.DuplicateStatus() != *c.Duplicates {
		return false
	}
	if c.Overlay != nil && !p.HasOverlay(*c.Overlay) {
		return false
	}
	if c.SlotsMany && p.SlotStatus() != models.SlotsMany {
		return false
	}
	if c.SystemOnly && !p.IsSystemPackage() {
		return false
	}
	if c.StableOnly && p.BestVisible() == nil {
		return false
	}
	return m.re == nil || m.matchText(p)
}

func (m *matcher) matchText(p *models.Package) bool {
	for _, f := range m.fields {
		if f == FieldName {
			if m.re.MatchString(p.Name) || m.re.MatchString(p.FullName()) {
				return true
			}
			continue
		}
		for _, v := range p.Versions() {
			if m.re.MatchString(versionField(v, f)) {
				return true
			}
		}
	}
	return false
}

func versionField(v models.Version, field string) string {
	switch field {
	case FieldDescription:
		return v.Description
	case FieldHomepage:
		return v.Homepage
	case FieldLicense:
		return v.License
	case FieldProvide:
		return v.Provide
	}
	return ""
}
