package models

import (
	"fmt"

	"github.com/wiredhikari/eix/internal/version"
)

// DuplicateStatus says whether a package holds versions that compare equal.
// Values are ordered; the status only ever rises.
type DuplicateStatus int

const (
	DupNone DuplicateStatus = iota
	DupSome
	DupOverlays // equal versions from two different overlays
)

var duplicateNames = [...]string{"none", "some", "overlays"}

func (d DuplicateStatus) String() string {
	if d < 0 || int(d) >= len(duplicateNames) {
		return fmt.Sprintf("DuplicateStatus(%d)", int(d))
	}
	return duplicateNames[d]
}

// ParseDuplicateStatus is the inverse of String
func ParseDuplicateStatus(s string) (DuplicateStatus, error) {
	for i, name := range duplicateNames {
		if name == s {
			return DuplicateStatus(i), nil
		}
	}
	return DupNone, fmt.Errorf("unknown duplicate status %q", s)
}

// SlotStatus says how many distinct slots a package uses
type SlotStatus int

const (
	SlotsNone SlotStatus = iota // every version in the default slot
	SlotsSingle
	SlotsMany
)

var slotNames = [...]string{"none", "single", "many"}

func (s SlotStatus) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return fmt.Sprintf("SlotStatus(%d)", int(s))
	}
	return slotNames[s]
}

// Package is the ordered set of versions of one category/name.
// It is not safe for concurrent use; one goroutine builds it.
type Package struct {
	Category string
	Name     string

	versions []*Version // ascending by key, provenance ignored

	dupStatus          DuplicateStatus
	slotStatus         SlotStatus
	slot               string // normalized slot of the first version
	sameOverlayKey     bool
	atLeastTwoOverlays bool
	largestOverlay     version.Overlay
	isSystem           bool
}

// NewPackage creates an empty package
func NewPackage(category, name string) *Package {
	return &Package{Category: category, Name: name}
}

// FullName returns "category/name"
func (p *Package) FullName() string {
	return p.Category + "/" + p.Name
}

// Insert adds v, taking ownership of it, and updates the derived flags.
func (p *Package) Insert(v *Version) {
	p.checkDuplicates(v)

	pos := len(p.versions)
	for i, existing := range p.versions {
		if version.Compare(existing.Key, v.Key) > 0 {
			pos = i
			break
		}
	}
	p.versions = append(p.versions, nil)
	copy(p.versions[pos+1:], p.versions[pos:])
	p.versions[pos] = v

	p.addFinalize(v)
}

func (p *Package) addFinalize(v *Version) {
	overlay := v.Key.Overlay()
	slot := v.SlotName()

	if len(p.versions) == 1 {
		p.largestOverlay = overlay
		p.slot = slot
		p.slotStatus = SlotsNone
		if slot != "" {
			p.slotStatus = SlotsSingle
		}
		p.sameOverlayKey = true
		p.atLeastTwoOverlays = false
		p.isSystem = v.IsSystem()
		return
	}

	if overlay != p.largestOverlay {
		p.sameOverlayKey = false
		if overlay != 0 && p.largestOverlay != 0 {
			p.atLeastTwoOverlays = true
		}
		if overlay > p.largestOverlay {
			p.largestOverlay = overlay
		}
	}
	if p.slotStatus != SlotsMany && slot != p.slot {
		p.slotStatus = SlotsMany
	}
	p.isSystem = p.isSystem && v.IsSystem()
}

// checkDuplicates compares v against the versions already present
func (p *Package) checkDuplicates(v *Version) {
	if p.dupStatus == DupOverlays {
		return
	}
	overlay := v.Key.Overlay()
	for _, existing := range p.versions {
		if !existing.Key.Equal(v.Key) {
			continue
		}
		other := existing.Key.Overlay()
		if overlay != 0 && other != 0 && overlay != other {
			p.dupStatus = DupOverlays
			return
		}
		p.dupStatus = DupSome
	}
}

// BestVisible returns a copy of the highest stable version that is not hard-masked, or nil
func (p *Package) BestVisible() *Version {
	for i := len(p.versions) - 1; i >= 0; i-- {
		v := p.versions[i]
		if v.IsStable() && !v.IsHardMasked() {
			c := *v
			return &c
		}
	}
	return nil
}

// Latest returns a copy of the highest version, or nil for an empty package
func (p *Package) Latest() *Version {
	if len(p.versions) == 0 {
		return nil
	}
	c := *p.versions[len(p.versions)-1]
	return &c
}

// DeepCopy returns a package that shares no Version with p
func (p *Package) DeepCopy() *Package {
	c := *p
	c.versions = make([]*Version, len(p.versions))
	for i, v := range p.versions {
		dup := *v
		c.versions[i] = &dup
	}
	return &c
}

// Len returns the number of versions
func (p *Package) Len() int {
	return len(p.versions)
}

// Versions returns copies of the versions in ascending order
func (p *Package) Versions() []Version {
	out := make([]Version, len(p.versions))
	for i, v := range p.versions {
		out[i] = *v
	}
	return out
}

func (p *Package) DuplicateStatus() DuplicateStatus { return p.dupStatus }
func (p *Package) SlotStatus() SlotStatus           { return p.slotStatus }
func (p *Package) SameOverlayKey() bool             { return p.sameOverlayKey }
func (p *Package) AtLeastTwoOverlays() bool         { return p.atLeastTwoOverlays }
func (p *Package) LargestOverlay() version.Overlay  { return p.largestOverlay }
func (p *Package) IsSystemPackage() bool            { return p.isSystem }

// HasOverlay reports whether any version came from overlay id
func (p *Package) HasOverlay(id version.Overlay) bool {
	for _, v := range p.versions {
		if v.Key.Overlay() == id {
			return true
		}
	}
	return false
}
