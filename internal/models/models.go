package models

import (
	"sort"
	"strings"
	"time"

	"github.com/wiredhikari/eix/internal/keywords"
	"github.com/wiredhikari/eix/internal/version"
)

// Overlay is one tree that was scanned. ID 0 is the primary tree.
type Overlay struct {
	ID    version.Overlay `json:"id" yaml:"id"`
	Label string          `json:"label" yaml:"label"`
	Path  string          `json:"path" yaml:"path"`
}

// Version is one release of a package. It is owned by exactly one Package.
type Version struct {
	Key         version.Key
	Slot        string
	Keywords    string
	Homepage    string
	License     string
	Description string
	Provide     string
	Stability   keywords.Stability
	HardMasked  bool
	System      bool
}

// NewVersion creates a version with no metadata
func NewVersion(key version.Key) *Version {
	return &Version{Key: key, Stability: keywords.Missing}
}

func (v *Version) SetHomepage(s string)    { v.Homepage = s }
func (v *Version) SetLicense(s string)     { v.License = s }
func (v *Version) SetDescription(s string) { v.Description = s }
func (v *Version) SetProvide(s string)     { v.Provide = s }

// IsStable reports whether the version is stable for the configured architecture
func (v *Version) IsStable() bool {
	return v.Stability == keywords.Stable
}

// IsHardMasked reports whether a package.mask entry matches the version
func (v *Version) IsHardMasked() bool {
	return v.HardMasked
}

// IsSystem reports whether the version belongs to the system set
func (v *Version) IsSystem() bool {
	return v.System
}

// SlotName returns the normalized slot
func (v *Version) SlotName() string {
	return NormalizeSlot(v.Slot)
}

// NormalizeSlot drops a sub-slot and maps the default slot "0" to ""
func NormalizeSlot(slot string) string {
	slot, _, _ = strings.Cut(slot, "/")
	if slot == "0" {
		return ""
	}
	return slot
}

// Index is the result of one scan
type Index struct {
	CreatedAt time.Time
	Overlays  []Overlay
	packages  map[string]*Package
}

// NewIndex creates an empty index over the given trees
func NewIndex(overlays []Overlay) *Index {
	return &Index{
		CreatedAt: time.Now().UTC(),
		Overlays:  overlays,
		packages:  make(map[string]*Package),
	}
}

// Add stores p, replacing any package with the same full name
func (idx *Index) Add(p *Package) {
	idx.packages[p.FullName()] = p
}

// Get returns the package category/name, or nil
func (idx *Index) Get(category, name string) *Package {
	return idx.packages[category+"/"+name]
}

// Len returns the number of packages
func (idx *Index) Len() int {
	return len(idx.packages)
}

// Packages returns all packages sorted by full name
func (idx *Index) Packages() []*Package {
	out := make([]*Package, 0, len(idx.packages))
	for _, p := range idx.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FullName() < out[j].FullName()
	})
	return out
}

// Categories returns the distinct categories in sorted order
func (idx *Index) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range idx.packages {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

// OverlayByID returns the overlay with the given id
func (idx *Index) OverlayByID(id version.Overlay) (Overlay, bool) {
	for _, o := range idx.Overlays {
		if o.ID == id {
			return o, true
		}
	}
	return Overlay{}, false
}
