package models

import (
	"fmt"

	"github.com/wiredhikari/eix/internal/keywords"
	"github.com/wiredhikari/eix/internal/version"
)

// VersionRecord is the serialized form of a Version
type VersionRecord struct {
	Version     string          `json:"version" yaml:"version"`
	Overlay     version.Overlay `json:"overlay" yaml:"overlay"`
	Slot        string          `json:"slot,omitempty" yaml:"slot,omitempty"`
	Keywords    string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Homepage    string          `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	License     string          `json:"license,omitempty" yaml:"license,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Provide     string          `json:"provide,omitempty" yaml:"provide,omitempty"`
	Stability   string          `json:"stability" yaml:"stability"`
	HardMasked  bool            `json:"hard_masked,omitempty" yaml:"hard_masked,omitempty"`
	System      bool            `json:"system,omitempty" yaml:"system,omitempty"`
}

// PackageRecord is the serialized form of a Package. The derived fields are
// informational; ToPackage recomputes them from the versions.
type PackageRecord struct {
	Category  string          `json:"category" yaml:"category"`
	Name      string          `json:"name" yaml:"name"`
	Versions  []VersionRecord `json:"versions" yaml:"versions"`
	Duplicate string          `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Slots     string          `json:"slots,omitempty" yaml:"slots,omitempty"`
	System    bool            `json:"system,omitempty" yaml:"system,omitempty"`
	Best      string          `json:"best,omitempty" yaml:"best,omitempty"`
}

// ToRecord converts a Version to a VersionRecord
func (v *Version) ToRecord() VersionRecord {
	return VersionRecord{
		Version:     v.Key.String(),
		Overlay:     v.Key.Overlay(),
		Slot:        v.Slot,
		Keywords:    v.Keywords,
		Homepage:    v.Homepage,
		License:     v.License,
		Description: v.Description,
		Provide:     v.Provide,
		Stability:   v.Stability.String(),
		HardMasked:  v.HardMasked,
		System:      v.System,
	}
}

// ToVersion parses the record back into a Version
func (r VersionRecord) ToVersion() (*Version, error) {
	key, err := version.Parse(r.Version)
	if err != nil {
		return nil, err
	}
	stability, ok := keywords.ParseStability(r.Stability)
	if !ok {
		return nil, fmt.Errorf("version %s: unknown stability %q", r.Version, r.Stability)
	}
	return &Version{
		Key:         key.WithOverlay(r.Overlay),
		Slot:        r.Slot,
		Keywords:    r.Keywords,
		Homepage:    r.Homepage,
		License:     r.License,
		Description: r.Description,
		Provide:     r.Provide,
		Stability:   stability,
		HardMasked:  r.HardMasked,
		System:      r.System,
	}, nil
}

// ToRecord converts a Package to a PackageRecord
func (p *Package) ToRecord() PackageRecord {
	rec := PackageRecord{
		Category:  p.Category,
		Name:      p.Name,
		Versions:  make([]VersionRecord, len(p.versions)),
		Duplicate: p.dupStatus.String(),
		Slots:     p.slotStatus.String(),
		System:    p.isSystem,
	}
	for i, v := range p.versions {
		rec.Versions[i] = v.ToRecord()
	}
	if best := p.BestVisible(); best != nil {
		rec.Best = best.Key.String()
	}
	return rec
}

// ToPackage rebuilds a Package by inserting every version
func (r PackageRecord) ToPackage() (*Package, error) {
	if err := ValidateCategory(r.Category); err != nil {
		return nil, err
	}
	if err := ValidatePackageName(r.Name); err != nil {
		return nil, err
	}
	p := NewPackage(r.Category, r.Name)
	for _, vr := range r.Versions {
		v, err := vr.ToVersion()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.FullName(), err)
		}
		p.Insert(v)
	}
	return p, nil
}
