package config

import (
	"log/slog"
	"strings"
)

// Redundant is a bit set of keyword-redundancy checks
type Redundant uint16

const (
	RedDouble Redundant = 1 << iota
	RedDoubleLine
	RedMixed
	RedWeaker
	RedStrange
	RedNoChange
	RedInMask
	RedInUnmask
	RedDoubleMasked
	RedDoubleUnmasked
)

// RedundancyType documents one check and its config key under "redundant."
type RedundancyType struct {
	Key         string
	Type        Redundant
	Default     string
	Description string
}

// RedundancyTypes lists every check in bit order
var RedundancyTypes = []RedundancyType{
	{"double", RedDouble, "some", "Keyword entries repeated for the same package"},
	{"double_line", RedDoubleLine, "some", "Two lines with the same atom"},
	{"mixed", RedMixed, "some", "Stable and testing keyword on one line"},
	{"weaker", RedWeaker, "all-installed", "Entry weaker than another entry for the package"},
	{"strange", RedStrange, "some", "Keyword no version carries"},
	{"no_change", RedNoChange, "all-installed", "Entry that changes nothing"},
	{"in_mask", RedInMask, "some", "Entry already masked"},
	{"in_unmask", RedInUnmask, "some", "Entry already unmasked"},
	{"double_masked", RedDoubleMasked, "some", "Masked version masked twice"},
	{"double_unmasked", RedDoubleUnmasked, "some", "Unmasked version unmasked twice"},
}

// RedundantFlags are the resolved redundancy settings.
// Red: check enabled; All: require all versions; Spc: restrict by installed state;
// Ins: the restriction is "installed" (otherwise "uninstalled").
type RedundantFlags struct {
	Red Redundant
	All Redundant
	Spc Redundant
	Ins Redundant
}

// Apply sets the bits of t according to a policy value. It returns false when the
// value is unknown, in which case all-installed is assumed.
func (f *RedundantFlags) Apply(value string, t Redundant) bool {
	switch strings.ToLower(value) {
	case "no", "false":
		f.Red &^= t
	case "some":
		f.Red |= t
		f.All &^= t
		f.Spc &^= t
	case "some-installed":
		f.Red |= t
		f.All &^= t
		f.Spc |= t
		f.Ins |= t
	case "some-uninstalled":
		f.Red |= t
		f.All &^= t
		f.Spc |= t
		f.Ins &^= t
	case "all":
		f.Red |= t
		f.All |= t
		f.Spc &^= t
	case "all-installed":
		f.Red |= t
		f.All |= t
		f.Spc |= t
		f.Ins |= t
	case "all-uninstalled":
		f.Red |= t
		f.All |= t
		f.Spc |= t
		f.Ins &^= t
	default:
		f.Red |= t
		f.All |= t
		f.Spc |= t
		f.Ins |= t
		return false
	}
	return true
}

// Policy renders the bits of t back to a policy value
func (f RedundantFlags) Policy(t Redundant) string {
	if f.Red&t == 0 {
		return "no"
	}
	base := "some"
	if f.All&t != 0 {
		base = "all"
	}
	if f.Spc&t == 0 {
		return base
	}
	if f.Ins&t != 0 {
		return base + "-installed"
	}
	return base + "-uninstalled"
}

// RedundantFlags resolves the redundant.* settings. Unknown values are logged.
func (c *Config) RedundantFlags(logger *slog.Logger) RedundantFlags {
	var f RedundantFlags
	for _, r := range RedundancyTypes {
		value, ok := c.Redundant[r.Key]
		if !ok {
			value = r.Default
		}
		if !f.Apply(value, r.Type) {
			logger.Warn("Unknown redundancy policy, assuming all-installed",
				"key", "redundant."+r.Key,
				"value", value)
		}
	}
	return f
}
