// Package output renders packages for the terminal as a table, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wiredhikari/eix/internal/models"
)

// Format selects a renderer
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: table, json, yaml)", s)
}

// Summary is one line of a search result
type Summary struct {
	Package     string `json:"package" yaml:"package"`
	Best        string `json:"best,omitempty" yaml:"best,omitempty"`
	Latest      string `json:"latest" yaml:"latest"`
	Slots       string `json:"slots" yaml:"slots"`
	Duplicates  string `json:"duplicates" yaml:"duplicates"`
	System      bool   `json:"system" yaml:"system"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Summarize condenses a package into one Summary
func Summarize(p *models.Package) Summary {
	s := Summary{
		Package:    p.FullName(),
		Slots:      p.SlotStatus().String(),
		Duplicates: p.DuplicateStatus().String(),
		System:     p.IsSystemPackage(),
	}
	if latest := p.Latest(); latest != nil {
		s.Latest = latest.Key.String()
		s.Description = latest.Description
	}
	if best := p.BestVisible(); best != nil {
		s.Best = best.Key.String()
	}
	return s
}

// Summaries summarizes each package
func Summaries(pkgs []*models.Package) []Summary {
	out := make([]Summary, len(pkgs))
	for i, p := range pkgs {
		out[i] = Summarize(p)
	}
	return out
}

// WritePackages renders a search result
func WritePackages(w io.Writer, format Format, pkgs []*models.Package) error {
	return WriteSummaries(w, format, Summaries(pkgs))
}

// WriteSummaries renders search results that were already summarized,
// such as those returned by a remote server
func WriteSummaries(w io.Writer, format Format, summaries []Summary) error {
	if summaries == nil {
		summaries = []Summary{}
	}
	switch format {
	case FormatJSON:
		return WriteJSON(w, summaries, nil)
	case FormatYAML:
		return WriteYAML(w, summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No matches found")
		return nil
	}
	table := NewTableWriter(w)
	table.WriteHeader("PACKAGE", "BEST", "LATEST", "SLOTS", "DUP", "DESCRIPTION")
	for _, s := range summaries {
		table.WriteRow(s.Package, orDash(s.Best), s.Latest, s.Slots, s.Duplicates, s.Description)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nFound %d matches\n", len(summaries))
	return nil
}

// WritePackage renders every version of one package. labels maps overlay ids
// to display names; ids without a label print as numbers.
func WritePackage(w io.Writer, format Format, p *models.Package, labels map[int]string) error {
	record := p.ToRecord()
	switch format {
	case FormatJSON:
		return WriteJSON(w, record, nil)
	case FormatYAML:
		return WriteYAML(w, record)
	}

	fmt.Fprintf(w, "%s\n", p.FullName())
	if latest := p.Latest(); latest != nil {
		if latest.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", latest.Description)
		}
		if latest.Homepage != "" {
			fmt.Fprintf(w, "  Homepage:    %s\n", latest.Homepage)
		}
		if latest.License != "" {
			fmt.Fprintf(w, "  License:     %s\n", latest.License)
		}
	}
	fmt.Fprintf(w, "  Best:        %s\n", orDash(record.Best))
	fmt.Fprintf(w, "  Slots:       %s\n", record.Slots)
	fmt.Fprintf(w, "  Duplicates:  %s\n", record.Duplicate)
	fmt.Fprintln(w)

	table := NewTableWriter(w)
	table.WriteHeader("VERSION", "SLOT", "OVERLAY", "STABILITY", "FLAGS")
	for _, v := range record.Versions {
		var flags []string
		if v.HardMasked {
			flags = append(flags, "masked")
		}
		if v.System {
			flags = append(flags, "system")
		}
		overlay := strconv.Itoa(int(v.Overlay))
		if label, ok := labels[int(v.Overlay)]; ok && label != "" {
			overlay = label
		}
		table.WriteRow(v.Version, orDash(v.Slot), overlay, v.Stability, orDash(strings.Join(flags, ",")))
	}
	return table.Flush()
}

// BestVersion is the rendering of a best-version lookup
type BestVersion struct {
	Package string               `json:"package" yaml:"package"`
	Version models.VersionRecord `json:"version" yaml:"version"`
}

// WriteBest renders the best visible version of fullName
func WriteBest(w io.Writer, format Format, fullName string, v *models.Version, labels map[int]string) error {
	best := BestVersion{Package: fullName, Version: v.ToRecord()}
	switch format {
	case FormatJSON:
		return WriteJSON(w, best, nil)
	case FormatYAML:
		return WriteYAML(w, best)
	}
	overlay := strconv.Itoa(int(best.Version.Overlay))
	if label, ok := labels[int(best.Version.Overlay)]; ok && label != "" {
		overlay = label
	}
	_, err := fmt.Fprintf(w, "%s-%s::%s\n", fullName, best.Version.Version, overlay)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
