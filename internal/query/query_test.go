package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredhikari/eix/internal/keywords"
	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/version"
)

type entry struct {
	ver     string
	overlay version.Overlay
	slot    string
	stab    keywords.Stability
	system  bool
	desc    string
	license string
}

func addPackage(t *testing.T, idx *models.Index, category, name string, entries ...entry) {
	t.Helper()
	p := models.NewPackage(category, name)
	for _, e := range entries {
		key, err := version.Parse(e.ver)
		require.NoError(t, err)
		v := models.NewVersion(key.WithOverlay(e.overlay))
		v.Slot = e.slot
		v.Stability = e.stab
		v.System = e.system
		v.Description = e.desc
		v.License = e.license
		p.Insert(v)
	}
	idx.Add(p)
}

func testIndex(t *testing.T) *models.Index {
	t.Helper()
	idx := models.NewIndex(nil)
	addPackage(t, idx, "dev-libs", "openssl",
		entry{ver: "3.0.13", slot: "0/3", stab: keywords.Stable, system: true, desc: "Robust TLS toolkit", license: "Apache-2.0"},
		entry{ver: "1.1.1w", slot: "1.1", stab: keywords.Testing, system: true, desc: "Robust TLS toolkit", license: "openssl"},
	)
	addPackage(t, idx, "dev-libs", "libfoo",
		entry{ver: "1.0", overlay: 1, stab: keywords.Testing, desc: "Foo helpers"},
		entry{ver: "1.0", overlay: 2, stab: keywords.Testing, desc: "Foo helpers"},
	)
	addPackage(t, idx, "app-misc", "tool",
		entry{ver: "2.1", stab: keywords.Stable, desc: "A TLS debugging tool", license: "MIT"},
		entry{ver: "2.1", overlay: 1, stab: keywords.Stable, desc: "A TLS debugging tool", license: "MIT"},
	)
	return idx
}

func names(pkgs []*models.Package) []string {
	out := []string{}
	for _, p := range pkgs {
		out = append(out, p.FullName())
	}
	return out
}

func TestRun(t *testing.T) {
	idx := testIndex(t)
	dupOverlays := models.DupOverlays
	dupSome := models.DupSome
	overlay2 := version.Overlay(2)

	tests := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{"everything", Criteria{}, []string{"app-misc/tool", "dev-libs/libfoo", "dev-libs/openssl"}},
		{"name pattern", Criteria{Pattern: "^lib"}, []string{"dev-libs/libfoo"}},
		{"name is case-insensitive", Criteria{Pattern: "OPENSSL"}, []string{"dev-libs/openssl"}},
		{"full name", Criteria{Pattern: "^app-misc/"}, []string{"app-misc/tool"}},
		{"description", Criteria{Pattern: "tls", Fields: []string{FieldDescription}}, []string{"app-misc/tool", "dev-libs/openssl"}},
		{"license any version", Criteria{Pattern: "^openssl$", Fields: []string{FieldLicense}}, []string{"dev-libs/openssl"}},
		{"several fields", Criteria{Pattern: "mit|foo", Fields: []string{FieldName, FieldLicense}}, []string{"app-misc/tool", "dev-libs/libfoo"}},
		{"category", Criteria{Category: "dev-libs"}, []string{"dev-libs/libfoo", "dev-libs/openssl"}},
		{"duplicates across overlays", Criteria{Duplicates: &dupOverlays}, []string{"dev-libs/libfoo"}},
		{"duplicates some", Criteria{Duplicates: &dupSome}, []string{"app-misc/tool"}},
		{"overlay", Criteria{Overlay: &overlay2}, []string{"dev-libs/libfoo"}},
		{"many slots", Criteria{SlotsMany: true}, []string{"dev-libs/openssl"}},
		{"system", Criteria{SystemOnly: true}, []string{"dev-libs/openssl"}},
		{"stable", Criteria{StableOnly: true}, []string{"app-misc/tool", "dev-libs/openssl"}},
		{"combined", Criteria{Category: "dev-libs", StableOnly: true, Pattern: "ssl"}, []string{"dev-libs/openssl"}},
		{"no match", Criteria{Pattern: "nothing-here"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(idx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestRun_Errors(t *testing.T) {
	idx := testIndex(t)

	_, err := Run(idx, Criteria{Pattern: "("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")

	_, err = Run(idx, Criteria{Pattern: "x", Fields: []string{"maintainer"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown search field")
}
