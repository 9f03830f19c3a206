package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	homepage, license, description, provide string
	calls                                   []string
}

func (s *recordingSink) SetHomepage(v string) {
	s.homepage = v
	s.calls = append(s.calls, "homepage")
}

func (s *recordingSink) SetLicense(v string) {
	s.license = v
	s.calls = append(s.calls, "license")
}

func (s *recordingSink) SetDescription(v string) {
	s.description = v
	s.calls = append(s.calls, "description")
}

func (s *recordingSink) SetProvide(v string) {
	s.provide = v
	s.calls = append(s.calls, "provide")
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foo-1.0")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("line")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("\n")
	}
	return b.String()
}

// fullEntry returns a 15-line flat cache file
func fullEntry() string {
	lines := []string{
		"dev-libs/a", "dev-libs/b", "2", "mirror://foo", "test",
		"https://example.org", "GPL-2", "An example package", "amd64 ~x86",
		"eutils", "doc", "", "", "virtual/foo", "EXTRA",
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestReadSlotAndKeywords(t *testing.T) {
	path := writeFile(t, fullEntry())

	slot, keywords, err := ReadSlotAndKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, "2", slot)
	assert.Equal(t, "amd64 ~x86", keywords)
}

func TestReadSlotAndKeywords_Verbatim(t *testing.T) {
	content := "a\nb\n  0  \nd\ne\nf\ng\nh\n\t~amd64 x86 \n"
	path := writeFile(t, content)

	slot, keywords, err := ReadSlotAndKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, "  0  ", slot)
	assert.Equal(t, "\t~amd64 x86 ", keywords)
}

func TestReadSlotAndKeywords_UnterminatedLastLine(t *testing.T) {
	path := writeFile(t, "a\nb\nslot\nd\ne\nf\ng\nh\nkeywords")

	slot, keywords, err := ReadSlotAndKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, "slot", slot)
	assert.Equal(t, "keywords", keywords)
}

func TestReadSlotAndKeywords_ShortFile(t *testing.T) {
	for _, n := range []int{0, 2, 3, 8} {
		t.Run(strings.Repeat("l", n), func(t *testing.T) {
			path := writeFile(t, numberedLines(n))

			_, _, err := ReadSlotAndKeywords(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCacheIO)

			var cacheErr *Error
			require.ErrorAs(t, err, &cacheErr)
			assert.Equal(t, OpSlotKeywords, cacheErr.Op)
			assert.Equal(t, path, cacheErr.Path)
		})
	}
}

func TestReadSlotAndKeywords_MissingFile(t *testing.T) {
	_, _, err := ReadSlotAndKeywords(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadMetadata(t *testing.T) {
	path := writeFile(t, fullEntry())

	sink := &recordingSink{}
	require.NoError(t, ReadMetadata(path, sink))
	assert.Equal(t, "https://example.org", sink.homepage)
	assert.Equal(t, "GPL-2", sink.license)
	assert.Equal(t, "An example package", sink.description)
	assert.Equal(t, "virtual/foo", sink.provide)
	assert.Equal(t, []string{"homepage", "license", "description", "provide"}, sink.calls)
}

func TestReadMetadata_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		lines int
		calls []string
	}{
		{"five lines", 5, nil},
		{"six lines", 6, []string{"homepage"}},
		{"eight lines", 8, []string{"homepage", "license", "description"}},
		{"thirteen lines", 13, []string{"homepage", "license", "description"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, numberedLines(tt.lines))

			sink := &recordingSink{}
			require.NoError(t, ReadMetadata(path, sink))
			assert.Equal(t, tt.calls, sink.calls)
			assert.Empty(t, sink.provide)
		})
	}
}

func TestReadMetadata_ShortFile(t *testing.T) {
	path := writeFile(t, numberedLines(4))

	err := ReadMetadata(path, &recordingSink{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheIO)

	var cacheErr *Error
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, OpMetadata, cacheErr.Op)
}

func TestMD5DictReader(t *testing.T) {
	content := strings.Join([]string{
		"DEFINED_PHASES=compile install",
		"DESCRIPTION=A dict package",
		"HOMEPAGE=https://example.org",
		"KEYWORDS=~amd64 arm64",
		"LICENSE=MIT",
		"SLOT=0/1.2",
		"_md5_=0123456789abcdef",
	}, "\n") + "\n"
	path := writeFile(t, content)

	r := MD5DictReader{}
	slot, keywords, err := r.ReadSlotAndKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, "0/1.2", slot)
	assert.Equal(t, "~amd64 arm64", keywords)

	sink := &recordingSink{}
	require.NoError(t, r.ReadMetadata(path, sink))
	assert.Equal(t, "A dict package", sink.description)
	assert.Equal(t, "https://example.org", sink.homepage)
	assert.Equal(t, "MIT", sink.license)
	assert.Empty(t, sink.provide)
	assert.NotContains(t, sink.calls, "provide")
}

func TestMD5DictReader_Errors(t *testing.T) {
	r := MD5DictReader{}

	_, _, err := r.ReadSlotAndKeywords(writeFile(t, "DESCRIPTION=only\n"))
	assert.ErrorIs(t, err, ErrCacheIO)

	_, _, err = r.ReadSlotAndKeywords(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrCacheIO)

	err = r.ReadMetadata(filepath.Join(t.TempDir(), "missing"), &recordingSink{})
	assert.ErrorIs(t, err, ErrCacheIO)
}

func TestNewReader(t *testing.T) {
	r, err := NewReader(MethodFlat)
	require.NoError(t, err)
	assert.IsType(t, FlatReader{}, r)

	r, err = NewReader(MethodMD5Dict)
	require.NoError(t, err)
	assert.IsType(t, MD5DictReader{}, r)

	_, err = NewReader("sqlite")
	assert.Error(t, err)
}
