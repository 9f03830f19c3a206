package version

import (
	"cmp"
	"strings"
)

// Compare returns -1, 0 or +1 as a sorts before, equal to or after b.
// Components, letter, suffixes, revision and tail are compared in that order.
func Compare(a, b Key) int {
	if c := compareBase(a, b); c != 0 {
		return c
	}
	if c := compareNumber(a.revision, b.revision); c != 0 {
		return c
	}
	return strings.Compare(a.tail, b.tail)
}

// CompareIgnoringRevision is Compare without the revision step, used by "~" atoms
func CompareIgnoringRevision(a, b Key) int {
	if c := compareBase(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.tail, b.tail)
}

func compareBase(a, b Key) int {
	if c := compareComponents(a.nums, b.nums); c != 0 {
		return c
	}
	if c := cmp.Compare(a.letter, b.letter); c != 0 {
		return c
	}
	return compareSuffixes(a.suffixes, b.suffixes)
}

func compareComponents(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		var c int
		if i > 0 && (leadingZero(a[i]) || leadingZero(b[i])) {
			c = strings.Compare(a[i], b[i])
		} else {
			c = compareNumber(a[i], b[i])
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareSuffixes(a, b []Suffix) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		sa, sb := suffixAt(a, i), suffixAt(b, i)
		if c := cmp.Compare(sa.Kind, sb.Kind); c != 0 {
			return c
		}
		if c := compareOptionalNumber(sa.Number, sb.Number); c != 0 {
			return c
		}
	}
	return 0
}

func suffixAt(s []Suffix, i int) Suffix {
	if i < len(s) {
		return s[i]
	}
	return Suffix{Kind: SuffixNone}
}

// compareOptionalNumber sorts an absent number below any present one
func compareOptionalNumber(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return compareNumber(a, b)
}

// compareNumber compares digit strings by value without converting them
func compareNumber(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func leadingZero(s string) bool {
	return len(s) > 1 && s[0] == '0'
}
