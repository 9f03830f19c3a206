package version

import "fmt"

// SplitPackageVersion splits "name-1.2-r1" into its name and parsed version.
// The version starts at the leftmost "-<digit>" whose remainder parses strictly.
func SplitPackageVersion(pv string) (string, Key, error) {
	for i := 1; i+1 < len(pv); i++ {
		if pv[i] != '-' || !isDigit(pv[i+1]) {
			continue
		}
		k, err := Parse(pv[i+1:])
		if err == nil && k.Strict() {
			return pv[:i], k, nil
		}
	}
	return "", Key{}, fmt.Errorf("%w: no version in %q", ErrMalformed, pv)
}
