// Package keywords decides how a KEYWORDS string rates for one architecture.
package keywords

import "strings"

// Stability of a version on the configured architecture, best first
type Stability int

const (
	Stable Stability = iota
	Testing
	MinusKeyword // -arch or -*
	Missing
)

var stabilityNames = [...]string{"stable", "testing", "minus-keyword", "missing"}

func (s Stability) String() string {
	if s < 0 || int(s) >= len(stabilityNames) {
		return "unknown"
	}
	return stabilityNames[s]
}

// ParseStability is the inverse of String
func ParseStability(s string) (Stability, bool) {
	for i, name := range stabilityNames {
		if name == s {
			return Stability(i), true
		}
	}
	return Missing, false
}

// Evaluate classifies keywords for arch. accept lists extra tokens that count as stable,
// the way ACCEPT_KEYWORDS does ("~amd64", "*", "~*", "**").
func Evaluate(keywords, arch string, accept []string) Stability {
	tokens := strings.Fields(keywords)
	if len(tokens) == 0 {
		return Missing
	}

	testing := "~" + arch
	result := Missing
	for _, tok := range tokens {
		switch {
		case tok == arch:
			return Stable
		case accepted(tok, accept):
			return Stable
		case tok == testing:
			result = min(result, Testing)
		case tok == "-"+arch || tok == "-*":
			result = min(result, MinusKeyword)
		}
	}
	return result
}

func accepted(tok string, accept []string) bool {
	for _, a := range accept {
		switch a {
		case tok, "**":
			return true
		case "*":
			if !strings.HasPrefix(tok, "~") && !strings.HasPrefix(tok, "-") {
				return true
			}
		case "~*":
			if strings.HasPrefix(tok, "~") {
				return true
			}
		}
	}
	return false
}
