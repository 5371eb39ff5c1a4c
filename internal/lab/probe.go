// Package lab drives scripted storage exercises inside the guest and grades
// them by matching patterns against captured command output. The string
// matching is inherent to shelling out to unmodified OS tools; it stays at
// this boundary and never leaks into the VM controller or transport contracts.
package lab

import "regexp"

// TextProbe is one pass/fail assertion over captured guest output.
type TextProbe struct {
	// Description says what the probe verifies, in exercise-report language.
	Description string

	// Pattern is matched against the combined output of the step's command.
	Pattern *regexp.Regexp
}

// Probe builds a TextProbe from a pattern string. Panics on a bad pattern;
// the catalog is static, so that is a programming error.
func Probe(description, pattern string) TextProbe {
	return TextProbe{
		Description: description,
		Pattern:     regexp.MustCompile(pattern),
	}
}

// Match reports whether the probe's pattern appears in output.
func (p TextProbe) Match(output string) bool {
	return p.Pattern.MatchString(output)
}
