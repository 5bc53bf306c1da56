// Package naming turns free-text model suggestions into filesystem-safe base
// names and picks collision-free destination paths for them.
package naming

import (
	"regexp"
	"strings"
)

// MaxNameLength is the longest base name Sanitize returns.
const MaxNameLength = 100

var (
	disallowedChars = regexp.MustCompile(`[^A-Za-z0-9 _-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Sanitize strips every character outside [A-Za-z0-9 _-], collapses
// whitespace runs to a single space, trims, and truncates to MaxNameLength.
//
// An empty result is valid output; callers must treat it as a failure rather
// than substitute a placeholder.
func Sanitize(raw string) string {
	name := disallowedChars.ReplaceAllString(raw, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		// All remaining characters are ASCII, so byte truncation is safe.
		// Trim again so a cut on a space never leaves a trailing one.
		name = strings.TrimSpace(name[:MaxNameLength])
	}
	return name
}
