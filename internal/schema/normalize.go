package schema

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// parenGroup matches one innermost parenthesized group plus the
	// whitespace before it, e.g. " (kPa)".
	parenGroup = regexp.MustCompile(`\s*\([^()]*\)`)

	symbolReplacer = strings.NewReplacer(
		"%", "percent",
		"°", "deg",
		"_", " ",
		"-", " ",
	)
)

// Normalize canonicalizes a raw column label for synonym lookup:
//  1. NFKC-fold compatibility forms (full-width letters, ℃, ...)
//  2. lowercase
//  3. "%" → "percent", "°" → "deg", "_" and "-" → space
//  4. drop parenthesized unit groups, e.g. "(kPa)"
//  5. collapse whitespace runs to one space and trim
//
// Normalize is idempotent.
func Normalize(label string) string {
	s := norm.NFKC.String(label)
	s = strings.ToLower(s)
	s = symbolReplacer.Replace(s)
	for {
		next := parenGroup.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}
