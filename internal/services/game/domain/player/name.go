package player

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.English)

// NormalizeName canonicalizes a display name: surrounding whitespace is
// trimmed, interior runs collapse to single spaces, and each word is
// title-cased. Lookups by name go through this so stored names stay the
// single canonical form.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return nameCaser.String(strings.ToLower(strings.Join(fields, " ")))
}
