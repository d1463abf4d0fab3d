package dataset

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Normalize trims whitespace and lowercases a trigger phrase. Every trigger
// comparison in the system goes through this so that registration, the merge
// pipeline and the matcher agree on equality. Lowercasing, not full case
// folding: folding rewrites letters ("Straße" to "strasse") into forms the
// case-insensitive matcher can no longer find in live messages.
func Normalize(s string) string {
	return lower.String(strings.TrimSpace(s))
}
