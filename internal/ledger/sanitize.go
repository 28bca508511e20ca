package ledger

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^\w\-.() ]`)

// Sanitize is the sole mapping from a display name to a filesystem-safe
// document key: characters outside [\w\-.() ] are stripped, then spaces
// become underscores. Idempotent.
func Sanitize(name string) string {
	return strings.ReplaceAll(unsafeChars.ReplaceAllString(name, ""), " ", "_")
}
