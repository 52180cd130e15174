package section

import (
	"strings"
	"unicode/utf8"
)

// FoldName folds a section name for case-insensitive comparison:
// leading/trailing whitespace is trimmed and the result lowercased.
// The display form of a name is always the raw string the user typed;
// folding applies only to lookups and uniqueness checks.
func FoldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CountChars returns the character count as runes (not bytes).
// This correctly handles multi-byte UTF-8 characters.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
