// Package sanitizer normalizes free-text input before it reaches
// validation and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize collapses internal whitespace runs to single spaces and
// strips leading/trailing whitespace.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeUsername lowercases and trims a username so lookups are
// case-insensitive.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StripControl removes non-printable control characters that have no place
// in user-visible text such as issue descriptions and feedback messages.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// CleanText is the standard pipeline for multi-line user text.
func CleanText(s string) string {
	return strings.TrimSpace(StripControl(s))
}
