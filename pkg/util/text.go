package util

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// CleanText collapses whitespace runs and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes cuts s to at most max runes, preferring to end on a
// sentence boundary when one exists past minKeep runes.
func TruncateRunes(s string, max, minKeep int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	trimmed := string(runes[:max])
	if idx := strings.LastIndex(trimmed, ". "); idx > minKeep {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

// FirstNonEmpty returns the first non-empty string after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ResolveURL resolves href against base, returning href unchanged when it
// is already absolute and "" when nothing sensible can be built.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(u).String()
}
