package model

import (
	"strings"
	"unicode/utf8"
)

// TruncateAtSentence shortens text to at most max bytes, preferring to cut
// after a sentence end, then before a comma, then at a word boundary with an
// ellipsis. It returns "" when text is too short to be meaningful or no
// reasonable cut point exists.
func TruncateAtSentence(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) < 10 {
		return ""
	}
	if len(text) <= max {
		return text
	}

	cut := Truncate(text, max)

	boundary := -1
	for _, end := range []string{". ", "! ", "? "} {
		if pos := strings.LastIndex(cut, end); pos >= 0 && pos+1 > boundary {
			boundary = pos + 1
		}
	}
	if boundary > 20 {
		return strings.TrimSpace(cut[:boundary])
	}

	if pos := strings.LastIndex(cut, ", "); pos > 30 {
		return strings.TrimSpace(cut[:pos])
	}

	if pos := strings.LastIndex(cut, " "); pos > 30 {
		return strings.TrimSpace(cut[:pos]) + "..."
	}

	return ""
}

// Truncate cuts text to at most max bytes without splitting a UTF-8
// sequence.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}
