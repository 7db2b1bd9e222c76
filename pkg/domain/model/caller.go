package model

import (
	"regexp"
	"strings"
	"unicode"
)

// CallerID is the normalized caller handle used as the user id in the memory
// engine. For phone calls it is an E.164 number.
type CallerID string

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// NormalizeCallerID converts a raw caller id into its canonical form. The
// conversion is total: any input yields a CallerID, and formatting variants of
// the same number yield the same CallerID.
func NormalizeCallerID(raw string) CallerID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	hasLetter := false
	for _, r := range s {
		switch {
		case r == ' ', r == '-', r == '.', r == '(', r == ')', r == '/', r == '\t':
			continue
		case unicode.IsLetter(r):
			hasLetter = true
		}
		b.WriteRune(r)
	}
	compact := b.String()

	// SIP handles, "anonymous" and the like are kept as opaque handles
	if hasLetter {
		return CallerID(strings.ToLower(strings.TrimSpace(raw)))
	}

	if strings.HasPrefix(compact, "00") {
		compact = "+" + compact[2:]
	}

	if strings.HasPrefix(compact, "+") {
		return CallerID(compact)
	}

	if !isDigits(compact) {
		return CallerID(compact)
	}

	switch {
	case len(compact) == 10:
		return CallerID("+1" + compact)
	default:
		return CallerID("+" + compact)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsE164 reports whether the id is a valid E.164 phone number
func (c CallerID) IsE164() bool {
	return e164Pattern.MatchString(string(c))
}

// String returns the string representation of the caller id
func (c CallerID) String() string {
	return string(c)
}
