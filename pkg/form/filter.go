package form

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

// InputFilter rewrites raw input before it is stored in a session, the way a
// keystroke handler would.
type InputFilter func(string) string

// Chain applies filters left to right.
func Chain(filters ...InputFilter) InputFilter {
	return func(s string) string {
		for _, f := range filters {
			if f != nil {
				s = f(s)
			}
		}
		return s
	}
}

// DigitsOnly drops non-digits and truncates to max characters when max > 0.
func DigitsOnly(max int) InputFilter {
	return func(s string) string {
		var b strings.Builder
		count := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				continue
			}
			if max > 0 && count == max {
				break
			}
			b.WriteRune(r)
			count++
		}
		return b.String()
	}
}

// StripLeadingZeros removes leading zeros, so "05" becomes "5" and "0"
// becomes "".
func StripLeadingZeros(s string) string {
	return strings.TrimLeft(s, "0")
}

// LettersOnly drops characters outside the name alphabet.
func LettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			return r
		case r == ' ':
			return r
		case strings.ContainsRune(validation.NameAlphabet, r):
			return r
		default:
			return -1
		}
	}, s)
}

// DecimalInput keeps digits and the first dot.
func DecimalInput(s string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaxRunes truncates input to n characters.
func MaxRunes(n int) InputFilter {
	return func(s string) string {
		if n <= 0 {
			return s
		}
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n])
	}
}
