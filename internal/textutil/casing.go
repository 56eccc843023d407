package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PreserveCase returns correction cased like original: all upper, first
// letter upper, or all lower. The all-upper check runs first so a single
// capital such as "I" stays upper case.
func PreserveCase(original, correction string) string {
	if isAllUpper(original) {
		return strings.ToUpper(correction)
	}

	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		return capitalize(correction)
	}

	return strings.ToLower(correction)
}

// isAllUpper reports whether s has at least one letter and no lower case
// letters
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
