package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a maximal run of either word or separator characters
type Token struct {
	Text string
	Word bool
}

// Tokenize splits text at every word/non-word boundary. Concatenating the
// returned tokens reproduces text exactly.
func Tokenize(text string) []Token {
	if text == "" {
		return []Token{}
	}

	tokens := make([]Token, 0, len(text)/3+1)
	start := 0
	inWord := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		word := r != utf8.RuneError && IsWordRune(r)

		if i == 0 {
			inWord = word
		} else if word != inWord {
			tokens = append(tokens, Token{Text: text[start:i], Word: inWord})
			start = i
			inWord = word
		}
		i += size
	}

	tokens = append(tokens, Token{Text: text[start:], Word: inWord})
	return tokens
}

// Join concatenates token texts in order
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// IsWordRune reports whether r belongs inside a word token: letters, digits
// and apostrophes.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’'
}

// SplitWhitespace splits text into alternating whitespace and non-whitespace
// runs. Used by the diff engine, which aligns on spacing rather than word
// characters.
func SplitWhitespace(text string) []string {
	if text == "" {
		return []string{}
	}

	var parts []string
	start := 0
	inSpace := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			parts = append(parts, text[start:i])
			start = i
			inSpace = space
		}
	}

	return append(parts, text[start:])
}
