// Package sentence splits free text into word and separator tokens and
// carries the case of an original word over to its replacement.
//
// The invariant s[t.Start:t.End] == t.Text holds for every token returned by
// Tokenize, and concatenating all token texts reconstructs the input.
//
// All functions are pure and safe for concurrent use.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one segment of a tokenized sentence. ID is the token's position
// in the sequence and identifies it in replace requests.
type Token struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	IsWord bool   `json:"is_word"`
}

// isPunct reports whether r is one of the marks that always form their own
// token.
func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '"':
		return true
	}
	return false
}

// Tokenize splits text on runs of whitespace and on individual punctuation
// marks. Everything between separators is kept as one token, classified as a
// word only when it consists of ASCII letters exclusively.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/4+1)

	emit := func(start, end int) {
		s := text[start:end]
		tokens = append(tokens, Token{
			ID:     len(tokens),
			Text:   s,
			Start:  start,
			End:    end,
			IsWord: IsWord(s),
		})
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		start := i

		switch {
		case unicode.IsSpace(r):
			i += size
			for i < len(text) {
				nr, ns := utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(nr) {
					break
				}
				i += ns
			}
		case isPunct(r):
			i += size
		default:
			i += size
			for i < len(text) {
				nr, ns := utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(nr) || isPunct(nr) {
					break
				}
				i += ns
			}
		}

		emit(start, i)
	}

	return tokens
}

// IsWord reports whether s is a non-empty run of ASCII letters.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Join concatenates token texts in order.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Words returns the lower-cased texts of the word tokens, in order. This is
// the list a client submits for batch homophone resolution.
func Words(tokens []Token) []string {
	words := make([]string, 0, len(tokens)/2+1)
	for _, t := range tokens {
		if t.IsWord {
			words = append(words, strings.ToLower(t.Text))
		}
	}
	return words
}

// FirstWordID returns the ID of the first word token, or -1 if there is none.
func FirstWordID(tokens []Token) int {
	for _, t := range tokens {
		if t.IsWord {
			return t.ID
		}
	}
	return -1
}
