package sentence

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ApplyCase returns replacement cased after original. tokens and originalID
// locate original in its sentence: a lone "I" keeps a capital only when it
// is the first word of the sentence, otherwise the replacement is lowered.
// Other originals map as follows: ALL CAPS (two or more characters) gives
// ALL CAPS, a leading capital gives a capitalized replacement, anything
// else gives lower case. Empty inputs return replacement unchanged.
func ApplyCase(original, replacement string, tokens []Token, originalID int) string {
	if original == "" || replacement == "" {
		return replacement
	}

	// Casers are stateful, so each call gets its own.
	lower := cases.Lower(language.English).String(replacement)

	if original == "I" {
		if isFirstWord(tokens, original, originalID) {
			return capitalize(lower)
		}
		return lower
	}

	upper := cases.Upper(language.English)
	if utf8.RuneCountInString(original) > 1 && upper.String(original) == original {
		return upper.String(lower)
	}

	first, size := utf8.DecodeRuneInString(original)
	if upper.String(original[:size]) == string(first) {
		return capitalize(lower)
	}

	return lower
}

// isFirstWord reports whether the token with the given id has text and is
// the first word token of the sequence.
func isFirstWord(tokens []Token, text string, id int) bool {
	for _, t := range tokens {
		if t.ID == id && t.Text == text {
			return t.ID == FirstWordID(tokens)
		}
	}
	return false
}

// capitalize upper-cases the first rune of an already lower-cased string.
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.English).String(s[:size]) + s[size:]
}

// Replace rebuilds the sentence with the word token id swapped for
// replacement, cased after the word it replaces. ok is false when id does
// not name a word token.
func Replace(tokens []Token, id int, replacement string) (string, bool) {
	if id < 0 || id >= len(tokens) || !tokens[id].IsWord {
		return "", false
	}

	var b strings.Builder
	for _, t := range tokens {
		if t.ID == id {
			b.WriteString(ApplyCase(t.Text, replacement, tokens, id))
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String(), true
}
