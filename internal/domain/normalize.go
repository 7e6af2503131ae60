package domain

import (
	"strconv"
	"strings"
)

// NormalizeWord prepares a word for index lookups: trims surrounding
// whitespace and upper-cases it. Apostrophes and hyphens are preserved.
func NormalizeWord(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

// NormalizePhonetic collapses any whitespace run inside a transcription into
// a single space so that equal phoneme sequences produce equal keys.
func NormalizePhonetic(phonetic string) string {
	return strings.Join(strings.Fields(phonetic), " ")
}

// ParseWordToken splits a dictionary word token such as "READ(1)" into its
// normalized base word and variant number. A token without a trailing
// parenthesized positive integer has a nil variant.
func ParseWordToken(token string) (string, *int) {
	token = strings.TrimSpace(token)

	open := strings.LastIndexByte(token, '(')
	if open <= 0 || !strings.HasSuffix(token, ")") {
		return NormalizeWord(token), nil
	}

	digits := token[open+1 : len(token)-1]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return NormalizeWord(token), nil
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return NormalizeWord(token), nil
	}

	return NormalizeWord(token[:open]), &n
}

// FormatDisplayForm renders the canonical display form for a base word and
// variant number, e.g. "READ(1)".
func FormatDisplayForm(baseWord string, variant *int) string {
	if variant == nil {
		return baseWord
	}
	return baseWord + "(" + strconv.Itoa(*variant) + ")"
}
