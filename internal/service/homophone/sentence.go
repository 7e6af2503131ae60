package homophone

import (
	"strings"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/sentence"
)

// ReplaceResult is the sentence after a word substitution, retokenized.
type ReplaceResult struct {
	Text   string           `json:"text"`
	Tokens []sentence.Token `json:"tokens"`
}

// Tokenize splits text into word and separator tokens.
func (s *Service) Tokenize(text string) []sentence.Token {
	return sentence.Tokenize(text)
}

// ApplyCase casts replacement in the case of the token originalID of tokens.
func (s *Service) ApplyCase(original, replacement string, tokens []sentence.Token, originalID int) string {
	return sentence.ApplyCase(original, replacement, tokens, originalID)
}

// Replace substitutes the word token tokenID of text with replacement,
// preserving the case of the word it replaces.
func (s *Service) Replace(text string, tokenID int, replacement string) (ReplaceResult, error) {
	if strings.TrimSpace(replacement) == "" {
		return ReplaceResult{}, domain.NewValidationError("replacement", "required")
	}

	out, ok := sentence.Replace(sentence.Tokenize(text), tokenID, replacement)
	if !ok {
		return ReplaceResult{}, domain.NewValidationError("token_id", "must reference a word token")
	}

	return ReplaceResult{Text: out, Tokens: sentence.Tokenize(out)}, nil
}
