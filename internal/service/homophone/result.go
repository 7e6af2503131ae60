package homophone

import (
	"fmt"
	"time"

	"github.com/heartmarshall/homophones/internal/domain"
)

// Result is the outcome of resolving one word. Found is the discriminant:
// a word missing from the index is a normal result with Found == false and
// a display Message, never an error.
type Result struct {
	Found          bool                  `json:"success"`
	Word           string                `json:"word"`
	Message        string                `json:"message,omitempty"`
	Pronunciations []PronunciationResult `json:"pronunciations,omitempty"`
}

// PronunciationResult describes one pronunciation of the queried word and the
// other base words that share it. HomophoneCount is the number of distinct
// base words, not records.
type PronunciationResult struct {
	DisplayForm    string                  `json:"word_variant"`
	VariantNumber  *int                    `json:"variant_number"`
	PhoneticKey    string                  `json:"phonetic"`
	IPA            string                  `json:"ipa"`
	Homophones     []domain.HomophoneGroup `json:"homophones"`
	HomophoneCount int                     `json:"homophone_count"`
}

// TotalHomophones sums HomophoneCount over every pronunciation.
func (r Result) TotalHomophones() int {
	total := 0
	for _, p := range r.Pronunciations {
		total += p.HomophoneCount
	}
	return total
}

// InvalidItem reports a batch entry rejected before lookup.
type InvalidItem struct {
	Index  int    `json:"index"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

// BatchSummary aggregates the per-word outcomes of a batch.
type BatchSummary struct {
	Found           int `json:"found"`
	NotFound        int `json:"not_found"`
	TotalHomophones int `json:"total_homophones"`
}

// BatchResult is the outcome of ResolveBatch. Results holds one entry per
// valid input word, in input order.
type BatchResult struct {
	TotalWords     int           `json:"total_words"`
	ValidWords     int           `json:"valid_words"`
	Results        []Result      `json:"results"`
	Invalid        []InvalidItem `json:"errors"`
	Summary        BatchSummary  `json:"summary"`
	ProcessingTime time.Duration `json:"-"`
}

// ReasonInvalidWord is the reason reported for empty or non-string entries.
const ReasonInvalidWord = "Invalid word format"

func notFoundMessage(input string) string {
	return fmt.Sprintf("Word \"%s\" not found in the pronunciation dictionary.", input)
}

const errorMessage = "An error occurred while searching for homophones."

// forInput returns a shallow copy of r addressed to input. Pronunciations are
// shared with r and must not be modified.
func (r Result) forInput(input string) Result {
	r.Word = input
	if !r.Found {
		r.Message = notFoundMessage(input)
	}
	return r
}

func summarize(results []Result) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		if !r.Found {
			s.NotFound++
			continue
		}
		s.Found++
		s.TotalHomophones += r.TotalHomophones()
	}
	return s
}
