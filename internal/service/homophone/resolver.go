package homophone

import (
	"fmt"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/phonindex"
	"github.com/heartmarshall/homophones/internal/seeder/cmu"
)

// Algorithm names accepted by NewResolver.
const (
	AlgorithmOptimized = "optimized"
	AlgorithmNaive     = "naive"
)

type pronunciationIndex interface {
	LookupByWord(word string) []domain.PronunciationRecord
	LookupByPhonetic(key string) map[string][]domain.PronunciationRecord
	Groups(key string) []phonindex.Group
}

// Resolver finds the homophones of a word for each of its pronunciations.
// Implementations are read-only over the index and safe for concurrent use.
type Resolver interface {
	Algorithm() string
	Resolve(word string) Result
}

// NewResolver returns the resolver implementing algorithm.
func NewResolver(algorithm string, idx pronunciationIndex) (Resolver, error) {
	switch algorithm {
	case AlgorithmOptimized, "":
		return &OptimizedResolver{idx: idx}, nil
	case AlgorithmNaive:
		return &NaiveResolver{idx: idx}, nil
	default:
		return nil, fmt.Errorf("unknown resolver algorithm %q", algorithm)
	}
}

// NaiveResolver rebuilds the full homophone grouping from the phonetic map
// for every pronunciation, repeating the work when keys repeat.
type NaiveResolver struct {
	idx pronunciationIndex
}

func (r *NaiveResolver) Algorithm() string { return AlgorithmNaive }

func (r *NaiveResolver) Resolve(word string) Result {
	records := r.idx.LookupByWord(word)
	if len(records) == 0 {
		return notFound(word)
	}

	res := found(word, len(records))
	for _, rec := range records {
		groups := phonindex.SortedGroups(r.idx.LookupByPhonetic(rec.PhoneticKey))
		res.Pronunciations = append(res.Pronunciations, pronunciationResult(rec, homophoneGroups(rec.BaseWord, groups)))
	}
	return res
}

// OptimizedResolver reads the index's prebuilt groups once per distinct
// phonetic key of the word and reuses them across pronunciations.
type OptimizedResolver struct {
	idx pronunciationIndex
}

func (r *OptimizedResolver) Algorithm() string { return AlgorithmOptimized }

func (r *OptimizedResolver) Resolve(word string) Result {
	records := r.idx.LookupByWord(word)
	if len(records) == 0 {
		return notFound(word)
	}

	byKey := make(map[string][]domain.HomophoneGroup, len(records))
	for _, rec := range records {
		if _, ok := byKey[rec.PhoneticKey]; !ok {
			byKey[rec.PhoneticKey] = homophoneGroups(rec.BaseWord, r.idx.Groups(rec.PhoneticKey))
		}
	}

	res := found(word, len(records))
	for _, rec := range records {
		res.Pronunciations = append(res.Pronunciations, pronunciationResult(rec, byKey[rec.PhoneticKey]))
	}
	return res
}

func notFound(word string) Result {
	return Result{Found: false, Word: word, Message: notFoundMessage(word)}
}

func found(word string, n int) Result {
	return Result{Found: true, Word: word, Pronunciations: make([]PronunciationResult, 0, n)}
}

func pronunciationResult(rec domain.PronunciationRecord, homophones []domain.HomophoneGroup) PronunciationResult {
	return PronunciationResult{
		DisplayForm:    rec.DisplayForm,
		VariantNumber:  rec.VariantNumber,
		PhoneticKey:    rec.PhoneticKey,
		IPA:            cmu.ToIPA(rec.PhoneticKey),
		Homophones:     homophones,
		HomophoneCount: len(homophones),
	}
}

// homophoneGroups converts index groups, already ordered by base word, into
// result groups, dropping the queried word's own base word.
func homophoneGroups(self string, groups []phonindex.Group) []domain.HomophoneGroup {
	out := make([]domain.HomophoneGroup, 0, len(groups))
	for _, g := range groups {
		if g.BaseWord == self {
			continue
		}

		variants := []domain.Variant{}
		if len(g.Records) != 1 || !g.Records[0].IsPrimary() {
			variants = make([]domain.Variant, 0, len(g.Records))
			for _, rec := range g.Records {
				variants = append(variants, domain.Variant{
					DisplayForm:   rec.DisplayForm,
					VariantNumber: rec.VariantNumber,
				})
			}
		}

		out = append(out, domain.HomophoneGroup{BaseWord: g.BaseWord, Variants: variants})
	}
	return out
}
