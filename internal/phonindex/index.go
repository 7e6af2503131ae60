// Package phonindex holds the in-memory pronunciation index: base word to
// pronunciation records, and phonetic key to the words that share it.
// An Index is built once and never mutated, so it is safe for concurrent
// use by any number of goroutines without locking.
package phonindex

import (
	"slices"
	"strings"

	"github.com/heartmarshall/homophones/internal/domain"
)

// Group is the set of records of one base word that share a phonetic key.
type Group struct {
	BaseWord string
	Records  []domain.PronunciationRecord
}

// BuildReport counts what happened to the raw entries during Build.
type BuildReport struct {
	Entries    int
	Records    int
	Malformed  int
	Duplicates int
}

// Index is the immutable dual mapping used by the resolvers.
type Index struct {
	byWord     map[string][]domain.PronunciationRecord
	byPhonetic map[string]map[string][]domain.PronunciationRecord
	groups     map[string][]Group
	stats      domain.IndexStats
}

// Build constructs an Index from raw dictionary entries. Entries with an
// empty word or an empty transcription are skipped as malformed. A repeated
// (base word, variant number) pair keeps the first occurrence.
func Build(entries []domain.RawEntry, source string) (*Index, BuildReport) {
	report := BuildReport{Entries: len(entries)}

	byWord := make(map[string][]domain.PronunciationRecord)
	for _, e := range entries {
		display := strings.TrimSpace(e.WordToken)
		key := domain.NormalizePhonetic(e.Phonetic)
		if display == "" || key == "" {
			report.Malformed++
			continue
		}

		base, variant := domain.ParseWordToken(display)
		if hasVariant(byWord[base], variant) {
			report.Duplicates++
			continue
		}

		byWord[base] = append(byWord[base], domain.PronunciationRecord{
			BaseWord:      base,
			DisplayForm:   display,
			VariantNumber: variant,
			PhoneticKey:   key,
			Source:        source,
		})
	}

	idx := &Index{
		byWord:     byWord,
		byPhonetic: make(map[string]map[string][]domain.PronunciationRecord),
	}

	for base, records := range byWord {
		slices.SortStableFunc(records, func(a, b domain.PronunciationRecord) int {
			return domain.CompareVariant(a.VariantNumber, b.VariantNumber)
		})

		for _, r := range records {
			words, ok := idx.byPhonetic[r.PhoneticKey]
			if !ok {
				words = make(map[string][]domain.PronunciationRecord)
				idx.byPhonetic[r.PhoneticKey] = words
			}
			words[base] = append(words[base], r)

			idx.stats.TotalRecords++
			if r.IsPrimary() {
				idx.stats.PrimaryRecords++
			} else {
				idx.stats.VariantRecords++
			}
		}
	}

	idx.groups = make(map[string][]Group, len(idx.byPhonetic))
	for key, words := range idx.byPhonetic {
		idx.groups[key] = SortedGroups(words)
	}

	idx.stats.Words = len(idx.byWord)
	idx.stats.PhoneticKeys = len(idx.byPhonetic)
	report.Records = idx.stats.TotalRecords

	return idx, report
}

// LookupByWord returns the records of word ordered primary first, then by
// variant number. The word is normalized first. Unknown words yield an
// empty slice.
func (idx *Index) LookupByWord(word string) []domain.PronunciationRecord {
	records := idx.byWord[domain.NormalizeWord(word)]
	if len(records) == 0 {
		return []domain.PronunciationRecord{}
	}
	return slices.Clone(records)
}

// LookupByPhonetic returns every base word sharing key, mapped to its
// records. Unknown keys yield an empty map.
func (idx *Index) LookupByPhonetic(key string) map[string][]domain.PronunciationRecord {
	words := idx.byPhonetic[domain.NormalizePhonetic(key)]
	out := make(map[string][]domain.PronunciationRecord, len(words))
	for base, records := range words {
		out[base] = slices.Clone(records)
	}
	return out
}

// Groups returns the precomputed groups for key ordered by base word.
// The returned slice is shared and must not be modified.
func (idx *Index) Groups(key string) []Group {
	return idx.groups[key]
}

// Stats returns record counts computed at build time.
func (idx *Index) Stats() domain.IndexStats {
	return idx.stats
}

// SortedGroups converts a base word mapping into groups ordered
// lexicographically by base word.
func SortedGroups(words map[string][]domain.PronunciationRecord) []Group {
	groups := make([]Group, 0, len(words))
	for base, records := range words {
		groups = append(groups, Group{BaseWord: base, Records: records})
	}
	slices.SortFunc(groups, func(a, b Group) int {
		return strings.Compare(a.BaseWord, b.BaseWord)
	})
	return groups
}

func hasVariant(records []domain.PronunciationRecord, variant *int) bool {
	for _, r := range records {
		if domain.CompareVariant(r.VariantNumber, variant) == 0 {
			return true
		}
	}
	return false
}
