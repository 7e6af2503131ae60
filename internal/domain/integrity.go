package domain

// SourceCount is the number of stored pronunciations per provenance tag.
type SourceCount struct {
	Source string `json:"source" db:"source"`
	Count  int64  `json:"count"  db:"count"`
}

// WordPronunciations lists every stored pronunciation of one base word.
type WordPronunciations struct {
	Word    string                `json:"word"`
	Count   int64                 `json:"count"`
	Records []PronunciationRecord `json:"records"`
}

// StoreStats summarises the pronunciations table.
type StoreStats struct {
	IndexStats
	Sources []SourceCount `json:"sources"`
}

// IntegrityReport is the offline data-quality check of the pronunciations
// table. A variant row is mismatched when its display form is not exactly
// "<word>(<variant_number>)".
type IntegrityReport struct {
	EmptyWords         int64                `json:"empty_words"`
	EmptyPhonetics     int64                `json:"empty_phonetics"`
	MismatchedVariants int64                `json:"mismatched_variants"`
	MismatchedSamples  []RawEntry           `json:"mismatched_samples"`
	MultiPronunciation []WordPronunciations `json:"multi_pronunciation"`
}

// Healthy reports whether no integrity check found a problem.
func (r IntegrityReport) Healthy() bool {
	return r.EmptyWords == 0 && r.EmptyPhonetics == 0 && r.MismatchedVariants == 0
}
