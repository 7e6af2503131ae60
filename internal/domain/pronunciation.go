package domain

// RawEntry is a single dictionary line as supplied by a pronunciation source:
// the word token as written (possibly with a "(N)" variant suffix) and its
// whitespace-separated phoneme sequence.
type RawEntry struct {
	WordToken string `db:"word_variant"`
	Phonetic  string `db:"phonetic"`
}

// PronunciationRecord is one pronunciation of one base word.
// VariantNumber is nil for the primary pronunciation.
type PronunciationRecord struct {
	BaseWord      string `json:"word"`
	DisplayForm   string `json:"word_variant"`
	VariantNumber *int   `json:"variant_number"`
	PhoneticKey   string `json:"phonetic"`
	Source        string `json:"source,omitempty"`
}

// IsPrimary reports whether the record carries no variant number.
func (r PronunciationRecord) IsPrimary() bool {
	return r.VariantNumber == nil
}

// Variant describes one contributing record inside a HomophoneGroup.
type Variant struct {
	DisplayForm   string `json:"word_variant"`
	VariantNumber *int   `json:"variant_number"`
}

// HomophoneGroup lists the records of one base word that share a phonetic key
// with the queried word. Variants is empty (never nil) when the only
// contributing record is an unnumbered primary pronunciation.
type HomophoneGroup struct {
	BaseWord string    `json:"word"`
	Variants []Variant `json:"variants"`
}

// IndexStats summarises the pronunciation index.
type IndexStats struct {
	TotalRecords   int `json:"total_pronunciations"`
	PrimaryRecords int `json:"base_pronunciations"`
	VariantRecords int `json:"variant_pronunciations"`
	Words          int `json:"words"`
	PhoneticKeys   int `json:"phonetic_keys"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// CompareVariant orders variant numbers ascending with nil (primary) first.
func CompareVariant(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
