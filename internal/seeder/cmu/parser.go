// Package cmu parses CMU Pronouncing Dictionary files into raw dictionary
// entries and renders ARPAbet transcriptions as IPA for display.
// Pure functions: reader in, domain structs out. No database dependencies.
package cmu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heartmarshall/homophones/internal/domain"
)

// SourceTag is the provenance recorded on records loaded from cmudict.
const SourceTag = "CMU Pronouncing Dictionary v0.7b"

const maxLineBytes = 1 << 20

var (
	// errSkipLine signals that a line should be skipped (comment, empty).
	errSkipLine = errors.New("skip line")
	// errMalformed signals a line with fewer than two fields.
	errMalformed = errors.New("malformed line")
)

// arpabetMap maps ARPAbet phonemes (without stress markers) to IPA symbols.
var arpabetMap = map[string]string{
	"AA": "\u0251",     // ɑ
	"AE": "\u00e6",     // æ
	"AH": "\u028c",     // ʌ
	"AO": "\u0254",     // ɔ
	"AW": "a\u028a",    // aʊ
	"AY": "a\u026a",    // aɪ
	"B":  "b",
	"CH": "t\u0283",    // tʃ
	"D":  "d",
	"DH": "\u00f0",     // ð
	"EH": "\u025b",     // ɛ
	"ER": "\u025d",     // ɝ
	"EY": "e\u026a",    // eɪ
	"F":  "f",
	"G":  "\u0261",     // ɡ
	"HH": "h",
	"IH": "\u026a",     // ɪ
	"IY": "i",
	"JH": "d\u0292",    // dʒ
	"K":  "k",
	"L":  "l",
	"M":  "m",
	"N":  "n",
	"NG": "\u014b",     // ŋ
	"OW": "o\u028a",    // oʊ
	"OY": "\u0254\u026a", // ɔɪ
	"P":  "p",
	"R":  "\u0279",     // ɹ
	"S":  "s",
	"SH": "\u0283",     // ʃ
	"T":  "t",
	"TH": "\u03b8",     // θ
	"UH": "\u028a",     // ʊ
	"UW": "u",
	"V":  "v",
	"W":  "w",
	"Y":  "j",
	"Z":  "z",
	"ZH": "\u0292",     // ʒ
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalLines     int
	CommentLines   int
	MalformedLines int
	ParsedLines    int
}

// ParseResult holds the parsed dictionary entries in file order.
type ParseResult struct {
	Entries []domain.RawEntry
	Stats   Stats
}

// ParseFile opens filePath and parses it with Parse.
func ParseFile(filePath string) (ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a CMU dict stream line by line. Comment lines (";;;") and
// blank lines are skipped; lines with fewer than two whitespace-delimited
// fields are counted as malformed and skipped.
func Parse(r io.Reader) (ParseResult, error) {
	var result ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		result.Stats.TotalLines++
		line := scanner.Text()

		entry, err := parseLine(line)
		switch {
		case errors.Is(err, errSkipLine):
			if strings.HasPrefix(line, ";;;") {
				result.Stats.CommentLines++
			}
			continue
		case errors.Is(err, errMalformed):
			result.Stats.MalformedLines++
			continue
		}

		result.Stats.ParsedLines++
		result.Entries = append(result.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("scanner error: %w", err)
	}

	return result, nil
}

// ToRecords converts parsed entries into pronunciation records for storage.
// Malformed entries never reach this point, so every entry yields a record.
func (r ParseResult) ToRecords(source string) []domain.PronunciationRecord {
	records := make([]domain.PronunciationRecord, 0, len(r.Entries))
	for _, e := range r.Entries {
		base, variant := domain.ParseWordToken(e.WordToken)
		records = append(records, domain.PronunciationRecord{
			BaseWord:      base,
			DisplayForm:   e.WordToken,
			VariantNumber: variant,
			PhoneticKey:   e.Phonetic,
			Source:        source,
		})
	}
	return records
}

// ToIPA renders an ARPAbet phonetic key as a slash-wrapped IPA string.
// Stress markers are dropped and unknown phonemes are skipped.
func ToIPA(phonetic string) string {
	return phonemesToIPA(strings.Fields(phonetic))
}

// arpabetToIPA converts an ARPAbet phoneme (without stress) to its IPA equivalent.
func arpabetToIPA(phoneme string) (string, bool) {
	ipa, ok := arpabetMap[phoneme]
	return ipa, ok
}

// stripStress removes the trailing stress marker (0, 1, 2) from an ARPAbet phoneme.
func stripStress(phoneme string) string {
	if len(phoneme) == 0 {
		return phoneme
	}
	last := phoneme[len(phoneme)-1]
	if last == '0' || last == '1' || last == '2' {
		return phoneme[:len(phoneme)-1]
	}
	return phoneme
}

func phonemesToIPA(phonemes []string) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, p := range phonemes {
		if ipa, ok := arpabetToIPA(stripStress(p)); ok {
			b.WriteString(ipa)
		}
	}
	b.WriteByte('/')
	return b.String()
}

// parseLine parses a single line: the first field is the word token (with
// an optional "(N)" suffix), the remaining fields are the phonemes.
func parseLine(line string) (domain.RawEntry, error) {
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ";;;") {
		return domain.RawEntry{}, errSkipLine
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return domain.RawEntry{}, errMalformed
	}

	return domain.RawEntry{
		WordToken: fields[0],
		Phonetic:  strings.Join(fields[1:], " "),
	}, nil
}
