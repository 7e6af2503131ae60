package testhelper

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/homophones/internal/domain"
)

// SeedPronunciations inserts records row by row, bypassing the repository,
// and returns them unchanged.
func SeedPronunciations(t *testing.T, pool *pgxpool.Pool, records ...domain.PronunciationRecord) []domain.PronunciationRecord {
	t.Helper()
	ctx := context.Background()

	for _, rec := range records {
		_, err := pool.Exec(ctx,
			`INSERT INTO pronunciations (word, word_variant, variant_number, phonetic, source)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.BaseWord, rec.DisplayForm, rec.VariantNumber, rec.PhoneticKey, rec.Source,
		)
		if err != nil {
			t.Fatalf("SeedPronunciations: insert %s: %v", rec.DisplayForm, err)
		}
	}
	return records
}

// Record builds a pronunciation record from a dictionary token such as
// "READ(1)", tagged with source "test".
func Record(token, phonetic string) domain.PronunciationRecord {
	base, variant := domain.ParseWordToken(token)
	return domain.PronunciationRecord{
		BaseWord:      base,
		DisplayForm:   token,
		VariantNumber: variant,
		PhoneticKey:   phonetic,
		Source:        "test",
	}
}
