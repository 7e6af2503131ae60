package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/phonindex"
	"github.com/heartmarshall/homophones/internal/seeder/cmu"
)

// entrySource supplies every raw dictionary entry once, at start-up.
type entrySource interface {
	FetchAll(ctx context.Context) ([]domain.RawEntry, error)
}

// dictFile reads entries straight from a CMU dictionary file.
type dictFile string

func (p dictFile) FetchAll(ctx context.Context) ([]domain.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := cmu.ParseFile(string(p))
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// buildIndex fetches all entries from src and builds the pronunciation
// index. A fetch failure is reported as domain.ErrIndexUnavailable.
func buildIndex(ctx context.Context, logger *slog.Logger, src entrySource, sourceTag string) (*phonindex.Index, error) {
	entries, err := src.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	idx, report := phonindex.Build(entries, sourceTag)
	stats := idx.Stats()

	logger.Info("pronunciation index built",
		slog.Int("entries", report.Entries),
		slog.Int("records", report.Records),
		slog.Int("malformed", report.Malformed),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("words", stats.Words),
		slog.Int("phonetic_keys", stats.PhoneticKeys),
	)
	if stats.TotalRecords == 0 {
		logger.Warn("pronunciation index is empty, readiness probe will fail")
	}

	return idx, nil
}
