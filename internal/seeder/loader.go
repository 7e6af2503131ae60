// Package seeder loads a CMU Pronouncing Dictionary file into the
// pronunciations table. It is run offline by cmd/loader, never by the
// server.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/seeder/cmu"
)

// RecordStore replaces the stored dictionary in one transaction.
type RecordStore interface {
	ReplaceAll(ctx context.Context, records []domain.PronunciationRecord) (int64, error)
}

// Report summarises one load.
type Report struct {
	Parse    cmu.Stats
	Records  int
	Written  int64
	DryRun   bool
	Duration time.Duration
}

// Loader parses the dictionary file and writes it to a RecordStore.
type Loader struct {
	log   *slog.Logger
	store RecordStore
	cfg   Config
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger, store RecordStore, cfg Config) *Loader {
	return &Loader{
		log:   logger.With("component", "loader"),
		store: store,
		cfg:   cfg,
	}
}

// Run parses the configured file and, unless DryRun is set, replaces the
// stored records with its entries. An empty file is rejected so a bad path
// cannot wipe the table.
func (l *Loader) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{DryRun: l.cfg.DryRun}

	if l.cfg.DictPath == "" {
		return report, errors.New("dictionary path is required")
	}

	result, err := cmu.ParseFile(l.cfg.DictPath)
	if err != nil {
		return report, fmt.Errorf("parse %s: %w", l.cfg.DictPath, err)
	}
	report.Parse = result.Stats

	l.log.InfoContext(ctx, "dictionary parsed",
		slog.String("path", l.cfg.DictPath),
		slog.Int("lines", result.Stats.TotalLines),
		slog.Int("comments", result.Stats.CommentLines),
		slog.Int("malformed", result.Stats.MalformedLines),
		slog.Int("entries", result.Stats.ParsedLines),
	)

	if len(result.Entries) == 0 {
		return report, fmt.Errorf("parse %s: no entries", l.cfg.DictPath)
	}

	records := result.ToRecords(l.cfg.SourceTag)
	report.Records = len(records)

	if l.cfg.DryRun {
		report.Duration = time.Since(start)
		l.log.InfoContext(ctx, "dry run, nothing written", slog.Int("records", report.Records))
		return report, nil
	}

	written, err := l.store.ReplaceAll(ctx, records)
	if err != nil {
		return report, fmt.Errorf("replace pronunciations: %w", err)
	}
	report.Written = written
	report.Duration = time.Since(start)

	l.log.InfoContext(ctx, "pronunciations replaced",
		slog.Int64("written", written),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}
