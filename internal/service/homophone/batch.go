package homophone

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/homophones/internal/domain"
)

// ResolveBatch resolves every word of words, preserving input order.
//
// An empty list is a validation error and a list longer than the configured
// maximum fails with *domain.BatchTooLargeError. Entries that are empty after
// trimming are reported in BatchResult.Invalid and skipped; the remaining
// words are resolved independently, so a failure on one word is reported as
// that word's result and never aborts the batch.
func (s *Service) ResolveBatch(ctx context.Context, words []string) (BatchResult, error) {
	if len(words) == 0 {
		return BatchResult{}, domain.NewValidationError("words", "must be a non-empty array")
	}
	if len(words) > s.cfg.MaxBatchSize {
		return BatchResult{}, &domain.BatchTooLargeError{Size: len(words), Max: s.cfg.MaxBatchSize}
	}

	start := time.Now()
	s.metrics.RecordBatch(ctx, len(words))

	valid := make([]string, 0, len(words))
	invalid := make([]InvalidItem, 0)
	for i, w := range words {
		trimmed := strings.TrimSpace(w)
		if trimmed == "" {
			invalid = append(invalid, InvalidItem{Index: i, Value: w, Reason: ReasonInvalidWord})
			continue
		}
		valid = append(valid, trimmed)
	}

	results := make([]Result, len(valid))
	if len(valid) > 0 {
		loader := s.newBatchLoader()

		thunks := make([]dataloader.Thunk[Result], len(valid))
		for i, w := range valid {
			thunks[i] = loader.Load(ctx, domain.NormalizeWord(w))
		}

		for i, thunk := range thunks {
			res, err := thunk()
			if err != nil {
				s.log.ErrorContext(ctx, "resolve batch word",
					slog.String("word", valid[i]),
					slog.String("error", err.Error()),
				)
				results[i] = Result{Found: false, Word: valid[i], Message: errorMessage}
				continue
			}
			results[i] = res.forInput(valid[i])
		}
	}

	out := BatchResult{
		TotalWords:     len(words),
		ValidWords:     len(valid),
		Results:        results,
		Invalid:        invalid,
		Summary:        summarize(results),
		ProcessingTime: time.Since(start),
	}

	s.log.DebugContext(ctx, "batch resolved",
		slog.Int("total", out.TotalWords),
		slog.Int("valid", out.ValidWords),
		slog.Int("found", out.Summary.Found),
		slog.Duration("duration", out.ProcessingTime),
	)

	return out, nil
}

// batchFn resolves the unique keys of one loader batch on a bounded pool of
// workers. Each key gets its own result slot, so ordering follows keys.
func (s *Service) batchFn() dataloader.BatchFunc[string, Result] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[Result] {
		results := make([]*dataloader.Result[Result], len(keys))

		var g errgroup.Group
		g.SetLimit(s.cfg.BatchWorkers)
		for i, key := range keys {
			g.Go(func() error {
				results[i] = s.resolveKey(ctx, key)
				return nil
			})
		}
		_ = g.Wait()

		return results
	}
}

// resolveKey resolves a single batch key, turning a cancelled context or a
// panic into that key's error.
func (s *Service) resolveKey(ctx context.Context, key string) (res *dataloader.Result[Result]) {
	if err := ctx.Err(); err != nil {
		return &dataloader.Result[Result]{Error: err}
	}

	defer func() {
		if p := recover(); p != nil {
			res = &dataloader.Result[Result]{Error: fmt.Errorf("resolve %q: panic: %v", key, p)}
		}
	}()

	return &dataloader.Result[Result]{Data: s.lookup(ctx, key)}
}
