// Package homophone resolves words to the other words that share one of
// their pronunciations, singly or in batches, and hosts the sentence
// operations built on top of that lookup.
package homophone

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/observe"
)

type indexReader interface {
	pronunciationIndex
	Stats() domain.IndexStats
}

// Config tunes resolution and batching.
type Config struct {
	Algorithm    string
	MaxBatchSize int
	BatchWorkers int
	BatchWait    time.Duration
	// CacheSize bounds the result cache; 0 disables it.
	CacheSize int
}

// Service implements homophone lookups over an immutable pronunciation index.
type Service struct {
	log      *slog.Logger
	idx      indexReader
	resolver Resolver
	cache    *lru.Cache[string, Result]
	metrics  *observe.Metrics
	cfg      Config
}

// NewService creates a homophone service. It fails on an unknown algorithm
// or a non-positive batch configuration.
func NewService(logger *slog.Logger, idx indexReader, metrics *observe.Metrics, cfg Config) (*Service, error) {
	if cfg.MaxBatchSize <= 0 {
		return nil, fmt.Errorf("max batch size must be positive, got %d", cfg.MaxBatchSize)
	}
	if cfg.BatchWorkers <= 0 {
		return nil, fmt.Errorf("batch workers must be positive, got %d", cfg.BatchWorkers)
	}

	resolver, err := NewResolver(cfg.Algorithm, idx)
	if err != nil {
		return nil, err
	}

	s := &Service{
		log:      logger.With("service", "homophone"),
		idx:      idx,
		resolver: resolver,
		metrics:  metrics,
		cfg:      cfg,
	}

	if cfg.CacheSize > 0 {
		s.cache, err = lru.New[string, Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
	}

	return s, nil
}

// Algorithm returns the name of the configured resolver.
func (s *Service) Algorithm() string {
	return s.resolver.Algorithm()
}

// Resolve returns the homophones of word for each of its pronunciations.
// An empty or whitespace-only word is a validation error; an unknown word
// is a successful call with Result.Found == false.
func (s *Service) Resolve(ctx context.Context, word string) (Result, error) {
	if domain.NormalizeWord(word) == "" {
		return Result{}, domain.NewValidationError("word", "required")
	}
	return s.lookup(ctx, word), nil
}

// Stats returns record counts computed when the index was built.
func (s *Service) Stats() domain.IndexStats {
	return s.idx.Stats()
}

// lookup resolves input through the cache and the configured resolver.
// input must be non-empty after normalization.
func (s *Service) lookup(ctx context.Context, input string) Result {
	key := domain.NormalizeWord(input)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheHit(ctx)
			s.metrics.RecordLookup(ctx, cached.Found)
			return cached.forInput(input)
		}
	}

	start := time.Now()
	res := s.resolver.Resolve(key)
	s.metrics.RecordResolve(ctx, s.resolver.Algorithm(), res.Found, time.Since(start))

	if s.cache != nil {
		s.cache.Add(key, res)
	}

	return res.forInput(input)
}

// newBatchLoader creates a per-call loader keyed by normalized word, so
// repeated words in one batch are resolved once.
func (s *Service) newBatchLoader() *dataloader.Loader[string, Result] {
	return dataloader.NewBatchedLoader(
		s.batchFn(),
		dataloader.WithWait[string, Result](s.cfg.BatchWait),
		dataloader.WithBatchCapacity[string, Result](s.cfg.MaxBatchSize),
	)
}
