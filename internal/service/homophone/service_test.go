package homophone

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/observe"
	"github.com/heartmarshall/homophones/internal/phonindex"
)

// ---------------------------------------------------------------------------
// Manual mocks (func fields, defaulting to a real index)
// ---------------------------------------------------------------------------

type mockIndex struct {
	base *phonindex.Index

	LookupByWordFunc func(word string) []domain.PronunciationRecord
}

func (m *mockIndex) LookupByWord(word string) []domain.PronunciationRecord {
	if m.LookupByWordFunc != nil {
		return m.LookupByWordFunc(word)
	}
	return m.base.LookupByWord(word)
}

func (m *mockIndex) LookupByPhonetic(key string) map[string][]domain.PronunciationRecord {
	return m.base.LookupByPhonetic(key)
}

func (m *mockIndex) Groups(key string) []phonindex.Group {
	return m.base.Groups(key)
}

func (m *mockIndex) Stats() domain.IndexStats {
	return m.base.Stats()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testConfig() Config {
	return Config{
		Algorithm:    AlgorithmOptimized,
		MaxBatchSize: 50,
		BatchWorkers: 4,
		BatchWait:    time.Millisecond,
		CacheSize:    16,
	}
}

func newTestService(t *testing.T, idx indexReader, cfg Config) (*Service, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := observe.NewMetrics(mp)
	require.NoError(t, err)

	svc, err := NewService(slog.Default(), idx, metrics, cfg)
	require.NoError(t, err)
	return svc, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not a sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

func TestNewService_InvalidConfig(t *testing.T) {
	t.Parallel()

	idx := fixtureIndex(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.MaxBatchSize = 0 }},
		{"zero workers", func(c *Config) { c.BatchWorkers = 0 }},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "bogus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewService(slog.Default(), idx, observe.DefaultMetrics(), cfg)
			assert.Error(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestService_Resolve_EmptyWord(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())

	for _, w := range []string{"", "   ", "\t"} {
		_, err := svc.Resolve(context.Background(), w)
		assert.ErrorIs(t, err, domain.ErrValidation, "word %q", w)
	}
}

func TestService_Resolve_NotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	svc, reader := newTestService(t, fixtureIndex(t), testConfig())

	res, err := svc.Resolve(context.Background(), "Zzz123")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, "Zzz123", res.Word)
	assert.Contains(t, res.Message, `"Zzz123"`)
	assert.EqualValues(t, 1, counterTotal(t, reader, "homophones.lookups"))
}

func TestService_Resolve_CacheKeepsCallerSpelling(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	idx := &mockIndex{base: fixtureIndex(t)}
	idx.LookupByWordFunc = func(word string) []domain.PronunciationRecord {
		calls.Add(1)
		return idx.base.LookupByWord(word)
	}

	svc, reader := newTestService(t, idx, testConfig())
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "there")
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, "THERE")
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load(), "second lookup should be served from cache")
	assert.Equal(t, "there", first.Word)
	assert.Equal(t, "THERE", second.Word)
	assert.Equal(t, first.Pronunciations, second.Pronunciations)
	assert.EqualValues(t, 1, counterTotal(t, reader, "homophones.cache.hits"))
	assert.EqualValues(t, 2, counterTotal(t, reader, "homophones.lookups"))

	missing, err := svc.Resolve(ctx, "nope")
	require.NoError(t, err)
	cachedMissing, err := svc.Resolve(ctx, "Nope")
	require.NoError(t, err)
	assert.Contains(t, missing.Message, `"nope"`)
	assert.Contains(t, cachedMissing.Message, `"Nope"`)
}

func TestService_Resolve_CacheDisabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	idx := &mockIndex{base: fixtureIndex(t)}
	idx.LookupByWordFunc = func(word string) []domain.PronunciationRecord {
		calls.Add(1)
		return idx.base.LookupByWord(word)
	}

	cfg := testConfig()
	cfg.CacheSize = 0
	svc, _ := newTestService(t, idx, cfg)

	for range 3 {
		_, err := svc.Resolve(context.Background(), "there")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, calls.Load())
}

func TestService_Resolve_Idempotent(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CacheSize = 0
	svc, _ := newTestService(t, fixtureIndex(t), cfg)

	a, err := svc.Resolve(context.Background(), "read")
	require.NoError(t, err)
	b, err := svc.Resolve(context.Background(), "read")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestService_Stats(t *testing.T) {
	t.Parallel()

	idx := fixtureIndex(t)
	svc, _ := newTestService(t, idx, testConfig())

	stats := svc.Stats()
	assert.Equal(t, len(fixtureEntries()), stats.TotalRecords)
	assert.Equal(t, stats.TotalRecords, stats.PrimaryRecords+stats.VariantRecords)
	assert.Equal(t, 6, stats.VariantRecords)
}

// ---------------------------------------------------------------------------
// ResolveBatch
// ---------------------------------------------------------------------------

func TestService_ResolveBatch_MixedEntries(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())

	out, err := svc.ResolveBatch(context.Background(), []string{"there", "", "zzz123"})
	require.NoError(t, err)

	assert.Equal(t, 3, out.TotalWords)
	assert.Equal(t, 2, out.ValidWords)
	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[0].Found)
	assert.Equal(t, "there", out.Results[0].Word)
	assert.False(t, out.Results[1].Found)
	assert.Equal(t, "zzz123", out.Results[1].Word)

	assert.Equal(t, []InvalidItem{{Index: 1, Value: "", Reason: ReasonInvalidWord}}, out.Invalid)
	assert.Equal(t, BatchSummary{Found: 1, NotFound: 1, TotalHomophones: 1}, out.Summary)
}

func TestService_ResolveBatch_PreservesOrderAndTrims(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())
	words := []string{" to ", "right", "read", "nope", "RED"}

	out, err := svc.ResolveBatch(context.Background(), words)
	require.NoError(t, err)

	require.Len(t, out.Results, len(words))
	got := make([]string, len(out.Results))
	for i, r := range out.Results {
		got[i] = r.Word
	}
	assert.Equal(t, []string{"to", "right", "read", "nope", "RED"}, got)
	assert.Equal(t, 4, out.Summary.Found)
	assert.Empty(t, out.Invalid)
	assert.NotNil(t, out.Invalid)
}

func TestService_ResolveBatch_DeduplicatesWords(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	idx := &mockIndex{base: fixtureIndex(t)}
	idx.LookupByWordFunc = func(word string) []domain.PronunciationRecord {
		calls.Add(1)
		return idx.base.LookupByWord(word)
	}

	cfg := testConfig()
	cfg.CacheSize = 0
	svc, _ := newTestService(t, idx, cfg)

	out, err := svc.ResolveBatch(context.Background(), []string{"there", "There", "THERE"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load())
	require.Len(t, out.Results, 3)
	assert.Equal(t, "There", out.Results[1].Word)
	assert.Equal(t, 3, out.Summary.Found)
}

func TestService_ResolveBatch_IsolatesFailures(t *testing.T) {
	t.Parallel()

	idx := &mockIndex{base: fixtureIndex(t)}
	idx.LookupByWordFunc = func(word string) []domain.PronunciationRecord {
		if word == "BOOM" {
			panic("corrupt record")
		}
		return idx.base.LookupByWord(word)
	}

	svc, _ := newTestService(t, idx, testConfig())

	out, err := svc.ResolveBatch(context.Background(), []string{"there", "boom", "read"})
	require.NoError(t, err)
	require.Len(t, out.Results, 3)

	assert.True(t, out.Results[0].Found)
	assert.False(t, out.Results[1].Found)
	assert.Equal(t, "boom", out.Results[1].Word)
	assert.Equal(t, errorMessage, out.Results[1].Message)
	assert.True(t, out.Results[2].Found)
}

func TestService_ResolveBatch_AllInvalid(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())

	out, err := svc.ResolveBatch(context.Background(), []string{"", "  "})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Len(t, out.Invalid, 2)
	assert.Equal(t, 0, out.ValidWords)
}

func TestService_ResolveBatch_Rejections(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxBatchSize = 2
	svc, _ := newTestService(t, fixtureIndex(t), cfg)

	_, err := svc.ResolveBatch(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ResolveBatch(context.Background(), []string{"a", "b", "c"})
	require.ErrorIs(t, err, domain.ErrBatchTooLarge)

	var tooLarge *domain.BatchTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, 3, tooLarge.Size)
	assert.Equal(t, 2, tooLarge.Max)
}

func TestService_ResolveBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CacheSize = 0
	svc, _ := newTestService(t, fixtureIndex(t), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := svc.ResolveBatch(ctx, []string{"there"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.False(t, out.Results[0].Found)
	assert.Equal(t, errorMessage, out.Results[0].Message)
}

// ---------------------------------------------------------------------------
// Sentence operations
// ---------------------------------------------------------------------------

func TestService_Replace(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())

	tokens := svc.Tokenize("I read THERE book.")
	require.Equal(t, "THERE", tokens[4].Text)

	out, err := svc.Replace("I read THERE book.", 4, "their")
	require.NoError(t, err)
	assert.Equal(t, "I read THEIR book.", out.Text)
	assert.Equal(t, "THEIR", out.Tokens[4].Text)

	out, err = svc.Replace("I read THERE book.", 0, "eye")
	require.NoError(t, err)
	assert.Equal(t, "Eye read THERE book.", out.Text)

	_, err = svc.Replace("I read THERE book.", 1, "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Replace("I read THERE book.", 4, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_ApplyCase(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, fixtureIndex(t), testConfig())
	tokens := svc.Tokenize("The cat")

	assert.Equal(t, "They're", svc.ApplyCase("The", "they're", tokens, 0))
}
