// Package pronunciation stores the loaded pronunciation dictionary in
// PostgreSQL and reads it back for index construction and data checks.
package pronunciation

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/homophones/internal/adapter/postgres"
	"github.com/heartmarshall/homophones/internal/domain"
)

const table = "pronunciations"

// copyColumns is the column order used by ReplaceAll.
var copyColumns = []string{"word", "word_variant", "variant_number", "phonetic", "source"}

// mismatchCond matches rows whose display form does not follow from their
// base word and variant number.
const mismatchCond = `word_variant <> CASE WHEN variant_number IS NULL THEN word ELSE word || '(' || variant_number || ')' END`

const (
	multiPronunciationLimit = 5
	mismatchSampleLimit     = 5
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is what the repository needs from a pool: queries plus transactions.
// *pgxpool.Pool and pgxmock pools satisfy it.
type DB interface {
	postgres.Querier
	postgres.Beginner
}

// Repo provides pronunciation persistence backed by PostgreSQL.
type Repo struct {
	db DB
	tx *postgres.TxManager
}

// New creates a new pronunciation repository.
func New(db DB) *Repo {
	return &Repo{db: db, tx: postgres.NewTxManager(db)}
}

type recordRow struct {
	Word          string  `db:"word"`
	WordVariant   string  `db:"word_variant"`
	VariantNumber *int    `db:"variant_number"`
	Phonetic      string  `db:"phonetic"`
	Source        *string `db:"source"`
}

func (r recordRow) toDomain() domain.PronunciationRecord {
	rec := domain.PronunciationRecord{
		BaseWord:      r.Word,
		DisplayForm:   r.WordVariant,
		VariantNumber: r.VariantNumber,
		PhoneticKey:   r.Phonetic,
	}
	if r.Source != nil {
		rec.Source = *r.Source
	}
	return rec
}

// FetchAll returns every stored entry in insertion order.
func (r *Repo) FetchAll(ctx context.Context) ([]domain.RawEntry, error) {
	query, args, err := psql.Select("word_variant", "phonetic").
		From(table).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fetch query: %w", err)
	}

	var entries []domain.RawEntry
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &entries, query, args...); err != nil {
		return nil, postgres.MapError(err, "fetch pronunciations")
	}
	return entries, nil
}

// ReplaceAll swaps the table contents for records in one transaction and
// returns the number of rows written. Row ids restart from 1 so that id
// order equals records order.
func (r *Repo) ReplaceAll(ctx context.Context, records []domain.PronunciationRecord) (int64, error) {
	var copied int64

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)

		if _, err := q.Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY"); err != nil {
			return postgres.MapError(err, "truncate pronunciations")
		}

		n, err := q.CopyFrom(ctx, pgx.Identifier{table}, copyColumns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				rec := records[i]
				return []any{rec.BaseWord, rec.DisplayForm, rec.VariantNumber, rec.PhoneticKey, rec.Source}, nil
			}),
		)
		if err != nil {
			return postgres.MapError(err, "copy pronunciations")
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// Stats counts stored rows the same way the in-memory index does, plus a
// per-source breakdown.
func (r *Repo) Stats(ctx context.Context) (domain.StoreStats, error) {
	query, args, err := psql.Select(
		"count(*)",
		"count(*) FILTER (WHERE variant_number IS NULL)",
		"count(*) FILTER (WHERE variant_number IS NOT NULL)",
		"count(DISTINCT word)",
		"count(DISTINCT phonetic)",
	).From(table).ToSql()
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("build stats query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var total, primary, variants, words, keys int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total, &primary, &variants, &words, &keys); err != nil {
		return domain.StoreStats{}, postgres.MapError(err, "count pronunciations")
	}

	sources, err := r.sources(ctx, q)
	if err != nil {
		return domain.StoreStats{}, err
	}

	return domain.StoreStats{
		IndexStats: domain.IndexStats{
			TotalRecords:   int(total),
			PrimaryRecords: int(primary),
			VariantRecords: int(variants),
			Words:          int(words),
			PhoneticKeys:   int(keys),
		},
		Sources: sources,
	}, nil
}

func (r *Repo) sources(ctx context.Context, q postgres.Querier) ([]domain.SourceCount, error) {
	query, args, err := psql.Select("coalesce(source, '') AS source", "count(*) AS count").
		From(table).
		GroupBy("source").
		OrderBy("count DESC", "source").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	var out []domain.SourceCount
	if err := pgxscan.Select(ctx, q, &out, query, args...); err != nil {
		return nil, postgres.MapError(err, "count sources")
	}
	return out, nil
}

// Samples returns the first limit stored records in id order.
func (r *Repo) Samples(ctx context.Context, limit uint64) ([]domain.PronunciationRecord, error) {
	query, args, err := psql.Select(copyColumns...).
		From(table).
		OrderBy("id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build samples query: %w", err)
	}

	var rows []recordRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "sample pronunciations")
	}

	out := make([]domain.PronunciationRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// IntegrityReport runs the data-quality checks over the stored table.
func (r *Repo) IntegrityReport(ctx context.Context) (domain.IntegrityReport, error) {
	var report domain.IntegrityReport
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := psql.Select(
		"count(*) FILTER (WHERE word IS NULL OR word = '')",
		"count(*) FILTER (WHERE phonetic IS NULL OR phonetic = '')",
		"count(*) FILTER (WHERE "+mismatchCond+")",
	).From(table).ToSql()
	if err != nil {
		return report, fmt.Errorf("build integrity query: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(
		&report.EmptyWords, &report.EmptyPhonetics, &report.MismatchedVariants,
	); err != nil {
		return report, postgres.MapError(err, "check integrity")
	}

	if report.MismatchedVariants > 0 {
		query, args, err = psql.Select("word_variant", "phonetic").
			From(table).
			Where(mismatchCond).
			OrderBy("id").
			Limit(mismatchSampleLimit).
			ToSql()
		if err != nil {
			return report, fmt.Errorf("build mismatch query: %w", err)
		}
		if err := pgxscan.Select(ctx, q, &report.MismatchedSamples, query, args...); err != nil {
			return report, postgres.MapError(err, "sample mismatched variants")
		}
	}

	multi, err := r.multiPronunciation(ctx, q)
	if err != nil {
		return report, err
	}
	report.MultiPronunciation = multi

	return report, nil
}

// multiPronunciation returns the words with the most stored pronunciations,
// each with its records ordered primary first.
func (r *Repo) multiPronunciation(ctx context.Context, q postgres.Querier) ([]domain.WordPronunciations, error) {
	query, args, err := psql.Select("word", "count(*) AS count").
		From(table).
		GroupBy("word").
		Having("count(*) > 1").
		OrderBy("count DESC", "word").
		Limit(multiPronunciationLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build multi-pronunciation query: %w", err)
	}

	var top []struct {
		Word  string `db:"word"`
		Count int64  `db:"count"`
	}
	if err := pgxscan.Select(ctx, q, &top, query, args...); err != nil {
		return nil, postgres.MapError(err, "find multi-pronunciation words")
	}
	if len(top) == 0 {
		return []domain.WordPronunciations{}, nil
	}

	words := make([]string, len(top))
	for i, t := range top {
		words[i] = t.Word
	}

	query, args, err = psql.Select(copyColumns...).
		From(table).
		Where(sq.Eq{"word": words}).
		OrderBy("word", "variant_number NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build records query: %w", err)
	}

	var rows []recordRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "load multi-pronunciation records")
	}

	byWord := make(map[string][]domain.PronunciationRecord, len(top))
	for _, row := range rows {
		byWord[row.Word] = append(byWord[row.Word], row.toDomain())
	}

	out := make([]domain.WordPronunciations, len(top))
	for i, t := range top {
		out[i] = domain.WordPronunciations{Word: t.Word, Count: t.Count, Records: byWord[t.Word]}
	}
	return out, nil
}
