package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/homophones/internal/adapter/postgres"
	"github.com/heartmarshall/homophones/internal/adapter/postgres/testhelper"
)

// rowCount returns the number of rows stored for word.
func rowCount(t *testing.T, pool *pgxpool.Pool, word string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(
		context.Background(),
		`SELECT count(*) FROM pronunciations WHERE word = $1`,
		word,
	).Scan(&n)
	if err != nil {
		t.Fatalf("rowCount query: %v", err)
	}
	return n
}

func insertRow(ctx context.Context, q postgres.Querier, word string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO pronunciations (word, word_variant, phonetic) VALUES ($1, $1, 'T EH1 S T')`,
		word,
	)
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return insertRow(ctx, postgres.QuerierFromCtx(ctx, pool), "COMMIT")
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if rowCount(t, pool, "COMMIT") != 1 {
		t.Fatal("expected row to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if execErr := insertRow(ctx, postgres.QuerierFromCtx(ctx, pool), "ROLLBACK"); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if rowCount(t, pool, "ROLLBACK") != 0 {
		t.Fatal("expected row NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to be re-raised")
			}
		}()
		_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
			if err := insertRow(ctx, postgres.QuerierFromCtx(ctx, pool), "PANIC"); err != nil {
				t.Fatalf("insert inside tx failed: %v", err)
			}
			panic("boom")
		})
	}()

	if rowCount(t, pool, "PANIC") != 0 {
		t.Fatal("expected row NOT to exist after panicking transaction")
	}
}

func TestQuerierFromCtx_NoTx(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)

	if q := postgres.QuerierFromCtx(context.Background(), pool); q != postgres.Querier(pool) {
		t.Fatal("expected the fallback querier outside a transaction")
	}
}
