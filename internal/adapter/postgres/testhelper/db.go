package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/homophones/migrations"
)

const templateDB = "testdb"

var (
	once      sync.Once
	sharedDSN dsnTemplate
	initErr   error
)

// dsnTemplate renders a DSN for a database name on the shared container.
type dsnTemplate struct {
	host string
	port string
}

func (d dsnTemplate) forDB(name string) string {
	return fmt.Sprintf("postgres://testuser:testpass@%s:%s/%s?sslmode=disable", d.host, d.port, name)
}

// SetupTestDB starts a shared PostgreSQL container (once for the entire test run),
// applies goose migrations to a template database, and returns a pgxpool.Pool
// connected to a fresh copy of it. Every caller gets its own database, so
// tests that truncate the pronunciations table can run in parallel.
// The pool is closed via t.Cleanup; the container lives until the process exits.
// Skipped under -short.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("testhelper: skipping database test in short mode")
	}

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := "test_" + strings.ReplaceAll(uuid.New().String()[:13], "-", "")
	if err := createFromTemplate(ctx, sharedDSN.forDB("postgres"), name); err != nil {
		t.Fatalf("testhelper: failed to create database %s: %v", name, err)
	}

	pool, err := pgxpool.New(ctx, sharedDSN.forDB(name))
	if err != nil {
		t.Fatalf("testhelper: failed to create pgxpool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// createFromTemplate clones the migrated template database. Postgres refuses
// concurrent clones of one template, so calls are serialised.
var cloneMu sync.Mutex

func createFromTemplate(ctx context.Context, adminDSN, name string) error {
	cloneMu.Lock()
	defer cloneMu.Unlock()

	conn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return fmt.Errorf("connect admin: %w", err)
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()+" TEMPLATE "+templateDB)
	return err
}

func startContainerAndMigrate() (dsnTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       templateDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return dsnTemplate{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return dsnTemplate{}, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return dsnTemplate{}, fmt.Errorf("get mapped port: %w", err)
	}

	tmpl := dsnTemplate{host: host, port: port.Port()}
	dsn := tmpl.forDB(templateDB)

	// Apply goose migrations using database/sql (goose requires *sql.DB).
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return dsnTemplate{}, fmt.Errorf("sql.Open: %w", err)
	}
	// The template must have no open connections when it is cloned.
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return dsnTemplate{}, fmt.Errorf("db ping: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return dsnTemplate{}, fmt.Errorf("goose new provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return dsnTemplate{}, fmt.Errorf("goose up: %w", err)
	}

	return tmpl, nil
}
