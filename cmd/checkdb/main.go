// Command checkdb prints statistics, sample rows and the integrity report
// of the pronunciations table. With --mint-admin-token it instead prints a
// bearer token for the admin endpoints.
//
// Exit codes: 0 = healthy, 1 = error, 2 = integrity problems found.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/homophones/internal/adapter/postgres"
	"github.com/heartmarshall/homophones/internal/adapter/postgres/pronunciation"
	"github.com/heartmarshall/homophones/internal/app"
	"github.com/heartmarshall/homophones/internal/auth"
	"github.com/heartmarshall/homophones/internal/config"
	"github.com/heartmarshall/homophones/pkg/ctxutil"
)

func main() {
	samplesFlag := flag.Uint64("samples", 10, "number of sample rows to print")
	mintFlag := flag.Bool("mint-admin-token", false, "print an admin bearer token and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if *mintFlag {
		if !cfg.Auth.AdminEnabled() {
			logger.Error("admin routes are disabled: set AUTH_ADMIN_JWT_SECRET")
			os.Exit(1)
		}
		jwtManager := auth.NewJWTManager(cfg.Auth.AdminJWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AdminTokenTTL)
		token, err := jwtManager.GenerateAccessToken(uuid.New(), ctxutil.RoleAdmin)
		if err != nil {
			logger.Error("generate token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := pronunciation.New(pool)

	stats, err := repo.Stats(ctx)
	if err != nil {
		logger.Error("stats", slog.String("error", err.Error()))
		os.Exit(1)
	}
	samples, err := repo.Samples(ctx, *samplesFlag)
	if err != nil {
		logger.Error("samples", slog.String("error", err.Error()))
		os.Exit(1)
	}
	report, err := repo.IntegrityReport(ctx)
	if err != nil {
		logger.Error("integrity report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(map[string]any{
		"stats":     stats,
		"samples":   samples,
		"integrity": report,
		"healthy":   report.Healthy(),
	}); err != nil {
		logger.Error("write output", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !report.Healthy() {
		os.Exit(2)
	}
}
