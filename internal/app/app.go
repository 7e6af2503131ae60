package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/heartmarshall/homophones/internal/adapter/postgres"
	"github.com/heartmarshall/homophones/internal/adapter/postgres/pronunciation"
	"github.com/heartmarshall/homophones/internal/auth"
	"github.com/heartmarshall/homophones/internal/config"
	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/observe"
	"github.com/heartmarshall/homophones/internal/service/homophone"
	"github.com/heartmarshall/homophones/internal/transport/middleware"
)

// Run is the application entry point. It loads configuration, builds the
// pronunciation index from the configured source, and serves HTTP until ctx
// is cancelled. A source that cannot supply the index makes Run return an
// error wrapping domain.ErrIndexUnavailable.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("index_source", cfg.Index.Source),
		slog.String("algorithm", cfg.Homophones.Algorithm),
	)

	if cfg.Metrics.Enabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    serviceName,
			ServiceVersion: Version,
		})
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("metrics shutdown", slog.String("error", err.Error()))
			}
		}()
	}
	metrics := observe.DefaultMetrics()

	deps := routerDeps{cfg: cfg, logger: logger, metrics: metrics}

	var src entrySource
	switch cfg.Index.Source {
	case config.IndexSourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		defer pool.Close()

		repo := pronunciation.New(pool)
		src = repo
		deps.db = pool
		if cfg.Auth.AdminEnabled() {
			deps.store = repo
			deps.tokens = auth.NewJWTManager(cfg.Auth.AdminJWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AdminTokenTTL)
		}
	default:
		src = dictFile(cfg.Index.DictPath)
	}

	idx, err := buildIndex(ctx, logger, src, cfg.Index.SourceTag)
	if err != nil {
		return err
	}

	svc, err := homophone.NewService(logger, idx, metrics, homophone.Config{
		Algorithm:    cfg.Homophones.Algorithm,
		MaxBatchSize: cfg.Homophones.MaxBatchSize,
		BatchWorkers: cfg.Homophones.BatchWorkers,
		BatchWait:    cfg.Homophones.BatchWait,
		CacheSize:    cfg.Homophones.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("create homophone service: %w", err)
	}
	deps.svc = svc

	if cfg.RateLimit.Enabled {
		deps.limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer deps.limiter.Stop()
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, logger, srv, cfg.Server)
}

// serve runs srv until ctx is done, then shuts it down within the
// configured timeout.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server, cfg config.ServerConfig) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}
