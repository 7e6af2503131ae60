package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/homophones/internal/config"
	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/observe"
	"github.com/heartmarshall/homophones/internal/service/homophone"
	"github.com/heartmarshall/homophones/internal/transport/middleware"
	"github.com/heartmarshall/homophones/internal/transport/rest"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type adminStore interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
	IntegrityReport(ctx context.Context) (domain.IntegrityReport, error)
	Samples(ctx context.Context, limit uint64) ([]domain.PronunciationRecord, error)
}

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
}

// routerDeps holds everything the HTTP router mounts. db, store and tokens
// are nil when the index comes from a dictionary file or admin auth is off.
type routerDeps struct {
	cfg     *config.Config
	logger  *slog.Logger
	svc     *homophone.Service
	metrics *observe.Metrics
	limiter *middleware.RateLimiter
	db      pinger
	store   adminStore
	tokens  tokenValidator
}

func newRouter(d routerDeps) http.Handler {
	homophones := rest.NewHomophoneHandler(d.svc, d.logger)
	sentences := rest.NewSentenceHandler(d.svc, d.logger)
	health := rest.NewHealthHandler(d.db, d.svc, BuildVersion())

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/homophones/{word}", homophones.Lookup)
	batch := http.Handler(http.HandlerFunc(homophones.Batch))
	if d.limiter != nil {
		batch = d.limiter.Limit(d.cfg.RateLimit.BatchPerMinute)(batch)
	}
	mux.Handle("POST /api/homophones/batch", batch)
	mux.HandleFunc("GET /api/stats", homophones.Stats)

	mux.HandleFunc("POST /api/sentences/tokenize", sentences.Tokenize)
	mux.HandleFunc("POST /api/sentences/replace", sentences.Replace)

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /api/health", health.Health)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)

	if d.cfg.Metrics.Enabled {
		mux.Handle("GET "+d.cfg.Metrics.Path, promhttp.Handler())
	}

	if d.store != nil && d.tokens != nil {
		admin := rest.NewAdminHandler(d.store, d.logger)
		guard := middleware.Chain(middleware.Auth(d.tokens), middleware.RequireAdmin)
		mux.Handle("GET /api/admin/integrity", guard(http.HandlerFunc(admin.Integrity)))
		mux.Handle("GET /api/admin/stats", guard(http.HandlerFunc(admin.StoreStats)))
		mux.Handle("GET /api/admin/samples", guard(http.HandlerFunc(admin.Samples)))
	}

	return middleware.Chain(
		middleware.Recovery(d.logger),
		middleware.RequestID(),
		middleware.Logger(d.logger),
		middleware.CORS(d.cfg.CORS),
		middleware.Middleware(observe.Middleware(d.metrics)),
	)(mux)
}
