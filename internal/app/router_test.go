package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/heartmarshall/homophones/internal/auth"
	"github.com/heartmarshall/homophones/internal/config"
	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/observe"
	"github.com/heartmarshall/homophones/internal/service/homophone"
	"github.com/heartmarshall/homophones/internal/transport/middleware"
	"github.com/heartmarshall/homophones/pkg/ctxutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type adminStoreMock struct{}

func (adminStoreMock) Stats(ctx context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{}, nil
}

func (adminStoreMock) IntegrityReport(ctx context.Context) (domain.IntegrityReport, error) {
	return domain.IntegrityReport{}, nil
}

func (adminStoreMock) Samples(ctx context.Context, limit uint64) ([]domain.PronunciationRecord, error) {
	return nil, nil
}

func testDeps(t *testing.T) routerDeps {
	t.Helper()

	idx, err := buildIndex(context.Background(), slog.Default(), dictFile(sampleDict(t)), "test")
	require.NoError(t, err)

	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	svc, err := homophone.NewService(slog.Default(), idx, metrics, homophone.Config{
		Algorithm:    homophone.AlgorithmOptimized,
		MaxBatchSize: 10,
		BatchWorkers: 2,
		BatchWait:    time.Millisecond,
	})
	require.NoError(t, err)

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	return routerDeps{
		cfg: &config.Config{
			CORS:      config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST", AllowedHeaders: "Content-Type"},
			Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
			RateLimit: config.RateLimitConfig{Enabled: true, BatchPerMinute: 1},
		},
		logger:  slog.Default(),
		svc:     svc,
		metrics: metrics,
		limiter: limiter,
	}
}

func do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	t.Parallel()

	h := newRouter(testDeps(t))

	tests := []struct {
		method, path, body string
		wantStatus         int
	}{
		{http.MethodGet, "/api/homophones/there", "", http.StatusOK},
		{http.MethodGet, "/api/stats", "", http.StatusOK},
		{http.MethodPost, "/api/sentences/tokenize", `{"text":"I read it"}`, http.StatusOK},
		{http.MethodPost, "/api/sentences/replace", `{"text":"I read it","token_id":2,"replacement":"red"}`, http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/live", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/admin/integrity", "", http.StatusNotFound},
		{http.MethodDelete, "/api/stats", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			rec := do(h, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_BatchRateLimited(t *testing.T) {
	t.Parallel()

	h := newRouter(testDeps(t))

	first := do(h, http.MethodPost, "/api/homophones/batch", `{"words":["there","read"]}`, "")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Contains(t, first.Body.String(), "THEIR")

	second := do(h, http.MethodPost, "/api/homophones/batch", `{"words":["there"]}`, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRouter_AdminRoutes(t *testing.T) {
	t.Parallel()

	jwtManager := auth.NewJWTManager(testSecret, "homophones-test", time.Hour)
	deps := testDeps(t)
	deps.store = adminStoreMock{}
	deps.tokens = jwtManager
	h := newRouter(deps)

	adminToken, err := jwtManager.GenerateAccessToken(uuid.New(), ctxutil.RoleAdmin)
	require.NoError(t, err)
	userToken, err := jwtManager.GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"anonymous", "/api/admin/integrity", "", http.StatusUnauthorized},
		{"invalid token", "/api/admin/integrity", "not-a-jwt", http.StatusUnauthorized},
		{"non admin", "/api/admin/integrity", userToken, http.StatusForbidden},
		{"admin integrity", "/api/admin/integrity", adminToken, http.StatusOK},
		{"admin stats", "/api/admin/stats", adminToken, http.StatusOK},
		{"admin samples", "/api/admin/samples?limit=2", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(h, http.MethodGet, tt.path, "", tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}
