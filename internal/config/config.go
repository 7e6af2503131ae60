package config

import (
	"strings"
	"time"
)

// Index sources.
const (
	IndexSourcePostgres = "postgres"
	IndexSourceFile     = "file"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Index      IndexConfig      `yaml:"index"`
	Homophones HomophonesConfig `yaml:"homophones"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"11001"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// IndexConfig selects where the pronunciation index is built from at start-up.
type IndexConfig struct {
	Source    string `yaml:"source"     env:"INDEX_SOURCE"     env-default:"postgres"`
	DictPath  string `yaml:"dict_path"  env:"INDEX_DICT_PATH"`
	SourceTag string `yaml:"source_tag" env:"INDEX_SOURCE_TAG" env-default:"CMU Pronouncing Dictionary v0.7b"`
}

// HomophonesConfig tunes resolution and batching.
type HomophonesConfig struct {
	MaxBatchSize int           `yaml:"max_batch_size" env:"HOMOPHONES_MAX_BATCH_SIZE" env-default:"50"`
	Algorithm    string        `yaml:"algorithm"      env:"HOMOPHONES_ALGORITHM"      env-default:"optimized"`
	BatchWorkers int           `yaml:"batch_workers"  env:"HOMOPHONES_BATCH_WORKERS"  env-default:"8"`
	BatchWait    time.Duration `yaml:"batch_wait"     env:"HOMOPHONES_BATCH_WAIT"     env-default:"1ms"`
	CacheSize    int           `yaml:"cache_size"     env:"HOMOPHONES_CACHE_SIZE"     env-default:"4096"`
}

// AuthConfig holds admin authentication settings. An empty secret disables
// the admin routes.
type AuthConfig struct {
	AdminJWTSecret string        `yaml:"admin_jwt_secret" env:"AUTH_ADMIN_JWT_SECRET"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"homophones"`
	AdminTokenTTL  time.Duration `yaml:"admin_token_ttl"  env:"AUTH_ADMIN_TOKEN_TTL"  env-default:"1h"`
}

// AdminEnabled reports whether admin routes should be mounted.
func (c AuthConfig) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// RateLimitConfig limits batch requests per client IP.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"          env-default:"true"`
	BatchPerMinute  int           `yaml:"batch_per_minute" env:"RATE_LIMIT_BATCH_PER_MINUTE" env-default:"600"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"1m"`
}

// SplitList splits a comma-separated setting into trimmed, non-empty items.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
