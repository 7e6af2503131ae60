package config

import (
	"fmt"
	"strings"
)

const minSecretLength = 32

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Index.validate(c.Database); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if err := c.Homophones.validate(); err != nil {
		return fmt.Errorf("homophones: %w", err)
	}

	if c.Auth.AdminEnabled() && len(c.Auth.AdminJWTSecret) < minSecretLength {
		return fmt.Errorf("auth.admin_jwt_secret must be empty or at least %d characters (got %d)",
			minSecretLength, len(c.Auth.AdminJWTSecret))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.BatchPerMinute <= 0 {
			return fmt.Errorf("rate_limit.batch_per_minute must be > 0 (got %d)", c.RateLimit.BatchPerMinute)
		}
		if c.RateLimit.CleanupInterval <= 0 {
			return fmt.Errorf("rate_limit.cleanup_interval must be > 0 (got %v)", c.RateLimit.CleanupInterval)
		}
	}

	return nil
}

func (i *IndexConfig) validate(db DatabaseConfig) error {
	switch i.Source {
	case IndexSourcePostgres:
		if db.DSN == "" {
			return fmt.Errorf("database.dsn is required when source is %q", IndexSourcePostgres)
		}
	case IndexSourceFile:
		if i.DictPath == "" {
			return fmt.Errorf("dict_path is required when source is %q", IndexSourceFile)
		}
	default:
		return fmt.Errorf("source must be %q or %q (got %q)", IndexSourcePostgres, IndexSourceFile, i.Source)
	}
	return nil
}

func (h *HomophonesConfig) validate() error {
	if h.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be > 0 (got %d)", h.MaxBatchSize)
	}
	if h.BatchWorkers <= 0 {
		return fmt.Errorf("batch_workers must be > 0 (got %d)", h.BatchWorkers)
	}
	if h.BatchWait < 0 {
		return fmt.Errorf("batch_wait must be >= 0 (got %v)", h.BatchWait)
	}
	if h.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0 (got %d)", h.CacheSize)
	}
	switch h.Algorithm {
	case "optimized", "naive":
	default:
		return fmt.Errorf("algorithm must be \"optimized\" or \"naive\" (got %q)", h.Algorithm)
	}
	return nil
}
