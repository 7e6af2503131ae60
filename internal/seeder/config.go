package seeder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds dictionary loader settings.
type Config struct {
	DictPath       string `yaml:"dict_path"       env:"LOADER_DICT_PATH"`
	SourceTag      string `yaml:"source_tag"      env:"LOADER_SOURCE_TAG"      env-default:"CMU Pronouncing Dictionary v0.7b"`
	SkipMigrations bool   `yaml:"skip_migrations" env:"LOADER_SKIP_MIGRATIONS"`
	DryRun         bool   `yaml:"dry_run"         env:"LOADER_DRY_RUN"`
}

// LoadConfig reads loader configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("loader config: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("loader config: read %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loader config: read env: %w", err)
	}
	return &cfg, nil
}
