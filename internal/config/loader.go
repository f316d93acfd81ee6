package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "LINEPULSE_"
	envConfigFile = "LINEPULSE_CONFIG"
	envDotEnvFile = "LINEPULSE_ENV_FILE"
)

// listKeys are split on commas when they arrive through the environment.
var listKeys = map[string]bool{"test_workers": true} //nolint:gochecknoglobals // static lookup

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (LINEPULSE_ENV_FILE, default ".env") exported into the process env
//  3. file (YAML) if LINEPULSE_CONFIG is set
//  4. env (prefix LINEPULSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LINEPULSE_SYNC_WORKERS -> sync_workers. Underscores are preserved to match
	// the koanf tags on the struct.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogDir == "":
		return fmt.Errorf("%w: log_dir must not be empty", ErrInvalidConfig)
	case c.CacheDir == "":
		return fmt.Errorf("%w: cache_dir must not be empty", ErrInvalidConfig)
	case c.FileCacheTTL <= 0 || c.SessionCacheTTL <= 0:
		return fmt.Errorf("%w: cache ttls must be positive", ErrInvalidConfig)
	case c.SessionCacheBackend != "memory" && c.SessionCacheBackend != "redis":
		return fmt.Errorf("%w: session_cache_backend %q is not memory or redis", ErrInvalidConfig, c.SessionCacheBackend)
	case c.SessionCacheBackend == "redis" && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
	case c.SyncInterval <= 0 || c.SyncDebounce <= 0:
		return fmt.Errorf("%w: sync_interval and sync_debounce must be positive", ErrInvalidConfig)
	case c.SyncWorkers < 1 || c.LoadWorkers < 1:
		return fmt.Errorf("%w: sync_workers and load_workers must be at least 1", ErrInvalidConfig)
	case c.CompletionEvent == "":
		return fmt.Errorf("%w: completion_event must not be empty", ErrInvalidConfig)
	case c.PackagingUnits < 1:
		return fmt.Errorf("%w: packaging_units must be at least 1", ErrInvalidConfig)
	}
	for marker, process := range c.FilePatterns {
		if process != "A" && process != "B" && process != "C" {
			return fmt.Errorf("%w: %q -> %q", ErrUnknownPatternProcess, marker, process)
		}
	}
	for key, set := range c.MetricSets {
		for _, m := range set {
			if m.Weight < 0 {
				return fmt.Errorf("%w: %s/%s", ErrNegativeWeight, key, m.Name)
			}
		}
	}
	return nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotEnvFile)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	// godotenv.Load never overrides variables already present in the environment.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
