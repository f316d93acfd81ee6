// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers .env, YAML file and LINEPULSE_ environment variables over New().
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
	"time"
)

// MetricConfig describes one radar metric in a configurable metric set.
type MetricConfig struct {
	Name           string  `koanf:"name"`
	Field          string  `koanf:"field"`
	HigherIsBetter bool    `koanf:"higher_is_better"`
	Weight         float64 `koanf:"weight"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LogDir is the folder the collector writes CSV event logs into.
	LogDir string `koanf:"log_dir"`

	// CacheDir holds file-level cache entries.
	CacheDir string `koanf:"cache_dir"`

	// DBPath is the SQLite file holding sync records. Empty keeps records in memory.
	DBPath string `koanf:"db_path"`

	FileCacheTTL    time.Duration `koanf:"file_cache_ttl"`
	SessionCacheTTL time.Duration `koanf:"session_cache_ttl"`

	// SessionCacheBackend is "memory" or "redis".
	SessionCacheBackend string `koanf:"session_cache_backend"`
	RedisAddr           string `koanf:"redis_addr"`

	SyncInterval time.Duration `koanf:"sync_interval"`
	SyncDebounce time.Duration `koanf:"sync_debounce"`
	SyncWorkers  int           `koanf:"sync_workers"`
	LoadWorkers  int           `koanf:"load_workers"`

	// CompletionEvent is the event kind that closes a session.
	CompletionEvent string `koanf:"completion_event"`

	// PackagingUnits is the fixed unit count of a packaging session.
	PackagingUnits int `koanf:"packaging_units"`

	// FilePatterns maps a filename marker to a process code.
	FilePatterns map[string]string `koanf:"file_patterns"`

	// TestWorkers are excluded from every analysis.
	TestWorkers []string `koanf:"test_workers"`

	// WorkerCorrections rewrites misspelled worker names at load time.
	WorkerCorrections map[string]string `koanf:"worker_corrections"`

	// MetricSets overrides the built-in radar metric sets per process key (A, B, C, all).
	MetricSets map[string][]MetricConfig `koanf:"metric_sets"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		LogDir:              "data/logs",
		CacheDir:            "data/cache",
		DBPath:              "data/sync.db",
		FileCacheTTL:        24 * time.Hour,
		SessionCacheTTL:     30 * time.Minute,
		SessionCacheBackend: "memory",
		RedisAddr:           "localhost:6379",
		SyncInterval:        5 * time.Minute,
		SyncDebounce:        5 * time.Second,
		SyncWorkers:         runtime.NumCPU(),
		LoadWorkers:         runtime.NumCPU(),
		CompletionEvent:     "TRAY_COMPLETE",
		PackagingUnits:      60,
		FilePatterns: map[string]string{
			"포장실작업이벤트로그": "A",
			"검사작업이벤트로그":  "B",
			"이적작업이벤트로그":  "C",
		},
		TestWorkers:       []string{},
		WorkerCorrections: map[string]string{},
	}
}
