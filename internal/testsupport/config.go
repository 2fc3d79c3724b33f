package testsupport

import (
	"path/filepath"
	"testing"

	"carousel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.PublicDir = filepath.Join(base, "public")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Scheduler.Concurrency = 4
	cfg.Remote.ReadyTimeoutSeconds = 1
	cfg.Remote.PollIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithConcurrency overrides the per-run account fan-out.
func WithConcurrency(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scheduler.Concurrency = limit
	}
}

// WithCronExpressions overrides the scheduled trigger times.
func WithCronExpressions(expressions ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scheduler.CronExpressions = expressions
	}
}
