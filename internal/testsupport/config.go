package testsupport

import (
	"path/filepath"
	"testing"

	"qualfill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Pipeline.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithAssumeQuality sets the single-string assume_quality form.
func WithAssumeQuality(q string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AssumeQuality = config.AssumeQuality{Quality: q}
	}
}

// WithAssumeRules sets the table form from alternating target, quality pairs.
func WithAssumeRules(pairs ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(pairs)%2 != 0 {
			b.t.Fatalf("WithAssumeRules needs target/quality pairs, got %d values", len(pairs))
		}
		rules := make([]config.AssumeRule, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			rules = append(rules, config.AssumeRule{Target: pairs[i], Quality: pairs[i+1]})
		}
		b.cfg.AssumeQuality = config.AssumeQuality{Rules: rules}
	}
}

// WithFilter sets the filter requirement.
func WithFilter(requirement string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Filter.Quality = requirement
	}
}

// WithWorkers overrides the pipeline worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
