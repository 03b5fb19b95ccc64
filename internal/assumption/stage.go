// Package assumption adapts the assume_quality resolver to the pipeline. It
// runs right after title detection and fills the quality components a title
// did not reveal from the configured fallback rules.
package assumption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"qualfill/internal/assume"
	"qualfill/internal/config"
	"qualfill/internal/logging"
	"qualfill/internal/metainfo"
	"qualfill/internal/pipeline"
	"qualfill/internal/quality"
	"qualfill/internal/queue"
	"qualfill/internal/services"
	"qualfill/internal/stage"
)

// StageName identifies the assumption stage in ordering and logs.
const StageName = "assume_quality"

// Stage applies assumption rules to item descriptors.
type Stage struct {
	logger *slog.Logger

	mu       sync.RWMutex
	resolver *assume.Resolver
}

// New returns an unstarted assumption stage.
func New() *Stage {
	return &Stage{logger: logging.NewNop()}
}

// SetLogger replaces the stage logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Registration places the stage in the metainfo phase after detection.
func (s *Stage) Registration() pipeline.Registration {
	return pipeline.Registration{
		Name:    StageName,
		Phase:   pipeline.PhaseMetainfo,
		After:   []string{metainfo.StageName},
		Handler: s,
	}
}

// Start builds a fresh resolver from cfg.AssumeQuality. Invalid rules fail
// with services.ErrConfiguration and leave the stage unprepared.
func (s *Stage) Start(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, StageName, "start", "configuration is nil", nil)
	}
	resolver := assume.NewResolver(assume.WithLogger(s.logger))
	if err := resolver.Prepare(ResolverConfig(cfg.AssumeQuality)); err != nil {
		s.mu.Lock()
		s.resolver = nil
		s.mu.Unlock()
		return services.Wrap(services.ErrConfiguration, StageName, "prepare", "assume_quality is invalid", err)
	}
	rules, _ := resolver.Rules()
	logging.WithContext(ctx, s.logger).Info("assumptions ready", logging.Int("rules", len(rules)))

	s.mu.Lock()
	s.resolver = resolver
	s.mu.Unlock()
	return nil
}

// Execute fills the unknown components of item.Quality and flags the item
// when anything was assumed.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, StageName, "execute", "item is nil", errors.New("nil item"))
	}
	s.mu.RLock()
	resolver := s.resolver
	s.mu.RUnlock()
	if resolver == nil {
		return fmt.Errorf("%s: %w", StageName, assume.ErrNotPrepared)
	}

	before := item.Quality
	res, err := resolver.Apply(&item.Quality)
	if err != nil {
		return fmt.Errorf("%s: apply: %w", StageName, err)
	}
	if !res.AnyAssumed() {
		logging.WithContext(ctx, s.logger).Debug("nothing assumed",
			logging.String("quality", item.Quality.String()),
			logging.Int("matched_rules", len(res.Matched)),
		)
		return nil
	}
	item.AssumedQuality = true
	logging.WithContext(ctx, s.logger).Info("assumed quality",
		logging.String("before", before.String()),
		logging.String("quality", item.Quality.String()),
		logging.String("slots", slotNames(res.Assumed)),
		logging.Any("rules", res.Matched),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.resolver == nil || !s.resolver.Ready() {
		return stage.Unhealthy(StageName, "assumptions not prepared")
	}
	return stage.Healthy(StageName)
}

// ResolverConfig converts the configuration setting into resolver input.
func ResolverConfig(aq config.AssumeQuality) assume.Config {
	out := assume.Config{Quality: aq.Quality}
	for _, rule := range aq.Rules {
		out.Rules = append(out.Rules, assume.Declaration{Target: rule.Target, Quality: rule.Quality})
	}
	return out
}

func slotNames(slots []quality.Slot) string {
	names := make([]string, len(slots))
	for i, slot := range slots {
		names[i] = slot.String()
	}
	return strings.Join(names, ",")
}
