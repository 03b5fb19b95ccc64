// Package qualityfilter rejects items whose resolved quality does not meet
// the configured requirement.
package qualityfilter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"qualfill/internal/config"
	"qualfill/internal/logging"
	"qualfill/internal/pipeline"
	"qualfill/internal/quality"
	"qualfill/internal/queue"
	"qualfill/internal/services"
	"qualfill/internal/stage"
)

// StageName identifies the filter stage in ordering and logs.
const StageName = "quality"

// Stage filters items on filter.quality.
type Stage struct {
	logger *slog.Logger

	mu          sync.RWMutex
	started     bool
	requirement *quality.Requirement
}

// New returns an unstarted filter stage.
func New() *Stage {
	return &Stage{logger: logging.NewNop()}
}

// SetLogger replaces the stage logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Registration places the stage in the filter phase.
func (s *Stage) Registration() pipeline.Registration {
	return pipeline.Registration{Name: StageName, Phase: pipeline.PhaseFilter, Handler: s}
}

// Start parses filter.quality. An empty requirement accepts every item.
func (s *Stage) Start(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, StageName, "start", "configuration is nil", nil)
	}
	var req *quality.Requirement
	if cfg.Filter.Quality != "" {
		parsed, err := stage.ParseRequirement(StageName, "filter.quality", cfg.Filter.Quality)
		if err != nil {
			s.mu.Lock()
			s.started, s.requirement = false, nil
			s.mu.Unlock()
			return err
		}
		req = &parsed
		logging.WithContext(ctx, s.logger).Info("quality filter ready", logging.String("requirement", parsed.String()))
	}
	s.mu.Lock()
	s.started, s.requirement = true, req
	s.mu.Unlock()
	return nil
}

// Execute rejects the item when its descriptor does not meet the requirement.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, StageName, "execute", "item is nil", errors.New("nil item"))
	}
	s.mu.RLock()
	started, req := s.started, s.requirement
	s.mu.RUnlock()
	if !started {
		return services.Wrap(services.ErrTransient, StageName, "execute", "stage not started", nil)
	}
	if req == nil || req.Allows(item.Quality) {
		return nil
	}
	reason := fmt.Sprintf("quality %s does not meet %s", item.Quality, req)
	item.Reject(StageName, reason)
	logging.WithContext(ctx, s.logger).Debug("quality rejected",
		logging.Args(logging.DecisionAttrs("quality_filter", "rejected", reason)...)...,
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return stage.Unhealthy(StageName, "filter not started")
	}
	return stage.Healthy(StageName)
}
