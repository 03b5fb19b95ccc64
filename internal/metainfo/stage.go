// Package metainfo implements the baseline quality detection stage. It reads
// quality components from an item's title before assumptions are applied.
package metainfo

import (
	"context"
	"errors"
	"log/slog"

	"qualfill/internal/config"
	"qualfill/internal/logging"
	"qualfill/internal/pipeline"
	"qualfill/internal/quality"
	"qualfill/internal/queue"
	"qualfill/internal/services"
	"qualfill/internal/stage"
)

// StageName identifies the detection stage in ordering and logs.
const StageName = "metainfo_quality"

// Stage detects quality from release titles.
type Stage struct {
	logger *slog.Logger
}

// New returns a detection stage.
func New() *Stage {
	return &Stage{logger: logging.NewNop()}
}

// SetLogger replaces the stage logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Registration places the stage first in the metainfo phase.
func (s *Stage) Registration() pipeline.Registration {
	return pipeline.Registration{Name: StageName, Phase: pipeline.PhaseMetainfo, Handler: s}
}

func (s *Stage) Start(context.Context, *config.Config) error { return nil }

// Execute fills item.Quality from the title when nothing is known yet. A
// descriptor supplied when the item was queued is left alone.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, StageName, "execute", "item is nil", errors.New("nil item"))
	}
	logger := logging.WithContext(ctx, s.logger)
	if !item.Quality.IsUnknown() {
		logger.Debug("quality already known", logging.String("quality", item.Quality.String()))
		return nil
	}
	item.Quality = quality.Detect(item.Title)
	logger.Debug("quality detected",
		logging.String("title", item.Title),
		logging.String("quality", item.Quality.String()),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(StageName)
}
