package logging

import (
	"context"
	"log/slog"
	"strings"

	"qualfill/internal/config"
)

// minLevelHandler drops records below level before they reach next. The
// shared handler is built at the most verbose level any stage needs, so
// stage loggers narrow it back down here.
type minLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func (h minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return minLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h minLevelHandler) WithGroup(name string) slog.Handler {
	return minLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

// WithLevelOverride returns logger restricted to records at or above level.
// Applying it twice replaces the earlier minimum instead of stacking.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	next := logger.Handler()
	if existing, ok := next.(minLevelHandler); ok {
		next = existing.next
	}
	return slog.New(minLevelHandler{next: next, level: level})
}

// ForStage returns the logger a stage writes through: tagged with the stage
// as component and filtered at logging.stage_overrides[stage], falling back
// to logging.level.
func ForStage(logger *slog.Logger, cfg *config.Config, stage string) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		level = ParseLevel(cfg.Logging.Level)
		if override := strings.TrimSpace(cfg.Logging.StageOverrides[stage]); override != "" {
			level = ParseLevel(override)
		}
	}
	return WithLevelOverride(NewComponentLogger(logger, stage), level)
}
