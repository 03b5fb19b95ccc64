package main

import (
	"fmt"
	"log/slog"

	"qualfill/internal/assumption"
	"qualfill/internal/config"
	"qualfill/internal/metainfo"
	"qualfill/internal/pipeline"
	"qualfill/internal/qualityfilter"
)

// newPipeline registers the built-in stages on a fresh manager.
func newPipeline(cfg *config.Config, logger *slog.Logger, store pipeline.ItemStore) (*pipeline.Manager, error) {
	mgr := pipeline.NewManager(cfg, logger, store)
	for _, reg := range []pipeline.Registration{
		metainfo.New().Registration(),
		assumption.New().Registration(),
		qualityfilter.New().Registration(),
	} {
		if err := mgr.Register(reg); err != nil {
			return nil, fmt.Errorf("register stage %s: %w", reg.Name, err)
		}
	}
	return mgr, nil
}
