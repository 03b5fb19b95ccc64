package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"qualfill/internal/config"
	"qualfill/internal/logging"
	"qualfill/internal/queue"
	"qualfill/internal/services"
	"qualfill/internal/stage"
)

// ItemStore persists item state after processing.
type ItemStore interface {
	Update(context.Context, *queue.Item) error
}

// loggerAware stages receive their stage logger at registration.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// Summary reports the outcome of one run.
type Summary struct {
	RunID          string        `json:"run_id"`
	Total          int           `json:"total"`
	Accepted       int           `json:"accepted"`
	Rejected       int           `json:"rejected"`
	Review         int           `json:"review"`
	Failed         int           `json:"failed"`
	Assumed        int           `json:"assumed"`
	DisabledStages []string      `json:"disabled_stages,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Manager coordinates item processing using registered stages.
type Manager struct {
	cfg    *config.Config
	store  ItemStore
	base   *slog.Logger
	logger *slog.Logger

	mu   sync.Mutex
	regs []Registration
}

// NewManager constructs a pipeline manager. store may be nil for in-memory runs.
func NewManager(cfg *config.Config, logger *slog.Logger, store ItemStore) *Manager {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Register adds a stage. Ordering is checked when the run starts.
func (m *Manager) Register(reg Registration) error {
	if err := reg.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.regs {
		if existing.Name == reg.Name {
			return fmt.Errorf("stage %s registered twice", reg.Name)
		}
	}
	if aware, ok := reg.Handler.(loggerAware); ok {
		aware.SetLogger(logging.ForStage(m.base, m.cfg, reg.Name))
	}
	m.regs = append(m.regs, reg)
	return nil
}

// Stages returns the registrations in execution order.
func (m *Manager) Stages() ([]Registration, error) {
	m.mu.Lock()
	regs := append([]Registration(nil), m.regs...)
	m.mu.Unlock()
	return Order(regs)
}

// HealthCheck collects health from every registered stage.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	ordered, err := m.Stages()
	if err != nil {
		return []stage.Health{stage.Unhealthy("pipeline", err.Error())}
	}
	out := make([]stage.Health, 0, len(ordered))
	for _, reg := range ordered {
		out = append(out, reg.Handler.HealthCheck(ctx))
	}
	return out
}

type activeStage struct {
	Registration
	logger *slog.Logger
}

// Run starts every stage once and processes items with the configured number
// of workers. Items are updated in place. A stage whose Start fails is
// disabled for the run unless pipeline.strict_start is set, in which case Run
// returns the error before touching any item.
func (m *Manager) Run(ctx context.Context, items []*queue.Item) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()
	summary := Summary{RunID: runID}

	ordered, err := m.Stages()
	if err != nil {
		return summary, err
	}

	ctx = services.WithRequestID(ctx, runID)
	runLogger := logging.WithContext(ctx, m.logger)
	runLogger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("items", len(items)),
		logging.Int("stages", len(ordered)),
	)

	active := make([]activeStage, 0, len(ordered))
	for _, reg := range ordered {
		stageCtx := services.WithStage(ctx, reg.Name)
		if err := reg.Handler.Start(stageCtx, m.cfg); err != nil {
			if m.cfg.Pipeline.StrictStart {
				return summary, fmt.Errorf("start stage %s: %w", reg.Name, err)
			}
			logging.WarnWithContext(logging.WithContext(stageCtx, m.logger), "stage disabled for run", "stage_start_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the stage configuration and rerun"),
				logging.String(logging.FieldImpact, "items skip this stage"),
			)
			summary.DisabledStages = append(summary.DisabledStages, reg.Name)
			continue
		}
		active = append(active, activeStage{
			Registration: reg,
			logger:       logging.ForStage(m.base, m.cfg, reg.Name),
		})
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan *queue.Item)
	)
	workers := m.cfg.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if !m.processItem(ctx, active, item) {
					continue
				}
				mu.Lock()
				summary.record(item)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, item := range items {
		if item == nil {
			continue
		}
		select {
		case jobs <- item:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	summary.Duration = time.Since(started)
	runLogger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("total", summary.Total),
		logging.Int("accepted", summary.Accepted),
		logging.Int("rejected", summary.Rejected),
		logging.Int("review", summary.Review),
		logging.Int("failed", summary.Failed),
		logging.Int("assumed", summary.Assumed),
		logging.Duration("run_duration", summary.Duration),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processItem runs item through the active stages. It reports false when the
// run was cancelled before the item reached a final status; such items are
// left for the next run.
func (m *Manager) processItem(ctx context.Context, active []activeStage, item *queue.Item) bool {
	itemCtx := services.WithItemID(ctx, item.ID)
	item.Status = queue.StatusProcessing
	item.RejectReason = ""
	item.ErrorMessage = ""

	for _, stg := range active {
		if ctx.Err() != nil {
			return false
		}
		stageCtx := services.WithStage(itemCtx, stg.Name)
		logger := logging.WithContext(stageCtx, stg.logger)
		item.ProgressStage = stg.Name

		stageStart := time.Now()
		if err := stg.Handler.Execute(stageCtx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Debug("stage interrupted")
				return false
			}
			status := services.FailureStatus(err)
			item.SetFailed(status, stg.Name, err.Error())
			logging.ErrorWithContext(logger, "stage failed", "stage_failure",
				logging.String("resolved_status", string(status)),
				logging.String("title", item.Title),
				logging.Alert("stage_failure"),
				logging.Error(err),
			)
			break
		}
		logger.Debug("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String("quality", item.Quality.String()),
			logging.Duration("stage_duration", time.Since(stageStart)),
		)
		if item.IsRejected() {
			logger.Info("item rejected",
				logging.Args(logging.DecisionAttrs("filter", "rejected", item.RejectReason)...)...,
			)
			break
		}
	}

	if item.Status == queue.StatusProcessing {
		item.Status = queue.StatusAccepted
	}
	m.persist(itemCtx, item)
	return true
}

func (m *Manager) persist(ctx context.Context, item *queue.Item) {
	if m.store == nil || item.ID == 0 {
		return
	}
	if err := m.store.Update(ctx, item); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, m.logger), "failed to persist item", "persist_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the queue database"),
		)
	}
}

func (s *Summary) record(item *queue.Item) {
	s.Total++
	switch item.Status {
	case queue.StatusAccepted:
		s.Accepted++
	case queue.StatusRejected:
		s.Rejected++
	case queue.StatusReview:
		s.Review++
	case queue.StatusFailed:
		s.Failed++
	}
	if item.AssumedQuality {
		s.Assumed++
	}
}
