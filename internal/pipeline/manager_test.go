package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"qualfill/internal/config"
	"qualfill/internal/pipeline"
	"qualfill/internal/queue"
	"qualfill/internal/services"
	"qualfill/internal/stage"
	"qualfill/internal/testsupport"
)

type stubStage struct {
	name        string
	startErr    error
	executeErr  error
	executeHook func(*queue.Item)
	health      stage.Health

	executed atomic.Int32
	mu       sync.Mutex
	logger   *slog.Logger
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

func (s *stubStage) Start(context.Context, *config.Config) error { return s.startErr }

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	s.executed.Add(1)
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health { return s.health }

func register(t *testing.T, mgr *pipeline.Manager, phase pipeline.Phase, stg *stubStage, after ...string) {
	t.Helper()
	if err := mgr.Register(pipeline.Registration{Name: stg.name, Phase: phase, After: after, Handler: stg}); err != nil {
		t.Fatalf("Register(%s): %v", stg.name, err)
	}
}

func TestManagerAcceptsAndRejects(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := pipeline.NewManager(cfg, nil, nil)

	var order []string
	var orderMu sync.Mutex
	track := func(name string) func(*queue.Item) {
		return func(item *queue.Item) {
			orderMu.Lock()
			order = append(order, fmt.Sprintf("%s:%s", item.Title, name))
			orderMu.Unlock()
		}
	}
	detect := newStubStage("detect")
	detect.executeHook = track("detect")
	filter := newStubStage("filter")
	filter.executeHook = func(item *queue.Item) {
		track("filter")(item)
		if item.Title == "bad" {
			item.Reject("filter", "not wanted")
		}
	}
	register(t, mgr, pipeline.PhaseFilter, filter)
	register(t, mgr, pipeline.PhaseMetainfo, detect)

	if detect.logger == nil || filter.logger == nil {
		t.Fatal("expected Register to hand stages a logger")
	}

	good := &queue.Item{Title: "good", Status: queue.StatusPending}
	bad := &queue.Item{Title: "bad", Status: queue.StatusPending}
	summary, err := mgr.Run(context.Background(), []*queue.Item{good, bad})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if good.Status != queue.StatusAccepted {
		t.Fatalf("good status = %s", good.Status)
	}
	if bad.Status != queue.StatusRejected || bad.RejectReason != "not wanted" || bad.ProgressStage != "filter" {
		t.Fatalf("unexpected rejected item: %+v", bad)
	}
	if summary.Total != 2 || summary.Accepted != 1 || summary.Rejected != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}

	perItem := map[string][]string{}
	for _, entry := range order {
		title, name, _ := strings.Cut(entry, ":")
		perItem[title] = append(perItem[title], name)
	}
	for title, stages := range perItem {
		if len(stages) != 2 || stages[0] != "detect" || stages[1] != "filter" {
			t.Fatalf("%s ran stages %v, want [detect filter]", title, stages)
		}
	}
}

func TestManagerStopsAtRejection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := pipeline.NewManager(cfg, nil, nil)

	first := newStubStage("first")
	first.executeHook = func(item *queue.Item) { item.Reject("first", "nope") }
	second := newStubStage("second")
	register(t, mgr, pipeline.PhaseMetainfo, first)
	register(t, mgr, pipeline.PhaseMetainfo, second, "first")

	item := &queue.Item{Title: "x"}
	if _, err := mgr.Run(context.Background(), []*queue.Item{item}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if second.executed.Load() != 0 {
		t.Fatal("expected later stage to be skipped after rejection")
	}
}

func TestManagerClassifiesFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"validation", services.Wrap(services.ErrValidation, "s", "op", "bad input", nil), queue.StatusReview},
		{"configuration", services.Wrap(services.ErrConfiguration, "s", "op", "bad config", nil), queue.StatusReview},
		{"transient", services.Wrap(services.ErrTransient, "s", "op", "blip", nil), queue.StatusFailed},
		{"plain", errors.New("boom"), queue.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			mgr := pipeline.NewManager(cfg, nil, nil)
			failing := newStubStage("failing")
			failing.executeErr = tc.err
			after := newStubStage("after")
			register(t, mgr, pipeline.PhaseMetainfo, failing)
			register(t, mgr, pipeline.PhaseFilter, after)

			item := &queue.Item{Title: "x"}
			summary, err := mgr.Run(context.Background(), []*queue.Item{item})
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if item.Status != tc.want {
				t.Fatalf("status = %s, want %s", item.Status, tc.want)
			}
			if item.ErrorMessage == "" || item.ProgressStage != "failing" {
				t.Fatalf("expected failure details, got %+v", item)
			}
			if after.executed.Load() != 0 {
				t.Fatal("expected later stage to be skipped after failure")
			}
			if summary.Review+summary.Failed != 1 {
				t.Fatalf("unexpected summary: %+v", summary)
			}
		})
	}
}

func TestManagerDisablesStageWhenStartFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := pipeline.NewManager(cfg, nil, nil)
	broken := newStubStage("broken")
	broken.startErr = errors.New("no config")
	healthy := newStubStage("healthy")
	register(t, mgr, pipeline.PhaseMetainfo, broken)
	register(t, mgr, pipeline.PhaseFilter, healthy)

	item := &queue.Item{Title: "x"}
	summary, err := mgr.Run(context.Background(), []*queue.Item{item})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if broken.executed.Load() != 0 || healthy.executed.Load() != 1 {
		t.Fatalf("broken ran %d times, healthy ran %d times", broken.executed.Load(), healthy.executed.Load())
	}
	if item.Status != queue.StatusAccepted {
		t.Fatalf("status = %s", item.Status)
	}
	if len(summary.DisabledStages) != 1 || summary.DisabledStages[0] != "broken" {
		t.Fatalf("disabled stages = %v", summary.DisabledStages)
	}
}

func TestManagerStrictStartAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.StrictStart = true
	mgr := pipeline.NewManager(cfg, nil, nil)
	broken := newStubStage("broken")
	broken.startErr = errors.New("no config")
	register(t, mgr, pipeline.PhaseMetainfo, broken)

	item := &queue.Item{Title: "x", Status: queue.StatusPending}
	if _, err := mgr.Run(context.Background(), []*queue.Item{item}); !errors.Is(err, broken.startErr) {
		t.Fatalf("expected start error, got %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected item untouched, got %s", item.Status)
	}
}

func TestManagerRejectsDuplicateRegistration(t *testing.T) {
	mgr := pipeline.NewManager(testsupport.NewConfig(t), nil, nil)
	register(t, mgr, pipeline.PhaseMetainfo, newStubStage("a"))
	err := mgr.Register(pipeline.Registration{Name: "a", Phase: pipeline.PhaseFilter, Handler: newStubStage("a")})
	if err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestManagerPersistsToStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, store, "Show.S01E01")

	mgr := pipeline.NewManager(cfg, nil, store)
	mark := newStubStage("mark")
	mark.executeHook = func(item *queue.Item) {
		item.Quality = testsupport.MustParseQuality(t, "720p hdtv")
		item.AssumedQuality = true
	}
	register(t, mgr, pipeline.PhaseMetainfo, mark)

	summary, err := mgr.Run(context.Background(), []*queue.Item{item})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Assumed != 1 {
		t.Fatalf("assumed = %d", summary.Assumed)
	}
	stored, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != queue.StatusAccepted || stored.Quality.String() != "720p hdtv" || !stored.AssumedQuality {
		t.Fatalf("unexpected stored item: %+v", stored)
	}
}

func TestManagerProcessesManyItemsConcurrently(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(4))
	mgr := pipeline.NewManager(cfg, nil, nil)
	count := newStubStage("count")
	register(t, mgr, pipeline.PhaseMetainfo, count)

	items := make([]*queue.Item, 50)
	for i := range items {
		items[i] = &queue.Item{Title: fmt.Sprintf("item-%d", i)}
	}
	summary, err := mgr.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Total != 50 || summary.Accepted != 50 || count.executed.Load() != 50 {
		t.Fatalf("summary %+v, executed %d", summary, count.executed.Load())
	}
}

func TestManagerCancelledRun(t *testing.T) {
	mgr := pipeline.NewManager(testsupport.NewConfig(t), nil, nil)
	register(t, mgr, pipeline.PhaseMetainfo, newStubStage("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	item := &queue.Item{Title: "x", Status: queue.StatusPending}
	summary, err := mgr.Run(ctx, []*queue.Item{item})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Accepted != 0 {
		t.Fatalf("expected nothing accepted, got %+v", summary)
	}
}

func TestManagerHealthCheck(t *testing.T) {
	mgr := pipeline.NewManager(testsupport.NewConfig(t), nil, nil)
	sick := newStubStage("sick")
	sick.health = stage.Unhealthy("sick", "down")
	register(t, mgr, pipeline.PhaseFilter, sick)
	register(t, mgr, pipeline.PhaseMetainfo, newStubStage("fine"))

	health := mgr.HealthCheck(context.Background())
	if len(health) != 2 || health[0].Name != "fine" || health[1].Ready {
		t.Fatalf("unexpected health: %+v", health)
	}
}
