package pipeline_test

import (
	"errors"
	"testing"

	"qualfill/internal/pipeline"
)

func names(regs []pipeline.Registration) []string {
	out := make([]string, len(regs))
	for i, reg := range regs {
		out[i] = reg.Name
	}
	return out
}

func equalNames(t *testing.T, got []pipeline.Registration, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("order = %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotNames, want)
		}
	}
}

func TestOrderGroupsByPhase(t *testing.T) {
	regs := []pipeline.Registration{
		{Name: "filter", Phase: pipeline.PhaseFilter, Handler: newStubStage("filter")},
		{Name: "detect", Phase: pipeline.PhaseMetainfo, Handler: newStubStage("detect")},
		{Name: "assume", Phase: pipeline.PhaseMetainfo, After: []string{"detect"}, Handler: newStubStage("assume")},
	}
	ordered, err := pipeline.Order(regs)
	if err != nil {
		t.Fatalf("Order returned error: %v", err)
	}
	equalNames(t, ordered, "detect", "assume", "filter")
}

func TestOrderHonorsAfterAndKeepsRegistrationOrder(t *testing.T) {
	regs := []pipeline.Registration{
		{Name: "assume", Phase: pipeline.PhaseMetainfo, After: []string{"detect"}, Handler: newStubStage("assume")},
		{Name: "tags", Phase: pipeline.PhaseMetainfo, Handler: newStubStage("tags")},
		{Name: "detect", Phase: pipeline.PhaseMetainfo, Handler: newStubStage("detect")},
	}
	ordered, err := pipeline.Order(regs)
	if err != nil {
		t.Fatalf("Order returned error: %v", err)
	}
	equalNames(t, ordered, "tags", "detect", "assume")
}

func TestOrderAfterDoesNotMeanImmediatelyAfter(t *testing.T) {
	regs := []pipeline.Registration{
		{Name: "detect", Phase: pipeline.PhaseMetainfo, Handler: newStubStage("detect")},
		{Name: "tags", Phase: pipeline.PhaseMetainfo, After: []string{"detect"}, Handler: newStubStage("tags")},
		{Name: "assume", Phase: pipeline.PhaseMetainfo, After: []string{"detect"}, Handler: newStubStage("assume")},
	}
	ordered, err := pipeline.Order(regs)
	if err != nil {
		t.Fatalf("Order returned error: %v", err)
	}
	equalNames(t, ordered, "detect", "tags", "assume")
}

func TestOrderRejectsBadConstraints(t *testing.T) {
	cases := map[string][]pipeline.Registration{
		"unknown": {
			{Name: "assume", Phase: pipeline.PhaseMetainfo, After: []string{"missing"}, Handler: newStubStage("assume")},
		},
		"cross phase": {
			{Name: "filter", Phase: pipeline.PhaseFilter, Handler: newStubStage("filter")},
			{Name: "assume", Phase: pipeline.PhaseMetainfo, After: []string{"filter"}, Handler: newStubStage("assume")},
		},
		"cycle": {
			{Name: "a", Phase: pipeline.PhaseMetainfo, After: []string{"b"}, Handler: newStubStage("a")},
			{Name: "b", Phase: pipeline.PhaseMetainfo, After: []string{"a"}, Handler: newStubStage("b")},
		},
		"bad phase": {
			{Name: "a", Phase: pipeline.Phase("output"), Handler: newStubStage("a")},
		},
	}
	for name, regs := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := pipeline.Order(regs); !errors.Is(err, pipeline.ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}
}

func TestOrderRejectsDuplicatesAndMissingHandlers(t *testing.T) {
	dup := []pipeline.Registration{
		{Name: "a", Phase: pipeline.PhaseMetainfo, Handler: newStubStage("a")},
		{Name: "a", Phase: pipeline.PhaseFilter, Handler: newStubStage("a")},
	}
	if _, err := pipeline.Order(dup); err == nil {
		t.Fatal("expected duplicate stage error")
	}
	if _, err := pipeline.Order([]pipeline.Registration{{Name: "a", Phase: pipeline.PhaseMetainfo}}); err == nil {
		t.Fatal("expected missing handler error")
	}
}

func TestPhasesReturnsCopy(t *testing.T) {
	phases := pipeline.Phases()
	phases[0] = "mutated"
	if pipeline.Phases()[0] != pipeline.PhaseMetainfo {
		t.Fatal("Phases exposed internal slice")
	}
}
