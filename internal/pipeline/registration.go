package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"qualfill/internal/stage"
)

// Phase groups stages. Phases always run in the order of Phases().
type Phase string

const (
	PhaseMetainfo Phase = "metainfo"
	PhaseFilter   Phase = "filter"
)

var phaseOrder = []Phase{PhaseMetainfo, PhaseFilter}

// Phases returns the fixed phase order.
func Phases() []Phase {
	cp := make([]Phase, len(phaseOrder))
	copy(cp, phaseOrder)
	return cp
}

func (p Phase) valid() bool {
	for _, known := range phaseOrder {
		if p == known {
			return true
		}
	}
	return false
}

// ErrInvalidOrder reports stage ordering constraints that cannot be satisfied.
var ErrInvalidOrder = errors.New("invalid stage order")

// Registration declares a stage to the manager.
type Registration struct {
	Name    string
	Phase   Phase
	After   []string
	Handler stage.Handler
}

func (r Registration) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("stage name is required")
	}
	if r.Handler == nil {
		return fmt.Errorf("stage %s: handler is required", r.Name)
	}
	if !r.Phase.valid() {
		return fmt.Errorf("%w: stage %s has unknown phase %q", ErrInvalidOrder, r.Name, r.Phase)
	}
	return nil
}

// Order returns the registrations in execution order: phase by phase, and
// within a phase each stage after every stage it names in After. Stages with
// no constraint between them keep registration order. A reference to an
// unknown stage or a stage in another phase, or a cycle, fails with
// ErrInvalidOrder.
//
// After only guarantees "later in the same phase", not "immediately after":
// another stage registered earlier with no constraint against this one may
// still run between a stage and the stage it names.
func Order(regs []Registration) ([]Registration, error) {
	byName := make(map[string]Registration, len(regs))
	for _, reg := range regs {
		if err := reg.validate(); err != nil {
			return nil, err
		}
		if _, dup := byName[reg.Name]; dup {
			return nil, fmt.Errorf("stage %s registered twice", reg.Name)
		}
		byName[reg.Name] = reg
	}
	for _, reg := range regs {
		for _, dep := range reg.After {
			prior, ok := byName[dep]
			if !ok {
				return nil, fmt.Errorf("%w: stage %s runs after unknown stage %s", ErrInvalidOrder, reg.Name, dep)
			}
			if prior.Phase != reg.Phase {
				return nil, fmt.Errorf("%w: stage %s (%s) runs after %s in phase %s", ErrInvalidOrder, reg.Name, reg.Phase, dep, prior.Phase)
			}
		}
	}

	ordered := make([]Registration, 0, len(regs))
	for _, phase := range phaseOrder {
		var pending []Registration
		for _, reg := range regs {
			if reg.Phase == phase {
				pending = append(pending, reg)
			}
		}
		placed := make(map[string]bool, len(pending))
		for len(pending) > 0 {
			next := -1
			for i, reg := range pending {
				if afterAll(reg.After, placed) {
					next = i
					break
				}
			}
			if next < 0 {
				names := make([]string, len(pending))
				for i, reg := range pending {
					names[i] = reg.Name
				}
				return nil, fmt.Errorf("%w: cycle among %s", ErrInvalidOrder, strings.Join(names, ", "))
			}
			placed[pending[next].Name] = true
			ordered = append(ordered, pending[next])
			pending = append(pending[:next], pending[next+1:]...)
		}
	}
	return ordered, nil
}

func afterAll(deps []string, placed map[string]bool) bool {
	for _, dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}
