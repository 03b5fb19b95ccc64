package assume

import "qualfill/internal/quality"

// Action is the per-slot outcome of a merge.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionAssume Action = "assume"
	ActionNone   Action = "none"
)

// Decision records how one slot was resolved while merging a rule.
type Decision struct {
	Rule     string
	Slot     quality.Slot
	Current  quality.Component
	Fallback quality.Component
	Action   Action
}

// TraceFunc observes merge decisions. It is called synchronously from Apply.
type TraceFunc func(Decision)

// Merge fills the unknown slots of current with the known slots of fallback.
// Known slots of current are never changed. It returns the merged descriptor
// and the slots that were assumed.
func Merge(current, fallback quality.Descriptor) (quality.Descriptor, []quality.Slot) {
	return merge("", current, fallback, nil)
}

func merge(rule string, current, fallback quality.Descriptor, trace TraceFunc) (quality.Descriptor, []quality.Slot) {
	merged := current
	var assumed []quality.Slot
	for _, slot := range quality.Slots() {
		have := current.Get(slot)
		want := fallback.Get(slot)
		action := ActionNone
		switch {
		case have.Known():
			action = ActionKeep
		case want.Known():
			merged.Set(want)
			assumed = append(assumed, slot)
			action = ActionAssume
		}
		if trace != nil {
			trace(Decision{Rule: rule, Slot: slot, Current: have, Fallback: want, Action: action})
		}
	}
	return merged, assumed
}
