package quality

import (
	"fmt"
	"strings"
)

// Constraint is the predicate for a single slot. A slot without any of the
// fields set is unconstrained.
type Constraint struct {
	Slot       Slot
	Acceptable []Component
	NoneOf     []Component
	Min        Component
	Max        Component
}

// Constrained reports whether the constraint restricts its slot at all.
func (c Constraint) Constrained() bool {
	return len(c.Acceptable) > 0 || len(c.NoneOf) > 0 || c.Min.Known() || c.Max.Known()
}

// Allows reports whether component v satisfies the constraint.
func (c Constraint) Allows(v Component) bool {
	if len(c.Acceptable) > 0 && !contains(c.Acceptable, v) {
		return false
	}
	if c.Min.Known() && v.value < c.Min.value {
		return false
	}
	if c.Max.Known() && v.value > c.Max.value {
		return false
	}
	if len(c.NoneOf) > 0 && contains(c.NoneOf, v) {
		return false
	}
	return true
}

func contains(list []Component, v Component) bool {
	for _, c := range list {
		if c.slot == v.slot && c.value == v.value {
			return true
		}
	}
	return false
}

// Requirement is a parsed predicate over descriptor slots.
type Requirement struct {
	text        string
	constraints [slotCount]Constraint
}

// ParseRequirement parses requirement text. Tokens are separated by whitespace;
// each token is one of:
//
//	name        exact component
//	a|b         any of the listed components
//	!a, !a|b    none of the listed components
//	name+       at least name
//	name-       at most name
//	a-b         between a and b inclusive
//	any         no constraint
//
// All names inside one token must belong to the same slot.
func ParseRequirement(text string) (Requirement, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	req := Requirement{text: normalized}
	for s := range req.constraints {
		req.constraints[s].Slot = Slot(s)
	}
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return Requirement{}, &InvalidRequirementError{Text: text, Reason: "empty requirement"}
	}
	for _, field := range fields {
		if err := req.apply(field); err != nil {
			return Requirement{}, &InvalidRequirementError{Text: text, Reason: err.Error()}
		}
	}
	return req, nil
}

// MustParseRequirement is ParseRequirement for static text; it panics on error.
func MustParseRequirement(text string) Requirement {
	req, err := ParseRequirement(text)
	if err != nil {
		panic(err)
	}
	return req
}

func (r *Requirement) apply(token string) error {
	if token == "any" {
		return nil
	}
	if c, ok := Lookup(token); ok {
		return r.setAcceptable([]Component{c})
	}
	if strings.HasPrefix(token, "!") {
		list, err := lookupList(token[1:])
		if err != nil {
			return err
		}
		con := &r.constraints[list[0].slot]
		con.NoneOf = append(con.NoneOf, list...)
		return nil
	}
	if strings.Contains(token, "|") {
		list, err := lookupList(token)
		if err != nil {
			return err
		}
		return r.setAcceptable(list)
	}
	if name, ok := strings.CutSuffix(token, "+"); ok {
		c, found := Lookup(name)
		if !found {
			return fmt.Errorf("unknown component %q", name)
		}
		return r.setMin(c)
	}
	if name, ok := strings.CutSuffix(token, "-"); ok {
		c, found := Lookup(name)
		if !found {
			return fmt.Errorf("unknown component %q", name)
		}
		return r.setMax(c)
	}
	if low, high, ok := splitRange(token); ok {
		if low.slot != high.slot {
			return fmt.Errorf("range %q mixes %s and %s", token, low.slot, high.slot)
		}
		if low.value > high.value {
			return fmt.Errorf("range %q is inverted", token)
		}
		if err := r.setMin(low); err != nil {
			return err
		}
		return r.setMax(high)
	}
	return fmt.Errorf("unknown component %q", token)
}

// splitRange finds the dash that splits token into two known names. Names may
// themselves contain dashes (web-dl), so every position is tried.
func splitRange(token string) (Component, Component, bool) {
	for i := 1; i < len(token)-1; i++ {
		if token[i] != '-' {
			continue
		}
		low, okLow := Lookup(token[:i])
		high, okHigh := Lookup(token[i+1:])
		if okLow && okHigh {
			return low, high, true
		}
	}
	return Component{}, Component{}, false
}

func lookupList(text string) ([]Component, error) {
	parts := strings.Split(text, "|")
	out := make([]Component, 0, len(parts))
	for _, part := range parts {
		c, ok := Lookup(part)
		if !ok {
			return nil, fmt.Errorf("unknown component %q", part)
		}
		if len(out) > 0 && out[0].slot != c.slot {
			return nil, fmt.Errorf("%q mixes %s and %s", text, out[0].slot, c.slot)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Requirement) setAcceptable(list []Component) error {
	con := &r.constraints[list[0].slot]
	if len(con.Acceptable) > 0 {
		return fmt.Errorf("%s constrained twice", con.Slot)
	}
	con.Acceptable = list
	return nil
}

func (r *Requirement) setMin(c Component) error {
	con := &r.constraints[c.slot]
	if con.Min.Known() {
		return fmt.Errorf("%s minimum given twice", con.Slot)
	}
	con.Min = c
	return nil
}

func (r *Requirement) setMax(c Component) error {
	con := &r.constraints[c.slot]
	if con.Max.Known() {
		return fmt.Errorf("%s maximum given twice", con.Slot)
	}
	con.Max = c
	return nil
}

// Allows reports whether d satisfies every constrained slot.
func (r Requirement) Allows(d Descriptor) bool {
	for _, con := range r.constraints {
		if !con.Constrained() {
			continue
		}
		if !con.Allows(d.Get(con.Slot)) {
			return false
		}
	}
	return true
}

// Constraints returns the constrained slots in slot order. Slices inside the
// returned values are copies.
func (r Requirement) Constraints() []Constraint {
	out := make([]Constraint, 0, slotCount)
	for _, con := range r.constraints {
		if !con.Constrained() {
			continue
		}
		con.Acceptable = append([]Component(nil), con.Acceptable...)
		con.NoneOf = append([]Component(nil), con.NoneOf...)
		out = append(out, con)
	}
	return out
}

// String returns the normalized requirement text.
func (r Requirement) String() string { return r.text }
