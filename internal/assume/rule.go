package assume

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"qualfill/internal/quality"
)

// Rule pairs a target requirement with the fallback components to assume for
// descriptors it matches.
type Rule struct {
	target      string
	everything  bool
	requirement quality.Requirement
	fallback    quality.Descriptor
}

// NewRule builds a rule from raw declaration text. The target is lower-cased;
// the literal "everything" bypasses requirement parsing.
func NewRule(target, fallback string) (Rule, error) {
	normalized := strings.TrimSpace(cases.Lower(language.Und).String(target))
	rule := Rule{target: normalized}
	if normalized == Everything {
		rule.everything = true
	} else {
		req, err := quality.ParseRequirement(normalized)
		if err != nil {
			return Rule{}, &ConfigError{Text: target, Err: err}
		}
		rule.requirement = req
	}
	desc, err := quality.Parse(fallback)
	if err != nil {
		return Rule{}, &ConfigError{Text: fallback, Err: err}
	}
	rule.fallback = desc
	return rule, nil
}

// Target returns the normalized target text.
func (r Rule) Target() string { return r.target }

// IsEverything reports whether the rule uses the catch-all target.
func (r Rule) IsEverything() bool { return r.everything }

// Requirement returns the parsed target. It is the zero Requirement for the
// everything rule.
func (r Rule) Requirement() quality.Requirement { return r.requirement }

// Fallback returns the components the rule assumes.
func (r Rule) Fallback() quality.Descriptor { return r.fallback }

// Matches reports whether the rule applies to d.
func (r Rule) Matches(d quality.Descriptor) bool {
	return r.everything || r.requirement.Allows(d)
}

// Score returns the specificity of the rule's target. The everything target
// scores math.MinInt so it sorts after every other rule. Otherwise each
// constrained slot adds 2 for an acceptable set, subtracts 2 for a none-of set,
// and adds 1 for each of a minimum and maximum bound.
func Score(r Rule) int {
	if r.everything {
		return math.MinInt
	}
	score := 0
	for _, con := range r.requirement.Constraints() {
		if len(con.Acceptable) > 0 {
			score += 2
		}
		if len(con.NoneOf) > 0 {
			score -= 2
		}
		if con.Min.Known() {
			score++
		}
		if con.Max.Known() {
			score++
		}
	}
	return score
}

// Rank returns the rules ordered by descending Score. Equal scores keep their
// declaration order. The input slice is not modified.
func Rank(rules []Rule) []Rule {
	ranked := make([]Rule, len(rules))
	copy(ranked, rules)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i]) > Score(ranked[j])
	})
	return ranked
}
