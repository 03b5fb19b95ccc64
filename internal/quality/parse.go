package quality

import (
	"fmt"
	"strings"
)

// Parse resolves a quality expression such as "1080p webdl 10bit" into a
// Descriptor. Every token must name a known component and each slot may be
// named at most once.
func Parse(text string) (Descriptor, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Descriptor{}, &InvalidQualityError{Text: text, Reason: "empty quality"}
	}
	var d Descriptor
	for _, field := range fields {
		c, ok := Lookup(field)
		if !ok {
			return Descriptor{}, &InvalidQualityError{Text: text, Reason: fmt.Sprintf("unknown component %q", field)}
		}
		if existing := d.Get(c.slot); existing.Known() {
			return Descriptor{}, &InvalidQualityError{
				Text:   text,
				Reason: fmt.Sprintf("%s given twice (%s, %s)", c.slot, existing.name, c.name),
			}
		}
		d.Set(c)
	}
	return d, nil
}

// Detect extracts a best-effort descriptor from free text such as a release
// title. For each slot the highest-ordinal matching component wins; slots with
// no match stay unknown.
func Detect(title string) Descriptor {
	var d Descriptor
	if strings.TrimSpace(title) == "" {
		return d
	}
	for _, s := range Slots() {
		var best Component
		for _, det := range detectors[s] {
			if det.component.value <= best.value {
				continue
			}
			if det.re.MatchString(title) {
				best = det.component
			}
		}
		d.Set(best)
	}
	return d
}
