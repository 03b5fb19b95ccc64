package stage

import (
	"strings"

	"qualfill/internal/quality"
	"qualfill/internal/services"
)

// ParseRequirement parses requirement text read from configuration. On failure
// it returns a services.ErrConfiguration suitable for stage Start methods.
func ParseRequirement(stageName, field, text string) (quality.Requirement, error) {
	req, err := quality.ParseRequirement(strings.TrimSpace(text))
	if err != nil {
		return quality.Requirement{}, services.Wrap(
			services.ErrConfiguration, stageName, "parse "+field,
			"Requirement is invalid; fix "+field+" and rerun", err)
	}
	return req, nil
}
