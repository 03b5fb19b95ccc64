package quality

import "fmt"

// InvalidQualityError reports a quality expression that does not resolve to a
// descriptor.
type InvalidQualityError struct {
	Text   string
	Reason string
}

func (e *InvalidQualityError) Error() string {
	return fmt.Sprintf("invalid quality %q: %s", e.Text, e.Reason)
}

// ErrorKind classifies the failure for status mapping.
func (e *InvalidQualityError) ErrorKind() string { return "validation" }

// InvalidRequirementError reports requirement text that names an unknown term
// or uses malformed range syntax.
type InvalidRequirementError struct {
	Text   string
	Reason string
}

func (e *InvalidRequirementError) Error() string {
	return fmt.Sprintf("invalid quality requirement %q: %s", e.Text, e.Reason)
}

// ErrorKind classifies the failure for status mapping.
func (e *InvalidRequirementError) ErrorKind() string { return "validation" }
