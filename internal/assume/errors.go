package assume

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPrepared is returned by Apply before Prepare has succeeded.
	ErrNotPrepared = errors.New("assume: resolver not prepared")
	// ErrAlreadyPrepared is returned by a second Prepare call.
	ErrAlreadyPrepared = errors.New("assume: resolver already prepared")
)

// ConfigError names the raw configuration text that could not be turned into a
// rule. Err is usually a *quality.InvalidRequirementError or
// *quality.InvalidQualityError.
type ConfigError struct {
	Text string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("assume_quality: %q is not a valid assumption", e.Text)
	}
	return fmt.Sprintf("assume_quality: %q is not a valid assumption: %v", e.Text, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure for status mapping.
func (e *ConfigError) ErrorKind() string { return "configuration" }
