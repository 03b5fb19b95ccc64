package services

import (
	"errors"
	"fmt"
	"strings"

	"qualfill/internal/queue"
)

// Marker errors classify stage failures. Stages wrap their errors with one of
// these through Wrap so the pipeline can pick the item's final status.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// reviewKinds are ErrorKind values that need an operator rather than a retry.
var reviewKinds = map[string]struct{}{
	"validation":    {},
	"configuration": {},
	"not_found":     {},
}

// Wrap tags err with marker and prefixes it with "stage: operation: message".
// A nil marker means ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// FailureStatus picks the status an item gets after a stage fails with err.
// Validation, configuration, and not-found problems go to review, either by
// marker or by an ErrorKind method anywhere in the chain; anything else is a
// plain failure that queue retry can pick up again.
func FailureStatus(err error) queue.Status {
	for _, marker := range []error{ErrValidation, ErrConfiguration, ErrNotFound} {
		if errors.Is(err, marker) {
			return queue.StatusReview
		}
	}
	var classified interface{ ErrorKind() string }
	if errors.As(err, &classified) {
		if _, ok := reviewKinds[classified.ErrorKind()]; ok {
			return queue.StatusReview
		}
	}
	return queue.StatusFailed
}

func joinDetail(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "stage failure"
	}
	return strings.Join(kept, ": ")
}
