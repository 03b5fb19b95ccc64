package queue

import (
	"strings"
	"time"

	"qualfill/internal/quality"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusReview     Status = "review"
	StatusFailed     Status = "failed"
)

// InterruptedReason is the stage label set on items reset after an interrupted run.
const InterruptedReason = "Reset from interrupted run"

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusAccepted,
	StatusRejected,
	StatusReview,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// DatabaseHealth is the diagnostic snapshot reported by CheckHealth.
type DatabaseHealth struct {
	Path           string   `json:"path"`
	Exists         bool     `json:"exists"`
	Readable       bool     `json:"readable"`
	SchemaVersion  int      `json:"schema_version"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	Integrity      string   `json:"integrity,omitempty"`
	Items          int      `json:"items"`
	Error          string   `json:"error,omitempty"`
}

// Healthy reports whether the database exists, answers queries, carries the
// expected columns, and passed the integrity check.
func (h DatabaseHealth) Healthy() bool {
	return h.Exists && h.Readable && h.Error == "" && len(h.MissingColumns) == 0 && strings.EqualFold(h.Integrity, "ok")
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID             int64
	Title          string
	Status         Status
	Quality        quality.Descriptor
	AssumedQuality bool
	ProgressStage  string
	RejectReason   string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends processing for an item.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusReview, StatusFailed:
		return true
	default:
		return false
	}
}

// Reject marks the item rejected by stage with a reason.
func (i *Item) Reject(stage, reason string) {
	i.Status = StatusRejected
	i.ProgressStage = stage
	i.RejectReason = reason
}

// IsRejected reports whether a stage rejected the item.
func (i Item) IsRejected() bool {
	return i.Status == StatusRejected
}

// SetFailed marks the item with a failure status and message.
func (i *Item) SetFailed(status Status, stage, message string) {
	if status != StatusReview {
		status = StatusFailed
	}
	i.Status = status
	i.ProgressStage = stage
	i.ErrorMessage = message
}
