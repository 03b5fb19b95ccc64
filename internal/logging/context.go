package logging

import (
	"context"
	"log/slog"

	"qualfill/internal/services"
)

const (
	// Keys rendered in the console header.
	FieldComponent = "component"
	FieldItemID    = "item_id"
	FieldStage     = "stage"

	// FieldCorrelationID ties every line of one pipeline run together.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is a short next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"

	// Decision fields describe why a stage accepted, rejected, or changed an item.
	FieldDecisionType   = "decision_type"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"

	// FieldAlert marks lines worth surfacing in summaries.
	FieldAlert = "alert"
)

// ContextFields returns the item, stage, and correlation attributes carried
// by ctx, in that order. Missing values are skipped.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if runID, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, runID))
	}
	return fields
}

// WithContext tags logger with the ContextFields of ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
