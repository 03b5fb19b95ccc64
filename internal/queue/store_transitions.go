package queue

import (
	"context"
	"fmt"
	"time"
)

// ClaimPending moves every pending item to processing and returns them in
// queue order. Items claimed by an interrupted run stay in processing until
// ResetStuckProcessing returns them to pending.
func (s *Store) ClaimPending(ctx context.Context) ([]*Item, error) {
	ctx = ensureContext(ctx)
	items, err := s.List(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	args := make([]any, 0, len(items)+2)
	args = append(args, StatusProcessing, formatTime(now))
	for _, item := range items {
		args = append(args, item.ID)
		item.Status = StatusProcessing
		item.UpdatedAt = now
	}
	query := `UPDATE queue_items SET status = ?, updated_at = ?
        WHERE id IN (` + makePlaceholders(len(items)) + `) AND status = '` + string(StatusPending) + `'`
	if _, err := s.exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("claim pending items: %w", err)
	}
	return items, nil
}

// ResetStuckProcessing returns items left in processing by an interrupted run to pending.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.exec(
		ctx,
		`UPDATE queue_items
         SET status = ?, progress_stage = ?, updated_at = ?
         WHERE status = ?`,
		StatusPending,
		InterruptedReason,
		formatTime(time.Now()),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed and review items back to pending for reprocessing.
// With no ids every such item is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	const reset = `UPDATE queue_items
        SET status = ?, progress_stage = 'Retry requested', error_message = NULL,
            reject_reason = NULL, updated_at = ?
        WHERE status IN (?, ?)`
	args := []any{StatusPending, formatTime(time.Now()), StatusFailed, StatusReview}
	query := reset
	if len(ids) > 0 {
		query += ` AND id IN (` + makePlaceholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}
