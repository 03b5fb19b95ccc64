package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qualfill/internal/quality"
)

// ErrEmptyTitle is returned when enqueueing a blank title.
var ErrEmptyTitle = errors.New("item title is required")

// NewItem enqueues a pending release title. Pass the zero descriptor unless
// the caller already knows some of the quality; the metainfo stage fills the
// rest from the title.
func (s *Store) NewItem(ctx context.Context, title string, q quality.Descriptor) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	now := formatTime(time.Now())
	res, err := s.exec(ctx,
		`INSERT INTO queue_items (title, status, quality, assumed_quality, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?)`,
		title, StatusPending, encodeQuality(q), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the item with id, or nil when there is none.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// Update writes every mutable field of item and stamps UpdatedAt.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("update item: nil item")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.exec(ctx,
		`UPDATE queue_items SET
             title = ?, status = ?, quality = ?, assumed_quality = ?,
             progress_stage = ?, reject_reason = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		item.Title, item.Status, encodeQuality(item.Quality), boolToInt(item.AssumedQuality),
		nullableString(item.ProgressStage), nullableString(item.RejectReason), nullableString(item.ErrorMessage),
		formatTime(item.UpdatedAt), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	return nil
}

// List returns items in creation order, limited to statuses when any are given.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	where, args := statusFilter(statuses)
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM queue_items`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Remove deletes one item and reports whether it existed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	n, err := s.delete(ctx, ` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove item %d: %w", id, err)
	}
	return n > 0, nil
}

// Clear deletes items with the given statuses, or every item when none are
// given, and returns how many were removed.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	where, args := statusFilter(statuses)
	n, err := s.delete(ctx, where, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return n, nil
}

func (s *Store) delete(ctx context.Context, where string, args ...any) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM queue_items`+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// statusFilter builds a WHERE clause matching any of statuses. It is empty
// when statuses is.
func statusFilter(statuses []Status) (string, []any) {
	if len(statuses) == 0 {
		return "", nil
	}
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`, args
}
