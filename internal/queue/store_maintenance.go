package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
)

// healthTimeout bounds the diagnostic queries run by CheckHealth.
const healthTimeout = 2 * time.Second

// Stats counts items per status. Statuses with no items are absent.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM queue_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan queue stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// CheckHealth inspects the database file and schema. The returned snapshot is
// filled as far as the checks got, even when an error is returned.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{Path: s.path}
	fail := func(format string, err error) (DatabaseHealth, error) {
		health.Error = err.Error()
		return health, fmt.Errorf(format, err)
	}

	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return health, nil
	case err != nil:
		return fail("stat queue database: %w", err)
	case info.IsDir():
		return fail("queue database: %w", fmt.Errorf("%s is a directory", s.path))
	}
	health.Exists = true

	ctx, cancel := context.WithTimeout(ensureContext(ctx), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fail("ping queue database: %w", err)
	}
	health.Readable = true

	version, err := s.storedSchemaVersion(ctx)
	if err != nil {
		return fail("%w", err)
	}
	health.SchemaVersion = version

	columns, err := s.tableColumns(ctx)
	if err != nil {
		return fail("table info: %w", err)
	}
	for _, col := range expectedColumns {
		if !slices.Contains(columns, col) {
			health.MissingColumns = append(health.MissingColumns, col)
		}
	}
	if len(columns) > 0 {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_items`).Scan(&health.Items); err != nil {
			return fail("count queue items: %w", err)
		}
	}

	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&health.Integrity); err != nil {
		return fail("integrity check: %w", err)
	}
	return health, nil
}

// tableColumns lists the queue_items column names. It is empty when the table
// does not exist.
func (s *Store) tableColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('queue_items')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
