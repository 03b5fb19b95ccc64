package queue

import (
	"database/sql"
	"strings"
	"time"

	"qualfill/internal/quality"
)

const itemColumns = "id, title, status, quality, assumed_quality, progress_stage, reject_reason, error_message, created_at, updated_at"

var expectedColumns = strings.Split(strings.ReplaceAll(itemColumns, " ", ""), ",")

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		title         string
		statusStr     string
		qualityStr    sql.NullString
		assumed       int64
		progressStage sql.NullString
		rejectReason  sql.NullString
		errorMessage  sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&statusStr,
		&qualityStr,
		&assumed,
		&progressStage,
		&rejectReason,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	desc, err := decodeQuality(qualityStr.String)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:             id,
		Title:          title,
		Status:         Status(statusStr),
		Quality:        desc,
		AssumedQuality: assumed != 0,
		ProgressStage:  progressStage.String,
		RejectReason:   rejectReason.String,
		ErrorMessage:   errorMessage.String,
	}
	item.CreatedAt, _ = parseTime(createdRaw)
	item.UpdatedAt, _ = parseTime(updatedRaw)
	return item, nil
}

// encodeQuality stores a descriptor as its canonical text. A fully unknown
// descriptor is stored as NULL.
func encodeQuality(d quality.Descriptor) any {
	if d.IsUnknown() {
		return nil
	}
	return d.String()
}

func decodeQuality(value string) (quality.Descriptor, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "unknown" {
		return quality.Descriptor{}, nil
	}
	return quality.Parse(value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime accepts the stored RFC 3339 form and SQLite's CURRENT_TIMESTAMP
// form.
func parseTime(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
