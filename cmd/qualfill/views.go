package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"qualfill/internal/queue"
)

// itemView is the JSON shape of an item in command output.
type itemView struct {
	ID             int64  `json:"id,omitempty"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Quality        string `json:"quality"`
	AssumedQuality bool   `json:"assumed_quality"`
	Stage          string `json:"stage,omitempty"`
	RejectReason   string `json:"reject_reason,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func newItemView(item *queue.Item) itemView {
	view := itemView{
		ID:             item.ID,
		Title:          item.Title,
		Status:         string(item.Status),
		Quality:        item.Quality.String(),
		AssumedQuality: item.AssumedQuality,
		Stage:          item.ProgressStage,
		RejectReason:   item.RejectReason,
		ErrorMessage:   item.ErrorMessage,
	}
	if !item.CreatedAt.IsZero() {
		view.CreatedAt = item.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return view
}

func newItemViews(items []*queue.Item) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, newItemView(item))
	}
	return views
}

func statusLabel(status queue.Status) string {
	return cases.Title(language.English).String(string(status))
}

func itemDetail(item *queue.Item) string {
	switch {
	case item.RejectReason != "":
		return item.RejectReason
	case item.ErrorMessage != "":
		return item.ErrorMessage
	default:
		return ""
	}
}

func buildItemRows(items []*queue.Item, withID bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{
			item.Title,
			item.Quality.String(),
			yesNo(item.AssumedQuality),
			statusLabel(item.Status),
			itemDetail(item),
		}
		if withID {
			row = append([]string{strconv.FormatInt(item.ID, 10)}, row...)
		}
		rows = append(rows, row)
	}
	return rows
}

func itemTable(items []*queue.Item, withID bool) string {
	columns := []column{{header: "Title"}, {header: "Quality"}, {header: "Assumed"}, {header: "Status"}, {header: "Detail"}}
	if withID {
		columns = append([]column{{header: "ID", right: true}}, columns...)
	}
	return renderTable(columns, buildItemRows(items, withID))
}

func parseStatuses(values []string) ([]queue.Status, error) {
	statuses := make([]queue.Status, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := queue.ParseStatus(part)
			if !ok {
				return nil, fmt.Errorf("unknown status %q (expected one of %s)", strings.TrimSpace(part), statusNames())
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

func statusNames() string {
	names := make([]string, 0, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
