package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qualfill/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qualfill.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("offset = %d, want 6", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil || len(result.Lines) != 0 {
		t.Fatalf("expected empty result, got %#v, %v", result, err)
	}
}

func TestTailFromOffset(t *testing.T) {
	path := writeLog(t, "first\nsecond\n")
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 6})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "second" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}

	// An offset past the end, as after truncation, resets to the end.
	result, err = logs.Tail(context.Background(), path, logs.TailOptions{Offset: 1000})
	if err != nil || len(result.Lines) != 0 || result.Offset != 13 {
		t.Fatalf("unexpected result after truncation: %#v, %v", result, err)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	initial, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil || len(initial.Lines) != 1 {
		t.Fatalf("initial tail: %#v, %v", initial, err)
	}

	done := make(chan logs.TailResult, 1)
	go func() {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: initial.Offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		done <- res
	}()

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	f.Close()

	select {
	case res := <-done:
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Fatalf("unexpected follow lines: %#v", res.Lines)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("follow did not return new line")
	}
}

func TestItemMatcher(t *testing.T) {
	path := writeLog(t, `2026-01-01T00:00:00Z INFO [pipeline] Item #4 (assume_quality) – assumed quality
2026-01-01T00:00:00Z INFO [pipeline] Item #42 (assume_quality) – assumed quality
{"ts":"2026-01-01T00:00:00Z","level":"info","msg":"stage completed","item_id":4}
{"ts":"2026-01-01T00:00:00Z","level":"info","msg":"stage completed","item_id":42}
2026-01-01T00:00:00Z INFO [pipeline] – run completed
`)
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10, Match: logs.ItemMatcher(4)})
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines for item 4, got %#v", result.Lines)
	}
}
