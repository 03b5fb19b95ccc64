package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// infoFieldLimit caps the attributes printed under an info-or-higher line.
// Debug lines print everything.
const infoFieldLimit = 6

// headerKeys are rendered in the line header rather than as fields.
var headerKeys = map[string]bool{
	FieldComponent: true,
	FieldItemID:    true,
	FieldStage:     true,
}

// prettyHandler writes one human-readable header line per record followed by
// indented key/value fields.
type prettyHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool
	preset    []field
	groups    []string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) write(p []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(p)
	return err
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return &prettyHandler{out: &lockedWriter{w: w}, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = collectFields(fields, h.groups, attr)
		return true
	})
	fields = lastValueWins(fields)

	var sb strings.Builder
	h.writeHeader(&sb, record, fields)
	if record.Level < slog.LevelInfo {
		writeAllFields(&sb, fields)
	} else {
		writeSummaryFields(&sb, fields)
	}
	return h.out.write([]byte(sb.String()))
}

func (h *prettyHandler) writeHeader(sb *strings.Builder, record slog.Record, fields []field) {
	var component, itemID, stage string
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = attrString(f.value)
		case FieldItemID:
			itemID = attrString(f.value)
		case FieldStage:
			stage = attrString(f.value)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(formatTimestamp(ts))
	sb.WriteByte(' ')
	sb.WriteString(levelLabel(record.Level))
	if component != "" {
		fmt.Fprintf(sb, " [%s]", component)
	}
	if subject := FormatSubject(itemID, stage); subject != "" {
		sb.WriteByte(' ')
		sb.WriteString(subject)
	}

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	sb.WriteString(" – ")
	sb.WriteString(message)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(sb, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	sb.WriteByte('\n')
}

func writeSummaryFields(sb *strings.Builder, fields []field) {
	shown := 0
	hidden := 0
	for _, f := range fields {
		if headerKeys[f.key] || f.key == FieldCorrelationID {
			continue
		}
		if shown >= infoFieldLimit {
			hidden++
			continue
		}
		shown++
		fmt.Fprintf(sb, "    - %s: %s\n", f.key, formatValue(f.value))
	}
	switch {
	case hidden == 1:
		sb.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(sb, "    + %d more fields hidden\n", hidden)
	}
}

func writeAllFields(sb *strings.Builder, fields []field) {
	for _, f := range fields {
		if f.key != FieldComponent {
			fmt.Fprintf(sb, "    %s: %s\n", f.key, formatValue(f.value))
		}
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		next.preset = collectFields(next.preset, h.groups, attr)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// collectFields flattens attr into dotted keys under the given group path.
func collectFields(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	path := groups
	if attr.Key != "" {
		path = append(append([]string(nil), groups...), attr.Key)
	}
	if value.Kind() == slog.KindGroup {
		for _, child := range value.Group() {
			dst = collectFields(dst, path, child)
		}
		return dst
	}
	return append(dst, field{key: strings.Join(path, "."), value: value})
}

// lastValueWins drops repeated keys, keeping the first position and the last
// value.
func lastValueWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
