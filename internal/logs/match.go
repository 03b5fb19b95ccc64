package logs

import (
	"encoding/json"
	"strconv"
	"strings"

	"qualfill/internal/logging"
)

// ItemMatcher returns a Match function selecting the lines logged for item
// id. It understands both the JSON format (an item_id field) and the console
// format (an "Item #id" subject).
func ItemMatcher(id int64) func(string) bool {
	subject := logging.FormatSubject(strconv.FormatInt(id, 10), "")
	return func(line string) bool {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			var entry map[string]any
			if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
				return false
			}
			switch v := entry[logging.FieldItemID].(type) {
			case float64:
				return int64(v) == id
			case string:
				parsed, err := strconv.ParseInt(v, 10, 64)
				return err == nil && parsed == id
			}
			return false
		}
		idx := strings.Index(line, subject)
		if idx < 0 {
			return false
		}
		// Item #4 must not match Item #42.
		rest := line[idx+len(subject):]
		return rest == "" || rest[0] < '0' || rest[0] > '9'
	}
}
