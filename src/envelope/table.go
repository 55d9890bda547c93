package envelope

import (
	"encoding/json"
	"strings"
)

// ExtractTable scans free-text tool result content for the first JSON array of
// objects and parses it into rows. Tool results interleave prose with embedded
// result sets ("Returned 3 rows:\n[...]"), so this is a best-effort heuristic:
// non-JSON, malformed, or array-free content yields nil rather than an error.
func ExtractTable(content string) []map[string]any {
	offset := 0
	for {
		idx := strings.IndexByte(content[offset:], '[')
		if idx < 0 {
			return nil
		}
		start := offset + idx

		dec := json.NewDecoder(strings.NewReader(content[start:]))
		var rows []map[string]any
		if err := dec.Decode(&rows); err == nil && len(rows) > 0 {
			return rows
		}

		offset = start + 1
		if offset >= len(content) {
			return nil
		}
	}
}
