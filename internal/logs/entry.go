package logs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is the subset of a JSON log record the CLI displays.
type Entry struct {
	Time      string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Component string `json:"component"`
	RunID     string `json:"run_id"`
	Stage     string `json:"stage"`
}

// ParseEntry decodes one JSON log line. ok is false for lines that are not
// JSON objects.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// String renders the entry in the console layout.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Time)
	fmt.Fprintf(&b, " %-5s", strings.ToUpper(e.Level))
	if e.Component != "" {
		b.WriteString(" " + e.Component)
	}
	if e.Stage != "" {
		b.WriteString(" (" + e.Stage + ")")
	}
	b.WriteString(": " + e.Message)
	if e.RunID != "" {
		b.WriteString(" run_id=" + e.RunID)
	}
	return b.String()
}

// Filter selects entries by run and minimum level. The zero value matches
// everything.
type Filter struct {
	RunID    string
	MinLevel string
}

// Match reports whether line passes the filter. Unparseable lines only pass
// an empty filter.
func (f Filter) Match(line string) bool {
	if f.RunID == "" && f.MinLevel == "" {
		return true
	}
	entry, ok := ParseEntry(line)
	if !ok {
		return false
	}
	if f.RunID != "" && entry.RunID != f.RunID {
		return false
	}
	if f.MinLevel != "" && levelRank(entry.Level) < levelRank(f.MinLevel) {
		return false
	}
	return true
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 0
	case "", "info":
		return 1
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}
