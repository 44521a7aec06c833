package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path.
// A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	next, seen := 0, 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		seen++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if seen < maxLines {
		return append([]string(nil), ring[:seen]...), nil
	}
	return append(append([]string(nil), ring[next:]...), ring[:next]...), nil
}

// Entry is one log line split into the parts the log view colours.
type Entry struct {
	Time    string
	Level   string
	Caller  string
	Message string
	Fields  string
	Raw     string
}

// Parse splits a zap console or JSON line into an Entry. Lines it can't
// recognise come back with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return entry
	}
	if strings.HasPrefix(trimmed, "{") {
		if parsed, ok := parseJSON(trimmed); ok {
			parsed.Raw = line
			return parsed
		}
		return entry
	}

	parts := strings.SplitN(line, "\t", 5)
	if len(parts) < 3 || !isLevel(parts[1]) {
		return entry
	}
	entry.Time = parts[0]
	entry.Level = strings.ToUpper(parts[1])
	switch len(parts) {
	case 3:
		entry.Message = parts[2]
	case 4:
		entry.Caller, entry.Message = parts[2], parts[3]
	default:
		entry.Caller, entry.Message, entry.Fields = parts[2], parts[3], parts[4]
	}
	return entry
}

func parseJSON(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	level, _ := raw["level"].(string)
	if !isLevel(level) {
		return Entry{}, false
	}
	entry := Entry{Level: strings.ToUpper(level)}
	entry.Time, _ = raw["ts"].(string)
	entry.Caller, _ = raw["caller"].(string)
	entry.Message, _ = raw["msg"].(string)
	for _, k := range []string{"level", "ts", "caller", "msg", "stacktrace"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		if fields, err := json.Marshal(raw); err == nil {
			entry.Fields = string(fields)
		}
	}
	return entry, true
}

func isLevel(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG", "INFO", "WARN", "ERROR", "DPANIC", "PANIC", "FATAL":
		return true
	}
	return false
}
