package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"partial", 5, all[5:]},
		{"wraps ring", 3, all[7:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "console with fields",
			input: "2025-01-02T10:00:00.000+0900\tDEBUG\thttpbridge/dispatcher.go:42\tcreating\t{\"slot\": \"g1\"}",
			want: Entry{
				Time:    "2025-01-02T10:00:00.000+0900",
				Level:   "DEBUG",
				Caller:  "httpbridge/dispatcher.go:42",
				Message: "creating",
				Fields:  `{"slot": "g1"}`,
			},
		},
		{
			name:  "console without caller",
			input: "2025-01-02T10:00:00.000+0900\tWARN\trefresh failed",
			want:  Entry{Time: "2025-01-02T10:00:00.000+0900", Level: "WARN", Message: "refresh failed"},
		},
		{
			name:  "json",
			input: `{"level":"error","ts":"2025-01-02T10:00:00.000+0900","caller":"ui/app.go:10","msg":"decode","slot":"r3"}`,
			want: Entry{
				Time:    "2025-01-02T10:00:00.000+0900",
				Level:   "ERROR",
				Caller:  "ui/app.go:10",
				Message: "decode",
				Fields:  `{"slot":"r3"}`,
			},
		},
		{
			name:  "plain text",
			input: "panic: something",
			want:  Entry{Message: "panic: something"},
		},
		{
			name:  "json without level",
			input: `{"msg":"x"}`,
			want:  Entry{Message: `{"msg":"x"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			tt.want.Raw = tt.input
			if got != tt.want {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
