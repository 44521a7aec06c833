package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/five82/onair/internal/logtail"
)

func TestColorizeLogLine(t *testing.T) {
	m := New(Options{})
	line := m.colorizeLogLine(logtail.Parse("2025-01-01T12:00:00.000+0900\tWARN\tapp/poller.go:80\tguide request failed"), 200)
	for _, want := range []string{"12:00:00", "WARN", "app/poller.go:80", "guide request failed"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}

	plain := m.colorizeLogLine(logtail.Parse("panic: something"), 200)
	if !strings.Contains(plain, "panic: something") {
		t.Fatalf("expected raw line, got %q", plain)
	}
}

func TestShortLogTime(t *testing.T) {
	if got := shortLogTime("2025-01-01T08:30:15.123Z"); got != "08:30:15" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := shortLogTime("not a time"); got != "not a time" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestRefreshLogsThrottles(t *testing.T) {
	m := New(Options{LogPath: "/tmp/onair-missing.log"})
	if cmd := m.refreshLogs(false); cmd == nil {
		t.Fatalf("expected first refresh")
	}
	if cmd := m.refreshLogs(false); cmd != nil {
		t.Fatalf("expected throttled refresh")
	}
	if cmd := m.refreshLogs(true); cmd == nil {
		t.Fatalf("expected forced refresh")
	}

	m.handleLogLines(logLinesMsg{err: errors.New("open: no such file")})
	if m.logState.lastErr == nil {
		t.Fatalf("expected read error to be kept")
	}
}
