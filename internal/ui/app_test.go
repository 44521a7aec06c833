package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/onair/internal/httpbridge"
	"github.com/five82/onair/internal/nhk"
	"github.com/five82/onair/internal/prefs"
	"github.com/five82/onair/internal/state"
)

type fakeSource struct {
	steps     []nhk.Service
	reloads   []nhk.Service
	stepErr   error
	reloadErr error
	guides    map[nhk.Service]state.Guide
	slots     map[nhk.Service]httpbridge.SlotState
	hasKey    bool
	failing   []nhk.Service
}

func (f *fakeSource) Step(_ time.Time, active nhk.Service) (int, error) {
	f.steps = append(f.steps, active)
	return 0, f.stepErr
}

func (f *fakeSource) Reload(svc nhk.Service) error {
	f.reloads = append(f.reloads, svc)
	return f.reloadErr
}

func (f *fakeSource) Guide(svc nhk.Service) state.Guide         { return f.guides[svc] }
func (f *fakeSource) Slot(svc nhk.Service) httpbridge.SlotState { return f.slots[svc] }
func (f *fakeSource) Failing() []nhk.Service                    { return f.failing }
func (f *fakeSource) HasKey() bool                              { return f.hasKey }
func (f *fakeSource) Area() string                              { return "130" }

func newTestModel(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := New(Options{
		Source:    src,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		LogPath:   filepath.Join(t.TempDir(), "onair.log"),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 30})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestTickStepsActiveService(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src)

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("expected next tick to be scheduled")
	}
	if len(src.steps) != 1 || src.steps[0] != nhk.ServiceG1 {
		t.Fatalf("expected one step for g1, got %v", src.steps)
	}

	m, _ = press(t, m, "tab")
	m.Update(tickMsg(time.Now()))
	if got := src.steps[len(src.steps)-1]; got != nhk.ServiceE1 {
		t.Fatalf("expected step for e1 after tab, got %v", got)
	}
}

func TestServiceKeysSelectAndSavePrefs(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = press(t, m, "3")
	if m.service != nhk.ServiceR1 {
		t.Fatalf("expected r1, got %v", m.service)
	}
	if got := prefs.Load(m.prefsPath).Service; got != "r1" {
		t.Fatalf("expected saved service r1, got %q", got)
	}

	m, _ = press(t, m, "shift+tab")
	if m.service != nhk.ServiceE1 {
		t.Fatalf("expected e1 after shift+tab, got %v", m.service)
	}

	m, _ = press(t, m, "5")
	m, _ = press(t, m, "tab")
	if m.service != nhk.ServiceG1 {
		t.Fatalf("expected tab to wrap to g1, got %v", m.service)
	}
}

func TestReloadKey(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src)

	m, _ = press(t, m, "2")
	m, _ = press(t, m, "r")
	if len(src.reloads) != 1 || src.reloads[0] != nhk.ServiceE1 {
		t.Fatalf("expected reload of e1, got %v", src.reloads)
	}
	if m.lastErr != nil {
		t.Fatalf("unexpected error: %v", m.lastErr)
	}

	src.reloadErr = errors.New("executor stopped")
	m, _ = press(t, m, "r")
	if m.lastErr == nil {
		t.Fatalf("expected reload error to be shown")
	}
}

func TestStepErrorExpires(t *testing.T) {
	src := &fakeSource{stepErr: errors.New("queue full")}
	m := newTestModel(t, src)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	updated, _ := m.Update(tickMsg(now))
	m = updated.(Model)
	if m.lastErr == nil {
		t.Fatalf("expected step error to be recorded")
	}
	if !strings.Contains(m.View(), "queue full") {
		t.Fatalf("expected error in header")
	}

	src.stepErr = nil
	now = now.Add(ErrorDisplayFor + time.Second)
	updated, _ = m.Update(tickMsg(now))
	m = updated.(Model)
	if m.lastErr != nil {
		t.Fatalf("expected error to clear, got %v", m.lastErr)
	}
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	first := m.theme.Name

	m, _ = press(t, m, "T")
	if m.theme.Name == first {
		t.Fatalf("expected theme to change from %s", first)
	}
	if got := prefs.Load(m.prefsPath).Theme; got != m.theme.Name {
		t.Fatalf("expected saved theme %s, got %s", m.theme.Name, got)
	}
}

func TestQuitAndHelp(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("expected help overlay")
	}
	m, _ = press(t, m, "q")
	if m.showHelp {
		t.Fatalf("expected any key to close help")
	}

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewRendersGuide(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		hasKey: true,
		guides: map[nhk.Service]state.Guide{
			nhk.ServiceG1: {
				HasChannel:  true,
				LastUpdated: now,
				Channel: nhk.Channel{
					Previous: &nhk.Program{Title: "おはよう日本"},
					Present: &nhk.Program{
						Title:     "ニュース7",
						StartTime: now.Add(-10 * time.Minute).Format(time.RFC3339),
						EndTime:   now.Add(20 * time.Minute).Format(time.RFC3339),
						Act:       "【キャスター】高瀬耕造",
						Genres:    []string{"0000"},
					},
				},
			},
		},
		slots: map[nhk.Service]httpbridge.SlotState{nhk.ServiceG1: httpbridge.SlotInflight},
	}
	m := newTestModel(t, src)

	view := m.View()
	for _, want := range []string{"ニュース7", "おはよう日本", "現番組", "次番組", "INFLIGHT", "130", "min left"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q\n%s", want, view)
		}
	}
	if strings.Contains(view, "NO API KEY") {
		t.Fatalf("did not expect key warning")
	}
}

func TestViewWithoutChannel(t *testing.T) {
	src := &fakeSource{guides: map[nhk.Service]state.Guide{}}
	m := newTestModel(t, src)
	view := m.View()
	if !strings.Contains(view, "Waiting for the guide") || !strings.Contains(view, "NO API KEY") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	src.guides[nhk.ServiceG1] = state.Guide{LastError: errors.New("api g1 returned status 401"), ConsecutiveFailures: 2}
	view = m.View()
	if !strings.Contains(view, "BAD API KEY") {
		t.Fatalf("expected classified error:\n%s", view)
	}
}

func TestLogViewReadsFile(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	line := "2025-01-01T12:00:00.000Z\tINFO\tapp/app.go:10\tonair started\t{\"area\": \"130\"}\n"
	if err := os.WriteFile(m.logPath, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	m, cmd := press(t, m, "L")
	if m.currentView != ViewLogs || cmd == nil {
		t.Fatalf("expected log view with refresh command")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if len(m.logState.lines) != 1 {
		t.Fatalf("expected one log line, got %d", len(m.logState.lines))
	}
	if view := m.View(); !strings.Contains(view, "onair started") {
		t.Fatalf("expected log message in view:\n%s", view)
	}

	m, _ = press(t, m, " ")
	if m.logState.follow {
		t.Fatalf("expected follow to be paused")
	}
	m, _ = press(t, m, "esc")
	if m.currentView != ViewGuide {
		t.Fatalf("expected esc to return to guide")
	}
}

func TestHeaderMarksFailingServices(t *testing.T) {
	src := &fakeSource{hasKey: true, failing: []nhk.Service{nhk.ServiceR2}}
	m := newTestModel(t, src)

	header := m.renderHeader()
	if !strings.Contains(header, nhk.ServiceR2.Name()+"!") {
		t.Fatalf("expected failing r2 tab to be marked:\n%s", header)
	}
	if strings.Contains(header, nhk.ServiceG1.Name()+"!") {
		t.Fatalf("did not expect g1 tab to be marked:\n%s", header)
	}

	src.failing = nil
	if header := m.renderHeader(); strings.Contains(header, "!") {
		t.Fatalf("expected no marks once refreshes succeed:\n%s", header)
	}
}
