package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/onair/internal/httpbridge"
	"github.com/five82/onair/internal/nhk"
	"github.com/five82/onair/internal/prefs"
	"github.com/five82/onair/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewGuide View = iota
	ViewLogs
)

// GuideSource is what the model drives once per frame. It must never block.
type GuideSource interface {
	Step(now time.Time, active nhk.Service) (int, error)
	Reload(svc nhk.Service) error
	Guide(svc nhk.Service) state.Guide
	Slot(svc nhk.Service) httpbridge.SlotState
	Failing() []nhk.Service
	HasKey() bool
	Area() string
}

// Options configures the UI.
type Options struct {
	Source        GuideSource
	Logger        *zap.Logger
	LogPath       string
	FrameInterval time.Duration
	ThemeName     string
	Service       nhk.Service
	PrefsPath     string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	source        GuideSource
	logger        *zap.Logger
	logPath       string
	prefsPath     string
	frameInterval time.Duration
	now           func() time.Time

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model

	// Guide state
	service   nhk.Service
	lastErr   error
	lastErrAt time.Time

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	frame := opts.FrameInterval
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := opts.Service
	if !svc.Valid() {
		svc = nhk.ServiceG1
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(opts.ThemeName)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Styles().AccentText

	return Model{
		source:        opts.Source,
		logger:        logger.Named("ui"),
		logPath:       opts.LogPath,
		prefsPath:     prefsPath,
		frameInterval: frame,
		now:           time.Now,
		keys:          DefaultKeyMap(),
		theme:         theme,
		currentView:   ViewGuide,
		spinner:       sp,
		service:       svc,
		logState:      logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("NHK now"),
		tickCmd(m.frameInterval),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderGuide())
	}
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = m.theme.Styles().AccentText
		m.logState.dirty = true
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewGuide
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.refreshLogs(true)

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewGuide
		return m, nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleGuideKey(msg)
}

// handleGuideKey processes keyboard input for the guide view.
func (m Model) handleGuideKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for i, binding := range m.keys.serviceKeys() {
		if key.Matches(msg, binding) {
			m.selectService(nhk.Services[i])
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.NextService):
		m.selectService(m.service.Next())
	case key.Matches(msg, m.keys.PrevService):
		m.selectService(m.service.Prev())
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	}
	return m, nil
}

// selectService switches the displayed service. The next tick submits a
// request for it if its guide is stale.
func (m *Model) selectService(svc nhk.Service) {
	if svc == m.service {
		return
	}
	m.service = svc
	m.savePrefs()
}

func (m *Model) reload() {
	if m.source == nil {
		return
	}
	if err := m.source.Reload(m.service); err != nil {
		m.setError(err)
		return
	}
	m.logger.Debug("reload requested", zap.Stringer("service", m.service))
}

func (m *Model) setError(err error) {
	m.lastErr = err
	m.lastErrAt = m.now()
	m.logger.Warn("guide request", zap.Stringer("service", m.service), zap.Error(err))
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Service: m.service.ID()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs", zap.Error(err))
	}
}

// handleTick runs one frame: the guide source submits, dispatches and polls
// without blocking, then the next frame is scheduled.
func (m Model) handleTick(at time.Time) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.source != nil {
		if _, err := m.source.Step(at, m.service); err != nil {
			m.setError(err)
		}
	}
	if m.lastErr != nil && m.now().Sub(m.lastErrAt) > ErrorDisplayFor {
		m.lastErr = nil
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(false); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.frameInterval))
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
