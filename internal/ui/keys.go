package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Services
	NextService key.Binding
	PrevService key.Binding
	Service1    key.Binding
	Service2    key.Binding
	Service3    key.Binding
	Service4    key.Binding
	Service5    key.Binding
	Reload      key.Binding

	// Views
	ToggleLogs key.Binding

	// Log navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	ToggleFollow key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to guide"),
		),

		NextService: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "Next service"),
		),
		PrevService: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab", "Previous service"),
		),
		Service1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "NHK総合1")),
		Service2: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "NHKEテレ1")),
		Service3: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "NHKラジオ第1")),
		Service4: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "NHKラジオ第2")),
		Service5: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "NHK FM")),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		ToggleLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log view"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
	}
}

// serviceKeys returns the direct-select bindings in service order.
func (k keyMap) serviceKeys() []key.Binding {
	return []key.Binding{k.Service1, k.Service2, k.Service3, k.Service4, k.Service5}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Service1, k.Service2, k.Service3, k.Service4, k.Service5},
		{k.NextService, k.PrevService, k.Reload},
		{k.ToggleLogs, k.ToggleFollow, k.Up, k.Down, k.Top, k.Bottom},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
