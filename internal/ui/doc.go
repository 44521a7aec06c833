// Package ui provides the terminal interface for onair.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It owns no goroutines of its own: a frame
// tick fires every DefaultFrameInterval and each tick calls GuideSource.Step,
// which submits, dispatches and polls HTTP requests without blocking. Request
// results land in a state.Store that the views read on every render.
//
// # Package Structure
//
//   - app.go: Model, Update loop, frame tick and the Run function
//   - header.go: Logo, service tabs, request status and command bar
//   - guide.go: Previous, present and following programs for one service
//   - logs.go: Tail of the application log file
//   - help.go: Key binding overlay
//   - keys.go, theme.go, style_helpers.go, layout.go: Shared building blocks
//
// # Views
//
//   - Guide View: The now-on-air timeline and detail for the selected service
//   - Logs View: The zap log file, coloured by level, with follow mode
//
// # Event Flow
//
//  1. Run() creates the Model and starts the program in the alternate screen
//  2. Each tickMsg calls Step for the selected service and schedules the next tick
//  3. Key presses switch services, request reloads or change views
//  4. Theme and service changes are written to the prefs file
//  5. Context cancellation shuts the program down
//
// # Usage Example
//
//	err := ui.Run(ctx, ui.Options{
//		Source:  poller,
//		Logger:  logger,
//		LogPath: cfg.Log.File,
//		Service: nhk.ServiceG1,
//	})
//
// # Key Bindings
//
//   - 1-5: Select service
//   - Tab/Shift+Tab: Next/previous service
//   - r: Reload the selected service
//   - L: Toggle log view
//   - Space: Toggle log follow mode
//   - j/k, g/G, ctrl+d/u: Scroll logs
//   - T: Cycle theme
//   - h/?: Help
//   - q or Ctrl+C: Exit
package ui
