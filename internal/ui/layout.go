package ui

import "time"

// Terminal width below which the header drops service names.
const LayoutCompactWidth = 90

// Timing constants.
const (
	// DefaultFrameInterval is how often the model ticks the request arena.
	DefaultFrameInterval = 100 * time.Millisecond

	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = time.Second

	// ErrorDisplayFor is how long a submit error stays in the status line.
	ErrorDisplayFor = 10 * time.Second
)

// LogBufferLimit is the number of log lines kept for the log view.
const LogBufferLimit = 2000
