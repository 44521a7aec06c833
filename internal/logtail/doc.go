// Package logtail reads the end of onair's log file for the in-app log view.
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays bounded no matter how large the file grows. Lines come back
// oldest first. A missing file is not an error; the log view simply starts
// empty.
//
// Parse understands both encodings the logger can write:
//
//	2025-01-02T10:00:00.000+0900	DEBUG	httpbridge/dispatcher.go:42	creating	{"slot": "g1"}
//	{"level":"debug","ts":"...","caller":"...","msg":"creating","slot":"g1"}
//
// Anything else is returned untouched as the message.
package logtail
