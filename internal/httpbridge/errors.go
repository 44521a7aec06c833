package httpbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for bridge operations
var (
	// ErrExecutorNotStarted indicates Spawn was called before Start
	ErrExecutorNotStarted = errors.New("executor not started")

	// ErrExecutorStopped indicates the executor is shutting down or stopped
	ErrExecutorStopped = errors.New("executor stopped")

	// ErrExecutorAlreadyStarted indicates Start() was called twice
	ErrExecutorAlreadyStarted = errors.New("executor already started")

	// ErrQueueFull indicates every worker is busy and the queue is at capacity
	ErrQueueFull = errors.New("executor queue full")

	// ErrStopTimeout indicates workers didn't finish within the stop timeout
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")

	// ErrSlotBusy indicates the slot already carries a request, task or result
	ErrSlotBusy = errors.New("slot busy")

	// ErrRequestConsumed indicates a one-shot request was already taken
	ErrRequestConsumed = errors.New("request already consumed")

	// ErrInvalidRequest indicates a request with no method or an unusable URL
	ErrInvalidRequest = errors.New("invalid request")
)

// SubmitError reports a request the dispatcher could not hand to the
// executor. The slot is left without a tag and the request is dropped.
type SubmitError struct {
	Key any
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit slot %v: %v", e.Key, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// DecodeError is raised when a result body can't be turned into the value a
// consumer asked for. It never alters the stored result.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode result: " + e.Reason
	}
	return fmt.Sprintf("decode result: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
