package httpbridge

import (
	"context"
	"fmt"
)

// TaskFunc is the body of a background task.
type TaskFunc func(ctx context.Context) Result

// Task is a handle to work running on the executor. The worker publishes
// exactly one Result into done; readers never block.
type Task struct {
	fn     TaskFunc
	done   chan Result // buffered, capacity 1
	result *Result
}

func newTask(fn TaskFunc) *Task {
	return &Task{
		fn:   fn,
		done: make(chan Result, 1),
	}
}

// TryResult performs one non-blocking readiness check. It returns the
// result and true once the task has finished.
func (t *Task) TryResult() (Result, bool) {
	if t.result != nil {
		return *t.result, true
	}
	select {
	case res := <-t.done:
		t.result = &res
		return res, true
	default:
		return Result{}, false
	}
}

// run executes the task body and publishes its result. A panicking body is
// reported as a transport error.
func (t *Task) run(ctx context.Context) (failed bool) {
	var res Result
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("task panicked: %v", r)}
		}
		failed = res.Err != nil
		t.done <- res
	}()
	res = t.fn(ctx)
	return
}
