// Package httpbridge lets a single-threaded, tick-driven loop issue HTTP
// requests without blocking and pick up their results on a later tick.
//
// # Overview
//
// The caller owns a set of slot keys (any comparable type). Each slot may
// carry one of three tags at a time:
//
//   - Request: attached by the caller with Arena.Submit
//   - Inflight: attached by Dispatch once the request runs on the Executor
//   - Result: attached by Poll once the background task finished
//
// The tags live in a single map value per key, so a slot can never carry two
// of them at once, and the only code paths that replace a tag move it
// forward: Request to Inflight to Result. The caller removes the Result with
// Arena.Take (or Arena.Remove) to reclaim the slot.
//
// # Tick Loop
//
//	┌──────────────┐  Submit(k, req)
//	│  caller      │──────────────────────┐
//	└──────────────┘                      ▼
//	                              ┌───────────────┐
//	  tick N    Dispatch() ──────>│ k: Request    │
//	                              └───────┬───────┘
//	                                      │ Executor.Spawn
//	                              ┌───────▼───────┐
//	  tick N+1… Poll()  ─────────>│ k: Inflight   │  one TryResult per tick
//	                              └───────┬───────┘
//	                              ┌───────▼───────┐
//	  tick M    Result(k)/Take(k) │ k: Result     │
//	                              └───────────────┘
//
// Dispatch and Poll each run to completion once per tick and never block.
// Background tasks never touch the arena; they publish into their own Task
// handle, which Poll drains.
//
// # Errors
//
//   - Submission errors: Submit returns ErrSlotBusy, ErrExecutorNotStarted,
//     ErrExecutorStopped, ErrRequestConsumed or ErrInvalidRequest immediately. Dispatch returns a
//     *SubmitError for each request whose task couldn't be spawned; that slot
//     is left empty.
//   - Transport errors: carried in Result.Err. A non-2xx status is not an
//     error; the status and body are returned as they arrived.
//   - Decode errors: Decode and DecodeErr report them to the caller and leave
//     the stored Result untouched.
//
// # Usage Example
//
//	exec, _ := httpbridge.NewExecutor(4, 64)
//	_ = exec.Start(ctx)
//	arena, _ := httpbridge.NewArena[string](exec, httpbridge.WithClient(client))
//
//	_ = arena.Submit("g1", httpbridge.Get(url))
//
//	// every tick:
//	_, _ = arena.Tick()
//	if res, ok := arena.Take("g1"); ok {
//		guide, ok := httpbridge.Decode[Guide](res)
//		...
//	}
//
// # Removed Slots
//
// Removing a slot while its request is inflight doesn't stop the request.
// The Inflight tag owns the task handle, so the finished result is dropped
// along with the handle and a new submission at the same key always gets a
// fresh task. Each submission is stamped with a generation number that shows
// up in logs and in Result.Generation.
package httpbridge
