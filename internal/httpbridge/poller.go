package httpbridge

import (
	"time"

	"go.uber.org/zap"
)

// Poll checks every inflight slot once without blocking. Finished tasks have
// their result written to the slot, replacing the inflight tag. Poll returns
// the number of slots that became ready.
func (a *Arena[K]) Poll() int {
	completed := 0
	for k, t := range a.slots {
		it, ok := t.(*inflightTag)
		if !ok {
			continue
		}
		res, ready := it.task.TryResult()
		if !ready {
			continue
		}
		a.slots[k] = &resultTag{res: &res}
		completed++

		fields := []zap.Field{
			zap.Any("slot", k),
			zap.Uint64("generation", it.gen),
			zap.String("url", it.url),
			zap.Int("status", res.Status),
			zap.Int("bytes", len(res.Body)),
			zap.Duration("waited", time.Since(it.started)),
		}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		a.logger.Debug("polling: completed", fields...)
		if a.metrics != nil {
			a.metrics.inflight.Dec()
			a.metrics.results.WithLabelValues(outcomeLabel(res)).Inc()
		}
	}
	return completed
}

// Tick runs one Dispatch followed by one Poll. The returned error is the
// dispatch error, if any; completed counts slots that became ready.
func (a *Arena[K]) Tick() (completed int, err error) {
	err = a.Dispatch()
	completed = a.Poll()
	return completed, err
}
