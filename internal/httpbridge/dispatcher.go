package httpbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Dispatch hands every request submitted since the previous call to the
// executor and tags its slot inflight. A request whose task can't be spawned
// is dropped, its slot is left empty, and the failure is returned as a
// *SubmitError (joined when there are several).
func (a *Arena[K]) Dispatch() error {
	if len(a.added) == 0 {
		return nil
	}
	added := a.added
	a.added = nil

	var errs []error
	for _, k := range added {
		rt, ok := a.slots[k].(*requestTag)
		if !ok {
			// removed, or already dispatched under a duplicate entry
			continue
		}
		delete(a.slots, k)

		task, err := a.exec.Spawn(execute(a.client, rt.req, rt.gen))
		if err != nil {
			a.logger.Warn("dropping request",
				zap.Any("slot", k),
				zap.Uint64("generation", rt.gen),
				zap.String("url", rt.req.URL),
				zap.Error(err))
			if a.metrics != nil {
				a.metrics.submitFailures.Inc()
			}
			errs = append(errs, &SubmitError{Key: k, Err: err})
			continue
		}

		a.slots[k] = &inflightTag{
			task:    task,
			gen:     rt.gen,
			method:  rt.req.Method,
			url:     rt.req.URL,
			started: time.Now(),
		}
		a.logger.Debug("creating",
			zap.Any("slot", k),
			zap.Uint64("generation", rt.gen),
			zap.String("method", rt.req.Method),
			zap.String("url", rt.req.URL))
		if a.metrics != nil {
			a.metrics.dispatched.Inc()
			a.metrics.inflight.Inc()
		}
	}
	return errors.Join(errs...)
}

// execute builds the task body for one request. It runs entirely on an
// executor worker and only returns a value.
func execute(client *http.Client, req Request, gen uint64) TaskFunc {
	return func(ctx context.Context) Result {
		start := time.Now()
		res := roundTrip(ctx, client, req)
		res.Generation = gen
		res.Elapsed = time.Since(start)
		return res
	}
}

func roundTrip(ctx context.Context, client *http.Client, req Request) Result {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Result{Err: fmt.Errorf("create request: %w", err)}
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{
			Status: resp.StatusCode,
			Header: resp.Header,
			Err:    fmt.Errorf("read body: %w", err),
		}
	}
	return Result{
		Body:   data,
		Status: resp.StatusCode,
		Header: resp.Header,
	}
}
