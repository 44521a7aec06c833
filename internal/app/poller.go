package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/onair/internal/httpbridge"
	"github.com/five82/onair/internal/nhk"
	"github.com/five82/onair/internal/state"
	"github.com/five82/onair/internal/ui"
)

var _ ui.GuideSource = (*Poller)(nil)

const (
	defaultRefreshInterval = 60 * time.Second
	retryDelay             = 5 * time.Second
	maxBackoff             = 5 * time.Minute
)

// calculateBackoff returns the wait before the next attempt after the given
// number of consecutive failures: base doubled per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// Poller drives NHK guide refreshes through the request arena. The UI calls
// Step once per frame; Step never blocks.
type Poller struct {
	arena    *httpbridge.Arena[nhk.Service]
	endpoint *nhk.Endpoint
	store    *state.Store
	refresh  time.Duration
	logger   *zap.Logger

	nextAttempt map[nhk.Service]time.Time
}

// NewPoller wires a Poller. A non-positive refresh uses the 60s default.
func NewPoller(arena *httpbridge.Arena[nhk.Service], endpoint *nhk.Endpoint, store *state.Store, refresh time.Duration, logger *zap.Logger) *Poller {
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		arena:       arena,
		endpoint:    endpoint,
		store:       store,
		refresh:     refresh,
		logger:      logger.Named("poller"),
		nextAttempt: make(map[nhk.Service]time.Time),
	}
}

// Step submits a refresh for active when its guide is stale and no request
// is pending, runs one arena tick, and moves finished results into the store.
// It returns how many guides were updated.
func (p *Poller) Step(now time.Time, active nhk.Service) (int, error) {
	var errs []error
	if p.due(now, active) {
		if err := p.submit(active); err != nil {
			errs = append(errs, err)
			p.nextAttempt[active] = now.Add(retryDelay)
		}
	}

	if _, err := p.arena.Tick(); err != nil {
		p.backOffFailedSubmits(now, err)
		errs = append(errs, err)
	}

	updated := 0
	for _, svc := range nhk.Services {
		res, ok := p.arena.Take(svc)
		if !ok {
			continue
		}
		p.record(now, svc, res)
		updated++
	}
	return updated, errors.Join(errs...)
}

// Reload forces a refresh of svc. A request already pending for svc is
// abandoned and replaced.
func (p *Poller) Reload(svc nhk.Service) error {
	if st := p.arena.State(svc); st != httpbridge.SlotEmpty {
		p.logger.Debug("abandoning pending request", zap.Stringer("service", svc), zap.Stringer("state", st))
		p.arena.Remove(svc)
	}
	delete(p.nextAttempt, svc)
	return p.submit(svc)
}

// Guide returns the stored guide for svc.
func (p *Poller) Guide(svc nhk.Service) state.Guide {
	return p.store.Guide(svc)
}

// Slot reports where the request for svc currently is.
func (p *Poller) Slot(svc nhk.Service) httpbridge.SlotState {
	return p.arena.State(svc)
}

// Failing returns the services whose last refresh failed.
func (p *Poller) Failing() []nhk.Service {
	return p.store.Failing()
}

// HasKey reports whether requests carry an API key.
func (p *Poller) HasKey() bool {
	return p.endpoint.HasKey()
}

// Area returns the area code guides are fetched for.
func (p *Poller) Area() string {
	return p.endpoint.Area()
}

func (p *Poller) due(now time.Time, svc nhk.Service) bool {
	if p.arena.State(svc) != httpbridge.SlotEmpty {
		return false
	}
	if next, ok := p.nextAttempt[svc]; ok && now.Before(next) {
		return false
	}
	return p.store.Guide(svc).Stale(now, p.refresh)
}

func (p *Poller) submit(svc nhk.Service) error {
	req, err := p.endpoint.NowOnAir(svc)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if err := p.arena.Submit(svc, req); err != nil {
		p.logger.Warn("submit failed", zap.Stringer("service", svc), zap.Error(err))
		return fmt.Errorf("submit %s: %w", svc, err)
	}
	return nil
}

func (p *Poller) backOffFailedSubmits(now time.Time, err error) {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return
	}
	for _, e := range joined.Unwrap() {
		var submitErr *httpbridge.SubmitError
		if !errors.As(e, &submitErr) {
			continue
		}
		if svc, ok := submitErr.Key.(nhk.Service); ok {
			p.nextAttempt[svc] = now.Add(retryDelay)
		}
	}
}

func (p *Poller) record(now time.Time, svc nhk.Service, res *httpbridge.Result) {
	ch, err := nhk.DecodeNowOnAir(res, svc)
	if err != nil {
		p.store.Update(svc, res.Generation, nil, err)
		failures := p.store.Guide(svc).ConsecutiveFailures
		wait := calculateBackoff(failures, retryDelay)
		p.nextAttempt[svc] = now.Add(wait)
		p.logger.Warn("refresh failed",
			zap.Stringer("service", svc),
			zap.Uint64("generation", res.Generation),
			zap.Int("failures", failures),
			zap.Duration("retry_in", wait),
			zap.Error(err))
		return
	}
	p.store.Update(svc, res.Generation, &ch, nil)
	p.nextAttempt[svc] = now.Add(p.refresh)
	p.logger.Info("guide updated",
		zap.Stringer("service", svc),
		zap.Uint64("generation", res.Generation),
		zap.Int("status", res.Status),
		zap.Duration("elapsed", res.Elapsed))
}
