package state

import (
	"sync"
	"time"

	"github.com/five82/onair/internal/nhk"
)

// offlineAfter is the number of consecutive failures after which a service is
// shown as offline.
const offlineAfter = 2

// Guide is the latest now-on-air data the UI has for one service.
type Guide struct {
	Channel             nhk.Channel
	HasChannel          bool
	LastUpdated         time.Time
	LastAttempt         time.Time
	LastError           error
	ConsecutiveFailures int
	Generation          uint64
}

// IsOffline returns true when the API has failed for several refreshes in a row.
func (g Guide) IsOffline() bool {
	return g.ConsecutiveFailures >= offlineAfter
}

// Stale reports whether the guide should be refreshed at now. A guide without
// data is always stale; otherwise it is stale once the refresh interval or the
// present program's end has passed.
func (g Guide) Stale(now time.Time, refresh time.Duration) bool {
	if !g.HasChannel {
		return true
	}
	if refresh > 0 && now.Sub(g.LastUpdated) >= refresh {
		return true
	}
	if g.Channel.Present != nil {
		if end := g.Channel.Present.ParsedEnd(); !end.IsZero() && now.After(end) {
			return true
		}
	}
	return false
}

// Store keeps one Guide per service.
type Store struct {
	mu     sync.RWMutex
	guides map[nhk.Service]Guide
}

// Update records the outcome of a refresh for svc. When err is non-nil the
// previous channel data is kept and only the error is recorded.
func (s *Store) Update(svc nhk.Service, generation uint64, ch *nhk.Channel, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.guides == nil {
		s.guides = make(map[nhk.Service]Guide)
	}
	g := s.guides[svc]
	g.LastAttempt = time.Now()
	g.Generation = generation

	if err != nil {
		g.LastError = err
		g.ConsecutiveFailures++
		s.guides[svc] = g
		return
	}

	if ch != nil {
		g.Channel = cloneChannel(*ch)
		g.HasChannel = true
	}
	g.LastError = nil
	g.LastUpdated = g.LastAttempt
	g.ConsecutiveFailures = 0
	s.guides[svc] = g
}

// Guide returns a copy of the guide stored for svc.
func (s *Store) Guide(svc nhk.Service) Guide {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.guides[svc]
	g.Channel = cloneChannel(g.Channel)
	return g
}

// Failing returns the services whose last refresh failed.
func (s *Store) Failing() []nhk.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []nhk.Service
	for _, svc := range nhk.Services {
		if g, ok := s.guides[svc]; ok && g.LastError != nil {
			out = append(out, svc)
		}
	}
	return out
}

func cloneChannel(ch nhk.Channel) nhk.Channel {
	return nhk.Channel{
		Previous:  cloneProgram(ch.Previous),
		Present:   cloneProgram(ch.Present),
		Following: cloneProgram(ch.Following),
	}
}

func cloneProgram(p *nhk.Program) *nhk.Program {
	if p == nil {
		return nil
	}
	dup := *p
	if len(p.Genres) > 0 {
		dup.Genres = append([]string(nil), p.Genres...)
	}
	if p.Area != nil {
		area := *p.Area
		dup.Area = &area
	}
	if p.Service != nil {
		info := *p.Service
		dup.Service = &info
	}
	return &dup
}
