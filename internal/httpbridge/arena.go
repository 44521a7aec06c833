package httpbridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// SlotState is the tag currently attached to a slot.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotRequested
	SlotInflight
	SlotReady
)

func (s SlotState) String() string {
	switch s {
	case SlotRequested:
		return "requested"
	case SlotInflight:
		return "inflight"
	case SlotReady:
		return "ready"
	default:
		return "empty"
	}
}

// tag is the single value a slot carries. Holding exactly one tag per key
// is what keeps request, task and result mutually exclusive.
type tag interface {
	state() SlotState
}

type requestTag struct {
	req Request
	gen uint64
}

type inflightTag struct {
	task    *Task
	gen     uint64
	method  string
	url     string
	started time.Time
}

type resultTag struct {
	res *Result
}

func (*requestTag) state() SlotState  { return SlotRequested }
func (*inflightTag) state() SlotState { return SlotInflight }
func (*resultTag) state() SlotState   { return SlotReady }

// Spawner starts background tasks. *Executor implements it.
type Spawner interface {
	Spawn(fn TaskFunc) (*Task, error)
	Ready() error
}

var _ Spawner = (*Executor)(nil)

// Arena maps collaborator-owned slot keys to the bridge tag each carries.
// It is driven from a single goroutine: Submit, Dispatch, Poll and the
// accessors must not be called concurrently.
type Arena[K comparable] struct {
	slots  map[K]tag
	added  []K
	gen    uint64
	exec   Spawner
	client *http.Client
	logger *zap.Logger

	metrics *arenaMetrics
}

// ArenaOption configures an Arena.
type ArenaOption func(*arenaOptions)

type arenaOptions struct {
	client        *http.Client
	logger        *zap.Logger
	registerer    prometheus.Registerer
	metricsPrefix string
}

// WithClient injects the HTTP client every request runs on. Without it the
// arena uses SharedClient.
func WithClient(client *http.Client) ArenaOption {
	return func(o *arenaOptions) {
		o.client = client
	}
}

// WithLogger sets the logger for slot transitions.
func WithLogger(logger *zap.Logger) ArenaOption {
	return func(o *arenaOptions) {
		o.logger = logger
	}
}

// WithMetrics registers arena metrics on reg under prefix.
func WithMetrics(reg prometheus.Registerer, prefix string) ArenaOption {
	return func(o *arenaOptions) {
		o.registerer = reg
		o.metricsPrefix = prefix
	}
}

// NewArena returns an empty arena whose requests run on exec.
func NewArena[K comparable](exec Spawner, opts ...ArenaOption) (*Arena[K], error) {
	if exec == nil {
		return nil, fmt.Errorf("arena requires an executor")
	}
	var o arenaOptions
	for _, opt := range opts {
		opt(&o)
	}
	a := &Arena[K]{
		slots:  make(map[K]tag),
		exec:   exec,
		client: o.client,
		logger: o.logger,
	}
	if a.client == nil {
		a.client = SharedClient()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if o.registerer != nil {
		prefix := o.metricsPrefix
		if prefix == "" {
			prefix = defaultMetricsPrefix
		}
		m, err := newArenaMetrics(o.registerer, prefix)
		if err != nil {
			return nil, err
		}
		a.metrics = m
	}
	return a, nil
}

// Submit attaches req to slot k. The request is consumed on success and is
// dispatched on the next Dispatch. Submit fails without consuming req when
// the slot already carries a tag, the executor isn't running, or req is invalid.
func (a *Arena[K]) Submit(k K, req *Request) error {
	if t, ok := a.slots[k]; ok {
		return fmt.Errorf("%w: slot %v is %s", ErrSlotBusy, k, t.state())
	}
	if err := a.exec.Ready(); err != nil {
		return err
	}
	taken, err := req.take()
	if err != nil {
		return err
	}
	a.gen++
	a.slots[k] = &requestTag{req: taken, gen: a.gen}
	a.added = append(a.added, k)
	if a.metrics != nil {
		a.metrics.submitted.Inc()
	}
	return nil
}

// State returns the tag currently attached to k.
func (a *Arena[K]) State(k K) SlotState {
	t, ok := a.slots[k]
	if !ok {
		return SlotEmpty
	}
	return t.state()
}

// Result returns the result stored at k without removing it.
func (a *Arena[K]) Result(k K) (*Result, bool) {
	rt, ok := a.slots[k].(*resultTag)
	if !ok {
		return nil, false
	}
	return rt.res, true
}

// Take removes and returns the result stored at k, freeing the slot.
func (a *Arena[K]) Take(k K) (*Result, bool) {
	res, ok := a.Result(k)
	if !ok {
		return nil, false
	}
	delete(a.slots, k)
	return res, true
}

// Remove detaches whatever tag k carries. Removing an inflight slot doesn't
// stop its task; the task's result is discarded when it finishes and can
// never reach a later submission at the same key.
func (a *Arena[K]) Remove(k K) {
	t, ok := a.slots[k]
	if !ok {
		return
	}
	if it, inflight := t.(*inflightTag); inflight {
		a.logger.Debug("abandoning inflight request",
			zap.Any("slot", k),
			zap.Uint64("generation", it.gen),
			zap.String("url", it.url))
		if a.metrics != nil {
			a.metrics.inflight.Dec()
		}
	}
	delete(a.slots, k)
}

// ArenaStats counts slots by tag.
type ArenaStats struct {
	Requested int
	Inflight  int
	Ready     int
}

// Stats counts the slots currently carrying each tag.
func (a *Arena[K]) Stats() ArenaStats {
	var s ArenaStats
	for _, t := range a.slots {
		switch t.state() {
		case SlotRequested:
			s.Requested++
		case SlotInflight:
			s.Inflight++
		case SlotReady:
			s.Ready++
		}
	}
	return s
}

// Len returns the number of slots carrying any tag.
func (a *Arena[K]) Len() int {
	return len(a.slots)
}
