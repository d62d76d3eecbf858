package routing

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Config holds the routing engine's tunable parameters.
type Config struct {
	// RFC1583Compat relaxes the intra-area-always-wins preference of RFC
	// 2328 §16.2 to plain lowest-cost-wins between intra- and inter-area
	// routes, RFC 1583's original (and still interoperable) behavior.
	RFC1583Compat bool

	// ECMPMax bounds how many equal-cost next hops a Route retains.
	ECMPMax int

	// SpfDelayInitial is the holddown applied before the first SPF run
	// after quiet, and SpfDelayMax the ceiling the holddown doubles
	// toward on repeated back-to-back triggers.
	SpfDelayInitial, SpfDelayMax time.Duration
}

// An Engine schedules and runs full SPF recomputation with the holddown
// RFC 2328 §16's implementation notes describe (`SpfDelay`, doubling on
// rapid re-triggering, reset once the topology goes quiet), coalescing
// concurrent triggers so a burst of LSDB churn produces exactly one run.
type Engine struct {
	Config

	// Compute is called once per SPF run (after the holddown elapses) to
	// produce the new RouteSet from whatever topology state the caller
	// closed over. It is invoked on the engine's own timer goroutine.
	Compute func() RouteSet

	// Emit is called with the Diff between the previous and new RouteSet
	// once a run completes, e.g. to drive a RIB client.
	Emit func([]Op)

	mu      sync.Mutex
	current RouteSet
	timer   *time.Timer
	delay   time.Duration
	group   singleflight.Group
	pending bool
}

// NewEngine returns an Engine ready to schedule SPF runs.
func NewEngine(cfg Config, compute func() RouteSet, emit func([]Op)) *Engine {
	if cfg.ECMPMax < 1 {
		cfg.ECMPMax = 1
	}
	return &Engine{
		Config:  cfg,
		Compute: compute,
		Emit:    emit,
		current: make(RouteSet),
		delay:   cfg.SpfDelayInitial,
	}
}

// Trigger schedules a full SPF run, applying the current holddown. Repeated
// triggers while a run is already pending are coalesced into the single
// scheduled run; the holddown doubles (capped at SpfDelayMax) each time a
// trigger arrives before the previous run's holddown has elapsed, and
// resets back to SpfDelayInitial once a run actually executes.
func (e *Engine) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending {
		// Already have a run scheduled; a re-trigger before it fires
		// means the topology is still churning, so back off further.
		if e.timer != nil {
			e.timer.Stop()
		}
		e.delay *= 2
		if e.delay > e.SpfDelayMax {
			e.delay = e.SpfDelayMax
		}
	} else {
		e.pending = true
		e.delay = e.SpfDelayInitial
	}

	e.timer = time.AfterFunc(e.delay, e.run)
}

// run executes one SPF pass and diffs it against the previously computed
// RouteSet. singleflight collapses a run already in flight with any
// trigger that lands in the narrow window between the timer firing and run
// completing, so a fast follow-up trigger waits for (and reuses) the
// in-flight result instead of starting a second, redundant computation.
func (e *Engine) run() {
	e.group.Do("spf", func() (interface{}, error) {
		next := e.Compute()

		e.mu.Lock()
		prev := e.current
		e.current = next
		e.pending = false
		e.mu.Unlock()

		if e.Emit != nil {
			e.Emit(Diff(prev, next))
		}
		return nil, nil
	})
}

// Current returns the most recently computed RouteSet.
func (e *Engine) Current() RouteSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}
