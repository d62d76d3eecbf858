package routing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEngineTriggerRunsOnceAfterHolddown(t *testing.T) {
	var runs int32
	var mu sync.Mutex
	var lastOps []Op

	e := NewEngine(Config{
		ECMPMax:         1,
		SpfDelayInitial: 20 * time.Millisecond,
		SpfDelayMax:     200 * time.Millisecond,
	}, func() RouteSet {
		atomic.AddInt32(&runs, 1)
		return NewRouteSet([]*Route{route(t, "10.0.0.0/24", IntraArea, 10, 1)})
	}, func(ops []Op) {
		mu.Lock()
		lastOps = ops
		mu.Unlock()
	})

	e.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&runs) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("Compute ran %d times, want 1", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lastOps) != 1 || lastOps[0].Kind != Add {
		t.Fatalf("ops = %+v, want a single Add", lastOps)
	}
}

func TestEngineRepeatedTriggerCoalesces(t *testing.T) {
	var runs int32

	e := NewEngine(Config{
		ECMPMax:         1,
		SpfDelayInitial: 30 * time.Millisecond,
		SpfDelayMax:     300 * time.Millisecond,
	}, func() RouteSet {
		atomic.AddInt32(&runs, 1)
		return make(RouteSet)
	}, nil)

	for i := 0; i < 5; i++ {
		e.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&runs) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("Compute ran %d times, want exactly 1 (rapid re-triggers must coalesce)", got)
	}
}

func TestEngineCurrentReflectsLastRun(t *testing.T) {
	e := NewEngine(Config{ECMPMax: 1, SpfDelayInitial: time.Millisecond, SpfDelayMax: 10 * time.Millisecond},
		func() RouteSet {
			return NewRouteSet([]*Route{route(t, "10.0.0.0/24", IntraArea, 1, 1)})
		}, nil)

	e.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.Current()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if len(e.Current()) != 1 {
		t.Fatalf("Current() = %+v, want one route installed", e.Current())
	}
}
