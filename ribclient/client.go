package ribclient

import (
	"fmt"
	"net"
	"sync"
)

// A NextHop is one egress the RIB should install for a route: the
// interface/VIF pair the packet leaves through and, for a route that
// transits another router, that router's address on the shared link.
type NextHop struct {
	Iface   string
	VIF     string
	Gateway net.IP
}

// String implements fmt.Stringer.
func (n NextHop) String() string {
	if n.Gateway == nil {
		return fmt.Sprintf("%s/%s (direct)", n.Iface, n.VIF)
	}
	return fmt.Sprintf("%s/%s via %s", n.Iface, n.VIF, n.Gateway)
}

// A Route is one entry the core hands to the RIB, matching §6's
// add_route/replace_route contract: a destination, its next hops (more
// than one only when Equal is set — equal-cost multipath), its metric, and
// the policy tags attached at origination, round-tripped opaquely.
type Route struct {
	Prefix   *net.IPNet
	NextHops []NextHop
	Metric   uint32
	// Equal marks an equal-cost multipath route: NextHops holds every
	// equal-cost egress rather than a single preferred one.
	Equal bool
	// Discard marks a route that should blackhole matching traffic rather
	// than forward it, e.g. an area range whose components were
	// summarized away.
	Discard    bool
	PolicyTags []uint32
}

// A Client is the RIB contract the core consumes, §6 "RIB contract". The
// core calls Register once before emitting any route and Unregister on
// clean shutdown; AddRoute/ReplaceRoute/DeleteRoute key on Route.Prefix.
type Client interface {
	Register() error
	Unregister() error
	AddRoute(r Route) error
	ReplaceRoute(r Route) error
	DeleteRoute(prefix *net.IPNet) error
}

// NoOp is a Client that silently discards every call, useful for wiring the
// core up in tests or examples where no real RIB is present.
type NoOp struct{}

var _ Client = NoOp{}

// Register implements Client.
func (NoOp) Register() error { return nil }

// Unregister implements Client.
func (NoOp) Unregister() error { return nil }

// AddRoute implements Client.
func (NoOp) AddRoute(Route) error { return nil }

// ReplaceRoute implements Client.
func (NoOp) ReplaceRoute(Route) error { return nil }

// DeleteRoute implements Client.
func (NoOp) DeleteRoute(*net.IPNet) error { return nil }

// A Call is one RIB operation Recording captured, in invocation order.
type Call struct {
	Method string     // "Register", "Unregister", "AddRoute", "ReplaceRoute", or "DeleteRoute".
	Route  Route      // populated for AddRoute/ReplaceRoute.
	Prefix *net.IPNet // populated for DeleteRoute.
}

// Recording is a Client that records every call it receives instead of
// acting on it, so tests can assert on exactly what the core emitted.
type Recording struct {
	mu    sync.Mutex
	calls []Call
	// Registered reports whether Register has been called more recently
	// than Unregister.
	registered bool
}

var _ Client = (*Recording)(nil)

// Register implements Client.
func (r *Recording) Register() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "Register"})
	r.registered = true
	return nil
}

// Unregister implements Client.
func (r *Recording) Unregister() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "Unregister"})
	r.registered = false
	return nil
}

// AddRoute implements Client.
func (r *Recording) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "AddRoute", Route: route})
	return nil
}

// ReplaceRoute implements Client.
func (r *Recording) ReplaceRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "ReplaceRoute", Route: route})
	return nil
}

// DeleteRoute implements Client.
func (r *Recording) DeleteRoute(prefix *net.IPNet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "DeleteRoute", Prefix: prefix})
	return nil
}

// Calls returns a snapshot of every call received so far, in order.
func (r *Recording) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Registered reports whether the client is currently between a Register
// and its matching Unregister.
func (r *Recording) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered
}
