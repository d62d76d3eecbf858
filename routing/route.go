package routing

import "net"

// A PathType ranks how a Route was computed, RFC 2328 §16.1's preference
// order: IntraArea beats InterArea beats External1 beats External2, and
// ties within a class are broken by cost.
type PathType int

// Possible PathType values, in preference order (lower sorts first).
const (
	IntraArea PathType = iota
	InterArea
	External1
	External2
)

// String implements fmt.Stringer.
func (p PathType) String() string {
	switch p {
	case IntraArea:
		return "IntraArea"
	case InterArea:
		return "InterArea"
	case External1:
		return "External1"
	case External2:
		return "External2"
	default:
		return "PathType(?)"
	}
}

// A Route is one computed routing table entry: a destination prefix, its
// path type and cost, the equal-cost next hops that reach it, and the
// opaque policy tag carried from the LSA that contributed it.
type Route struct {
	Prefix   *net.IPNet
	Type     PathType
	Cost     uint32
	NextHops []NextHop
	Tag      uint32

	// Discard marks a route installed purely to aggregate a suppressed
	// area range (RFC 2328 §12.4.3): it has no real next hop and exists
	// only to blackhole traffic for components that would otherwise be
	// individually unreachable once summarized away.
	Discard bool

	// asbrCost is the intra-/inter-area cost to the originating ASBR. It
	// has no bearing on Cost (which, for Type-2 externals, is the bare
	// external metric per RFC 2328 §16.4) but breaks ties between two
	// Type-2 candidates for the same destination, RFC 2328 §16.4's
	// "ties broken based on the intra-AS path cost to the ASBR" rule.
	asbrCost uint32
}

// key returns the map key Route's owning RouteSet indexes by: the prefix in
// canonical CIDR form, since *net.IPNet is not itself comparable.
func (r *Route) key() string {
	return r.Prefix.String()
}

// A RouteSet is the routing engine's computed table at one point in time,
// keyed by destination prefix.
type RouteSet map[string]*Route

// NewRouteSet builds a RouteSet from a slice of routes, keeping the best
// (by PathType then Cost) when duplicate prefixes are present.
func NewRouteSet(routes []*Route) RouteSet {
	rs := make(RouteSet, len(routes))
	for _, r := range routes {
		k := r.key()
		cur, ok := rs[k]
		if !ok || better(r, cur) {
			rs[k] = r
		}
	}
	return rs
}

// better reports whether a is preferred over b under RFC 2328 §16.1's
// preference order: path type first, then cost, with Type-2 externals
// additionally tie-broken on cost to the originating ASBR (§16.4).
func better(a, b *Route) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	if a.Type == External2 {
		return a.asbrCost < b.asbrCost
	}
	return false
}

// An OpKind is the kind of change Diff reports for one destination.
type OpKind int

// Possible OpKind values.
const (
	Add OpKind = iota
	Replace
	Delete
)

// String implements fmt.Stringer.
func (k OpKind) String() string {
	switch k {
	case Add:
		return "Add"
	case Replace:
		return "Replace"
	case Delete:
		return "Delete"
	default:
		return "OpKind(?)"
	}
}

// An Op is one change Diff emits between two RouteSets, ready to be handed
// to a RIB client.
type Op struct {
	Kind  OpKind
	Route *Route // the new route for Add/Replace; the removed one for Delete.
}

// Diff compares a freshly computed RouteSet against the previously emitted
// one and returns the Add/Replace/Delete operations needed to bring the RIB
// up to date. Routes are compared by value (next hops, cost, type, tag) so
// an unchanged destination emits no operation at all.
func Diff(old, new RouteSet) []Op {
	var ops []Op

	for k, r := range new {
		prev, existed := old[k]
		switch {
		case !existed:
			ops = append(ops, Op{Kind: Add, Route: r})
		case !routeEqual(prev, r):
			ops = append(ops, Op{Kind: Replace, Route: r})
		}
	}

	for k, r := range old {
		if _, stillPresent := new[k]; !stillPresent {
			ops = append(ops, Op{Kind: Delete, Route: r})
		}
	}

	return ops
}

// routeEqual reports whether two routes for the same destination are
// identical from the RIB's perspective.
func routeEqual(a, b *Route) bool {
	if a.Type != b.Type || a.Cost != b.Cost || a.Tag != b.Tag || a.Discard != b.Discard {
		return false
	}
	if len(a.NextHops) != len(b.NextHops) {
		return false
	}
	seen := make(map[NextHop]bool, len(a.NextHops))
	for _, nh := range a.NextHops {
		seen[nh] = true
	}
	for _, nh := range b.NextHops {
		if !seen[nh] {
			return false
		}
	}
	return true
}
