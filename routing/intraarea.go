package routing

// IntraAreaRoutes runs Dijkstra over g rooted at root and grafts stubs onto
// the resulting shortest-path tree, RFC 2328 §16.1 steps 1-2. A stub whose
// Attached vertex is root itself is a directly connected network and is
// graded cost 0 plus the stub's own link cost with no extra hop; any other
// stub inherits the cost and next-hop set of the tree vertex it hangs off.
func IntraAreaRoutes(g Graph, root Vertex, stubs []Stub, ecmpMax int) []*Route {
	tree := Dijkstra(g, root, ecmpMax)

	var routes []*Route
	for _, s := range stubs {
		var base *SPFNode
		if s.Attached == root {
			base = &SPFNode{Cost: 0, NextHops: []NextHop{s.NextHop}}
		} else {
			n, ok := tree[s.Attached]
			if !ok {
				// The attachment point is unreachable (a stale or
				// transient advertisement); skip it rather than
				// originate an unreachable route.
				continue
			}
			base = n
		}

		routes = append(routes, &Route{
			Prefix:   s.Prefix,
			Type:     IntraArea,
			Cost:     uint32(base.Cost) + uint32(s.Cost),
			NextHops: dedupedNextHops(base.NextHops, ecmpMax),
		})
	}
	return routes
}

// dedupedNextHops returns a capped copy of hops, since stub grafting must
// not share backing arrays with the SPF tree's own node results (callers
// may reuse a tree node across multiple stubs).
func dedupedNextHops(hops []NextHop, ecmpMax int) []NextHop {
	if len(hops) > ecmpMax {
		hops = hops[:ecmpMax]
	}
	return append([]NextHop(nil), hops...)
}
