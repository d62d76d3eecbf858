package ospfd

import (
	"net"

	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/ribclient"
	"github.com/mdlayher/ospfd/routing"
)

// newEngine returns a routing.Engine wired to as: Compute rebuilds the
// area's SPF graph from its current Link-State Database and runs Dijkstra
// rooted at this router; Emit diffs the result against what was last
// installed and pushes Add/Replace/Delete operations to the configured
// ribclient.Client.
func (r *Router) newEngine(areaID ospfid.ID, as *areaState) *routing.Engine {
	return routing.NewEngine(
		routing.Config{
			RFC1583Compat: r.cfg.RFC1583Compat,
			ECMPMax:       r.cfg.ECMPMax,
			SpfDelayInitial: r.cfg.SpfDelayInitial,
			SpfDelayMax:     r.cfg.SpfDelayMax,
		},
		func() routing.RouteSet { return r.computeArea(as) },
		func(ops []routing.Op) { r.emitRoutes(ops) },
	)
}

// computeArea parses as's Link-State Database into an SPF graph and runs
// intra-area route computation rooted at this router's own Router-LSA, RFC
// 2328 §16.1.
func (r *Router) computeArea(as *areaState) routing.RouteSet {
	graph := make(routing.Graph)
	var stubs []routing.Stub

	root := routing.Vertex{Kind: routing.RouterVertex, ID: r.cfg.RouterID}

	for _, e := range as.area.Database().Iterate() {
		switch ospf2.LSType(e.Key.Type) {
		case ospf2.RouterLSA:
			lsa, err := ospf2.ParseLSA(e.Raw)
			if err != nil {
				continue
			}
			body, ok := lsa.Body.(*ospf2.Router)
			if !ok {
				continue
			}
			from := routing.Vertex{Kind: routing.RouterVertex, ID: e.Key.AdvertisingRouter}
			r.addRouterLinks(as, from, body, &graph, &stubs)

		case ospf2.NetworkLSA:
			lsa, err := ospf2.ParseLSA(e.Raw)
			if err != nil {
				continue
			}
			body, ok := lsa.Body.(*ospf2.Network)
			if !ok {
				continue
			}
			net := routing.Vertex{Kind: routing.NetworkVertex, ID: e.Key.LinkStateID}
			for _, attached := range body.AttachedRouter {
				rv := routing.Vertex{Kind: routing.RouterVertex, ID: attached}
				graph[net] = append(graph[net], routing.Edge{To: rv, Cost: 0})
			}
		}
	}

	routes := routing.IntraAreaRoutes(graph, root, stubs, r.cfg.ECMPMax)
	return routing.NewRouteSet(routes)
}

// addRouterLinks translates one Router-LSA's links into graph edges
// (point-to-point and transit links) and Stub entries (stub network
// links), RFC 2328 §16.1's per-link-type handling.
func (r *Router) addRouterLinks(as *areaState, from routing.Vertex, body *ospf2.Router, graph *routing.Graph, stubs *[]routing.Stub) {
	isRoot := from.ID == r.cfg.RouterID

	for _, l := range body.Links {
		switch l.Type {
		case ospf2.LinkPointToPoint, ospf2.LinkVirtual:
			to := routing.Vertex{Kind: routing.RouterVertex, ID: l.LinkID}
			var nh routing.NextHop
			if isRoot {
				nh = r.nextHopToNeighbor(as, l.LinkID)
			}
			(*graph)[from] = append((*graph)[from], routing.Edge{To: to, Cost: l.Metric, NextHop: nh})

		case ospf2.LinkTransit:
			to := routing.Vertex{Kind: routing.NetworkVertex, ID: l.LinkID}
			var nh routing.NextHop
			if isRoot {
				nh = r.nextHopToDR(as, l.LinkID)
			}
			(*graph)[from] = append((*graph)[from], routing.Edge{To: to, Cost: l.Metric, NextHop: nh})

		case ospf2.LinkStub:
			mask := net.IPMask(idToIP(l.LinkData).To4())
			prefix := &net.IPNet{IP: idToIP(l.LinkID).Mask(mask), Mask: mask}
			var nh routing.NextHop
			if isRoot {
				nh = r.nextHopOnStub(as, prefix)
			}
			*stubs = append(*stubs, routing.Stub{
				Prefix:   prefix,
				Attached: from,
				Cost:     l.Metric,
				NextHop:  nh,
			})
		}
	}
}

// nextHopToNeighbor finds the Peer whose neighbor list contains
// neighborID, for a directly attached point-to-point/virtual link.
func (r *Router) nextHopToNeighbor(as *areaState, neighborID ospfid.ID) routing.NextHop {
	for _, ps := range as.peers {
		for _, n := range ps.peer.Neighbors() {
			if n.ID == neighborID {
				return routing.NextHop{InterfaceID: ps.ifID, RouterID: neighborID}
			}
		}
	}
	return routing.NextHop{}
}

// nextHopToDR finds the Peer whose elected Designated Router is drID, for a
// directly attached transit network link.
func (r *Router) nextHopToDR(as *areaState, drID ospfid.ID) routing.NextHop {
	for _, ps := range as.peers {
		if dr, _ := ps.peer.DRBDR(); dr == drID {
			return routing.NextHop{InterfaceID: ps.ifID, RouterID: drID}
		}
	}
	return routing.NextHop{}
}

// nextHopOnStub finds the Peer whose own configured address falls within
// prefix, for one of our own directly attached stub networks.
func (r *Router) nextHopOnStub(as *areaState, prefix *net.IPNet) routing.NextHop {
	for _, ps := range as.peers {
		if ps.address != nil && prefix.Contains(ps.address.IP) {
			return routing.NextHop{InterfaceID: ps.ifID}
		}
	}
	return routing.NextHop{}
}

func idToIP(id ospfid.ID) net.IP {
	return net.IPv4(id[0], id[1], id[2], id[3])
}

// emitRoutes applies one SPF run's Add/Replace/Delete operations to the
// configured RIB client, RFC 2328 §16's final "update routing table" step.
func (r *Router) emitRoutes(ops []routing.Op) {
	for _, op := range ops {
		rt := r.toRIBRoute(op.Route)
		var err error
		switch op.Kind {
		case routing.Add:
			err = r.cfg.RIB.AddRoute(rt)
		case routing.Replace:
			err = r.cfg.RIB.ReplaceRoute(rt)
		case routing.Delete:
			err = r.cfg.RIB.DeleteRoute(op.Route.Prefix)
		}
		if err != nil {
			r.cfg.Logger.WithError(err).Warn("rib operation failed")
		}
	}
}

// toRIBRoute translates a computed routing.Route into the ribclient.Route
// shape the RIB contract expects, resolving each opaque InterfaceID back to
// an interface name via the Router's configured peers.
func (r *Router) toRIBRoute(route *routing.Route) ribclient.Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	var nhs []ribclient.NextHop
	for _, nh := range route.NextHops {
		nhs = append(nhs, ribclient.NextHop{Iface: r.ifNameForLocked(nh.InterfaceID)})
	}

	return ribclient.Route{
		Prefix:   route.Prefix,
		NextHops: nhs,
		Metric:   route.Cost,
		Equal:    len(nhs) > 1,
		Discard:  route.Discard,
	}
}

// ifNameForLocked resolves a routing.NextHop.InterfaceID back to the
// configured interface name it was assigned from. Callers must hold r.mu.
func (r *Router) ifNameForLocked(id uint32) string {
	for _, as := range r.areas {
		for ifName, ps := range as.peers {
			if ps.ifID == id {
				return ifName
			}
		}
	}
	return ""
}
