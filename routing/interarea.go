package routing

import (
	"net"

	"github.com/mdlayher/ospfd/ospfid"
)

// A Summary is one Summary-Network-LSA (OSPFv2) or Inter-Area-Prefix-LSA
// (OSPFv3) considered for inter-area route computation, RFC 2328 §16.2.
type Summary struct {
	Prefix    *net.IPNet
	Metric    uint32
	ABR       ospfid.ID
	Tag       uint32
	Backbone  bool // true when this Summary was received within the backbone area.
}

// InterAreaRoutes combines each Summary's advertised metric with the
// intra-area route already computed to its advertising ABR. abrRoutes is
// the set of intra-area routes this router has to every ABR vertex,
// typically IntraAreaRoutes' output restricted to router destinations.
// It applies no backbone or RFC 1583 eligibility check of its own
// (Summary.Backbone is not consulted): every Summary whose ABR has an entry
// in abrRoutes yields a route, and one whose ABR is absent is skipped.
func InterAreaRoutes(summaries []Summary, abrRoutes map[string]*Route, ecmpMax int) []*Route {
	var routes []*Route
	for _, s := range summaries {
		abr, ok := abrRoutes[s.ABR.String()]
		if !ok {
			continue
		}

		routes = append(routes, &Route{
			Prefix:   s.Prefix,
			Type:     InterArea,
			Cost:     uint32(costOf(abr)) + s.Metric,
			NextHops: dedupedNextHops(abr.NextHops, ecmpMax),
			Tag:      s.Tag,
		})
	}
	return routes
}

func costOf(r *Route) uint32 {
	return r.Cost
}

// PreferIntraOverInter implements RFC 2328 §16.2's preference rule: an
// intra-area route to a destination is always chosen over an inter-area
// route to the same destination regardless of cost, unless rfc1583Compat
// relaxes this to plain lowest-cost-wins (the pre-RFC-2328 behavior RFC
// 1583 §G.8 describes and RFC 2328 retained as a compatibility toggle).
func PreferIntraOverInter(intra, inter *Route, rfc1583Compat bool) *Route {
	if intra == nil {
		return inter
	}
	if inter == nil {
		return intra
	}
	if !rfc1583Compat {
		return intra
	}
	if inter.Cost < intra.Cost {
		return inter
	}
	return intra
}
