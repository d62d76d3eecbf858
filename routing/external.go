package routing

import (
	"net"

	"github.com/mdlayher/ospfd/ospfid"
)

// An External is one AS-External-LSA (or OSPFv3 equivalent) considered for
// external route computation, RFC 2328 §16.4.
type External struct {
	Prefix     *net.IPNet
	Metric     uint32
	Type2      bool // false = Type-1 (metric comparable to intra-area cost), true = Type-2.
	ASBR       ospfid.ID
	Tag        uint32
	ForwardNet *net.IPNet // non-nil when the LSA carries a non-zero forwarding address.
}

// ExternalRoutes combines each External's advertised metric with the route
// already computed to its originating ASBR, RFC 2328 §16.4/16.6. asbrRoutes
// is the full (intra- plus inter-area) route set to every ASBR vertex,
// keyed the same way as InterAreaRoutes' abrRoutes.
//
// Type-1 externals add the external metric to the cost to the ASBR, so they
// compare directly against intra-/inter-area costs. Type-2 externals use
// only the external metric for preference, and only fall back to cost-to-
// ASBR to break a tie between two Type-2 candidates for the same
// destination. NewRouteSet's better() compares PathType, then Cost, then
// (for Type-2 only) the cost to the ASBR, which ExternalRoutes records
// alongside the bare external metric it stores as a Type-2 route's Cost.
func ExternalRoutes(externals []External, asbrRoutes map[string]*Route, ecmpMax int) []*Route {
	var routes []*Route
	for _, e := range externals {
		asbr, ok := asbrRoutes[e.ASBR.String()]
		if !ok {
			continue
		}

		r := &Route{
			Prefix:   e.Prefix,
			Tag:      e.Tag,
			asbrCost: asbr.Cost,
		}
		if e.Type2 {
			r.Type = External2
			r.Cost = e.Metric
		} else {
			r.Type = External1
			r.Cost = asbr.Cost + e.Metric
		}
		r.NextHops = dedupedNextHops(asbr.NextHops, ecmpMax)

		routes = append(routes, r)
	}
	return routes
}
