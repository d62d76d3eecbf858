package ospfd

import (
	"net"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
)

// originateSummaries re-evaluates RFC 2328 §12.4.3 area-range aggregation:
// every non-backbone area's current intra-area routes are aggregated
// against that area's configured Ranges, and the resulting per-range
// Summary-Network-LSA is originated into the backbone, or withdrawn once no
// component (or a suppressed Range) still backs it. This router only
// summarizes when it is attached to the backbone, the precondition for
// being an Area Border Router.
func (r *Router) originateSummaries() {
	r.mu.Lock()
	backbone, haveBackbone := r.areas[ospfid.ID{}]
	var others []*areaState
	for id, as := range r.areas {
		if !id.Zero() {
			others = append(others, as)
		}
	}
	r.mu.Unlock()

	if !haveBackbone {
		return
	}

	keep := make(map[ospfid.Key]bool)
	for _, as := range others {
		r.summarizeArea(backbone, as, keep)
	}
	r.flushStaleSummaries(backbone, keep)
}

// summarizeArea recomputes as's intra-area routes and aggregates them
// against its configured Ranges, originating the resulting
// Summary-Network-LSAs into backbone and recording each originated key in
// keep so flushStaleSummaries can tell a live summary from one that no
// longer has a backing range or component.
func (r *Router) summarizeArea(backbone, as *areaState, keep map[ospfid.Key]bool) {
	ranges := as.area.Ranges()
	if len(ranges) == 0 {
		return
	}

	routes := r.computeArea(as)
	components := make([]area.Component, 0, len(routes))
	for _, rt := range routes {
		cost := rt.Cost
		if cost > 0xffff {
			cost = 0xffff
		}
		components = append(components, area.Component{Prefix: rt.Prefix, Cost: uint16(cost)})
	}

	for rng, cost := range area.Aggregate(ranges, components) {
		key := ospfid.Key{
			Type:              uint16(ospf2.SummaryNetworkLSA),
			LinkStateID:       networkID(rng.Prefix),
			AdvertisingRouter: r.cfg.RouterID,
		}
		keep[key] = true
		r.installSelfOriginated(backbone, key, &ospf2.Summary{
			Type:        ospf2.SummaryNetworkLSA,
			NetworkMask: net.IP(rng.Prefix.Mask),
			Metric:      uint32(cost),
		})
	}
}

// flushStaleSummaries withdraws every self-originated Summary-Network-LSA
// in backbone not named in keep: its Range was removed, toggled to
// Advertise: false, or lost its last component.
func (r *Router) flushStaleSummaries(backbone *areaState, keep map[ospfid.Key]bool) {
	for _, e := range backbone.area.Database().Iterate() {
		if !e.SelfOriginated || ospf2.LSType(e.Key.Type) != ospf2.SummaryNetworkLSA {
			continue
		}
		if keep[e.Key] {
			continue
		}
		r.floodMaxAge(backbone, e.Key)
	}
}
