// Package area implements RFC 2328 §13's accept-or-reject flooding
// procedure and §12.4.3's address-range aggregation, plus the decision
// logic for which kind of Router-LSA link to emit for each attached
// interface. Like lsdb, neighbor, and peer, it operates on ospfid.Key and
// raw LSA bytes; actual LSA encoding stays in ospf2/ospf3.
package area
