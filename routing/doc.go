// Package routing computes the OSPF routing table from a decoded topology:
// intra-area SPF (RFC 2328 §16.1), inter-area route combination (§16.2),
// AS-external route computation (§16.4/16.6), and the equal-cost
// tie-breaking and route-diff logic that sits between a freshly computed
// route set and the RIB.
//
// Like area, routing never touches ospf2 or ospf3 directly: its inputs are
// a generic Graph built by the caller from decoded Router-LSAs/Network-LSAs
// and a list of Stub leaves built from stub links or OSPFv3
// Intra-Area-Prefix-LSAs, so the same Dijkstra and combination logic serves
// both wire formats.
package routing
