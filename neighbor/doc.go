// Package neighbor implements the OSPF neighbor adjacency state machine
// (RFC 2328 §10, RFC 5340 §4.4.3): the eight-state FSM, Database Description
// sequencing, and the three per-neighbor LSA bookkeeping lists
// (retransmission, database summary, and link-state request).
//
// A Neighbor is deliberately codec-agnostic: it tracks ospfid.Key values and
// raw encoded LSA bytes handed to it by the peer/flooding layer, so the same
// state machine drives both OSPFv2 and OSPFv3 adjacencies.
package neighbor
