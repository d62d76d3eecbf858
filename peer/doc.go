// Package peer implements the OSPF interface state machine (RFC 2328 §9.1,
// RFC 5340 §4.2.4) and Designated Router / Backup Designated Router
// election (RFC 2328 §9.4). A Peer owns the set of Neighbor state machines
// discovered on one configured OSPF interface attachment.
package peer
