// Package ospfd wires the codec-agnostic core (area, peer, neighbor, lsdb,
// routing) together with a concrete OSPFv2 transport into one running
// router: the top-level glue the XORP original_source/ospf.cc peering
// manager is the typed equivalent of.
//
// Router owns a single event loop, RFC 2328 §5's "single-threaded
// cooperative" scheduling model: per-peer goroutines only deserialize
// inbound reads onto one channel, and every protocol state mutation happens
// on the loop goroutine that drains it.
package ospfd
