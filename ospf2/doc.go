// Package ospf2 implements the OSPFv2 (RFC 2328) wire format: the standard
// packet header with its authentication trailer, the five packet types, and
// the OSPFv2 LSA bodies (Router, Network, Summary, AS-External).
//
// The codec mirrors the sibling ospf3 package's shape (Header, Message,
// LSAHeader, LSABody) so that callers above the wire layer — the neighbor
// FSM, flooding, and routing packages — can share most of their logic
// across both protocol versions, differing only in how each version's
// codec is invoked.
package ospf2
