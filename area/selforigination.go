package area

import "github.com/mdlayher/ospfd/ospfid"

// A LinkKind is the class of Router-LSA link RFC 2328 §12.4.1 (and RFC 5340
// §A.4.3's equivalent per-neighbor/per-link classification for OSPFv3)
// assigns to one local interface. The exact encoded fields differ between
// OSPFv2 and OSPFv3 Router-LSA links, so area only decides the
// classification; ospf2/ospf3-specific callers fill in link-id/link-data or
// neighbor-interface-id from their own PeerInfo.
type LinkKind int

// Possible LinkKind values.
const (
	// NoLink means this interface contributes nothing to the Router-LSA
	// this tick (e.g. a point-to-point interface whose neighbor is not yet
	// Full).
	NoLink LinkKind = iota
	// PointToPoint is a link to a single neighbor in state Full over a
	// point-to-point interface.
	PointToPoint
	// Transit is a link to a broadcast/NBMA network's Designated Router,
	// advertised once this router has at least one Full adjacency on that
	// network.
	Transit
	// StubNetwork is a link to the interface's own subnet: used for
	// passive interfaces, and for broadcast/NBMA interfaces that have not
	// yet formed any Full adjacency (RFC 2328 §12.4.1.4).
	StubNetwork
	// Virtual is a link to the far end of a configured virtual link once
	// that link's single neighbor reaches Full.
	Virtual
)

// String implements fmt.Stringer.
func (k LinkKind) String() string {
	switch k {
	case NoLink:
		return "NoLink"
	case PointToPoint:
		return "PointToPoint"
	case Transit:
		return "Transit"
	case StubNetwork:
		return "StubNetwork"
	case Virtual:
		return "Virtual"
	default:
		return "LinkKind(?)"
	}
}

// InterfaceState is the subset of a Peer's and its Neighbors' state that
// link-kind classification depends on, expressed generically so area need
// not import peer or neighbor.
type InterfaceState struct {
	// Passive interfaces never run Hello and are always advertised as a
	// stub network for their configured subnet.
	Passive bool

	// Broadcast/NBMA vs. point-to-point/virtual, mirroring peer.LinkType's
	// electsDRBDR split: true for broadcast and NBMA.
	MultiAccess bool

	// HasFullNeighbor reports whether at least one neighbor on this
	// interface has reached Full.
	HasFullNeighbor bool

	// SoleNeighborFull reports whether, on a point-to-point or virtual
	// link (exactly one possible neighbor), that neighbor is Full.
	SoleNeighborFull bool

	// IsVirtualLink marks a virtual-link-bearing interface rather than a
	// genuine point-to-point circuit, selecting LinkKind Virtual instead
	// of PointToPoint.
	IsVirtualLink bool

	NeighborID ospfid.ID
}

// ClassifyLink returns the Router-LSA link kind this interface contributes,
// RFC 2328 §12.4.1. It never touches an Area's database; it is a pure
// function of interface state so it can be driven directly from peer/
// neighbor snapshots without holding any lock.
func ClassifyLink(s InterfaceState) LinkKind {
	if s.Passive {
		return StubNetwork
	}

	if !s.MultiAccess {
		if !s.SoleNeighborFull {
			return NoLink
		}
		if s.IsVirtualLink {
			return Virtual
		}
		return PointToPoint
	}

	if s.HasFullNeighbor {
		return Transit
	}
	return StubNetwork
}
