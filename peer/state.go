package peer

import "fmt"

// A LinkType is the kind of medium a Peer runs over, RFC 2328 §1.2.
type LinkType int

// Possible LinkType values.
const (
	Broadcast LinkType = iota
	NBMA
	PointToPoint
	PointToMultipoint
	VirtualLink
)

// String implements fmt.Stringer.
func (l LinkType) String() string {
	switch l {
	case Broadcast:
		return "Broadcast"
	case NBMA:
		return "NBMA"
	case PointToPoint:
		return "PointToPoint"
	case PointToMultipoint:
		return "PointToMultipoint"
	case VirtualLink:
		return "VirtualLink"
	default:
		return fmt.Sprintf("LinkType(%d)", int(l))
	}
}

// electsDRBDR reports whether DR/BDR election runs over this link type.
// Point-to-point, point-to-multipoint, and virtual links have no concept of
// a Designated Router, RFC 2328 §9.
func (l LinkType) electsDRBDR() bool {
	return l == Broadcast || l == NBMA
}

// A State is one of the seven OSPF interface states, RFC 2328 §9.1.
type State int

// Possible State values.
const (
	Down State = iota
	Loopback
	Waiting
	PointToPointState
	DROther
	Backup
	DR
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Down:
		return "Down"
	case Loopback:
		return "Loopback"
	case Waiting:
		return "Waiting"
	case PointToPointState:
		return "Point-to-Point"
	case DROther:
		return "DROther"
	case Backup:
		return "Backup"
	case DR:
		return "DR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// An Event drives a Peer's interface state transition, RFC 2328 §9.1's
// event list.
type Event int

// Possible Event values.
const (
	InterfaceUp Event = iota
	InterfaceDown
	BackupSeen
	WaitTimer
	NeighborChange
	LoopInd
	UnloopInd
)

// String implements fmt.Stringer.
func (e Event) String() string {
	switch e {
	case InterfaceUp:
		return "InterfaceUp"
	case InterfaceDown:
		return "InterfaceDown"
	case BackupSeen:
		return "BackupSeen"
	case WaitTimer:
		return "WaitTimer"
	case NeighborChange:
		return "NeighborChange"
	case LoopInd:
		return "LoopInd"
	case UnloopInd:
		return "UnloopInd"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}
