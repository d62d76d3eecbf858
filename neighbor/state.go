package neighbor

import "fmt"

// A State is one of the eight OSPF neighbor adjacency states, RFC 2328 §10.1.
type State int

// Possible State values, in RFC 2328's natural progression order.
const (
	Down State = iota
	Attempt
	Init
	TwoWay
	ExStart
	Exchange
	Loading
	Full
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Down:
		return "Down"
	case Attempt:
		return "Attempt"
	case Init:
		return "Init"
	case TwoWay:
		return "TwoWay"
	case ExStart:
		return "ExStart"
	case Exchange:
		return "Exchange"
	case Loading:
		return "Loading"
	case Full:
		return "Full"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// atLeast reports whether s is at least as advanced as other in the FSM's
// natural ordering, used for rules like "any state >= ExStart".
func (s State) atLeast(other State) bool { return s >= other }

// An Event drives a Neighbor's state transition, RFC 2328 §10.1's event list.
type Event int

// Possible Event values.
const (
	HelloReceived Event = iota
	Start
	TwoWayReceived
	NegotiationDone
	ExchangeDone
	LoadingDone
	AdjOK
	SeqNumberMismatch
	BadLSReq
	KillNbr
	InactivityTimer
	OneWayReceived
	LLDown
)

// String implements fmt.Stringer.
func (e Event) String() string {
	switch e {
	case HelloReceived:
		return "HelloReceived"
	case Start:
		return "Start"
	case TwoWayReceived:
		return "TwoWayReceived"
	case NegotiationDone:
		return "NegotiationDone"
	case ExchangeDone:
		return "ExchangeDone"
	case LoadingDone:
		return "LoadingDone"
	case AdjOK:
		return "AdjOK"
	case SeqNumberMismatch:
		return "SeqNumberMismatch"
	case BadLSReq:
		return "BadLSReq"
	case KillNbr:
		return "KillNbr"
	case InactivityTimer:
		return "InactivityTimer"
	case OneWayReceived:
		return "OneWayReceived"
	case LLDown:
		return "LLDown"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}
