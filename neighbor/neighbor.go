package neighbor

import (
	"sync"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
)

// A Neighbor is one OSPF adjacency: the per-neighbor state machine plus the
// three bookkeeping lists described in RFC 2328 §10.3.
type Neighbor struct {
	// ID is the neighbor's Router-ID. Address is its IP address on the
	// shared link (source address of its Hellos).
	ID      ospfid.ID
	Address string

	mu sync.Mutex

	state State

	// AdjacencyNeeded reports whether this neighbor should form a full
	// adjacency: true for point-to-point/virtual links, or when either
	// end is DR or BDR on a broadcast/NBMA network. The peer layer keeps
	// this current as DR/BDR election runs; Neighbor only reads it.
	adjacencyNeeded bool

	master         bool
	ddSequence     uint32
	options        uint32
	priority       uint8
	dr, bdr        ospfid.ID
	lastDDReceived []byte

	retransmit map[ospfid.Key][]byte
	summary    []ospfid.Key
	request    []ospfid.Key

	deadInterval time.Duration
	inactivity   *time.Timer
	onInactivity func()
}

// New returns a Neighbor in state Down, identified by id and address, whose
// inactivity timer (once armed) fires onInactivity after deadInterval of
// silence.
func New(id ospfid.ID, address string, deadInterval time.Duration, onInactivity func()) *Neighbor {
	return &Neighbor{
		ID:           id,
		Address:      address,
		state:        Down,
		deadInterval: deadInterval,
		onInactivity: onInactivity,
		retransmit:   make(map[ospfid.Key][]byte),
	}
}

// State returns the neighbor's current FSM state.
func (n *Neighbor) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// SetAdjacencyNeeded updates whether this neighbor should form a full
// adjacency, as re-evaluated by the peer layer on every DR/BDR election.
// Changing it does not by itself move the FSM; the caller follows up with
// an AdjOK event.
func (n *Neighbor) SetAdjacencyNeeded(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adjacencyNeeded = v
}

// HelloInfo carries the fields of a just-received Hello that the FSM and
// DR/BDR election need recorded against this neighbor, RFC 2328 §10.5.
type HelloInfo struct {
	Priority uint8
	DR, BDR  ospfid.ID
	Options  uint32
}

// ReceiveHello processes a Hello from this neighbor: records its fields,
// (re)arms the inactivity timer, and returns the FSM events to apply:
// HelloReceived, then TwoWayReceived if sawSelf indicates our own Router-ID
// appeared in the Hello's neighbor list, or OneWayReceived if it did not.
func (n *Neighbor) ReceiveHello(info HelloInfo, sawSelf bool) []Event {
	n.mu.Lock()
	n.priority, n.dr, n.bdr, n.options = info.Priority, info.DR, info.BDR, info.Options
	n.mu.Unlock()

	n.armInactivity()

	events := []Event{HelloReceived}
	if sawSelf {
		events = append(events, TwoWayReceived)
	} else {
		events = append(events, OneWayReceived)
	}
	return events
}

// armInactivity (re)starts the RouterDeadInterval timer, firing
// InactivityTimer through Handle if no further Hello arrives in time.
func (n *Neighbor) armInactivity() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.inactivity != nil {
		n.inactivity.Stop()
	}
	n.inactivity = time.AfterFunc(n.deadInterval, func() {
		n.Handle(InactivityTimer)
		if n.onInactivity != nil {
			n.onInactivity()
		}
	})
}

// StopInactivity cancels the inactivity timer, e.g. when the neighbor or
// its interface is being destroyed.
func (n *Neighbor) StopInactivity() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.inactivity != nil {
		n.inactivity.Stop()
	}
}

// Handle applies event to the FSM and returns the resulting state. Events
// that have no effect in the current state leave it unchanged, matching RFC
// 2328 §10.3's "no state change" rule for inapplicable events.
func (n *Neighbor) Handle(event Event) State {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case event == KillNbr || event == LLDown || event == InactivityTimer:
		n.clearListsLocked()
		n.state = Down
		return n.state

	case event == OneWayReceived && n.state.atLeast(TwoWay):
		n.clearListsLocked()
		n.state = Init
		return n.state

	case (event == SeqNumberMismatch || event == BadLSReq) && n.state.atLeast(ExStart):
		n.clearListsLocked()
		n.ddSequence++
		n.state = ExStart
		return n.state
	}

	switch n.state {
	case Down:
		switch event {
		case Start:
			n.state = Attempt
		case HelloReceived:
			n.state = Init
		}
	case Attempt:
		if event == HelloReceived {
			n.state = Init
		}
	case Init:
		if event == TwoWayReceived {
			if n.adjacencyNeeded {
				n.state = ExStart
			} else {
				n.state = TwoWay
			}
		}
	case TwoWay:
		if event == AdjOK && n.adjacencyNeeded {
			n.state = ExStart
		}
	case ExStart:
		switch event {
		case NegotiationDone:
			n.state = Exchange
		case AdjOK:
			if !n.adjacencyNeeded {
				n.state = TwoWay
			}
		}
	case Exchange:
		switch event {
		case ExchangeDone:
			if len(n.request) == 0 {
				n.state = Full
			} else {
				n.state = Loading
			}
		case AdjOK:
			if !n.adjacencyNeeded {
				n.state = TwoWay
			}
		}
	case Loading:
		switch event {
		case LoadingDone:
			n.state = Full
		case AdjOK:
			if !n.adjacencyNeeded {
				n.state = TwoWay
			}
		}
	case Full:
		if event == AdjOK && !n.adjacencyNeeded {
			n.state = TwoWay
		}
	}

	return n.state
}

// clearListsLocked empties the retransmission, summary, and request lists.
// Callers must hold n.mu.
func (n *Neighbor) clearListsLocked() {
	n.retransmit = make(map[ospfid.Key][]byte)
	n.summary = nil
	n.request = nil
}

// BeginExchange resets DD sequencing for a fresh ExStart→Exchange round:
// master selects its own sequence number; a slave adopts the master's.
// higherID reports whether our Router-ID is higher than the neighbor's,
// which RFC 2328 §10.8 uses to choose the master.
func (n *Neighbor) BeginExchange(higherID bool, seq uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.master = higherID
	n.ddSequence = seq
}

// Master reports whether this end is the DD master for the current
// exchange.
func (n *Neighbor) Master() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.master
}

// Priority returns the priority last advertised by this neighbor in a Hello.
func (n *Neighbor) Priority() uint8 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.priority
}

// DeclaredDR returns the Designated Router ID this neighbor last declared
// in a Hello.
func (n *Neighbor) DeclaredDR() ospfid.ID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dr
}

// DeclaredBDR returns the Backup Designated Router ID this neighbor last
// declared in a Hello.
func (n *Neighbor) DeclaredBDR() ospfid.ID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bdr
}

// DDSequence returns the current Database Description sequence number.
func (n *Neighbor) DDSequence() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ddSequence
}

// AdvanceDDSequence sets the DD sequence number to next, called by the
// master after each round, or by the slave when adopting the master's next
// value.
func (n *Neighbor) AdvanceDDSequence(next uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ddSequence = next
}

// SetSummary installs keys as the neighbor's full database summary list,
// the set of LSA headers still to be described in outgoing DD packets.
func (n *Neighbor) SetSummary(keys []ospfid.Key) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summary = append([]ospfid.Key(nil), keys...)
}

// PopSummary removes and returns up to max entries from the front of the
// database summary list, for inclusion in the next outgoing DD packet.
func (n *Neighbor) PopSummary(max int) []ospfid.Key {
	n.mu.Lock()
	defer n.mu.Unlock()

	if max > len(n.summary) {
		max = len(n.summary)
	}
	out := append([]ospfid.Key(nil), n.summary[:max]...)
	n.summary = n.summary[max:]
	return out
}

// SummaryRemaining reports how many entries remain in the database summary
// list, used to set the DD More-bit.
func (n *Neighbor) SummaryRemaining() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.summary)
}

// SetRequest installs keys as the neighbor's link-state request list: the
// LSAs this router must fetch because its DD exchange showed them missing
// or stale locally.
func (n *Neighbor) SetRequest(keys []ospfid.Key) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.request = append([]ospfid.Key(nil), keys...)
}

// Requests returns a copy of the current link-state request list.
func (n *Neighbor) Requests() []ospfid.Key {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ospfid.Key(nil), n.request...)
}

// RemoveRequest deletes key from the link-state request list upon receipt
// of a matching LSA instance, and reports whether the list is now empty
// (the LoadingDone condition).
func (n *Neighbor) RemoveRequest(key ospfid.Key) (empty bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, k := range n.request {
		if k == key {
			n.request = append(n.request[:i], n.request[i+1:]...)
			break
		}
	}
	return len(n.request) == 0
}

// AddRetransmit places raw (a fully encoded LSA) on the link-state
// retransmission list under key, to be resent every RxmtInterval until
// acknowledged.
func (n *Neighbor) AddRetransmit(key ospfid.Key, raw []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.retransmit[key] = append([]byte(nil), raw...)
}

// RemoveRetransmit acknowledges key, removing it from the retransmission
// list. It reports whether the key had been outstanding.
func (n *Neighbor) RemoveRetransmit(key ospfid.Key) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, ok := n.retransmit[key]
	delete(n.retransmit, key)
	return ok
}

// Retransmissions returns a snapshot of the link-state retransmission list,
// for the RxmtInterval resend timer to re-flood.
func (n *Neighbor) Retransmissions() map[ospfid.Key][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make(map[ospfid.Key][]byte, len(n.retransmit))
	for k, v := range n.retransmit {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
