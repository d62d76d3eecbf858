package peer

import (
	"sync"
	"time"

	"github.com/mdlayher/ospfd/neighbor"
	"github.com/mdlayher/ospfd/ospfid"
)

// Config holds the per-interface parameters a Peer is configured with, RFC
// 2328 §C.3.
type Config struct {
	IfName, VifName    string
	LinkType           LinkType
	Priority           uint8
	HelloInterval      time.Duration
	RouterDeadInterval time.Duration
	RxmtInterval       time.Duration
	InfTransDelay      time.Duration
	Cost               uint16
	Passive            bool
}

// A Peer is one configured OSPF interface attachment: the interface state
// machine plus the set of Neighbors discovered on it.
type Peer struct {
	ID     ospfid.ID // locally assigned PeerID-equivalent identity, e.g. a small integer encoded as an ID
	Config Config

	mu        sync.Mutex
	state     State
	dr, bdr   ospfid.ID
	neighbors map[ospfid.ID]*neighbor.Neighbor

	waitTimer *time.Timer
}

// New returns a Peer in state Down for the given configuration.
func New(id ospfid.ID, cfg Config) *Peer {
	return &Peer{
		ID:        id,
		Config:    cfg,
		state:     Down,
		neighbors: make(map[ospfid.ID]*neighbor.Neighbor),
	}
}

// State returns the interface's current FSM state.
func (p *Peer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// DRBDR returns the currently elected Designated Router and Backup
// Designated Router IDs.
func (p *Peer) DRBDR() (dr, bdr ospfid.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dr, p.bdr
}

// Neighbor returns the Neighbor for id, creating it in state Down if it
// does not already exist. NBMA and virtual-link configuration create
// Neighbors administratively; broadcast/point-to-point links create them on
// first Hello.
func (p *Peer) Neighbor(id ospfid.ID, address string) *neighbor.Neighbor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.neighbors[id]; ok {
		return n
	}

	n := neighbor.New(id, address, p.Config.RouterDeadInterval, func() {
		p.Handle(NeighborChange)
	})
	n.SetAdjacencyNeeded(!p.Config.LinkType.electsDRBDR())
	p.neighbors[id] = n
	return n
}

// Neighbors returns a snapshot of all discovered Neighbors on this Peer.
func (p *Peer) Neighbors() []*neighbor.Neighbor {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*neighbor.Neighbor, 0, len(p.neighbors))
	for _, n := range p.neighbors {
		out = append(out, n)
	}
	return out
}

// RemoveNeighbor deletes id, e.g. after KillNbr/interface-down cleanup.
func (p *Peer) RemoveNeighbor(id ospfid.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.neighbors[id]; ok {
		n.StopInactivity()
		delete(p.neighbors, id)
	}
}

// Handle applies event to the interface FSM, running DR/BDR election when
// appropriate (NeighborChange and WaitTimer on broadcast/NBMA links) and
// managing the Waiting-state timer.
func (p *Peer) Handle(event Event) State {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event {
	case InterfaceDown:
		p.stopWaitTimerLocked()
		p.state = Down
		p.dr, p.bdr = ospfid.ID{}, ospfid.ID{}
		return p.state

	case LoopInd:
		p.stopWaitTimerLocked()
		p.state = Loopback
		return p.state

	case UnloopInd:
		if p.state == Loopback {
			p.state = Down
		}
		return p.state

	case InterfaceUp:
		if !p.Config.LinkType.electsDRBDR() {
			p.state = PointToPointState
			return p.state
		}
		p.state = Waiting
		return p.state
	}

	if !p.Config.LinkType.electsDRBDR() {
		return p.state
	}

	switch event {
	case BackupSeen, WaitTimer:
		p.stopWaitTimerLocked()
		p.runElectionLocked()
	case NeighborChange:
		if p.state != Down && p.state != Waiting {
			p.runElectionLocked()
		}
	}

	return p.state
}

// runElectionLocked re-runs DR/BDR election over the current neighbor set.
// Callers must hold p.mu.
func (p *Peer) runElectionLocked() {
	self := Candidate{ID: p.ID, Priority: p.Config.Priority, Eligible: true}
	if p.state == DR {
		self.DeclaredDR = p.ID
	}
	if p.state == Backup {
		self.DeclaredBDR = p.ID
	}

	var cands []Candidate
	for _, n := range p.neighbors {
		cands = append(cands, CandidateFrom(n))
	}

	dr, bdr, newState := ElectDRBDR(self, cands)
	p.dr, p.bdr, p.state = dr, bdr, newState

	for _, n := range p.neighbors {
		adj := p.ID == dr || p.ID == bdr || n.DeclaredDR() == n.ID || n.DeclaredBDR() == n.ID
		n.SetAdjacencyNeeded(adj)
		n.Handle(neighbor.AdjOK)
	}
}

// ArmWaitTimer starts the single-shot Wait timer used when a broadcast/NBMA
// interface first comes up, firing WaitTimer after the configured
// RouterDeadInterval.
func (p *Peer) ArmWaitTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopWaitTimerLocked()
	p.waitTimer = time.AfterFunc(p.Config.RouterDeadInterval, func() {
		p.Handle(WaitTimer)
	})
}

func (p *Peer) stopWaitTimerLocked() {
	if p.waitTimer != nil {
		p.waitTimer.Stop()
		p.waitTimer = nil
	}
}

// HelloNeighborIDs returns the Router-IDs to list in an outgoing Hello: all
// neighbors currently in state >= Init.
func (p *Peer) HelloNeighborIDs() []ospfid.ID {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []ospfid.ID
	for id, n := range p.neighbors {
		if n.State() >= neighbor.Init {
			ids = append(ids, id)
		}
	}
	return ids
}
