package peer

import (
	"testing"
	"time"

	"github.com/mdlayher/ospfd/neighbor"
	"github.com/mdlayher/ospfd/ospfid"
)

func testConfig(lt LinkType) Config {
	return Config{
		IfName:             "eth0",
		LinkType:           lt,
		Priority:           1,
		HelloInterval:      10 * time.Second,
		RouterDeadInterval: 40 * time.Second,
		RxmtInterval:       5 * time.Second,
		InfTransDelay:      time.Second,
		Cost:               10,
	}
}

func TestPeerInterfaceUpBroadcast(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))

	if st := p.Handle(InterfaceUp); st != Waiting {
		t.Fatalf("state = %s, want Waiting", st)
	}
}

func TestPeerInterfaceUpPointToPoint(t *testing.T) {
	p := New(id(1), testConfig(PointToPoint))

	if st := p.Handle(InterfaceUp); st != PointToPointState {
		t.Fatalf("state = %s, want PointToPointState", st)
	}

	// Point-to-point links never run DR/BDR election; NeighborChange and
	// WaitTimer are no-ops.
	if st := p.Handle(NeighborChange); st != PointToPointState {
		t.Fatalf("state after NeighborChange = %s, want unchanged PointToPointState", st)
	}
}

func TestPeerInterfaceDownResetsElection(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	p.Handle(InterfaceUp)
	p.Handle(WaitTimer)

	if st := p.Handle(InterfaceDown); st != Down {
		t.Fatalf("state = %s, want Down", st)
	}
	if dr, bdr := p.DRBDR(); dr != (ospfid.ID{}) || bdr != (ospfid.ID{}) {
		t.Fatalf("dr/bdr = %s/%s, want both zero after InterfaceDown", dr, bdr)
	}
}

func TestPeerLoopbackAndUnloop(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	p.Handle(InterfaceUp)

	if st := p.Handle(LoopInd); st != Loopback {
		t.Fatalf("state = %s, want Loopback", st)
	}
	if st := p.Handle(UnloopInd); st != Down {
		t.Fatalf("state = %s, want Down", st)
	}
}

func TestPeerWaitTimerElectsDR(t *testing.T) {
	p := New(id(9), testConfig(Broadcast))
	p.Config.Priority = 10
	p.Handle(InterfaceUp)

	other := p.Neighbor(id(2), "192.0.2.2")
	other.Handle(neighbor.Start)
	other.Handle(neighbor.HelloReceived)
	other.ReceiveHello(neighbor.HelloInfo{Priority: 1}, true)
	other.Handle(neighbor.TwoWayReceived)

	st := p.Handle(WaitTimer)
	if st != DR {
		t.Fatalf("state = %s, want DR", st)
	}
	dr, bdr := p.DRBDR()
	if dr != id(9) {
		t.Fatalf("dr = %s, want self", dr)
	}
	if bdr != id(2) {
		t.Fatalf("bdr = %s, want %s", bdr, id(2))
	}
}

func TestPeerNeighborChangeTriggersReelection(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	p.Handle(InterfaceUp)
	p.Handle(WaitTimer) // converge once with no neighbors: self becomes DR

	if st := p.State(); st != DR {
		t.Fatalf("state after initial election = %s, want DR", st)
	}

	// A higher-priority neighbor reaching TwoWay should not retroactively
	// unseat self (RFC 2328 §9.4 does not preempt an acting DR), but the
	// NeighborChange event must still re-run the election without error
	// while in a non-Waiting, non-Down state.
	n := p.Neighbor(id(2), "192.0.2.2")
	n.Handle(neighbor.Start)
	n.ReceiveHello(neighbor.HelloInfo{Priority: 200}, true)

	st := p.Handle(NeighborChange)
	if st != DR {
		t.Fatalf("state after NeighborChange = %s, want DR (sticky)", st)
	}
}

func TestPeerNeighborChangeIgnoredWhileDownOrWaiting(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))

	// Down: NeighborChange has no effect.
	if st := p.Handle(NeighborChange); st != Down {
		t.Fatalf("state = %s, want Down", st)
	}

	p.Handle(InterfaceUp)
	if st := p.State(); st != Waiting {
		t.Fatalf("state = %s, want Waiting", st)
	}

	// Waiting: per RFC 2328 §9.3, NeighborChange does not cut the wait
	// short; only BackupSeen or WaitTimer does.
	if st := p.Handle(NeighborChange); st != Waiting {
		t.Fatalf("state after NeighborChange while Waiting = %s, want unchanged Waiting", st)
	}
}

func TestPeerBackupSeenEndsWaiting(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	p.Handle(InterfaceUp)

	if st := p.Handle(BackupSeen); st != DR {
		t.Fatalf("state = %s, want DR (sole eligible router)", st)
	}
}

func TestPeerHelloNeighborIDsIncludesAtLeastInit(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	n := p.Neighbor(id(2), "192.0.2.2")
	n.Handle(neighbor.Start)
	n.Handle(neighbor.HelloReceived) // -> Init

	ids := p.HelloNeighborIDs()
	if len(ids) != 1 || ids[0] != id(2) {
		t.Fatalf("HelloNeighborIDs = %v, want [%s]", ids, id(2))
	}
}

func TestPeerRemoveNeighbor(t *testing.T) {
	p := New(id(1), testConfig(Broadcast))
	p.Neighbor(id(2), "192.0.2.2")

	if len(p.Neighbors()) != 1 {
		t.Fatalf("Neighbors() len = %d, want 1", len(p.Neighbors()))
	}

	p.RemoveNeighbor(id(2))
	if len(p.Neighbors()) != 0 {
		t.Fatalf("Neighbors() len = %d, want 0 after removal", len(p.Neighbors()))
	}
}
