package neighbor

import (
	"testing"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
)

func TestFullAdjacencyProgression(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", time.Minute, nil)
	n.SetAdjacencyNeeded(true)

	steps := []struct {
		event Event
		want  State
	}{
		{HelloReceived, Init},
		{TwoWayReceived, ExStart},
		{NegotiationDone, Exchange},
	}
	for _, s := range steps {
		if got := n.Handle(s.event); got != s.want {
			t.Fatalf("Handle(%s) = %s, want %s", s.event, got, s.want)
		}
	}

	n.SetRequest([]ospfid.Key{{Type: 1}})
	if got := n.Handle(ExchangeDone); got != Loading {
		t.Fatalf("Handle(ExchangeDone) with pending requests = %s, want Loading", got)
	}

	n.RemoveRequest(ospfid.Key{Type: 1})
	if got := n.Handle(LoadingDone); got != Full {
		t.Fatalf("Handle(LoadingDone) = %s, want Full", got)
	}
}

func TestExchangeDoneSkipsLoadingWhenRequestListEmpty(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", time.Minute, nil)
	n.SetAdjacencyNeeded(true)
	n.Handle(HelloReceived)
	n.Handle(TwoWayReceived)
	n.Handle(NegotiationDone)

	if got := n.Handle(ExchangeDone); got != Full {
		t.Fatalf("Handle(ExchangeDone) with empty request list = %s, want Full", got)
	}
}

func TestNonAdjacentTwoWayStaysTwoWay(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 3}, "192.0.2.3", time.Minute, nil)
	n.SetAdjacencyNeeded(false)
	n.Handle(HelloReceived)
	if got := n.Handle(TwoWayReceived); got != TwoWay {
		t.Fatalf("Handle(TwoWayReceived) without adjacency = %s, want TwoWay", got)
	}
}

func TestKillNbrResetsFromAnyState(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", time.Minute, nil)
	n.SetAdjacencyNeeded(true)
	n.Handle(HelloReceived)
	n.Handle(TwoWayReceived)
	n.Handle(NegotiationDone)
	n.AddRetransmit(ospfid.Key{Type: 1}, []byte{1, 2, 3})
	n.SetRequest([]ospfid.Key{{Type: 2}})

	if got := n.Handle(KillNbr); got != Down {
		t.Fatalf("Handle(KillNbr) = %s, want Down", got)
	}
	if len(n.Retransmissions()) != 0 {
		t.Fatal("KillNbr did not clear the retransmission list")
	}
	if len(n.Requests()) != 0 {
		t.Fatal("KillNbr did not clear the request list")
	}
}

func TestSeqNumberMismatchRestartsExStart(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", time.Minute, nil)
	n.SetAdjacencyNeeded(true)
	n.Handle(HelloReceived)
	n.Handle(TwoWayReceived)
	n.Handle(NegotiationDone)
	n.Handle(ExchangeDone)

	before := n.DDSequence()
	if got := n.Handle(SeqNumberMismatch); got != ExStart {
		t.Fatalf("Handle(SeqNumberMismatch) = %s, want ExStart", got)
	}
	if n.DDSequence() != before+1 {
		t.Fatalf("DDSequence after mismatch = %d, want %d", n.DDSequence(), before+1)
	}
}

func TestInactivityTimerFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", 10*time.Millisecond, func() {
		fired <- struct{}{}
	})
	n.ReceiveHello(HelloInfo{}, false)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("inactivity callback did not fire")
	}
	if got := n.State(); got != Down {
		t.Fatalf("state after inactivity = %s, want Down", got)
	}
}

func TestRetransmissionListRoundTrip(t *testing.T) {
	n := New(ospfid.ID{192, 0, 2, 2}, "192.0.2.2", time.Minute, nil)
	k := ospfid.Key{Type: 1}
	n.AddRetransmit(k, []byte{0xaa})

	list := n.Retransmissions()
	if len(list) != 1 {
		t.Fatalf("Retransmissions() = %v, want 1 entry", list)
	}

	if ok := n.RemoveRetransmit(k); !ok {
		t.Fatal("RemoveRetransmit reported key not present")
	}
	if ok := n.RemoveRetransmit(k); ok {
		t.Fatal("RemoveRetransmit reported present on second removal")
	}
}
