package area

import (
	"testing"
	"time"

	"github.com/mdlayher/ospfd/lsdb"
	"github.com/mdlayher/ospfd/ospfid"
)

func key(n byte) ospfid.Key {
	return ospfid.Key{Type: 1, LinkStateID: ospfid.ID{10, 0, 0, n}, AdvertisingRouter: ospfid.ID{1, 1, 1, 1}}
}

func TestAreaAcceptInstallsUnknown(t *testing.T) {
	a := New(Config{ID: ospfid.ID{0, 0, 0, 0}, Type: Normal})

	d, existing := a.Accept(key(1), true, true, 1, 0, 0)
	if d != Install {
		t.Fatalf("Decision = %v, want Install", d)
	}
	if existing != nil {
		t.Fatalf("existing = %+v, want nil", existing)
	}
}

func TestAreaAcceptRejectsBadChecksum(t *testing.T) {
	a := New(Config{Type: Normal})

	if d, _ := a.Accept(key(1), false, true, 1, 0, 0); d != Reject {
		t.Fatalf("Decision = %v, want Reject", d)
	}
}

func TestAreaTypeAllowedRejectsASExternalInStub(t *testing.T) {
	a := New(Config{Type: Stub})

	if !a.typeAllowed(1, 5) {
		t.Fatal("Router-LSA (type 1) should be allowed in a stub area")
	}
	if a.typeAllowed(5, 5) {
		t.Fatal("AS-External-LSA (type 5) should not be allowed in a stub area")
	}
}

func TestAreaAcceptImplicitAck(t *testing.T) {
	a := New(Config{Type: Normal})

	e := &lsdb.Entry{Key: key(1), SequenceNumber: 5, Checksum: 100, Raw: []byte{1, 2, 3}}
	a.Install(e, 0)

	d, existing := a.Accept(key(1), true, true, 5, 100, 0)
	if d != ImplicitAck {
		t.Fatalf("Decision = %v, want ImplicitAck", d)
	}
	if existing == nil {
		t.Fatal("existing = nil, want the installed entry")
	}
}

func TestAreaAcceptSendBackOlder(t *testing.T) {
	a := New(Config{Type: Normal})

	a.Install(&lsdb.Entry{Key: key(1), SequenceNumber: 10, Checksum: 100, Raw: []byte{1}}, 0)

	d, _ := a.Accept(key(1), true, true, 5, 100, 0)
	if d != SendBack {
		t.Fatalf("Decision = %v, want SendBack", d)
	}
}

func TestAreaAcceptNewerInstallAfterMinLSArrival(t *testing.T) {
	a := New(Config{Type: Normal})
	start := time.Now()
	a.now = func() time.Time { return start }

	a.Install(&lsdb.Entry{Key: key(1), SequenceNumber: 5, Checksum: 100, Raw: []byte{1}}, 0)

	// Immediately superseding is rate-limited.
	if d, _ := a.Accept(key(1), true, true, 6, 100, 0); d != Reject {
		t.Fatalf("Decision = %v, want Reject (MinLSArrival)", d)
	}

	a.now = func() time.Time { return start.Add(2 * time.Second) }

	if d, _ := a.Accept(key(1), true, true, 6, 100, 0); d != Install {
		t.Fatalf("Decision = %v, want Install after MinLSArrival elapses", d)
	}
}

func TestClassifyLinkPassiveIsStub(t *testing.T) {
	if k := ClassifyLink(InterfaceState{Passive: true}); k != StubNetwork {
		t.Fatalf("ClassifyLink = %v, want StubNetwork", k)
	}
}

func TestClassifyLinkPointToPointRequiresFull(t *testing.T) {
	s := InterfaceState{MultiAccess: false, SoleNeighborFull: false}
	if k := ClassifyLink(s); k != NoLink {
		t.Fatalf("ClassifyLink = %v, want NoLink before Full", k)
	}

	s.SoleNeighborFull = true
	if k := ClassifyLink(s); k != PointToPoint {
		t.Fatalf("ClassifyLink = %v, want PointToPoint once Full", k)
	}
}

func TestClassifyLinkVirtualLink(t *testing.T) {
	s := InterfaceState{MultiAccess: false, SoleNeighborFull: true, IsVirtualLink: true}
	if k := ClassifyLink(s); k != Virtual {
		t.Fatalf("ClassifyLink = %v, want Virtual", k)
	}
}

func TestClassifyLinkBroadcastTransitVsStub(t *testing.T) {
	s := InterfaceState{MultiAccess: true, HasFullNeighbor: false}
	if k := ClassifyLink(s); k != StubNetwork {
		t.Fatalf("ClassifyLink = %v, want StubNetwork before any Full adjacency", k)
	}

	s.HasFullNeighbor = true
	if k := ClassifyLink(s); k != Transit {
		t.Fatalf("ClassifyLink = %v, want Transit once a neighbor is Full", k)
	}
}
