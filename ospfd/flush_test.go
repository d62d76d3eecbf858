package ospfd

import (
	"net"
	"testing"
	"time"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/lsdb"
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
)

func TestFloodMaxAgeSetsAgeAndPreservesChecksum(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	r.originateRouterLSA(as)
	key := keyFor(r.cfg.RouterID)
	before, ok := as.area.Database().Lookup(key)
	if !ok {
		t.Fatal("test setup: Router-LSA not installed")
	}

	r.floodMaxAge(as, key)

	after, ok := as.area.Database().Lookup(key)
	if !ok {
		t.Fatal("entry removed immediately by floodMaxAge, want still present pending ack")
	}
	lsa, err := ospf2.ParseLSA(after.Raw)
	if err != nil {
		t.Fatalf("ParseLSA: %v", err)
	}
	if lsa.Header.Age != ospfid.MaxAge {
		t.Fatalf("Age = %d, want MaxAge (%d)", lsa.Header.Age, ospfid.MaxAge)
	}
	if lsa.Header.Checksum != before.Checksum {
		t.Fatalf("Checksum = %d, want unchanged %d (Age excluded from checksum range)", lsa.Header.Checksum, before.Checksum)
	}
	if _, pending := as.flushing[key]; !pending {
		t.Fatal("key not recorded in as.flushing after floodMaxAge")
	}
}

func TestReapFlushedWaitsForOutstandingRetransmission(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	ps, _ := newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))
	n := ps.peer.Neighbor(id(9), "10.0.0.9")

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	r.originateRouterLSA(as)
	key := keyFor(r.cfg.RouterID)
	entry, _ := as.area.Database().Lookup(key)
	n.AddRetransmit(key, entry.Raw)

	r.floodMaxAge(as, key)
	r.reapFlushed(as)

	if _, ok := as.area.Database().Lookup(key); !ok {
		t.Fatal("entry removed while still outstanding on a neighbor's retransmission list")
	}
	if _, pending := as.flushing[key]; !pending {
		t.Fatal("key dropped from as.flushing while still outstanding")
	}

	n.RemoveRetransmit(key)
	r.reapFlushed(as)

	if _, ok := as.area.Database().Lookup(key); ok {
		t.Fatal("entry not removed once no neighbor still held it outstanding")
	}
	if _, pending := as.flushing[key]; pending {
		t.Fatal("key not cleared from as.flushing after removal")
	}
}

func TestOutstandingAnywhereNoNeighbors(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	if r.outstandingAnywhere(as, ospfid.Key{Type: uint16(ospf2.RouterLSA)}) {
		t.Fatal("outstandingAnywhere = true with no neighbors present")
	}
}

func TestFloodMaxAgeMissingKeyNoOp(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	r.floodMaxAge(as, ospfid.Key{Type: uint16(ospf2.RouterLSA), AdvertisingRouter: id(99)})

	if len(as.flushing) != 0 {
		t.Fatal("as.flushing populated for a key absent from the database")
	}
}

func TestAgeAndRefreshFlushesAtMaxAge(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	// Install directly at MaxAge-1 so one AgeTick(time.Second) crosses it,
	// bypassing LSRefreshTime re-origination so the entry ages out instead.
	as.area.Install(&lsdb.Entry{
		Key:            keyFor(id(77)),
		SequenceNumber: 1,
		Raw:            mustMarshalRouterLSA(t, id(77), 1),
		SelfOriginated: false,
	}, ospfid.MaxAge-time.Second)

	r.ageAndRefresh()

	entry, ok := as.area.Database().Lookup(keyFor(id(77)))
	if !ok {
		t.Fatal("entry removed on the same pass it crossed MaxAge, want reflood-then-wait")
	}
	lsa, err := ospf2.ParseLSA(entry.Raw)
	if err != nil {
		t.Fatalf("ParseLSA: %v", err)
	}
	if lsa.Header.Age != ospfid.MaxAge {
		t.Fatalf("Age = %d, want MaxAge", lsa.Header.Age)
	}

	r.reapFlushed(as)
	if _, ok := as.area.Database().Lookup(keyFor(id(77))); ok {
		t.Fatal("entry not removed by reapFlushed once nothing held it outstanding")
	}
}

func mustMarshalRouterLSA(t *testing.T, advRouter ospfid.ID, seq ospfid.SequenceNumber) []byte {
	t.Helper()
	lsa := &ospf2.LSA{
		Header: ospf2.LSAHeader{ID: ospf2.LSAID{LinkStateID: advRouter, AdvertisingRouter: advRouter}, SequenceNumber: seq},
		Body:   &ospf2.Router{},
	}
	raw, err := lsa.Marshal()
	if err != nil {
		t.Fatalf("lsa.Marshal: %v", err)
	}
	return raw
}
