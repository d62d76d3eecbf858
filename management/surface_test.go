package management

import (
	"net"
	"testing"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
)

func TestRecordingCreateDestroyArea(t *testing.T) {
	r := &Recording{}
	id := ospfid.ID{0, 0, 0, 1}

	if err := r.CreateArea(area.Config{ID: id, Type: area.Stub}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if ids := r.ListAreas(); len(ids) != 1 || ids[0] != id {
		t.Fatalf("ListAreas() = %v, want [%v]", ids, id)
	}

	if err := r.DestroyArea(id); err != nil {
		t.Fatalf("DestroyArea: %v", err)
	}
	if ids := r.ListAreas(); len(ids) != 0 {
		t.Fatalf("ListAreas() = %v, want none after DestroyArea", ids)
	}
}

func TestRecordingCapturesPeerParameters(t *testing.T) {
	r := &Recording{}
	id := ospfid.ID{0, 0, 0, 1}
	cfg := peer.Config{IfName: "eth0", Priority: 5}

	if err := r.CreatePeer(id, cfg); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}
	if err := r.SetPeerParameters(id, "eth0", peer.Config{IfName: "eth0", Priority: 10}); err != nil {
		t.Fatalf("SetPeerParameters: %v", err)
	}

	calls := r.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %+v, want 2", calls)
	}
	if calls[0].Method != "CreatePeer" || calls[0].Peer.Priority != 5 {
		t.Fatalf("calls[0] = %+v, want CreatePeer with priority 5", calls[0])
	}
	if calls[1].Method != "SetPeerParameters" || calls[1].Peer.Priority != 10 {
		t.Fatalf("calls[1] = %+v, want SetPeerParameters with priority 10", calls[1])
	}
}

func TestRecordingAreaRangeCalls(t *testing.T) {
	r := &Recording{}
	id := ospfid.ID{0, 0, 0, 1}
	_, prefix, _ := net.ParseCIDR("10.0.0.0/8")

	if err := r.AddAreaRange(id, prefix, true); err != nil {
		t.Fatalf("AddAreaRange: %v", err)
	}
	if err := r.RemoveAreaRange(id, prefix); err != nil {
		t.Fatalf("RemoveAreaRange: %v", err)
	}

	calls := r.Calls()
	if len(calls) != 2 || calls[0].Prefix != prefix || !calls[0].Advertise {
		t.Fatalf("calls = %+v, want AddAreaRange(prefix, advertise=true) first", calls)
	}
}

func TestRecordingClearDatabaseAndListCalls(t *testing.T) {
	r := &Recording{}
	id := ospfid.ID{0, 0, 0, 1}

	r.ListNeighbors(id, "eth0")
	r.ListLSAs(id)
	if err := r.ClearDatabase(id); err != nil {
		t.Fatalf("ClearDatabase: %v", err)
	}

	calls := r.Calls()
	wantMethods := []string{"ListNeighbors", "ListLSAs", "ClearDatabase"}
	for i, m := range wantMethods {
		if calls[i].Method != m {
			t.Fatalf("calls[%d].Method = %q, want %q", i, calls[i].Method, m)
		}
	}
}

func TestSurfaceInterfaceSatisfiedByRecording(t *testing.T) {
	var _ Surface = (*Recording)(nil)
}
