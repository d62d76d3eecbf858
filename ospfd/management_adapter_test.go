package ospfd

import (
	"net"
	"testing"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/management"
	"github.com/mdlayher/ospfd/peer"
)

func TestManagementSurfaceCreateAreaAndPeer(t *testing.T) {
	r := testRouter()
	s := ManagementSurface{Router: r}

	if err := s.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if got := s.ListAreas(); len(got) != 1 || got[0] != id(0) {
		t.Fatalf("ListAreas = %v, want [%v]", got, id(0))
	}

	if err := s.CreatePeer(id(0), peer.Config{IfName: "eth0", LinkType: peer.Broadcast}); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}

	_, ps := r.lookupPeer(id(0), "eth0")
	if ps == nil {
		t.Fatal("peer not created")
	}
	if ps.transport != nil {
		t.Fatal("peer created through the management surface should have a nil Transport")
	}
	if ps.address != nil {
		t.Fatal("peer created through the management surface should have no address")
	}
}

func TestManagementSurfaceDestroyPeerNilTransport(t *testing.T) {
	r := testRouter()
	s := ManagementSurface{Router: r}

	if err := s.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if err := s.CreatePeer(id(0), peer.Config{IfName: "eth0"}); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}
	if err := s.DestroyPeer(id(0), "eth0"); err != nil {
		t.Fatalf("DestroyPeer: %v", err)
	}
}

func TestManagementSurfaceVirtualLinkAndDefault(t *testing.T) {
	r := testRouter()
	s := ManagementSurface{Router: r}

	vl := management.VirtualLink{TransitArea: id(1), RouterID: id(2)}
	if err := s.AddVirtualLink(vl); err != nil {
		t.Fatalf("AddVirtualLink: %v", err)
	}
	r.mu.Lock()
	_, ok := r.virtualLinks[vl]
	r.mu.Unlock()
	if !ok {
		t.Fatal("virtual link not recorded")
	}

	if err := s.RemoveVirtualLink(vl); err != nil {
		t.Fatalf("RemoveVirtualLink: %v", err)
	}
	r.mu.Lock()
	_, ok = r.virtualLinks[vl]
	r.mu.Unlock()
	if ok {
		t.Fatal("virtual link still recorded after RemoveVirtualLink")
	}

	cfg := management.OriginateDefault{Enabled: true, Metric: 10}
	if err := s.SetOriginateDefault(cfg); err != nil {
		t.Fatalf("SetOriginateDefault: %v", err)
	}
	r.mu.Lock()
	got := r.originateDefault
	r.mu.Unlock()
	if got != cfg {
		t.Fatalf("originateDefault = %+v, want %+v", got, cfg)
	}
}

func TestManagementSurfaceAddAreaRange(t *testing.T) {
	r := testRouter()
	s := ManagementSurface{Router: r}
	if err := s.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	prefix := &net.IPNet{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)}
	if err := s.AddAreaRange(id(0), prefix, true); err != nil {
		t.Fatalf("AddAreaRange: %v", err)
	}
	if err := s.RemoveAreaRange(id(0), prefix); err != nil {
		t.Fatalf("RemoveAreaRange: %v", err)
	}
}
