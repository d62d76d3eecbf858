package ospfd

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/hostio"
	"github.com/mdlayher/ospfd/peer"
)

func id(b byte) (out [4]byte) {
	out[3] = b
	return out
}

func testRouter() *Router {
	return New(Config{RouterID: id(1)})
}

type fakeTransport struct {
	closed bool
	sent   [][]byte
	dsts   []*net.IPAddr
}

func (f *fakeTransport) ReadFrom() (hostio.Packet, error) {
	return hostio.Packet{}, errTimeout{}
}
func (f *fakeTransport) WriteTo(b []byte, dst *net.IPAddr) error {
	f.sent = append(f.sent, append([]byte(nil), b...))
	f.dsts = append(f.dsts, dst)
	return nil
}
func (f *fakeTransport) SetReadDeadline(time.Time) error { return nil }
func (f *fakeTransport) Close() error                    { f.closed = true; return nil }

type errTimeout struct{}

func (errTimeout) Error() string   { return "i/o timeout" }
func (errTimeout) Timeout() bool   { return true }
func (errTimeout) Temporary() bool { return true }

func TestRouterCreateAreaDuplicate(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if err := r.CreateArea(area.Config{ID: id(0)}); !errors.Is(err, ErrAreaExists) {
		t.Fatalf("err = %v, want ErrAreaExists", err)
	}
}

func TestRouterDestroyAreaNotFound(t *testing.T) {
	r := testRouter()
	if err := r.DestroyArea(id(9)); !errors.Is(err, ErrAreaNotFound) {
		t.Fatalf("err = %v, want ErrAreaNotFound", err)
	}
}

func TestRouterCreatePeerRequiresArea(t *testing.T) {
	r := testRouter()
	err := r.CreatePeer(id(0), peer.Config{IfName: "eth0"}, &fakeTransport{})
	if !errors.Is(err, ErrAreaNotFound) {
		t.Fatalf("err = %v, want ErrAreaNotFound", err)
	}
}

func TestRouterCreatePeerDuplicate(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	cfg := peer.Config{IfName: "eth0", LinkType: peer.Broadcast, Priority: 1}
	if err := r.CreatePeer(id(0), cfg, &fakeTransport{}); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}
	if err := r.CreatePeer(id(0), cfg, &fakeTransport{}); !errors.Is(err, ErrPeerExists) {
		t.Fatalf("err = %v, want ErrPeerExists", err)
	}
}

func TestRouterCreatePeerWithAddress(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	addr := &net.IPNet{IP: net.IPv4(10, 0, 0, 1), Mask: net.CIDRMask(24, 32)}
	cfg := peer.Config{IfName: "eth0", LinkType: peer.Broadcast, Priority: 1}
	if err := r.CreatePeerWithAddress(id(0), cfg, &fakeTransport{}, addr); err != nil {
		t.Fatalf("CreatePeerWithAddress: %v", err)
	}

	as, ps := r.lookupPeer(id(0), "eth0")
	if as == nil || ps == nil {
		t.Fatal("peer not found after CreatePeerWithAddress")
	}
	if ps.address == nil || !ps.address.IP.Equal(addr.IP) {
		t.Fatalf("address = %v, want %v", ps.address, addr)
	}
}

func TestRouterDestroyPeerClosesTransport(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	tr := &fakeTransport{}
	cfg := peer.Config{IfName: "eth0", LinkType: peer.Broadcast}
	if err := r.CreatePeer(id(0), cfg, tr); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}
	if err := r.DestroyPeer(id(0), "eth0"); err != nil {
		t.Fatalf("DestroyPeer: %v", err)
	}
	if !tr.closed {
		t.Fatal("transport not closed")
	}
}

func TestRouterAddRemoveAreaRange(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	prefix := &net.IPNet{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)}
	if err := r.AddAreaRange(id(0), prefix, true); err != nil {
		t.Fatalf("AddAreaRange: %v", err)
	}
	r.mu.Lock()
	ranges := r.areas[id(0)].area.Ranges()
	r.mu.Unlock()
	if len(ranges) != 1 {
		t.Fatalf("len(ranges) = %d, want 1", len(ranges))
	}

	if err := r.RemoveAreaRange(id(0), prefix); err != nil {
		t.Fatalf("RemoveAreaRange: %v", err)
	}
	r.mu.Lock()
	ranges = r.areas[id(0)].area.Ranges()
	r.mu.Unlock()
	if len(ranges) != 0 {
		t.Fatalf("len(ranges) = %d, want 0 after remove", len(ranges))
	}
}

func TestRouterSetAreaTunables(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if err := r.SetAreaType(id(0), area.Stub); err != nil {
		t.Fatalf("SetAreaType: %v", err)
	}
	if err := r.SetStubDefaultCost(id(0), 20); err != nil {
		t.Fatalf("SetStubDefaultCost: %v", err)
	}
	if err := r.SetSummaries(id(0), false); err != nil {
		t.Fatalf("SetSummaries: %v", err)
	}

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()
	if as.area.Type != area.Stub || as.area.StubDefaultCost != 20 || as.area.Summaries {
		t.Fatalf("area config = %+v, want Stub/20/false", as.area.Config)
	}
}

func TestRouterListNeighborsEmpty(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	cfg := peer.Config{IfName: "eth0", LinkType: peer.Broadcast}
	if err := r.CreatePeer(id(0), cfg, &fakeTransport{}); err != nil {
		t.Fatalf("CreatePeer: %v", err)
	}
	if got := r.ListNeighbors(id(0), "eth0"); got != nil {
		t.Fatalf("ListNeighbors = %v, want nil", got)
	}
}

func TestRouterClearDatabase(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if err := r.ClearDatabase(id(0)); err != nil {
		t.Fatalf("ClearDatabase: %v", err)
	}
	if got := r.ListLSAs(id(0)); got != nil {
		t.Fatalf("ListLSAs = %v, want nil after ClearDatabase", got)
	}
}
