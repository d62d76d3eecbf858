package ospfd

import (
	"net"
	"testing"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ribclient"
	"github.com/mdlayher/ospfd/routing"
)

func TestNextHopToNeighbor(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	ps, _ := newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))
	neighborID := id(9)
	ps.peer.Neighbor(neighborID, "10.0.0.9")

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	nh := r.nextHopToNeighbor(as, neighborID)
	if nh.InterfaceID != ps.ifID {
		t.Fatalf("nextHopToNeighbor InterfaceID = %d, want %d", nh.InterfaceID, ps.ifID)
	}

	if nh := r.nextHopToNeighbor(as, id(99)); nh.InterfaceID != 0 {
		t.Fatalf("nextHopToNeighbor for an unknown neighbor = %+v, want zero value", nh)
	}
}

func TestNextHopOnStub(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	ps, _ := newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	prefix := &net.IPNet{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(24, 32)}
	nh := r.nextHopOnStub(as, prefix)
	if nh.InterfaceID != ps.ifID {
		t.Fatalf("nextHopOnStub InterfaceID = %d, want %d", nh.InterfaceID, ps.ifID)
	}

	other := &net.IPNet{IP: net.IPv4(192, 168, 1, 0), Mask: net.CIDRMask(24, 32)}
	if nh := r.nextHopOnStub(as, other); nh.InterfaceID != 0 {
		t.Fatalf("nextHopOnStub for an unrelated prefix = %+v, want zero value", nh)
	}
}

func TestComputeAreaOwnStubRoute(t *testing.T) {
	rec := &ribclient.Recording{}
	r := New(Config{RouterID: id(1), RIB: rec})
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	newTestPeer(t, r, id(0), "eth0", net.IPv4(10, 0, 0, 1))

	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	r.originateRouterLSA(as)
	routes := r.computeArea(as)

	var found bool
	for _, route := range routes {
		if route.Prefix.IP.Equal(net.IPv4(10, 0, 0, 0)) {
			found = true
			if len(route.NextHops) != 1 {
				t.Fatalf("len(NextHops) = %d, want 1", len(route.NextHops))
			}
		}
	}
	if !found {
		t.Fatal("own stub network route not present in computed RouteSet")
	}
}

func TestAddRouterLinksOtherRouterHasZeroNextHop(t *testing.T) {
	r := testRouter()
	if err := r.CreateArea(area.Config{ID: id(0)}); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	r.mu.Lock()
	as := r.areas[id(0)]
	r.mu.Unlock()

	graph := make(routing.Graph)
	var stubs []routing.Stub
	from := routing.Vertex{Kind: routing.RouterVertex, ID: id(7)} // not this router
	body := &ospf2.Router{Links: []ospf2.RouterLink{
		{Type: ospf2.LinkPointToPoint, LinkID: id(8), Metric: 10},
	}}
	r.addRouterLinks(as, from, body, &graph, &stubs)

	edges := graph[from]
	if len(edges) != 1 {
		t.Fatalf("len(edges) = %d, want 1", len(edges))
	}
	if edges[0].NextHop.InterfaceID != 0 {
		t.Fatalf("NextHop = %+v for another router's Router-LSA, want zero value", edges[0].NextHop)
	}
}
