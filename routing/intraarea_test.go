package routing

import (
	"net"
	"testing"
)

func cidr(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("ParseCIDR(%q): %v", s, err)
	}
	return n
}

func TestIntraAreaRoutesDirectlyAttached(t *testing.T) {
	root := rv(1)
	g := Graph{root: {}}
	stubs := []Stub{
		{Prefix: cidr(t, "10.0.0.0/24"), Attached: root, Cost: 10, NextHop: NextHop{InterfaceID: 1}},
	}

	routes := IntraAreaRoutes(g, root, stubs, 4)
	if len(routes) != 1 {
		t.Fatalf("routes = %+v, want 1", routes)
	}
	if routes[0].Cost != 10 {
		t.Fatalf("cost = %d, want 10", routes[0].Cost)
	}
	if routes[0].Type != IntraArea {
		t.Fatalf("type = %v, want IntraArea", routes[0].Type)
	}
}

func TestIntraAreaRoutesViaTransitRouter(t *testing.T) {
	root := rv(1)
	g := Graph{
		root:  {{To: rv(2), Cost: 5, NextHop: NextHop{InterfaceID: 1, RouterID: rv(2).ID}}},
		rv(2): {{To: root, Cost: 5}},
	}
	stubs := []Stub{
		{Prefix: cidr(t, "192.168.1.0/24"), Attached: rv(2), Cost: 2},
	}

	routes := IntraAreaRoutes(g, root, stubs, 4)
	if len(routes) != 1 || routes[0].Cost != 7 {
		t.Fatalf("routes = %+v, want single route cost 7", routes)
	}
	if routes[0].NextHops[0].RouterID != rv(2).ID {
		t.Fatalf("next hop = %+v, want via v2", routes[0].NextHops)
	}
}

func TestIntraAreaRoutesSkipsUnreachableAttachment(t *testing.T) {
	root := rv(1)
	g := Graph{root: {}}
	stubs := []Stub{{Prefix: cidr(t, "10.0.0.0/24"), Attached: rv(9), Cost: 1}}

	routes := IntraAreaRoutes(g, root, stubs, 4)
	if len(routes) != 0 {
		t.Fatalf("routes = %+v, want none (unreachable attachment)", routes)
	}
}
