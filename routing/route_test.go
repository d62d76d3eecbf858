package routing

import (
	"sort"
	"testing"
)

func route(t *testing.T, prefix string, typ PathType, cost uint32, ifaceID uint32) *Route {
	return &Route{
		Prefix:   cidr(t, prefix),
		Type:     typ,
		Cost:     cost,
		NextHops: []NextHop{{InterfaceID: ifaceID}},
	}
}

func TestNewRouteSetKeepsBest(t *testing.T) {
	a := route(t, "10.0.0.0/24", IntraArea, 20, 1)
	b := route(t, "10.0.0.0/24", External1, 5, 2)

	rs := NewRouteSet([]*Route{a, b})
	if got := rs["10.0.0.0/24"]; got.Type != IntraArea {
		t.Fatalf("kept route type = %v, want IntraArea (beats External1 regardless of cost)", got.Type)
	}
}

func TestNewRouteSetSamePathTypeLowestCostWins(t *testing.T) {
	a := route(t, "10.0.0.0/24", External2, 20, 1)
	b := route(t, "10.0.0.0/24", External2, 5, 2)

	rs := NewRouteSet([]*Route{a, b})
	if got := rs["10.0.0.0/24"]; got.Cost != 5 {
		t.Fatalf("cost = %d, want 5", got.Cost)
	}
}

func TestDiffAddReplaceDelete(t *testing.T) {
	old := NewRouteSet([]*Route{
		route(t, "10.0.0.0/24", IntraArea, 10, 1),
		route(t, "10.0.1.0/24", IntraArea, 10, 1),
	})
	new := NewRouteSet([]*Route{
		route(t, "10.0.0.0/24", IntraArea, 20, 1), // changed cost -> Replace
		route(t, "10.0.2.0/24", IntraArea, 10, 1), // new -> Add
		// 10.0.1.0/24 dropped -> Delete
	})

	ops := Diff(old, new)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Route.Prefix.String() < ops[j].Route.Prefix.String() })

	if len(ops) != 3 {
		t.Fatalf("ops = %+v, want 3", ops)
	}
	want := map[string]OpKind{
		"10.0.0.0/24": Replace,
		"10.0.1.0/24": Delete,
		"10.0.2.0/24": Add,
	}
	for _, op := range ops {
		k := op.Route.Prefix.String()
		if want[k] != op.Kind {
			t.Fatalf("op for %s = %v, want %v", k, op.Kind, want[k])
		}
	}
}

func TestDiffUnchangedRouteEmitsNothing(t *testing.T) {
	old := NewRouteSet([]*Route{route(t, "10.0.0.0/24", IntraArea, 10, 1)})
	new := NewRouteSet([]*Route{route(t, "10.0.0.0/24", IntraArea, 10, 1)})

	if ops := Diff(old, new); len(ops) != 0 {
		t.Fatalf("ops = %+v, want none for an identical route", ops)
	}
}
