package ribclient

import (
	"net"
	"testing"
)

func mustPrefix(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("ParseCIDR(%q): %v", s, err)
	}
	return n
}

func TestNoOpSatisfiesClient(t *testing.T) {
	var c Client = NoOp{}
	if err := c.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.AddRoute(Route{Prefix: mustPrefix(t, "10.0.0.0/24")}); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	if err := c.DeleteRoute(mustPrefix(t, "10.0.0.0/24")); err != nil {
		t.Fatalf("DeleteRoute: %v", err)
	}
	if err := c.Unregister(); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
}

func TestRecordingCapturesCallsInOrder(t *testing.T) {
	r := &Recording{}
	prefix := mustPrefix(t, "192.0.2.0/24")

	r.Register()
	r.AddRoute(Route{Prefix: prefix, Metric: 10})
	r.ReplaceRoute(Route{Prefix: prefix, Metric: 20})
	r.DeleteRoute(prefix)
	r.Unregister()

	calls := r.Calls()
	wantMethods := []string{"Register", "AddRoute", "ReplaceRoute", "DeleteRoute", "Unregister"}
	if len(calls) != len(wantMethods) {
		t.Fatalf("calls = %+v, want %d entries", calls, len(wantMethods))
	}
	for i, m := range wantMethods {
		if calls[i].Method != m {
			t.Fatalf("calls[%d].Method = %q, want %q", i, calls[i].Method, m)
		}
	}
	if calls[2].Route.Metric != 20 {
		t.Fatalf("ReplaceRoute metric = %d, want 20", calls[2].Route.Metric)
	}
	if r.Registered() {
		t.Fatal("Registered() = true after Unregister, want false")
	}
}

func TestRecordingRegisteredState(t *testing.T) {
	r := &Recording{}
	if r.Registered() {
		t.Fatal("Registered() = true before Register, want false")
	}
	r.Register()
	if !r.Registered() {
		t.Fatal("Registered() = false after Register, want true")
	}
}
