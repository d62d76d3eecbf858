package management

import (
	"net"
	"sync"
	"time"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
)

// An AuthKey is one OSPFv2 authentication key with a validity window, RFC
// 2328 §D.3's key-rollover model: a key is usable for output once NotBefore
// has passed and accepted on input until NotAfter, so two keys can overlap
// during a rollover rather than flapping every adjacency at the swap
// instant.
type AuthKey struct {
	ID                  uint8
	Key                 []byte
	NotBefore, NotAfter time.Time
}

// A VirtualLink identifies one configured virtual link, RFC 2328 §15:
// TransitArea is the non-backbone area the link crosses, and RouterID is
// the ABR at its far end.
type VirtualLink struct {
	TransitArea ospfid.ID
	RouterID    ospfid.ID
}

// An OriginateDefault configures whether and how this router originates a
// default route as an AS-External-LSA.
type OriginateDefault struct {
	Enabled bool
	Metric  uint32
	Type2   bool
}

// A NeighborSummary is one row of ListNeighbors' output.
type NeighborSummary struct {
	ID       ospfid.ID
	Address  string
	State    string
	Priority uint8
	DR, BDR  ospfid.ID
}

// An LSASummary is one row of ListLSAs' output: an LSA header without its
// body, RFC 2328 §12.1's per-type common fields.
type LSASummary struct {
	Key            ospfid.Key
	SequenceNumber ospfid.SequenceNumber
	Checksum       uint16
	Age            time.Duration
	Length         int
}

// Surface is the management/RPC-facing API §6 describes: create/destroy
// areas and peers, adjust their tunables, enumerate live state, and clear
// the database. It is a plain Go interface so any out-of-core transport
// (CLI, gRPC, a REPL) can sit in front of it without the core knowing or
// caring how its calls arrived; see §6's "exact RPC encoding is outside the
// core" note and the original XORP ospf.cc peering-manager this surface is
// the typed equivalent of.
type Surface interface {
	CreateArea(cfg area.Config) error
	DestroyArea(id ospfid.ID) error
	ListAreas() []ospfid.ID

	SetAreaType(id ospfid.ID, t area.Type) error
	SetStubDefaultCost(id ospfid.ID, cost uint16) error
	SetSummaries(id ospfid.ID, enabled bool) error
	AddAreaRange(id ospfid.ID, prefix *net.IPNet, advertise bool) error
	RemoveAreaRange(id ospfid.ID, prefix *net.IPNet) error

	CreatePeer(areaID ospfid.ID, cfg peer.Config) error
	DestroyPeer(areaID ospfid.ID, ifName string) error
	SetPeerParameters(areaID ospfid.ID, ifName string, cfg peer.Config) error
	SetAuthKey(areaID ospfid.ID, ifName string, key AuthKey) error

	AddVirtualLink(vl VirtualLink) error
	RemoveVirtualLink(vl VirtualLink) error
	SetOriginateDefault(cfg OriginateDefault) error

	ListNeighbors(areaID ospfid.ID, ifName string) []NeighborSummary
	ListLSAs(areaID ospfid.ID) []LSASummary
	ClearDatabase(areaID ospfid.ID) error
}

// A Call is one Surface invocation Recording captured, named after the
// Surface method and carrying whichever of its arguments were supplied.
type Call struct {
	Method    string
	AreaID    ospfid.ID
	IfName    string
	Area      area.Config
	Peer      peer.Config
	Prefix    *net.IPNet
	Advertise bool
	AuthKey   AuthKey
	VLink     VirtualLink
	Default   OriginateDefault
}

// Recording is a Surface that records every call instead of acting on it,
// so management-layer tests can assert on exactly what was requested
// without a live Router backing it.
type Recording struct {
	mu    sync.Mutex
	calls []Call
	areas map[ospfid.ID]bool
}

var _ Surface = (*Recording)(nil)

func (r *Recording) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// CreateArea implements Surface.
func (r *Recording) CreateArea(cfg area.Config) error {
	r.mu.Lock()
	if r.areas == nil {
		r.areas = make(map[ospfid.ID]bool)
	}
	r.areas[cfg.ID] = true
	r.mu.Unlock()
	r.record(Call{Method: "CreateArea", Area: cfg})
	return nil
}

// DestroyArea implements Surface.
func (r *Recording) DestroyArea(id ospfid.ID) error {
	r.mu.Lock()
	delete(r.areas, id)
	r.mu.Unlock()
	r.record(Call{Method: "DestroyArea", AreaID: id})
	return nil
}

// ListAreas implements Surface.
func (r *Recording) ListAreas() []ospfid.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]ospfid.ID, 0, len(r.areas))
	for id := range r.areas {
		ids = append(ids, id)
	}
	return ids
}

// SetAreaType implements Surface.
func (r *Recording) SetAreaType(id ospfid.ID, t area.Type) error {
	r.record(Call{Method: "SetAreaType", AreaID: id, Area: area.Config{Type: t}})
	return nil
}

// SetStubDefaultCost implements Surface.
func (r *Recording) SetStubDefaultCost(id ospfid.ID, cost uint16) error {
	r.record(Call{Method: "SetStubDefaultCost", AreaID: id, Area: area.Config{StubDefaultCost: cost}})
	return nil
}

// SetSummaries implements Surface.
func (r *Recording) SetSummaries(id ospfid.ID, enabled bool) error {
	r.record(Call{Method: "SetSummaries", AreaID: id, Area: area.Config{Summaries: enabled}})
	return nil
}

// AddAreaRange implements Surface.
func (r *Recording) AddAreaRange(id ospfid.ID, prefix *net.IPNet, advertise bool) error {
	r.record(Call{Method: "AddAreaRange", AreaID: id, Prefix: prefix, Advertise: advertise})
	return nil
}

// RemoveAreaRange implements Surface.
func (r *Recording) RemoveAreaRange(id ospfid.ID, prefix *net.IPNet) error {
	r.record(Call{Method: "RemoveAreaRange", AreaID: id, Prefix: prefix})
	return nil
}

// CreatePeer implements Surface.
func (r *Recording) CreatePeer(areaID ospfid.ID, cfg peer.Config) error {
	r.record(Call{Method: "CreatePeer", AreaID: areaID, IfName: cfg.IfName, Peer: cfg})
	return nil
}

// DestroyPeer implements Surface.
func (r *Recording) DestroyPeer(areaID ospfid.ID, ifName string) error {
	r.record(Call{Method: "DestroyPeer", AreaID: areaID, IfName: ifName})
	return nil
}

// SetPeerParameters implements Surface.
func (r *Recording) SetPeerParameters(areaID ospfid.ID, ifName string, cfg peer.Config) error {
	r.record(Call{Method: "SetPeerParameters", AreaID: areaID, IfName: ifName, Peer: cfg})
	return nil
}

// SetAuthKey implements Surface.
func (r *Recording) SetAuthKey(areaID ospfid.ID, ifName string, key AuthKey) error {
	r.record(Call{Method: "SetAuthKey", AreaID: areaID, IfName: ifName, AuthKey: key})
	return nil
}

// AddVirtualLink implements Surface.
func (r *Recording) AddVirtualLink(vl VirtualLink) error {
	r.record(Call{Method: "AddVirtualLink", VLink: vl})
	return nil
}

// RemoveVirtualLink implements Surface.
func (r *Recording) RemoveVirtualLink(vl VirtualLink) error {
	r.record(Call{Method: "RemoveVirtualLink", VLink: vl})
	return nil
}

// SetOriginateDefault implements Surface.
func (r *Recording) SetOriginateDefault(cfg OriginateDefault) error {
	r.record(Call{Method: "SetOriginateDefault", Default: cfg})
	return nil
}

// ListNeighbors implements Surface. Recording has no live neighbor state to
// report, so it always returns nil; it exists to capture that the call was
// made (see Calls).
func (r *Recording) ListNeighbors(areaID ospfid.ID, ifName string) []NeighborSummary {
	r.record(Call{Method: "ListNeighbors", AreaID: areaID, IfName: ifName})
	return nil
}

// ListLSAs implements Surface, with the same no-live-state caveat as
// ListNeighbors.
func (r *Recording) ListLSAs(areaID ospfid.ID) []LSASummary {
	r.record(Call{Method: "ListLSAs", AreaID: areaID})
	return nil
}

// ClearDatabase implements Surface.
func (r *Recording) ClearDatabase(areaID ospfid.ID) error {
	r.record(Call{Method: "ClearDatabase", AreaID: areaID})
	return nil
}

// Calls returns a snapshot of every call received so far, in order.
func (r *Recording) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
