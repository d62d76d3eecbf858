package ospfd

import (
	"net"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/management"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
)

// ManagementSurface adapts a Router to management.Surface, so any
// out-of-core transport (CLI, gRPC, a REPL) can drive it without depending
// on Router's richer, Transport-aware CRUD methods directly.
//
// Peers created through CreatePeer carry no Transport or local address;
// they run their FSM against whatever Hellos happen to reach them via some
// other attachment, but originate nothing themselves. A deployment wiring
// real interfaces at startup should call Router.CreatePeerWithAddress
// directly instead.
type ManagementSurface struct {
	Router *Router
}

var _ management.Surface = ManagementSurface{}

// CreateArea implements management.Surface.
func (s ManagementSurface) CreateArea(cfg area.Config) error { return s.Router.CreateArea(cfg) }

// DestroyArea implements management.Surface.
func (s ManagementSurface) DestroyArea(id ospfid.ID) error { return s.Router.DestroyArea(id) }

// ListAreas implements management.Surface.
func (s ManagementSurface) ListAreas() []ospfid.ID { return s.Router.ListAreas() }

// SetAreaType implements management.Surface.
func (s ManagementSurface) SetAreaType(id ospfid.ID, t area.Type) error {
	return s.Router.SetAreaType(id, t)
}

// SetStubDefaultCost implements management.Surface.
func (s ManagementSurface) SetStubDefaultCost(id ospfid.ID, cost uint16) error {
	return s.Router.SetStubDefaultCost(id, cost)
}

// SetSummaries implements management.Surface.
func (s ManagementSurface) SetSummaries(id ospfid.ID, enabled bool) error {
	return s.Router.SetSummaries(id, enabled)
}

// AddAreaRange implements management.Surface.
func (s ManagementSurface) AddAreaRange(id ospfid.ID, prefix *net.IPNet, advertise bool) error {
	return s.Router.AddAreaRange(id, prefix, advertise)
}

// RemoveAreaRange implements management.Surface.
func (s ManagementSurface) RemoveAreaRange(id ospfid.ID, prefix *net.IPNet) error {
	return s.Router.RemoveAreaRange(id, prefix)
}

// CreatePeer implements management.Surface. See the ManagementSurface
// doc comment: the resulting Peer has no Transport or local address.
func (s ManagementSurface) CreatePeer(areaID ospfid.ID, cfg peer.Config) error {
	return s.Router.CreatePeer(areaID, cfg, nil)
}

// DestroyPeer implements management.Surface.
func (s ManagementSurface) DestroyPeer(areaID ospfid.ID, ifName string) error {
	return s.Router.DestroyPeer(areaID, ifName)
}

// SetPeerParameters implements management.Surface.
func (s ManagementSurface) SetPeerParameters(areaID ospfid.ID, ifName string, cfg peer.Config) error {
	return s.Router.SetPeerParameters(areaID, ifName, cfg)
}

// SetAuthKey implements management.Surface.
func (s ManagementSurface) SetAuthKey(areaID ospfid.ID, ifName string, key management.AuthKey) error {
	return s.Router.SetAuthKey(areaID, ifName, key)
}

// AddVirtualLink implements management.Surface.
func (s ManagementSurface) AddVirtualLink(vl management.VirtualLink) error {
	return s.Router.AddVirtualLink(vl)
}

// RemoveVirtualLink implements management.Surface.
func (s ManagementSurface) RemoveVirtualLink(vl management.VirtualLink) error {
	return s.Router.RemoveVirtualLink(vl)
}

// SetOriginateDefault implements management.Surface.
func (s ManagementSurface) SetOriginateDefault(cfg management.OriginateDefault) error {
	return s.Router.SetOriginateDefault(cfg)
}

// ListNeighbors implements management.Surface.
func (s ManagementSurface) ListNeighbors(areaID ospfid.ID, ifName string) []management.NeighborSummary {
	return s.Router.ListNeighbors(areaID, ifName)
}

// ListLSAs implements management.Surface.
func (s ManagementSurface) ListLSAs(areaID ospfid.ID) []management.LSASummary {
	return s.Router.ListLSAs(areaID)
}

// ClearDatabase implements management.Surface.
func (s ManagementSurface) ClearDatabase(areaID ospfid.ID) error {
	return s.Router.ClearDatabase(areaID)
}
