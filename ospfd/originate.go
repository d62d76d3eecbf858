package ospfd

import (
	"net"
	"time"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/hostio"
	"github.com/mdlayher/ospfd/lsdb"
	"github.com/mdlayher/ospfd/metrics"
	"github.com/mdlayher/ospfd/neighbor"
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
)

// sendHellosDue sends a Hello out every configured Peer whose HelloInterval
// has elapsed since the last one, RFC 2328 §9.5.
func (r *Router) sendHellosDue(now time.Time) {
	r.mu.Lock()
	var due []*peerState
	for _, as := range r.areas {
		for _, ps := range as.peers {
			if ps.peer.Config.Passive || ps.address == nil {
				continue
			}
			if now.After(ps.nextHello) {
				ps.nextHello = now.Add(ps.peer.Config.HelloInterval)
				due = append(due, ps)
			}
		}
	}
	r.mu.Unlock()

	for _, ps := range due {
		r.sendHello(ps)
	}
}

// sendHello builds and transmits one Hello on ps, listing every neighbor
// currently known at Init or better, RFC 2328 §9.5.
func (r *Router) sendHello(ps *peerState) {
	dr, bdr := ps.peer.DRBDR()
	hdr, sign := r.authHeader(ps)

	hello := &ospf2.Hello{
		Header:                   hdr,
		NetworkMask:              net.IP(ps.address.Mask),
		HelloInterval:            ps.peer.Config.HelloInterval,
		RouterPriority:           ps.peer.Config.Priority,
		RouterDeadInterval:       ps.peer.Config.RouterDeadInterval,
		DesignatedRouterID:       dr,
		BackupDesignatedRouterID: bdr,
		NeighborIDs:              ps.peer.HelloNeighborIDs(),
	}

	b, err := ospf2.MarshalMessage(hello)
	if err != nil {
		return
	}
	b = sign(b)
	if err := ps.transport.WriteTo(b, hostio.AllSPFRouters4); err != nil {
		r.cfg.Metrics.RecordError(metrics.ErrIO, ps.peer.Config.IfName)
		return
	}
	r.cfg.Metrics.RecordTx(ps.peer.Config.IfName, "Hello")
}

// originateRouterLSA builds this router's Router-LSA for as from the current
// classification of every attached interface, RFC 2328 §12.4.1, and
// installs (and reflloods) it if the result differs from what is currently
// stored.
func (r *Router) originateRouterLSA(as *areaState) {
	var links []ospf2.RouterLink
	var flags ospf2.RouterLSAFlags

	for _, ps := range as.peers {
		link, ok := r.routerLinkFor(ps)
		if !ok {
			continue
		}
		links = append(links, link)
		if ps.peer.Config.LinkType == peer.VirtualLink {
			flags |= ospf2.RouterFlagV
		}
	}

	r.installSelfOriginated(as, ospfid.Key{
		Type:              uint16(ospf2.RouterLSA),
		LinkStateID:       r.cfg.RouterID,
		AdvertisingRouter: r.cfg.RouterID,
	}, &ospf2.Router{Flags: flags, Links: links})
}

// originateNetworkLSAs re-evaluates Network-LSA origination for every peer
// in as, RFC 2328 §12.4.2.
func (r *Router) originateNetworkLSAs(as *areaState) {
	for _, ps := range as.peers {
		r.originateNetworkLSA(as, ps)
	}
}

// originateNetworkLSA originates ps's Network-LSA when this router is DR on
// the link and has at least one Full neighbor there, and withdraws any
// previously originated instance once either condition stops holding, RFC
// 2328 §12.4.2: "each Designated Router originates a network-LSA for the
// attached transit network."
func (r *Router) originateNetworkLSA(as *areaState, ps *peerState) {
	if ps.address == nil {
		return
	}
	multiAccess := ps.peer.Config.LinkType == peer.Broadcast || ps.peer.Config.LinkType == peer.NBMA
	if !multiAccess {
		return
	}

	key := ospfid.Key{
		Type:              uint16(ospf2.NetworkLSA),
		LinkStateID:       addressID(ps.address),
		AdvertisingRouter: r.cfg.RouterID,
	}

	dr, _ := ps.peer.DRBDR()
	var attached []ospfid.ID
	if dr == r.cfg.RouterID {
		for _, n := range ps.peer.Neighbors() {
			if n.State() == neighbor.Full {
				attached = append(attached, n.ID)
			}
		}
	}

	if len(attached) == 0 {
		if e, ok := as.area.Database().Lookup(key); ok && e.SelfOriginated {
			r.floodMaxAge(as, key)
		}
		return
	}
	attached = append(attached, r.cfg.RouterID)

	r.installSelfOriginated(as, key, &ospf2.Network{
		NetworkMask:    net.IP(ps.address.Mask),
		AttachedRouter: attached,
	})
}

// routerLinkFor classifies ps's current interface state and, unless it
// contributes nothing this tick, returns the matching RouterLink.
func (r *Router) routerLinkFor(ps *peerState) (ospf2.RouterLink, bool) {
	state := area.InterfaceState{
		Passive:       ps.peer.Config.Passive,
		MultiAccess:   ps.peer.Config.LinkType == peer.Broadcast || ps.peer.Config.LinkType == peer.NBMA,
		IsVirtualLink: ps.peer.Config.LinkType == peer.VirtualLink,
	}

	var sole, dr ospfid.ID
	for _, n := range ps.peer.Neighbors() {
		if n.State() == neighbor.Full {
			state.HasFullNeighbor = true
			state.SoleNeighborFull = true
			sole = n.ID
		}
	}
	dr, _ = ps.peer.DRBDR()
	state.NeighborID = sole

	switch area.ClassifyLink(state) {
	case area.PointToPoint, area.Virtual:
		return ospf2.RouterLink{
			Type:     ospf2.LinkPointToPoint,
			LinkID:   sole,
			LinkData: addressID(ps.address),
			Metric:   ps.peer.Config.Cost,
		}, true
	case area.Transit:
		return ospf2.RouterLink{
			Type:     ospf2.LinkTransit,
			LinkID:   dr,
			LinkData: addressID(ps.address),
			Metric:   ps.peer.Config.Cost,
		}, true
	case area.StubNetwork:
		if ps.address == nil {
			return ospf2.RouterLink{}, false
		}
		return ospf2.RouterLink{
			Type:     ospf2.LinkStub,
			LinkID:   networkID(ps.address),
			LinkData: maskID(ps.address),
			Metric:   ps.peer.Config.Cost,
		}, true
	default: // area.NoLink
		return ospf2.RouterLink{}, false
	}
}

// installSelfOriginated assigns the next sequence number for key and
// installs the freshly built body as this router's own LSA instance,
// reflooding it only if the encoded result actually changed, RFC 2328
// §12.4's "only originate a new instance when content changes" guidance.
func (r *Router) installSelfOriginated(as *areaState, key ospfid.Key, body ospf2.LSABody) {
	seq, ok := as.area.Database().NextSequence(key)
	if !ok {
		// Sequence space exhausted: flush at MaxAge and let the next tick
		// re-originate at InitialSequenceNumber once the flush is acked.
		r.floodMaxAge(as, key)
		return
	}

	lsa := &ospf2.LSA{
		Header: ospf2.LSAHeader{ID: ospf2.LSAID{LinkStateID: key.LinkStateID, AdvertisingRouter: key.AdvertisingRouter}, SequenceNumber: seq},
		Body:   body,
	}
	raw, err := lsa.Marshal()
	if err != nil {
		return
	}

	if existing, ok := as.area.Database().Lookup(key); ok && bodyUnchanged(existing.Raw, raw) {
		return
	}

	as.area.Install(&lsdb.Entry{
		Key:            key,
		SequenceNumber: seq,
		Checksum:       lsa.Header.Checksum,
		Raw:            raw,
		SelfOriginated: true,
	}, 0)
	as.engine.Trigger()
	r.floodToOthers(as, "", raw)
}

// refreshSelfOriginated re-originates e verbatim with the next sequence
// number, RFC 2328 §12.4's LSRefreshTime handling, preventing the instance
// from reaching MaxAge while this router is still up.
func (r *Router) refreshSelfOriginated(as *areaState, e *lsdb.Entry) {
	lsa, err := ospf2.ParseLSA(e.Raw)
	if err != nil {
		return
	}
	r.installSelfOriginated(as, e.Key, lsa.Body)
}

// bodyUnchanged compares two encoded LSAs ignoring their Age and sequence
// number/checksum fields, the bytes that legitimately differ between two
// instances that otherwise describe the same topology.
func bodyUnchanged(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch {
		case i < 2: // Age
			continue
		case i >= 12 && i < 18: // SequenceNumber, Checksum
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func addressID(n *net.IPNet) ospfid.ID {
	if n == nil {
		return ospfid.ID{}
	}
	var id ospfid.ID
	copy(id[:], n.IP.To4())
	return id
}

func networkID(n *net.IPNet) ospfid.ID {
	var id ospfid.ID
	copy(id[:], n.IP.Mask(n.Mask).To4())
	return id
}

func maskID(n *net.IPNet) ospfid.ID {
	var id ospfid.ID
	copy(id[:], net.IP(n.Mask).To4())
	return id
}
