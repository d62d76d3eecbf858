package ospfd

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/hostio"
	"github.com/mdlayher/ospfd/lsdb"
	"github.com/mdlayher/ospfd/metrics"
	"github.com/mdlayher/ospfd/neighbor"
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
)

// An inboundEvent is one received datagram, deserialized by a peer's
// readLoop goroutine and handed to the single eventLoop goroutine that owns
// all protocol state mutation.
type inboundEvent struct {
	areaID ospfid.ID
	ifName string
	pkt    hostio.Packet
}

// Run starts every configured Peer's readLoop and the event/tick loops, and
// blocks until ctx is cancelled or an unrecoverable error occurs. Run must
// be called after all areas and peers are configured; Peer/Area CRUD is not
// safe to call concurrently with Run.
func (r *Router) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRouterRunning
	}
	r.running = true
	r.setStatus(Ready)
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)

	r.mu.Lock()
	for areaID, as := range r.areas {
		for ifName, ps := range as.peers {
			areaID, ifName, ps := areaID, ifName, ps
			g.Go(func() error {
				return r.readLoop(ctx, areaID, ifName, ps)
			})
			ps.peer.Handle(peer.InterfaceUp)
		}
	}
	r.mu.Unlock()

	g.Go(func() error {
		r.eventLoop(ctx)
		return nil
	})
	g.Go(func() error {
		r.tickLoop(ctx)
		return nil
	})

	err := g.Wait()
	r.setStatus(ShuttingDown)
	return err
}

// readLoop blocks on transport.ReadFrom, doing nothing but deserialization:
// per §5's concurrency model, no protocol state is touched outside the
// event loop goroutine.
func (r *Router) readLoop(ctx context.Context, areaID ospfid.ID, ifName string, ps *peerState) error {
	for {
		if err := ps.transport.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			return fmt.Errorf("ospfd: set read deadline on %s: %w", ifName, err)
		}

		pkt, err := ps.transport.ReadFrom()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// §7: I/O failure on receive is logged and relied on
			// retransmission to paper over; it never tears down the loop.
			ps.log.WithError(err).Warn("read error")
			r.cfg.Metrics.RecordError(metrics.ErrIO, ifName)
			continue
		}

		select {
		case r.events <- inboundEvent{areaID: areaID, ifName: ifName, pkt: pkt}:
		case <-ctx.Done():
			return nil
		}
	}
}

// eventLoop is the single goroutine that performs every protocol state
// mutation, draining r.events in arrival order. Packets for different
// interfaces may interleave; packets for the same interface never do, since
// readLoop enqueues them in the order ReadFrom returned them and eventLoop
// drains strictly one at a time.
func (r *Router) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			r.dispatch(ev)
		}
	}
}

// tickLoop drives the once-per-second bookkeeping RFC 2328 describes
// out-of-band from packet receipt: LSDB aging and self-originated LSA
// refresh.
func (r *Router) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.sendHellosDue(now)
			r.retransmitDue(now)
			r.ageAndRefresh()
		}
	}
}

// retransmitDue re-floods, per interface, every neighbor's outstanding
// link-state retransmission list once RxmtInterval has elapsed since the
// last pass, RFC 2328 §13.3.
func (r *Router) retransmitDue(now time.Time) {
	r.mu.Lock()
	var due []*peerState
	for _, as := range r.areas {
		for _, ps := range as.peers {
			if now.After(ps.nextRxmt) {
				ps.nextRxmt = now.Add(ps.peer.Config.RxmtInterval)
				due = append(due, ps)
			}
		}
	}
	r.mu.Unlock()

	for _, ps := range due {
		r.retransmitPeer(ps)
	}
}

// retransmitPeer re-sends, for every neighbor on ps, every LSA still
// outstanding on that neighbor's link-state retransmission list. An LSA
// stays there until an explicit LSAck or an implicit ack (a newer flood-back)
// removes it, RFC 2328 §13.3.
func (r *Router) retransmitPeer(ps *peerState) {
	for _, n := range ps.peer.Neighbors() {
		pending := n.Retransmissions()
		if len(pending) == 0 {
			continue
		}

		lsas := make([]*ospf2.LSA, 0, len(pending))
		for _, raw := range pending {
			lsa, err := ospf2.ParseLSA(raw)
			if err != nil {
				continue
			}
			lsas = append(lsas, lsa)
		}
		if len(lsas) == 0 {
			continue
		}

		r.sendLSU(ps, n, lsas)
		r.cfg.Metrics.RecordRetransmit(ps.peer.Config.IfName)
	}
}

// ageAndRefresh advances every area's database age by one second, reflooding
// any self-originated LSA whose SinceInstall has crossed LSRefreshTime and
// driving the RFC 2328 §14 flush sequence for any LSA that has reached
// MaxAge: reflood at MaxAge, then remove once every neighbor's
// retransmission list has cleared it.
func (r *Router) ageAndRefresh() {
	r.mu.Lock()
	areas := make([]*areaState, 0, len(r.areas))
	for _, as := range r.areas {
		areas = append(areas, as)
	}
	r.mu.Unlock()

	for _, as := range areas {
		r.originateRouterLSA(as)
		r.originateNetworkLSAs(as)

		// Reap flushes begun on earlier passes before starting new ones,
		// so an LSA reflooded at MaxAge stays stored for at least one pass.
		r.reapFlushed(as)
		for _, key := range as.area.Database().AgeTick(time.Second) {
			r.floodMaxAge(as, key)
		}

		for _, e := range as.area.Database().Iterate() {
			if e.SelfOriginated && e.SinceInstall() >= ospfid.LSRefreshTime {
				r.refreshSelfOriginated(as, e)
			}
		}
	}

	r.originateSummaries()
}

// dispatch decodes one inboundEvent with the OSPFv2 codec and routes it to
// the matching per-packet-type handler.
func (r *Router) dispatch(ev inboundEvent) {
	as, ps := r.lookupPeer(ev.areaID, ev.ifName)
	if as == nil || ps == nil {
		return
	}

	if !ps.verifyAuth(ev.pkt.Payload) {
		ps.log.Debug("authentication failed")
		r.cfg.Metrics.RecordError(metrics.ErrMalformedPacket, ev.ifName)
		return
	}

	msg, err := ospf2.ParseMessage(ev.pkt.Payload)
	if err != nil {
		ps.log.WithError(err).Debug("malformed packet")
		r.cfg.Metrics.RecordError(metrics.ErrMalformedPacket, ev.ifName)
		return
	}

	switch m := msg.(type) {
	case *ospf2.Hello:
		r.cfg.Metrics.RecordRx(ev.ifName, "Hello")
		r.handleHello(as, ps, m, ev.pkt.Src)
	case *ospf2.DatabaseDescription:
		r.cfg.Metrics.RecordRx(ev.ifName, "DatabaseDescription")
		r.handleDD(as, ps, m)
	case *ospf2.LinkStateRequest:
		r.cfg.Metrics.RecordRx(ev.ifName, "LinkStateRequest")
		r.handleLSR(as, ps, m)
	case *ospf2.LinkStateUpdate:
		r.cfg.Metrics.RecordRx(ev.ifName, "LinkStateUpdate")
		r.handleLSU(as, ps, m)
	case *ospf2.LinkStateAcknowledgement:
		r.cfg.Metrics.RecordRx(ev.ifName, "LinkStateAcknowledgement")
		r.handleLSAck(ps, m)
	}
}

// handleHello processes a received Hello, RFC 2328 §10.5: it records the
// neighbor's declared state, drives the Neighbor FSM, and re-runs interface
// DR/BDR election when the neighbor set may have changed.
func (r *Router) handleHello(as *areaState, ps *peerState, h *ospf2.Hello, src net.IP) {
	n := ps.peer.Neighbor(h.Header.RouterID, src.String())

	events := n.ReceiveHello(neighbor.HelloInfo{
		Priority: h.RouterPriority,
		DR:       h.DesignatedRouterID,
		BDR:      h.BackupDesignatedRouterID,
		Options:  uint32(h.Options),
	}, h.ListsNeighbor(r.cfg.RouterID))

	for _, e := range events {
		before := n.State()
		after := n.Handle(e)
		if before != after {
			r.cfg.Metrics.RecordNeighborStateChange(ps.peer.Config.IfName, after.String())
		}
	}

	ps.peer.Handle(peer.NeighborChange)
	r.originateRouterLSA(as)
	r.originateNetworkLSAs(as)
}

// handleDD processes a received Database Description packet, RFC 2328
// §10.6/§10.8: at ExStart it runs master/slave negotiation; in Exchange it
// records the peer's summary into this neighbor's link-state request list
// for every LSA we lack or hold a stale copy of.
func (r *Router) handleDD(as *areaState, ps *peerState, dd *ospf2.DatabaseDescription) {
	n := ps.peer.Neighbor(dd.Header.RouterID, "")
	if n.State() < neighbor.ExStart {
		return
	}

	if n.State() == neighbor.ExStart {
		higher := r.cfg.RouterID.Less(dd.Header.RouterID)
		n.BeginExchange(!higher, dd.SequenceNumber)
		n.Handle(neighbor.NegotiationDone)
	}

	var missing []ospfid.Key
	for _, h := range dd.LSAs {
		key := ospfid.Key{
			Type:              uint16(h.ID.Type),
			LinkStateID:       h.ID.LinkStateID,
			AdvertisingRouter: h.ID.AdvertisingRouter,
		}
		existing, ok := as.area.Database().Lookup(key)
		if !ok || ospfid.Newer(h.SequenceNumber, existing.SequenceNumber, h.Checksum, existing.Checksum, h.Age, existing.Age) {
			missing = append(missing, key)
		}
	}
	n.SetRequest(missing)

	if dd.Flags&ospf2.MBit == 0 && n.SummaryRemaining() == 0 {
		if len(n.Requests()) == 0 {
			n.Handle(neighbor.LoadingDone)
		} else {
			n.Handle(neighbor.ExchangeDone)
		}
	}
}

// handleLSR processes a received Link State Request, RFC 2328 §10.7/§10.9:
// every requested LSA present in the database is sent back as a Link State
// Update; a request for an LSA we no longer hold indicates the requester's
// view has diverged and its adjacency is torn down to resynchronize.
func (r *Router) handleLSR(as *areaState, ps *peerState, lsr *ospf2.LinkStateRequest) {
	n := ps.peer.Neighbor(lsr.Header.RouterID, "")

	var lsas []*ospf2.LSA
	for _, id := range lsr.LSAs {
		key := ospfid.Key{Type: uint16(id.Type), LinkStateID: id.LinkStateID, AdvertisingRouter: id.AdvertisingRouter}
		e, ok := as.area.Database().Lookup(key)
		if !ok {
			n.Handle(neighbor.BadLSReq)
			return
		}
		lsa, err := ospf2.ParseLSA(e.Raw)
		if err != nil {
			continue
		}
		lsas = append(lsas, lsa)
	}
	if len(lsas) == 0 {
		return
	}

	r.sendLSU(ps, n, lsas)
}

// handleLSU processes a received Link State Update, RFC 2328 §13: each
// carried LSA is run through the area's accept/install decision, installed
// or re-sent as appropriate, and removed from the sending neighbor's
// link-state request list.
func (r *Router) handleLSU(as *areaState, ps *peerState, lsu *ospf2.LinkStateUpdate) {
	n := ps.peer.Neighbor(lsu.Header.RouterID, "")

	for _, lsa := range lsu.LSAs {
		key := ospfid.Key{
			Type:              uint16(lsa.Header.ID.Type),
			LinkStateID:       lsa.Header.ID.LinkStateID,
			AdvertisingRouter: lsa.Header.ID.AdvertisingRouter,
		}

		raw, err := lsa.Marshal()
		if err != nil {
			continue
		}

		decision, existing := as.area.Accept(key, ospf2.ChecksumValid(raw), true, lsa.Header.SequenceNumber, lsa.Header.Checksum, lsa.Header.Age)
		switch decision {
		case area.Reject:
			r.cfg.Metrics.RecordError(metrics.ErrMalformedPacket, ps.peer.Config.IfName)
		case area.ImplicitAck:
			r.cfg.Metrics.RecordFloodImplicitAck(ps.peer.Config.IfName)
			n.RemoveRetransmit(key)
		case area.SendBack:
			if existing != nil {
				if existingLSA, err := ospf2.ParseLSA(existing.Raw); err == nil {
					r.sendLSU(ps, n, []*ospf2.LSA{existingLSA})
				}
			}
		case area.Install:
			as.area.Install(&lsdb.Entry{
				Key:            key,
				SequenceNumber: lsa.Header.SequenceNumber,
				Checksum:       lsa.Header.Checksum,
				Raw:            raw,
				SelfOriginated: lsa.Header.ID.AdvertisingRouter == r.cfg.RouterID,
			}, lsa.Header.Age)
			if empty := n.RemoveRequest(key); empty && n.State() == neighbor.Loading {
				n.Handle(neighbor.LoadingDone)
			}
			as.engine.Trigger()
			r.floodToOthers(as, ps.peer.Config.IfName, raw)
		}
	}

	r.ackLSU(ps, lsu)
}

// handleLSAck processes a received Link State Acknowledgement, RFC 2328
// §13.7: each acknowledged LSA is cleared from the sending neighbor's
// retransmission list.
func (r *Router) handleLSAck(ps *peerState, ack *ospf2.LinkStateAcknowledgement) {
	n := ps.peer.Neighbor(ack.Header.RouterID, "")
	for _, h := range ack.LSAs {
		key := ospfid.Key{Type: uint16(h.ID.Type), LinkStateID: h.ID.LinkStateID, AdvertisingRouter: h.ID.AdvertisingRouter}
		n.RemoveRetransmit(key)
	}
}

// sendLSU encodes and sends a Link State Update carrying lsas to n, and
// places each one on n's retransmission list until acknowledged.
func (r *Router) sendLSU(ps *peerState, n *neighbor.Neighbor, lsas []*ospf2.LSA) {
	hdr, sign := r.authHeader(ps)
	lsu := &ospf2.LinkStateUpdate{Header: hdr, LSAs: lsas}
	b, err := ospf2.MarshalMessage(lsu)
	if err != nil {
		return
	}
	b = sign(b)
	if err := ps.transport.WriteTo(b, &net.IPAddr{IP: net.ParseIP(n.Address)}); err != nil {
		r.cfg.Metrics.RecordError(metrics.ErrIO, ps.peer.Config.IfName)
		return
	}
	r.cfg.Metrics.RecordTx(ps.peer.Config.IfName, "LinkStateUpdate")

	for _, lsa := range lsas {
		raw, err := lsa.Marshal()
		if err != nil {
			continue
		}
		key := ospfid.Key{Type: uint16(lsa.Header.ID.Type), LinkStateID: lsa.Header.ID.LinkStateID, AdvertisingRouter: lsa.Header.ID.AdvertisingRouter}
		n.AddRetransmit(key, raw)
	}
}

// ackLSU sends a Link State Acknowledgement covering every LSA carried in
// lsu, RFC 2328 §13.5's "direct acknowledgement" path.
func (r *Router) ackLSU(ps *peerState, lsu *ospf2.LinkStateUpdate) {
	headers := make([]ospf2.LSAHeader, 0, len(lsu.LSAs))
	for _, lsa := range lsu.LSAs {
		headers = append(headers, lsa.Header)
	}

	hdr, sign := r.authHeader(ps)
	ack := &ospf2.LinkStateAcknowledgement{Header: hdr, LSAs: headers}
	b, err := ospf2.MarshalMessage(ack)
	if err != nil {
		return
	}
	b = sign(b)
	if err := ps.transport.WriteTo(b, hostio.AllSPFRouters4); err != nil {
		r.cfg.Metrics.RecordError(metrics.ErrIO, ps.peer.Config.IfName)
		return
	}
	r.cfg.Metrics.RecordTx(ps.peer.Config.IfName, "LinkStateAcknowledgement")
}

// floodToOthers reflloods raw to every Full neighbor on every peer in as
// other than the interface it arrived on, RFC 2328 §13.3's flooding
// procedure.
func (r *Router) floodToOthers(as *areaState, arrivedOn string, raw []byte) {
	r.mu.Lock()
	peers := make([]*peerState, 0, len(as.peers))
	for ifName, ps := range as.peers {
		if ifName != arrivedOn {
			peers = append(peers, ps)
		}
	}
	r.mu.Unlock()

	lsa, err := ospf2.ParseLSA(raw)
	if err != nil {
		return
	}

	for _, ps := range peers {
		for _, n := range ps.peer.Neighbors() {
			if n.State() < neighbor.Exchange {
				continue
			}
			r.sendLSU(ps, n, []*ospf2.LSA{lsa})
		}
	}
}
