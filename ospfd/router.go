package ospfd

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdlayher/ospfd/area"
	"github.com/mdlayher/ospfd/hostio"
	"github.com/mdlayher/ospfd/management"
	"github.com/mdlayher/ospfd/metrics"
	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/peer"
	"github.com/mdlayher/ospfd/policy"
	"github.com/mdlayher/ospfd/ribclient"
	"github.com/mdlayher/ospfd/routing"
)

// Errors returned by Router's area/peer management operations, surfaced
// through management.Surface per §7's "configuration error" row: rejected,
// never applied, no running-state change.
var (
	ErrAreaExists    = errors.New("ospfd: area already exists")
	ErrAreaNotFound  = errors.New("ospfd: area not found")
	ErrPeerExists    = errors.New("ospfd: peer already exists")
	ErrPeerNotFound  = errors.New("ospfd: peer not found")
	ErrRouterRunning = errors.New("ospfd: operation not permitted while running")
)

// A Transport sends and receives raw OSPF datagrams on one interface.
// hostio.Conn satisfies this directly; tests substitute an in-memory fake.
type Transport interface {
	ReadFrom() (hostio.Packet, error)
	WriteTo(b []byte, dst *net.IPAddr) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// Config holds the parameters a Router is constructed with.
type Config struct {
	RouterID ospfid.ID

	// RFC1583Compat and ECMPMax configure every area's routing.Engine
	// identically, RFC 2328 §16.2/§16.1.
	RFC1583Compat bool
	ECMPMax       int

	// SpfDelayInitial and SpfDelayMax set every area's SPF holddown, RFC
	// 2328 §16's implementation notes.
	SpfDelayInitial, SpfDelayMax time.Duration

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	RIB     ribclient.Client
	Policy  policy.Filter
}

func (c *Config) setDefaults() {
	if c.ECMPMax < 1 {
		c.ECMPMax = 1
	}
	if c.SpfDelayInitial <= 0 {
		c.SpfDelayInitial = 100 * time.Millisecond
	}
	if c.SpfDelayMax <= 0 {
		c.SpfDelayMax = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NullMetrics()
	}
	if c.RIB == nil {
		c.RIB = ribclient.NoOp{}
	}
	if c.Policy == nil {
		c.Policy = policy.AcceptAll{}
	}
}

// An areaState bundles one configured Area with its attached Peers and its
// own routing.Engine, RFC 2328 §4's "run SPF per area" structure.
type areaState struct {
	area   *area.Area
	peers  map[string]*peerState // keyed by Config.IfName
	engine *routing.Engine

	// nextPeerSeq assigns small locally-unique PeerIDs within this area,
	// encoded as an ospfid.ID the way peer.Peer.ID already expects.
	nextPeerSeq uint32

	// flushing holds the keys currently in the RFC 2328 §14 premature-aging
	// flush sequence: reflooded at MaxAge by floodMaxAge, awaiting removal
	// by reapFlushed once no neighbor still has them outstanding.
	flushing map[ospfid.Key]struct{}
}

// A peerState bundles one configured Peer with the Transport it sends and
// receives datagrams on.
type peerState struct {
	areaID    ospfid.ID
	peer      *peer.Peer
	transport Transport
	log       logrus.FieldLogger

	// address is this interface's own local address and subnet, used to
	// originate Router-LSA stub/transit links and as the Hello source
	// identity. Nil for a Peer configured without a known local address
	// (e.g. one reachable only through the management surface, see
	// management_adapter.go); such a Peer sends no traffic.
	address *net.IPNet

	// nextHello is the wall-clock time the next Hello is due on this
	// interface.
	nextHello time.Time

	// nextRxmt is the wall-clock time this interface's neighbors are next
	// due a re-flood of their outstanding link-state retransmission list,
	// RFC 2328 §13.3.
	nextRxmt time.Time

	// ifID is this interface's routing.NextHop.InterfaceID, a locally
	// assigned opaque handle the routing engine never interprets; the
	// routing bridge maps it back to ifName/address when translating a
	// computed Route into a ribclient.Route.
	ifID uint32

	// authKeys holds this interface's configured authentication keys,
	// keyed by ID, RFC 2328 appendix D.3. Empty means NoAuth.
	authKeys map[uint8]management.AuthKey
	// cryptoSeq is the monotonically increasing CryptographicMD5 sequence
	// number for packets this router originates on this interface.
	cryptoSeq uint32
}

// Router is the top-level value wiring together every configured Area and
// Peer, the external collaborators (RIB, policy, metrics), and the single
// event loop that drives all of them, §5's "single root value created at
// startup".
type Router struct {
	cfg Config

	mu      sync.Mutex
	status  Status
	areas   map[ospfid.ID]*areaState
	events  chan inboundEvent
	running bool

	// virtualLinks and originateDefault hold configuration accepted
	// through the management surface, RFC 2328 §15 and the AS-External
	// default-route origination knob management.Surface exposes. Neither
	// is dynamically acted on yet: a virtual link's far-end address must
	// be resolved through intra-area SPF before a transient unicast Peer
	// can be attached for it, and default origination requires an
	// AS-External-LSA origination path this Router does not build.
	virtualLinks     map[management.VirtualLink]bool
	originateDefault management.OriginateDefault
}

// New returns a Router in status Startup, ready to have areas and peers
// configured before Run is called.
func New(cfg Config) *Router {
	cfg.setDefaults()
	return &Router{
		cfg:          cfg,
		status:       Startup,
		areas:        make(map[ospfid.ID]*areaState),
		events:       make(chan inboundEvent, 64),
		virtualLinks: make(map[management.VirtualLink]bool),
	}
}

// Status returns the Router's current management-visible lifecycle state.
func (r *Router) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Router) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

// CreateArea configures a new Area. It fails if one with the same ID
// already exists, or if the Router is already running (areas are
// configured before Run per §5's "no operation blocks the loop" model —
// adding one live is future work, not yet wired).
func (r *Router) CreateArea(cfg area.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[cfg.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAreaExists, cfg.ID)
	}
	if r.running {
		return ErrRouterRunning
	}

	as := &areaState{
		area:  area.New(cfg),
		peers: make(map[string]*peerState),
	}
	as.engine = r.newEngine(cfg.ID, as)
	r.areas[cfg.ID] = as
	return nil
}

// DestroyArea removes a configured Area and every Peer attached to it.
func (r *Router) DestroyArea(id ospfid.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[id]; !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, id)
	}
	delete(r.areas, id)
	return nil
}

// ListAreas returns the configured area IDs, in no particular order.
func (r *Router) ListAreas() []ospfid.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]ospfid.ID, 0, len(r.areas))
	for id := range r.areas {
		ids = append(ids, id)
	}
	return ids
}

// CreatePeer attaches a new Peer to areaID, sending and receiving over
// transport. The Peer starts Down; Run's event loop brings it up once
// started.
func (r *Router) CreatePeer(areaID ospfid.ID, cfg peer.Config, transport Transport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	if _, ok := as.peers[cfg.IfName]; ok {
		return fmt.Errorf("%w: %s", ErrPeerExists, cfg.IfName)
	}

	as.nextPeerSeq++
	var id ospfid.ID
	id[3] = byte(as.nextPeerSeq)
	id[2] = byte(as.nextPeerSeq >> 8)

	as.peers[cfg.IfName] = &peerState{
		areaID:    areaID,
		peer:      peer.New(id, cfg),
		transport: transport,
		log:       r.cfg.Logger.WithField("peer", cfg.IfName),
		ifID:      as.nextPeerSeq,
	}
	return nil
}

// CreatePeerWithAddress is CreatePeer plus the interface's local address,
// needed for Router-LSA stub/transit link origination and as the Hello
// source identity. Peers configured through the plain management.Surface
// (which has no notion of host-level addressing) fall back to CreatePeer
// and originate no traffic of their own until attached this way.
func (r *Router) CreatePeerWithAddress(areaID ospfid.ID, cfg peer.Config, transport Transport, address *net.IPNet) error {
	if err := r.CreatePeer(areaID, cfg, transport); err != nil {
		return err
	}
	r.mu.Lock()
	r.areas[areaID].peers[cfg.IfName].address = address
	r.mu.Unlock()
	return nil
}

// DestroyPeer removes a configured Peer, closing its transport.
func (r *Router) DestroyPeer(areaID ospfid.ID, ifName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	ps, ok := as.peers[ifName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPeerNotFound, ifName)
	}
	delete(as.peers, ifName)
	if ps.transport == nil {
		return nil
	}
	return ps.transport.Close()
}

// SetPeerParameters replaces the configuration of an existing Peer, RFC
// 2328 §C.3's tunables. The Peer itself is recreated in state Down so the
// FSM does not carry over assumptions (e.g. DR/BDR) made under the old
// parameters.
func (r *Router) SetPeerParameters(areaID ospfid.ID, ifName string, cfg peer.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	ps, ok := as.peers[ifName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPeerNotFound, ifName)
	}
	ps.peer = peer.New(ps.peer.ID, cfg)
	return nil
}

// SetAreaType changes areaID's Type, governing which LSA types may flood
// into it (RFC 2328 §3.6).
func (r *Router) SetAreaType(id ospfid.ID, t area.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, id)
	}
	as.area.Type = t
	return nil
}

// SetStubDefaultCost changes the cost areaID's ABRs advertise for the
// implied default route into a stub area, RFC 2328 §12.4.3.
func (r *Router) SetStubDefaultCost(id ospfid.ID, cost uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, id)
	}
	as.area.StubDefaultCost = cost
	return nil
}

// SetSummaries toggles whether Summary-LSAs are imported into areaID, RFC
// 2328 §3.6's "totally stubby" variant.
func (r *Router) SetSummaries(id ospfid.ID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, id)
	}
	as.area.Summaries = enabled
	return nil
}

// SetAuthKey installs or replaces one authentication key on areaID/ifName,
// RFC 2328 appendix D.3. An interface with at least one key configured
// requires CryptographicMD5 on every packet it accepts; one with none
// accepts NoAuth.
func (r *Router) SetAuthKey(areaID ospfid.ID, ifName string, key management.AuthKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	ps, ok := as.peers[ifName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPeerNotFound, ifName)
	}
	if ps.authKeys == nil {
		ps.authKeys = make(map[uint8]management.AuthKey)
	}
	ps.authKeys[key.ID] = key
	return nil
}

// AddVirtualLink records a configured virtual link, RFC 2328 §15. Actually
// attaching the transient unicast Peer a virtual link needs requires
// resolving the remote ABR's address through intra-area SPF; that
// resolution is not yet performed, so the link is recorded but inactive.
func (r *Router) AddVirtualLink(vl management.VirtualLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.virtualLinks[vl] = true
	return nil
}

// RemoveVirtualLink removes a previously configured virtual link.
func (r *Router) RemoveVirtualLink(vl management.VirtualLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.virtualLinks, vl)
	return nil
}

// SetOriginateDefault configures whether and how this router originates a
// default route as an AS-External-LSA. Recorded for the management surface;
// this Router does not yet build AS-External-LSAs itself.
func (r *Router) SetOriginateDefault(cfg management.OriginateDefault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.originateDefault = cfg
	return nil
}

// AddAreaRange configures one address range on areaID, RFC 2328 §12.4.3.
func (r *Router) AddAreaRange(areaID ospfid.ID, prefix *net.IPNet, advertise bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	as.area.AddRange(prefix, advertise)
	return nil
}

// RemoveAreaRange removes a previously configured address range.
func (r *Router) RemoveAreaRange(areaID ospfid.ID, prefix *net.IPNet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	as.area.RemoveRange(prefix)
	return nil
}

// ClearDatabase removes every LSA from areaID's database, the XORP
// clear_database.cc operation's typed equivalent (§6 management surface).
func (r *Router) ClearDatabase(areaID ospfid.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAreaNotFound, areaID)
	}
	for _, e := range as.area.Database().Iterate() {
		as.area.Database().Remove(e.Key)
	}
	return nil
}

// ListNeighbors returns a summary of every Neighbor known on ifName within
// areaID.
func (r *Router) ListNeighbors(areaID ospfid.ID, ifName string) []management.NeighborSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return nil
	}
	ps, ok := as.peers[ifName]
	if !ok {
		return nil
	}

	dr, bdr := ps.peer.DRBDR()
	var out []management.NeighborSummary
	for _, n := range ps.peer.Neighbors() {
		out = append(out, management.NeighborSummary{
			ID:       n.ID,
			Address:  n.Address,
			State:    n.State().String(),
			Priority: n.Priority(),
			DR:       dr,
			BDR:      bdr,
		})
	}
	return out
}

// ListLSAs returns a header-only summary of every LSA in areaID's database.
func (r *Router) ListLSAs(areaID ospfid.ID) []management.LSASummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return nil
	}

	var out []management.LSASummary
	for _, e := range as.area.Database().Iterate() {
		out = append(out, management.LSASummary{
			Key:            e.Key,
			SequenceNumber: e.SequenceNumber,
			Checksum:       e.Checksum,
			Age:            e.Age,
			Length:         len(e.Raw),
		})
	}
	return out
}

// lookupPeer returns the areaState and peerState for (areaID, ifName),
// holding no lock on return (callers are expected to be single-threaded
// event-loop code, not concurrent API callers).
func (r *Router) lookupPeer(areaID ospfid.ID, ifName string) (*areaState, *peerState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	as, ok := r.areas[areaID]
	if !ok {
		return nil, nil
	}
	ps, ok := as.peers[ifName]
	if !ok {
		return nil, nil
	}
	return as, ps
}
