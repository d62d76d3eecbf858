package ospf3

import (
	"encoding/binary"
	"fmt"
)

// RouterLSAFlags are the V/E/B bits carried in a Router LSA, RFC5340 §A.4.3.
type RouterLSAFlags uint8

// Possible RouterLSAFlags bits.
const (
	RouterFlagB RouterLSAFlags = 1 << 0 // area border router
	RouterFlagE RouterLSAFlags = 1 << 1 // AS boundary router
	RouterFlagV RouterLSAFlags = 1 << 2 // virtual link endpoint
)

// RouterLinkType identifies the kind of router-link entry within a Router
// LSA, RFC5340 §A.4.3.1.
type RouterLinkType uint8

// Possible RouterLinkType values.
const (
	LinkPointToPoint RouterLinkType = 1
	LinkTransit      RouterLinkType = 2
	LinkVirtual      RouterLinkType = 4
)

// A RouterLink is one router-link entry in a Router LSA.
type RouterLink struct {
	Type                RouterLinkType
	Metric              uint16
	InterfaceID         ID
	NeighborInterfaceID ID
	NeighborRouterID    ID
}

const routerLinkLen = 16

func (l RouterLink) marshal(b []byte) {
	b[0] = byte(l.Type)
	b[1] = 0 // reserved
	binary.BigEndian.PutUint16(b[2:4], l.Metric)
	copy(b[4:8], l.InterfaceID[:])
	copy(b[8:12], l.NeighborInterfaceID[:])
	copy(b[12:16], l.NeighborRouterID[:])
}

func parseRouterLink(b []byte) RouterLink {
	l := RouterLink{
		Type:   RouterLinkType(b[0]),
		Metric: binary.BigEndian.Uint16(b[2:4]),
	}
	copy(l.InterfaceID[:], b[4:8])
	copy(l.NeighborInterfaceID[:], b[8:12])
	copy(l.NeighborRouterID[:], b[12:16])
	return l
}

// Router is an OSPFv3 Router-LSA body, RFC5340 §A.4.3. It lists exactly the
// enabled router-links in the originating area at the instant of
// origination, per spec invariant.
type Router struct {
	Flags   RouterLSAFlags
	Options Options
	Links   []RouterLink
}

func (r *Router) len() int { return 4 + routerLinkLen*len(r.Links) }

func (r *Router) marshal(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Flags)<<24|uint32(r.Options))
	off := 4
	for _, l := range r.Links {
		l.marshal(b[off : off+routerLinkLen])
		off += routerLinkLen
	}
	return nil
}

func (r *Router) unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("not enough bytes for Router LSA: %d: %w", len(b), errParse)
	}
	r.Flags = RouterLSAFlags(b[0])
	r.Options = options(b[0:4])

	rest := b[4:]
	if len(rest)%routerLinkLen != 0 {
		return fmt.Errorf("Router LSA link array must end on a %d byte boundary, got %d bytes: %w",
			routerLinkLen, len(rest), errParse)
	}

	n := len(rest) / routerLinkLen
	r.Links = make([]RouterLink, 0, n)
	for i := 0; i < n; i++ {
		off := i * routerLinkLen
		r.Links = append(r.Links, parseRouterLink(rest[off:off+routerLinkLen]))
	}
	return nil
}
