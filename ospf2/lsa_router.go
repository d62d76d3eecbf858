package ospf2

import (
	"encoding/binary"
	"fmt"
)

// RouterLSAFlags are the V/E/B bits carried in an OSPFv2 Router-LSA, RFC
// 2328 appendix A.4.2.
type RouterLSAFlags uint8

// Possible RouterLSAFlags bits.
const (
	RouterFlagB RouterLSAFlags = 1 << 0 // area border router
	RouterFlagE RouterLSAFlags = 1 << 1 // AS boundary router
	RouterFlagV RouterLSAFlags = 1 << 2 // virtual link endpoint
)

// RouterLinkType identifies the kind of router-link entry within a Router
// LSA, RFC 2328 appendix A.4.2.
type RouterLinkType uint8

// Possible RouterLinkType values.
const (
	LinkPointToPoint RouterLinkType = 1
	LinkTransit      RouterLinkType = 2
	LinkStub         RouterLinkType = 3
	LinkVirtual      RouterLinkType = 4
)

// A RouterLink is one router-link entry in a Router LSA. LinkID and LinkData
// are interpreted according to Type: for a Stub link, LinkID is a network
// number and LinkData is the network mask; otherwise LinkID identifies the
// neighboring router or designated router and LinkData is the originator's
// interface address or index.
type RouterLink struct {
	Type     RouterLinkType
	LinkID   ID
	LinkData ID
	Metric   uint16

	// NumTOS is always encoded as zero; this codec does not support the
	// obsolete TOS-metric extension.
}

const routerLinkLen = 12

func (l RouterLink) marshal(b []byte) {
	copy(b[0:4], l.LinkID[:])
	copy(b[4:8], l.LinkData[:])
	b[8] = byte(l.Type)
	b[9] = 0 // # TOS, always 0
	binary.BigEndian.PutUint16(b[10:12], l.Metric)
}

func parseRouterLink(b []byte) RouterLink {
	l := RouterLink{
		Type:   RouterLinkType(b[8]),
		Metric: binary.BigEndian.Uint16(b[10:12]),
	}
	copy(l.LinkID[:], b[0:4])
	copy(l.LinkData[:], b[4:8])
	return l
}

// Router is an OSPFv2 Router-LSA body, RFC 2328 appendix A.4.2. It lists
// exactly the enabled router-links in the originating area at the instant
// of origination. Options are not repeated here; they are carried once in
// the enclosing LSAHeader.
type Router struct {
	Flags RouterLSAFlags
	Links []RouterLink
}

func (r *Router) len() int { return 4 + routerLinkLen*len(r.Links) }

func (r *Router) marshal(b []byte) error {
	b[0] = byte(r.Flags)
	b[1] = 0 // reserved
	binary.BigEndian.PutUint16(b[2:4], uint16(len(r.Links)))
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

	count := int(binary.BigEndian.Uint16(b[2:4]))
	rest := b[4:]
	if len(rest) != routerLinkLen*count {
		return fmt.Errorf("Router LSA declares %d links but has %d bytes, want %d: %w",
			count, len(rest), routerLinkLen*count, errParse)
	}

	r.Links = make([]RouterLink, 0, count)
	for i := 0; i < count; i++ {
		off := i * routerLinkLen
		r.Links = append(r.Links, parseRouterLink(rest[off:off+routerLinkLen]))
	}
	return nil
}
