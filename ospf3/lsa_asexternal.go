package ospf3

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ASExternalFlags are the E/F/T bits of an AS-External-LSA (also reused,
// per RFC5340 §A.4.7, for the area-scoped NSSA Type-7 variant).
type ASExternalFlags uint8

// Possible ASExternalFlags bits.
const (
	ASExternalFlagE ASExternalFlags = 1 << 0 // metric type 2 (external)
	ASExternalFlagF ASExternalFlags = 1 << 1 // forwarding address present
	ASExternalFlagT ASExternalFlags = 1 << 2 // external route tag present
)

// ASExternal is an OSPFv3 AS-External-LSA body (RFC5340 §A.4.7). The same
// layout, under LSType NSSALSA, encodes an NSSA Type-7-LSA; per spec.md
// §4.5, an ABR translates a Type-7 instance to a Type-5 when the P-bit
// (carried in Prefix.Options, not these flags) is set.
type ASExternal struct {
	Flags  ASExternalFlags
	Metric uint32 // 24 bits significant
	Prefix Prefix

	ForwardingAddress     net.IP // present iff Flags&ASExternalFlagF
	ExternalRouteTag      uint32 // present iff Flags&ASExternalFlagT
	ReferencedLinkStateID ID     // present iff Prefix.Options has a referenced LS ID (Special != 0 upstream; here: always zero unless set by caller)
	HasReferencedLSID     bool
}

func (a *ASExternal) len() int {
	n := 4 + a.Prefix.len()
	if a.Flags&ASExternalFlagF != 0 {
		n += 16
	}
	if a.Flags&ASExternalFlagT != 0 {
		n += 4
	}
	if a.HasReferencedLSID {
		n += 4
	}
	return n
}

func (a *ASExternal) marshal(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(a.Flags)<<24|(a.Metric&0x00ffffff))
	off := 4
	a.Prefix.marshal(b[off:])
	off += a.Prefix.len()

	if a.Flags&ASExternalFlagF != 0 {
		addr := a.ForwardingAddress.To16()
		if addr == nil {
			addr = make(net.IP, 16)
		}
		copy(b[off:off+16], addr)
		off += 16
	}
	if a.Flags&ASExternalFlagT != 0 {
		binary.BigEndian.PutUint32(b[off:off+4], a.ExternalRouteTag)
		off += 4
	}
	if a.HasReferencedLSID {
		copy(b[off:off+4], a.ReferencedLinkStateID[:])
		off += 4
	}
	return nil
}

func (a *ASExternal) unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("not enough bytes for AS-External LSA: %d: %w", len(b), errParse)
	}
	a.Flags = ASExternalFlags(b[0])
	a.Metric = binary.BigEndian.Uint32(b[0:4]) & 0x00ffffff

	off := 4
	pfx, n, err := parsePrefix(b[off:])
	if err != nil {
		return fmt.Errorf("AS-External LSA: %w", err)
	}
	a.Prefix = pfx
	off += n

	if a.Flags&ASExternalFlagF != 0 {
		if len(b) < off+16 {
			return fmt.Errorf("AS-External LSA: missing forwarding address: %w", errParse)
		}
		addr := make(net.IP, 16)
		copy(addr, b[off:off+16])
		a.ForwardingAddress = addr
		off += 16
	}
	if a.Flags&ASExternalFlagT != 0 {
		if len(b) < off+4 {
			return fmt.Errorf("AS-External LSA: missing route tag: %w", errParse)
		}
		a.ExternalRouteTag = binary.BigEndian.Uint32(b[off : off+4])
		off += 4
	}
	if len(b) >= off+4 {
		copy(a.ReferencedLinkStateID[:], b[off:off+4])
		a.HasReferencedLSID = true
		off += 4
	}

	return nil
}
