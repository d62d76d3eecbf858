package ospf2

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ASExternal is an OSPFv2 AS-External-LSA body, RFC 2328 appendix A.4.5. The
// top bit of the Metric word is the E-bit (external metric type); the
// remaining 31 bits split into 7 reserved bits, written as zero, and the
// 24-bit metric, exactly as encoded on the wire.
type ASExternal struct {
	// Type2Metric selects RFC 2328 §16.4's Type 2 comparison (E-bit set):
	// the external metric dominates regardless of the cost to the ASBR.
	// When false (Type 1), the external metric is added to the intra-AS
	// cost to the ASBR.
	Type2Metric bool

	NetworkMask       net.IP // always 4 bytes
	Metric            uint32 // 24 bits significant
	ForwardingAddress net.IP // always 4 bytes; all-zero means "use the ASBR"
	ExternalRouteTag  uint32
}

func (a *ASExternal) len() int { return 16 }

func (a *ASExternal) marshal(b []byte) error {
	mask := a.NetworkMask.To4()
	if mask == nil {
		mask = make(net.IP, 4)
	}
	copy(b[0:4], mask)

	word := a.Metric & 0x00ffffff
	if a.Type2Metric {
		word |= 1 << 31
	}
	binary.BigEndian.PutUint32(b[4:8], word)

	fwd := a.ForwardingAddress.To4()
	if fwd == nil {
		fwd = make(net.IP, 4)
	}
	copy(b[8:12], fwd)
	binary.BigEndian.PutUint32(b[12:16], a.ExternalRouteTag)
	return nil
}

func (a *ASExternal) unmarshal(b []byte) error {
	if len(b) < 16 {
		return fmt.Errorf("not enough bytes for AS-External LSA: %d: %w", len(b), errParse)
	}
	mask := make(net.IP, 4)
	copy(mask, b[0:4])
	a.NetworkMask = mask

	word := binary.BigEndian.Uint32(b[4:8])
	a.Type2Metric = word&(1<<31) != 0
	a.Metric = word & 0x00ffffff

	fwd := make(net.IP, 4)
	copy(fwd, b[8:12])
	a.ForwardingAddress = fwd

	a.ExternalRouteTag = binary.BigEndian.Uint32(b[12:16])
	return nil
}
