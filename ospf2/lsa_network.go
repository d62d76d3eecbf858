package ospf2

import (
	"fmt"
	"net"
)

// Network is an OSPFv2 Network-LSA body, RFC 2328 appendix A.4.3,
// originated by the Designated Router on a broadcast or NBMA link listing
// every fully adjacent attached router (including the DR itself).
type Network struct {
	NetworkMask    net.IP // always 4 bytes
	AttachedRouter []ID
}

func (n *Network) len() int { return 4 + 4*len(n.AttachedRouter) }

func (n *Network) marshal(b []byte) error {
	mask := n.NetworkMask.To4()
	if mask == nil {
		mask = make(net.IP, 4)
	}
	copy(b[0:4], mask)
	off := 4
	for _, id := range n.AttachedRouter {
		copy(b[off:off+4], id[:])
		off += 4
	}
	return nil
}

func (n *Network) unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("not enough bytes for Network LSA: %d: %w", len(b), errParse)
	}
	mask := make(net.IP, 4)
	copy(mask, b[0:4])
	n.NetworkMask = mask

	rest := b[4:]
	if len(rest)%4 != 0 {
		return fmt.Errorf("Network LSA attached-router array must end on a 4 byte boundary, got %d bytes: %w",
			len(rest), errParse)
	}

	count := len(rest) / 4
	n.AttachedRouter = make([]ID, 0, count)
	for i := 0; i < count; i++ {
		var id ID
		copy(id[:], rest[i*4:i*4+4])
		n.AttachedRouter = append(n.AttachedRouter, id)
	}
	return nil
}
