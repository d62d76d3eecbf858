package ospf3

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Link is an OSPFv3 Link-LSA body, RFC5340 §A.4.9. Link-LSAs have link-local
// flooding scope (they are never flooded beyond the originating interface)
// and carry the originator's link-local address plus the on-link prefixes
// it wants included in the area's Intra-Area-Prefix-LSA.
type Link struct {
	RouterPriority            uint8
	Options                   Options
	LinkLocalInterfaceAddress net.IP // always 16 bytes (IPv6 link-local)
	Prefixes                  []Prefix
}

func (l *Link) len() int {
	n := 24
	for _, p := range l.Prefixes {
		n += p.len()
	}
	return n
}

func (l *Link) marshal(b []byte) error {
	b[0] = l.RouterPriority
	copy(b[1:4], encodeOptions24(l.Options))
	addr := l.LinkLocalInterfaceAddress.To16()
	if addr == nil {
		addr = make(net.IP, 16)
	}
	copy(b[4:20], addr)
	binary.BigEndian.PutUint32(b[20:24], uint32(len(l.Prefixes)))

	off := 24
	for _, p := range l.Prefixes {
		p.marshal(b[off:])
		off += p.len()
	}
	return nil
}

func (l *Link) unmarshal(b []byte) error {
	if len(b) < 24 {
		return fmt.Errorf("not enough bytes for Link LSA: %d: %w", len(b), errParse)
	}
	l.RouterPriority = b[0]
	l.Options = options(b[0:4])

	addr := make(net.IP, 16)
	copy(addr, b[4:20])
	l.LinkLocalInterfaceAddress = addr

	count := int(binary.BigEndian.Uint32(b[20:24]))
	rest := b[24:]

	l.Prefixes = make([]Prefix, 0, count)
	for i := 0; i < count; i++ {
		pfx, n, err := parsePrefix(rest)
		if err != nil {
			return fmt.Errorf("Link LSA: prefix %d: %w", i, err)
		}
		l.Prefixes = append(l.Prefixes, pfx)
		rest = rest[n:]
	}
	return nil
}
