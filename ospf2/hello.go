package ospf2

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

var _ Message = &Hello{}

// A Hello is an OSPFv2 Hello packet as described in RFC 2328, appendix A.3.2.
type Hello struct {
	Header Header

	NetworkMask              net.IP // always 4 bytes (IPv4)
	HelloInterval            time.Duration
	Options                  Options
	RouterPriority           uint8
	RouterDeadInterval       time.Duration
	DesignatedRouterID       ID
	BackupDesignatedRouterID ID
	NeighborIDs              []ID
}

// ListsNeighbor reports whether id appears in the Hello's neighbor list,
// i.e. whether the sender has seen a Hello from id recently enough to
// consider the adjacency at least bidirectional.
func (h *Hello) ListsNeighbor(id ID) bool {
	for _, n := range h.NeighborIDs {
		if n == id {
			return true
		}
	}
	return false
}

// len implements Message.
func (h *Hello) len() int { return headerLen + helloLen + 4*len(h.NeighborIDs) }

// marshal implements Message.
func (h *Hello) marshal(b []byte) error {
	const n = headerLen
	h.Header.marshal(b[:n], hello, uint16(h.len()))

	mask := h.NetworkMask.To4()
	if mask == nil {
		mask = make(net.IP, 4)
	}
	copy(b[n:n+4], mask)
	putUint16Seconds(b[n+4:n+6], h.HelloInterval)
	b[n+6] = byte(h.Options)
	b[n+7] = h.RouterPriority
	binary.BigEndian.PutUint32(b[n+8:n+12], uint32(h.RouterDeadInterval.Round(time.Second).Seconds()))
	copy(b[n+12:n+16], h.DesignatedRouterID[:])
	copy(b[n+16:n+20], h.BackupDesignatedRouterID[:])

	off := n + helloLen
	for _, id := range h.NeighborIDs {
		copy(b[off:off+4], id[:])
		off += 4
	}

	return nil
}

// unmarshal implements Message.
func (h *Hello) unmarshal(b []byte) error {
	if len(b) < helloLen {
		return fmt.Errorf("not enough bytes for Hello: %d: %w", len(b), errParse)
	}

	mask := make(net.IP, 4)
	copy(mask, b[0:4])
	h.NetworkMask = mask

	h.HelloInterval = uint16Seconds(b[4:6])
	h.Options = Options(b[6])
	h.RouterPriority = b[7]
	h.RouterDeadInterval = time.Duration(binary.BigEndian.Uint32(b[8:12])) * time.Second
	copy(h.DesignatedRouterID[:], b[12:16])
	copy(h.BackupDesignatedRouterID[:], b[16:20])

	rest := b[helloLen:]
	if len(rest)%4 != 0 {
		return fmt.Errorf("Hello neighbor array must end on a 4 byte boundary, got %d bytes: %w", len(rest), errParse)
	}

	count := len(rest) / 4
	h.NeighborIDs = make([]ID, 0, count)
	for i := 0; i < count; i++ {
		var id ID
		copy(id[:], rest[i*4:i*4+4])
		h.NeighborIDs = append(h.NeighborIDs, id)
	}

	return nil
}
