package ospf2

import (
	"encoding/binary"
	"fmt"
)

var _ Message = &LinkStateUpdate{}

// A LinkStateUpdate is an OSPFv2 Link State Update packet as described in
// RFC 2328, appendix A.3.5. It carries a sequence of complete LSAs (header
// plus body), each processed by the receiver in the order they appear.
type LinkStateUpdate struct {
	Header Header
	LSAs   []*LSA
}

// len implements Message.
func (u *LinkStateUpdate) len() int {
	n := headerLen + 4 // 4 bytes for the LSA count field.
	for _, lsa := range u.LSAs {
		n += lsa.len()
	}
	return n
}

// marshal implements Message.
func (u *LinkStateUpdate) marshal(b []byte) error {
	const n = headerLen
	u.Header.marshal(b[:n], linkStateUpdate, uint16(u.len()))
	binary.BigEndian.PutUint32(b[n:n+4], uint32(len(u.LSAs)))

	off := n + 4
	for i, lsa := range u.LSAs {
		end := off + lsa.len()
		if err := lsa.marshal(b[off:end]); err != nil {
			return fmt.Errorf("LinkStateUpdate: LSA %d: %w", i, err)
		}
		off = end
	}

	return nil
}

// unmarshal implements Message.
func (u *LinkStateUpdate) unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("not enough bytes for LinkStateUpdate: %d: %w", len(b), errParse)
	}

	count := int(binary.BigEndian.Uint32(b[0:4]))
	b = b[4:]

	u.LSAs = make([]*LSA, 0, count)
	for i := 0; i < count; i++ {
		if len(b) < lsaHeaderLen {
			return fmt.Errorf("LinkStateUpdate: truncated before LSA %d: %w", i, errParse)
		}

		h, err := parseLSAHeader(b)
		if err != nil {
			return fmt.Errorf("LinkStateUpdate: LSA %d header: %w", i, err)
		}
		if int(h.Length) > len(b) {
			return fmt.Errorf("LinkStateUpdate: LSA %d declares length %d beyond %d remaining bytes: %w",
				i, h.Length, len(b), errParse)
		}

		lsa, err := parseLSA(b[:h.Length])
		if err != nil {
			return fmt.Errorf("LinkStateUpdate: LSA %d: %w", i, err)
		}
		u.LSAs = append(u.LSAs, lsa)
		b = b[h.Length:]
	}

	return nil
}
