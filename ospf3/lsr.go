package ospf3

import "fmt"

var _ Message = &LinkStateRequest{}

// A LinkStateRequest is an OSPFv3 Link State Request message as described in
// RFC5340, appendix A.3.4.
type LinkStateRequest struct {
	Header Header
	LSAs   []LSAID
}

// len implements Message.
func (lsr *LinkStateRequest) len() int {
	// Fixed Header plus 12 bytes per requested LSA identity. This message
	// has no body of its own beyond the trailing array.
	return headerLen + (lsaIDLen * len(lsr.LSAs))
}

// marshal implements Message.
func (lsr *LinkStateRequest) marshal(b []byte) error {
	// Marshal the Header and then store the LSA identity bytes following it.
	const n = headerLen
	lsr.Header.marshal(b[:n], linkStateRequest, uint16(lsr.len()))

	// Each entry reserves its first 2 bytes; LSAID.marshal only writes the
	// trailing 10 bytes (type, link-state ID, advertising router).
	nn := n
	for i := range lsr.LSAs {
		lsr.LSAs[i].marshal(b[2+nn : nn+lsaIDLen])
		nn += lsaIDLen
	}

	return nil
}

// unmarshal implements Message.
func (lsr *LinkStateRequest) unmarshal(b []byte) error {
	// LinkStateRequest must end on a 12 byte boundary so we can parse any
	// possible LSA identities in the trailing array.
	if l := len(b); l%lsaIDLen != 0 {
		return fmt.Errorf("LinkStateRequest message must end on a 12 byte boundary for trailing LSA identities, got %d bytes: %w", l, errParse)
	}

	// We now know the number of entries because they have a fixed size.
	// The leading 2 bytes of each 12 byte entry are reserved.
	n := len(b) / lsaIDLen
	lsr.LSAs = make([]LSAID, 0, n)
	for i := 0; i < n; i++ {
		var (
			start = 2 + (i * lsaIDLen)
			end   = lsaIDLen + (i * lsaIDLen)
		)

		lsr.LSAs = append(lsr.LSAs, parseLSAID(b[start:end]))
	}

	return nil
}
