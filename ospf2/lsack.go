package ospf2

import "fmt"

var _ Message = &LinkStateAcknowledgement{}

// A LinkStateAcknowledgement is an OSPFv2 Link State Acknowledgement packet
// as described in RFC 2328, appendix A.3.6. It carries a list of LSA
// headers, each acknowledging receipt of the matching LSA instance.
type LinkStateAcknowledgement struct {
	Header Header
	LSAs   []LSAHeader
}

// len implements Message.
func (a *LinkStateAcknowledgement) len() int { return headerLen + lsaHeaderLen*len(a.LSAs) }

// marshal implements Message.
func (a *LinkStateAcknowledgement) marshal(b []byte) error {
	const n = headerLen
	a.Header.marshal(b[:n], linkStateAcknowledgement, uint16(a.len()))

	off := n
	for _, h := range a.LSAs {
		h.marshal(b[off : off+lsaHeaderLen])
		off += lsaHeaderLen
	}

	return nil
}

// unmarshal implements Message.
func (a *LinkStateAcknowledgement) unmarshal(b []byte) error {
	if len(b)%lsaHeaderLen != 0 {
		return fmt.Errorf("LinkStateAcknowledgement LSA headers must end on a %d byte boundary, got %d bytes: %w",
			lsaHeaderLen, len(b), errParse)
	}

	count := len(b) / lsaHeaderLen
	a.LSAs = make([]LSAHeader, 0, count)
	for i := 0; i < count; i++ {
		off := i * lsaHeaderLen
		h, err := parseLSAHeader(b[off : off+lsaHeaderLen])
		if err != nil {
			return fmt.Errorf("LinkStateAcknowledgement: LSA header %d: %w", i, err)
		}
		a.LSAs = append(a.LSAs, h)
	}

	return nil
}
