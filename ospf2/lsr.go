package ospf2

import (
	"encoding/binary"
	"fmt"
)

var _ Message = &LinkStateRequest{}

// lsrEntryLen is the length of one Link State Request entry, RFC 2328
// appendix A.3.4. Unlike the 1-byte LS type field in an LSAHeader, each
// request entry encodes LS type as a full 4-byte word.
const lsrEntryLen = 12

// A LinkStateRequest is an OSPFv2 Link State Request packet as described in
// RFC 2328, appendix A.3.4.
type LinkStateRequest struct {
	Header Header
	LSAs   []LSAID
}

// len implements Message.
func (r *LinkStateRequest) len() int { return headerLen + lsrEntryLen*len(r.LSAs) }

// marshal implements Message.
func (r *LinkStateRequest) marshal(b []byte) error {
	const n = headerLen
	r.Header.marshal(b[:n], linkStateRequest, uint16(r.len()))

	off := n
	for _, id := range r.LSAs {
		binary.BigEndian.PutUint32(b[off:off+4], uint32(id.Type))
		copy(b[off+4:off+8], id.LinkStateID[:])
		copy(b[off+8:off+12], id.AdvertisingRouter[:])
		off += lsrEntryLen
	}

	return nil
}

// unmarshal implements Message.
func (r *LinkStateRequest) unmarshal(b []byte) error {
	if len(b)%lsrEntryLen != 0 {
		return fmt.Errorf("LinkStateRequest entries must end on a %d byte boundary, got %d bytes: %w",
			lsrEntryLen, len(b), errParse)
	}

	count := len(b) / lsrEntryLen
	r.LSAs = make([]LSAID, 0, count)
	for i := 0; i < count; i++ {
		off := i * lsrEntryLen
		id := LSAID{Type: LSType(binary.BigEndian.Uint32(b[off : off+4]))}
		copy(id.LinkStateID[:], b[off+4:off+8])
		copy(id.AdvertisingRouter[:], b[off+8:off+12])
		r.LSAs = append(r.LSAs, id)
	}

	return nil
}
