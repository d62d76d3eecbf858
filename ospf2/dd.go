package ospf2

import (
	"encoding/binary"
	"fmt"
)

var _ Message = &DatabaseDescription{}

// DDFlags is a bitmask of OSPFv2 Database Description flags, RFC 2328
// appendix A.3.3.
type DDFlags uint8

// Possible DDFlags bits.
const (
	MSBit DDFlags = 1 << 0 // Master/Slave
	MBit  DDFlags = 1 << 1 // More
	IBit  DDFlags = 1 << 2 // Init
)

// String returns the string representation of a DDFlags bitmask.
func (f DDFlags) String() string {
	return flagsString(uint(f), []string{"MS-bit", "M-bit", "I-bit"})
}

// A DatabaseDescription is an OSPFv2 Database Description packet as
// described in RFC 2328, appendix A.3.3.
type DatabaseDescription struct {
	Header Header

	InterfaceMTU   uint16
	Options        Options
	Flags          DDFlags
	SequenceNumber uint32
	LSAs           []LSAHeader
}

// len implements Message.
func (dd *DatabaseDescription) len() int {
	return headerLen + ddLen + lsaHeaderLen*len(dd.LSAs)
}

// marshal implements Message.
func (dd *DatabaseDescription) marshal(b []byte) error {
	const n = headerLen
	dd.Header.marshal(b[:n], databaseDescription, uint16(dd.len()))

	binary.BigEndian.PutUint16(b[n:n+2], dd.InterfaceMTU)
	b[n+2] = byte(dd.Options)
	b[n+3] = byte(dd.Flags)
	binary.BigEndian.PutUint32(b[n+4:n+8], dd.SequenceNumber)

	off := n + ddLen
	for _, l := range dd.LSAs {
		l.marshal(b[off : off+lsaHeaderLen])
		off += lsaHeaderLen
	}

	return nil
}

// unmarshal implements Message.
func (dd *DatabaseDescription) unmarshal(b []byte) error {
	if len(b) < ddLen {
		return fmt.Errorf("not enough bytes for DatabaseDescription: %d: %w", len(b), errParse)
	}

	dd.InterfaceMTU = binary.BigEndian.Uint16(b[0:2])
	dd.Options = Options(b[2])
	dd.Flags = DDFlags(b[3])
	dd.SequenceNumber = binary.BigEndian.Uint32(b[4:8])

	rest := b[ddLen:]
	if len(rest)%lsaHeaderLen != 0 {
		return fmt.Errorf("DatabaseDescription LSA header array must end on a %d byte boundary, got %d bytes: %w",
			lsaHeaderLen, len(rest), errParse)
	}

	count := len(rest) / lsaHeaderLen
	dd.LSAs = make([]LSAHeader, 0, count)
	for i := 0; i < count; i++ {
		off := i * lsaHeaderLen
		h, err := parseLSAHeader(rest[off : off+lsaHeaderLen])
		if err != nil {
			return fmt.Errorf("DatabaseDescription: LSA header %d: %w", i, err)
		}
		dd.LSAs = append(dd.LSAs, h)
	}

	return nil
}
