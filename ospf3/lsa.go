package ospf3

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/wire"
)

// An LSType is the type of an OSPFv3 Link State Advertisement as described in
// RFC5340, appendix A.4.2.1.
type LSType uint16

// Possible LSType values.
const (
	RouterLSA          LSType = 0x2001
	NetworkLSA         LSType = 0x2002
	InterAreaPrefixLSA LSType = 0x2003
	InterAreaRouterLSA LSType = 0x2004
	ASExternalLSA      LSType = 0x4005
	deprecatedLSA      LSType = 0x2006
	NSSALSA            LSType = 0x2007
	LinkLSA            LSType = 0x0008
	IntraAreaPrefixLSA LSType = 0x2009
)

// LSAHandling returns the value of the U-bit in the LSType. False indicates
// the LSA should be treated as if it had link-local flooding scope. True
// indicates that a router should store and flood the LSA as if the type is
// understood, even if it is not (the Unknown-LSA passthrough, per §4.1/§9).
func (t LSType) LSAHandling() bool {
	return (t & 0x8000) != 0
}

// FloodingScope returns the LSA flooding scope value stored in the S1 and S2
// bits in the LSType.
func (t LSType) FloodingScope() FloodingScope {
	return FloodingScope((t & 0x6000) >> 13)
}

// A FloodingScope is an OSPFv3 LSA flooding scope as described in RFC 5340,
// appendix A.4.2.1.
type FloodingScope uint8

// Possible FloodingScope values.
const (
	LinkLocalScoping FloodingScope = 0b00
	AreaScoping      FloodingScope = 0b01
	ASScoping        FloodingScope = 0b10
	reservedScoping  FloodingScope = 0b11
)

// An LSAID identifies an LSA by its (type, link-state ID, advertising
// router) triple, the key used in Link State Request/Acknowledgement
// entries and as the LSDB's lookup key.
type LSAID struct {
	Type              LSType
	LinkStateID       ID
	AdvertisingRouter ID
}

// marshal packs an LSAID's bytes into b. It assumes b has allocated enough
// space for an LSAID to avoid a panic.
func (l LSAID) marshal(b []byte) {
	binary.BigEndian.PutUint16(b[0:2], uint16(l.Type))
	copy(b[2:6], l.LinkStateID[:])
	copy(b[6:10], l.AdvertisingRouter[:])
}

// parseLSAID unpacks an LSAID from a byte slice.
func parseLSAID(b []byte) LSAID {
	l := LSAID{Type: LSType(binary.BigEndian.Uint16(b[0:2]))}
	copy(l.LinkStateID[:], b[2:6])
	copy(l.AdvertisingRouter[:], b[6:10])
	return l
}

// An LSAHeader is an OSPFv3 Link State Advertisement header as described in
// RFC5340, appendix A.4.2.
type LSAHeader struct {
	Age            time.Duration
	ID             LSAID
	SequenceNumber ospfid.SequenceNumber
	Checksum       uint16
	Length         uint16
}

// marshal stores the LSAHeader bytes into b. It assumes b has allocated
// enough space for an LSAHeader to avoid a panic.
func (h LSAHeader) marshal(b []byte) {
	putUint16Seconds(b[0:2], h.Age)
	h.ID.marshal(b[2:12])
	binary.BigEndian.PutUint32(b[12:16], uint32(h.SequenceNumber))
	binary.BigEndian.PutUint16(b[16:18], h.Checksum)
	binary.BigEndian.PutUint16(b[18:20], h.Length)
}

// parseLSAHeader unpacks an LSAHeader from a byte slice.
func parseLSAHeader(b []byte) (LSAHeader, error) {
	if len(b) < lsaHeaderLen {
		return LSAHeader{}, fmt.Errorf("not enough bytes for LSA header: %d: %w", len(b), errParse)
	}
	return LSAHeader{
		Age:            uint16Seconds(b[0:2]),
		ID:             parseLSAID(b[2:12]),
		SequenceNumber: ospfid.SequenceNumber(binary.BigEndian.Uint32(b[12:16])),
		Checksum:       binary.BigEndian.Uint16(b[16:18]),
		Length:         binary.BigEndian.Uint16(b[18:20]),
	}, nil
}

// LSABody is implemented by every OSPFv3 LSA body variant: the fixed and
// variable-length fields that follow an LSAHeader within an LSA.
type LSABody interface {
	// len returns the body's encoded length in bytes, excluding the
	// 20-byte LSAHeader.
	len() int
	marshal(b []byte) error
	unmarshal(b []byte) error
}

// An LSA is a complete OSPFv3 Link State Advertisement: a header plus a
// type-dispatched body.
type LSA struct {
	Header LSAHeader
	Body   LSABody
}

// ChecksumValid reports whether raw, a previously encoded LSA (as produced
// by MarshalMessage's LinkStateUpdate path or Marshal), still carries a
// self-consistent Fletcher checksum. The Age field (bytes [0:2)) is excluded
// from the check, matching the exclusion used when the checksum was
// originally computed.
func ChecksumValid(raw []byte) bool {
	if len(raw) < lsaHeaderLen {
		return false
	}
	return wire.FletcherVerify(raw[2:], 14)
}

// Marshal encodes a single LSA (header and body) to bytes, independent of
// any enclosing packet. Used by the LSDB and flooding layers, which store
// and retransmit LSAs outside of any particular Link State Update.
func (l *LSA) Marshal() ([]byte, error) {
	b := make([]byte, l.len())
	if err := l.marshal(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseLSA parses a single encoded LSA (header and body), independent of any
// enclosing packet.
func ParseLSA(b []byte) (*LSA, error) {
	return parseLSA(b)
}

// len returns the LSA's total encoded length, header included.
func (l *LSA) len() int {
	return lsaHeaderLen + l.Body.len()
}

// marshal encodes the LSA into b, computing the Fletcher checksum over the
// body (the Age field is excluded from the checksum per RFC 2328 appendix D
// / RFC 5340 §A.4.2, reused unchanged from OSPFv2).
func (l *LSA) marshal(b []byte) error {
	l.Header.Length = uint16(l.len())
	// An Unknown body keeps the type already in the header, and an
	// ASExternal body keeps NSSALSA when the header already says so.
	if t := lsaBodyType(l.Body); t != 0 && !(t == ASExternalLSA && l.Header.ID.Type == NSSALSA) {
		l.Header.ID.Type = t
	}
	l.Header.marshal(b[:lsaHeaderLen])
	if err := l.Body.marshal(b[lsaHeaderLen:]); err != nil {
		return fmt.Errorf("ospf3: failed to marshal LSA body: %w", err)
	}

	// Fletcher checksum covers bytes [2:length), i.e. the header minus the
	// Age field, through the end of the body. The checksum field sits at
	// offset 16 within the full LSA, i.e. offset 14 within this slice.
	wire.PutFletcher(b[2:], 14)
	l.Header.Checksum = binary.BigEndian.Uint16(b[16:18])
	return nil
}

// parseLSA parses a full LSA (header plus dispatched body) from b.
func parseLSA(b []byte) (*LSA, error) {
	h, err := parseLSAHeader(b)
	if err != nil {
		return nil, err
	}
	if int(h.Length) > len(b) {
		return nil, fmt.Errorf("LSA length %d exceeds available %d bytes: %w", h.Length, len(b), errParse)
	}

	body, err := decodeLSABody(h.ID.Type, b[lsaHeaderLen:h.Length])
	if err != nil {
		return nil, fmt.Errorf("LSA type %s: %w", h.ID.Type, err)
	}

	return &LSA{Header: h, Body: body}, nil
}

// decodeLSABody dispatches on t to the matching LSABody implementation.
// Every unknown type, whatever its U-bit, is preserved verbatim via Unknown
// so it can still be relayed.
func decodeLSABody(t LSType, b []byte) (LSABody, error) {
	var body LSABody
	switch t {
	case RouterLSA:
		body = &Router{}
	case NetworkLSA:
		body = &Network{}
	case InterAreaPrefixLSA:
		body = &InterAreaPrefix{}
	case InterAreaRouterLSA:
		body = &InterAreaRouter{}
	case ASExternalLSA, NSSALSA:
		body = &ASExternal{}
	case LinkLSA:
		body = &Link{}
	case IntraAreaPrefixLSA:
		body = &IntraAreaPrefix{}
	default:
		body = &Unknown{}
	}

	if err := body.unmarshal(b); err != nil {
		return nil, err
	}
	return body, nil
}

// lsaBodyType returns the LSType a concrete LSABody implementation encodes
// as, used so LSA.marshal doesn't require the caller to keep Header.ID.Type
// in sync by hand.
func lsaBodyType(body LSABody) LSType {
	switch body.(type) {
	case *Router:
		return RouterLSA
	case *Network:
		return NetworkLSA
	case *InterAreaPrefix:
		return InterAreaPrefixLSA
	case *InterAreaRouter:
		return InterAreaRouterLSA
	case *ASExternal:
		return ASExternalLSA
	case *Link:
		return LinkLSA
	case *IntraAreaPrefix:
		return IntraAreaPrefixLSA
	default:
		return 0
	}
}

// An Unknown is the passthrough body used for LSA types this codec does not
// understand; its bytes are preserved verbatim so the LSA can still be
// flooded per §4.1.
type Unknown []byte

func (u *Unknown) len() int { return len(*u) }

func (u *Unknown) marshal(b []byte) error {
	copy(b, *u)
	return nil
}

func (u *Unknown) unmarshal(b []byte) error {
	*u = append([]byte(nil), b...)
	return nil
}
