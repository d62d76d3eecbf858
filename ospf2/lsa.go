package ospf2

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/wire"
)

// An LSType is the type of an OSPFv2 Link State Advertisement as described
// in RFC 2328, appendix A.4.1. Unlike OSPFv3, the header carries this as a
// single byte; Link State Request entries encode the same value in a full
// 4-byte field (RFC 2328 appendix A.3.4), a quirk handled in lsr.go.
type LSType uint8

// Possible LSType values.
const (
	RouterLSA         LSType = 1
	NetworkLSA        LSType = 2
	SummaryNetworkLSA LSType = 3
	SummaryRouterLSA  LSType = 4
	ASExternalLSA     LSType = 5
)

// String implements fmt.Stringer.
func (t LSType) String() string {
	switch t {
	case RouterLSA:
		return "RouterLSA"
	case NetworkLSA:
		return "NetworkLSA"
	case SummaryNetworkLSA:
		return "SummaryNetworkLSA"
	case SummaryRouterLSA:
		return "SummaryRouterLSA"
	case ASExternalLSA:
		return "ASExternalLSA"
	default:
		return fmt.Sprintf("LSType(%d)", uint8(t))
	}
}

// An LSAID identifies an LSA by its (type, link-state ID, advertising
// router) triple, the key used in the LSDB's lookup and as the
// Link-State-Request/Database-Description entry key.
type LSAID struct {
	Type              LSType
	LinkStateID       ID
	AdvertisingRouter ID
}

// An LSAHeader is an OSPFv2 Link State Advertisement header as described in
// RFC 2328, appendix A.4.1.
type LSAHeader struct {
	Age            time.Duration
	Options        Options
	ID             LSAID
	SequenceNumber ospfid.SequenceNumber
	Checksum       uint16
	Length         uint16
}

// marshal stores the LSAHeader bytes into b. It assumes b has allocated
// enough space for an LSAHeader to avoid a panic.
func (h LSAHeader) marshal(b []byte) {
	putUint16Seconds(b[0:2], h.Age)
	b[2] = byte(h.Options)
	b[3] = byte(h.ID.Type)
	copy(b[4:8], h.ID.LinkStateID[:])
	copy(b[8:12], h.ID.AdvertisingRouter[:])
	binary.BigEndian.PutUint32(b[12:16], uint32(h.SequenceNumber))
	binary.BigEndian.PutUint16(b[16:18], h.Checksum)
	binary.BigEndian.PutUint16(b[18:20], h.Length)
}

// parseLSAHeader unpacks an LSAHeader from a byte slice.
func parseLSAHeader(b []byte) (LSAHeader, error) {
	if len(b) < lsaHeaderLen {
		return LSAHeader{}, fmt.Errorf("not enough bytes for LSA header: %d: %w", len(b), errParse)
	}
	h := LSAHeader{
		Age:     uint16Seconds(b[0:2]),
		Options: Options(b[2]),
		ID: LSAID{
			Type: LSType(b[3]),
		},
		SequenceNumber: ospfid.SequenceNumber(binary.BigEndian.Uint32(b[12:16])),
		Checksum:       binary.BigEndian.Uint16(b[16:18]),
		Length:         binary.BigEndian.Uint16(b[18:20]),
	}
	copy(h.ID.LinkStateID[:], b[4:8])
	copy(h.ID.AdvertisingRouter[:], b[8:12])
	return h, nil
}

// LSABody is implemented by every OSPFv2 LSA body variant: the fixed and
// variable-length fields that follow an LSAHeader within an LSA.
type LSABody interface {
	len() int
	marshal(b []byte) error
	unmarshal(b []byte) error
}

// An LSA is a complete OSPFv2 Link State Advertisement: a header plus a
// type-dispatched body.
type LSA struct {
	Header LSAHeader
	Body   LSABody
}

// ChecksumValid reports whether raw, a previously encoded LSA, still
// carries a self-consistent Fletcher checksum. The Age field (bytes
// [0:2)) is excluded from the check, matching the exclusion used when the
// checksum was originally computed.
func ChecksumValid(raw []byte) bool {
	if len(raw) < lsaHeaderLen {
		return false
	}
	return wire.FletcherVerify(raw[2:], 14)
}

// Marshal encodes a single LSA (header and body) to bytes, independent of
// any enclosing packet.
func (l *LSA) Marshal() ([]byte, error) {
	b := make([]byte, l.len())
	if err := l.marshal(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseLSA parses a single encoded LSA (header and body), independent of
// any enclosing packet.
func ParseLSA(b []byte) (*LSA, error) {
	return parseLSA(b)
}

// len returns the LSA's total encoded length, header included.
func (l *LSA) len() int { return lsaHeaderLen + l.Body.len() }

// marshal encodes the LSA into b, computing the Fletcher checksum over the
// header (Age excluded) through the body.
func (l *LSA) marshal(b []byte) error {
	l.Header.Length = uint16(l.len())
	// An Unknown body keeps the type already in the header.
	if t := lsaBodyType(l.Body); t != 0 {
		l.Header.ID.Type = t
	}
	l.Header.marshal(b[:lsaHeaderLen])
	if err := l.Body.marshal(b[lsaHeaderLen:]); err != nil {
		return fmt.Errorf("ospf2: failed to marshal LSA body: %w", err)
	}

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
func decodeLSABody(t LSType, b []byte) (LSABody, error) {
	var body LSABody
	switch t {
	case RouterLSA:
		body = &Router{}
	case NetworkLSA:
		body = &Network{}
	case SummaryNetworkLSA, SummaryRouterLSA:
		body = &Summary{}
	case ASExternalLSA:
		body = &ASExternal{}
	default:
		body = &Unknown{}
	}

	if err := body.unmarshal(b); err != nil {
		return nil, err
	}
	return body, nil
}

// lsaBodyType returns the LSType a concrete LSABody implementation encodes
// as. Summary bodies are ambiguous between SummaryNetworkLSA and
// SummaryRouterLSA, so Summary carries its own Type field instead and
// lsaBodyType defers to it.
func lsaBodyType(body LSABody) LSType {
	switch v := body.(type) {
	case *Router:
		return RouterLSA
	case *Network:
		return NetworkLSA
	case *Summary:
		return v.Type
	case *ASExternal:
		return ASExternalLSA
	default:
		return 0
	}
}

// An Unknown is the passthrough body used for LSA types this codec does not
// understand; its bytes are preserved verbatim so the LSA can still be
// flooded.
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
