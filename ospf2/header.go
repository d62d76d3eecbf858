package ospf2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
	"github.com/mdlayher/ospfd/wire"
)

const (
	// version is the OSPF version supported by this library (OSPFv2).
	version = 2

	headerLen    = 24
	lsaHeaderLen = 20
	helloLen     = 20 // No trailing array of neighbor IDs, network mask included.
	ddLen        = 8  // No trailing array of LSA headers.

	// md5DigestLen is the length of the trailer appended after a packet
	// authenticated with CryptographicMD5.
	md5DigestLen = 16
)

// Sentinel errors used to differentiate various types of errors in tests.
var (
	errMarshal = errors.New("failed to marshal bytes")
	errParse   = errors.New("failed to parse bytes")
)

// A packetType is the type of an OSPFv2 packet.
type packetType uint8

// Possible OSPFv2 packet types.
const (
	hello                    packetType = 1
	databaseDescription      packetType = 2
	linkStateRequest         packetType = 3
	linkStateUpdate          packetType = 4
	linkStateAcknowledgement packetType = 5
)

// ID is an alias of ospfid.ID, used for Router-ID, Area-ID, and Link-State-ID
// values, all of which share OSPF's 32-bit opaque identifier representation.
type ID = ospfid.ID

// An AuthType identifies the OSPFv2 authentication scheme in use on a packet,
// RFC 2328 appendix D.
type AuthType uint16

// Possible AuthType values.
const (
	NoAuth           AuthType = 0
	SimplePassword   AuthType = 1
	CryptographicMD5 AuthType = 2
)

// String implements fmt.Stringer.
func (a AuthType) String() string {
	switch a {
	case NoAuth:
		return "NoAuth"
	case SimplePassword:
		return "SimplePassword"
	case CryptographicMD5:
		return "CryptographicMD5"
	default:
		return fmt.Sprintf("AuthType(%d)", uint16(a))
	}
}

// Options is a bitmask of OSPFv2 options as described in RFC 2328, appendix A.2.
type Options uint8

// Possible OSPFv2 options bits.
const (
	MTBit Options = 1 << 0
	EBit  Options = 1 << 1
	MCBit Options = 1 << 2
	NPBit Options = 1 << 3
	EABit Options = 1 << 4
	DCBit Options = 1 << 5
	OBit  Options = 1 << 6
)

// String returns the string representation of an Options bitmask.
func (o Options) String() string {
	return flagsString(uint(o), []string{
		"MT-bit", "E-bit", "MC-bit", "N/P-bit", "EA-bit", "DC-bit", "O-bit",
	})
}

// A Header is the OSPFv2 packet header as described in RFC 2328, appendix A.3.1.
// Headers accompany each Message implementation. Version, packet type, packet
// length, and checksum are set automatically when calling MarshalMessage.
type Header struct {
	RouterID ID
	AreaID   ID

	// AuthType selects which of Auth's fields are meaningful.
	AuthType AuthType

	// Auth carries the 64-bit authentication field. For SimplePassword, the
	// first AuthDataLen (see Peer-configured key length) bytes are the
	// cleartext password. For CryptographicMD5, it packs 2 reserved bytes,
	// a key ID, an authentication data length, and a 32-bit monotonically
	// increasing cryptographic sequence number; see CryptoKeyID,
	// CryptoDataLen, and CryptoSequence.
	Auth [8]byte
}

// CryptoKeyID returns the key ID carried in a CryptographicMD5 header.
func (h Header) CryptoKeyID() uint8 { return h.Auth[2] }

// CryptoDataLen returns the authentication data length (conventionally the
// MD5 digest length, 16) carried in a CryptographicMD5 header.
func (h Header) CryptoDataLen() uint8 { return h.Auth[3] }

// CryptoSequence returns the cryptographic sequence number carried in a
// CryptographicMD5 header, used for per-neighbor replay protection.
func (h Header) CryptoSequence() uint32 { return binary.BigEndian.Uint32(h.Auth[4:8]) }

// SetCrypto packs keyID, dataLen, and seq into h.Auth for CryptographicMD5.
func (h *Header) SetCrypto(keyID, dataLen uint8, seq uint32) {
	h.Auth[0], h.Auth[1] = 0, 0
	h.Auth[2] = keyID
	h.Auth[3] = dataLen
	binary.BigEndian.PutUint32(h.Auth[4:8], seq)
}

// marshal packs a Header's bytes into b while also setting packet type and
// length. It assumes b has allocated enough space for a Header to avoid a
// panic. The checksum field is left zero; MarshalMessage fills it in from
// the marshaled packet, before any authentication trailer is appended.
func (h *Header) marshal(b []byte, ptyp packetType, plen uint16) {
	b[0] = version
	b[1] = byte(ptyp)
	binary.BigEndian.PutUint16(b[2:4], plen)
	copy(b[4:8], h.RouterID[:])
	copy(b[8:12], h.AreaID[:])
	b[12], b[13] = 0, 0 // checksum, filled in later
	binary.BigEndian.PutUint16(b[14:16], uint16(h.AuthType))
	copy(b[16:24], h.Auth[:])
}

// parseHeader parses an OSPFv2 Header and the offset of the end of an OSPF
// packet from bytes.
func parseHeader(b []byte) (Header, packetType, int, uint16, error) {
	if l := len(b); l < headerLen {
		return Header{}, 0, 0, 0, fmt.Errorf("not enough bytes for OSPFv2 header: %d: %w", l, errParse)
	}

	if v := b[0]; v != version {
		return Header{}, 0, 0, 0, fmt.Errorf("unrecognized OSPF version: %d: %w", v, errParse)
	}

	h := Header{AuthType: AuthType(binary.BigEndian.Uint16(b[14:16]))}
	copy(h.RouterID[:], b[4:8])
	copy(h.AreaID[:], b[8:12])
	copy(h.Auth[:], b[16:24])

	checksum := binary.BigEndian.Uint16(b[12:14])

	plen := int(binary.BigEndian.Uint16(b[2:4]))
	if plen < headerLen {
		return Header{}, 0, 0, 0, fmt.Errorf("header packet length %d is too short for a valid packet: %w", plen, errParse)
	}
	if l := len(b); l < plen {
		return Header{}, 0, 0, 0, fmt.Errorf("header packet length is %d bytes but only %d bytes are available: %w",
			plen, l, errParse)
	}

	return h, packetType(b[1]), plen, checksum, nil
}

// A Message is an OSPFv2 message.
type Message interface {
	len() int
	marshal(b []byte) error
	unmarshal(b []byte) error
}

// MarshalMessage turns a Message into OSPFv2 packet bytes, computing the
// standard header checksum per §4.1 for the no-auth and cleartext-auth
// cases, with the authentication field zeroed for the purpose of the sum.
// For CryptographicMD5 no checksum is computed and the field stays zero
// (RFC 2328 appendix D.4.3); callers append the MD5 trailer with AppendMD5
// afterward.
func MarshalMessage(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("ospf2: cannot marshal nil Message: %w", errMarshal)
	}

	b := make([]byte, m.len())
	if err := m.marshal(b); err != nil {
		return nil, fmt.Errorf("ospf2: failed to marshal Message: %w", err)
	}

	if header(m).AuthType != CryptographicMD5 {
		auth := make([]byte, 8)
		copy(auth, b[16:24])
		copy(b[16:24], make([]byte, 8))

		binary.BigEndian.PutUint16(b[12:14], wire.IPChecksum(b))

		copy(b[16:24], auth)
	}

	return b, nil
}

// PeekHeader parses just the OSPFv2 header and declared packet length from
// b, without verifying its checksum or consuming the trailing message.
// Callers authenticating with CryptographicMD5 need AuthType, CryptoKeyID,
// and plen to verify the trailer with VerifyMD5 before handing b to
// ParseMessage, which skips its own checksum check in that case.
func PeekHeader(b []byte) (h Header, plen int, err error) {
	h, _, plen, _, err = parseHeader(b)
	return h, plen, err
}

// header extracts the embedded Header from any Message implementation.
func header(m Message) Header {
	switch v := m.(type) {
	case *Hello:
		return v.Header
	case *DatabaseDescription:
		return v.Header
	case *LinkStateRequest:
		return v.Header
	case *LinkStateUpdate:
		return v.Header
	case *LinkStateAcknowledgement:
		return v.Header
	default:
		return Header{}
	}
}

// ParseMessage parses an OSPFv2 Header and trailing Message from bytes. The
// authentication trailer, if any, is not consumed; callers that need to
// verify a CryptographicMD5 digest should do so on the raw bytes before
// calling ParseMessage, using VerifyMD5.
func ParseMessage(b []byte) (Message, error) {
	h, ptyp, plen, checksum, err := parseHeader(b)
	if err != nil {
		return nil, fmt.Errorf("ospf2: failed to parse Header: %w", err)
	}

	if h.AuthType != CryptographicMD5 {
		cb := append([]byte(nil), b[:plen]...)
		cb[12], cb[13] = 0, 0
		copy(cb[16:24], make([]byte, 8))
		if got := wire.IPChecksum(cb); got != checksum {
			return nil, fmt.Errorf("ospf2: checksum mismatch: got %#x, want %#x: %w", got, checksum, errParse)
		}
	}

	var m Message
	switch ptyp {
	case hello:
		m = &Hello{Header: h}
	case databaseDescription:
		m = &DatabaseDescription{Header: h}
	case linkStateRequest:
		m = &LinkStateRequest{Header: h}
	case linkStateUpdate:
		m = &LinkStateUpdate{Header: h}
	case linkStateAcknowledgement:
		m = &LinkStateAcknowledgement{Header: h}
	default:
		return nil, fmt.Errorf("ospf2: unrecognized packet type: %d: %w", ptyp, errParse)
	}

	if err := m.unmarshal(b[headerLen:plen]); err != nil {
		return nil, fmt.Errorf("ospf2: failed to parse Message: %w", err)
	}

	return m, nil
}

// uint16Seconds interprets big endian uint16 bytes as a number of seconds.
func uint16Seconds(b []byte) time.Duration {
	return time.Duration(binary.BigEndian.Uint16(b)) * time.Second
}

// putUint16Seconds stores d in b as big endian uint16 bytes, rounded to the
// nearest whole second.
func putUint16Seconds(b []byte, d time.Duration) {
	binary.BigEndian.PutUint16(b, uint16(d.Round(time.Second).Seconds()))
}

// flagsString generates a pretty-printed flags bitmask using the input value
// and sequence of names.
func flagsString(f uint, names []string) string {
	var s string
	left := f
	for i, name := range names {
		if f&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
			left ^= (1 << uint(i))
		}
	}

	if s == "" && left == 0 {
		s = "0"
	}
	if left > 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("%#x", left)
	}

	return s
}
