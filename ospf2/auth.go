package ospf2

import (
	"crypto/md5"
	"fmt"
)

// AppendMD5 appends a CryptographicMD5 trailer to a marshaled packet: the
// MD5 digest of packet||key, per RFC 2328 appendix D.4.3. Callers must have
// already set Header.AuthType to CryptographicMD5 and populated the key ID,
// data length, and cryptographic sequence number via Header.SetCrypto
// before calling MarshalMessage, so the digest covers the correct header
// bytes.
func AppendMD5(packet []byte, key [16]byte) []byte {
	sum := md5.Sum(append(append([]byte(nil), packet...), key[:]...))
	return append(packet, sum[:]...)
}

// VerifyMD5 reports whether packet, which must include its CryptographicMD5
// trailer, carries a digest consistent with key. plen is the packet length
// declared in the OSPF header (i.e. the offset at which the trailer
// begins); callers obtain it from parseHeader or by reading bytes [2:4) of
// the packet directly.
func VerifyMD5(packet []byte, plen int, key [16]byte) (bool, error) {
	if len(packet) < plen+md5DigestLen {
		return false, fmt.Errorf("packet too short for an MD5 trailer: %d bytes, want at least %d: %w",
			len(packet), plen+md5DigestLen, errParse)
	}

	want := packet[plen : plen+md5DigestLen]
	sum := md5.Sum(append(append([]byte(nil), packet[:plen]...), key[:]...))
	for i := range sum {
		if sum[i] != want[i] {
			return false, nil
		}
	}
	return true, nil
}

// VerifySimplePassword reports whether h's authentication field matches the
// configured cleartext password, padded or truncated to 8 bytes as RFC 2328
// appendix D.3 requires.
func VerifySimplePassword(h Header, password [8]byte) bool {
	return h.Auth == password
}
