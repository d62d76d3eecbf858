package ospfd

import (
	"time"

	"github.com/mdlayher/ospfd/management"
	"github.com/mdlayher/ospfd/ospf2"
)

// activeAuthKey returns the output authentication key currently inside its
// validity window, RFC 2328 appendix D.3's rollover model: a key is usable
// for output from NotBefore until NotAfter (zero meaning no expiry), and
// ties between simultaneously valid keys prefer the higher ID, taken to be
// the newer key mid-rollover.
func (ps *peerState) activeAuthKey(now time.Time) (management.AuthKey, [16]byte, bool) {
	var best management.AuthKey
	var found bool
	for _, k := range ps.authKeys {
		if now.Before(k.NotBefore) {
			continue
		}
		if !k.NotAfter.IsZero() && !now.Before(k.NotAfter) {
			continue
		}
		if !found || k.ID > best.ID {
			best = k
			found = true
		}
	}
	if !found {
		return management.AuthKey{}, [16]byte{}, false
	}
	var raw [16]byte
	copy(raw[:], best.Key)
	return best, raw, true
}

// authHeader builds the Header ps's next outbound packet should carry, and
// returns a sign function to append after MarshalMessage: NoAuth if ps has
// no key inside its validity window, CryptographicMD5 otherwise.
func (r *Router) authHeader(ps *peerState) (ospf2.Header, func([]byte) []byte) {
	h := ospf2.Header{RouterID: r.cfg.RouterID, AreaID: ps.areaID}

	key, raw16, ok := ps.activeAuthKey(time.Now())
	if !ok {
		return h, func(b []byte) []byte { return b }
	}

	h.AuthType = ospf2.CryptographicMD5
	ps.cryptoSeq++
	h.SetCrypto(key.ID, 16, ps.cryptoSeq)
	return h, func(b []byte) []byte { return ospf2.AppendMD5(b, raw16) }
}

// verifyAuth reports whether raw's authentication is acceptable on ps: an
// interface with no configured keys accepts NoAuth traffic unconditionally;
// one with keys configured requires a valid CryptographicMD5 trailer signed
// with a key inside its validity window, RFC 2328 appendix D.4.3.
func (ps *peerState) verifyAuth(raw []byte) bool {
	if len(ps.authKeys) == 0 {
		return true
	}

	h, plen, err := ospf2.PeekHeader(raw)
	if err != nil || h.AuthType != ospf2.CryptographicMD5 {
		return false
	}

	key, ok := ps.authKeys[h.CryptoKeyID()]
	if !ok {
		return false
	}
	now := time.Now()
	if now.Before(key.NotBefore) || (!key.NotAfter.IsZero() && !now.Before(key.NotAfter)) {
		return false
	}

	var raw16 [16]byte
	copy(raw16[:], key.Key)
	ok, err = ospf2.VerifyMD5(raw, plen, raw16)
	return err == nil && ok
}
