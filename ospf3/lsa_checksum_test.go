package ospf3

import (
	"testing"

	"github.com/mdlayher/ospfd/ospfid"
)

func TestLSAChecksumIgnoresAge(t *testing.T) {
	lsa := &LSA{
		Header: LSAHeader{ID: LSAID{Type: RouterLSA, AdvertisingRouter: mustID(192, 0, 2, 1)}, SequenceNumber: ospfid.InitialSequenceNumber},
		Body:   &Router{Options: V6Bit, Links: []RouterLink{{Type: LinkPointToPoint, Metric: 5}}},
	}

	b, err := lsa.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !ChecksumValid(b) {
		t.Fatal("ChecksumValid rejected a freshly marshaled LSA")
	}

	// Changing only the age field must not invalidate the checksum.
	b[0], b[1] = 0x01, 0x2c // 300 seconds
	if !ChecksumValid(b) {
		t.Fatal("ChecksumValid rejected an LSA after only its age changed")
	}

	// Corrupting the body must invalidate it. The change is not 0xff: sums
	// mod 255 cannot tell 0x00 from 0xff.
	b[lsaHeaderLen] ^= 0x01
	if ChecksumValid(b) {
		t.Fatal("ChecksumValid accepted an LSA with a corrupted body")
	}
}

func TestParseLSARoundTrip(t *testing.T) {
	lsa := &LSA{
		Header: LSAHeader{ID: LSAID{Type: NetworkLSA, AdvertisingRouter: mustID(192, 0, 2, 1)}, SequenceNumber: ospfid.InitialSequenceNumber},
		Body:   &Network{Options: V6Bit, AttachedRouter: []ID{mustID(192, 0, 2, 1), mustID(192, 0, 2, 2)}},
	}

	b, err := lsa.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := ParseLSA(b)
	if err != nil {
		t.Fatalf("ParseLSA: %v", err)
	}
	if got.Header.ID != lsa.Header.ID {
		t.Fatalf("ID = %+v, want %+v", got.Header.ID, lsa.Header.ID)
	}
	if _, ok := got.Body.(*Network); !ok {
		t.Fatalf("Body type = %T, want *Network", got.Body)
	}
}
