package ospf3

import (
	"encoding/binary"
	"fmt"
)

// IntraAreaPrefix is an OSPFv3 Intra-Area-Prefix-LSA body, RFC5340 §A.4.10.
// It carries the prefixes attached to a router or transit network, kept
// separate from Router/Network LSA topology information so that prefix
// churn doesn't force re-origination of the topology LSAs (RFC5340 §4.4.3.9).
type IntraAreaPrefix struct {
	ReferencedLSType            LSType
	ReferencedLinkStateID       ID
	ReferencedAdvertisingRouter ID
	Prefixes                    []Prefix
}

func (p *IntraAreaPrefix) len() int {
	n := 12
	for _, pfx := range p.Prefixes {
		n += pfx.len()
	}
	return n
}

func (p *IntraAreaPrefix) marshal(b []byte) error {
	binary.BigEndian.PutUint16(b[0:2], uint16(len(p.Prefixes)))
	binary.BigEndian.PutUint16(b[2:4], uint16(p.ReferencedLSType))
	copy(b[4:8], p.ReferencedLinkStateID[:])
	copy(b[8:12], p.ReferencedAdvertisingRouter[:])

	off := 12
	for _, pfx := range p.Prefixes {
		pfx.marshal(b[off:])
		off += pfx.len()
	}
	return nil
}

func (p *IntraAreaPrefix) unmarshal(b []byte) error {
	if len(b) < 12 {
		return fmt.Errorf("not enough bytes for Intra-Area-Prefix LSA: %d: %w", len(b), errParse)
	}
	count := int(binary.BigEndian.Uint16(b[0:2]))
	p.ReferencedLSType = LSType(binary.BigEndian.Uint16(b[2:4]))
	copy(p.ReferencedLinkStateID[:], b[4:8])
	copy(p.ReferencedAdvertisingRouter[:], b[8:12])

	rest := b[12:]
	p.Prefixes = make([]Prefix, 0, count)
	for i := 0; i < count; i++ {
		pfx, n, err := parsePrefix(rest)
		if err != nil {
			return fmt.Errorf("Intra-Area-Prefix LSA: prefix %d: %w", i, err)
		}
		p.Prefixes = append(p.Prefixes, pfx)
		rest = rest[n:]
	}
	return nil
}
