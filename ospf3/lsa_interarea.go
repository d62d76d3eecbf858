package ospf3

import (
	"encoding/binary"
	"fmt"
)

// InterAreaPrefix is an OSPFv3 Inter-Area-Prefix-LSA body, RFC5340 §A.4.5 —
// the OSPFv3 analogue of an OSPFv2 Type 3 Summary-LSA, originated by an ABR
// for an intra-area prefix (or an aggregated area range) advertised into
// another area.
type InterAreaPrefix struct {
	Metric uint32 // 24 bits significant
	Prefix Prefix
}

func (p *InterAreaPrefix) len() int { return 4 + p.Prefix.len() }

func (p *InterAreaPrefix) marshal(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], p.Metric&0x00ffffff)
	p.Prefix.marshal(b[4:])
	return nil
}

func (p *InterAreaPrefix) unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("not enough bytes for Inter-Area-Prefix LSA: %d: %w", len(b), errParse)
	}
	p.Metric = binary.BigEndian.Uint32(b[0:4]) & 0x00ffffff

	pfx, _, err := parsePrefix(b[4:])
	if err != nil {
		return fmt.Errorf("Inter-Area-Prefix LSA: %w", err)
	}
	p.Prefix = pfx
	return nil
}

// InterAreaRouter is an OSPFv3 Inter-Area-Router-LSA body, RFC5340 §A.4.6 —
// the OSPFv3 analogue of an OSPFv2 Type 4 ASBR-Summary-LSA, advertising
// reachability to an ASBR in another area.
type InterAreaRouter struct {
	Options             Options
	Metric              uint32 // 24 bits significant
	DestinationRouterID ID
}

func (r *InterAreaRouter) len() int { return 12 }

func (r *InterAreaRouter) marshal(b []byte) error {
	b[0] = 0 // reserved
	copy(b[1:4], encodeOptions24(r.Options))
	binary.BigEndian.PutUint32(b[4:8], r.Metric&0x00ffffff)
	copy(b[8:12], r.DestinationRouterID[:])
	return nil
}

func (r *InterAreaRouter) unmarshal(b []byte) error {
	if len(b) < 12 {
		return fmt.Errorf("not enough bytes for Inter-Area-Router LSA: %d: %w", len(b), errParse)
	}
	r.Options = options(b[0:4])
	r.Metric = binary.BigEndian.Uint32(b[4:8]) & 0x00ffffff
	copy(r.DestinationRouterID[:], b[8:12])
	return nil
}
