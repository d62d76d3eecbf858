package peer

import "time"

// HelloParams are the fields of a received Hello that must match this
// Peer's configuration before the Hello is accepted, RFC 2328 §10.5. The
// network mask check only applies to OSPFv2; callers on OSPFv3 pass
// MaskMatches: true.
type HelloParams struct {
	HelloInterval      time.Duration
	RouterDeadInterval time.Duration
	MaskMatches        bool
	AreaExternalCapable bool // this Peer's area E-bit expectation
	NeighborExternalCapable bool // the E-bit carried in the received Hello
}

// ValidateHello reports whether a received Hello is acceptable on this
// Peer. A mismatch here means the Hello is dropped without creating or
// advancing a neighbor (RFC 2328 §10.5).
func (p *Peer) ValidateHello(params HelloParams) bool {
	p.mu.Lock()
	cfg := p.Config
	p.mu.Unlock()

	if params.HelloInterval != cfg.HelloInterval {
		return false
	}
	if params.RouterDeadInterval != cfg.RouterDeadInterval {
		return false
	}
	if !params.MaskMatches {
		return false
	}
	if params.AreaExternalCapable != params.NeighborExternalCapable {
		return false
	}
	return true
}
