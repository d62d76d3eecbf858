package policy

import "net"

// A Candidate is one externally-originated route offered for policy
// evaluation, RFC 2328's external-route origination path: a Type-1 or
// Type-2 AS-External-LSA about to be announced.
type Candidate struct {
	Prefix      *net.IPNet
	NextHop     net.IP
	Metric      uint32
	ExternalBit bool // true selects Type-2 semantics over Type-1.
	Tag         uint32
}

// A Verdict is the outcome of evaluating a Candidate against the
// configured filter chain.
type Verdict int

// Possible Verdict values.
const (
	// Accept originates the candidate unchanged.
	Accept Verdict = iota
	// Reject suppresses origination entirely.
	Reject
	// Modify originates the candidate with Result in place of the
	// original fields.
	Modify
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "Accept"
	case Reject:
		return "Reject"
	case Modify:
		return "Modify"
	default:
		return "Verdict(?)"
	}
}

// A Decision is Filter's full answer: the Verdict, plus (for Modify) the
// replacement Candidate to originate instead.
type Decision struct {
	Verdict Verdict
	Result  Candidate
}

// A Filter evaluates one Candidate and returns a Decision. Implementations
// may inspect any field of Candidate; Tag is opaque to the core but not to
// policy, which is exactly where tag-based filtering is expected to live.
type Filter interface {
	Evaluate(c Candidate) Decision
}

// AcceptAll is a Filter that accepts every candidate unchanged, useful when
// no policy configuration is present.
type AcceptAll struct{}

var _ Filter = AcceptAll{}

// Evaluate implements Filter.
func (AcceptAll) Evaluate(c Candidate) Decision {
	return Decision{Verdict: Accept, Result: c}
}

// Chain evaluates a sequence of Filters in order. Each Accept feeds its
// (possibly unchanged) Result to the next filter; the first Reject or
// Modify stops the chain immediately and becomes its result.
type Chain []Filter

var _ Filter = Chain(nil)

// Evaluate implements Filter.
func (c Chain) Evaluate(cand Candidate) Decision {
	d := Decision{Verdict: Accept, Result: cand}
	for _, f := range c {
		d = f.Evaluate(d.Result)
		if d.Verdict != Accept {
			return d
		}
	}
	return d
}

// TagFilter rejects every candidate whose Tag is in Reject, and accepts all
// others unchanged. It is the simplest concrete Filter, grounded directly
// on the tag-based accept/reject policy RFC 2328 attaches to AS-External
// route redistribution.
type TagFilter struct {
	Reject map[uint32]bool
}

var _ Filter = TagFilter{}

// Evaluate implements Filter.
func (f TagFilter) Evaluate(c Candidate) Decision {
	if f.Reject[c.Tag] {
		return Decision{Verdict: Reject}
	}
	return Decision{Verdict: Accept, Result: c}
}
