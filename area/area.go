package area

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mdlayher/ospfd/lsdb"
	"github.com/mdlayher/ospfd/ospfid"
)

// MinLSArrival is the minimum time that must pass before an LSA instance in
// the database can be superseded by a newer one received over the wire,
// RFC 2328 §13 step 4.
const MinLSArrival = 1 * time.Second

// A Type is the kind of area, governing which LSA types are allowed to
// flood into it.
type Type int

// Possible Type values.
const (
	Normal Type = iota
	Stub
	NSSA
)

// Config holds the parameters an Area is created with.
type Config struct {
	ID              ospfid.ID
	Type            Type
	StubDefaultCost uint16
	Summaries       bool
}

// An Area owns one area's Link-State Database and address ranges.
type Area struct {
	Config

	mu      sync.Mutex
	db      *lsdb.Database
	ranges  []*Range
	arrival map[ospfid.Key]*rate.Limiter

	// now is the clock arrivalAllowed reads, overridable in tests so
	// MinLSArrival's real-time rate limiting doesn't force tests to sleep
	// out a wall-clock second.
	now func() time.Time
}

// New returns an empty Area.
func New(cfg Config) *Area {
	return &Area{
		Config: cfg,
		db:     lsdb.New(),
		now:    time.Now,
	}
}

// Database returns the area's Link-State Database.
func (a *Area) Database() *lsdb.Database {
	return a.db
}

// typeAllowed reports whether an LSA of the given type may be flooded into
// this area, RFC 2328 §13 step 2 ("ls-type is known in this area's scope").
// asExternalType identifies the AS-External LSA type code for the codec in
// use (5 for OSPFv2, the OSPFv3 bitmask equivalent), since area is
// codec-agnostic and doesn't otherwise know LS-type numbering.
func (a *Area) typeAllowed(lsType uint16, asExternalType uint16) bool {
	if a.Type == Normal {
		return true
	}
	// Stub and NSSA areas never carry AS-External-LSAs (RFC 2328 §3.6);
	// NSSA areas instead use Type-7, a distinct LS type the caller already
	// excludes from asExternalType.
	return lsType != asExternalType
}

// Decision is the outcome of Accept's evaluation of a received LSA against
// RFC 2328 §13 steps 1-4.
type Decision int

// Possible Decision values.
const (
	// Reject discards the LSA with no further action: bad checksum,
	// disallowed type in this area's scope, or MinLSArrival rate limiting.
	Reject Decision = iota
	// ImplicitAck means the received instance is identical to the LSDB
	// copy: treat it as an acknowledgment for the sender's retransmission
	// list and do not re-flood.
	ImplicitAck
	// SendBack means the received instance is older than the LSDB copy:
	// send the LSDB copy back to the sender and discard the received one.
	SendBack
	// Install means the received instance is newer (or there was no
	// existing copy): the caller should install it and flood it onward.
	Install
)

// Accept evaluates a received LSA against the database, implementing RFC
// 2328 §13 steps 1-4. checksumValid and typeKnown are computed by the
// caller (the codec layer knows how to verify a checksum and classify a
// type; Accept only applies the resulting policy).
func (a *Area) Accept(key ospfid.Key, checksumValid, typeKnown bool, seq ospfid.SequenceNumber, checksum uint16, age time.Duration) (Decision, *lsdb.Entry) {
	if !checksumValid || !typeKnown {
		return Reject, nil
	}

	existing, ok := a.db.Lookup(key)
	if !ok {
		return Install, nil
	}

	switch {
	case ospfid.Newer(seq, existing.SequenceNumber, checksum, existing.Checksum, age, existing.Age):
		if !a.arrivalAllowed(key) {
			return Reject, existing
		}
		return Install, existing
	case ospfid.Newer(existing.SequenceNumber, seq, existing.Checksum, checksum, existing.Age, age):
		return SendBack, existing
	default:
		return ImplicitAck, existing
	}
}

// arrivalAllowed enforces MinLSArrival per LSA identity with a
// golang.org/x/time/rate limiter (one token per MinLSArrival, burst 1)
// rather than a hand-rolled last-seen timestamp map. Install takes the
// token when it stores an instance, so a newer instance arriving within
// MinLSArrival of that install is throttled.
func (a *Area) arrivalAllowed(key ospfid.Key) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.arrival == nil {
		a.arrival = make(map[ospfid.Key]*rate.Limiter)
	}
	lim, ok := a.arrival[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(MinLSArrival), 1)
		a.arrival[key] = lim
	}
	return lim.AllowN(a.now(), 1)
}

// Install inserts or replaces an LSA instance in the database. Callers call
// this after Accept returns Install (or for self-originated LSAs, which
// skip Accept entirely). age is the LSA's own current age, independent of
// local install-time bookkeeping.
func (a *Area) Install(entry *lsdb.Entry, age time.Duration) lsdb.Action {
	action := a.db.InsertOrReplace(entry, age)
	if action != lsdb.Rejected {
		// Start this instance's MinLSArrival window.
		a.arrivalAllowed(entry.Key)
	}
	return action
}
