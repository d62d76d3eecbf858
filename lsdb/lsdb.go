package lsdb

import (
	"fmt"
	"sync"
	"time"

	"github.com/mdlayher/ospfd/ospfid"
)

// An Action reports what InsertOrReplace did with an incoming LSA instance.
type Action int

// Possible Action values.
const (
	// Rejected means the incoming instance was not newer than (or was
	// identical to) the stored copy; the database is unchanged.
	Rejected Action = iota
	// Installed means no prior copy existed and the LSA was stored fresh.
	Installed
	// Refreshed means a newer instance replaced an existing copy.
	Refreshed
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case Rejected:
		return "Rejected"
	case Installed:
		return "Installed"
	case Refreshed:
		return "Refreshed"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// An Entry is one stored LSA instance: its freshness metadata plus the
// encoded bytes the flooding layer retransmits verbatim.
type Entry struct {
	Key ospfid.Key

	Age            time.Duration
	SequenceNumber ospfid.SequenceNumber
	Checksum       uint16

	// Raw is the full encoded LSA (header and body), as produced by the
	// ospf2 or ospf3 codec's LSA.Marshal. It is stored as given: AgeTick
	// advances Age but does not rewrite the Age field encoded in Raw.
	Raw []byte

	// SelfOriginated is true when AdvertisingRouter is this router's own
	// Router-ID; only this router may refresh or flush such an entry.
	SelfOriginated bool

	// sinceTick sums the AgeTick deltas applied since this entry was last
	// stored (store resets it to zero), kept apart from Age so no
	// wall-clock time is held at rest.
	sinceTick time.Duration
}

// SinceInstall returns how long ago this router last installed (inserted or
// replaced) this entry, independent of the LSA's own Age field. The ospfd
// Router compares it against LSRefreshTime to refresh self-originated LSAs.
func (e *Entry) SinceInstall() time.Duration {
	return e.sinceTick
}

// clone returns a deep copy of e suitable for handing to a caller outside
// the database's lock.
func (e *Entry) clone() *Entry {
	c := *e
	c.Raw = append([]byte(nil), e.Raw...)
	return &c
}

// A Database is an OSPF Link State Database: a concurrency-safe store of
// Entry values keyed by ospfid.Key, implementing lookup, insertion with the
// RFC 2328 §13.1 freshness comparison, per-second aging, and
// self-origination sequencing.
type Database struct {
	mu      sync.RWMutex
	entries map[ospfid.Key]*Entry

	// pendingFlush holds entries that have reached MaxAge and are waiting
	// for Remove to be called once the flooding layer reports no neighbor
	// still has them outstanding on a retransmission list.
	pendingFlush map[ospfid.Key]struct{}
}

// New returns an empty Database.
func New() *Database {
	return &Database{
		entries:      make(map[ospfid.Key]*Entry),
		pendingFlush: make(map[ospfid.Key]struct{}),
	}
}

// Lookup returns the stored Entry for key, if any. The returned Entry is a
// copy; mutating it has no effect on the database.
func (d *Database) Lookup(key ospfid.Key) (*Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[key]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// InsertOrReplace stores e if it is newer than (or absent from) the current
// database, per RFC 2328 §13.1. age is e's current age, independent of the
// age field the caller may have encoded into e.Raw.
func (d *Database) InsertOrReplace(e *Entry, age time.Duration) Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.entries[e.Key]
	if !ok {
		d.store(e, age)
		return Installed
	}

	if !ospfid.Newer(e.SequenceNumber, cur.SequenceNumber, e.Checksum, cur.Checksum, age, cur.Age) {
		return Rejected
	}

	d.store(e, age)
	return Refreshed
}

func (d *Database) store(e *Entry, age time.Duration) {
	stored := e.clone()
	stored.Age = ospfid.Clamp(age)
	stored.sinceTick = 0
	d.entries[e.Key] = stored
	delete(d.pendingFlush, e.Key)
}

// Remove deletes key from the database unconditionally, used once a MaxAge
// flush has been fully acknowledged (no neighbor retransmission lists still
// reference it).
func (d *Database) Remove(key ospfid.Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
	delete(d.pendingFlush, key)
}

// AgeTick advances every stored entry's age by delta (conventionally one
// second), returning the keys that crossed into MaxAge on this tick and
// must be reflooded with Age = MaxAge before eventual Remove.
func (d *Database) AgeTick(delta time.Duration) []ospfid.Key {
	d.mu.Lock()
	defer d.mu.Unlock()

	var expired []ospfid.Key
	for k, e := range d.entries {
		wasMax := e.Age >= ospfid.MaxAge
		e.Age = ospfid.Clamp(e.Age + delta)
		e.sinceTick += delta

		if e.Age >= ospfid.MaxAge && !wasMax {
			if _, pending := d.pendingFlush[k]; !pending {
				d.pendingFlush[k] = struct{}{}
				expired = append(expired, k)
			}
		}
	}
	return expired
}

// Iterate returns every stored Entry, in an unspecified but stable-for-the-
// call order, for use in Database Description exchange. Returned entries
// are copies.
func (d *Database) Iterate() []*Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.clone())
	}
	return out
}

// Len returns the number of stored entries.
func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// NextSequence returns the sequence number to use for the next instance of
// a self-originated LSA identified by key, and ok=false if the current
// instance has saturated at MaxSequenceNumber and must first be flushed (at
// MaxAge) and fully acknowledged before re-origination can resume at
// ospfid.InitialSequenceNumber.
func (d *Database) NextSequence(key ospfid.Key) (ospfid.SequenceNumber, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cur, ok := d.entries[key]
	if !ok {
		return ospfid.InitialSequenceNumber, true
	}
	return cur.SequenceNumber.Next()
}

// CheckSums re-verifies every stored entry's checksum using verify, which
// the caller supplies bound to the appropriate codec (ospf2.ChecksumValid
// or ospf3.ChecksumValid). It returns the keys of entries that failed
// verification; the caller is responsible for purging and, if
// self-originated, re-originating them.
func (d *Database) CheckSums(verify func(raw []byte) bool) []ospfid.Key {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var bad []ospfid.Key
	for k, e := range d.entries {
		if !verify(e.Raw) {
			bad = append(bad, k)
		}
	}
	return bad
}
