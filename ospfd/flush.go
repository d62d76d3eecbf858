package ospfd

import (
	"github.com/mdlayher/ospfd/ospf2"
	"github.com/mdlayher/ospfd/ospfid"
)

// floodMaxAge reflloods key at ospfid.MaxAge to every neighbor in as,
// beginning the RFC 2328 §14 premature-aging flush procedure. The Fletcher
// checksum excludes the Age field (ospf2.ChecksumValid), so patching
// Header.Age and re-marshaling reproduces an otherwise byte-identical,
// still-valid instance. The key is recorded in as.flushing so reapFlushed
// knows to wait for every neighbor's retransmission list to clear it
// before the entry is actually removed from the database.
func (r *Router) floodMaxAge(as *areaState, key ospfid.Key) {
	e, ok := as.area.Database().Lookup(key)
	if !ok {
		return
	}

	lsa, err := ospf2.ParseLSA(e.Raw)
	if err != nil {
		return
	}
	lsa.Header.Age = ospfid.MaxAge
	raw, err := lsa.Marshal()
	if err != nil {
		return
	}

	// Keep the MaxAge instance as the database copy until it is reaped.
	e.Raw = raw
	db := as.area.Database()
	db.Remove(key)
	db.InsertOrReplace(e, ospfid.MaxAge)

	if as.flushing == nil {
		as.flushing = make(map[ospfid.Key]struct{})
	}
	as.flushing[key] = struct{}{}

	r.floodToOthers(as, "", raw)
}

// reapFlushed removes every as.flushing key that no neighbor still holds on
// a link-state retransmission list, completing the flush floodMaxAge
// began.
func (r *Router) reapFlushed(as *areaState) {
	for key := range as.flushing {
		if r.outstandingAnywhere(as, key) {
			continue
		}
		as.area.Database().Remove(key)
		delete(as.flushing, key)
	}
}

// outstandingAnywhere reports whether any neighbor on as still holds key on
// its link-state retransmission list.
func (r *Router) outstandingAnywhere(as *areaState, key ospfid.Key) bool {
	for _, ps := range as.peers {
		for _, n := range ps.peer.Neighbors() {
			if _, ok := n.Retransmissions()[key]; ok {
				return true
			}
		}
	}
	return false
}
