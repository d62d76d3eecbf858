package peer

import (
	"sort"

	"github.com/mdlayher/ospfd/neighbor"
	"github.com/mdlayher/ospfd/ospfid"
)

// A Candidate is one participant in Designated Router election: either a
// discovered Neighbor or this router itself.
type Candidate struct {
	ID          ospfid.ID
	Priority    uint8
	DeclaredDR  ospfid.ID
	DeclaredBDR ospfid.ID

	// Eligible reports whether the candidate's neighbor state is at least
	// TwoWay (always true for self).
	Eligible bool
}

// rankKey orders candidates for BDR and DR selection: a candidate that
// declares itself for the role being filled sorts first (only meaningful
// for the BDR pass, where "declares itself BDR" breaks ties before
// priority), then by priority descending, then by Router-ID descending
// (RFC 2328 §9.4 steps 2 and 3).
func rankKey(c Candidate, declaresRole bool) (bool, uint8, ospfid.ID) {
	return declaresRole, c.Priority, c.ID
}

func selectHighest(cands []Candidate, declaresRole func(Candidate) bool) (ospfid.ID, bool) {
	if len(cands) == 0 {
		return ospfid.ID{}, false
	}

	sort.Slice(cands, func(i, j int) bool {
		di, pi, idi := rankKey(cands[i], declaresRole(cands[i]))
		dj, pj, idj := rankKey(cands[j], declaresRole(cands[j]))
		if di != dj {
			return di // true (self-declared) sorts first
		}
		if pi != pj {
			return pi > pj
		}
		return idj.Less(idi) // higher Router-ID first
	})

	return cands[0].ID, true
}

// electOnce runs a single pass of RFC 2328 §9.4's algorithm: it first picks
// the BDR from eligible candidates not currently declaring themselves DR,
// then the DR from candidates declaring themselves DR (falling back to the
// newly elected BDR if none do).
func electOnce(self Candidate, neighbors []Candidate) (dr, bdr ospfid.ID) {
	all := append([]Candidate{self}, neighbors...)

	var eligible []Candidate
	for _, c := range all {
		if c.Priority > 0 && (c.Eligible || c.ID == self.ID) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return ospfid.ID{}, ospfid.ID{}
	}

	var bdrCands []Candidate
	for _, c := range eligible {
		if c.DeclaredDR != c.ID {
			bdrCands = append(bdrCands, c)
		}
	}
	bdr, _ = selectHighest(bdrCands, func(c Candidate) bool { return c.DeclaredBDR == c.ID })

	var drCands []Candidate
	for _, c := range eligible {
		if c.DeclaredDR == c.ID {
			drCands = append(drCands, c)
		}
	}
	if len(drCands) > 0 {
		dr, _ = selectHighest(drCands, func(Candidate) bool { return false })
	} else {
		// Nobody has yet declared itself DR: RFC 2328 §9.4 step 3 falls
		// back to the BDR just elected in step 2.
		dr = bdr
	}

	// A router can never stand as its own Backup, so when the DR fallback
	// above picks the same router chosen as BDR, leave BDR undefined. A
	// distinct BDR emerges once that router's own Hello starts carrying
	// its DR self-declaration and a fresh election excludes it from the
	// BDR candidate pool.
	if dr == bdr {
		bdr = ospfid.ID{}
	}

	return dr, bdr
}

// role derives the interface state implied by dr/bdr for self.
func role(self ospfid.ID, dr, bdr ospfid.ID) State {
	switch {
	case dr == self:
		return DR
	case bdr == self:
		return Backup
	default:
		return DROther
	}
}

// ElectDRBDR runs RFC 2328 §9.4's two-pass convergence: if the first pass
// changes self's own role, self's declared DR/BDR is updated to match and
// the algorithm runs once more so the second pass sees a consistent view.
// It returns the elected DR, BDR, and self's resulting interface state.
func ElectDRBDR(self Candidate, neighbors []Candidate) (dr, bdr ospfid.ID, selfState State) {
	dr, bdr = electOnce(self, neighbors)
	firstRole := role(self.ID, dr, bdr)

	if firstRole == DR {
		self.DeclaredDR = self.ID
	}
	if firstRole == Backup {
		self.DeclaredBDR = self.ID
	}
	if firstRole != DR && self.DeclaredDR == self.ID {
		self.DeclaredDR = ospfid.ID{}
	}
	if firstRole != Backup && self.DeclaredBDR == self.ID {
		self.DeclaredBDR = ospfid.ID{}
	}

	dr, bdr = electOnce(self, neighbors)
	return dr, bdr, role(self.ID, dr, bdr)
}

// CandidateFrom builds an election Candidate from a live Neighbor's last
// recorded Hello fields.
func CandidateFrom(n *neighbor.Neighbor) Candidate {
	return Candidate{
		ID:          n.ID,
		Priority:    n.Priority(),
		DeclaredDR:  n.DeclaredDR(),
		DeclaredBDR: n.DeclaredBDR(),
		Eligible:    n.State() >= neighbor.TwoWay,
	}
}
