package peer

import (
	"testing"

	"github.com/mdlayher/ospfd/ospfid"
)

func id(b byte) ospfid.ID { return ospfid.ID{192, 0, 2, b} }

func TestElectDRBDRHighestPriorityWins(t *testing.T) {
	// id(3) is already the acting DR; BDR is contested among the rest by
	// priority.
	self := Candidate{ID: id(1), Priority: 1, Eligible: true}
	others := []Candidate{
		{ID: id(2), Priority: 2, Eligible: true},
		{ID: id(3), Priority: 3, Eligible: true, DeclaredDR: id(3)},
	}

	dr, bdr, st := ElectDRBDR(self, others)
	if dr != id(3) {
		t.Fatalf("dr = %s, want %s", dr, id(3))
	}
	if bdr != id(2) {
		t.Fatalf("bdr = %s, want %s", bdr, id(2))
	}
	if st != DROther {
		t.Fatalf("self state = %s, want DROther", st)
	}
}

func TestElectDRBDRExistingDRSticky(t *testing.T) {
	// A lower-priority candidate that already declares itself DR keeps the
	// role; RFC 2328 §9.4 does not preempt an acting DR on priority alone.
	// id(3) is a non-declaring bystander so self isn't the only remaining
	// BDR candidate.
	self := Candidate{ID: id(1), Priority: 5, Eligible: true}
	others := []Candidate{
		{ID: id(2), Priority: 1, Eligible: true, DeclaredDR: id(2)},
		{ID: id(3), Priority: 10, Eligible: true},
	}

	dr, bdr, st := ElectDRBDR(self, others)
	if dr != id(2) {
		t.Fatalf("dr = %s, want %s (sticky)", dr, id(2))
	}
	if bdr != id(3) {
		t.Fatalf("bdr = %s, want %s", bdr, id(3))
	}
	if st != DROther {
		t.Fatalf("self state = %s, want DROther", st)
	}
}

func TestElectDRBDRSelfBecomesDR(t *testing.T) {
	self := Candidate{ID: id(9), Priority: 10, Eligible: true}
	others := []Candidate{
		{ID: id(2), Priority: 1, Eligible: true},
	}

	dr, bdr, st := ElectDRBDR(self, others)
	if dr != id(9) {
		t.Fatalf("dr = %s, want self", dr)
	}
	if bdr != id(2) {
		t.Fatalf("bdr = %s, want %s", bdr, id(2))
	}
	if st != DR {
		t.Fatalf("self state = %s, want DR", st)
	}
}

func TestElectDRBDRZeroPriorityExcluded(t *testing.T) {
	self := Candidate{ID: id(1), Priority: 0, Eligible: true}
	others := []Candidate{
		{ID: id(2), Priority: 1, Eligible: true},
	}

	dr, bdr, st := ElectDRBDR(self, others)
	if dr != id(2) {
		t.Fatalf("dr = %s, want %s", dr, id(2))
	}
	if bdr != (ospfid.ID{}) {
		t.Fatalf("bdr = %s, want zero (sole eligible candidate becomes DR, leaving no Backup)", bdr)
	}
	if st != DROther {
		t.Fatalf("self state = %s, want DROther (priority 0 never becomes DR/BDR)", st)
	}
}
