package reco

import "testing"

// candidate fakes a selected track candidate: direction already rescaled to
// qtc, with a slice of event hit indices as support.
func candidate(ref, dir Vec3, t0, qtc float64, hits ...int) *TrackElement {
	te := &TrackElement{Ref: ref, Dir: dir.Unit().Scale(qtc), T0: t0, Hits: hits}
	te.Q.Nax = 1
	te.Q.Qtc = qtc
	return te
}

func TestCandidateDistance(t *testing.T) {
	// Parallel vertical candidates 5 m apart.
	tc1 := candidate(Vec3{0, 0, 0}, Vec3{0, 0, 1}, 0, 1)
	tc2 := candidate(Vec3{5, 0, 0}, Vec3{0, 0, 1}, 0, 1)
	if d := candidateDistance(tc1, tc2, true); !almostEqual(d, 5, 1e-12) {
		t.Errorf("in-volume distance = %v, want 5", d)
	}
	if d := candidateDistance(tc1, tc2, false); !almostEqual(d, 5, 1e-12) {
		t.Errorf("line-line distance = %v, want 5", d)
	}
	// In-volume takes the smaller of the two point-to-line distances.
	tc3 := candidate(Vec3{5, 0, 0}, Vec3{1, 0, 0}, 0, 1)
	if d := candidateDistance(tc1, tc3, true); !almostEqual(d, 0, 1e-12) {
		t.Errorf("in-volume distance (crossing) = %v, want 0", d)
	}
}

func TestClusterCandidates(t *testing.T) {
	ev := lineEvent()
	p := lineParams()

	// Two near-parallel candidates cluster; the orthogonal one is a
	// below-maximum singleton and is dropped.
	tc1 := candidate(Vec3{0, 0, 0}, Vec3{0, 0, 1}, 0, 10, 0, 1)
	tc2 := candidate(Vec3{5, 0, 0}, Vec3{0, 0, 1}, 10, 9, 1, 2)
	tc3 := candidate(Vec3{0, 0, 0}, Vec3{1, 0, 0}, 0, 8, 0)

	jets := clusterCandidates(ev, []*TrackElement{tc1, tc2, tc3}, p, 10)
	if len(jets) != 2 {
		t.Fatalf("got %d jets, want 2 (one per surviving seed)", len(jets))
	}
	for _, j := range jets {
		if len(j.Members) != 2 {
			t.Errorf("jet has %d members, want 2", len(j.Members))
		}
		if j.Ref != (Vec3{2.5, 0, 0}) {
			t.Errorf("jet ref = %v, want (2.5,0,0)", j.Ref)
		}
		if !almostEqual(j.T0, 5, 1e-12) {
			t.Errorf("jet t0 = %v, want 5", j.T0)
		}
		if !almostEqual(j.Momentum.Norm(), 19, 1e-12) {
			t.Errorf("jet momentum = %v, want norm 19", j.Momentum)
		}
	}

	// Both jets share the same support, so every rank term saturates:
	// avqtc/qmax = 0.95 plus three unit count terms.
	q := jets[0].Q
	if !almostEqual(q.Rank, 3.95, 1e-9) {
		t.Errorf("rank = %v, want 3.95", q.Rank)
	}
	if q.NHits != 3 || q.NSensors != 3 || q.NCoincident != 3 {
		t.Errorf("jet counts = (%d,%d,%d), want (3,3,3)", q.NHits, q.NSensors, q.NCoincident)
	}
	if q.NHitsMax != 3 || q.NTracksMax != 2 {
		t.Errorf("jet maxima = (%d,%d), want (3,2)", q.NHitsMax, q.NTracksMax)
	}
}

func TestClusterCandidatesSingletons(t *testing.T) {
	ev := lineEvent()
	p := lineParams()

	best := candidate(Vec3{0, 0, 0}, Vec3{0, 0, 1}, 0, 10, 0)
	weak := candidate(Vec3{0, 0, 0}, Vec3{1, 0, 0}, 0, 9, 1)

	// Only the best-quality singleton survives.
	jets := clusterCandidates(ev, []*TrackElement{best, weak}, p, 10)
	if len(jets) != 1 || jets[0].Members[0] != best {
		t.Fatalf("got %d jets, want only the best-quality singleton", len(jets))
	}

	// With clustering disabled every singleton is kept.
	p.Tangmax = 0
	jets = clusterCandidates(ev, []*TrackElement{best, weak}, p, 10)
	if len(jets) != 2 {
		t.Errorf("tangmax=0: got %d jets, want 2", len(jets))
	}
}

func TestRankJetsOrdering(t *testing.T) {
	ev := lineEvent()
	strong := &Jet{}
	strong.addMember(candidate(Vec3{}, Vec3{0, 0, 1}, 0, 10, 0, 1, 2))
	weakJet := &Jet{}
	weakJet.addMember(candidate(Vec3{}, Vec3{0, 0, 1}, 0, 5, 0))

	m := &jetMaxima{}
	m.observe(ev, weakJet)
	m.observe(ev, strong)

	jets := []*Jet{weakJet, strong}
	rankJets(ev, jets, m, 10)
	if jets[0] != strong {
		t.Fatalf("jets not ordered by decreasing rank")
	}
	if jets[0].Q.Rank <= jets[1].Q.Rank {
		t.Errorf("ranks %v <= %v after sort", jets[0].Q.Rank, jets[1].Q.Rank)
	}
	// avqtc/qmax + nsensors/3 + nhits/3 + ncoinc/3 for the weak singleton.
	if !almostEqual(jets[1].Q.Rank, 0.5+1.0/3+1.0/3+1.0/3, 1e-9) {
		t.Errorf("weak jet rank = %v", jets[1].Q.Rank)
	}
}
