package reco

import "testing"

func rankedJet(ev *Event, rank float64, hits ...int) *Jet {
	j := singletonJet(ev, candidate(Vec3{0, 0, 0}, Vec3{0, 0, 1}, 0, 1, hits...))
	j.Q.Rank = rank
	return j
}

func TestEmitTracksQualityCut(t *testing.T) {
	ev := lineEvent()
	p := lineParams() // MinAssocSensors 2
	cfg := lineConfig()

	jets := []*Jet{
		rankedJet(ev, 4.0, 0, 1, 2), // fixes qcut at 0.8*4 = 3.2
		rankedJet(ev, 3.9, 0),       // one sensor, fails the support gate
		rankedJet(ev, 3.0, 0, 1),    // below the cut
		rankedJet(ev, 3.5, 1, 2),    // above the cut
	}
	tracks := emitTracks(ev, jets, Primary, p, &cfg, nil)
	if len(tracks) != 2 {
		t.Fatalf("emitted %d tracks, want 2", len(tracks))
	}
	if tracks[0].Q.Rank != 4.0 || tracks[1].Q.Rank != 3.5 {
		t.Errorf("emitted ranks %v, %v; want 4.0, 3.5", tracks[0].Q.Rank, tracks[1].Q.Rank)
	}
	if tracks[0].Partition != Primary {
		t.Errorf("partition = %v, want Primary", tracks[0].Partition)
	}
	if !almostEqual(tracks[0].Dir.Norm(), 1, 1e-12) {
		t.Errorf("track dir not normalised: %v", tracks[0].Dir)
	}
	if len(tracks[0].Hits) != 3 {
		t.Errorf("track carries %d hits, want 3", len(tracks[0].Hits))
	}
}

func TestEmitTracksCutFromFirstQualifying(t *testing.T) {
	// The highest-ranked jet fails the support gates; the cut comes from the
	// first jet that passes them.
	ev := lineEvent()
	p := lineParams()
	cfg := lineConfig()

	jets := []*Jet{
		rankedJet(ev, 10, 0),     // one sensor, no gate pass
		rankedJet(ev, 2.0, 0, 1), // qcut = 1.6
		rankedJet(ev, 1.7, 1, 2), // survives
		rankedJet(ev, 1.5, 0, 2), // below 1.6
	}
	tracks := emitTracks(ev, jets, Primary, p, &cfg, nil)
	if len(tracks) != 2 {
		t.Fatalf("emitted %d tracks, want 2", len(tracks))
	}
}

func TestEmitTracksSingleBest(t *testing.T) {
	ev := lineEvent()
	p := lineParams()
	p.Jangmax = -1 // keep only the best track
	cfg := lineConfig()

	jets := []*Jet{
		rankedJet(ev, 4.0, 0, 1, 2),
		rankedJet(ev, 4.0, 0, 1),
	}
	tracks := emitTracks(ev, jets, Primary, p, &cfg, nil)
	if len(tracks) != 1 {
		t.Fatalf("emitted %d tracks with jangmax<0, want 1", len(tracks))
	}
}

func TestEmitTracksClaimHits(t *testing.T) {
	ev := lineEvent()
	p := lineParams()
	cfg := lineConfig()
	jets := []*Jet{rankedJet(ev, 4.0, 0, 1, 2)}

	claimed := make([]bool, len(ev.Hits))
	emitTracks(ev, jets, Primary, p, &cfg, claimed)
	for _, c := range claimed {
		if c {
			t.Fatal("hits claimed outside the exclusive conditional modes")
		}
	}

	cfg.Conditional = 6
	emitTracks(ev, jets, Primary, p, &cfg, claimed)
	for hi, c := range claimed {
		if !c {
			t.Errorf("hit %d not claimed in exclusive mode", hi)
		}
	}
}

func flipEvent() *Event {
	// Three fine sensors straight down the z axis, hit top to bottom.
	ev := &Event{}
	for i, z := range []float64{100, 50, 0} {
		si := ev.AddSensor(Sensor{
			ID:       i + 1,
			StringID: i + 1,
			Group:    GroupPrimary,
			Pos:      Vec3{0, 0, z},
		})
		ev.AddHit(Hit{Sensor: si, Amp: 1, Time: float64(10 * i), Coincident: true})
	}
	return ev
}

func TestFlipTrackDisabledByDefault(t *testing.T) {
	ev := flipEvent()
	cfg := DefaultConfig() // flip thresholds (-999, 999)
	tr := Track{Dir: Vec3{0, 0, 1}, Hits: []int{0, 1, 2}}
	flipTrack(ev, &tr, &cfg)
	if tr.Flipped || tr.Dir != (Vec3{0, 0, 1}) {
		t.Errorf("flip heuristic ran despite being disabled")
	}
}

func TestFlipTrack(t *testing.T) {
	ev := flipEvent()
	cfg := DefaultConfig()
	cfg.FlipTrackDeg = 10
	cfg.FlipHitsDeg = 90

	// Near-vertical upgoing direction against a downgoing hit pattern.
	tr := Track{Dir: Vec3{0, 0, 1}, Hits: []int{2, 0, 1}}
	flipTrack(ev, &tr, &cfg)
	if !tr.Flipped || tr.Dir != (Vec3{0, 0, -1}) {
		t.Errorf("track not flipped: dir = %v, flipped = %v", tr.Dir, tr.Flipped)
	}

	// A track outside the polar window is left alone.
	tr = Track{Dir: Vec3{1, 0, 1}, Hits: []int{0, 1, 2}}
	flipTrack(ev, &tr, &cfg)
	if tr.Flipped {
		t.Errorf("horizontal track flipped")
	}
}

func TestFlipTrackSkipsLeadingNonCoincident(t *testing.T) {
	// The earliest hit is non-coincident and below the others; counting it
	// would turn the hit path upward and mask the flip.
	ev := &Event{}
	s0 := ev.AddSensor(Sensor{ID: 1, StringID: 1, Group: GroupPrimary, Pos: Vec3{0, 0, -100}})
	s1 := ev.AddSensor(Sensor{ID: 2, StringID: 2, Group: GroupPrimary, Pos: Vec3{0, 0, 100}})
	s2 := ev.AddSensor(Sensor{ID: 3, StringID: 3, Group: GroupPrimary, Pos: Vec3{0, 0, 0}})
	ev.AddHit(Hit{Sensor: s0, Amp: 1, Time: 0, Coincident: false})
	ev.AddHit(Hit{Sensor: s1, Amp: 1, Time: 5, Coincident: true})
	ev.AddHit(Hit{Sensor: s2, Amp: 1, Time: 10, Coincident: true})

	cfg := DefaultConfig()
	cfg.FlipTrackDeg = 10
	cfg.FlipHitsDeg = 90

	tr := Track{Dir: Vec3{0, 0, 1}, Hits: []int{0, 1, 2}}
	flipTrack(ev, &tr, &cfg)
	if !tr.Flipped || tr.Dir != (Vec3{0, 0, -1}) {
		t.Errorf("leading non-coincident hit not skipped: dir = %v, flipped = %v",
			tr.Dir, tr.Flipped)
	}
}
