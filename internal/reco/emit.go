package reco

import "sort"

// flipTrack reverses the track direction when a near-vertical upgoing
// direction contradicts the time-ordered hit pattern. This cuts background
// from downgoing tracks mis-reconstructed as upgoing. The heuristic is off
// when FlipTrackDeg<0 or FlipHitsDeg>180.
func flipTrack(ev *Event, t *Track, cfg *Config) {
	if cfg.FlipTrackDeg < 0 || cfg.FlipHitsDeg > 180 {
		return
	}
	if PolarAngleDeg(t.Dir) >= cfg.FlipTrackDeg {
		return
	}

	hits := append([]int(nil), t.Hits...)
	sort.SliceStable(hits, func(i, j int) bool {
		return ev.Hits[hits[i]].Time < ev.Hits[hits[j]].Time
	})

	// The hit path must start on a coincident hit; leading non-coincident
	// hits are dropped. Coarse-array hits pass through, the coarse array has
	// no coincidence concept.
	trimmed := make([]int, 0, len(hits))
	i := 0
	for ; i < len(hits); i++ {
		h := &ev.Hits[hits[i]]
		if ev.Sensors[h.Sensor].Group == GroupCoarse {
			trimmed = append(trimmed, hits[i])
			continue
		}
		if h.Coincident {
			break
		}
	}
	trimmed = append(trimmed, hits[i:]...)

	// Average hit-pattern direction: the sum of hops between consecutive
	// sensor positions in time order.
	var path Vec3
	for k := 1; k < len(trimmed); k++ {
		p1 := ev.Sensors[ev.Hits[trimmed[k-1]].Sensor].Pos
		p2 := ev.Sensors[ev.Hits[trimmed[k]].Sensor].Pos
		path = path.Add(p2.Sub(p1))
	}
	if path.Norm() == 0 {
		return
	}
	if PolarAngleDeg(path) <= cfg.FlipHitsDeg {
		return
	}

	t.Dir = t.Dir.Scale(-1)
	t.Flipped = true
}

// emitTracks turns the ranked jets of one partition into final tracks. A jet
// must carry at least MinAssocHits hits and MinAssocSensors sensors; the
// first qualifying jet fixes the quality cut at QCut times its rank, and
// lower-ranked jets below that cut are dropped. The track direction is the
// normalised jet momentum, subject to the flip heuristic.
//
// In the exclusive conditional modes the hits of every emitted track are
// marked in claimed so that later partitions no longer see them. With a
// negative Jangmax only the first qualifying jet is emitted.
func emitTracks(ev *Event, jets []*Jet, part Partition, p Params, cfg *Config, claimed []bool) []Track {
	var tracks []Track
	qcut := -1.0
	for _, j := range jets {
		nhits, _, nsensors, _ := j.tally(ev)
		if nhits < p.MinAssocHits {
			continue
		}
		if nsensors < p.MinAssocSensors {
			continue
		}
		// The first jet passing the support gates has the highest rank.
		if qcut < 0 {
			qcut = cfg.QCut * j.Q.Rank
		}
		if j.Q.Rank < qcut {
			continue
		}

		t := Track{
			Partition: part,
			Dir:       j.Momentum.Unit(),
			Ref:       j.Ref,
			T0:        j.T0,
			Hits:      j.hitIndexes(),
			Q:         j.Q,
		}
		if cfg.Conditional >= 6 && claimed != nil {
			for _, hi := range t.Hits {
				claimed[hi] = true
			}
		}
		flipTrack(ev, &t, cfg)
		tracks = append(tracks, t)

		if p.Jangmax < 0 {
			break
		}
	}
	return tracks
}
