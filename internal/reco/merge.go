package reco

// jetDistance measures the separation between two jets along their momentum
// directions, with the same in-volume option as candidateDistance.
func jetDistance(j1, j2 *Jet, inVolume bool) float64 {
	if inVolume {
		d := PointLineDistance(j2.Ref, j1.Ref, j1.Momentum)
		if d2 := PointLineDistance(j1.Ref, j2.Ref, j2.Momentum); d2 < d {
			d = d2
		}
		return d
	}
	return LineLineDistance(j1.Ref, j1.Momentum, j2.Ref, j2.Momentum)
}

// mergeJets merges jets within the configured opening angle and separation
// into the final jet list. Each pass walks the jets in rank order and lets
// the current jet absorb every later-and-earlier jet within bounds; absorbed
// members are transferred and the absorbing jet's reference point and time
// are recomputed as the mean over its own and the absorbed references. Jets
// are re-ranked and re-sorted after every pass; with JIterate the passes
// repeat until no merge happens.
//
// A non-positive Jangmax disables merging and returns the jets unchanged.
func mergeJets(ev *Event, jets []*Jet, p Params, qmax float64) []*Jet {
	if p.Jangmax <= 0 || len(jets) == 0 {
		return jets
	}

	maxima := &jetMaxima{}
	var pos vecSample
	var times statSample
	for merged := true; merged; {
		merged = false
		for i1, j1 := range jets {
			if j1 == nil {
				continue
			}
			pos.reset()
			times.reset()
			pos.add(j1.Ref)
			times.add(j1.T0)

			for i2, j2 := range jets {
				if i2 == i1 || j2 == nil {
					continue
				}
				if OpeningAngleDeg(j1.Momentum, j2.Momentum) > p.Jangmax {
					continue
				}
				if jetDistance(j1, j2, p.JMergeInVolume) > p.Jdistmax {
					continue
				}
				pos.add(j2.Ref)
				times.add(j2.T0)
				for _, te := range j2.Members {
					j1.addMember(te)
				}
				jets[i2] = nil
				if p.JIterate {
					merged = true
				}
			}

			j1.Ref = pos.mean()
			j1.T0 = times.mean()
			maxima.observe(ev, j1)
		}

		kept := jets[:0]
		for _, j := range jets {
			if j != nil {
				kept = append(kept, j)
			}
		}
		jets = kept

		rankJets(ev, jets, maxima, qmax)
	}
	return jets
}
