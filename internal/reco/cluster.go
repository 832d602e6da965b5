package reco

import "sort"

// jetMaxima accumulates the running per-jet maxima that normalise the jet
// rank terms. Clustering and merging each start from a fresh zero value; the
// maxima then only grow while jets are reworked.
type jetMaxima struct {
	ntracks  int
	nsensors int
	nstrings int
	nhits    int
	ncoinc   int
}

// observe refreshes the jet's support counts and folds them into the maxima.
func (m *jetMaxima) observe(ev *Event, j *Jet) {
	nhits, ncoinc, nsensors, nstrings := j.tally(ev)
	j.Q.NTracks = len(j.Members)
	j.Q.NHits = nhits
	j.Q.NCoincident = ncoinc
	j.Q.NSensors = nsensors
	j.Q.NStrings = nstrings
	if j.Q.NTracks > m.ntracks {
		m.ntracks = j.Q.NTracks
	}
	if nsensors > m.nsensors {
		m.nsensors = nsensors
	}
	if nstrings > m.nstrings {
		m.nstrings = nstrings
	}
	if nhits > m.nhits {
		m.nhits = nhits
	}
	if ncoinc > m.ncoinc {
		m.ncoinc = ncoinc
	}
}

// rankJets recomputes every jet's support counts and rank against the
// current maxima, then orders the jets by decreasing rank. The rank is the
// sum of the average member quality relative to qmax and the sensor, hit and
// coincident-hit counts relative to their maxima; each term only enters when
// its normaliser is positive.
func rankJets(ev *Event, jets []*Jet, m *jetMaxima, qmax float64) {
	for _, j := range jets {
		nhits, ncoinc, nsensors, nstrings := j.tally(ev)
		ntk := len(j.Members)
		avqtc := 0.0
		if ntk > 0 {
			avqtc = j.Momentum.Norm() / float64(ntk)
		}
		rank := 0.0
		if qmax > 0 {
			rank = avqtc / qmax
		}
		if m.nsensors > 0 {
			rank += float64(nsensors) / float64(m.nsensors)
		}
		if m.nhits > 0 {
			rank += float64(nhits) / float64(m.nhits)
		}
		if m.ncoinc > 0 {
			rank += float64(ncoinc) / float64(m.ncoinc)
		}
		j.Q = JetQuality{
			Rank:           rank,
			AvgQtc:         avqtc,
			QtcMax:         qmax,
			NTracks:        ntk,
			NTracksMax:     m.ntracks,
			NSensors:       nsensors,
			NSensorsMax:    m.nsensors,
			NStrings:       nstrings,
			NStringsMax:    m.nstrings,
			NHits:          nhits,
			NHitsMax:       m.nhits,
			NCoincident:    ncoinc,
			NCoincidentMax: m.ncoinc,
		}
	}
	sort.SliceStable(jets, func(i, k int) bool {
		return jets[i].Q.Rank > jets[k].Q.Rank
	})
}

// candidateDistance measures the separation between two track candidates:
// either the minimum of the two line-to-reference-point distances (the
// in-volume criterion) or the full line-to-line distance.
func candidateDistance(tc1, tc2 *TrackElement, inVolume bool) float64 {
	if inVolume {
		d := PointLineDistance(tc2.Ref, tc1.Ref, tc1.Dir)
		if d2 := PointLineDistance(tc1.Ref, tc2.Ref, tc2.Dir); d2 < d {
			d = d2
		}
		return d
	}
	return LineLineDistance(tc1.Ref, tc1.Dir, tc2.Ref, tc2.Dir)
}

// clusterCandidates builds one jet per track candidate by clustering every
// other candidate within the opening-angle and separation bounds around the
// seed. The distance bound prevents clustering of nearly parallel candidates
// crossing the detector at very different locations. The jet reference point
// and time are the per-axis means over the members.
//
// Multi-member jets are always kept; a singleton jet survives only when its
// seed carries the maximum quality. Returned jets are ordered by decreasing
// rank.
func clusterCandidates(ev *Event, tcs []*TrackElement, p Params, qmax float64) []*Jet {
	var jets []*Jet
	maxima := &jetMaxima{}
	var pos vecSample
	var times statSample
	for i1, tc1 := range tcs {
		jet := &Jet{}
		jet.addMember(tc1)
		pos.reset()
		times.reset()
		pos.add(tc1.Ref)
		times.add(tc1.T0)

		for i2, tc2 := range tcs {
			if i2 == i1 {
				continue
			}
			if OpeningAngleDeg(tc1.Dir, tc2.Dir) > p.Tangmax {
				continue
			}
			if candidateDistance(tc1, tc2, p.TClusterInVolume) > p.Tdistmax {
				continue
			}
			pos.add(tc2.Ref)
			times.add(tc2.T0)
			jet.addMember(tc2)
		}

		jet.Ref = pos.mean()
		jet.T0 = times.mean()

		if len(jet.Members) == 1 && p.Tangmax > 0 {
			// Singleton jets only survive on a best-quality seed.
			if tc1.Q.Qtc < qmax-1e-10 {
				continue
			}
		}
		jets = append(jets, jet)
		maxima.observe(ev, jet)
	}

	if len(jets) == 0 {
		return nil
	}
	rankJets(ev, jets, maxima, qmax)
	return jets
}
