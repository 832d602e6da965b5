package reco

import (
	"math"
	"sort"
)

// SpeedOfLight is the vacuum light speed in meters per nanosecond.
const SpeedOfLight = 0.299792458

func sensorAlive(s *Sensor) bool { return !s.AmpDead && !s.TimeDead && !s.DurDead }
func hitAlive(h *Hit) bool       { return !h.AmpDead && !h.TimeDead && !h.DurDead }

// hitPool holds the hits available to one reconstruction pass: the full
// association pool in deterministic build order plus, per sensor, the
// coincident hits retained for track-element construction.
type hitPool struct {
	hits     []int
	bySensor map[int][]int
}

// buildPool selects the good hits of the given sensors. maxHitsFor yields
// the per-sensor element-hit cap: 0 keeps all good hits, negative excludes
// the sensor entirely. When the cap truncates a sensor's hit list, hits are
// taken in arrival-time order or descending-amplitude order per byAmp.
//
// The association pool receives every good hit considered, coincident or
// not; the per-sensor element lists receive coincident hits only.
func buildPool(ev *Event, sensors []int, maxHitsFor func(si int) int, byAmp func(si int) bool, clean bool) *hitPool {
	pool := &hitPool{bySensor: make(map[int][]int, len(sensors))}
	for _, si := range sensors {
		s := &ev.Sensors[si]
		if !sensorAlive(s) {
			continue
		}
		maxhits := maxHitsFor(si)
		if maxhits < 0 {
			continue
		}
		cands := s.Hits
		truncated := maxhits > 0 && len(cands) > maxhits
		if truncated {
			cands = append([]int(nil), cands...)
			if byAmp(si) {
				sort.SliceStable(cands, func(i, j int) bool {
					return ev.Hits[cands[i]].Amp > ev.Hits[cands[j]].Amp
				})
			} else {
				sort.SliceStable(cands, func(i, j int) bool {
					return ev.Hits[cands[i]].Time < ev.Hits[cands[j]].Time
				})
			}
		}
		kept := 0
		for _, hi := range cands {
			if truncated && kept >= maxhits {
				break
			}
			h := &ev.Hits[hi]
			if clean && !hitAlive(h) {
				continue
			}
			if h.Coincident {
				pool.bySensor[si] = append(pool.bySensor[si], hi)
				kept++
			}
			pool.hits = append(pool.hits, hi)
		}
	}
	return pool
}

// elementLists rebuilds the per-sensor element-hit lists from an existing
// association pool, without re-applying any per-sensor cap. Used when a
// later partition reuses (a possibly reduced) pool built by an earlier one.
func (pool *hitPool) elementLists(ev *Event, clean bool) {
	pool.bySensor = make(map[int][]int)
	for _, hi := range pool.hits {
		h := &ev.Hits[hi]
		if clean && !hitAlive(h) {
			continue
		}
		if !h.Coincident {
			continue
		}
		pool.bySensor[h.Sensor] = append(pool.bySensor[h.Sensor], hi)
	}
}

// liveHits filters out claimed hits. With no claimed set the input slice is
// returned as-is.
func liveHits(hits []int, claimed []bool) []int {
	if claimed == nil {
		return hits
	}
	any := false
	for _, hi := range hits {
		if claimed[hi] {
			any = true
			break
		}
	}
	if !any {
		return hits
	}
	out := make([]int, 0, len(hits))
	for _, hi := range hits {
		if !claimed[hi] {
			out = append(out, hi)
		}
	}
	return out
}

// buildTrackElements scans every unordered pair of the given sensors and
// emits one track element per causally consistent hit pair: the pair time
// difference must match the straight light travel time between the sensors
// within the causality window. The element points from the earlier hit to
// the later one, anchored at the sensor-pair midpoint.
func buildTrackElements(ev *Event, sensors []int, pool *hitPool, claimed []bool, p Params) []*TrackElement {
	dtmin, dtmax := p.Dtmin, p.Dtmax
	if p.Dtmarg >= 0 {
		dtmin, dtmax = -p.Dtmarg, p.Dtmarg
	}

	var tes []*TrackElement
	for i1, si1 := range sensors {
		s1 := &ev.Sensors[si1]
		if !sensorAlive(s1) {
			continue
		}
		h1s := liveHits(pool.bySensor[si1], claimed)

		// The last sensor can no longer start a new pair.
		if i1 == len(sensors)-1 {
			break
		}
		if len(h1s) == 0 {
			continue
		}

		for _, si2 := range sensors[i1+1:] {
			s2 := &ev.Sensors[si2]
			if !sensorAlive(s2) {
				continue
			}
			sep := s2.Pos.Sub(s1.Pos)
			dist := sep.Norm()
			if dist < p.Dmin {
				continue
			}
			h2s := liveHits(pool.bySensor[si2], claimed)
			if len(h2s) == 0 {
				continue
			}

			mid := s1.Pos.Add(s2.Pos).Scale(0.5)
			u := sep.Scale(1 / dist)

			for _, hi1 := range h1s {
				t1 := ev.Hits[hi1].Time
				for _, hi2 := range h2s {
					t2 := ev.Hits[hi2].Time
					dt := t2 - t1
					dtres := math.Abs(dt) - dist/SpeedOfLight
					if dtres < dtmin || dtres > dtmax {
						continue
					}
					dir := u
					if dt < 0 {
						dir = u.Scale(-1)
					}
					tes = append(tes, &TrackElement{
						Ref: mid,
						T0:  (t1 + t2) / 2,
						Dir: dir,
					})
				}
			}
		}
	}
	return tes
}
