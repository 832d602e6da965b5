package reco

import (
	"fmt"

	"github.com/polar-array/trackwalk/internal/monitoring"
)

// Engine runs the direct-walk reconstruction over events. An Engine is
// immutable after construction and safe for concurrent use on distinct
// events.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns a ready engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Conditional < 0 || cfg.Conditional > 8 {
		return nil, fmt.Errorf("reco: conditional mode %d out of range 0..8", cfg.Conditional)
	}
	if cfg.QCut < 0 || cfg.QCut > 1 {
		return nil, fmt.Errorf("reco: quality cut %g out of range 0..1", cfg.QCut)
	}
	if cfg.Scatter.Coarse <= 0 || cfg.Scatter.Upper <= 0 || cfg.Scatter.Dust <= 0 || cfg.Scatter.Lower <= 0 {
		return nil, fmt.Errorf("reco: scattering lengths must be positive, got %+v", cfg.Scatter)
	}
	for part := Coarse; part < NumPartitions; part++ {
		p := cfg.Partitions[part]
		if p.Dmin < 0 {
			return nil, fmt.Errorf("reco: %v: negative minimum pair distance %g", part, p.Dmin)
		}
		if p.Dtmarg < 0 && p.Dtmin > p.Dtmax {
			return nil, fmt.Errorf("reco: %v: empty residual window [%g,%g]", part, p.Dtmin, p.Dtmax)
		}
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// groupSensors partitions the event sensor indices by hardware group, in
// arena order.
func groupSensors(ev *Event) (coarse, primary, lowEnergy []int) {
	for si := range ev.Sensors {
		switch ev.Sensors[si].Group {
		case GroupCoarse:
			coarse = append(coarse, si)
		case GroupPrimary:
			primary = append(primary, si)
		case GroupLowEnergy:
			lowEnergy = append(lowEnergy, si)
		}
	}
	return coarse, primary, lowEnergy
}

// sensorStats holds the good-sensor census of one sensor selection, per
// group and overall. The per-string maxima feed the single-hit fallback.
type sensorStats struct {
	good      [3]int // indexed by Group
	goodTotal int

	stringMax      [3]int
	stringMaxTotal int
}

func censusSensors(ev *Event, sensors []int) sensorStats {
	var st sensorStats
	perString := make(map[int]int)
	perGroupString := [3]map[int]int{{}, {}, {}}
	for _, si := range sensors {
		s := &ev.Sensors[si]
		if !sensorAlive(s) {
			continue
		}
		g := s.Group
		st.good[g]++
		st.goodTotal++
		perString[s.StringID]++
		if perString[s.StringID] > st.stringMaxTotal {
			st.stringMaxTotal = perString[s.StringID]
		}
		perGroupString[g][s.StringID]++
		if perGroupString[g][s.StringID] > st.stringMax[g] {
			st.stringMax[g] = perGroupString[g][s.StringID]
		}
	}
	return st
}

// gatesPass checks the per-group good-sensor bounds over the selection.
// Every group's bounds are checked on each invocation; groups absent from
// the selection count zero good sensors.
func (e *Engine) gatesPass(st sensorStats, coarse bool) bool {
	if coarse {
		p := e.cfg.Partitions[Coarse]
		return st.good[GroupCoarse] >= p.MinSensors && st.good[GroupCoarse] <= p.MaxSensors
	}
	pp := e.cfg.Partitions[Primary]
	hp := e.cfg.Partitions[Hybrid]
	lp := e.cfg.Partitions[LowEnergy]
	if st.good[GroupPrimary] < pp.MinSensors || st.good[GroupPrimary] > pp.MaxSensors {
		return false
	}
	if st.goodTotal < hp.MinSensors || st.goodTotal > hp.MaxSensors {
		return false
	}
	if st.good[GroupLowEnergy] < lp.MinSensors || st.good[GroupLowEnergy] > lp.MaxSensors {
		return false
	}
	return true
}

// capFor resolves the per-sensor element-hit cap for pool construction over
// a fine-array selection: the sensor group's cap, switched to a single hit
// by the group's large-event fallback, with the hybrid fallback applied on
// top over the whole selection.
func (e *Engine) capFor(g Group, st sensorStats) int {
	var gp Params
	switch g {
	case GroupPrimary:
		gp = e.cfg.Partitions[Primary]
	case GroupLowEnergy:
		gp = e.cfg.Partitions[LowEnergy]
	default:
		gp = e.cfg.Partitions[Coarse]
	}
	mh := gp.MaxHitsPerSensor
	if mh < 0 {
		return mh
	}
	if gp.SingleHitSensors > 0 && st.good[g] >= gp.SingleHitSensors {
		mh = 1
	}
	if gp.SingleHitString > 0 && st.stringMax[g] >= gp.SingleHitString {
		mh = 1
	}
	hp := e.cfg.Partitions[Hybrid]
	if hp.SingleHitSensors > 0 && st.goodTotal >= hp.SingleHitSensors {
		mh = 1
	}
	if hp.SingleHitString > 0 && st.stringMaxTotal >= hp.SingleHitString {
		mh = 1
	}
	return mh
}

// buildFinePool builds the association pool over a fine-array selection,
// with per-group caps and the large-event fallbacks of st.
func (e *Engine) buildFinePool(ev *Event, sensors []int, st sensorStats, clean bool) *hitPool {
	return buildPool(ev, sensors,
		func(si int) int { return e.capFor(ev.Sensors[si].Group, st) },
		func(si int) bool {
			if ev.Sensors[si].Group == GroupLowEnergy {
				return e.cfg.Partitions[LowEnergy].OrderHitsByAmp
			}
			return e.cfg.Partitions[Primary].OrderHitsByAmp
		},
		clean)
}

// runPartition executes the per-partition pipeline: track elements, hit
// association, candidate selection, clustering, merging, emission. A nil
// return means the partition produced no track.
func (e *Engine) runPartition(ev *Event, part Partition, sensors []int, pool *hitPool, claimed []bool) []Track {
	p := e.cfg.Partitions[part]

	tes := buildTrackElements(ev, sensors, pool, claimed, p)
	if len(tes) == 0 {
		return nil
	}
	qmax := associateHits(ev, tes, pool, claimed, p, &e.cfg)
	if qmax <= 0 {
		// Poorly reconstructed event.
		return nil
	}
	tcs := selectCandidates(tes, qmax)
	if len(tcs) == 0 {
		return nil
	}
	jets := clusterCandidates(ev, tcs, p, qmax)
	if len(jets) == 0 {
		return nil
	}
	jets = mergeJets(ev, jets, p, qmax)

	return emitTracks(ev, jets, part, p, &e.cfg, claimed)
}

// Reconstruct runs all partitions over the event and returns the emitted
// tracks in partition order. The coarse partition always runs on its own
// sensors; the fine partitions run subject to the conditional mode of the
// configuration.
func (e *Engine) Reconstruct(ev *Event) []Track {
	var tracks []Track

	cond := e.cfg.Conditional
	var claimed []bool
	if cond >= 6 {
		claimed = make([]bool, len(ev.Hits))
	}

	coarseSensors, primarySensors, lowSensors := groupSensors(ev)

	// Coarse partition, independent of the conditional mode.
	if e.cfg.Partitions[Coarse].MaxHitsPerSensor >= 0 && len(coarseSensors) > 0 {
		st := censusSensors(ev, coarseSensors)
		if e.gatesPass(st, true) {
			cp := e.cfg.Partitions[Coarse]
			pool := buildPool(ev, coarseSensors,
				func(int) int {
					mh := cp.MaxHitsPerSensor
					if cp.SingleHitSensors > 0 && st.good[GroupCoarse] >= cp.SingleHitSensors {
						mh = 1
					}
					if cp.SingleHitString > 0 && st.stringMax[GroupCoarse] >= cp.SingleHitString {
						mh = 1
					}
					return mh
				},
				func(int) bool { return cp.OrderHitsByAmp },
				cp.CleanHits)
			tracks = append(tracks, e.runPartition(ev, Coarse, coarseSensors, pool, nil)...)
		}
	}

	allFine := make([]int, 0, len(primarySensors)+len(lowSensors))
	allFine = append(allFine, primarySensors...)
	allFine = append(allFine, lowSensors...)

	// In the shared-pool modes one pool over the full fine array serves all
	// fine partitions; it is rebuilt only when the earlier builders were
	// disabled.
	var shared *hitPool
	runFine := func(part Partition, reuse bool) []Track {
		p := e.cfg.Partitions[part]
		var sensors []int
		var pool *hitPool
		switch {
		case cond >= 3:
			sensors = allFine
			st := censusSensors(ev, sensors)
			if !e.gatesPass(st, false) {
				return nil
			}
			if reuse && shared != nil {
				pool = shared
				pool.elementLists(ev, p.CleanHits)
			} else {
				pool = e.buildFinePool(ev, sensors, st, p.CleanHits)
				shared = pool
			}
		default:
			if p.MaxHitsPerSensor < 0 {
				return nil
			}
			switch part {
			case Primary:
				sensors = primarySensors
			case Hybrid:
				sensors = allFine
			case LowEnergy:
				sensors = lowSensors
			}
			st := censusSensors(ev, sensors)
			if !e.gatesPass(st, false) {
				return nil
			}
			pool = e.buildFinePool(ev, sensors, st, p.CleanHits)
		}
		if len(sensors) == 0 {
			return nil
		}
		return e.runPartition(ev, part, sensors, pool, claimed)
	}

	pri := runFine(Primary, false)
	tracks = append(tracks, pri...)
	found := len(pri)

	if cond == 0 || cond == 3 || cond == 6 || found == 0 {
		hyb := runFine(Hybrid, e.cfg.Partitions[Primary].MaxHitsPerSensor >= 0)
		tracks = append(tracks, hyb...)
		found = len(hyb)
	}
	if cond == 0 || cond == 1 || cond == 3 || cond == 4 || cond == 6 || cond == 7 || found == 0 {
		low := runFine(LowEnergy,
			e.cfg.Partitions[Primary].MaxHitsPerSensor >= 0 || e.cfg.Partitions[Hybrid].MaxHitsPerSensor >= 0)
		tracks = append(tracks, low...)
	}

	monitoring.Logf("reco: event %s: %d sensors, %d hits, %d tracks", ev.ID, len(ev.Sensors), len(ev.Hits), len(tracks))
	return tracks
}
