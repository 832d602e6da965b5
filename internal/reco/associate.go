package reco

import "math"

// Optical properties of the propagation medium. The correction angle
// accounts for the wavefront moving at the phase velocity while the detected
// photons travel at the group velocity.
const (
	phaseIndex = 1.31768387 // c / v_phase
	groupIndex = 1.35075806 // c / v_group
)

// scatterLength returns the effective scattering length at the sensor,
// resolved through its zone tag (flat for the coarse array).
func (c *Config) scatterLength(s *Sensor) float64 {
	if s.Group == GroupCoarse {
		return c.Scatter.Coarse
	}
	switch s.Zone {
	case ZoneUpper:
		return c.Scatter.Upper
	case ZoneLower:
		return c.Scatter.Lower
	default:
		return c.Scatter.Dust
	}
}

// assocWeight computes the association weight nax entering the quality
// score. nah and nahlc are the weighted counts of associated hits and of
// associated coincident hits; nam and nas count distinct sensors and
// strings. Both counts must be positive for any formula to apply.
func assocWeight(astype int, ws, nah, nahlc float64, nam, nas int) float64 {
	if nas <= 0 || nam <= 0 {
		return 0
	}
	frac := 0.0
	if nah > 0 {
		frac = nahlc / nah
	}
	fnam := float64(nam)
	fnas := float64(nas)
	switch astype {
	case 1:
		return nah
	case 2:
		return fnas
	case 3:
		return nah * fnas
	case 4:
		return nah + frac + ws*(fnas-1)/fnas
	case -1:
		return fnam + ws*fnas
	case -2:
		return fnam + nah/fnam
	case -3:
		return fnam * fnas
	case -4:
		return fnam + frac + ws*(fnas-1)/fnas
	case -5:
		return fnam + nah + frac + ws*(fnas-1)/fnas
	}
	return 0
}

// associateHits attaches supporting hits to every track element using the
// wavefront propagation model and derives each element's quality record.
// It returns the maximum quality encountered.
//
// A hit supports an element when its time residual against the expected
// direct-photon arrival falls inside [Dtmin,Dtmax] and the photon path from
// the line to the sensor stays within MaxDhit scattering lengths.
func associateHits(ev *Event, tes []*TrackElement, pool *hitPool, claimed []bool, p Params, cfg *Config) float64 {
	thetac := math.Acos(1 / phaseIndex)
	alphac := 0.0
	if p.UseGroupVelocity {
		alphac = math.Atan((1 - phaseIndex/groupIndex) / math.Sqrt(phaseIndex*phaseIndex-1))
	}
	tanc := math.Tan(math.Pi/2 - thetac - alphac)
	sinc := math.Sin(thetac)

	var levers, hprojs, times statSample
	qmax := 0.0
	for _, te := range tes {
		if te.Dir.Norm() == 0 {
			continue
		}
		levers.reset()
		hprojs.reset()
		times.reset()
		nah := 0.0   // weighted associated hits
		nahlc := 0.0 // weighted associated coincident hits

		for _, hi := range pool.hits {
			if claimed != nil && claimed[hi] {
				continue
			}
			h := &ev.Hits[hi]
			if p.CleanHits && !hitAlive(h) {
				continue
			}
			if !p.AllowNonCoincident && !h.Coincident {
				continue
			}
			s := &ev.Sensors[h.Sensor]

			d := PointLineDistance(s.Pos, te.Ref, te.Dir)
			hproj := te.Dir.Dot(s.Pos.Sub(te.Ref)) / te.Dir.Norm()
			dist := math.Abs(hproj) + d/tanc
			if hproj < 0 {
				dist = -dist
			}
			tgeo := te.T0 + dist/SpeedOfLight
			tres := h.Time - tgeo

			// Distance traveled by the photon along the cherenkov cone.
			dch := d / sinc

			lambda := cfg.scatterLength(s)
			if tres < p.Dtmin || tres > p.Dtmax || dch > p.MaxDhit*lambda {
				continue
			}

			te.Hits = append(te.Hits, hi)
			levers.add(math.Abs(hproj))
			hprojs.add(hproj)
			times.add(tres)

			frac := dch / lambda
			if frac < 1 {
				frac = 1
			}
			var w float64
			switch {
			case cfg.HitWeight >= 0:
				w = cfg.HitWeight / frac
			case cfg.HitWeight > -1.5:
				w = 1
			default:
				w = h.Amp / frac
			}
			nah += w
			if h.Coincident {
				nahlc += w
			}
		}

		nam, nas := distinctSensorsStrings(ev, te.Hits)

		q := &te.Q
		q.NHits = nah
		q.NCoincident = nahlc
		q.NSensors = nam
		q.NStrings = nas
		q.Nax = assocWeight(p.AsType, p.StringWeight, nah, nahlc, nam, nas)

		q.Span = hprojs.max() - hprojs.min()
		q.Median = hprojs.median()
		q.Mean = hprojs.mean()
		q.Sigma = hprojs.sigma()
		q.Spread = hprojs.spread()
		q.ExpSpread = hprojs.expSpread()

		q.SpanL = levers.max() - levers.min()
		q.MedianL = levers.median()
		q.MeanL = levers.mean()
		q.SigmaL = levers.sigma()
		q.SpreadL = levers.spread()
		q.ExpSpreadL = levers.expSpread()

		q.MedianT = times.median()
		q.MeanT = times.mean()
		q.SigmaT = times.sigma()
		q.SpreadT = times.spread()

		q.Term1 = 0
		if q.Span > 0 {
			q.Term1 = 2 * q.Spread / q.Span
		}
		q.Term2 = 0
		if q.SpanL > 0 {
			q.Term2 = 2 * q.SpreadL / q.SpanL
		}
		q.Term3 = 0
		if q.Spread > 0 {
			q.Term3 = math.Abs(q.Spread-q.ExpSpread) / q.Spread
		}
		q.Term4 = 0
		if q.SpreadL > 0 {
			q.Term4 = math.Abs(q.SpreadL-q.ExpSpreadL) / q.SpreadL
		}
		q.Term5 = 0
		if q.SpreadT > 0 {
			q.Term5 = math.Abs(q.MedianT) / q.SpreadT
		}

		q.Qtc = q.Nax*(q.Term1+q.Term2) - q.Term3 - q.Term4 - q.Term5

		// Associated hits must straddle the reference point on both sides;
		// one-sided hypotheses are spurious.
		if math.Abs(q.Median) > q.Span/2 {
			q.Qtc = 0
		}

		if q.Qtc > qmax {
			qmax = q.Qtc
		}
	}
	return qmax
}

// distinctSensorsStrings counts the distinct sensors and strings over the
// given hit indices.
func distinctSensorsStrings(ev *Event, hits []int) (nsensors, nstrings int) {
	seenSensor := make(map[int]struct{}, len(hits))
	seenString := make(map[int]struct{}, len(hits))
	for _, hi := range hits {
		si := ev.Hits[hi].Sensor
		if _, ok := seenSensor[si]; !ok {
			seenSensor[si] = struct{}{}
			nsensors++
		}
		sid := ev.Sensors[si].StringID
		if _, ok := seenString[sid]; !ok {
			seenString[sid] = struct{}{}
			nstrings++
		}
	}
	return nsensors, nstrings
}

// selectCandidates keeps the track elements that qualify as track
// candidates: a positive association weight and a quality within 80% of the
// partition maximum. Survivors have their direction rescaled to Qtc so that
// quality weights the jet direction during clustering.
func selectCandidates(tes []*TrackElement, qmax float64) []*TrackElement {
	tcs := make([]*TrackElement, 0, len(tes))
	for _, te := range tes {
		if te.Q.Nax <= 0 || te.Q.Qtc < 0.8*qmax {
			continue
		}
		if te.Q.Qtc > 0 {
			te.Dir = te.Dir.Scale(te.Q.Qtc)
		}
		tcs = append(tcs, te)
	}
	return tcs
}
