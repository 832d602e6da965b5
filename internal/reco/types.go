package reco

// =============================================================================
// Event model: sensors and hits in flat arenas, referenced by index
// =============================================================================

// Group identifies the hardware class of a sensor and thereby which detector
// partitions it can contribute to. The Hybrid partition spans GroupPrimary
// and GroupLowEnergy.
type Group int

const (
	GroupCoarse Group = iota // legacy coarse array, separate reconstruction
	GroupPrimary
	GroupLowEnergy
)

// Zone tags the optical zone of a sensor, which selects the effective
// scattering length used during hit association. ZoneAuto is resolved from
// the sensor depth when the sensor is added to an event.
type Zone int

const (
	ZoneAuto Zone = iota
	ZoneUpper
	ZoneDust
	ZoneLower
)

// Depth boundaries of the dust layer, in meters.
const (
	dustTopZ    = -50
	dustBottomZ = -150
)

// ZoneForDepth resolves the optical zone for a sensor at depth z.
func ZoneForDepth(z float64) Zone {
	switch {
	case z > dustTopZ:
		return ZoneUpper
	case z < dustBottomZ:
		return ZoneLower
	default:
		return ZoneDust
	}
}

// Sensor is one fixed optical module. Sensors are read-only during
// reconstruction; Hits holds indices into the event hit arena.
type Sensor struct {
	ID       int
	StringID int // cable string the sensor is mounted on
	Group    Group
	Zone     Zone
	Pos      Vec3

	Hits []int

	// Per-observable dead flags set by upstream calibration.
	AmpDead  bool
	TimeDead bool
	DurDead  bool
}

// Hit is one recorded pulse. Sensor is an index into the event sensor arena
// (sensors own hits; the back-reference is for lookup only).
type Hit struct {
	Sensor int

	Amp  float64 // amplitude in npe
	Time float64 // leading-edge time relative to the event time, in ns
	Dur  float64 // duration in ns

	// Coincident marks hits confirmed by a neighbouring sensor at
	// acquisition time. Coarse-group hits are always treated as coincident.
	Coincident bool

	AmpDead  bool
	TimeDead bool
	DurDead  bool
}

// Event is the immutable per-event view the engine reconstructs from.
// Sensors and Hits are flat arenas; all cross-references are indices.
type Event struct {
	ID      string
	Sensors []Sensor
	Hits    []Hit
}

// AddSensor appends s to the sensor arena and returns its index.
// A ZoneAuto zone is resolved from the sensor depth.
func (ev *Event) AddSensor(s Sensor) int {
	if s.Zone == ZoneAuto {
		s.Zone = ZoneForDepth(s.Pos.Z)
	}
	ev.Sensors = append(ev.Sensors, s)
	return len(ev.Sensors) - 1
}

// AddHit appends h to the hit arena, links it to its sensor, and returns its
// index. Coarse-group hits are forced coincident: the coarse array has no
// local-coincidence concept.
func (ev *Event) AddHit(h Hit) int {
	if ev.Sensors[h.Sensor].Group == GroupCoarse {
		h.Coincident = true
	}
	ev.Hits = append(ev.Hits, h)
	hi := len(ev.Hits) - 1
	ev.Sensors[h.Sensor].Hits = append(ev.Sensors[h.Sensor].Hits, hi)
	return hi
}

// =============================================================================
// Reconstruction objects
// =============================================================================

// QualityRecord bundles the per-track-element statistics derived during hit
// association. Projections are measured along the element direction relative
// to its reference point; the "L" variants use absolute projections and the
// "T" variants use time residuals.
type QualityRecord struct {
	Qtc float64 // scalar quality, zero when hits fail the sidedness rule
	Nax float64 // association weight entering Qtc

	NHits       float64 // weighted associated hit count
	NCoincident float64 // weighted associated coincident hit count
	NSensors    int     // distinct associated sensors
	NStrings    int     // distinct associated strings

	Span, Median, Mean, Sigma, Spread, ExpSpread       float64
	SpanL, MedianL, MeanL, SigmaL, SpreadL, ExpSpreadL float64
	MedianT, MeanT, SigmaT, SpreadT                    float64

	Term1, Term2, Term3, Term4, Term5 float64
}

// TrackElement is a two-sensor line hypothesis. Dir is unit length until
// candidate selection rescales it to Qtc so that quality weights the jet
// direction. Hits holds indices of associated hits.
type TrackElement struct {
	Ref Vec3    // midpoint of the two sensor positions
	T0  float64 // mean of the two hit times, event-relative ns
	Dir Vec3

	Hits []int
	Q    QualityRecord
}

// JetQuality is the rank bundle of a jet, kept on the emitted track as
// reconstruction metadata. The *Max fields are the maxima over all jets at
// the time the rank was computed.
type JetQuality struct {
	Rank   float64
	AvgQtc float64
	QtcMax float64

	NTracks, NTracksMax         int
	NSensors, NSensorsMax       int
	NStrings, NStringsMax       int
	NHits, NHitsMax             int
	NCoincident, NCoincidentMax int
}

// Jet is a cluster of track candidates sharing a consensus direction.
// Momentum is the vector sum of the member directions (each scaled to its
// Qtc), so member quality weights the jet direction.
type Jet struct {
	Members  []*TrackElement
	Ref      Vec3
	T0       float64
	Momentum Vec3
	Q        JetQuality
}

// addMember appends te and updates the jet momentum sum.
func (j *Jet) addMember(te *TrackElement) {
	j.Members = append(j.Members, te)
	j.Momentum = j.Momentum.Add(te.Dir)
}

// tally counts the distinct hits, coincident hits, sensors and strings over
// all member elements. Hit sets of members overlap, so counts are deduped
// through the hit arena indices.
func (j *Jet) tally(ev *Event) (nhits, ncoinc, nsensors, nstrings int) {
	seenHit := make(map[int]struct{})
	seenSensor := make(map[int]struct{})
	seenString := make(map[int]struct{})
	for _, te := range j.Members {
		for _, hi := range te.Hits {
			if _, ok := seenHit[hi]; ok {
				continue
			}
			seenHit[hi] = struct{}{}
			nhits++
			h := &ev.Hits[hi]
			if h.Coincident {
				ncoinc++
			}
			if _, ok := seenSensor[h.Sensor]; !ok {
				seenSensor[h.Sensor] = struct{}{}
				nsensors++
			}
			sid := ev.Sensors[h.Sensor].StringID
			if _, ok := seenString[sid]; !ok {
				seenString[sid] = struct{}{}
				nstrings++
			}
		}
	}
	return nhits, ncoinc, nsensors, nstrings
}

// hitIndexes returns the distinct hit indices of all members in first-seen
// order, which is deterministic for a fixed member order.
func (j *Jet) hitIndexes() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, te := range j.Members {
		for _, hi := range te.Hits {
			if _, ok := seen[hi]; ok {
				continue
			}
			seen[hi] = struct{}{}
			out = append(out, hi)
		}
	}
	return out
}

// Track is one emitted trajectory. Dir is unit length; Hits holds the
// distinct hit indices contributed by the constituent track elements.
type Track struct {
	Partition Partition
	Dir       Vec3
	Ref       Vec3
	T0        float64
	Hits      []int
	Flipped   bool
	Q         JetQuality
}
