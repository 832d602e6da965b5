package reco

// Partition identifies one of the independently tuned reconstruction passes.
// Partitions run in declaration order; the conditional-processing flag in
// Config decides whether lower-priority partitions still run once an earlier
// one has produced a track.
type Partition int

const (
	// Coarse is the legacy coarse array, reconstructed over its own sensors
	// with time-ordered hit selection.
	Coarse Partition = iota
	// Primary is tuned for better-than-average pointing accuracy at the cost
	// of sometimes producing no track at all.
	Primary
	// Hybrid spans the primary and low-energy sensor groups and is tuned to
	// produce at least one track in most events.
	Hybrid
	// LowEnergy is tuned for the lowest possible energy threshold at the
	// cost of worse pointing accuracy.
	LowEnergy

	// NumPartitions is the number of reconstruction passes per event.
	NumPartitions
)

// String returns the short partition label used in logs and storage.
func (p Partition) String() string {
	switch p {
	case Coarse:
		return "coarse"
	case Primary:
		return "primary"
	case Hybrid:
		return "hybrid"
	case LowEnergy:
		return "lowenergy"
	}
	return "unknown"
}

// Params is the tuning set of one detector partition.
type Params struct {
	// MaxHitsPerSensor caps the hits used per sensor for track-element
	// construction; 0 keeps all good hits, negative disables the partition
	// (or, in shared-pool conditional modes, only its sensor selection).
	MaxHitsPerSensor int
	// OrderHitsByAmp selects descending-amplitude hit ordering for the
	// per-sensor cap; otherwise hits are ordered by arrival time.
	OrderHitsByAmp bool

	// SingleHitSensors and SingleHitString switch the partition to one hit
	// per sensor for large events: when the good-sensor count, or the
	// largest per-string good-sensor count, reaches the threshold. Zero
	// disables the switch.
	SingleHitSensors int
	SingleHitString  int

	// MinSensors and MaxSensors bound the number of good sensors for the
	// partition to be reconstructed at all.
	MinSensors int
	MaxSensors int

	// CleanHits re-applies per-hit dead-flag cleaning during selection and
	// association. Calibrated streams that were already cleaned upstream
	// can switch this off.
	CleanHits bool

	// AllowNonCoincident admits non-coincident hits to association.
	// Track elements are always built from coincident hits only.
	AllowNonCoincident bool

	// Dmin is the minimum sensor-pair separation (m) to form an element.
	Dmin float64
	// Dtmarg is the symmetric causality margin (ns) on the pair time
	// residual; negative selects the [Dtmin,Dtmax] association window
	// instead.
	Dtmarg float64

	// Dtmin and Dtmax bound the association time residual (ns).
	Dtmin float64
	Dtmax float64
	// MaxDhit is the maximum photon travel distance in units of the local
	// scattering length for a hit to be associated.
	MaxDhit float64
	// UseGroupVelocity enables the phase/group-velocity correction angle in
	// the wavefront model.
	UseGroupVelocity bool

	// AsType selects the association-weight formula (see nax in the
	// associator); StringWeight is the string-count weight used by the
	// formulas that take one.
	AsType       int
	StringWeight float64

	// Tangmax and Tdistmax bound the opening angle (deg) and separation (m)
	// for clustering candidates into jets. TClusterInVolume measures the
	// separation against the candidates' reference points rather than in
	// full space.
	Tangmax          float64
	Tdistmax         float64
	TClusterInVolume bool

	// Jangmax and Jdistmax bound jet merging. Jangmax<0 disables merging
	// and keeps only the top-ranked jet; Jangmax==0 disables merging but
	// keeps every jet. JIterate repeats merge passes until a fixed point.
	Jangmax        float64
	Jdistmax       float64
	JMergeInVolume bool
	JIterate       bool

	// MinAssocHits and MinAssocSensors are the minimum support for a jet to
	// be emitted as a track.
	MinAssocHits    int
	MinAssocSensors int
}

// ScatterLengths holds the effective photon scattering lengths (m) per
// optical zone, plus the flat value used for the coarse array.
type ScatterLengths struct {
	Coarse float64
	Upper  float64
	Dust   float64
	Lower  float64
}

// Config is the complete engine configuration: the global knobs plus one
// Params per partition.
type Config struct {
	// Conditional selects the partition skipping policy (0..8):
	//   0  run primary, hybrid and low-energy unconditionally on their own
	//      sensor groups;
	//   1  skip hybrid once primary produced a track;
	//   2  additionally skip low-energy once primary or hybrid produced one;
	//   3..5  as 0..2 but all three passes share one hit pool drawn from the
	//      full primary+low-energy sensor set;
	//   6..8  as 3..5, additionally excluding hits already claimed by an
	//      earlier partition's tracks.
	// The coarse partition always runs on its own sensors.
	Conditional int

	// QCut keeps only tracks ranked at least QCut times the rank of the
	// first emitted track of the partition.
	QCut float64

	// HitWeight controls the per-hit contribution to the weighted
	// association counts: w>=0 counts w*lambda/d per hit, -1 counts 1 per
	// hit, anything below counts amplitude*lambda/d. The lambda/d fraction
	// is floored at 1.
	HitWeight float64

	// FlipTrackDeg and FlipHitsDeg are the polar-angle thresholds of the
	// direction-flip heuristic. FlipTrackDeg<0 or FlipHitsDeg>180 disables
	// it.
	FlipTrackDeg float64
	FlipHitsDeg  float64

	Scatter ScatterLengths

	Partitions [NumPartitions]Params
}

// DefaultCoarseParams returns the production tuning of the coarse partition.
func DefaultCoarseParams() Params {
	return Params{
		MaxHitsPerSensor: 0,
		MaxSensors:       999999,
		CleanHits:        true,
		Dmin:             75,
		Dtmarg:           0,
		Dtmin:            -30,
		Dtmax:            300,
		MaxDhit:          3.07126,
		UseGroupVelocity: true,
		AsType:           3,
		StringWeight:     2,
		Tangmax:          15,
		Tdistmax:         20,
		TClusterInVolume: true,
		Jangmax:          7.5,
		Jdistmax:         30,
		JMergeInVolume:   true,
		JIterate:         true,
	}
}

// DefaultPrimaryParams returns the production tuning of the primary
// partition.
func DefaultPrimaryParams() Params {
	return Params{
		MaxHitsPerSensor:   3,
		OrderHitsByAmp:     true,
		SingleHitSensors:   200,
		SingleHitString:    20,
		MaxSensors:         999999,
		AllowNonCoincident: true,
		Dmin:               120,
		Dtmarg:             -1,
		Dtmin:              -50,
		Dtmax:              250,
		MaxDhit:            3,
		UseGroupVelocity:   true,
		AsType:             -5,
		StringWeight:       2,
		Tangmax:            15,
		Tdistmax:           20,
		TClusterInVolume:   true,
		Jangmax:            7.5,
		Jdistmax:           30,
		JMergeInVolume:     true,
		JIterate:           true,
		MinAssocSensors:    6,
	}
}

// DefaultHybridParams returns the production tuning of the hybrid partition.
func DefaultHybridParams() Params {
	p := DefaultPrimaryParams()
	p.Dmin = 85
	p.Dtmin = -100
	p.Dtmax = 300
	p.MaxDhit = 6
	return p
}

// DefaultLowEnergyParams returns the production tuning of the low-energy
// partition.
func DefaultLowEnergyParams() Params {
	p := DefaultPrimaryParams()
	p.Dmin = 45
	p.Dtmin = -150
	p.Dtmax = 350
	p.MaxDhit = 12
	p.MinAssocSensors = 2
	return p
}

// DefaultScatterLengths returns the production effective scattering lengths.
func DefaultScatterLengths() ScatterLengths {
	return ScatterLengths{
		Coarse: 33.3,
		Upper:  30,
		Dust:   5,
		Lower:  40,
	}
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() Config {
	return Config{
		Conditional:  5,
		QCut:         0.8,
		HitWeight:    -2,
		FlipTrackDeg: -999,
		FlipHitsDeg:  999,
		Scatter:      DefaultScatterLengths(),
		Partitions: [NumPartitions]Params{
			Coarse:    DefaultCoarseParams(),
			Primary:   DefaultPrimaryParams(),
			Hybrid:    DefaultHybridParams(),
			LowEnergy: DefaultLowEnergyParams(),
		},
	}
}
