package reco

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// statSample accumulates a full scalar sample so that order statistics
// (median, spread about the median) stay available alongside the usual
// moments. Every accessor of an empty sample returns 0.
type statSample struct {
	vals []float64
}

func (s *statSample) reset()        { s.vals = s.vals[:0] }
func (s *statSample) add(v float64) { s.vals = append(s.vals, v) }
func (s *statSample) n() int        { return len(s.vals) }
func (s *statSample) empty() bool   { return len(s.vals) == 0 }

func (s *statSample) min() float64 {
	if s.empty() {
		return 0
	}
	return floats.Min(s.vals)
}

func (s *statSample) max() float64 {
	if s.empty() {
		return 0
	}
	return floats.Max(s.vals)
}

func (s *statSample) mean() float64 {
	if s.empty() {
		return 0
	}
	return stat.Mean(s.vals, nil)
}

func (s *statSample) sigma() float64 {
	if len(s.vals) < 2 {
		return 0
	}
	return stat.StdDev(s.vals, nil)
}

// median returns the sample median: the middle value for odd counts, the
// mean of the two middle values for even counts.
func (s *statSample) median() float64 {
	if s.empty() {
		return 0
	}
	sorted := append([]float64(nil), s.vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// spread returns the mean absolute deviation about the median.
func (s *statSample) spread() float64 {
	if s.empty() {
		return 0
	}
	med := s.median()
	dev := make([]float64, len(s.vals))
	for i, v := range s.vals {
		dev[i] = math.Abs(v - med)
	}
	return stat.Mean(dev, nil)
}

// expSpread returns the spread expected if the sample were uniformly
// distributed over its span, in closed form. Zero span yields 0.
func (s *statSample) expSpread() float64 {
	lo := s.min()
	hi := s.max()
	span := hi - lo
	if span <= 0 {
		return 0
	}
	med := s.median()
	return (0.5*lo*lo + 0.5*hi*hi + med*med - med*(lo+hi)) / span
}

// vecSample accumulates per-axis samples of 3-D points so that a jet
// reference point can be recomputed as the per-axis mean of its members.
type vecSample struct {
	x, y, z statSample
}

func (s *vecSample) reset() {
	s.x.reset()
	s.y.reset()
	s.z.reset()
}

func (s *vecSample) add(v Vec3) {
	s.x.add(v.X)
	s.y.add(v.Y)
	s.z.add(v.Z)
}

func (s *vecSample) mean() Vec3 {
	return Vec3{s.x.mean(), s.y.mean(), s.z.mean()}
}
