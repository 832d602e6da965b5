package reco

import "testing"

func fillSample(vals ...float64) *statSample {
	s := &statSample{}
	for _, v := range vals {
		s.add(v)
	}
	return s
}

func TestStatSampleEmpty(t *testing.T) {
	s := &statSample{}
	for name, got := range map[string]float64{
		"min":       s.min(),
		"max":       s.max(),
		"mean":      s.mean(),
		"sigma":     s.sigma(),
		"median":    s.median(),
		"spread":    s.spread(),
		"expSpread": s.expSpread(),
	} {
		if got != 0 {
			t.Errorf("empty sample %s = %v, want 0", name, got)
		}
	}
}

func TestStatSampleMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tt := range tests {
		s := fillSample(tt.vals...)
		if got := s.median(); got != tt.want {
			t.Errorf("%s: median = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStatSampleSpread(t *testing.T) {
	// Median 0; absolute deviations {50, 50, 0} -> mean 100/3.
	s := fillSample(-50, 0, 50)
	if got := s.spread(); !almostEqual(got, 100.0/3, 1e-9) {
		t.Errorf("spread = %v, want %v", got, 100.0/3)
	}
	if got := s.sigma(); got <= 0 {
		t.Errorf("sigma = %v, want > 0", got)
	}
}

func TestStatSampleExpSpread(t *testing.T) {
	// lo=-50, hi=50, med=0: (1250+1250+0-0)/100 = 25.
	s := fillSample(-50, 0, 50)
	if got := s.expSpread(); !almostEqual(got, 25, 1e-9) {
		t.Errorf("expSpread = %v, want 25", got)
	}
	// Degenerate span yields 0.
	s = fillSample(3, 3, 3)
	if got := s.expSpread(); got != 0 {
		t.Errorf("expSpread (zero span) = %v, want 0", got)
	}
}

func TestVecSampleMean(t *testing.T) {
	var vs vecSample
	vs.add(Vec3{0, 0, 0})
	vs.add(Vec3{2, 4, -6})
	got := vs.mean()
	if got != (Vec3{1, 2, -3}) {
		t.Errorf("vecSample mean = %v, want (1,2,-3)", got)
	}
	vs.reset()
	vs.add(Vec3{5, 5, 5})
	if got := vs.mean(); got != (Vec3{5, 5, 5}) {
		t.Errorf("vecSample mean after reset = %v", got)
	}
}
