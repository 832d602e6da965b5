package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/polar-array/trackwalk/internal/reco"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// PartitionTuning carries the optional per-partition overrides. Every field
// is a pointer so that a partial JSON file only overrides what it names; nil
// fields keep the built-in production value of the partition.
type PartitionTuning struct {
	MaxHitsPerSensor *int  `json:"max_hits_per_sensor,omitempty"`
	OrderHitsByAmp   *bool `json:"order_hits_by_amp,omitempty"`

	SingleHitSensors *int `json:"single_hit_sensors,omitempty"`
	SingleHitString  *int `json:"single_hit_string,omitempty"`

	MinSensors *int `json:"min_sensors,omitempty"`
	MaxSensors *int `json:"max_sensors,omitempty"`

	CleanHits          *bool `json:"clean_hits,omitempty"`
	AllowNonCoincident *bool `json:"allow_non_coincident,omitempty"`

	PairDistMin    *float64 `json:"pair_dist_min,omitempty"`
	CausalityMarg  *float64 `json:"causality_margin,omitempty"`
	ResidualMin    *float64 `json:"residual_min,omitempty"`
	ResidualMax    *float64 `json:"residual_max,omitempty"`
	MaxDistHit     *float64 `json:"max_dist_hit,omitempty"`
	GroupVelocity  *bool    `json:"group_velocity,omitempty"`
	AssocType      *int     `json:"assoc_type,omitempty"`
	StringWeight   *float64 `json:"string_weight,omitempty"`
	ClusterAngMax  *float64 `json:"cluster_ang_max,omitempty"`
	ClusterDistMax *float64 `json:"cluster_dist_max,omitempty"`
	ClusterInVol   *bool    `json:"cluster_in_volume,omitempty"`
	MergeAngMax    *float64 `json:"merge_ang_max,omitempty"`
	MergeDistMax   *float64 `json:"merge_dist_max,omitempty"`
	MergeInVol     *bool    `json:"merge_in_volume,omitempty"`
	MergeIterate   *bool    `json:"merge_iterate,omitempty"`

	MinAssocHits    *int `json:"min_assoc_hits,omitempty"`
	MinAssocSensors *int `json:"min_assoc_sensors,omitempty"`
}

// TuningConfig represents the root configuration for the reconstruction
// engine. The same JSON schema serves startup configuration and test
// fixtures; fields omitted from the file keep their production defaults.
type TuningConfig struct {
	Conditional  *int     `json:"conditional,omitempty"`
	QualityCut   *float64 `json:"quality_cut,omitempty"`
	HitWeight    *float64 `json:"hit_weight,omitempty"`
	FlipTrackDeg *float64 `json:"flip_track_deg,omitempty"`
	FlipHitsDeg  *float64 `json:"flip_hits_deg,omitempty"`

	ScatterCoarse *float64 `json:"scatter_coarse,omitempty"`
	ScatterUpper  *float64 `json:"scatter_upper,omitempty"`
	ScatterDust   *float64 `json:"scatter_dust,omitempty"`
	ScatterLower  *float64 `json:"scatter_lower,omitempty"`

	Coarse    *PartitionTuning `json:"coarse,omitempty"`
	Primary   *PartitionTuning `json:"primary,omitempty"`
	Hybrid    *PartitionTuning `json:"hybrid,omitempty"`
	LowEnergy *PartitionTuning `json:"lowenergy,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. EngineConfig supplies fallback defaults
	// for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Conditional != nil {
		if *c.Conditional < 0 || *c.Conditional > 8 {
			return fmt.Errorf("conditional must be between 0 and 8, got %d", *c.Conditional)
		}
	}
	if c.QualityCut != nil {
		if *c.QualityCut < 0 || *c.QualityCut > 1 {
			return fmt.Errorf("quality_cut must be between 0 and 1, got %f", *c.QualityCut)
		}
	}
	for name, v := range map[string]*float64{
		"scatter_coarse": c.ScatterCoarse,
		"scatter_upper":  c.ScatterUpper,
		"scatter_dust":   c.ScatterDust,
		"scatter_lower":  c.ScatterLower,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	for name, pt := range map[string]*PartitionTuning{
		"coarse":    c.Coarse,
		"primary":   c.Primary,
		"hybrid":    c.Hybrid,
		"lowenergy": c.LowEnergy,
	} {
		if pt == nil {
			continue
		}
		if pt.PairDistMin != nil && *pt.PairDistMin < 0 {
			return fmt.Errorf("%s.pair_dist_min must be non-negative, got %f", name, *pt.PairDistMin)
		}
		if pt.ResidualMin != nil && pt.ResidualMax != nil && *pt.ResidualMin > *pt.ResidualMax {
			return fmt.Errorf("%s: empty residual window [%f,%f]", name, *pt.ResidualMin, *pt.ResidualMax)
		}
		if pt.MinAssocHits != nil && *pt.MinAssocHits < 0 {
			return fmt.Errorf("%s.min_assoc_hits must be non-negative, got %d", name, *pt.MinAssocHits)
		}
	}
	return nil
}

// apply overlays the set fields of pt onto p.
func (pt *PartitionTuning) apply(p *reco.Params) {
	if pt == nil {
		return
	}
	if pt.MaxHitsPerSensor != nil {
		p.MaxHitsPerSensor = *pt.MaxHitsPerSensor
	}
	if pt.OrderHitsByAmp != nil {
		p.OrderHitsByAmp = *pt.OrderHitsByAmp
	}
	if pt.SingleHitSensors != nil {
		p.SingleHitSensors = *pt.SingleHitSensors
	}
	if pt.SingleHitString != nil {
		p.SingleHitString = *pt.SingleHitString
	}
	if pt.MinSensors != nil {
		p.MinSensors = *pt.MinSensors
	}
	if pt.MaxSensors != nil {
		p.MaxSensors = *pt.MaxSensors
	}
	if pt.CleanHits != nil {
		p.CleanHits = *pt.CleanHits
	}
	if pt.AllowNonCoincident != nil {
		p.AllowNonCoincident = *pt.AllowNonCoincident
	}
	if pt.PairDistMin != nil {
		p.Dmin = *pt.PairDistMin
	}
	if pt.CausalityMarg != nil {
		p.Dtmarg = *pt.CausalityMarg
	}
	if pt.ResidualMin != nil {
		p.Dtmin = *pt.ResidualMin
	}
	if pt.ResidualMax != nil {
		p.Dtmax = *pt.ResidualMax
	}
	if pt.MaxDistHit != nil {
		p.MaxDhit = *pt.MaxDistHit
	}
	if pt.GroupVelocity != nil {
		p.UseGroupVelocity = *pt.GroupVelocity
	}
	if pt.AssocType != nil {
		p.AsType = *pt.AssocType
	}
	if pt.StringWeight != nil {
		p.StringWeight = *pt.StringWeight
	}
	if pt.ClusterAngMax != nil {
		p.Tangmax = *pt.ClusterAngMax
	}
	if pt.ClusterDistMax != nil {
		p.Tdistmax = *pt.ClusterDistMax
	}
	if pt.ClusterInVol != nil {
		p.TClusterInVolume = *pt.ClusterInVol
	}
	if pt.MergeAngMax != nil {
		p.Jangmax = *pt.MergeAngMax
	}
	if pt.MergeDistMax != nil {
		p.Jdistmax = *pt.MergeDistMax
	}
	if pt.MergeInVol != nil {
		p.JMergeInVolume = *pt.MergeInVol
	}
	if pt.MergeIterate != nil {
		p.JIterate = *pt.MergeIterate
	}
	if pt.MinAssocHits != nil {
		p.MinAssocHits = *pt.MinAssocHits
	}
	if pt.MinAssocSensors != nil {
		p.MinAssocSensors = *pt.MinAssocSensors
	}
}

// EngineConfig materialises the engine configuration: the production
// defaults with every set tuning field overlaid.
func (c *TuningConfig) EngineConfig() reco.Config {
	cfg := reco.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.Conditional != nil {
		cfg.Conditional = *c.Conditional
	}
	if c.QualityCut != nil {
		cfg.QCut = *c.QualityCut
	}
	if c.HitWeight != nil {
		cfg.HitWeight = *c.HitWeight
	}
	if c.FlipTrackDeg != nil {
		cfg.FlipTrackDeg = *c.FlipTrackDeg
	}
	if c.FlipHitsDeg != nil {
		cfg.FlipHitsDeg = *c.FlipHitsDeg
	}
	if c.ScatterCoarse != nil {
		cfg.Scatter.Coarse = *c.ScatterCoarse
	}
	if c.ScatterUpper != nil {
		cfg.Scatter.Upper = *c.ScatterUpper
	}
	if c.ScatterDust != nil {
		cfg.Scatter.Dust = *c.ScatterDust
	}
	if c.ScatterLower != nil {
		cfg.Scatter.Lower = *c.ScatterLower
	}
	c.Coarse.apply(&cfg.Partitions[reco.Coarse])
	c.Primary.apply(&cfg.Partitions[reco.Primary])
	c.Hybrid.apply(&cfg.Partitions[reco.Hybrid])
	c.LowEnergy.apply(&cfg.Partitions[reco.LowEnergy])
	return cfg
}
