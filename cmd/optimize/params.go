package main

import (
	"github.com/pthm-cable/slimeworks/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Pioneer weights stay at zero: a pioneer paints a fresh trail and must not follow old ones.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Route weights
			{Name: "convoy_k", Path: "automation.convoy.k", Min: 0, Max: 2, Default: 0.9},
			{Name: "convoy_pref", Path: "automation.convoy.slime_preference", Min: 0, Max: 1, Default: 0.5},
			{Name: "maint_k", Path: "automation.maintenance.k", Min: 0, Max: 2, Default: 0.6},
			{Name: "maint_pref", Path: "automation.maintenance.slime_preference", Min: 0, Max: 1, Default: 0.25},
			// Trail policy
			{Name: "trail_threshold", Path: "automation.trail_threshold", Min: 0.1, Max: 0.6, Default: 0.3},
			{Name: "repair_threshold", Path: "automation.repair_threshold", Min: 0.05, Max: 0.4, Default: 0.2},
			{Name: "pioneer_slime", Path: "automation.pioneer_slime", Min: 0.3, Max: 1, Default: 1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(spec.Max, max(spec.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	a := &cfg.Automation

	a.Convoy.K = c[0]
	a.Convoy.SlimePreference = c[1]
	a.Maintenance.K = c[2]
	a.Maintenance.SlimePreference = c[3]

	a.TrailThreshold = c[4]
	// Repair threshold never exceeds the trail threshold
	a.RepairThreshold = min(c[5], c[4])
	a.PioneerSlime = c[6]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	a := cfg.Automation
	return []float64{
		a.Convoy.K,
		a.Convoy.SlimePreference,
		a.Maintenance.K,
		a.Maintenance.SlimePreference,
		a.TrailThreshold,
		a.RepairThreshold,
		a.PioneerSlime,
	}
}
