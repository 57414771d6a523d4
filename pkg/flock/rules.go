package flock

import "math"

// Rules controls the flocking tunables shared by every agent of a flock.
// They are fixed for the lifetime of a Flock; there is no per-agent override.
type Rules struct {
	// SeparationRadius is the personal space radius.
	SeparationRadius float64 `json:"separationRadius" mapstructure:"separationRadius"`
	// CohesionRadius gates both alignment and cohesion sensing.
	CohesionRadius float64 `json:"cohesionRadius" mapstructure:"cohesionRadius"`

	SeparationWeight float64 `json:"separationWeight" mapstructure:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight" mapstructure:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight" mapstructure:"cohesionWeight"`

	MaxSpeed float64 `json:"maxSpeed" mapstructure:"maxSpeed"`
}

// DefaultRules returns the reference tuning: a separation radius half the
// cohesion radius, 5% blending for every rule and a 0.2 speed cap.
func DefaultRules() Rules {
	return Rules{
		SeparationRadius: 0.1,
		CohesionRadius:   0.2,
		SeparationWeight: 0.05,
		AlignmentWeight:  0.05,
		CohesionWeight:   0.05,
		MaxSpeed:         0.2,
	}
}

// Validate checks the invariants a flock relies on.
func (r Rules) Validate() error {
	switch {
	case !positive(r.SeparationRadius):
		return configErrorf("separationRadius", "must be > 0, got %v", r.SeparationRadius)
	case !positive(r.CohesionRadius):
		return configErrorf("cohesionRadius", "must be > 0, got %v", r.CohesionRadius)
	case !nonNegative(r.SeparationWeight):
		return configErrorf("separationWeight", "must be >= 0, got %v", r.SeparationWeight)
	case !nonNegative(r.AlignmentWeight):
		return configErrorf("alignmentWeight", "must be >= 0, got %v", r.AlignmentWeight)
	case !nonNegative(r.CohesionWeight):
		return configErrorf("cohesionWeight", "must be >= 0, got %v", r.CohesionWeight)
	case !positive(r.MaxSpeed):
		return configErrorf("maxSpeed", "must be > 0, got %v", r.MaxSpeed)
	}
	return nil
}

// senseRadius is the farthest distance at which any rule sees a neighbour.
func (r Rules) senseRadius() float64 {
	return max(r.SeparationRadius, r.CohesionRadius)
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

func nonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0)
}
