package flock

import "github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"

// Stats summarises the collective motion of a flock.
type Stats struct {
	Tick       uint64  `json:"tick"`
	Population int     `json:"population"`
	MeanSpeed  float64 `json:"meanSpeed"`
	TopSpeed   float64 `json:"topSpeed"`
	// Polarization is the length of the mean unit velocity: 1 when every
	// agent heads the same way, near 0 for disordered motion.
	Polarization float64           `json:"polarization"`
	Centroid     geometry.Vector2D `json:"centroid"`
}

// Stats computes the summary of the current flock state.
func (f *Flock) Stats() Stats {
	return f.Snapshot().Stats()
}

// Stats computes the summary of a snapshot.
func (s Snapshot) Stats() Stats {
	st := Stats{Tick: s.Tick, Population: len(s.Agents)}
	if len(s.Agents) == 0 {
		return st
	}

	var heading, centroid geometry.Vector2D
	speedSum := 0.0
	for _, a := range s.Agents {
		speed := a.Velocity.Len()
		speedSum += speed
		if speed > st.TopSpeed {
			st.TopSpeed = speed
		}
		heading = heading.Add(a.Velocity.Normalize())
		centroid = centroid.Add(a.Position)
	}
	st.MeanSpeed = speedSum / float64(len(s.Agents))
	st.Polarization = heading.Mean(len(s.Agents)).Len()
	st.Centroid = centroid.Mean(len(s.Agents))
	return st
}
