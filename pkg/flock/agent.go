package flock

import (
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// initialVelocity is the velocity every agent is born with, before the
// speed clamp of its flock is applied.
var initialVelocity = geometry.Vector2D{X: 0.4, Y: 0.4}

// Agent is one boid of the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. The name "boid" corresponds
// to a shortened version of "bird-oid object". https://en.wikipedia.org/wiki/Boids
//
// An Agent never keeps references to other agents: the population is lent
// to UpdateVelocity for the duration of one call.
type Agent struct {
	pos     geometry.Vector2D
	vel     geometry.Vector2D
	heading float64
	rules   *Rules
}

// AgentState is a value copy of an agent's kinematic state.
type AgentState struct {
	Position geometry.Vector2D `json:"position"`
	Velocity geometry.Vector2D `json:"velocity"`
	Heading  float64           `json:"heading"`
}

// NewAgent creates a free-standing agent with its own copy of rules.
// Agents created by a Flock share the flock's rules instead.
func NewAgent(pos, vel geometry.Vector2D, rules Rules) *Agent {
	return newAgent(pos, vel, &rules)
}

func newAgent(pos, vel geometry.Vector2D, rules *Rules) *Agent {
	return &Agent{
		pos:     pos,
		vel:     vel,
		heading: vel.Heading(),
		rules:   rules,
	}
}

// Position returns a copy of the agent position.
func (a *Agent) Position() geometry.Vector2D { return a.pos }

// Velocity returns a copy of the agent velocity.
func (a *Agent) Velocity() geometry.Vector2D { return a.vel }

// Heading returns atan2(velocity.X, velocity.Y) as of the last position update.
func (a *Agent) Heading() float64 { return a.heading }

// State returns a copy of the agent kinematic state.
func (a *Agent) State() AgentState {
	return AgentState{Position: a.pos, Velocity: a.vel, Heading: a.heading}
}

// IsNeighbor reports whether other is strictly closer than the cohesion radius.
func (a *Agent) IsNeighbor(other *Agent) bool {
	return a.within(other, a.rules.CohesionRadius)
}

func (a *Agent) within(other *Agent, radius float64) bool {
	return a.pos.DistanceTo(other.pos) < radius
}

// UpdateVelocity recomputes and stores the agent velocity from population.
// population may contain the agent itself, it is skipped.
func (a *Agent) UpdateVelocity(population []*Agent) {
	a.vel = a.ComputeVelocity(population)
}

// ComputeVelocity returns the velocity UpdateVelocity would store, leaving
// the agent untouched. It only reads population, so concurrent calls for
// different agents over the same population are safe.
func (a *Agent) ComputeVelocity(population []*Agent) geometry.Vector2D {
	vel := a.vel
	vel = vel.Add(a.separation(population))
	vel = vel.Add(a.alignment(population, vel))
	vel = vel.Add(a.cohesion(population))
	return vel.Limit(a.rules.MaxSpeed)
}

// UpdatePosition integrates the velocity over dt seconds and wraps the
// result around the [-1,1] torus. The heading is recomputed from velocity.
func (a *Agent) UpdatePosition(dt float64) {
	a.pos = a.pos.Add(a.vel.Mul(dt))
	a.pos.X = wrap(a.pos.X)
	a.pos.Y = wrap(a.pos.Y)
	a.heading = a.vel.Heading()
}

// wrap re-enters a coordinate that left [-1,1] at the opposite edge.
func wrap(c float64) float64 {
	if c > 1.0 {
		return -1.0
	}
	if c < -1.0 {
		return 1.0
	}
	return c
}

// ============================================================================
// Rules
// ============================================================================

// separation steers away from neighbours inside the separation radius.
func (a *Agent) separation(population []*Agent) geometry.Vector2D {
	var away geometry.Vector2D
	count := 0
	for _, other := range population {
		if other == a || !a.within(other, a.rules.SeparationRadius) {
			continue
		}
		away = away.Add(a.pos.Sub(other.pos))
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	// Coinciding neighbours give a zero mean, which normalises to zero.
	return away.Mean(count).Normalize().Mul(a.rules.SeparationWeight)
}

// alignment moves vel part of the way toward the neighbours' mean velocity.
func (a *Agent) alignment(population []*Agent, vel geometry.Vector2D) geometry.Vector2D {
	var sum geometry.Vector2D
	count := 0
	for _, other := range population {
		if other == a || !a.within(other, a.rules.CohesionRadius) {
			continue
		}
		sum = sum.Add(other.vel)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return sum.Mean(count).Sub(vel).Mul(a.rules.AlignmentWeight)
}

// cohesion steers part of the way toward the neighbours' mean position.
func (a *Agent) cohesion(population []*Agent) geometry.Vector2D {
	var sum geometry.Vector2D
	count := 0
	for _, other := range population {
		if other == a || !a.within(other, a.rules.CohesionRadius) {
			continue
		}
		sum = sum.Add(other.pos)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return sum.Mean(count).Sub(a.pos).Mul(a.rules.CohesionWeight)
}
