// Package agent models a single maze runner driven by a fixed genome of impulses.
package agent

import (
	"math"

	"github.com/beka-birhanu/vinom-evolve/maze"
)

const (
	// speedCellFraction caps per-axis speed to this fraction of the cell size.
	speedCellFraction = 0.25
)

// Agent is a simulated entity moving through the maze in pixel space.
type Agent struct {
	pos      Vector
	vel      Vector
	genome   []Vector
	cursor   int
	age      int
	dead     bool
	arrived  bool
	fitness  float64
	distance float64
	visited  map[maze.Position]int
}

// New creates a living agent at (x, y) carrying the given genome.
// The genome is owned by the agent afterwards.
func New(x, y float64, genome []Vector) *Agent {
	return &Agent{
		pos:     Vector{X: x, Y: y},
		genome:  genome,
		visited: make(map[maze.Position]int),
	}
}

// Update advances the agent one genome step. Dead agents are left untouched.
// Once the genome is exhausted the agent keeps its last velocity.
func (a *Agent) Update(cellWidth, cellHeight float64) {
	if a.dead {
		return
	}

	if a.cursor < len(a.genome) {
		a.vel = a.vel.Add(a.genome[a.cursor])
		a.cursor++
	}
	a.vel.X = clamp(a.vel.X, cellWidth*speedCellFraction)
	a.vel.Y = clamp(a.vel.Y, cellHeight*speedCellFraction)

	a.pos = a.pos.Add(a.vel)
	a.age++
}

// Kill marks the agent dead. It is safe to call more than once.
func (a *Agent) Kill() {
	a.dead = true
}

// Arrive marks the agent as having reached the goal and stops it.
func (a *Agent) Arrive() {
	a.arrived = true
	a.dead = true
}

// IsDead reports whether the agent has stopped.
func (a *Agent) IsDead() bool { return a.dead }

// Arrived reports whether the agent reached the goal.
func (a *Agent) Arrived() bool { return a.arrived }

// InBounds reports whether the agent lies within [0, width] x [0, height].
func (a *Agent) InBounds(width, height float64) bool {
	return a.pos.X >= 0 && a.pos.X <= width && a.pos.Y >= 0 && a.pos.Y <= height
}

// SetDistance stores the scoring-time distance to the goal.
func (a *Agent) SetDistance(d float64) {
	a.distance = d
}

// CalculateFitness derives fitness from the stored distance. A zero
// distance yields the largest representable fitness.
func (a *Agent) CalculateFitness() float64 {
	if a.distance <= 0 {
		a.fitness = math.MaxFloat64
	} else {
		a.fitness = 1 / a.distance
	}
	return a.fitness
}

// SetFitness overrides the fitness, used for normalization.
func (a *Agent) SetFitness(f float64) {
	a.fitness = f
}

// UpdateVisitedCells records a visit to the given cell.
func (a *Agent) UpdateVisitedCells(c maze.Cell) {
	a.visited[c.Position()]++
}

// Visits returns how many ticks the agent spent in the given cell.
func (a *Agent) Visits(p maze.Position) int { return a.visited[p] }

// VisitedCount returns the number of distinct cells the agent has entered.
func (a *Agent) VisitedCount() int { return len(a.visited) }

// Position returns the agent's pixel position.
func (a *Agent) Position() Vector { return a.pos }

// Velocity returns the agent's current velocity.
func (a *Agent) Velocity() Vector { return a.vel }

// Genome returns the agent's impulses. Callers must not modify it.
func (a *Agent) Genome() []Vector { return a.genome }

// Age returns the number of ticks the agent has lived.
func (a *Agent) Age() int { return a.age }

// Fitness returns the last computed fitness.
func (a *Agent) Fitness() float64 { return a.fitness }

// Distance returns the scoring-time distance to the goal.
func (a *Agent) Distance() float64 { return a.distance }
