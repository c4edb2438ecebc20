// Package evolution holds a generation of agents and the genetic operators
// that turn one generation into the next.
package evolution

import (
	"math/rand"

	"github.com/beka-birhanu/vinom-evolve/agent"
)

// Population is the set of agents making up one generation.
type Population struct {
	agents     []*agent.Agent
	deathToll  int
	generation int
}

// NewPopulation wraps agents as the given generation with a zero death toll.
func NewPopulation(agents []*agent.Agent, generation int) *Population {
	return &Population{
		agents:     agents,
		generation: generation,
	}
}

// Seed creates the first generation: n agents at start with random genomes.
func Seed(n, genomeLength int, start agent.Vector, rng *rand.Rand) *Population {
	agents := make([]*agent.Agent, n)
	for i := range agents {
		agents[i] = agent.New(start.X, start.Y, agent.RandomGenome(genomeLength, rng))
	}
	return NewPopulation(agents, 1)
}

// Agents returns the members of the generation.
func (p *Population) Agents() []*agent.Agent { return p.agents }

// Size returns the number of agents.
func (p *Population) Size() int { return len(p.agents) }

// Generation returns the 1-based generation number.
func (p *Population) Generation() int { return p.generation }

// DeathToll returns how many agents died in this generation.
func (p *Population) DeathToll() int { return p.deathToll }

// RecordDeath counts one death. The toll never exceeds the population size.
func (p *Population) RecordDeath() {
	if p.deathToll < len(p.agents) {
		p.deathToll++
	}
}

// Extinct reports whether every agent of the generation has died.
func (p *Population) Extinct() bool {
	return p.deathToll >= len(p.agents)
}
