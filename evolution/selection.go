package evolution

import (
	"math"
	"math/rand"

	"github.com/beka-birhanu/vinom-evolve/agent"
)

const (
	// poolScale is the number of mating pool entries an agent at normalized fitness 1 receives.
	poolScale = 100
)

// GenerationStats summarizes a scored generation.
type GenerationStats struct {
	Generation     int     `json:"generation" bson:"generation"`
	Size           int     `json:"size" bson:"size"`
	Arrived        int     `json:"arrived" bson:"arrived"`
	MaxFitness     float64 `json:"max_fitness" bson:"maxFitness"`         // raw, before normalization
	AverageFitness float64 `json:"average_fitness" bson:"averageFitness"` // normalized, in [0, 1]
	BestDistance   float64 `json:"best_distance" bson:"bestDistance"`
	PoolSize       int     `json:"pool_size" bson:"poolSize"`
}

// Distance is the goal metric: the square root of the summed absolute
// axis offsets between a and b.
func Distance(a, b agent.Vector) float64 {
	return math.Sqrt(math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y))
}

// Score sets distance and fitness on every agent of p against goal, then
// normalizes fitness by the generation maximum. Dead and living agents are
// scored alike.
func Score(p *Population, goal agent.Vector) GenerationStats {
	stats := GenerationStats{
		Generation:   p.generation,
		Size:         len(p.agents),
		BestDistance: math.Inf(1),
	}

	for _, a := range p.agents {
		d := Distance(a.Position(), goal)
		a.SetDistance(d)
		f := a.CalculateFitness()
		stats.MaxFitness = max(stats.MaxFitness, f)
		stats.BestDistance = min(stats.BestDistance, d)
		if a.Arrived() {
			stats.Arrived++
		}
	}

	var sum float64
	for _, a := range p.agents {
		if stats.MaxFitness > 0 {
			a.SetFitness(a.Fitness() / stats.MaxFitness)
		} else {
			a.SetFitness(0)
		}
		sum += a.Fitness()
	}
	if len(p.agents) > 0 {
		stats.AverageFitness = sum / float64(len(p.agents))
	} else {
		stats.BestDistance = 0
	}
	return stats
}

// MatingPool returns a multiset of agents where each agent appears
// round(fitness*100) times. Fitness must already be normalized. When no
// agent earns an entry every agent appears once.
func MatingPool(agents []*agent.Agent) []*agent.Agent {
	var pool []*agent.Agent
	for _, a := range agents {
		n := int(math.Round(a.Fitness() * poolScale))
		for i := 0; i < n; i++ {
			pool = append(pool, a)
		}
	}

	if len(pool) == 0 {
		pool = append(pool, agents...)
	}
	return pool
}

// Crossover builds a child genome as long as the shorter parent. The first
// half comes from a and the rest from b; each gene is independently replaced
// by a random impulse with probability mutationRate.
func Crossover(a, b []agent.Vector, mutationRate float64, rng *rand.Rand) []agent.Vector {
	n := min(len(a), len(b))
	child := make([]agent.Vector, n)
	for i := 0; i < n; i++ {
		switch {
		case rng.Float64() < mutationRate:
			child[i] = agent.RandomImpulse(rng)
		case 2*i < n:
			child[i] = a[i]
		default:
			child[i] = b[i]
		}
	}
	return child
}

// Breed creates the next generation of n agents at start from parents drawn
// uniformly from pool.
func Breed(pool []*agent.Agent, n int, generation int, start agent.Vector, mutationRate float64, rng *rand.Rand) *Population {
	agents := make([]*agent.Agent, 0, n)
	if len(pool) == 0 {
		return NewPopulation(agents, generation)
	}

	for len(agents) < n {
		parentA := pool[rng.Intn(len(pool))]
		parentB := pool[rng.Intn(len(pool))]
		genome := Crossover(parentA.Genome(), parentB.Genome(), mutationRate, rng)
		agents = append(agents, agent.New(start.X, start.Y, genome))
	}
	return NewPopulation(agents, generation)
}

// Next scores p, builds its mating pool and breeds the following generation.
func Next(p *Population, goal, start agent.Vector, mutationRate float64, rng *rand.Rand) (*Population, GenerationStats) {
	stats := Score(p, goal)
	pool := MatingPool(p.agents)
	stats.PoolSize = len(pool)
	return Breed(pool, len(p.agents), p.generation+1, start, mutationRate, rng), stats
}
