package evolution

import (
	"math/rand"
	"testing"

	"github.com/beka-birhanu/vinom-evolve/agent"
	"github.com/stretchr/testify/assert"
)

func TestPopulation(t *testing.T) {
	p := Seed(3, 10, agent.Vector{X: 5, Y: 5}, rand.New(rand.NewSource(1)))
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, 1, p.Generation())
	assert.Equal(t, 0, p.DeathToll())
	for _, a := range p.Agents() {
		assert.Len(t, a.Genome(), 10)
		assert.Equal(t, agent.Vector{X: 5, Y: 5}, a.Position())
	}

	for i := 0; i < 5; i++ {
		assert.False(t, p.Extinct() && i < 3)
		p.RecordDeath()
	}
	assert.Equal(t, 3, p.DeathToll(), "death toll is capped at the population size")
	assert.True(t, p.Extinct())
}
