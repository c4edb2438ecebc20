package grid

import (
	"math/rand"
	"testing"

	"github.com/beka-birhanu/vinom-evolve/agent"
	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, rows, cols, population int, seed int64) *Grid {
	t.Helper()
	g, err := New(Config{
		Rows:           rows,
		Cols:           cols,
		Width:          float64(cols * 10),
		Height:         float64(rows * 10),
		PopulationSize: population,
		MutationRate:   DefaultMutationRate,
		Rand:           rand.New(rand.NewSource(seed)),
	})
	require.NoError(t, err)
	return g
}

// stillAgents replaces the population with agents that never move.
func stillAgents(g *Grid, n int) []*agent.Agent {
	start := g.cellCenter(g.maze.Start())
	agents := make([]*agent.Agent, n)
	for i := range agents {
		agents[i] = agent.New(start.X, start.Y, make([]agent.Vector, 10))
	}
	g.population = evolution.NewPopulation(agents, 1)
	return agents
}

func killAll(g *Grid) {
	for _, a := range g.population.Agents() {
		if !a.IsDead() {
			g.kill(a)
		}
	}
}

func TestNew(t *testing.T) {
	valid := Config{Rows: 11, Cols: 11, Width: 110, Height: 110, PopulationSize: 5}
	tests := []struct {
		name   string
		mutate func(c *Config)
		err    error
	}{
		{"rows too small", func(c *Config) { c.Rows = 2 }, ErrInvalidDimensions},
		{"cols too small", func(c *Config) { c.Cols = 1 }, ErrInvalidDimensions},
		{"zero population", func(c *Config) { c.PopulationSize = 0 }, ErrInvalidPopulation},
		{"negative population", func(c *Config) { c.PopulationSize = -4 }, ErrInvalidPopulation},
		{"zero width", func(c *Config) { c.Width = 0 }, ErrInvalidViewport},
		{"negative height", func(c *Config) { c.Height = -1 }, ErrInvalidViewport},
		{"mutation above one", func(c *Config) { c.MutationRate = 1.5 }, ErrInvalidMutationRate},
		{"negative mutation", func(c *Config) { c.MutationRate = -0.1 }, ErrInvalidMutationRate},
		{"negative genome", func(c *Config) { c.GenomeLength = -1 }, ErrInvalidGenome},
		{"valid", func(c *Config) {}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			g, err := New(c)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, g.Population().Size())
			assert.Equal(t, 1, g.Generation())
			assert.Equal(t, 0, g.Population().DeathToll())
		})
	}
}

func TestCellSize(t *testing.T) {
	g, err := New(Config{Rows: 5, Cols: 7, Width: 700, Height: 250, PopulationSize: 3})
	require.NoError(t, err)
	cw, ch := g.CellSize()
	assert.Equal(t, 100.0, cw)
	assert.Equal(t, 50.0, ch)

	start := g.cellCenter(g.Maze().Start())
	for _, a := range g.Population().Agents() {
		assert.Equal(t, agent.Vector{X: 150, Y: 75}, a.Position())
		assert.Len(t, a.Genome(), DefaultGenomeLength)
		assert.Equal(t, start, a.Position())
	}
}

func TestGenomeLengthDefault(t *testing.T) {
	for _, tt := range []struct {
		length int
		want   int
	}{
		{0, DefaultGenomeLength},
		{1, 1},
		{40, 40},
	} {
		g, err := New(Config{Rows: 5, Cols: 5, Width: 50, Height: 50, PopulationSize: 2, GenomeLength: tt.length})
		require.NoError(t, err)
		for _, a := range g.Population().Agents() {
			assert.Len(t, a.Genome(), tt.want)
		}
	}
}

func TestResize(t *testing.T) {
	g := newTestGrid(t, 9, 9, 4, 1)
	m, p := g.Maze(), g.Population()

	require.NoError(t, g.Resize(180, 45))
	cw, ch := g.CellSize()
	assert.Equal(t, 20.0, cw)
	assert.Equal(t, 5.0, ch)
	assert.Same(t, m, g.Maze())
	assert.Same(t, p, g.Population())

	assert.ErrorIs(t, g.Resize(0, 10), ErrInvalidViewport)
}

func TestCell(t *testing.T) {
	g := newTestGrid(t, 5, 5, 1, 1)

	c, err := g.Cell(15, 15)
	require.NoError(t, err)
	assert.Equal(t, maze.StartNode, c.Type)

	c, err = g.Cell(35, 39.9)
	require.NoError(t, err)
	assert.Equal(t, maze.EndNode, c.Type)

	_, err = g.Cell(50, 10)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.Cell(-0.1, 10)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	assert.Equal(t, 4, g.cellAt(50, 50).X)
	assert.Equal(t, 0, g.cellAt(-3, 0).Y)
}

func TestUpdate(t *testing.T) {
	t.Run("death toll stays within population", func(t *testing.T) {
		g := newTestGrid(t, 11, 11, 20, 7)
		for i := 0; i < 3000; i++ {
			g.Update()
			assert.LessOrEqual(t, g.Population().DeathToll(), g.Population().Size())
		}
	})

	t.Run("extinct generation is replaced on the next tick", func(t *testing.T) {
		var stats []evolution.GenerationStats
		g := newTestGrid(t, 11, 11, 6, 3)
		g.onGeneration = func(s evolution.GenerationStats) { stats = append(stats, s) }

		killAll(g)
		assert.True(t, g.Population().Extinct())
		g.Update()

		require.Len(t, stats, 1)
		assert.Equal(t, 1, stats[0].Generation)
		assert.Equal(t, 6, stats[0].Size)
		assert.Equal(t, 2, g.Generation())
		assert.Equal(t, 6, g.Population().Size())
		for _, a := range g.Population().Agents() {
			assert.Equal(t, 1, a.Age(), "new generation steps in the same tick")
		}
	})

	t.Run("age cap kills exactly once", func(t *testing.T) {
		g := newTestGrid(t, 11, 11, 10, 5)
		agents := stillAgents(g, 10)

		for i := 0; i <= DefaultMaxAge; i++ {
			g.Update()
		}
		assert.Equal(t, DefaultMaxAge+1, agents[0].Age())
		assert.False(t, agents[0].IsDead())
		assert.Equal(t, 0, g.Population().DeathToll())

		g.Update()
		for _, a := range agents {
			assert.True(t, a.IsDead())
		}
		assert.Equal(t, 10, g.Population().DeathToll())
		assert.Equal(t, 1, g.Generation())
	})

	t.Run("agents in a wall die", func(t *testing.T) {
		g := newTestGrid(t, 5, 5, 1, 1)
		g.population = evolution.NewPopulation([]*agent.Agent{agent.New(5, 5, nil)}, 1)
		g.Update()
		assert.True(t, g.Population().Agents()[0].IsDead())
		assert.Equal(t, 1, g.Population().DeathToll())
	})

	t.Run("agents outside the viewport die", func(t *testing.T) {
		g := newTestGrid(t, 5, 5, 1, 1)
		g.population = evolution.NewPopulation([]*agent.Agent{agent.New(60, 15, nil)}, 1)
		g.Update()
		assert.True(t, g.Population().Agents()[0].IsDead())
	})

	t.Run("3x3 grid is solved on the first tick", func(t *testing.T) {
		g := newTestGrid(t, 3, 3, 1, 1)
		assert.False(t, g.IsSolved())
		g.Update()
		assert.True(t, g.IsSolved())
		a := g.Population().Agents()[0]
		assert.True(t, a.Arrived())
		assert.Equal(t, 1, g.Population().DeathToll())

		g.Update()
		assert.Equal(t, 2, g.Generation())
	})

	t.Run("same seed same run", func(t *testing.T) {
		a := newTestGrid(t, 15, 15, 12, 99)
		b := newTestGrid(t, 15, 15, 12, 99)
		for i := 0; i < 2500; i++ {
			a.Update()
			b.Update()
		}
		assert.Equal(t, a.Snapshot(), b.Snapshot())
	})
}

func TestSetMutationRate(t *testing.T) {
	t.Run("rejects out of range", func(t *testing.T) {
		g := newTestGrid(t, 5, 5, 1, 1)
		assert.ErrorIs(t, g.SetMutationRate(1.01), ErrInvalidMutationRate)
		assert.ErrorIs(t, g.SetMutationRate(-1), ErrInvalidMutationRate)
		assert.Equal(t, DefaultMutationRate, g.MutationRate())
	})

	t.Run("zero rate copies the single parent", func(t *testing.T) {
		g := newTestGrid(t, 7, 7, 1, 2)
		require.NoError(t, g.SetMutationRate(0))
		parent := g.Population().Agents()[0].Genome()
		killAll(g)
		g.Update()
		assert.Equal(t, parent, g.Population().Agents()[0].Genome())
	})

	t.Run("full rate randomizes every gene", func(t *testing.T) {
		g := newTestGrid(t, 7, 7, 1, 2)
		require.NoError(t, g.SetMutationRate(1))
		for gen := 0; gen < 3; gen++ {
			parent := g.Population().Agents()[0].Genome()
			killAll(g)
			g.Update()
			child := g.Population().Agents()[0].Genome()
			require.Len(t, child, len(parent))
			for i := range child {
				assert.NotEqual(t, parent[i], child[i])
			}
		}
	})
}

func TestRegenerate(t *testing.T) {
	g := newTestGrid(t, 9, 9, 4, 1)
	require.NoError(t, g.SetMutationRate(0.5))
	require.NoError(t, g.Resize(300, 200))

	n, err := g.Regenerate(15, 21, 8)
	require.NoError(t, err)
	assert.Equal(t, 15, n.Rows())
	assert.Equal(t, 21, n.Cols())
	assert.Equal(t, 8, n.Population().Size())
	w, h := n.Viewport()
	assert.Equal(t, 300.0, w)
	assert.Equal(t, 200.0, h)
	assert.Equal(t, DefaultMutationRate, n.MutationRate())
	assert.Equal(t, 1, n.Generation())

	_, err = g.Regenerate(2, 21, 8)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestSnapshot(t *testing.T) {
	g := newTestGrid(t, 5, 7, 3, 1)
	for i := 0; i < 10; i++ {
		g.Update()
	}

	first := g.Snapshot()
	second := g.Snapshot()
	assert.Equal(t, first, second)

	assert.Len(t, first.Cells, 35)
	assert.Len(t, first.Agents, 3)
	assert.Equal(t, g.Generation(), first.Generation)

	c := first.Cells[1*7+1]
	assert.Equal(t, maze.StartNode, c.Type)
	assert.Equal(t, Rect{X: 10, Y: 10, W: 10, H: 10}, c.Rect)
}
