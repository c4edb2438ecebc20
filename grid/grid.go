/*
Package grid drives the maze simulation.

A Grid owns one maze and one population. Every call to Update is a single
simulation tick: living agents take one genome step, agents leaving the
viewport or entering a wall die, and once the whole generation is dead it
is scored and replaced by a bred successor.
*/
package grid

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-evolve/agent"
	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/maze"
)

// Simulation defaults.
const (
	DefaultMaxAge       = 5000
	DefaultGenomeLength = 1000
	DefaultMutationRate = 0.001
)

// Grid-related errors.
var (
	ErrInvalidDimensions   = errors.New("grid rows and columns must be at least 3")
	ErrInvalidPopulation   = errors.New("population size must be positive")
	ErrInvalidViewport     = errors.New("viewport width and height must be positive")
	ErrInvalidMutationRate = errors.New("mutation rate must be within [0, 1]")
	ErrInvalidGenome       = errors.New("genome length and max age must not be negative")
	ErrOutOfBounds         = errors.New("coordinate is outside of the grid")
)

// Config holds the parameters a Grid is built from.
type Config struct {
	Rows           int     // Number of cell rows
	Cols           int     // Number of cell columns
	Width          float64 // Viewport width in pixels
	Height         float64 // Viewport height in pixels
	PopulationSize int     // Agents per generation
	MutationRate   float64 // Per-gene mutation probability
	GenomeLength   int     // Impulses per seeded genome; zero selects DefaultGenomeLength, so empty genomes only come from breeding
	MaxAge         int     // Ticks before an agent dies of age, DefaultMaxAge when zero
	Rand           *rand.Rand
	OnGeneration   func(evolution.GenerationStats) // Called after each generation is scored
}

// Grid is the simulation orchestrator.
type Grid struct {
	rows         int
	cols         int
	width        float64
	height       float64
	cellWidth    float64
	cellHeight   float64
	maze         *maze.Maze
	population   *evolution.Population
	genomeLength int
	maxAge       int
	mutationRate float64
	solved       bool
	rng          *rand.Rand
	onGeneration func(evolution.GenerationStats)
}

// New validates c, carves a maze and seeds the first generation.
func New(c Config) (*Grid, error) {
	if c.Rows < maze.MinDimension || c.Cols < maze.MinDimension {
		return nil, ErrInvalidDimensions
	}
	if c.PopulationSize <= 0 {
		return nil, ErrInvalidPopulation
	}
	if !(c.Width > 0) || !(c.Height > 0) {
		return nil, ErrInvalidViewport
	}
	if !validRate(c.MutationRate) {
		return nil, ErrInvalidMutationRate
	}
	if c.GenomeLength < 0 || c.MaxAge < 0 {
		return nil, ErrInvalidGenome
	}

	if c.GenomeLength == 0 {
		c.GenomeLength = DefaultGenomeLength
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m, err := maze.New(c.Rows, c.Cols, c.Rand)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		rows:         c.Rows,
		cols:         c.Cols,
		maze:         m,
		genomeLength: c.GenomeLength,
		maxAge:       c.MaxAge,
		mutationRate: c.MutationRate,
		rng:          c.Rand,
		onGeneration: c.OnGeneration,
	}
	g.setViewport(c.Width, c.Height)
	g.population = evolution.Seed(c.PopulationSize, g.genomeLength, g.cellCenter(m.Start()), g.rng)
	return g, nil
}

// Update advances the simulation by one tick.
func (g *Grid) Update() {
	if g.population.Extinct() {
		g.nextGeneration()
	}

	for _, a := range g.population.Agents() {
		if a.IsDead() {
			continue
		}

		if a.Age() > g.maxAge {
			g.kill(a)
			continue
		}

		pos := a.Position()
		if !a.InBounds(g.width, g.height) {
			g.kill(a)
			continue
		}

		cell := g.cellAt(pos.X, pos.Y)
		switch cell.Type {
		case maze.Wall:
			g.kill(a)
			continue
		case maze.EndNode:
			a.Arrive()
			g.population.RecordDeath()
			g.solved = true
			continue
		}

		a.UpdateVisitedCells(cell)
		a.Update(g.cellWidth, g.cellHeight)
	}
}

func (g *Grid) kill(a *agent.Agent) {
	a.Kill()
	g.population.RecordDeath()
}

// nextGeneration scores the dead generation and replaces it.
func (g *Grid) nextGeneration() {
	goal := g.cellCenter(g.maze.End())
	start := g.cellCenter(g.maze.Start())

	next, stats := evolution.Next(g.population, goal, start, g.mutationRate, g.rng)
	g.population = next
	if g.onGeneration != nil {
		g.onGeneration(stats)
	}
}

// Resize recomputes the cell size for a new viewport. The maze and the
// population are left untouched.
func (g *Grid) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return ErrInvalidViewport
	}
	g.setViewport(width, height)
	return nil
}

// Regenerate discards the maze and the population and returns a new Grid
// of the given shape for the current viewport. The random source and the
// generation observer carry over.
func (g *Grid) Regenerate(rows, cols, populationSize int) (*Grid, error) {
	return New(Config{
		Rows:           rows,
		Cols:           cols,
		Width:          g.width,
		Height:         g.height,
		PopulationSize: populationSize,
		MutationRate:   DefaultMutationRate,
		GenomeLength:   g.genomeLength,
		MaxAge:         g.maxAge,
		Rand:           g.rng,
		OnGeneration:   g.onGeneration,
	})
}

// SetMutationRate changes the mutation probability used by the next breeding.
func (g *Grid) SetMutationRate(rate float64) error {
	if !validRate(rate) {
		return ErrInvalidMutationRate
	}
	g.mutationRate = rate
	return nil
}

// Cell returns the cell owning the pixel coordinate (x, y).
func (g *Grid) Cell(x, y float64) (maze.Cell, error) {
	row := int(math.Floor(y / g.cellHeight))
	col := int(math.Floor(x / g.cellWidth))
	c, err := g.maze.At(row, col)
	if err != nil {
		return maze.Cell{}, ErrOutOfBounds
	}
	return c, nil
}

// cellAt is Cell with the indices clamped onto the grid. Positions on the
// far viewport edge map to the last row or column.
func (g *Grid) cellAt(x, y float64) maze.Cell {
	row := min(max(int(math.Floor(y/g.cellHeight)), 0), g.rows-1)
	col := min(max(int(math.Floor(x/g.cellWidth)), 0), g.cols-1)
	c, _ := g.maze.At(row, col)
	return c
}

func (g *Grid) cellCenter(p maze.Position) agent.Vector {
	return agent.Vector{
		X: float64(p.Col)*g.cellWidth + g.cellWidth/2,
		Y: float64(p.Row)*g.cellHeight + g.cellHeight/2,
	}
}

func (g *Grid) setViewport(width, height float64) {
	g.width = width
	g.height = height
	g.cellWidth = width / float64(g.cols)
	g.cellHeight = height / float64(g.rows)
}

func validRate(rate float64) bool {
	return rate >= 0 && rate <= 1
}

// Rows returns the number of cell rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of cell columns.
func (g *Grid) Cols() int { return g.cols }

// CellSize returns the pixel width and height of a cell.
func (g *Grid) CellSize() (float64, float64) { return g.cellWidth, g.cellHeight }

// Viewport returns the pixel width and height of the play area.
func (g *Grid) Viewport() (float64, float64) { return g.width, g.height }

// Maze returns the maze the grid runs on.
func (g *Grid) Maze() *maze.Maze { return g.maze }

// Population returns the current generation.
func (g *Grid) Population() *evolution.Population { return g.population }

// Generation returns the current generation number.
func (g *Grid) Generation() int { return g.population.Generation() }

// MutationRate returns the live mutation rate.
func (g *Grid) MutationRate() float64 { return g.mutationRate }

// IsSolved reports whether any agent has reached the end cell.
func (g *Grid) IsSolved() bool { return g.solved }
