/*
Package maze builds rectangular wall/passage mazes.

Passable cells sit on odd coordinates and the cells between them are either
walls or openings. The layout is carved with a randomized iterative
depth-first search driven by a caller supplied random source, so the same
seed always yields the same maze.
*/
package maze

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	// MinDimension is the smallest row or column count that yields a start cell.
	MinDimension = 3
)

var (
	ErrInvalidDimensions = errors.New("maze dimensions must be at least 3x3")
	ErrOutOfBounds       = errors.New("position is outside of the maze")
)

// Maze is a rows x cols matrix of cells stored row-major.
type Maze struct {
	rows  int
	cols  int
	cells []Cell
	start Position
	end   Position
}

// New carves a new maze of the given dimensions using rng.
func New(rows, cols int, rng *rand.Rand) (*Maze, error) {
	if rows < MinDimension || cols < MinDimension {
		return nil, ErrInvalidDimensions
	}

	m := &Maze{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.cells[m.index(y, x)] = Cell{X: x, Y: y, Type: Wall}
		}
	}

	m.generate(rng)
	return m, nil
}

// Rows returns the number of rows.
func (m *Maze) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Maze) Cols() int { return m.cols }

// Start returns the position the agents are released from.
func (m *Maze) Start() Position { return m.start }

// End returns the goal position.
func (m *Maze) End() Position { return m.end }

// InBound reports whether row/col addresses a cell of the maze.
func (m *Maze) InBound(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// At returns the cell at row/col.
func (m *Maze) At(row, col int) (Cell, error) {
	if !m.InBound(row, col) {
		return Cell{}, ErrOutOfBounds
	}
	return m.cells[m.index(row, col)], nil
}

// Cells returns a copy of the cell matrix in row-major order.
func (m *Maze) Cells() []Cell {
	cells := make([]Cell, len(m.cells))
	copy(cells, m.cells)
	return cells
}

func (m *Maze) index(row, col int) int {
	return row*m.cols + col
}

func (m *Maze) cell(row, col int) *Cell {
	return &m.cells[m.index(row, col)]
}

// generate carves the passages with an explicit stack.
// See https://en.wikipedia.org/wiki/Maze_generation_algorithm#Iterative_implementation
func (m *Maze) generate(rng *rand.Rand) {
	current := m.cell(1, 1)
	current.visited = true
	current.Type = StartNode
	m.start = Position{Row: 1, Col: 1}

	stack := []*Cell{current}
	for len(stack) > 0 {
		current = pop(&stack)

		neighbors := m.unvisitedNeighbors(current)
		for _, n := range neighbors {
			n.Type = Empty
		}

		if len(neighbors) == 0 {
			continue
		}

		stack = append(stack, current)
		chosen := neighbors[rng.Intn(len(neighbors))]
		m.cell((current.Y+chosen.Y)/2, (current.X+chosen.X)/2).Type = Empty
		chosen.visited = true
		stack = append(stack, chosen)
	}

	m.end = Position{Row: m.rows - 2, Col: m.cols - 2}
	m.cell(m.end.Row, m.end.Col).Type = EndNode
}

// unvisitedNeighbors returns the lattice neighbors two steps away from c
// that have not been carved into yet. The order is north, west, south, east.
func (m *Maze) unvisitedNeighbors(c *Cell) []*Cell {
	var result []*Cell
	if c.Y >= 2 && !m.cell(c.Y-2, c.X).visited {
		result = append(result, m.cell(c.Y-2, c.X))
	}
	if c.X >= 2 && !m.cell(c.Y, c.X-2).visited {
		result = append(result, m.cell(c.Y, c.X-2))
	}
	if c.Y <= m.rows-3 && !m.cell(c.Y+2, c.X).visited {
		result = append(result, m.cell(c.Y+2, c.X))
	}
	if c.X <= m.cols-3 && !m.cell(c.Y, c.X+2).visited {
		result = append(result, m.cell(c.Y, c.X+2))
	}
	return result
}

// pop removes and returns the last element of a stack of cells.
func pop(s *[]*Cell) *Cell {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var b strings.Builder
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			switch m.cells[m.index(y, x)].Type {
			case Wall:
				b.WriteByte('#')
			case StartNode:
				b.WriteByte('S')
			case EndNode:
				b.WriteByte('E')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
