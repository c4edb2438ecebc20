package maze

import "fmt"

// CellType tags what occupies a cell of the maze.
type CellType uint8

const (
	Wall CellType = iota
	Empty
	StartNode
	EndNode
)

// String returns the lowercase name of the cell type.
func (t CellType) String() string {
	switch t {
	case Wall:
		return "wall"
	case Empty:
		return "empty"
	case StartNode:
		return "start"
	case EndNode:
		return "end"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Passable reports whether an agent may stand on a cell of this type.
func (t CellType) Passable() bool {
	return t != Wall
}

// Position represents the location of a cell in the maze grid.
type Position struct {
	Row int // Row index of the cell
	Col int // Column index of the cell
}

// Cell represents a single unit of the maze grid.
type Cell struct {
	X       int      // Column of the cell
	Y       int      // Row of the cell
	Type    CellType // What occupies the cell
	visited bool     // Only meaningful while the maze is being carved
}

// Position returns the row/column of the cell.
func (c Cell) Position() Position {
	return Position{Row: c.Y, Col: c.X}
}

// MarshalText encodes the cell type by name.
func (t CellType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a cell type written by MarshalText.
func (t *CellType) UnmarshalText(b []byte) error {
	for _, c := range []CellType{Wall, Empty, StartNode, EndNode} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown cell type %q", b)
}
