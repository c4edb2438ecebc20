package grid

import "github.com/beka-birhanu/vinom-evolve/maze"

// Rect is a pixel rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CellView is a cell as the renderer sees it.
type CellView struct {
	Row  int           `json:"row"`
	Col  int           `json:"col"`
	Type maze.CellType `json:"type"`
	Rect Rect          `json:"rect"`
}

// AgentView is an agent as the renderer sees it.
type AgentView struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Alive   bool    `json:"alive"`
	Arrived bool    `json:"arrived"`
}

// Snapshot is everything needed to draw one frame.
type Snapshot struct {
	Rows         int         `json:"rows"`
	Cols         int         `json:"cols"`
	CellWidth    float64     `json:"cell_width"`
	CellHeight   float64     `json:"cell_height"`
	Generation   int         `json:"generation"`
	DeathToll    int         `json:"death_toll"`
	MutationRate float64     `json:"mutation_rate"`
	Solved       bool        `json:"solved"`
	Cells        []CellView  `json:"cells"`
	Agents       []AgentView `json:"agents"`
}

// Snapshot reads the current state for rendering without mutating it.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Rows:         g.rows,
		Cols:         g.cols,
		CellWidth:    g.cellWidth,
		CellHeight:   g.cellHeight,
		Generation:   g.population.Generation(),
		DeathToll:    g.population.DeathToll(),
		MutationRate: g.mutationRate,
		Solved:       g.solved,
	}

	cells := g.maze.Cells()
	s.Cells = make([]CellView, len(cells))
	for i, c := range cells {
		s.Cells[i] = CellView{
			Row:  c.Y,
			Col:  c.X,
			Type: c.Type,
			Rect: Rect{
				X: float64(c.X) * g.cellWidth,
				Y: float64(c.Y) * g.cellHeight,
				W: g.cellWidth,
				H: g.cellHeight,
			},
		}
	}

	agents := g.population.Agents()
	s.Agents = make([]AgentView, len(agents))
	for i, a := range agents {
		pos := a.Position()
		s.Agents[i] = AgentView{X: pos.X, Y: pos.Y, Alive: !a.IsDead(), Arrived: a.Arrived()}
	}
	return s
}
