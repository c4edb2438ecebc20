package i

import (
	"context"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/google/uuid"
)

// GenerationRecord is one scored generation of a simulation. Run numbers
// the maze the generation belongs to; it advances on every regeneration.
type GenerationRecord struct {
	SimulationID uuid.UUID
	Run          int
	Rows         int
	Cols         int
	MutationRate float64
	Stats        evolution.GenerationStats
}

// GenerationRepo persists generation history.
type GenerationRepo interface {
	// Save stores a scored generation.
	Save(ctx context.Context, r *GenerationRecord) error

	// BySimulation returns the generations of a simulation ordered by run, then generation number.
	BySimulation(ctx context.Context, id uuid.UUID) ([]*GenerationRecord, error)
}
