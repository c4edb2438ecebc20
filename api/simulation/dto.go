// Package simulationapi exposes the running simulation over HTTP.
package simulationapi

import (
	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/service"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/google/uuid"
)

// StartRequest asks for a new simulation. Omitted fields take the server defaults.
type StartRequest struct {
	Rows         int      `json:"rows" binding:"omitempty,gte=3"`
	Cols         int      `json:"cols" binding:"omitempty,gte=3"`
	Width        float64  `json:"width" binding:"omitempty,gt=0"`
	Height       float64  `json:"height" binding:"omitempty,gt=0"`
	Population   int      `json:"population" binding:"omitempty,gt=0"`
	MutationRate *float64 `json:"mutation_rate" binding:"omitempty,gte=0,lte=1"`
	Speed        *int     `json:"speed" binding:"omitempty,gte=0"`
	Seed         int64    `json:"seed"`
}

// StartResponse carries the control token of a new simulation.
type StartResponse struct {
	ID        uuid.UUID      `json:"id"`
	Token     string         `json:"token"`
	ExpiresAt int64          `json:"expires_at"`
	Params    service.Params `json:"params"`
}

// RegenerateRequest replaces the maze and the population.
type RegenerateRequest struct {
	Rows       int `json:"rows" binding:"required,gte=3"`
	Cols       int `json:"cols" binding:"required,gte=3"`
	Population int `json:"population" binding:"required,gt=0"`
}

// ViewportRequest resizes the drawing area.
type ViewportRequest struct {
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

// HistoryResponse lists scored generations of a run.
type HistoryResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Run         int                         `json:"run"`
	Generations []evolution.GenerationStats `json:"generations"`
}

// RunHistory is the stored history of one maze of a simulation.
type RunHistory struct {
	Run          int                         `json:"run"`
	Rows         int                         `json:"rows"`
	Cols         int                         `json:"cols"`
	MutationRate float64                     `json:"mutation_rate"`
	Generations  []evolution.GenerationStats `json:"generations"`
}

// StoredHistoryResponse lists every stored run of a simulation.
type StoredHistoryResponse struct {
	ID   uuid.UUID    `json:"id"`
	Runs []RunHistory `json:"runs"`
}

// LeaderboardResponse ranks runs of one maze shape.
type LeaderboardResponse struct {
	Rows    int                  `json:"rows"`
	Cols    int                  `json:"cols"`
	Entries []i.LeaderboardEntry `json:"entries"`
}
