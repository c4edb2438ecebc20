package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/grid"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/google/uuid"
)

const (
	// DefaultSkipTickCap bounds a skip-to-solution frame.
	DefaultSkipTickCap = 500000

	persistTimeout = 2 * time.Second
)

var (
	ErrNoSimulation = errors.New("no active simulation")
	ErrInvalidSpeed = errors.New("speed must not be negative")
	ErrInvalidFPS   = errors.New("frames per second must be positive")
	ErrNilLogger    = errors.New("logger is required")
)

// Options carries the collaborators of a simulation. Only Logger is required.
type Options struct {
	Logger      i.Logger
	Broadcaster i.Broadcaster
	Repo        i.GenerationRepo
	Leaderboard i.Leaderboard
	Recorder    i.Recorder
	SkipTickCap int
}

// SimulationConfig describes the maze, population and driver settings of a run.
type SimulationConfig struct {
	Rows         int     `json:"rows" binding:"required"`
	Cols         int     `json:"cols" binding:"required"`
	Width        float64 `json:"width" binding:"required"`
	Height       float64 `json:"height" binding:"required"`
	Population   int     `json:"population" binding:"required"`
	MutationRate float64 `json:"mutation_rate"`
	Speed        int     `json:"speed"`
	Seed         int64   `json:"seed"`
}

// Params are the live driver settings.
type Params struct {
	Speed          int     `json:"speed"`
	Paused         bool    `json:"paused"`
	SkipToSolution bool    `json:"skip_to_solution"`
	MutationRate   float64 `json:"mutation_rate"`
}

// ParamsUpdate changes the fields that are set.
type ParamsUpdate struct {
	Speed          *int     `json:"speed"`
	Paused         *bool    `json:"paused"`
	SkipToSolution *bool    `json:"skip_to_solution"`
	MutationRate   *float64 `json:"mutation_rate"`
}

// Frame is the state handed to renderers.
type Frame struct {
	ID       uuid.UUID `json:"id"`
	Run      int       `json:"run"`
	Params   Params    `json:"params"`
	SolvedAt int       `json:"solved_at"`
	grid.Snapshot
}

// Simulation drives one Grid at the pace requested by the presentation layer.
type Simulation struct {
	id       uuid.UUID
	grid     *grid.Grid
	params   Params
	history  []evolution.GenerationStats
	run      int
	solvedAt int
	opts     *Options
	stop     chan struct{}
	stopOnce sync.Once
	sync.RWMutex
}

// NewSimulation builds the grid described by c.
func NewSimulation(c SimulationConfig, opts *Options) (*Simulation, error) {
	if opts == nil || opts.Logger == nil {
		return nil, ErrNilLogger
	}
	if c.Speed < 0 {
		return nil, ErrInvalidSpeed
	}
	if opts.SkipTickCap <= 0 {
		opts.SkipTickCap = DefaultSkipTickCap
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulation{
		id:   uuid.New(),
		run:  1,
		opts: opts,
		stop: make(chan struct{}),
		params: Params{
			Speed:        c.Speed,
			MutationRate: c.MutationRate,
		},
	}

	g, err := grid.New(grid.Config{
		Rows:           c.Rows,
		Cols:           c.Cols,
		Width:          c.Width,
		Height:         c.Height,
		PopulationSize: c.Population,
		MutationRate:   c.MutationRate,
		Rand:           rand.New(rand.NewSource(seed)),
		OnGeneration:   s.onGeneration,
	})
	if err != nil {
		return nil, err
	}
	s.grid = g

	opts.Logger.Info(fmt.Sprintf("simulation %s created: %dx%d maze, %d agents, seed %d", s.id, c.Rows, c.Cols, c.Population, seed))
	return s, nil
}

// ID returns the simulation identifier.
func (s *Simulation) ID() uuid.UUID { return s.id }

// RunNumber returns the number of the current maze, starting at 1 and advanced by Regenerate.
func (s *Simulation) RunNumber() int {
	s.RLock()
	defer s.RUnlock()
	return s.run
}

// RunID names one maze of a simulation on the leaderboard.
func RunID(id uuid.UUID, run int) string {
	return fmt.Sprintf("%s/%d", id, run)
}

// Frame runs the ticks of one rendered frame. Nothing happens while paused.
// A skip-to-solution request ticks until the maze is solved or the cap is
// reached, then pauses the simulation. On an already solved maze the request
// stays pending and the frame runs its regular speed ticks.
func (s *Simulation) Frame() {
	s.Lock()
	defer s.Unlock()

	if s.params.Paused {
		return
	}

	if s.params.SkipToSolution {
		count := 0
		for !s.grid.IsSolved() && count < s.opts.SkipTickCap {
			s.tick()
			count++
		}
		if count > 0 {
			s.params.SkipToSolution = false
			s.params.Paused = true
			s.opts.Logger.Info(fmt.Sprintf("simulation %s skipped %d ticks, solved: %t", s.id, count, s.grid.IsSolved()))
			s.record(count)
			return
		}
	}

	for n := 0; n < s.params.Speed; n++ {
		s.tick()
	}
	s.record(s.params.Speed)
}

// tick advances the grid once and notices the first solve.
func (s *Simulation) tick() {
	s.grid.Update()
	if s.solvedAt == 0 && s.grid.IsSolved() {
		s.solvedAt = s.grid.Generation()
		s.onSolved(s.solvedAt)
	}
}

func (s *Simulation) record(ticks int) {
	if s.opts.Recorder != nil && ticks > 0 {
		s.opts.Recorder.Ticks(ticks)
	}
}

// onGeneration runs inside Update while the lock is held.
func (s *Simulation) onGeneration(stats evolution.GenerationStats) {
	s.history = append(s.history, stats)
	s.opts.Logger.Info(fmt.Sprintf("simulation %s generation %d: max fitness %.4f, avg %.4f, arrived %d/%d",
		s.id, stats.Generation, stats.MaxFitness, stats.AverageFitness, stats.Arrived, stats.Size))

	if s.opts.Recorder != nil {
		s.opts.Recorder.Generation(stats.MaxFitness, stats.AverageFitness, stats.Arrived)
	}

	if s.opts.Repo != nil {
		record := &i.GenerationRecord{
			SimulationID: s.id,
			Run:          s.run,
			Rows:         s.grid.Rows(),
			Cols:         s.grid.Cols(),
			MutationRate: s.grid.MutationRate(),
			Stats:        stats,
		}
		go s.persist(record)
	}
}

func (s *Simulation) persist(r *i.GenerationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.opts.Repo.Save(ctx, r); err != nil {
		s.opts.Logger.Error(fmt.Sprintf("saving generation %d of %s: %v", r.Stats.Generation, s.id, err))
	}
}

func (s *Simulation) onSolved(generation int) {
	s.opts.Logger.Info(fmt.Sprintf("simulation %s solved in generation %d", s.id, generation))
	if s.opts.Recorder != nil {
		s.opts.Recorder.Solved()
	}
	if s.opts.Leaderboard == nil {
		return
	}

	rows, cols, id := s.grid.Rows(), s.grid.Cols(), RunID(s.id, s.run)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.opts.Leaderboard.Record(ctx, rows, cols, id, generation); err != nil {
			s.opts.Logger.Error(fmt.Sprintf("recording solve of %s: %v", id, err))
		}
	}()
}

// Run drives the simulation at fps frames per second, broadcasting a frame
// after each one, until ctx is done or Stop is called.
func (s *Simulation) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return ErrInvalidFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.Frame()
			s.broadcast()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *Simulation) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Simulation) broadcast() {
	if s.opts.Broadcaster == nil {
		return
	}
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		s.opts.Logger.Error(fmt.Sprintf("encoding frame of %s: %v", s.id, err))
		return
	}
	s.opts.Broadcaster.Broadcast(payload)
}

// Snapshot returns the current frame.
func (s *Simulation) Snapshot() Frame {
	s.RLock()
	defer s.RUnlock()
	return Frame{
		ID:       s.id,
		Run:      s.run,
		Params:   s.params,
		SolvedAt: s.solvedAt,
		Snapshot: s.grid.Snapshot(),
	}
}

// Params returns the live driver settings.
func (s *Simulation) Params() Params {
	s.RLock()
	defer s.RUnlock()
	return s.params
}

// SetParams applies the set fields of u. Nothing changes if any field is invalid.
func (s *Simulation) SetParams(u ParamsUpdate) error {
	s.Lock()
	defer s.Unlock()

	if u.Speed != nil && *u.Speed < 0 {
		return ErrInvalidSpeed
	}
	if u.MutationRate != nil {
		if err := s.grid.SetMutationRate(*u.MutationRate); err != nil {
			return err
		}
		s.params.MutationRate = *u.MutationRate
	}
	if u.Speed != nil {
		s.params.Speed = *u.Speed
	}
	if u.Paused != nil {
		s.params.Paused = *u.Paused
	}
	if u.SkipToSolution != nil {
		s.params.SkipToSolution = *u.SkipToSolution
	}
	return nil
}

// Resize adapts the grid to a new viewport.
func (s *Simulation) Resize(width, height float64) error {
	s.Lock()
	defer s.Unlock()
	return s.grid.Resize(width, height)
}

// Regenerate replaces the maze and population, keeping the viewport and the
// live mutation rate. History starts over under the next run number, so
// stored generations and leaderboard entries of earlier mazes are kept apart.
func (s *Simulation) Regenerate(rows, cols, population int) error {
	s.Lock()
	defer s.Unlock()

	g, err := s.grid.Regenerate(rows, cols, population)
	if err != nil {
		return err
	}
	if err := g.SetMutationRate(s.params.MutationRate); err != nil {
		return err
	}

	s.grid = g
	s.run++
	s.history = nil
	s.solvedAt = 0
	s.opts.Logger.Info(fmt.Sprintf("simulation %s regenerated: %dx%d maze, %d agents", s.id, rows, cols, population))
	return nil
}

// History returns the statistics of every scored generation.
func (s *Simulation) History() []evolution.GenerationStats {
	s.RLock()
	defer s.RUnlock()
	history := make([]evolution.GenerationStats, len(s.history))
	copy(history, s.history)
	return history
}

// Shape returns the maze rows and columns.
func (s *Simulation) Shape() (int, int) {
	s.RLock()
	defer s.RUnlock()
	return s.grid.Rows(), s.grid.Cols()
}

// MazeText renders the current maze as text.
func (s *Simulation) MazeText() string {
	s.RLock()
	defer s.RUnlock()
	return s.grid.Maze().String()
}

// Solved reports whether the current maze has been solved.
func (s *Simulation) Solved() bool {
	s.RLock()
	defer s.RUnlock()
	return s.grid.IsSolved()
}
