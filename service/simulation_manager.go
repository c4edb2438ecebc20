package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SimulationManager keeps exactly one simulation active at a time.
type SimulationManager struct {
	active *Simulation
	fps    int
	opts   *Options
	sync.RWMutex
}

// NewSimulationManager creates a manager whose simulations run at fps frames
// per second. With fps of zero simulations are only advanced by explicit
// Frame calls.
func NewSimulationManager(opts *Options, fps int) (*SimulationManager, error) {
	if opts == nil || opts.Logger == nil {
		return nil, ErrNilLogger
	}
	if fps < 0 {
		return nil, ErrInvalidFPS
	}
	return &SimulationManager{
		fps:  fps,
		opts: opts,
	}, nil
}

// Start builds a simulation from c and makes it the active one, stopping
// the previous simulation. The frame loop lives until ctx is done.
func (m *SimulationManager) Start(ctx context.Context, c SimulationConfig) (*Simulation, error) {
	opts := *m.opts
	sim, err := NewSimulation(c, &opts)
	if err != nil {
		return nil, err
	}

	m.Lock()
	previous := m.active
	m.active = sim
	m.Unlock()

	if previous != nil {
		previous.Stop()
		m.opts.Logger.Info(fmt.Sprintf("simulation %s replaced by %s", previous.ID(), sim.ID()))
	}

	if m.fps > 0 {
		go func() {
			if err := sim.Run(ctx, m.fps); err != nil && !errors.Is(err, context.Canceled) {
				m.opts.Logger.Error(fmt.Sprintf("simulation %s stopped: %v", sim.ID(), err))
			}
		}()
	}
	return sim, nil
}

// Active returns the running simulation.
func (m *SimulationManager) Active() (*Simulation, error) {
	m.RLock()
	defer m.RUnlock()
	if m.active == nil {
		return nil, ErrNoSimulation
	}
	return m.active, nil
}

// StopAll stops the active simulation.
func (m *SimulationManager) StopAll() {
	m.Lock()
	defer m.Unlock()
	if m.active != nil {
		m.active.Stop()
		m.active = nil
	}
}
