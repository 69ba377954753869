// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package simulator orchestrates a brain-network simulation: it owns the
node state and the delayed-state history, drives the integrator one
micro-step at a time, and pushes every raw state update to the
configured monitors.

A Simulation is assembled from its components, validated once with
Configure, and then driven by one or more Run calls. Each Run returns a
lazy Runner over per-step monitor outputs and continues from the state
the previous Run left behind. Stepping is single-threaded and
synchronous; errors abort the run with no partial-result recovery.
*/
package simulator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cortexsim/cortexsim/connectivity"
	"github.com/cortexsim/cortexsim/cortex"
	"github.com/cortexsim/cortexsim/coupling"
	"github.com/cortexsim/cortexsim/integrators"
	"github.com/cortexsim/cortexsim/models"
	"github.com/cortexsim/cortexsim/monitors"
	"github.com/emer/emergent/v2/erand"
	"github.com/goki/mat32"
)

var (
	// ErrMissingComponent is returned by Configure when a required
	// component (connectivity, model, coupling, integrator, monitors)
	// is absent.
	ErrMissingComponent = errors.New("simulator: missing component")

	// ErrNotConfigured is returned by Run before a successful Configure.
	ErrNotConfigured = errors.New("simulator: not configured")

	// ErrNumericalBlowup aborts a run when the state goes non-finite.
	ErrNumericalBlowup = errors.New("simulator: non-finite state")
)

// Simulation aggregates one connectivity, one model, one coupling
// function, one integrator and an ordered monitor list, plus an
// optional cortical surface for vertex-level runs. Set the exported
// fields, call Configure once, then Run; configuration is immutable
// for the duration of a run.
type Simulation struct {
	Connectivity *connectivity.Connectivity `desc:"long-range structural connectome"`
	Model        models.Model               `desc:"local dynamics at every node"`
	Coupling     coupling.Function          `desc:"long-range coupling function"`
	Integrator   integrators.Integrator     `desc:"integration scheme, owns dt"`
	Monitors     []monitors.Monitor         `desc:"ordered observation stages; order fixes output slot order"`
	Surface      *cortex.Cortex             `desc:"optional cortical surface; nil for region-level runs"`
	InitSeed     int64                      `desc:"seed for the initial state draw"`
	Log          *slog.Logger               `desc:"optional logger; defaults to slog.Default"`

	configured bool
	nnodes     int
	nregions   int
	cvar       int
	time       float32
	step       int
	state      [][]float32
	next       [][]float32
	hist       *history
	delays     []int

	regCoupl []float32 // per-region long-range term
	vertTmp  []float32 // per-vertex scratch (surface runs)
	couplBuf []float32 // per-node coupling input to the model
	regAvg   []float32 // per-region average of the coupling var (surface runs)
}

func (sim *Simulation) logger() *slog.Logger {
	if sim.Log != nil {
		return sim.Log
	}
	return slog.Default()
}

// Configure validates the assembled components and allocates all run
// state: the initial condition, the delay history sized to the longest
// tract delay, and every monitor. It fails fast with a typed error
// before any stepping can occur.
func (sim *Simulation) Configure() error {
	sim.configured = false
	switch {
	case sim.Connectivity == nil:
		return fmt.Errorf("%w: connectivity", ErrMissingComponent)
	case sim.Model == nil:
		return fmt.Errorf("%w: model", ErrMissingComponent)
	case sim.Coupling == nil:
		return fmt.Errorf("%w: coupling", ErrMissingComponent)
	case sim.Integrator == nil:
		return fmt.Errorf("%w: integrator", ErrMissingComponent)
	case len(sim.Monitors) == 0:
		return fmt.Errorf("%w: monitors", ErrMissingComponent)
	}
	if err := sim.Connectivity.Validate(); err != nil {
		return err
	}
	sim.nregions = sim.Connectivity.NRegions
	positions := sim.Connectivity.Centres
	sim.nnodes = sim.nregions
	if sim.Surface != nil {
		if err := sim.Surface.Validate(sim.nregions); err != nil {
			return err
		}
		sim.nnodes = sim.Surface.Mesh.NVertices()
		positions = sim.Surface.Mesh.Vertices
	}

	dt := sim.Integrator.Dt()
	sim.cvar = sim.Model.CouplingVar()
	sim.state = models.InitialState(sim.Model, sim.nnodes, erand.NewSysRand(sim.InitSeed))
	sim.next = make([][]float32, len(sim.state))
	for v := range sim.next {
		sim.next[v] = make([]float32, sim.nnodes)
	}
	sim.time = 0
	sim.step = 0

	sim.delays = sim.Connectivity.DelaySteps(dt)
	horizon := sim.Connectivity.MaxDelaySteps(dt) + 1
	sim.hist = newHistory(horizon, sim.nregions)
	sim.regCoupl = make([]float32, sim.nregions)
	sim.couplBuf = make([]float32, sim.nnodes)
	if sim.Surface != nil {
		sim.regAvg = make([]float32, sim.nregions)
		sim.vertTmp = make([]float32, sim.nnodes)
	}
	sim.hist.fill(sim.regionState())

	cfg := monitors.Config{
		Dt:          dt,
		NNodes:      sim.nnodes,
		NVars:       sim.Model.NVars(),
		CouplingVar: sim.cvar,
		Positions:   positions,
	}
	for _, mon := range sim.Monitors {
		if err := mon.Configure(cfg); err != nil {
			return fmt.Errorf("%s: %w", mon.Name(), err)
		}
	}

	sim.configured = true
	sim.logger().Info("simulation configured",
		"model", sim.Model.Name(),
		"method", sim.Integrator.Name(),
		"coupling", sim.Coupling.Name(),
		"dt", dt,
		"nodes", sim.nnodes,
		"regions", sim.nregions,
		"surface", sim.Surface != nil,
		"monitors", len(sim.Monitors),
		"horizon", horizon)
	return nil
}

// regionState returns the current region-level values of the coupling
// variable: the raw state for region runs, per-region vertex means for
// surface runs.
func (sim *Simulation) regionState() []float32 {
	if sim.Surface == nil {
		return sim.state[sim.cvar]
	}
	sim.Surface.RegionAverage(sim.state[sim.cvar], sim.regAvg)
	return sim.regAvg
}

// Run returns a lazy iterator over round(length/dt) integration steps,
// continuing from the simulation's current state. Each iteration yields
// one output slot per monitor, nil when that monitor was not due.
func (sim *Simulation) Run(length float32) *Runner {
	r := &Runner{sim: sim}
	if !sim.configured {
		r.err = ErrNotConfigured
		return r
	}
	dt := sim.Integrator.Dt()
	r.nsteps = int(mat32.Round(length / dt))
	r.vals = make([]*monitors.Sample, len(sim.Monitors))
	return r
}

// Runner is the lazy per-step iterator produced by Run. The usual
// pattern is:
//
//	it := sim.Run(length)
//	for it.Next() {
//		for i, smp := range it.Values() { ... }
//	}
//	if err := it.Err(); err != nil { ... }
type Runner struct {
	sim    *Simulation
	nsteps int
	done   int
	vals   []*monitors.Sample
	err    error
}

// Next advances one integration step and refreshes Values, returning
// false when the requested length is exhausted or an error occurred.
func (r *Runner) Next() bool {
	if r.err != nil || r.done >= r.nsteps {
		return false
	}
	if err := r.sim.advance(); err != nil {
		r.err = err
		return false
	}
	sim := r.sim
	for i, mon := range sim.Monitors {
		if smp, ok := mon.Sample(sim.step-1, sim.time, sim.state); ok {
			s := smp
			r.vals[i] = &s
		} else {
			r.vals[i] = nil
		}
	}
	r.done++
	if r.done == r.nsteps {
		sim.logger().Debug("run complete", "steps", r.done, "time", sim.time)
	}
	return true
}

// Values returns the per-monitor output slots for the current step.
// The slice is reused between steps.
func (r *Runner) Values() []*monitors.Sample { return r.vals }

// Err returns the error that aborted the run, if any.
func (r *Runner) Err() error { return r.err }

// advance performs one micro-step: gather delayed region states,
// compute coupling, integrate, push history.
func (sim *Simulation) advance() error {
	sim.gatherCoupling()
	sim.Integrator.Step(sim.time, sim.state, sim.Model.Dfun, sim.couplBuf, sim.next)
	sim.state, sim.next = sim.next, sim.state
	sim.hist.push(sim.regionState())
	sim.time += sim.Integrator.Dt()
	sim.step++
	return sim.checkFinite()
}

// gatherCoupling fills couplBuf with the per-node coupling input:
// the delayed long-range term, plus the local term on surface runs.
func (sim *Simulation) gatherCoupling() {
	xDel := sim.hist.gather(sim.delays)
	cur := sim.hist.current()
	coupling.Compute(sim.Coupling, sim.Connectivity.Weights, xDel, cur, sim.regCoupl)
	if sim.Surface == nil {
		copy(sim.couplBuf, sim.regCoupl)
		return
	}
	sim.Surface.Local.Apply(sim.state[sim.cvar], sim.vertTmp)
	for i, reg := range sim.Surface.Mapping.ToRegion {
		sim.couplBuf[i] = sim.regCoupl[reg] + sim.Surface.CouplingStrength*sim.vertTmp[i]
	}
}

// checkFinite aborts on NaN or infinity anywhere in the state.
func (sim *Simulation) checkFinite() error {
	for v := range sim.state {
		for i, x := range sim.state[v] {
			if mat32.IsNaN(x) || mat32.IsInf(x, 0) {
				return fmt.Errorf("%w: var %d node %d at t=%g", ErrNumericalBlowup, v, i, sim.time)
			}
		}
	}
	return nil
}
