// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package monitors provides the observation stages of a simulation: each
monitor is pushed every raw integration step and decides, from its own
sampling period, whether to emit a sample. Monitors are independent of
each other and of the integration step size, except that every period
must be an integer multiple of dt (checked at configure time, rejected
otherwise -- rounding silently would change emission counts).
*/
package monitors

import (
	"errors"
	"fmt"

	"github.com/goki/mat32"
)

var (
	// ErrInvalidPeriod is returned when a monitor period is not a
	// positive integer multiple of the integration step size.
	ErrInvalidPeriod = errors.New("monitors: period not an integer multiple of dt")

	// ErrUnknownSensor is returned for a reference label not present in
	// the sensor set.
	ErrUnknownSensor = errors.New("monitors: unknown sensor label")

	// ErrNotConfigured is returned when a monitor is sampled before Configure.
	ErrNotConfigured = errors.New("monitors: not configured")
)

// Config carries the per-run geometry a monitor needs at configure
// time. Positions are node centres (region centres for region runs,
// mesh vertices for surface runs), used by projection monitors.
type Config struct {
	Dt          float32      `desc:"integration step size"`
	NNodes      int          `desc:"number of nodes (regions or vertices)"`
	NVars       int          `desc:"state variables per node"`
	CouplingVar int          `desc:"index of the observed state variable for reduced monitors"`
	Positions   []mat32.Vec3 `desc:"node centre positions"`
}

// Sample is one emitted observation.
type Sample struct {
	Time float32   `desc:"simulation time of the emission"`
	Data []float32 `desc:"observed values; layout is monitor-specific"`
}

// Monitor converts raw per-step state into a sampled output stream.
// Sample returns (sample, true) when due, (zero, false) otherwise.
type Monitor interface {
	// Name returns the monitor kind name.
	Name() string

	// Configure validates the period against dt and captures geometry.
	// Must be called once before sampling.
	Configure(cfg Config) error

	// Sample is pushed once per integration step, with step counting
	// from 0 and state shaped [nvar][nnode].
	Sample(step int, time float32, state [][]float32) (Sample, bool)
}

// periodSteps converts a period to an integer step count, rejecting
// non-divisible periods beyond a 1e-4 relative tolerance.
func periodSteps(period, dt float32) (int, error) {
	if period <= 0 || dt <= 0 {
		return 0, fmt.Errorf("%w: period %g, dt %g", ErrInvalidPeriod, period, dt)
	}
	ratio := period / dt
	istep := int(mat32.Round(ratio))
	if istep < 1 || mat32.Abs(ratio-float32(istep)) > 1e-4*ratio {
		return 0, fmt.Errorf("%w: period %g, dt %g", ErrInvalidPeriod, period, dt)
	}
	return istep, nil
}

// due reports whether a monitor with the given step interval emits at
// this step: at the end of each full period window, so a run of length
// L emits floor(L/period) samples.
func due(step, istep int) bool {
	return (step+1)%istep == 0
}

//////////////////////////////////////////////////////////////////////
// Raw

// Raw passes every step through unmodified: all state variables of all
// nodes, flattened var-major.
type Raw struct {
	cfg  Config
	conf bool
}

func NewRaw() *Raw { return &Raw{} }

func (mon *Raw) Name() string { return "Raw" }

func (mon *Raw) Configure(cfg Config) error {
	mon.cfg = cfg
	mon.conf = true
	return nil
}

func (mon *Raw) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	data := make([]float32, 0, mon.cfg.NVars*mon.cfg.NNodes)
	for v := range state {
		data = append(data, state[v]...)
	}
	return Sample{Time: time, Data: data}, true
}

//////////////////////////////////////////////////////////////////////
// SubSample

// SubSample emits the observed state variable of every node at every
// period boundary, without any averaging.
type SubSample struct {
	Period float32 `desc:"sampling period, integer multiple of dt"`

	cfg   Config
	istep int
}

func NewSubSample(period float32) *SubSample { return &SubSample{Period: period} }

func (mon *SubSample) Name() string { return "SubSample" }

func (mon *SubSample) Configure(cfg Config) error {
	is, err := periodSteps(mon.Period, cfg.Dt)
	if err != nil {
		return err
	}
	mon.cfg = cfg
	mon.istep = is
	return nil
}

func (mon *SubSample) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	if mon.istep == 0 || !due(step, mon.istep) {
		return Sample{}, false
	}
	data := make([]float32, mon.cfg.NNodes)
	copy(data, state[mon.cfg.CouplingVar])
	return Sample{Time: time, Data: data}, true
}

//////////////////////////////////////////////////////////////////////
// GlobalAverage

// GlobalAverage emits the spatial mean over nodes, per state variable,
// at every period boundary.
type GlobalAverage struct {
	Period float32 `desc:"sampling period, integer multiple of dt"`

	cfg   Config
	istep int
}

func NewGlobalAverage(period float32) *GlobalAverage { return &GlobalAverage{Period: period} }

func (mon *GlobalAverage) Name() string { return "GlobalAverage" }

func (mon *GlobalAverage) Configure(cfg Config) error {
	is, err := periodSteps(mon.Period, cfg.Dt)
	if err != nil {
		return err
	}
	mon.cfg = cfg
	mon.istep = is
	return nil
}

func (mon *GlobalAverage) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	if mon.istep == 0 || !due(step, mon.istep) {
		return Sample{}, false
	}
	data := make([]float32, len(state))
	for v := range state {
		var sum float32
		for _, x := range state[v] {
			sum += x
		}
		data[v] = sum / float32(len(state[v]))
	}
	return Sample{Time: time, Data: data}, true
}

//////////////////////////////////////////////////////////////////////
// TemporalAverage

// TemporalAverage emits the per-node, per-variable mean over all steps
// of each period window.
type TemporalAverage struct {
	Period float32 `desc:"sampling period, integer multiple of dt"`

	cfg   Config
	istep int
	accum [][]float32
	count int
}

func NewTemporalAverage(period float32) *TemporalAverage { return &TemporalAverage{Period: period} }

func (mon *TemporalAverage) Name() string { return "TemporalAverage" }

func (mon *TemporalAverage) Configure(cfg Config) error {
	is, err := periodSteps(mon.Period, cfg.Dt)
	if err != nil {
		return err
	}
	mon.cfg = cfg
	mon.istep = is
	mon.accum = make([][]float32, cfg.NVars)
	for v := range mon.accum {
		mon.accum[v] = make([]float32, cfg.NNodes)
	}
	mon.count = 0
	return nil
}

func (mon *TemporalAverage) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	if mon.istep == 0 {
		return Sample{}, false
	}
	for v := range state {
		acc := mon.accum[v]
		for i, x := range state[v] {
			acc[i] += x
		}
	}
	mon.count++
	if !due(step, mon.istep) {
		return Sample{}, false
	}
	inv := 1 / float32(mon.count)
	data := make([]float32, 0, mon.cfg.NVars*mon.cfg.NNodes)
	for v := range mon.accum {
		acc := mon.accum[v]
		for i := range acc {
			data = append(data, acc[i]*inv)
			acc[i] = 0
		}
	}
	mon.count = 0
	return Sample{Time: time, Data: data}, true
}
