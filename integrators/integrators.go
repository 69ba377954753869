// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package integrators provides the numerical schemes that advance node
state by one fixed step dt. Deterministic schemes (Euler, Heun, RK4)
are bit-reproducible given identical inputs; stochastic schemes consume
exactly one noise-buffer fill per step from their noise source, so a
run is reproducible given the source's seed.

The coupling term is computed once per step by the caller and held
fixed across sub-stage evaluations, matching the semantics of the
reference delayed-coupling formulation.
*/
package integrators

import (
	"errors"
	"fmt"

	"github.com/cortexsim/cortexsim/noise"
	"github.com/goki/ki/kit"
)

var (
	// ErrUnknownVariant is returned by FromName for an unrecognized method name.
	ErrUnknownVariant = errors.New("integrators: unknown method")

	// ErrNoiseRequired is returned when a stochastic method is constructed
	// without a noise source, or a deterministic one with a source.
	ErrNoiseRequired = errors.New("integrators: noise source mismatch for method")

	// ErrInvalidDt is returned for a non-positive step size.
	ErrInvalidDt = errors.New("integrators: dt must be positive")
)

// Dfun computes derivatives of state into deriv given the per-node
// coupling term, mirroring models.Model.Dfun.
type Dfun func(state [][]float32, coupl []float32, deriv [][]float32)

// Integrator advances state by one step. Implementations own their
// step size and any scratch buffers; configuration is immutable after
// construction.
type Integrator interface {
	// Name returns the registry name of this scheme.
	Name() string

	// Dt returns the fixed step size.
	Dt() float32

	// Step writes the state at t+dt into next, evaluating dfun at the
	// stage points required by the scheme. state and next are
	// [nvar][nnode] and must not alias.
	Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32)
}

// scratch manages the stage buffers shared by all schemes.
type scratch struct {
	bufs [][][]float32
}

// get returns scratch buffer k shaped like state, reallocating on
// geometry change only.
func (s *scratch) get(k int, state [][]float32) [][]float32 {
	for len(s.bufs) <= k {
		s.bufs = append(s.bufs, nil)
	}
	b := s.bufs[k]
	if len(b) != len(state) || (len(state) > 0 && len(b) > 0 && len(b[0]) != len(state[0])) {
		b = make([][]float32, len(state))
		for v := range b {
			b[v] = make([]float32, len(state[v]))
		}
		s.bufs[k] = b
	}
	return b
}

//////////////////////////////////////////////////////////////////////
// Deterministic schemes

// EulerDeterministic is the first-order explicit Euler scheme.
type EulerDeterministic struct {
	StepDt float32 `desc:"integration step size"`
	scr    scratch
}

func (in *EulerDeterministic) Name() string { return "EulerDeterministic" }
func (in *EulerDeterministic) Dt() float32  { return in.StepDt }

func (in *EulerDeterministic) Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32) {
	k1 := in.scr.get(0, state)
	dfun(state, coupl, k1)
	for v := range state {
		for i := range state[v] {
			next[v][i] = state[v][i] + in.StepDt*k1[v][i]
		}
	}
}

// HeunDeterministic is the two-stage predictor/corrector scheme: an
// Euler predictor followed by a trapezoidal corrector averaging the
// derivative at the original and predicted states.
type HeunDeterministic struct {
	StepDt float32 `desc:"integration step size"`
	scr    scratch
}

func (in *HeunDeterministic) Name() string { return "HeunDeterministic" }
func (in *HeunDeterministic) Dt() float32  { return in.StepDt }

func (in *HeunDeterministic) Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32) {
	k1 := in.scr.get(0, state)
	pred := in.scr.get(1, state)
	k2 := in.scr.get(2, state)
	dfun(state, coupl, k1)
	for v := range state {
		for i := range state[v] {
			pred[v][i] = state[v][i] + in.StepDt*k1[v][i]
		}
	}
	dfun(pred, coupl, k2)
	half := in.StepDt / 2
	for v := range state {
		for i := range state[v] {
			next[v][i] = state[v][i] + half*(k1[v][i]+k2[v][i])
		}
	}
}

// RungeKutta4 is the classic fourth-order four-stage scheme.
type RungeKutta4 struct {
	StepDt float32 `desc:"integration step size"`
	scr    scratch
}

func (in *RungeKutta4) Name() string { return "RungeKutta4thOrderDeterministic" }
func (in *RungeKutta4) Dt() float32  { return in.StepDt }

func (in *RungeKutta4) Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32) {
	k1 := in.scr.get(0, state)
	k2 := in.scr.get(1, state)
	k3 := in.scr.get(2, state)
	k4 := in.scr.get(3, state)
	tmp := in.scr.get(4, state)
	dt := in.StepDt

	dfun(state, coupl, k1)
	for v := range state {
		for i := range state[v] {
			tmp[v][i] = state[v][i] + dt/2*k1[v][i]
		}
	}
	dfun(tmp, coupl, k2)
	for v := range state {
		for i := range state[v] {
			tmp[v][i] = state[v][i] + dt/2*k2[v][i]
		}
	}
	dfun(tmp, coupl, k3)
	for v := range state {
		for i := range state[v] {
			tmp[v][i] = state[v][i] + dt*k3[v][i]
		}
	}
	dfun(tmp, coupl, k4)
	for v := range state {
		for i := range state[v] {
			next[v][i] = state[v][i] + dt/6*(k1[v][i]+2*k2[v][i]+2*k3[v][i]+k4[v][i])
		}
	}
}

//////////////////////////////////////////////////////////////////////
// Stochastic schemes

// stateScaler is implemented by noise sources whose amplitude depends
// on the current state (multiplicative noise).
type stateScaler interface {
	FillScaled(dt float32, state, buf [][]float32)
}

// fillNoise draws one noise buffer for this step, state-scaled when the
// source supports it.
func fillNoise(src noise.Source, dt float32, state, buf [][]float32) {
	if ms, ok := src.(stateScaler); ok {
		ms.FillScaled(dt, state, buf)
		return
	}
	src.Fill(dt, buf)
}

// EulerStochastic is the Euler-Maruyama scheme: an Euler drift step
// plus one noise realization.
type EulerStochastic struct {
	StepDt float32      `desc:"integration step size"`
	Noise  noise.Source `desc:"noise source, one fill per step"`
	scr    scratch
}

func (in *EulerStochastic) Name() string { return "EulerStochastic" }
func (in *EulerStochastic) Dt() float32  { return in.StepDt }

func (in *EulerStochastic) Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32) {
	k1 := in.scr.get(0, state)
	z := in.scr.get(1, state)
	dfun(state, coupl, k1)
	fillNoise(in.Noise, in.StepDt, state, z)
	for v := range state {
		for i := range state[v] {
			next[v][i] = state[v][i] + in.StepDt*k1[v][i] + z[v][i]
		}
	}
}

// HeunStochastic is the stochastic Heun scheme. One noise realization
// is drawn per step and added to both the predictor and the corrected
// state; the predictor/corrector structure matches the deterministic
// scheme stage for stage.
type HeunStochastic struct {
	StepDt float32      `desc:"integration step size"`
	Noise  noise.Source `desc:"noise source, one fill per step"`
	scr    scratch
}

func (in *HeunStochastic) Name() string { return "HeunStochastic" }
func (in *HeunStochastic) Dt() float32  { return in.StepDt }

func (in *HeunStochastic) Step(t float32, state [][]float32, dfun Dfun, coupl []float32, next [][]float32) {
	k1 := in.scr.get(0, state)
	pred := in.scr.get(1, state)
	k2 := in.scr.get(2, state)
	z := in.scr.get(3, state)
	dfun(state, coupl, k1)
	fillNoise(in.Noise, in.StepDt, state, z)
	for v := range state {
		for i := range state[v] {
			pred[v][i] = state[v][i] + in.StepDt*k1[v][i] + z[v][i]
		}
	}
	dfun(pred, coupl, k2)
	half := in.StepDt / 2
	for v := range state {
		for i := range state[v] {
			next[v][i] = state[v][i] + half*(k1[v][i]+k2[v][i]) + z[v][i]
		}
	}
}

//////////////////////////////////////////////////////////////////////
// Enums

// MethodType is the closed enumeration of integration schemes.
type MethodType int

//go:generate stringer -type=MethodType

var KiT_MethodType = kit.Enums.AddEnum(MethodTypeN, false, nil)

func (ev MethodType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *MethodType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	EulerDeterministicType MethodType = iota
	EulerStochasticType
	HeunDeterministicType
	HeunStochasticType
	RungeKutta4Type

	MethodTypeN
)

// Stochastic reports whether the method consumes a noise source.
func (ev MethodType) Stochastic() bool {
	return ev == EulerStochasticType || ev == HeunStochasticType
}

// KnownMethods lists every integration scheme, for exhaustive testing.
func KnownMethods() []MethodType {
	return []MethodType{EulerDeterministicType, EulerStochasticType, HeunDeterministicType, HeunStochasticType, RungeKutta4Type}
}

// New constructs an integrator by type. Stochastic methods require a
// noise source and deterministic ones must not be given one.
func New(mt MethodType, dt float32, src noise.Source) (Integrator, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt = %g", ErrInvalidDt, dt)
	}
	if mt.Stochastic() != (src != nil) {
		return nil, fmt.Errorf("%w: %v", ErrNoiseRequired, mt)
	}
	switch mt {
	case EulerDeterministicType:
		return &EulerDeterministic{StepDt: dt}, nil
	case EulerStochasticType:
		return &EulerStochastic{StepDt: dt, Noise: src}, nil
	case HeunDeterministicType:
		return &HeunDeterministic{StepDt: dt}, nil
	case HeunStochasticType:
		return &HeunStochastic{StepDt: dt, Noise: src}, nil
	case RungeKutta4Type:
		return &RungeKutta4{StepDt: dt}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, mt)
}

// FromName constructs an integrator by registry name, rejecting unknown
// names with ErrUnknownVariant.
func FromName(name string, dt float32, src noise.Source) (Integrator, error) {
	for _, mt := range KnownMethods() {
		in, err := New(mt, dt, src)
		if err != nil {
			if errors.Is(err, ErrNoiseRequired) {
				// name may still match another variant
				continue
			}
			return nil, err
		}
		if in.Name() == name {
			return in, nil
		}
	}
	// distinguish a known name with wrong noise pairing from a bogus name
	for _, mt := range KnownMethods() {
		in, err := New(mt, dt, noiseFor(mt, src))
		if err == nil && in.Name() == name {
			return nil, fmt.Errorf("%w: %s", ErrNoiseRequired, name)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// noiseFor returns a source pairing that satisfies mt, used only to
// probe names in FromName.
func noiseFor(mt MethodType, src noise.Source) noise.Source {
	if !mt.Stochastic() {
		return nil
	}
	if src != nil {
		return src
	}
	return noise.NewAdditive(0, 0)
}
