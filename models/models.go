// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package models provides the local dynamics of each node: neural mass
models expressed as parameter structs with a Dfun derivative method.
State is [nvar][nnode]float32; Dfun writes derivatives into a
caller-owned buffer and allocates nothing, so integrators can call it
several times per step.

The set of models is a closed enumeration (ModelType): construction goes
through an explicit dispatch table, never reflection, and KnownModels
enumerates every variant for exhaustive combinatorial testing.
*/
package models

import (
	"errors"
	"fmt"

	"github.com/emer/emergent/v2/erand"
	"github.com/goki/ki/kit"
)

// ErrUnknownVariant is returned by FromName for an unrecognized model name.
var ErrUnknownVariant = errors.New("models: unknown model")

// Model is the local dynamics interface. Implementations are pure
// parameter structs: Dfun reads only the parameters and its arguments,
// and holds no per-run state.
type Model interface {
	// Name returns the registry name of this model.
	Name() string

	// NVars returns the number of state variables per node.
	NVars() int

	// CouplingVar returns the index of the state variable that feeds
	// long-range and local coupling.
	CouplingVar() int

	// Defaults sets the standard parameter values.
	Defaults()

	// StateRange returns the plausible initial range for state variable v.
	StateRange(v int) (lo, hi float32)

	// Dfun computes the temporal derivative of state into deriv, given
	// the per-node coupling term coupl. state and deriv are
	// [NVars][nnode]; coupl is [nnode].
	Dfun(state [][]float32, coupl []float32, deriv [][]float32)
}

// InitialState returns a fresh [NVars][nnode] state drawn uniformly
// within each variable's StateRange. Draws are strictly sequential in
// (var, node) order, so the result is reproducible given the rnd seed.
func InitialState(m Model, nnodes int, rnd erand.Rand) [][]float32 {
	state := make([][]float32, m.NVars())
	for v := range state {
		lo, hi := m.StateRange(v)
		row := make([]float32, nnodes)
		for i := range row {
			row[i] = lo + (hi-lo)*rnd.Float32(-1)
		}
		state[v] = row
	}
	return state
}

//////////////////////////////////////////////////////////////////////
// Enums

// ModelType is the closed enumeration of neural mass model variants.
type ModelType int

//go:generate stringer -type=ModelType

var KiT_ModelType = kit.Enums.AddEnum(ModelTypeN, false, nil)

func (ev ModelType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ModelType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Generic2dOscillatorType is the generic plane oscillator, the default model.
	Generic2dOscillatorType ModelType = iota

	// EpileptorType is the 6-variable epileptic seizure model.
	EpileptorType

	// WilsonCowanType is the 2-population excitatory/inhibitory mass model.
	WilsonCowanType

	// JansenRitType is the 6-variable cortical column model.
	JansenRitType

	// LinearModelType is a 1-variable linear decay model, mostly for testing.
	LinearModelType

	ModelTypeN
)

// New constructs a model of the given type with default parameters.
func New(mt ModelType) Model {
	var m Model
	switch mt {
	case Generic2dOscillatorType:
		m = &Generic2dOscillator{}
	case EpileptorType:
		m = &Epileptor{}
	case WilsonCowanType:
		m = &WilsonCowan{}
	case JansenRitType:
		m = &JansenRit{}
	case LinearModelType:
		m = &LinearModel{}
	default:
		return nil
	}
	m.Defaults()
	return m
}

// KnownModels lists every model variant, for exhaustive testing.
func KnownModels() []ModelType {
	return []ModelType{Generic2dOscillatorType, EpileptorType, WilsonCowanType, JansenRitType, LinearModelType}
}

// FromName constructs a model by registry name.
func FromName(name string) (Model, error) {
	for _, mt := range KnownModels() {
		m := New(mt)
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}
