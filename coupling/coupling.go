// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package coupling provides the long-range coupling functions that turn
delayed neighbor states into a per-node input term. All functions have
the pre/post form:

	c_i = Post( sum_j w_ij * Pre(x_i(t), x_j(t - tau_ij)) )

Pre is applied per edge inside the weighted sum, Post once per node
outside it. The delayed-state gather is owned by the simulator, which
holds the history buffer; Compute does the weighted reduction.
*/
package coupling

import (
	"errors"
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// ErrUnknownVariant is returned by FromName for an unrecognized
// coupling function name.
var ErrUnknownVariant = errors.New("coupling: unknown function")

// Function is the coupling function interface. Implementations are
// parameter structs; they hold no per-run state.
type Function interface {
	// Name returns the registry name of this coupling function.
	Name() string

	// Defaults sets default parameter values.
	Defaults()

	// Pre transforms one neighbor contribution inside the weighted sum.
	// xi is the receiving node's current state, xj the sending node's
	// state delayed by the edge's propagation time.
	Pre(xi, xj float32) float32

	// Post transforms the weighted sum into the final coupling term.
	Post(gx float32) float32
}

// Compute fills out with the coupled input per node: out[i] =
// Post(sum_j weights[i,j] * Pre(xCur[i], xDel[i*n+j])). xDel is the
// row-major (receiver, sender) matrix of delayed sender states, gathered
// by the caller at the delay-appropriate history offsets.
func Compute(fn Function, weights *etensor.Float32, xDel, xCur, out []float32) {
	n := len(out)
	for i := 0; i < n; i++ {
		var gx float32
		wrow := weights.Values[i*n : (i+1)*n]
		drow := xDel[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			if wrow[j] == 0 {
				continue
			}
			gx += wrow[j] * fn.Pre(xCur[i], drow[j])
		}
		out[i] = fn.Post(gx)
	}
}

// Linear coupling: Post = A*gx + B.
type Linear struct {
	A float32 `def:"0.00042" desc:"overall coupling strength multiplier"`
	B float32 `def:"0" desc:"constant offset added after scaling"`
}

func (cf *Linear) Name() string { return "Linear" }

func (cf *Linear) Defaults() {
	cf.A = 0.00042
	cf.B = 0
}

func (cf *Linear) Pre(xi, xj float32) float32 { return xj }
func (cf *Linear) Post(gx float32) float32    { return cf.A*gx + cf.B }

// Sigmoidal coupling: Post = CMin + (CMax-CMin) / (1 + exp(-A*(gx-Midpoint)/Sigma)).
type Sigmoidal struct {
	CMin     float32 `def:"-1" desc:"minimum of the sigmoid"`
	CMax     float32 `def:"1" desc:"maximum of the sigmoid"`
	Midpoint float32 `def:"0" desc:"sigmoid midpoint"`
	A        float32 `def:"1" desc:"gain of the sigmoid"`
	Sigma    float32 `def:"230" desc:"standard deviation of the sigmoid"`
}

func (cf *Sigmoidal) Name() string { return "Sigmoidal" }

func (cf *Sigmoidal) Defaults() {
	cf.CMin = -1
	cf.CMax = 1
	cf.Midpoint = 0
	cf.A = 1
	cf.Sigma = 230
}

func (cf *Sigmoidal) Pre(xi, xj float32) float32 { return xj }

func (cf *Sigmoidal) Post(gx float32) float32 {
	return cf.CMin + (cf.CMax-cf.CMin)/(1+mat32.Exp(-cf.A*(gx-cf.Midpoint)/cf.Sigma))
}

// Difference coupling: Pre = xj - xi, Post = A*gx.
type Difference struct {
	A float32 `def:"0.1" desc:"coupling strength multiplier"`
}

func (cf *Difference) Name() string { return "Difference" }

func (cf *Difference) Defaults() {
	cf.A = 0.1
}

func (cf *Difference) Pre(xi, xj float32) float32 { return xj - xi }
func (cf *Difference) Post(gx float32) float32    { return cf.A * gx }

//////////////////////////////////////////////////////////////////////
// Enums

// FuncType is the closed enumeration of coupling function variants.
type FuncType int

//go:generate stringer -type=FuncType

var KiT_FuncType = kit.Enums.AddEnum(FuncTypeN, false, nil)

func (ev FuncType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *FuncType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// LinearFunc scales the weighted sum of delayed neighbor states.
	LinearFunc FuncType = iota

	// SigmoidalFunc passes the weighted sum through a bounded sigmoid.
	SigmoidalFunc

	// DifferenceFunc couples through state differences (xj - xi).
	DifferenceFunc

	FuncTypeN
)

// New returns a coupling function of the given type with defaults set.
func New(ft FuncType) Function {
	var fn Function
	switch ft {
	case LinearFunc:
		fn = &Linear{}
	case SigmoidalFunc:
		fn = &Sigmoidal{}
	case DifferenceFunc:
		fn = &Difference{}
	default:
		return nil
	}
	fn.Defaults()
	return fn
}

// KnownFuncs lists all coupling function variants.
func KnownFuncs() []FuncType {
	return []FuncType{LinearFunc, SigmoidalFunc, DifferenceFunc}
}

// FromName constructs a coupling function by registry name.
func FromName(name string) (Function, error) {
	for _, ft := range KnownFuncs() {
		fn := New(ft)
		if fn.Name() == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}
