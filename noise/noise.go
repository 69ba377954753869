// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package noise provides the stochastic perturbation sources consumed by
the stochastic integration schemes. Draws are strictly sequential in
(variable, node) order from a private seeded stream, so a run is
reproducible given its seed regardless of how the buffers are consumed.
*/
package noise

import (
	"github.com/emer/emergent/v2/erand"
	"github.com/goki/mat32"
)

// Source generates one perturbation per node per state variable per
// integration step.
type Source interface {
	// Name returns the registry name of this noise source.
	Name() string

	// Fill overwrites buf ([nvar][nnode]) with scaled noise draws for
	// one step of size dt.
	Fill(dt float32, buf [][]float32)

	// Reset reseeds the private stream, restarting the draw sequence.
	Reset(seed int64)
}

// Additive is state-independent noise: each draw is
// sqrt(2*NSig*dt) * g, with g from Dist (Gaussian by default).
type Additive struct {
	NSig float32         `def:"0.000488" desc:"noise strength (variance scale) per state variable"`
	Dist erand.RndParams `view:"inline" desc:"distribution of the raw draws"`
	Seed int64           `desc:"seed for the private random stream"`

	rnd *erand.SysRand
}

// NewAdditive returns an additive Gaussian noise source with strength
// nsig and its own stream seeded with seed.
func NewAdditive(nsig float32, seed int64) *Additive {
	an := &Additive{NSig: nsig, Seed: seed}
	an.Defaults()
	an.Reset(seed)
	return an
}

func (an *Additive) Name() string { return "Additive" }

func (an *Additive) Defaults() {
	an.Dist.Mean = 0
	an.Dist.Var = 1
	an.Dist.Dist = erand.Gaussian
}

func (an *Additive) Reset(seed int64) {
	an.Seed = seed
	an.rnd = erand.NewSysRand(seed)
}

func (an *Additive) Fill(dt float32, buf [][]float32) {
	scale := mat32.Sqrt(2 * an.NSig * dt)
	for v := range buf {
		row := buf[v]
		for i := range row {
			row[i] = scale * float32(an.Dist.Gen(-1, an.rnd))
		}
	}
}

// Multiplicative is state-dependent noise: the additive scale is
// further multiplied by |state| per node, so quiescent nodes receive
// little perturbation. Through the plain Source path (no state
// available) it degrades to additive behavior.
type Multiplicative struct {
	Additive
}

// NewMultiplicative returns a multiplicative Gaussian noise source.
func NewMultiplicative(nsig float32, seed int64) *Multiplicative {
	mn := &Multiplicative{}
	mn.NSig = nsig
	mn.Defaults()
	mn.Reset(seed)
	return mn
}

func (mn *Multiplicative) Name() string { return "Multiplicative" }

// FillScaled overwrites buf with draws scaled by the matching state entry.
func (mn *Multiplicative) FillScaled(dt float32, state, buf [][]float32) {
	mn.Fill(dt, buf)
	for v := range buf {
		row, src := buf[v], state[v]
		for i := range row {
			row[i] *= mat32.Abs(src[i])
		}
	}
}
