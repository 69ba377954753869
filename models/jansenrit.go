// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package models

import "github.com/goki/mat32"

// JansenRit is the 6-variable cortical column model: three second-order
// subsystems for the pyramidal (Y0/Y3), excitatory feedback (Y1/Y4) and
// inhibitory feedback (Y2/Y5) populations, linked through a sigmoid
// potential-to-rate function. The observable of interest is Y1 - Y2,
// the net postsynaptic potential of the pyramidal population.
type JansenRit struct {
	A     float32 `def:"3.25" desc:"maximum amplitude of the excitatory PSP, mV"`
	B     float32 `def:"22" desc:"maximum amplitude of the inhibitory PSP, mV"`
	Ke    float32 `def:"0.1" desc:"inverse excitatory time constant, 1/ms"`
	Ki    float32 `def:"0.05" desc:"inverse inhibitory time constant, 1/ms"`
	V0    float32 `def:"5.52" desc:"firing threshold potential, mV"`
	NuMax float32 `def:"0.0025" desc:"half of the maximum firing rate, 1/ms"`
	R     float32 `def:"0.56" desc:"steepness of the sigmoid, 1/mV"`
	J     float32 `def:"135" desc:"average number of synapses between populations"`
	A1    float32 `def:"1" desc:"connectivity fraction: pyramidal to excitatory"`
	A2    float32 `def:"0.8" desc:"connectivity fraction: excitatory to pyramidal"`
	A3    float32 `def:"0.25" desc:"connectivity fraction: pyramidal to inhibitory"`
	A4    float32 `def:"0.25" desc:"connectivity fraction: inhibitory to pyramidal"`
	Mu    float32 `def:"0.22" desc:"mean external input, 1/ms"`
}

func (m *JansenRit) Name() string     { return "JansenRit" }
func (m *JansenRit) NVars() int       { return 6 }
func (m *JansenRit) CouplingVar() int { return 1 }

func (m *JansenRit) Defaults() {
	m.A = 3.25
	m.B = 22
	m.Ke = 0.1
	m.Ki = 0.05
	m.V0 = 5.52
	m.NuMax = 0.0025
	m.R = 0.56
	m.J = 135
	m.A1 = 1
	m.A2 = 0.8
	m.A3 = 0.25
	m.A4 = 0.25
	m.Mu = 0.22
}

func (m *JansenRit) StateRange(v int) (lo, hi float32) {
	switch v {
	case 1, 2:
		return 0, 10
	}
	return -1, 1
}

// rate is the potential-to-rate sigmoid.
func (m *JansenRit) rate(v float32) float32 {
	return 2 * m.NuMax / (1 + mat32.Exp(m.R*(m.V0-v)))
}

func (m *JansenRit) Dfun(state [][]float32, coupl []float32, deriv [][]float32) {
	y0, y1, y2 := state[0], state[1], state[2]
	y3, y4, y5 := state[3], state[4], state[5]
	for i := range y0 {
		src := m.rate(y1[i] - y2[i])
		deriv[0][i] = y3[i]
		deriv[3][i] = m.A*m.Ke*src - 2*m.Ke*y3[i] - m.Ke*m.Ke*y0[i]
		deriv[1][i] = y4[i]
		deriv[4][i] = m.A*m.Ke*(m.Mu+m.A2*m.J*m.rate(m.A1*m.J*y0[i])+coupl[i]) -
			2*m.Ke*y4[i] - m.Ke*m.Ke*y1[i]
		deriv[2][i] = y5[i]
		deriv[5][i] = m.B*m.Ki*m.A4*m.J*m.rate(m.A3*m.J*y0[i]) - 2*m.Ki*y5[i] - m.Ki*m.Ki*y2[i]
	}
}
