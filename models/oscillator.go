// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package models

// Generic2dOscillator is the generic two-dimensional plane oscillator:
// a fast variable V with cubic nonlinearity and a slow recovery
// variable W. With default parameters it sits near a stable limit
// cycle, which makes it the standard smoke-test dynamic.
type Generic2dOscillator struct {
	Tau   float32 `def:"1" desc:"temporal scale separation between V and W"`
	I     float32 `def:"0" desc:"baseline external input to V"`
	A     float32 `def:"-2" desc:"vertical shift of the W nullcline"`
	B     float32 `def:"-10" desc:"linear slope of the W nullcline"`
	C     float32 `def:"0" desc:"parabolic term of the W nullcline"`
	D     float32 `def:"0.02" desc:"overall temporal rescaling"`
	E     float32 `def:"3" desc:"quadratic coefficient of the V cubic"`
	F     float32 `def:"1" desc:"cubic coefficient of the V cubic"`
	G     float32 `def:"0" desc:"linear coefficient of the V cubic"`
	Alpha float32 `def:"1" desc:"gain of the W feedback onto V"`
	Beta  float32 `def:"1" desc:"gain of the W self-decay"`
	Gamma float32 `def:"1" desc:"gain of input and coupling into V"`
}

func (m *Generic2dOscillator) Name() string     { return "Generic2dOscillator" }
func (m *Generic2dOscillator) NVars() int       { return 2 }
func (m *Generic2dOscillator) CouplingVar() int { return 0 }

func (m *Generic2dOscillator) Defaults() {
	m.Tau = 1
	m.I = 0
	m.A = -2
	m.B = -10
	m.C = 0
	m.D = 0.02
	m.E = 3
	m.F = 1
	m.G = 0
	m.Alpha = 1
	m.Beta = 1
	m.Gamma = 1
}

func (m *Generic2dOscillator) StateRange(v int) (lo, hi float32) {
	if v == 0 {
		return -2, 1
	}
	return -6, 6
}

func (m *Generic2dOscillator) Dfun(state [][]float32, coupl []float32, deriv [][]float32) {
	vv, ww := state[0], state[1]
	dv, dw := deriv[0], deriv[1]
	for i := range vv {
		v, w := vv[i], ww[i]
		dv[i] = m.D * m.Tau * (m.Alpha*w - m.F*v*v*v + m.E*v*v + m.G*v + m.Gamma*m.I + m.Gamma*coupl[i])
		dw[i] = m.D * (m.A + m.B*v + m.C*v*v - m.Beta*w) / m.Tau
	}
}
