// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package models

// Epileptor is the 6-variable phenomenological seizure model: a fast
// oscillatory population (X1, Y1), a slow permittivity variable Z
// governing seizure onset and offset, a second spike-and-wave
// population (X2, Y2), and a low-pass filter G linking the two.
type Epileptor struct {
	A     float32 `def:"1" desc:"cubic coefficient of the first population"`
	B     float32 `def:"3" desc:"quadratic coefficient of the first population"`
	C     float32 `def:"1" desc:"offset of Y1 restoration"`
	D     float32 `def:"5" desc:"quadratic gain of Y1 restoration"`
	R     float32 `def:"0.00035" desc:"inverse time scale of the permittivity variable Z"`
	S     float32 `def:"4" desc:"gain of X1 onto Z"`
	X0    float32 `def:"-1.6" desc:"epileptogenicity parameter -- excitability threshold"`
	IExt  float32 `def:"3.1" desc:"external input to the first population"`
	IExt2 float32 `def:"0.45" desc:"external input to the second population"`
	Slope float32 `def:"0" desc:"slope of the X1 nullcline above threshold"`
	Tau   float32 `def:"10" desc:"time constant of Y2"`
	Aa    float32 `def:"6" desc:"gain of X2 onto Y2 above threshold"`
	Kvf   float32 `def:"0" desc:"coupling gain into the fast population, via field"`
	Kf    float32 `def:"0" desc:"coupling gain into the second population"`
	Ks    float32 `def:"0" desc:"coupling gain into the permittivity variable"`
	Tt    float32 `def:"0.25" desc:"overall time rescaling -- default keeps the fast subsystem stable at the standard step size"`
}

func (m *Epileptor) Name() string     { return "Epileptor" }
func (m *Epileptor) NVars() int       { return 6 }
func (m *Epileptor) CouplingVar() int { return 0 }

func (m *Epileptor) Defaults() {
	m.A = 1
	m.B = 3
	m.C = 1
	m.D = 5
	m.R = 0.00035
	m.S = 4
	m.X0 = -1.6
	m.IExt = 3.1
	m.IExt2 = 0.45
	m.Slope = 0
	m.Tau = 10
	m.Aa = 6
	m.Kvf = 0
	m.Kf = 0
	m.Ks = 0
	m.Tt = 0.25
}

func (m *Epileptor) StateRange(v int) (lo, hi float32) {
	switch v {
	case 0:
		return -2, 1
	case 1:
		return -20, 2
	case 2:
		return 2, 5
	case 3:
		return -2, 0
	case 4:
		return 0, 2
	}
	return -1, 1
}

func (m *Epileptor) Dfun(state [][]float32, coupl []float32, deriv [][]float32) {
	x1, y1, z := state[0], state[1], state[2]
	x2, y2, g := state[3], state[4], state[5]
	for i := range x1 {
		c1 := coupl[i]

		var f1 float32
		if x1[i] < 0 {
			f1 = -m.A*x1[i]*x1[i] + m.B*x1[i]
		} else {
			dz := z[i] - 4
			f1 = m.Slope - x2[i] + 0.6*dz*dz
		}
		deriv[0][i] = m.Tt * (y1[i] - z[i] + m.IExt + m.Kvf*c1 + f1*x1[i])
		deriv[1][i] = m.Tt * (m.C - m.D*x1[i]*x1[i] - y1[i])

		var fz float32
		if z[i] < 0 {
			z2 := z[i] * z[i]
			fz = -0.1 * z2 * z2 * z2 * z[i]
		}
		deriv[2][i] = m.Tt * m.R * (4*(x1[i]-m.X0) - z[i] + fz + m.Ks*c1)

		deriv[3][i] = m.Tt * (-y2[i] + x2[i] - x2[i]*x2[i]*x2[i] + m.IExt2 + 2*g[i] - 0.3*(z[i]-3.5) + m.Kf*c1)

		var f2 float32
		if x2[i] >= -0.25 {
			f2 = m.Aa * (x2[i] + 0.25)
		}
		deriv[4][i] = m.Tt * (-y2[i] + f2) / m.Tau
		deriv[5][i] = m.Tt * (-0.01 * (g[i] - 0.1*x1[i]))
	}
}
