// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package models

import "github.com/goki/mat32"

// WilsonCowan is the classic two-population mass model: mean activity
// of an excitatory (E) and an inhibitory (I) population coupled through
// sigmoid response functions.
type WilsonCowan struct {
	CEE    float32 `def:"12" desc:"excitatory to excitatory coupling"`
	CEI    float32 `def:"4" desc:"inhibitory to excitatory coupling"`
	CIE    float32 `def:"13" desc:"excitatory to inhibitory coupling"`
	CII    float32 `def:"11" desc:"inhibitory to inhibitory coupling"`
	TauE   float32 `def:"10" desc:"excitatory population time constant"`
	TauI   float32 `def:"10" desc:"inhibitory population time constant"`
	AE     float32 `def:"1.2" desc:"slope of the excitatory sigmoid"`
	AI     float32 `def:"1" desc:"slope of the inhibitory sigmoid"`
	BE     float32 `def:"2.8" desc:"position of the excitatory sigmoid"`
	BI     float32 `def:"4" desc:"position of the inhibitory sigmoid"`
	CE     float32 `def:"1" desc:"amplitude of the excitatory sigmoid"`
	CI     float32 `def:"1" desc:"amplitude of the inhibitory sigmoid"`
	RE     float32 `def:"1" desc:"excitatory refractory factor"`
	RI     float32 `def:"1" desc:"inhibitory refractory factor"`
	KE     float32 `def:"1" desc:"maximum excitatory response"`
	KI     float32 `def:"1" desc:"maximum inhibitory response"`
	P      float32 `def:"0" desc:"external input to E"`
	Q      float32 `def:"0" desc:"external input to I"`
	AlphaE float32 `def:"1" desc:"gain of input into the excitatory sigmoid"`
	AlphaI float32 `def:"1" desc:"gain of input into the inhibitory sigmoid"`
	ThetaE float32 `def:"0" desc:"excitatory threshold"`
	ThetaI float32 `def:"0" desc:"inhibitory threshold"`
}

func (m *WilsonCowan) Name() string     { return "WilsonCowan" }
func (m *WilsonCowan) NVars() int       { return 2 }
func (m *WilsonCowan) CouplingVar() int { return 0 }

func (m *WilsonCowan) Defaults() {
	m.CEE = 12
	m.CEI = 4
	m.CIE = 13
	m.CII = 11
	m.TauE = 10
	m.TauI = 10
	m.AE = 1.2
	m.AI = 1
	m.BE = 2.8
	m.BI = 4
	m.CE = 1
	m.CI = 1
	m.RE = 1
	m.RI = 1
	m.KE = 1
	m.KI = 1
	m.P = 0
	m.Q = 0
	m.AlphaE = 1
	m.AlphaI = 1
	m.ThetaE = 0
	m.ThetaI = 0
}

func (m *WilsonCowan) StateRange(v int) (lo, hi float32) {
	return 0, 1
}

func sigm(x, c, a, b float32) float32 {
	return c / (1 + mat32.Exp(-a*(x-b)))
}

func (m *WilsonCowan) Dfun(state [][]float32, coupl []float32, deriv [][]float32) {
	ee, ii := state[0], state[1]
	for i := range ee {
		e, n := ee[i], ii[i]
		xe := m.AlphaE * (m.CEE*e - m.CEI*n + m.P - m.ThetaE + coupl[i])
		xi := m.AlphaI * (m.CIE*e - m.CII*n + m.Q - m.ThetaI)
		deriv[0][i] = (-e + (m.KE-m.RE*e)*sigm(xe, m.CE, m.AE, m.BE)) / m.TauE
		deriv[1][i] = (-n + (m.KI-m.RI*n)*sigm(xi, m.CI, m.AI, m.BI)) / m.TauI
	}
}
