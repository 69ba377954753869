// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package models

// LinearModel is a single-variable linear model, dx = Gamma*x + c.
// With negative Gamma it decays toward the coupled input, which makes
// integrator behavior easy to verify analytically.
type LinearModel struct {
	Gamma float32 `def:"-10" desc:"feedback strength -- negative for a stable node"`
}

func (m *LinearModel) Name() string     { return "Linear" }
func (m *LinearModel) NVars() int       { return 1 }
func (m *LinearModel) CouplingVar() int { return 0 }

func (m *LinearModel) Defaults() {
	m.Gamma = -10
}

func (m *LinearModel) StateRange(v int) (lo, hi float32) {
	return -1, 1
}

func (m *LinearModel) Dfun(state [][]float32, coupl []float32, deriv [][]float32) {
	xx := state[0]
	for i := range xx {
		deriv[0][i] = m.Gamma*xx[i] + coupl[i]
	}
}
