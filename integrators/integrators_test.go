// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package integrators

import (
	"errors"
	"testing"

	"github.com/cortexsim/cortexsim/noise"
	"github.com/goki/mat32"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const difTol = 1.0e-6

func CmprFloats(got, trg []float32, msg string, t *testing.T) {
	t.Helper()
	for i := range got {
		dif := mat32.Abs(got[i] - trg[i])
		if dif > difTol { // allow for small numerical diffs
			t.Errorf("%v err: got: %v, trg: %v, dif: %v\n", msg, got[i], trg[i], dif)
		}
	}
}

// decay is dx = -x, with exact solution x0 * exp(-t).
func decay(state [][]float32, coupl []float32, deriv [][]float32) {
	for i := range state[0] {
		deriv[0][i] = -state[0][i]
	}
}

func stepOnce(t *testing.T, in Integrator, x0 float32) float32 {
	t.Helper()
	state := [][]float32{{x0}}
	next := [][]float32{{0}}
	in.Step(0, state, decay, []float32{0}, next)
	return next[0][0]
}

func TestDeterministicSchemes(t *testing.T) {
	dt := float32(0.1)
	euler, err := New(EulerDeterministicType, dt, nil)
	if err != nil {
		t.Fatal(err)
	}
	heun, err := New(HeunDeterministicType, dt, nil)
	if err != nil {
		t.Fatal(err)
	}
	rk4, err := New(RungeKutta4Type, dt, nil)
	if err != nil {
		t.Fatal(err)
	}

	// hand-computed one-step values for dx = -x, x0 = 1, dt = 0.1
	CmprFloats([]float32{stepOnce(t, euler, 1)}, []float32{0.9}, "euler one step", t)
	CmprFloats([]float32{stepOnce(t, heun, 1)}, []float32{0.905}, "heun one step", t)
	CmprFloats([]float32{stepOnce(t, rk4, 1)}, []float32{0.90483745}, "rk4 one step", t)

	// order check: rk4 closest to exp(-0.1), then heun, then euler
	exact := mat32.Exp(-0.1)
	de := mat32.Abs(stepOnce(t, euler, 1) - exact)
	dh := mat32.Abs(stepOnce(t, heun, 1) - exact)
	dr := mat32.Abs(stepOnce(t, rk4, 1) - exact)
	if !(dr < dh && dh < de) {
		t.Errorf("accuracy ordering violated: rk4 %v, heun %v, euler %v", dr, dh, de)
	}
}

func TestDeterministicBitReproducible(t *testing.T) {
	for _, mt := range []MethodType{EulerDeterministicType, HeunDeterministicType, RungeKutta4Type} {
		in, err := New(mt, 0.125, nil)
		if err != nil {
			t.Fatal(err)
		}
		a := stepOnce(t, in, 0.7)
		b := stepOnce(t, in, 0.7)
		if a != b {
			t.Errorf("%v not bit-reproducible: %v vs %v", mt, a, b)
		}
	}
}

func TestHeunPredictorCorrector(t *testing.T) {
	// for dx = -x the heun result must equal x*(1 - dt + dt^2/2) exactly
	dt := float32(0.125)
	heun, _ := New(HeunDeterministicType, dt, nil)
	x0 := float32(0.8)
	want := x0 * (1 - dt + dt*dt/2)
	CmprFloats([]float32{stepOnce(t, heun, x0)}, []float32{want}, "heun trapezoid", t)
}

func runStochastic(name string, seed int64, nsig float32, x0 []float32, nsteps int) []float32 {
	src := noise.NewAdditive(nsig, seed)
	in, err := FromName(name, 0.125, src)
	if err != nil {
		panic(err)
	}
	state := [][]float32{append([]float32(nil), x0...)}
	next := [][]float32{make([]float32, len(x0))}
	coupl := make([]float32, len(x0))
	for k := 0; k < nsteps; k++ {
		in.Step(float32(k)*in.Dt(), state, decay, coupl, next)
		state, next = next, state
	}
	return state[0]
}

func TestStochasticSeedReproducible(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("same seed reproduces identical trajectories", prop.ForAll(
		func(seed int64, nsteps int) bool {
			x0 := []float32{1, -0.5, 0.25}
			for _, name := range []string{"EulerStochastic", "HeunStochastic"} {
				a := runStochastic(name, seed, 1e-4, x0, nsteps)
				b := runStochastic(name, seed, 1e-4, x0, nsteps)
				for i := range a {
					if a[i] != b[i] {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 64),
	))

	properties.Property("different seeds diverge", prop.ForAll(
		func(seed int64) bool {
			x0 := []float32{1, -0.5, 0.25}
			a := runStochastic("HeunStochastic", seed, 1e-2, x0, 8)
			b := runStochastic("HeunStochastic", seed+1, 1e-2, x0, 8)
			for i := range a {
				if a[i] != b[i] {
					return true
				}
			}
			return false
		},
		gen.Int64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}

func TestRegistry(t *testing.T) {
	if len(KnownMethods()) != int(MethodTypeN) {
		t.Errorf("KnownMethods incomplete: %d of %d", len(KnownMethods()), int(MethodTypeN))
	}
	names := map[string]bool{}
	for _, mt := range KnownMethods() {
		var src noise.Source
		if mt.Stochastic() {
			src = noise.NewAdditive(1e-4, 1)
		}
		in, err := New(mt, 0.125, src)
		if err != nil {
			t.Fatalf("New(%v): %v", mt, err)
		}
		if names[in.Name()] {
			t.Errorf("duplicate method name %q", in.Name())
		}
		names[in.Name()] = true

		rt, err := FromName(in.Name(), 0.125, src)
		if err != nil {
			t.Fatalf("FromName(%q): %v", in.Name(), err)
		}
		if rt.Name() != in.Name() {
			t.Errorf("FromName roundtrip: %q != %q", rt.Name(), in.Name())
		}
	}
}

func TestRegistryErrors(t *testing.T) {
	if _, err := FromName("BackwardEuler", 0.125, nil); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("unknown name: got %v, want ErrUnknownVariant", err)
	}
	if _, err := FromName("HeunStochastic", 0.125, nil); !errors.Is(err, ErrNoiseRequired) {
		t.Errorf("stochastic without noise: got %v, want ErrNoiseRequired", err)
	}
	if _, err := New(HeunDeterministicType, 0.125, noise.NewAdditive(1e-4, 1)); !errors.Is(err, ErrNoiseRequired) {
		t.Errorf("deterministic with noise: got %v, want ErrNoiseRequired", err)
	}
	if _, err := New(HeunDeterministicType, 0, nil); !errors.Is(err, ErrInvalidDt) {
		t.Errorf("zero dt: got %v, want ErrInvalidDt", err)
	}
}
