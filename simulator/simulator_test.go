// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tests all combinations of available models and integration schemes,
// for region and surface based simulations, with the full monitor set.

package simulator

import (
	"errors"
	"testing"

	"github.com/cortexsim/cortexsim/connectivity"
	"github.com/cortexsim/cortexsim/cortex"
	"github.com/cortexsim/cortexsim/coupling"
	"github.com/cortexsim/cortexsim/integrators"
	"github.com/cortexsim/cortexsim/models"
	"github.com/cortexsim/cortexsim/monitors"
	"github.com/cortexsim/cortexsim/noise"
	"github.com/goki/mat32"
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

// testMonitors builds the standard 7-monitor set: Raw, GlobalAverage,
// SubSample, TemporalAverage, EEG, EEG with a reference electrode, MEG.
func testMonitors(t *testing.T) []monitors.Monitor {
	t.Helper()
	period := float32(0.25)
	eeg2 := monitors.NewEEG(period)
	if err := eeg2.SetReference("eeg_002"); err != nil {
		t.Fatal(err)
	}
	return []monitors.Monitor{
		monitors.NewRaw(),
		monitors.NewGlobalAverage(period),
		monitors.NewSubSample(period),
		monitors.NewTemporalAverage(period),
		monitors.NewEEG(period),
		eeg2,
		monitors.NewMEG(period),
	}
}

// configureSim assembles and configures a simulation the way the
// default harness does: dt 0.125, speed 4, linear coupling 0.00042,
// additive noise 2^-11 for stochastic schemes.
func configureSim(t *testing.T, mt models.ModelType, method integrators.MethodType, surface, defaultConn bool) *Simulation {
	t.Helper()
	name := connectivity.Default76
	if !defaultConn {
		name = connectivity.Default192
	}
	conn, err := connectivity.FromName(name)
	if err != nil {
		t.Fatal(err)
	}
	conn.Speed = 4

	var src noise.Source
	if method.Stochastic() {
		src = noise.NewAdditive(0.000488, 42) // 2^-11
	}
	intg, err := integrators.New(method, 0.125, src)
	if err != nil {
		t.Fatal(err)
	}

	sim := &Simulation{
		Connectivity: conn,
		Model:        models.New(mt),
		Coupling:     coupling.New(coupling.LinearFunc),
		Integrator:   intg,
		Monitors:     testMonitors(t),
		InitSeed:     42,
	}
	if surface {
		cx, err := cortex.Default(conn)
		if err != nil {
			t.Fatal(err)
		}
		sim.Surface = cx
	}
	if err := sim.Configure(); err != nil {
		t.Fatalf("configure %v/%v: %v", mt, method, err)
	}
	return sim
}

// runSim drives a run to completion, collecting one stream per monitor.
func runSim(t *testing.T, sim *Simulation, length float32) [][]monitors.Sample {
	t.Helper()
	streams := make([][]monitors.Sample, len(sim.Monitors))
	it := sim.Run(length)
	for it.Next() {
		for i, smp := range it.Values() {
			if smp != nil {
				streams[i] = append(streams[i], *smp)
			}
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("run aborted: %v", err)
	}
	return streams
}

func TestSimulatorRegion(t *testing.T) {
	for _, mt := range models.KnownModels() {
		for _, method := range integrators.KnownMethods() {
			sim := configureSim(t, mt, method, false, true)
			streams := runSim(t, sim, 4)

			if len(streams) != len(sim.Monitors) {
				t.Fatalf("%v/%v: %d streams for %d monitors", mt, method, len(streams), len(sim.Monitors))
			}
			for i, ts := range streams {
				if len(ts) == 0 {
					t.Errorf("%v/%v: monitor %s produced no samples", mt, method, sim.Monitors[i].Name())
				}
			}
		}
	}
}

func TestMonitorEmissionCounts(t *testing.T) {
	sim := configureSim(t, models.Generic2dOscillatorType, integrators.HeunDeterministicType, false, true)
	streams := runSim(t, sim, 4)

	// raw emits every step, periodic monitors emit floor(L / period)
	wants := []int{32, 16, 16, 16, 16, 16, 16}
	for i, want := range wants {
		if len(streams[i]) != want {
			t.Errorf("monitor %s: %d samples, want %d", sim.Monitors[i].Name(), len(streams[i]), want)
		}
	}

	// per-step dimensionality follows monitor kind
	nn := sim.Connectivity.NRegions
	nv := sim.Model.NVars()
	dims := []int{nv * nn, nv, nn, nv * nn, 65, 65, 151}
	for i, want := range dims {
		if len(streams[i][0].Data) != want {
			t.Errorf("monitor %s: sample width %d, want %d", sim.Monitors[i].Name(), len(streams[i][0].Data), want)
		}
	}

	// streams are strictly time-ordered
	for i, ts := range streams {
		for k := 1; k < len(ts); k++ {
			if ts[k].Time <= ts[k-1].Time {
				t.Errorf("monitor %s: timestamps not increasing at %d", sim.Monitors[i].Name(), k)
			}
		}
	}
}

func TestSimulatorSurface(t *testing.T) {
	var counts []int
	for _, defaultConn := range []bool{true, false} {
		sim := configureSim(t, models.Generic2dOscillatorType, integrators.HeunDeterministicType, true, defaultConn)
		streams := runSim(t, sim, 2)

		if len(streams) != len(sim.Monitors) {
			t.Fatalf("defaultConn=%v: %d streams for %d monitors", defaultConn, len(streams), len(sim.Monitors))
		}
		for i, ts := range streams {
			if len(ts) == 0 {
				t.Errorf("defaultConn=%v: monitor %s produced no samples", defaultConn, sim.Monitors[i].Name())
			}
		}
		counts = append(counts, len(streams))

		// raw sample width tracks the vertex count, not the region count
		nv := sim.Model.NVars()
		if want := nv * sim.Surface.Mesh.NVertices(); len(streams[0][0].Data) != want {
			t.Errorf("defaultConn=%v: raw width %d, want %d", defaultConn, len(streams[0][0].Data), want)
		}
	}
	if counts[0] != counts[1] {
		t.Errorf("stream count changed across geometries: %d vs %d", counts[0], counts[1])
	}
}

func TestStochasticReproducible(t *testing.T) {
	run := func() [][]monitors.Sample {
		sim := configureSim(t, models.EpileptorType, integrators.HeunStochasticType, false, true)
		return runSim(t, sim, 4)
	}
	a := run()
	b := run()
	for i := range a {
		if len(a[i]) != len(b[i]) {
			t.Fatalf("monitor %d: sample counts differ", i)
		}
		for k := range a[i] {
			for j := range a[i][k].Data {
				if a[i][k].Data[j] != b[i][k].Data[j] {
					t.Fatalf("monitor %d sample %d differs at %d: %v vs %v",
						i, k, j, a[i][k].Data[j], b[i][k].Data[j])
				}
			}
		}
	}
}

func TestRunContinuation(t *testing.T) {
	sim := configureSim(t, models.Generic2dOscillatorType, integrators.HeunDeterministicType, false, true)
	first := runSim(t, sim, 2)
	second := runSim(t, sim, 2)

	if len(first[0]) != 16 || len(second[0]) != 16 {
		t.Fatalf("raw counts: %d then %d, want 16 each", len(first[0]), len(second[0]))
	}
	lastT := first[0][len(first[0])-1].Time
	if second[0][0].Time <= lastT {
		t.Errorf("continuation did not advance time: %v then %v", lastT, second[0][0].Time)
	}

	// a fresh simulation over the combined length matches the two-part run
	whole := configureSim(t, models.Generic2dOscillatorType, integrators.HeunDeterministicType, false, true)
	all := runSim(t, whole, 4)
	CmprFloats(second[0][15].Data[:8], all[0][31].Data[:8], "split vs whole run", t)
}

func TestConfigureErrors(t *testing.T) {
	sim := configureSim(t, models.Generic2dOscillatorType, integrators.HeunDeterministicType, false, true)

	sim.Model = nil
	if err := sim.Configure(); !errors.Is(err, ErrMissingComponent) {
		t.Errorf("missing model: got %v, want ErrMissingComponent", err)
	}
	sim.Model = models.New(models.Generic2dOscillatorType)

	sim.Monitors = append(sim.Monitors, monitors.NewSubSample(0.3))
	if err := sim.Configure(); !errors.Is(err, monitors.ErrInvalidPeriod) {
		t.Errorf("bad period: got %v, want ErrInvalidPeriod", err)
	}
	sim.Monitors = sim.Monitors[:len(sim.Monitors)-1]

	// surface geometry built for a different connectome is rejected
	conn192, err := connectivity.FromName(connectivity.Default192)
	if err != nil {
		t.Fatal(err)
	}
	cx76, err := cortex.Default(sim.Connectivity)
	if err != nil {
		t.Fatal(err)
	}
	sim.Surface = cx76
	sim.Connectivity = conn192
	if err := sim.Configure(); !errors.Is(err, cortex.ErrGeometryMismatch) {
		t.Errorf("geometry mismatch: got %v, want ErrGeometryMismatch", err)
	}
}

func TestRunBeforeConfigure(t *testing.T) {
	sim := &Simulation{}
	it := sim.Run(4)
	if it.Next() {
		t.Error("Next succeeded on unconfigured simulation")
	}
	if !errors.Is(it.Err(), ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", it.Err())
	}
}
