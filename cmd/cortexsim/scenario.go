// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cortexsim/cortexsim/connectivity"
	"github.com/cortexsim/cortexsim/cortex"
	"github.com/cortexsim/cortexsim/coupling"
	"github.com/cortexsim/cortexsim/integrators"
	"github.com/cortexsim/cortexsim/models"
	"github.com/cortexsim/cortexsim/monitors"
	"github.com/cortexsim/cortexsim/noise"
	"github.com/cortexsim/cortexsim/simulator"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MonitorSpec selects one monitor in a scenario.
type MonitorSpec struct {
	Kind      string  `yaml:"kind" validate:"required,oneof=Raw SubSample GlobalAverage TemporalAverage EEG MEG"`
	Period    float32 `yaml:"period" validate:"gte=0"`
	Reference string  `yaml:"reference,omitempty"`
}

// Scenario is the yaml description of one simulation run.
type Scenario struct {
	Model        string        `yaml:"model" validate:"required"`
	Method       string        `yaml:"method" validate:"required"`
	Coupling     string        `yaml:"coupling" validate:"required"`
	Connectivity string        `yaml:"connectivity,omitempty"`
	Dt           float32       `yaml:"dt" validate:"gt=0"`
	Length       float32       `yaml:"length" validate:"gt=0"`
	Speed        float32       `yaml:"speed,omitempty" validate:"gte=0"`
	NSig         float32       `yaml:"nsig,omitempty" validate:"gte=0"`
	Seed         int64         `yaml:"seed,omitempty"`
	Surface      bool          `yaml:"surface,omitempty"`
	Monitors     []MonitorSpec `yaml:"monitors" validate:"required,min=1,dive"`
}

// LoadScenario reads and validates a scenario yaml file.
func LoadScenario(fnm string) (*Scenario, error) {
	b, err := os.ReadFile(fnm)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{}
	if err := yaml.Unmarshal(b, sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", fnm, err)
	}
	if err := validator.New().Struct(sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", fnm, err)
	}
	return sc, nil
}

// Build assembles an unconfigured Simulation from the scenario.
func (sc *Scenario) Build(log *slog.Logger) (*simulator.Simulation, error) {
	conn, err := connectivity.FromName(sc.Connectivity)
	if err != nil {
		return nil, err
	}
	if sc.Speed > 0 {
		conn.Speed = sc.Speed
	}
	mdl, err := models.FromName(sc.Model)
	if err != nil {
		return nil, err
	}
	cpl, err := coupling.FromName(sc.Coupling)
	if err != nil {
		return nil, err
	}
	nsig := sc.NSig
	if nsig == 0 {
		nsig = 0.000488 // 2^-11
	}
	var src noise.Source
	if isStochastic(sc.Method) {
		src = noise.NewAdditive(nsig, sc.Seed)
	}
	intg, err := integrators.FromName(sc.Method, sc.Dt, src)
	if err != nil {
		return nil, err
	}

	sim := &simulator.Simulation{
		Connectivity: conn,
		Model:        mdl,
		Coupling:     cpl,
		Integrator:   intg,
		InitSeed:     sc.Seed,
		Log:          log,
	}
	if sc.Surface {
		cx, err := cortex.Default(conn)
		if err != nil {
			return nil, err
		}
		sim.Surface = cx
	}
	for _, ms := range sc.Monitors {
		mon, err := buildMonitor(ms, sc.Dt)
		if err != nil {
			return nil, err
		}
		sim.Monitors = append(sim.Monitors, mon)
	}
	return sim, nil
}

func buildMonitor(ms MonitorSpec, dt float32) (monitors.Monitor, error) {
	period := ms.Period
	if period == 0 {
		period = dt
	}
	switch ms.Kind {
	case "Raw":
		return monitors.NewRaw(), nil
	case "SubSample":
		return monitors.NewSubSample(period), nil
	case "GlobalAverage":
		return monitors.NewGlobalAverage(period), nil
	case "TemporalAverage":
		return monitors.NewTemporalAverage(period), nil
	case "EEG":
		eeg := monitors.NewEEG(period)
		if ms.Reference != "" {
			if err := eeg.SetReference(ms.Reference); err != nil {
				return nil, err
			}
		}
		return eeg, nil
	case "MEG":
		return monitors.NewMEG(period), nil
	}
	return nil, fmt.Errorf("unknown monitor kind %q", ms.Kind)
}

// isStochastic reports whether a method name belongs to a stochastic
// scheme, mirroring the integrator registry.
func isStochastic(name string) bool {
	for _, mt := range integrators.KnownMethods() {
		if !mt.Stochastic() {
			continue
		}
		in, err := integrators.New(mt, 1, noise.NewAdditive(0, 0))
		if err == nil && in.Name() == name {
			return true
		}
	}
	return false
}

// noiseFor pairs a method type with the noise source it requires, used
// by the list command to instantiate every variant.
func noiseFor(mt integrators.MethodType) noise.Source {
	if mt.Stochastic() {
		return noise.NewAdditive(0.000488, 42)
	}
	return nil
}
