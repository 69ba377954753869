// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitors

import (
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

// SensorSet is a fixed sensor geometry: labels and positions on (or
// above) the scalp. Sets are immutable once built.
type SensorSet struct {
	Labels    []string     `desc:"sensor labels, unique"`
	Positions []mat32.Vec3 `desc:"sensor positions"`
}

// Index returns the index of the sensor with the given label, or -1.
func (ss *SensorSet) Index(label string) int {
	for i, l := range ss.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// DefaultEEGSensors returns the default 65-channel EEG set, laid out
// deterministically on a sphere just outside the default connectome.
func DefaultEEGSensors() *SensorSet {
	return sphericalSensors("eeg", 65, 75)
}

// DefaultMEGSensors returns the default 151-channel MEG set.
func DefaultMEGSensors() *SensorSet {
	return sphericalSensors("meg", 151, 110)
}

// sphericalSensors places n sensors on a golden-spiral sphere of the
// given radius in mm, labeled prefix_000 .. prefix_n-1.
func sphericalSensors(prefix string, n int, radius float32) *SensorSet {
	ss := &SensorSet{
		Labels:    make([]string, n),
		Positions: make([]mat32.Vec3, n),
	}
	golden := mat32.Pi * (3 - mat32.Sqrt(5))
	for i := 0; i < n; i++ {
		ss.Labels[i] = fmt.Sprintf("%s_%03d", prefix, i)
		y := 1 - 2*float32(i)/float32(n-1)
		r := mat32.Sqrt(1 - y*y)
		th := golden * float32(i)
		ss.Positions[i] = mat32.Vec3{X: radius * r * mat32.Cos(th), Y: radius * y, Z: radius * r * mat32.Sin(th)}
	}
	return ss
}

// ProjectionGain builds the (nsensors, nnodes) forward gain matrix by
// inverse-square distance from each node to each sensor, rows
// normalized to unit sum. A full forward model is owned by external
// loaders; this analytic gain preserves the linear-projection contract.
func ProjectionGain(sensors *SensorSet, nodes []mat32.Vec3) *etensor.Float32 {
	ns, nn := len(sensors.Positions), len(nodes)
	gain := etensor.NewFloat32([]int{ns, nn}, nil, []string{"Sensor", "Node"})
	for s := 0; s < ns; s++ {
		var sum float32
		row := gain.Values[s*nn : (s+1)*nn]
		for k := 0; k < nn; k++ {
			d := sensors.Positions[s].Sub(nodes[k]).Length()
			if d < 1 {
				d = 1
			}
			row[k] = 1 / (d * d)
			sum += row[k]
		}
		for k := range row {
			row[k] /= sum
		}
	}
	return gain
}

// projection is the shared core of the EEG and MEG monitors: a linear
// map of the observed state variable onto a fixed sensor set, loaded
// once at configure time and immutable for the run.
type projection struct {
	Period  float32    `desc:"sampling period, integer multiple of dt"`
	Sensors *SensorSet `desc:"fixed sensor geometry"`

	cfg   Config
	istep int
	gain  *etensor.Float32
}

func (mon *projection) Configure(cfg Config) error {
	is, err := periodSteps(mon.Period, cfg.Dt)
	if err != nil {
		return err
	}
	if len(cfg.Positions) != cfg.NNodes {
		return fmt.Errorf("monitors: %d node positions for %d nodes", len(cfg.Positions), cfg.NNodes)
	}
	mon.cfg = cfg
	mon.istep = is
	mon.gain = ProjectionGain(mon.Sensors, cfg.Positions)
	return nil
}

// project writes gain * state[cvar] into out.
func (mon *projection) project(state [][]float32, out []float32) {
	src := state[mon.cfg.CouplingVar]
	nn := mon.cfg.NNodes
	for s := range out {
		row := mon.gain.Values[s*nn : (s+1)*nn]
		var sum float32
		for k, g := range row {
			sum += g * src[k]
		}
		out[s] = sum
	}
}

// EEG projects the observed state variable onto EEG sensors,
// optionally re-referenced against a named electrode. The reference
// can be changed between runs without reloading the sensor geometry.
type EEG struct {
	projection
	refIdx int
}

// NewEEG returns an EEG monitor over the default sensor set.
func NewEEG(period float32) *EEG {
	return &EEG{projection: projection{Period: period, Sensors: DefaultEEGSensors()}, refIdx: -1}
}

func (mon *EEG) Name() string { return "EEG" }

// SetReference selects the reference electrode by label; the empty
// label restores sensor-space (unreferenced) output. Takes effect on
// the next sample.
func (mon *EEG) SetReference(label string) error {
	if label == "" {
		mon.refIdx = -1
		return nil
	}
	idx := mon.Sensors.Index(label)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSensor, label)
	}
	mon.refIdx = idx
	return nil
}

func (mon *EEG) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	if mon.istep == 0 || !due(step, mon.istep) {
		return Sample{}, false
	}
	data := make([]float32, len(mon.Sensors.Labels))
	mon.project(state, data)
	if mon.refIdx >= 0 {
		ref := data[mon.refIdx]
		for s := range data {
			data[s] -= ref
		}
	}
	return Sample{Time: time, Data: data}, true
}

// MEG projects the observed state variable onto MEG sensors.
type MEG struct {
	projection
}

// NewMEG returns an MEG monitor over the default sensor set.
func NewMEG(period float32) *MEG {
	return &MEG{projection: projection{Period: period, Sensors: DefaultMEGSensors()}}
}

func (mon *MEG) Name() string { return "MEG" }

func (mon *MEG) Sample(step int, time float32, state [][]float32) (Sample, bool) {
	if mon.istep == 0 || !due(step, mon.istep) {
		return Sample{}, false
	}
	data := make([]float32, len(mon.Sensors.Labels))
	mon.project(state, data)
	return Sample{Time: time, Data: data}, true
}
