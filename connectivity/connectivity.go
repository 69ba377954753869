// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package connectivity provides the long-range structural connectome: a
weighted, directed graph over brain regions, with per-edge tract lengths
that become signal propagation delays once divided by conduction speed
and the integration step size.
*/
package connectivity

import (
	"errors"
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

var (
	// ErrUnknownGeometry is returned by FromName for an unrecognized source name.
	ErrUnknownGeometry = errors.New("connectivity: unknown geometry source")

	// ErrGeometryMismatch is returned when matrix shapes are inconsistent
	// with the declared region count.
	ErrGeometryMismatch = errors.New("connectivity: geometry mismatch")
)

// Connectivity is the weighted, delayed region-level graph. Weights and
// TractLengths are (NRegions, NRegions) with row = receiving region,
// column = sending region. Node count is fixed for the lifetime of the
// instance; Speed is the one mutable field and only affects delays.
type Connectivity struct {
	Name         string          `desc:"source name this connectivity was built from"`
	NRegions     int             `desc:"number of regions (nodes)"`
	Weights      *etensor.Float32 `desc:"coupling strength per directed edge, non-negative"`
	TractLengths *etensor.Float32 `desc:"tract length per directed edge, non-negative, same units as Speed numerator"`
	RegionLabels []string        `desc:"human-readable region names"`
	Centres      []mat32.Vec3    `desc:"region centre positions, used for sensor projections and region mapping"`
	Speed        float32         `desc:"signal conduction speed -- delay = length / speed"`
}

// Validate checks the structural invariants: square matrices matching
// NRegions, non-negative weights and lengths, positive speed.
func (c *Connectivity) Validate() error {
	if c.NRegions <= 0 {
		return fmt.Errorf("%w: NRegions = %d", ErrGeometryMismatch, c.NRegions)
	}
	n := c.NRegions
	for _, ts := range []struct {
		nm string
		t  *etensor.Float32
	}{{"Weights", c.Weights}, {"TractLengths", c.TractLengths}} {
		if ts.t == nil || ts.t.NumDims() != 2 || ts.t.Dim(0) != n || ts.t.Dim(1) != n {
			return fmt.Errorf("%w: %s is not (%d, %d)", ErrGeometryMismatch, ts.nm, n, n)
		}
		for _, v := range ts.t.Values {
			if v < 0 {
				return fmt.Errorf("%w: negative entry in %s", ErrGeometryMismatch, ts.nm)
			}
		}
	}
	if len(c.RegionLabels) != n || len(c.Centres) != n {
		return fmt.Errorf("%w: labels/centres length != %d", ErrGeometryMismatch, n)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: non-positive speed %g", ErrGeometryMismatch, c.Speed)
	}
	return nil
}

// Weight returns the coupling weight from region j into region i.
func (c *Connectivity) Weight(i, j int) float32 {
	return c.Weights.Value([]int{i, j})
}

// DelaySteps returns the (NRegions, NRegions) matrix of per-edge delays
// in integration steps, rounded to nearest: round(length / speed / dt).
func (c *Connectivity) DelaySteps(dt float32) []int {
	n := c.NRegions
	steps := make([]int, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := c.TractLengths.Value([]int{i, j}) / c.Speed / dt
			steps[i*n+j] = int(mat32.Round(d))
		}
	}
	return steps
}

// MaxDelaySteps returns the largest entry of DelaySteps for dt,
// determining the required history horizon.
func (c *Connectivity) MaxDelaySteps(dt float32) int {
	max := 0
	for _, s := range c.DelaySteps(dt) {
		if s > max {
			max = s
		}
	}
	return max
}
