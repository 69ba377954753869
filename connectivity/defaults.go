// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package connectivity

import (
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

// Named default geometries. File-based connectome loading is owned by
// external loaders; these built-ins are procedurally generated and fully
// deterministic, so tests and examples do not depend on data files.
const (
	Default76  = "connectivity_76"
	Default192 = "connectivity_192"
)

// DefaultSpeed is the default conduction speed, in mm/ms.
const DefaultSpeed = 4.0

// FromName returns a validated connectivity for a named source.
// "default" and Default76 give the 76-region geometry, Default192 the
// 192-region one. Unknown names return ErrUnknownGeometry.
func FromName(name string) (*Connectivity, error) {
	switch name {
	case "", "default", Default76:
		return Generate(Default76, 76), nil
	case Default192:
		return Generate(Default192, 192), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGeometry, name)
}

// Default returns the standard 76-region connectivity.
func Default() *Connectivity {
	return Generate(Default76, 76)
}

// Generate builds a deterministic n-region connectome: region centres on
// a sphere of cortical scale (golden-spiral layout), tract lengths as
// inter-centre Euclidean distance, and weights decaying exponentially
// with distance, modulated by a fixed per-edge pattern so rows are not
// uniform. Self connections have zero weight.
func Generate(name string, n int) *Connectivity {
	c := &Connectivity{
		Name:         name,
		NRegions:     n,
		Weights:      etensor.NewFloat32([]int{n, n}, nil, []string{"To", "From"}),
		TractLengths: etensor.NewFloat32([]int{n, n}, nil, []string{"To", "From"}),
		RegionLabels: make([]string, n),
		Centres:      make([]mat32.Vec3, n),
		Speed:        DefaultSpeed,
	}
	const radius = 60.0 // mm, roughly a hemisphere-pair bounding sphere
	golden := mat32.Pi * (3 - mat32.Sqrt(5))
	for i := 0; i < n; i++ {
		c.RegionLabels[i] = fmt.Sprintf("region_%03d", i)
		y := 1 - 2*float32(i)/float32(n-1)
		r := mat32.Sqrt(1 - y*y)
		th := golden * float32(i)
		c.Centres[i] = mat32.Vec3{X: radius * r * mat32.Cos(th), Y: radius * y, Z: radius * r * mat32.Sin(th)}
	}
	const lambda = 40.0 // mm, weight decay length
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := c.Centres[i].Sub(c.Centres[j]).Length()
			c.TractLengths.Set([]int{i, j}, d)
			// deterministic per-edge modulation in [0.5, 1.5)
			mod := 1 + 0.5*mat32.Sin(float32(i*131+j*37))
			c.Weights.Set([]int{i, j}, mod*mat32.Exp(-d/lambda))
		}
	}
	return c
}
