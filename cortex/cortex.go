// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cortex provides the surface-simulation geometry: a triangulated
mesh whose vertices each carry their own dynamical state, a sparse local
connectivity supplying intra-cortical coupling, and a region mapping
assigning every vertex to a connectome region for region-level inputs
and outputs. All geometry is built once and immutable during a run, and
every consumer is geometry-size-agnostic: substituting a mesh or
connectome of a different size requires no code changes.
*/
package cortex

import (
	"errors"
	"fmt"

	"github.com/cortexsim/cortexsim/connectivity"
	"github.com/goki/mat32"
)

// ErrGeometryMismatch is returned when mesh, mapping, and local
// connectivity sizes are inconsistent.
var ErrGeometryMismatch = errors.New("cortex: geometry mismatch")

// Mesh is a triangulated cortical surface.
type Mesh struct {
	Vertices  []mat32.Vec3 `desc:"vertex positions"`
	Triangles [][3]int32   `desc:"triangle vertex indices"`
}

// NVertices returns the vertex count.
func (m *Mesh) NVertices() int { return len(m.Vertices) }

// SphereMesh builds a deterministic UV-sphere mesh with the given
// number of latitude rows and longitude columns plus two pole vertices.
func SphereMesh(rows, cols int, radius float32) *Mesh {
	m := &Mesh{}
	m.Vertices = append(m.Vertices, mat32.Vec3{Y: radius}) // north pole
	for r := 1; r < rows; r++ {
		phi := mat32.Pi * float32(r) / float32(rows)
		y := radius * mat32.Cos(phi)
		rr := radius * mat32.Sin(phi)
		for c := 0; c < cols; c++ {
			th := 2 * mat32.Pi * float32(c) / float32(cols)
			m.Vertices = append(m.Vertices, mat32.Vec3{X: rr * mat32.Cos(th), Y: y, Z: rr * mat32.Sin(th)})
		}
	}
	m.Vertices = append(m.Vertices, mat32.Vec3{Y: -radius}) // south pole
	south := int32(len(m.Vertices) - 1)

	at := func(r, c int) int32 { return int32(1 + (r-1)*cols + c%cols) }
	for c := 0; c < cols; c++ {
		m.Triangles = append(m.Triangles, [3]int32{0, at(1, c), at(1, c+1)})
	}
	for r := 1; r < rows-1; r++ {
		for c := 0; c < cols; c++ {
			a, b := at(r, c), at(r, c+1)
			d, e := at(r+1, c), at(r+1, c+1)
			m.Triangles = append(m.Triangles, [3]int32{a, d, b}, [3]int32{b, d, e})
		}
	}
	for c := 0; c < cols; c++ {
		m.Triangles = append(m.Triangles, [3]int32{south, at(rows-1, c+1), at(rows-1, c)})
	}
	return m
}

// RegionMapping assigns each mesh vertex to a connectome region.
type RegionMapping struct {
	ToRegion []int32 `desc:"region index per vertex"`
	NRegions int     `desc:"number of regions mapped into"`
}

// Validate checks the mapping against a vertex and region count.
func (rm *RegionMapping) Validate(nvert, nregions int) error {
	if len(rm.ToRegion) != nvert || rm.NRegions != nregions {
		return fmt.Errorf("%w: mapping %d/%d vs %d/%d", ErrGeometryMismatch, len(rm.ToRegion), rm.NRegions, nvert, nregions)
	}
	for _, r := range rm.ToRegion {
		if r < 0 || int(r) >= nregions {
			return fmt.Errorf("%w: region index %d out of range", ErrGeometryMismatch, r)
		}
	}
	return nil
}

// MapToRegions builds a mapping by nearest region centre.
func MapToRegions(mesh *Mesh, centres []mat32.Vec3) *RegionMapping {
	rm := &RegionMapping{
		ToRegion: make([]int32, mesh.NVertices()),
		NRegions: len(centres),
	}
	for i, v := range mesh.Vertices {
		best, bd := 0, float32(mat32.Infinity)
		for r, c := range centres {
			d := v.Sub(c).LengthSq()
			if d < bd {
				best, bd = r, d
			}
		}
		rm.ToRegion[i] = int32(best)
	}
	return rm
}

// LocalConnectivity is the sparse intra-cortical coupling: for every
// vertex, a Gaussian-of-distance kernel over neighbors within Cutoff,
// stored in compressed rows.
type LocalConnectivity struct {
	Amp    float32 `def:"1" desc:"kernel amplitude"`
	Sigma  float32 `def:"10" desc:"kernel width, mm"`
	Cutoff float32 `def:"20" desc:"neighbor distance cutoff, mm"`

	RowStart []int32   `desc:"per-vertex start index into Cols/Weights, length nvert+1"`
	Cols     []int32   `desc:"neighbor vertex indices"`
	Weights  []float32 `desc:"kernel weight per neighbor"`
}

// BuildLocalConnectivity constructs the default kernel over a mesh.
func BuildLocalConnectivity(mesh *Mesh, amp, sigma, cutoff float32) *LocalConnectivity {
	lc := &LocalConnectivity{Amp: amp, Sigma: sigma, Cutoff: cutoff}
	nv := mesh.NVertices()
	lc.RowStart = make([]int32, nv+1)
	for i := 0; i < nv; i++ {
		lc.RowStart[i] = int32(len(lc.Cols))
		for j := 0; j < nv; j++ {
			if i == j {
				continue
			}
			d := mesh.Vertices[i].Sub(mesh.Vertices[j]).Length()
			if d > cutoff {
				continue
			}
			lc.Cols = append(lc.Cols, int32(j))
			lc.Weights = append(lc.Weights, amp*mat32.Exp(-d*d/(2*sigma*sigma)))
		}
	}
	lc.RowStart[nv] = int32(len(lc.Cols))
	return lc
}

// Apply writes the local coupling term per vertex: out[i] =
// sum over neighbors j of w_ij * x[j].
func (lc *LocalConnectivity) Apply(x, out []float32) {
	for i := range out {
		var sum float32
		for k := lc.RowStart[i]; k < lc.RowStart[i+1]; k++ {
			sum += lc.Weights[k] * x[lc.Cols[k]]
		}
		out[i] = sum
	}
}

// Validate checks the sparse structure against a vertex count.
func (lc *LocalConnectivity) Validate(nvert int) error {
	if len(lc.RowStart) != nvert+1 || len(lc.Cols) != len(lc.Weights) {
		return fmt.Errorf("%w: local connectivity rows %d for %d vertices", ErrGeometryMismatch, len(lc.RowStart)-1, nvert)
	}
	for _, w := range lc.Weights {
		if w < 0 {
			return fmt.Errorf("%w: negative local weight", ErrGeometryMismatch)
		}
	}
	return nil
}

// Cortex aggregates the surface geometry for a run.
type Cortex struct {
	Mesh             *Mesh              `desc:"triangulated surface"`
	Mapping          *RegionMapping     `desc:"vertex to region assignment"`
	Local            *LocalConnectivity `desc:"sparse intra-cortical coupling"`
	CouplingStrength float32            `def:"0.0009766" desc:"scaling of the local coupling term"`
}

// Default builds the pre-validated mesh/mapping/local-connectivity
// triple matched to the given connectome: the mesh is sized so each
// region owns several vertices, and the mapping is nearest-centre.
func Default(conn *connectivity.Connectivity) (*Cortex, error) {
	n := conn.NRegions
	rows := 12
	cols := 2 * rows
	for (rows-1)*cols+2 < 6*n {
		rows += 4
		cols = 2 * rows
	}
	mesh := SphereMesh(rows, cols, 60)
	cx := &Cortex{
		Mesh:             mesh,
		Mapping:          MapToRegions(mesh, conn.Centres),
		Local:            BuildLocalConnectivity(mesh, 1, 10, 20),
		CouplingStrength: 0.0009766, // 2^-10
	}
	if err := cx.Validate(n); err != nil {
		return nil, err
	}
	return cx, nil
}

// Validate checks all components against each other and the region count.
func (cx *Cortex) Validate(nregions int) error {
	if cx.Mesh == nil || cx.Mapping == nil || cx.Local == nil {
		return fmt.Errorf("%w: missing component", ErrGeometryMismatch)
	}
	nv := cx.Mesh.NVertices()
	if err := cx.Mapping.Validate(nv, nregions); err != nil {
		return err
	}
	return cx.Local.Validate(nv)
}

// RegionAverage reduces a per-vertex row to per-region means.
func (cx *Cortex) RegionAverage(x, out []float32) {
	counts := make([]int, len(out))
	for i := range out {
		out[i] = 0
	}
	for i, r := range cx.Mapping.ToRegion {
		out[r] += x[i]
		counts[r]++
	}
	for r := range out {
		if counts[r] > 0 {
			out[r] /= float32(counts[r])
		}
	}
}
