// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"testing"

	"github.com/emer/etable/v2/etensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear(t *testing.T) {
	cf := New(LinearFunc).(*Linear)
	assert.InDelta(t, 0.00042, cf.A, 1e-9, "default strength")
	cf.A, cf.B = 2, 1
	assert.InDelta(t, 7.0, cf.Post(3), 1e-6)
	assert.InDelta(t, 5.0, cf.Pre(99, 5), 1e-6, "linear pre ignores receiver state")
}

func TestDifference(t *testing.T) {
	cf := New(DifferenceFunc).(*Difference)
	assert.InDelta(t, -3.0, cf.Pre(5, 2), 1e-6)
	assert.InDelta(t, 0.1*4, cf.Post(4), 1e-6)
}

func TestSigmoidalBounds(t *testing.T) {
	cf := New(SigmoidalFunc).(*Sigmoidal)
	lo := cf.Post(-1e8)
	hi := cf.Post(1e8)
	assert.InDelta(t, float64(cf.CMin), float64(lo), 1e-4)
	assert.InDelta(t, float64(cf.CMax), float64(hi), 1e-4)
	mid := cf.Post(cf.Midpoint)
	assert.InDelta(t, float64(cf.CMin+cf.CMax)/2, float64(mid), 1e-4)
}

func TestCompute(t *testing.T) {
	// 3 nodes; node 0 receives from 1 (w=2) and 2 (w=0.5)
	w := etensor.NewFloat32([]int{3, 3}, nil, []string{"To", "From"})
	w.Set([]int{0, 1}, 2)
	w.Set([]int{0, 2}, 0.5)

	xDel := []float32{
		0, 10, 4, // delayed senders seen by node 0
		0, 0, 0,
		0, 0, 0,
	}
	xCur := []float32{1, 2, 3}
	out := make([]float32, 3)

	lin := &Linear{A: 1, B: 0}
	Compute(lin, w, xDel, xCur, out)
	assert.InDelta(t, 2*10+0.5*4, out[0], 1e-5)
	assert.InDelta(t, 0.0, out[1], 1e-6)
	assert.InDelta(t, 0.0, out[2], 1e-6)

	// difference coupling uses the receiver's current state per edge
	diff := &Difference{A: 1}
	Compute(diff, w, xDel, xCur, out)
	assert.InDelta(t, 2*(10-1)+0.5*(4-1), out[0], 1e-5)
}

func TestRegistry(t *testing.T) {
	require.Len(t, KnownFuncs(), int(FuncTypeN))
	for _, ft := range KnownFuncs() {
		fn := New(ft)
		require.NotNil(t, fn)
		rt, err := FromName(fn.Name())
		require.NoError(t, err)
		assert.Equal(t, fn.Name(), rt.Name())
	}
	_, err := FromName("Quadratic")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
