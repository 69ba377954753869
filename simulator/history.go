// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

// history is the delay ring buffer over region-level values of the
// coupling variable. It retains exactly horizon rows, where horizon is
// the largest tract delay in steps plus one, so every edge can be read
// at its delay-appropriate offset.
type history struct {
	horizon int
	n       int
	rows    [][]float32 // ring of region rows
	head    int         // index of the most recent row
	gat     []float32   // gather scratch, (n, n) row-major receiver x sender
}

func newHistory(horizon, n int) *history {
	h := &history{
		horizon: horizon,
		n:       n,
		rows:    make([][]float32, horizon),
		gat:     make([]float32, n*n),
	}
	for k := range h.rows {
		h.rows[k] = make([]float32, n)
	}
	return h
}

// fill seeds every row with the initial state, so delayed reads before
// t = maxdelay see the initial condition rather than zeros.
func (h *history) fill(x []float32) {
	for k := range h.rows {
		copy(h.rows[k], x)
	}
	h.head = 0
}

// push records the newest region row, overwriting the oldest.
func (h *history) push(x []float32) {
	h.head = (h.head + 1) % h.horizon
	copy(h.rows[h.head], x)
}

// current returns the most recent row.
func (h *history) current() []float32 { return h.rows[h.head] }

// at returns region j's value delay steps in the past; delay 0 is the
// current row. Delays beyond the horizon are clamped to the oldest row.
func (h *history) at(delay, j int) float32 {
	if delay >= h.horizon {
		delay = h.horizon - 1
	}
	k := h.head - delay
	if k < 0 {
		k += h.horizon
	}
	return h.rows[k][j]
}

// gather fills and returns the (n, n) matrix of delayed sender states:
// entry (i, j) is region j's value at the delay of edge j -> i.
func (h *history) gather(delays []int) []float32 {
	for i := 0; i < h.n; i++ {
		row := h.gat[i*h.n : (i+1)*h.n]
		drow := delays[i*h.n : (i+1)*h.n]
		for j := 0; j < h.n; j++ {
			row[j] = h.at(drow[j], j)
		}
	}
	return h.gat
}
