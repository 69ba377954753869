// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import "testing"

func TestHistoryDelayedReads(t *testing.T) {
	h := newHistory(4, 2)
	h.fill([]float32{10, 20})

	// before any push, all delays see the initial row
	for d := 0; d < 4; d++ {
		if h.at(d, 0) != 10 || h.at(d, 1) != 20 {
			t.Fatalf("fill not visible at delay %d", d)
		}
	}

	h.push([]float32{11, 21})
	h.push([]float32{12, 22})
	h.push([]float32{13, 23})

	if h.at(0, 0) != 13 {
		t.Errorf("delay 0: got %v, want 13", h.at(0, 0))
	}
	if h.at(1, 1) != 22 {
		t.Errorf("delay 1: got %v, want 22", h.at(1, 1))
	}
	if h.at(3, 0) != 10 {
		t.Errorf("delay 3: got %v, want initial 10", h.at(3, 0))
	}

	// wraparound: the oldest row is overwritten
	h.push([]float32{14, 24})
	if h.at(3, 0) != 11 {
		t.Errorf("after wrap, delay 3: got %v, want 11", h.at(3, 0))
	}
	// delays beyond horizon clamp to the oldest retained row
	if h.at(9, 0) != 11 {
		t.Errorf("clamped delay: got %v, want 11", h.at(9, 0))
	}
}

func TestHistoryGather(t *testing.T) {
	h := newHistory(3, 2)
	h.fill([]float32{0, 0})
	h.push([]float32{1, 10})
	h.push([]float32{2, 20})

	// delays (receiver i, sender j): node 0 reads both senders delayed
	// by 1, node 1 reads sender 0 current and sender 1 delayed by 2
	delays := []int{
		1, 1,
		0, 2,
	}
	got := h.gather(delays)
	want := []float32{
		1, 10,
		2, 0,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gather[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}
