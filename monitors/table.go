// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitors

import (
	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
)

// ToTable renders a monitor output stream as an etable.Table with a
// Time column and a Values tensor column sized to the stream's sample
// width. An empty stream yields an empty two-column table.
func ToTable(name string, stream []Sample) *etable.Table {
	width := 1
	if len(stream) > 0 {
		width = len(stream[0].Data)
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	sch := etable.Schema{
		{Name: "Time", Type: etensor.FLOAT32, CellShape: nil, DimNames: nil},
		{Name: "Values", Type: etensor.FLOAT32, CellShape: []int{width}, DimNames: nil},
	}
	dt.SetFromSchema(sch, len(stream))
	for row, smp := range stream {
		dt.SetCellFloat("Time", row, float64(smp.Time))
		for i, v := range smp.Data {
			dt.SetCellTensorFloat1D("Values", row, i, float64(v))
		}
	}
	return dt
}
