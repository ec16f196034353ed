// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package onedim implements the shared machinery for one-dimensional
// steady reacting-flow problems: per-domain grids and component layouts,
// the banded Jacobian, a damped bound-constrained Newton method, implicit
// pseudo-time stepping, and the outer solve/refine/continuation engine.
package onedim

import "github.com/cpmech/gosl/chk"

// Grid holds the ordered coordinates of one domain and the derived spacing
type Grid struct {
	Z  []float64 // [n] strictly increasing point coordinates
	Dz []float64 // [n-1] spacing: Dz[j] = Z[j+1] - Z[j]
}

// NewGrid returns a new grid for the given coordinates.
// Panics if z is empty or not strictly increasing.
func NewGrid(z []float64) (o *Grid) {
	if len(z) < 1 {
		chk.Panic("grid needs at least one point")
	}
	o = new(Grid)
	o.Z = make([]float64, len(z))
	copy(o.Z, z)
	o.Dz = make([]float64, len(z)-1)
	for j := 0; j < len(z)-1; j++ {
		o.Dz[j] = z[j+1] - z[j]
		if o.Dz[j] <= 0 {
			chk.Panic("grid coordinates must be strictly increasing. z[%d]=%g z[%d]=%g", j, z[j], j+1, z[j+1])
		}
	}
	return
}

// N returns the number of points
func (o *Grid) N() int { return len(o.Z) }
