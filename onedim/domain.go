// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import "github.com/cpmech/gosl/chk"

// AllPoints asks Eval to assemble every point of the domain
const AllPoints = -1

// Domain is the residual contract implemented by flow domains and boundary
// collaborators. A domain owns one contiguous block of the global state
// vector, laid out point-by-point then component-by-component.
//
// Eval computes residual rows for the global mesh point jGlobal or, when
// jGlobal == AllPoints, for every point of this domain. rdt is the inverse
// pseudo-timestep: zero means pure steady residual; nonzero injects an
// implicit-Euler term scaled by the difference from the last accepted state.
// mask receives 1 for differential rows and 0 for algebraic rows.
type Domain interface {
	ID() string
	Layout() *Layout
	NComp() int
	NPoints() int

	SetupGrid(z []float64)
	Grid() *Grid
	Resize(npoints int)

	Attach(sys *System, index, start, firstPt int)
	Index(n, j int) int

	Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64)
	InitialSoln(x []float64)
	Finalize(x []float64)
	ResetBadValues(x []float64)
}

// DomBase implements the bookkeeping shared by all domains: component
// layout, grid, and linkage into the global system. Concrete domains embed
// it and provide Eval and the lifecycle hooks.
type DomBase struct {
	Name string  // domain id
	Lay  *Layout // component layout
	G    *Grid   // grid (single-point for boundary domains)

	Sys     *System // global system; set by Attach
	Idom    int     // domain index within system
	Start   int     // global index of the first unknown of this domain
	FirstPt int     // global mesh index of the first point of this domain
}

// ID returns the domain id
func (o *DomBase) ID() string { return o.Name }

// Layout returns the component layout
func (o *DomBase) Layout() *Layout { return o.Lay }

// NComp returns the number of components per point
func (o *DomBase) NComp() int { return o.Lay.NComp() }

// NPoints returns the number of grid points
func (o *DomBase) NPoints() int {
	if o.G == nil {
		return 0
	}
	return o.G.N()
}

// Grid returns the grid
func (o *DomBase) Grid() *Grid { return o.G }

// SetupGrid replaces the grid
func (o *DomBase) SetupGrid(z []float64) { o.G = NewGrid(z) }

// Attach links this domain into the global system. Called by the system
// whenever offsets are (re)computed; never by user code.
func (o *DomBase) Attach(sys *System, index, start, firstPt int) {
	o.Sys = sys
	o.Idom = index
	o.Start = start
	o.FirstPt = firstPt
}

// Index returns the global state-vector index of component n at local point j
func (o *DomBase) Index(n, j int) int {
	return o.Start + j*o.Lay.NComp() + n
}

// LastPt returns the global mesh index of the last point of this domain
func (o *DomBase) LastPt() int { return o.FirstPt + o.NPoints() - 1 }

// Touches tells whether the Jacobian evaluation at global point jGlobal
// requires re-assembling rows of this domain (3-point stencil)
func (o *DomBase) Touches(jGlobal int) bool {
	if jGlobal == AllPoints {
		return true
	}
	return jGlobal+1 >= o.FirstPt && jGlobal-1 <= o.LastPt()
}

// Left returns the domain to the left or nil
func (o *DomBase) Left() Domain {
	if o.Sys == nil || o.Idom == 0 {
		return nil
	}
	return o.Sys.Doms[o.Idom-1]
}

// Right returns the domain to the right or nil
func (o *DomBase) Right() Domain {
	if o.Sys == nil || o.Idom == len(o.Sys.Doms)-1 {
		return nil
	}
	return o.Sys.Doms[o.Idom+1]
}

// PrevSoln reads the last accepted time-stepped value of component n at
// local point j; used by the rdt terms
func (o *DomBase) PrevSoln(n, j int) float64 {
	if o.Sys == nil {
		chk.Panic("domain %q is not attached to a system", o.Name)
	}
	return o.Sys.XLast[o.Index(n, j)]
}

// InitialSoln is a no-op by default
func (o *DomBase) InitialSoln(x []float64) {}

// Finalize is a no-op by default
func (o *DomBase) Finalize(x []float64) {}

// ResetBadValues is a no-op by default
func (o *DomBase) ResetBadValues(x []float64) {}

// Resize must be provided by concrete domains that support refinement
func (o *DomBase) Resize(npoints int) {
	chk.Panic("domain %q cannot be resized", o.Name)
}
