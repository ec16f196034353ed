// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// System assembles a left-to-right chain of domains into one global
// residual. It owns the domain-to-slice map (offsets into the arena state
// vector), the banded Jacobian, the Newton solver and the pseudo-time
// bookkeeping. Domains never hand-derive global offsets; they are attached
// with their start index whenever the grids change.
type System struct {
	Doms []Domain // left-to-right chain of domains

	// sizing; recomputed by Rebuild
	size   int   // total number of unknowns (without continuation parameter)
	loc    []int // [ndom] start of each domain in the state vector
	ptLoc  []int // [npts] start of each global mesh point
	ptDom  []int // [npts] domain index owning each global mesh point
	ptNv   []int // [npts] number of components at each global mesh point
	npts   int   // total number of mesh points
	bandwd int   // Jacobian half-bandwidth

	// solver machinery
	Jac  *Jacobian
	Newt *Newton

	// pseudo-time state
	rdt   float64   // inverse pseudo-timestep; 0 in steady mode
	XLast []float64 // last accepted time-stepped state (rdt terms)

	// time-step control
	TSInit   float64 // initial pseudo-timestep
	TSMin    float64 // smallest allowed pseudo-timestep
	TSMax    float64 // largest allowed pseudo-timestep
	TSFactor float64 // shrink factor after a failed implicit step
	TSUp     float64 // growth factor after a successful implicit step

	Verbose bool
}

// NewSystem returns a system holding the given domains, left to right
func NewSystem(doms ...Domain) (o *System) {
	if len(doms) == 0 {
		chk.Panic("system needs at least one domain")
	}
	o = new(System)
	o.Doms = doms
	o.TSInit = 1e-5
	o.TSMin = 1e-16
	o.TSMax = 1e-4
	o.TSFactor = 0.3
	o.TSUp = 1.25
	o.Rebuild()
	return
}

// Rebuild recomputes the domain-to-slice map, the per-point index tables and
// the Jacobian bandwidth. Must be called after any grid change.
func (o *System) Rebuild() {
	o.loc = make([]int, len(o.Doms))
	o.ptLoc = o.ptLoc[:0]
	o.ptDom = o.ptDom[:0]
	o.ptNv = o.ptNv[:0]
	pos, pt, nmax := 0, 0, 0
	for i, d := range o.Doms {
		o.loc[i] = pos
		d.Attach(o, i, pos, pt)
		nc := d.NComp()
		if nc > nmax {
			nmax = nc
		}
		for j := 0; j < d.NPoints(); j++ {
			o.ptLoc = append(o.ptLoc, pos+j*nc)
			o.ptDom = append(o.ptDom, i)
			o.ptNv = append(o.ptNv, nc)
		}
		pos += nc * d.NPoints()
		pt += d.NPoints()
	}
	o.size = pos
	o.npts = pt
	o.bandwd = 2*nmax - 1
	o.Jac = NewJacobian(o)
	if o.Newt == nil {
		o.Newt = NewNewton()
	}
	o.Newt.resize(o.size)
	if len(o.XLast) != o.size {
		o.XLast = make([]float64, o.size)
	}
}

// Size returns the number of unknowns (without the continuation parameter)
func (o *System) Size() int { return o.size }

// Points returns the total number of mesh points over all domains
func (o *System) Points() int { return o.npts }

// Loc returns the state-vector index of the first component at global point j
func (o *System) Loc(j int) int { return o.ptLoc[j] }

// NVars returns the number of components at global point j
func (o *System) NVars(j int) int { return o.ptNv[j] }

// PointDomain returns the domain owning global point j
func (o *System) PointDomain(j int) Domain { return o.Doms[o.ptDom[j]] }

// Bandwidth returns the Jacobian half-bandwidth
func (o *System) Bandwidth() int { return o.bandwd }

// Rdt returns the current inverse pseudo-timestep (0 in steady mode)
func (o *System) Rdt() float64 { return o.rdt }

// Eval invokes every domain's residual contract. jGlobal == AllPoints
// assembles everything; otherwise only rows within the 3-point stencil of
// jGlobal are recomputed (Jacobian support). mask may be nil.
//
// Bulk (multi-point) domains run first; boundary collaborators run last
// because they modify the edge rows of their neighbors.
func (o *System) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	for _, d := range o.Doms {
		if d.NPoints() > 1 {
			d.Eval(jGlobal, x, rsd, mask, rdt)
		}
	}
	for _, d := range o.Doms {
		if d.NPoints() <= 1 {
			d.Eval(jGlobal, x, rsd, mask, rdt)
		}
	}
}

// SteadyEval computes the pure steady residual (rdt = 0)
func (o *System) SteadyEval(x, rsd []float64) {
	o.Eval(AllPoints, x, rsd, nil, 0)
}

// SSNorm returns the maximum absolute steady residual component
func (o *System) SSNorm(x, rsd []float64) (norm float64) {
	o.SteadyEval(x, rsd)
	for i := 0; i < o.size; i++ {
		if rsd[i] < 0 {
			if -rsd[i] > norm {
				norm = -rsd[i]
			}
		} else if rsd[i] > norm {
			norm = rsd[i]
		}
	}
	return
}

// InitTimeInteg prepares implicit pseudo-time integration with timestep dt
// starting from state x, which becomes the last accepted state.
func (o *System) InitTimeInteg(dt float64, x []float64) {
	rdtNew := 1.0 / dt
	if rdtNew != o.rdt {
		o.Jac.MarkStale()
	}
	o.rdt = rdtNew
	copy(o.XLast, x[:o.size])
}

// SetSteadyMode returns to steady (rdt = 0) assembly
func (o *System) SetSteadyMode() {
	if o.rdt != 0 {
		o.Jac.MarkStale()
	}
	o.rdt = 0
}

// TimeStep advances the state through nsteps implicit-Euler pseudo-time
// steps starting with timestep dt, shrinking dt on failed steps and growing
// it on successes. Used to move a poor initial guess into the Newton basin
// of attraction. Returns the final timestep; exhausting TSMin is a hard
// failure, but x retains the last successful step.
func (o *System) TimeStep(nsteps int, dt float64, x, r []float64) (dtNew float64, err error) {
	n := 0
	o.InitTimeInteg(dt, x)
	for n < nsteps {
		if o.Verbose {
			ss := o.SSNorm(x, r)
			io.Pf("  timestep %3d  dt=%10.4g  log10(ss)=%10.4f\n", n, dt, log10(ss))
		}
		_, errNw := o.Newt.Solve(o, x, r)
		if errNw == nil {
			copy(x[:o.size], r[:o.size])
			n++
			dt *= o.TSUp
			if dt > o.TSMax {
				dt = o.TSMax
			}
			o.InitTimeInteg(dt, x)
		} else {
			dt *= o.TSFactor
			if dt < o.TSMin {
				o.SetSteadyMode()
				return dt, chk.Err("pseudo-timestep fell below minimum (%g < %g):\n%v", dt, o.TSMin, errNw)
			}
			o.InitTimeInteg(dt, x)
		}
	}
	o.SetSteadyMode()
	return dt, nil
}
