// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Jacobian holds the banded Jacobian ∂r/∂x of the global residual,
// assembled by finite-difference perturbation restricted to the 3-point
// stencil touching each mesh point.
type Jacobian struct {
	Mat *BandMat // band storage; readable after factorization

	Rtol float64 // relative perturbation
	Atol float64 // absolute perturbation
	Age  int     // times this Jacobian has been reused since assembly

	sys *System
	r1  []float64 // perturbed residual workspace
}

// NewJacobian returns a Jacobian sized for the current system layout
func NewJacobian(sys *System) (o *Jacobian) {
	o = new(Jacobian)
	o.sys = sys
	o.Rtol = 1e-5
	o.Atol = math.Sqrt(1e-20)
	bw := sys.Bandwidth()
	o.Mat = NewBandMat(sys.Size(), bw, bw)
	o.r1 = make([]float64, sys.Size())
	o.Age = 10000
	return
}

// MarkStale forces re-assembly before the next factorization is trusted
func (o *Jacobian) MarkStale() { o.Age = 10000 }

// Eval assembles the Jacobian about state x0 with base residual resid0,
// which must be consistent with x0 and rdt.
func (o *Jacobian) Eval(x0, resid0 []float64, rdt float64) {
	o.Mat.Zero()
	sys := o.sys
	for j := 0; j < sys.Points(); j++ {
		nv := sys.NVars(j)
		for n := 0; n < nv; n++ {
			ipt := sys.Loc(j) + n
			xsave := x0[ipt]
			dx := o.Atol + math.Abs(xsave)*o.Rtol
			x0[ipt] = xsave + dx
			rdx := 1.0 / dx
			sys.Eval(j, x0, o.r1, nil, rdt)

			// rows touching point j: points j-1, j and j+1
			jlo, jhi := j-1, j+1
			if jlo < 0 {
				jlo = 0
			}
			if jhi > sys.Points()-1 {
				jhi = sys.Points() - 1
			}
			for jpt := jlo; jpt <= jhi; jpt++ {
				for m := 0; m < sys.NVars(jpt); m++ {
					irow := sys.Loc(jpt) + m
					if o.Mat.inBand(irow, ipt) {
						o.Mat.Set(irow, ipt, (o.r1[irow]-resid0[irow])*rdx)
					}
				}
			}
			x0[ipt] = xsave
		}
	}
	o.Age = 0
}

// Factor factors the assembled matrix; singularities are recoverable
func (o *Jacobian) Factor() (err error) {
	return o.Mat.Factor()
}

// Solve solves J·step = -resid for the Newton step
func (o *Jacobian) Solve(step, resid []float64) (err error) {
	err = o.Mat.Solve(step, resid)
	if err != nil {
		return
	}
	for i := range step[:o.Mat.N] {
		step[i] = -step[i]
	}
	return
}

// Value reads an assembled Jacobian entry (zero outside the band)
func (o *Jacobian) Value(i, j int) float64 {
	if i < 0 || i >= o.Mat.N || j < 0 || j >= o.Mat.N {
		chk.Panic("jacobian index (%d,%d) is out of range for size %d", i, j, o.Mat.N)
	}
	return o.Mat.Get(i, j)
}

// SolveTranspose solves Jᵀ·lambda = b against the assembled (unfactored)
// entries; used by the adjoint system
func (o *Jacobian) SolveTranspose(lambda, b []float64) (err error) {
	t := o.Mat.Transpose()
	if err = t.Factor(); err != nil {
		return chk.Err("adjoint factorization failed:\n%v", err)
	}
	return t.Solve(lambda, b)
}
