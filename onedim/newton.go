// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// Newton is the damped bound-constrained Newton method driving the steady
// (or implicit pseudo-time) residual to zero. Each iteration factors the
// banded Jacobian (reusing it while fresh), solves for a step, and picks a
// damping coefficient that both shrinks the weighted step norm and keeps
// every component inside its bound box. Iterates that would leave the box
// even for the smallest damping are projected onto it and the residual is
// biased back toward feasibility instead of failing outright.
type Newton struct {
	MaxIter   int     // iteration limit per solve
	MaxJacAge int     // Jacobian reuses before forced re-assembly
	NDamp     int     // damping trials per iteration
	DampFct   float64 // damping shrink factor
	FBoundMin float64 // smallest bound-limited damping before projection
	MinIncr   float64 // minimum residual increment of the bound penalty
	MaxRescue int     // projection rescues allowed per solve

	x1, xb     []float64 // trial states
	step0      []float64 // undamped step
	step1      []float64 // step at the damped trial point
	rsd        []float64 // residual workspace
	lastFBound float64
}

// NewNewton returns a Newton solver with default constants
func NewNewton() (o *Newton) {
	o = new(Newton)
	o.MaxIter = 100
	o.MaxJacAge = 5
	o.NDamp = 7
	o.DampFct = math.Sqrt(2.0)
	o.FBoundMin = 1e-10
	o.MinIncr = 1e-3
	o.MaxRescue = 3
	return
}

func (o *Newton) resize(n int) {
	o.x1 = la.NewVector(n)
	o.xb = la.NewVector(n)
	o.step0 = la.NewVector(n)
	o.step1 = la.NewVector(n)
	o.rsd = la.NewVector(n)
}

// Norm returns the weighted RMS norm of step about state x. Component
// weights combine the per-component relative tolerance scaled by the mean
// magnitude over the domain with the absolute tolerance.
func (o *Newton) Norm(sys *System, step, x []float64) float64 {
	sum := 0.0
	for _, d := range sys.Doms {
		np := d.NPoints()
		if np == 0 {
			continue
		}
		lay := d.Layout()
		for n := 0; n < lay.NComp(); n++ {
			c := lay.Comp(n)
			avg := 0.0
			for j := 0; j < np; j++ {
				avg += math.Abs(x[d.Index(n, j)])
			}
			avg /= float64(np)
			wt := c.Rtol*avg + c.Atol
			for j := 0; j < np; j++ {
				f := step[d.Index(n, j)] / wt
				sum += f * f
			}
		}
	}
	return math.Sqrt(sum / float64(sys.Size()))
}

// BoundStep returns the largest damping coefficient fb ≤ 1 such that
// x + fb·step keeps every component within its bound box
func (o *Newton) BoundStep(sys *System, x, step []float64) float64 {
	fb := 1.0
	for _, d := range sys.Doms {
		lay := d.Layout()
		for n := 0; n < lay.NComp(); n++ {
			lo, hi := lay.Bounds(n)
			for j := 0; j < d.NPoints(); j++ {
				i := d.Index(n, j)
				above := hi - x[i]
				below := x[i] - lo
				if step[i] > above && above > 0 {
					if f := above / step[i]; f < fb {
						fb = f
					}
				} else if step[i] < -below && below > 0 {
					if f := -below / step[i]; f < fb {
						fb = f
					}
				} else if (step[i] > 0 && above <= 0) || (step[i] < 0 && below <= 0) {
					// already pinned against the bound and pushing outward
					return 0
				}
			}
		}
	}
	return fb
}

// project clamps x into the bound box and returns the total projected excess
func (o *Newton) project(sys *System, x []float64) (excess float64) {
	for _, d := range sys.Doms {
		lay := d.Layout()
		for n := 0; n < lay.NComp(); n++ {
			lo, hi := lay.Bounds(n)
			for j := 0; j < d.NPoints(); j++ {
				i := d.Index(n, j)
				if x[i] < lo {
					excess += lo - x[i]
					x[i] = lo
				} else if x[i] > hi {
					excess += x[i] - hi
					x[i] = hi
				}
			}
		}
	}
	return
}

// Penalize biases the residual rows toward the feasible region in
// proportion to the total projected excess. The constants are tunable, not
// load-bearing; only the direction of the push matters.
func (o *Newton) Penalize(rsd []float64, excess float64) {
	for i := range rsd {
		perturb := o.MinIncr
		if rsd[i] < 0 {
			perturb = -o.MinIncr
		}
		rsd[i] += (rsd[i] + perturb) * excess
	}
}

// dampStep damps step0 about x0 into x1 and evaluates the step at the new
// point. Returns 1 on convergence, 0 to keep iterating, an error when no
// acceptable damping exists.
func (o *Newton) dampStep(sys *System, x0 []float64, verbose bool) (status int, err error) {
	n := sys.Size()
	fbound := o.BoundStep(sys, x0, o.step0)
	o.lastFBound = fbound
	if fbound < o.FBoundMin {
		return 0, chk.Err("no damped step stays within bounds (fbound=%g)", fbound)
	}
	s0 := o.Norm(sys, o.step0, x0)
	damp := fbound
	var s1 float64
	for m := 0; m < o.NDamp; m++ {
		for i := 0; i < n; i++ {
			o.x1[i] = x0[i] + damp*o.step0[i]
		}
		sys.Eval(AllPoints, o.x1, o.rsd, nil, sys.Rdt())
		if err = sys.Jac.Solve(o.step1, o.rsd); err != nil {
			return 0, err
		}
		s1 = o.Norm(sys, o.step1, o.x1)
		if verbose {
			io.Pf("    damp=%10.4g  log10(s0)=%10.4f  log10(s1)=%10.4f  fbound=%10.4g\n",
				damp, log10(s0), log10(s1), fbound)
		}
		if s1 < 1.0 || s1 < s0 {
			break
		}
		damp /= o.DampFct
	}
	if s1 < 1.0 {
		return 1, nil
	}
	if s1 < s0 {
		return 0, nil
	}
	return 0, chk.Err("damping failed to reduce the step norm (s0=%g s1=%g)", s0, s1)
}

// Solve drives the residual at x to zero; on success the new state is in
// xnew. Failures are recoverable: the caller keeps x untouched and may fall
// back to pseudo-time stepping.
func (o *Newton) Solve(sys *System, x, xnew []float64) (niter int, err error) {
	n := sys.Size()
	copy(xnew[:n], x[:n])
	forceNewJac := sys.Jac.Age > o.MaxJacAge
	rescues := 0
	for niter = 0; niter < o.MaxIter; niter++ {

		// assemble and factor the Jacobian when stale
		sys.Eval(AllPoints, xnew, o.rsd, nil, sys.Rdt())
		if forceNewJac {
			sys.Jac.Eval(xnew, o.rsd, sys.Rdt())
			if err = sys.Jac.Factor(); err != nil {
				return niter, chk.Err("jacobian factorization failed:\n%v", err)
			}
			forceNewJac = false
		}

		// undamped step
		if err = sys.Jac.Solve(o.step0, o.rsd); err != nil {
			return niter, err
		}
		sys.Jac.Age++

		// damped update
		status, errDamp := o.dampStep(sys, xnew, sys.Verbose)
		if errDamp != nil {
			if sys.Jac.Age > 1 {
				// stale Jacobian may be the culprit
				forceNewJac = true
				continue
			}
			// project onto the bound box and bias the residual back inside
			if rescues < o.MaxRescue {
				rescues++
				copy(o.xb[:n], xnew[:n])
				for i := 0; i < n; i++ {
					o.xb[i] += o.step0[i]
				}
				excess := o.project(sys, o.xb)
				if excess > 0 {
					sys.Eval(AllPoints, o.xb, o.rsd, nil, sys.Rdt())
					o.Penalize(o.rsd, excess)
					if err = sys.Jac.Solve(o.step0, o.rsd); err != nil {
						return niter, err
					}
					copy(xnew[:n], o.xb[:n])
					for i := 0; i < n; i++ {
						xnew[i] += o.step0[i]
					}
					o.project(sys, xnew)
					forceNewJac = true
					continue
				}
			}
			return niter, chk.Err("newton iteration failed:\n%v", errDamp)
		}
		copy(xnew[:n], o.x1[:n])
		if status == 1 {
			return niter + 1, nil
		}
	}
	return niter, chk.Err("newton did not converge within %d iterations", o.MaxIter)
}

func log10(x float64) float64 {
	if x <= 0 {
		return -99
	}
	return math.Log10(x)
}
