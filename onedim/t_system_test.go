// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// reactDiff is a single-component reaction-diffusion domain used by the
// solver tests: c'' - c² + src = 0 with Dirichlet ends
type reactDiff struct {
	DomBase
	cleft, cright float64
	src           float64
}

func newReactDiff(id string, z []float64, cleft, cright, src float64) (o *reactDiff) {
	o = new(reactDiff)
	o.Name = id
	o.Lay = NewLayout()
	o.Lay.Append(Comp{Name: "c", Lower: -1e20, Upper: 1e20, Rtol: 1e-5, Atol: 1e-9, TimeDeriv: true})
	o.cleft, o.cright, o.src = cleft, cright, src
	o.SetupGrid(z)
	return
}

func (o *reactDiff) Resize(npoints int) {}

func (o *reactDiff) InitialSoln(x []float64) {
	for j := 0; j < o.NPoints(); j++ {
		x[o.Index(0, j)] = o.cleft
	}
}

func (o *reactDiff) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	if !o.Touches(jGlobal) {
		return
	}
	np := o.NPoints()
	jmin, jmax := 0, np-1
	if jGlobal != AllPoints {
		jpt := jGlobal - o.FirstPt
		if jpt > 0 {
			jmin = jpt - 1
		}
		if jpt < np-1 {
			jmax = jpt + 1
		}
	}
	for j := jmin; j <= jmax; j++ {
		i := o.Index(0, j)
		switch j {
		case 0:
			rsd[i] = x[i] - o.cleft
			if mask != nil {
				mask[i] = 0
			}
		case np - 1:
			rsd[i] = x[i] - o.cright
			if mask != nil {
				mask[i] = 0
			}
		default:
			im, ip := o.Index(0, j-1), o.Index(0, j+1)
			d2 := 2 * ((x[ip]-x[i])/o.G.Dz[j] - (x[i]-x[im])/o.G.Dz[j-1]) / (o.G.Z[j+1] - o.G.Z[j-1])
			rsd[i] = d2 - x[i]*x[i] + o.src - rdt*(x[i]-o.PrevSoln(0, j))
			if mask != nil {
				mask[i] = 1
			}
		}
	}
}

func Test_system01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system01. offsets, point tables and bandwidth")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 6), 0, 0, 1)
	sys := NewSystem(d)

	chk.Ints(tst, "size,points,bandwidth", []int{sys.Size(), sys.Points(), sys.Bandwidth()}, []int{6, 6, 1})
	for j := 0; j < 6; j++ {
		chk.Ints(tst, io.Sf("loc(%d),nvars(%d)", j, j), []int{sys.Loc(j), sys.NVars(j)}, []int{j, 1})
	}
	if sys.PointDomain(3) != Domain(d) {
		tst.Errorf("point 3 must belong to the flow domain\n")
	}
}

func Test_system02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system02. jacobian structure of the reaction-diffusion rod")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 5), 0, 0, 1)
	sys := NewSystem(d)

	x := make([]float64, sys.Size())
	r := make([]float64, sys.Size())
	for i := range x {
		x[i] = 0.1 * float64(i+1)
	}
	sys.SteadyEval(x, r)
	sys.Jac.Eval(x, r, 0)

	// Dirichlet rows: unit diagonal, no coupling
	chk.Float64(tst, "J(0,0)", 1e-6, sys.Jac.Value(0, 0), 1)
	chk.Float64(tst, "J(0,1)", 1e-6, sys.Jac.Value(0, 1), 0)
	chk.Float64(tst, "J(4,4)", 1e-6, sys.Jac.Value(4, 4), 1)

	// interior rows: diffusion stencil plus the -2c reaction slope
	h := 0.25
	chk.Float64(tst, "J(2,1)", 1e-3, sys.Jac.Value(2, 1), 1/(h*h))
	chk.Float64(tst, "J(2,3)", 1e-3, sys.Jac.Value(2, 3), 1/(h*h))
	chk.Float64(tst, "J(2,2)", 1e-3, sys.Jac.Value(2, 2), -2/(h*h)-2*x[2])
}

func Test_newton01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton01. damped newton on the steady rod")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 11), 0, 0, 1)
	sys := NewSystem(d)

	x := make([]float64, sys.Size())
	xnew := make([]float64, sys.Size())
	niter, err := sys.Newt.Solve(sys, x, xnew)
	if err != nil {
		tst.Errorf("newton failed: %v\n", err)
		return
	}
	io.Pf("converged in %d iterations\n", niter)

	r := make([]float64, sys.Size())
	ss := sys.SSNorm(xnew, r)
	if ss > 1e-6 {
		tst.Errorf("steady residual too large: %g\n", ss)
	}

	// symmetric problem on a uniform grid gives a symmetric bump
	n := sys.Size()
	for j := 0; j < n/2; j++ {
		chk.Float64(tst, io.Sf("c(%d) sym", j), 1e-8, xnew[j], xnew[n-1-j])
	}
	if xnew[n/2] <= 0 {
		tst.Errorf("midpoint concentration must be positive; got %g\n", xnew[n/2])
	}
}

func Test_newton02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton02. bound-limited stepping and the feasibility penalty")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 4), 0, 0, 1)
	d.Lay.Comp(0).Lower = 0
	d.Lay.Comp(0).Upper = 2
	sys := NewSystem(d)

	x := []float64{1, 1, 1, 1}

	// step toward the upper bound gets clipped at the bound distance
	step := []float64{0, 2, 0, 0}
	chk.Float64(tst, "fbound clip", 1e-15, sys.Newt.BoundStep(sys, x, step), 0.5)

	// interior step: full length admissible
	step = []float64{0, 0.5, -0.5, 0}
	chk.Float64(tst, "fbound free", 1e-15, sys.Newt.BoundStep(sys, x, step), 1)

	// pinned against the bound and pushing outward stops the line search
	x[1] = 2
	step = []float64{0, 1, 0, 0}
	chk.Float64(tst, "fbound pinned", 1e-15, sys.Newt.BoundStep(sys, x, step), 0)

	// penalty pushes residual away from zero in proportion to the excess
	f := []float64{0.5, -0.5}
	sys.Newt.Penalize(f, 0.1)
	chk.Array(tst, "penalized", 1e-15, f, []float64{0.5 + (0.5+1e-3)*0.1, -0.5 + (-0.5-1e-3)*0.1})
}

func Test_tstep01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("tstep01. pseudo-time stepping moves toward steady state")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 9), 0, 0, 4)
	sys := NewSystem(d)

	x := make([]float64, sys.Size())
	r := make([]float64, sys.Size())
	ss0 := sys.SSNorm(x, r)

	dt, err := sys.TimeStep(8, sys.TSInit, x, r)
	if err != nil {
		tst.Errorf("time stepping failed: %v\n", err)
		return
	}
	io.Pf("dt after 8 steps = %g\n", dt)
	if dt < sys.TSInit {
		tst.Errorf("dt must have grown from %g; got %g\n", sys.TSInit, dt)
	}
	if sys.Rdt() != 0 {
		tst.Errorf("system must return to steady mode; rdt=%g\n", sys.Rdt())
	}

	ss1 := sys.SSNorm(x, r)
	io.Pf("log10(ss): %g -> %g\n", math.Log10(ss0), math.Log10(ss1))
	if ss1 >= ss0 {
		tst.Errorf("steady residual must decrease: %g -> %g\n", ss0, ss1)
	}
}

func Test_newton03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton03. accepted solutions respect the bound box")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 11), 0, 0, 8)
	d.Lay.Comp(0).Lower = 0
	d.Lay.Comp(0).Upper = 0.97
	sys := NewSystem(d)

	// the undamped first step from zero peaks at 1 mid-rod, past the bound
	x := make([]float64, sys.Size())
	r := make([]float64, sys.Size())
	sys.SteadyEval(x, r)
	sys.Jac.Eval(x, r, 0)
	if err := sys.Jac.Factor(); err != nil {
		tst.Errorf("factorization failed: %v\n", err)
		return
	}
	step := make([]float64, sys.Size())
	if err := sys.Jac.Solve(step, r); err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Float64(tst, "overshoot clip", 1e-6, sys.Newt.BoundStep(sys, x, step), 0.97)

	// the full solve converges to the interior root without leaving the box
	xnew := make([]float64, sys.Size())
	niter, err := sys.Newt.Solve(sys, x, xnew)
	if err != nil {
		tst.Errorf("newton failed: %v\n", err)
		return
	}
	io.Pf("converged in %d iterations\n", niter)
	lo, hi := d.Lay.Bounds(0)
	for i, v := range xnew {
		if v < lo || v > hi {
			tst.Errorf("component %d left the bound box: %g not in [%g,%g]\n", i, v, lo, hi)
			return
		}
	}
	if ss := sys.SSNorm(xnew, r); ss > 1e-6 {
		tst.Errorf("steady residual too large: %g\n", ss)
	}
	mid := xnew[sys.Size()/2]
	if mid < 0.8 || mid >= 0.97 {
		tst.Errorf("midpoint must settle inside the box below the bound; got %g\n", mid)
	}
}
