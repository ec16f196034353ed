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

// VelocityScaler is implemented by flow domains whose velocity profile must
// be rescaled when the continuation parameter changes
type VelocityScaler interface {
	ScaleVelocities(x []float64, ratio float64)
}

// MdotScaler is implemented by boundary domains carrying a mass-flow
// condition that depends on the continuation parameter
type MdotScaler interface {
	Mdot() float64
	SetMdot(mdot float64)
}

// FlameAnchor is implemented by flow domains that can pin the temperature
// at one grid point to anchor the flame location
type FlameAnchor interface {
	Domain
	TempIndex() int
	AnchorTemperature(j int, t float64)
}

// Sim owns the global state vector and bounds and drives the hybrid damped
// Newton / pseudo-time-stepping solution, the continuation-parameter
// rescaling, and grid refinement with rollback.
type Sim struct {
	Sys *System

	// state; the trailing entry of X is the continuation parameter
	X    []float64 // solution vector, length Sys.Size()+1
	Xnew []float64 // work array: new solution or residual
	Lb   []float64 // lower bounds, matching X
	Ub   []float64 // upper bounds, matching X

	// snapshots for rollback
	XLastTS    []float64   // after the last successful time stepping
	XLastSS    []float64   // after the last converged steady solve
	GridLastSS [][]float64 // grids matching XLastSS

	// pseudo-time schedule
	TStep float64 // initial pseudo-timestep
	Steps []int   // steps to take before re-attempting the steady solve

	// continuation
	Chi          float64 // continuation parameter value (strain rate)
	AmplifyThr   float64 // rescale threshold on parameter changes
	UinF, UinO   float64 // inlet velocities entering the mass-flow conditions
	RhoinF       float64 // fuel-side inlet density
	RhoinO       float64 // oxidizer-side inlet density
	ParamUpper   float64 // continuation parameter upper bound
	SteadyCallbk func()  // called after each successful steady solve

	refiners map[Domain]Refiner
	Verbose  bool
}

// NewSim returns a simulation over the given domains, left to right
func NewSim(doms ...Domain) (o *Sim) {
	o = new(Sim)
	o.Sys = NewSystem(doms...)
	o.TStep = 1e-5
	o.Steps = []int{10, 20, 40, 80, 160}
	o.AmplifyThr = math.Inf(1)
	o.ParamUpper = 1e10
	o.refiners = make(map[Domain]Refiner)
	o.allocate()
	o.GetInitialSoln()
	return
}

// allocate sizes the state vector, work arrays and bounds
func (o *Sim) allocate() {
	n := o.Sys.Size() + 1
	o.X = la.NewVector(n)
	o.Xnew = la.NewVector(n)
	o.UpdateBounds()
}

// UpdateBounds rebuilds the global bound arrays from each domain's layout.
// The trailing entries bound the continuation parameter.
func (o *Sim) UpdateBounds() {
	n := o.Sys.Size() + 1
	o.Lb = la.NewVector(n)
	o.Ub = la.NewVector(n)
	for _, d := range o.Sys.Doms {
		lay := d.Layout()
		for j := 0; j < d.NPoints(); j++ {
			for c := 0; c < lay.NComp(); c++ {
				lo, hi := lay.Bounds(c)
				o.Lb[d.Index(c, j)] = lo
				o.Ub[d.Index(c, j)] = hi
			}
		}
	}
	o.Lb[n-1] = 0
	o.Ub[n-1] = o.ParamUpper
}

// GetInitialSoln writes every domain's initial estimate into X
func (o *Sim) GetInitialSoln() {
	for _, d := range o.Sys.Doms {
		d.InitialSoln(o.X)
	}
}

// SystemSize returns the length of the state vector including the
// continuation parameter
func (o *Sim) SystemSize() int { return len(o.X) }

// domain fetches domain i, panicking on bad indices (setup-time error)
func (o *Sim) domain(dom int) Domain {
	if dom < 0 || dom >= len(o.Sys.Doms) {
		chk.Panic("domain index %d is out of range [0,%d)", dom, len(o.Sys.Doms))
	}
	return o.Sys.Doms[dom]
}

// checkCompPoint validates a (component, point) pair of domain d
func checkCompPoint(d Domain, comp, point int) {
	if comp < 0 || comp >= d.NComp() {
		chk.Panic("component %d is out of range [0,%d) in domain %q", comp, d.NComp(), d.ID())
	}
	if point < 0 || point >= d.NPoints() {
		chk.Panic("point %d is out of range [0,%d) in domain %q", point, d.NPoints(), d.ID())
	}
}

// SetValue sets one entry of the solution vector
func (o *Sim) SetValue(dom, comp, point int, v float64) {
	d := o.domain(dom)
	checkCompPoint(d, comp, point)
	o.X[d.Index(comp, point)] = v
}

// Value returns one entry of the solution vector
func (o *Sim) Value(dom, comp, point int) float64 {
	d := o.domain(dom)
	checkCompPoint(d, comp, point)
	return o.X[d.Index(comp, point)]
}

// WorkValue returns one entry of the work array
func (o *Sim) WorkValue(dom, comp, point int) float64 {
	d := o.domain(dom)
	checkCompPoint(d, comp, point)
	return o.Xnew[d.Index(comp, point)]
}

// SetProfile sets component comp of domain dom from a piecewise-linear
// profile given at relative positions (0 at the left edge, 1 at the right)
func (o *Sim) SetProfile(dom, comp int, pos, vals []float64) {
	if len(pos) != len(vals) || len(pos) == 0 {
		chk.Panic("profile arrays have invalid lengths: %d and %d", len(pos), len(vals))
	}
	d := o.domain(dom)
	checkCompPoint(d, comp, 0)
	g := d.Grid()
	z0 := g.Z[0]
	z1 := g.Z[g.N()-1]
	for j := 0; j < g.N(); j++ {
		frac := 0.0
		if z1 > z0 {
			frac = (g.Z[j] - z0) / (z1 - z0)
		}
		o.X[d.Index(comp, j)] = interp1(pos, vals, frac)
	}
}

// SetFlatProfile sets component comp of domain dom to v at all points
func (o *Sim) SetFlatProfile(dom, comp int, v float64) {
	d := o.domain(dom)
	checkCompPoint(d, comp, 0)
	for j := 0; j < d.NPoints(); j++ {
		o.X[d.Index(comp, j)] = v
	}
}

// SetInitialGuess sets the named component in every domain carrying it
func (o *Sim) SetInitialGuess(component string, pos, vals []float64) {
	found := false
	for i, d := range o.Sys.Doms {
		if n := d.Layout().Index(component); n >= 0 && d.NPoints() > 1 {
			o.SetProfile(i, n, pos, vals)
			found = true
		}
	}
	if !found {
		chk.Panic("no domain carries component %q", component)
	}
}

// interp1 evaluates the piecewise-linear table (xs, ys) at x with constant
// extrapolation beyond the table ends
func interp1(xs, ys []float64, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			w := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + w*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

// SetTimeStep sets the pseudo-time schedule: the initial stepsize and the
// number of steps to take before each new steady re-attempt
func (o *Sim) SetTimeStep(stepsize float64, steps []int) {
	if stepsize <= 0 || len(steps) == 0 {
		chk.Panic("invalid time-step schedule: stepsize=%g nsteps=%d", stepsize, len(steps))
	}
	o.TStep = stepsize
	o.Steps = append([]int{}, steps...)
}

// SetRefiner installs a refinement policy for domain dom
func (o *Sim) SetRefiner(dom int, r Refiner) {
	o.refiners[o.domain(dom)] = r
}

// SetRefineCriteria configures the gradient refiner of domain dom; dom < 0
// applies the settings to every multi-point domain
func (o *Sim) SetRefineCriteria(dom int, ratio, slope, curve, prune float64) {
	set := func(d Domain) {
		r := o.gradRefiner(d)
		r.Ratio, r.Slope, r.Curve, r.Prune = ratio, slope, curve, prune
	}
	if dom < 0 {
		for _, d := range o.Sys.Doms {
			if d.NPoints() > 1 {
				set(d)
			}
		}
		return
	}
	set(o.domain(dom))
}

// SetMaxGridPoints caps the number of grid points of domain dom (< 0: all)
func (o *Sim) SetMaxGridPoints(dom, npmax int) {
	if dom < 0 {
		for _, d := range o.Sys.Doms {
			if d.NPoints() > 1 {
				o.gradRefiner(d).NPMax = npmax
			}
		}
		return
	}
	o.gradRefiner(o.domain(dom)).NPMax = npmax
}

// MaxGridPoints returns the point cap of domain dom
func (o *Sim) MaxGridPoints(dom int) int {
	if r, ok := o.refiners[o.domain(dom)]; ok {
		return r.MaxPoints()
	}
	return NewGradRefiner().NPMax
}

// SetGridMin sets the minimum grid spacing of domain dom (< 0: all)
func (o *Sim) SetGridMin(dom int, gridmin float64) {
	if dom < 0 {
		for _, d := range o.Sys.Doms {
			if d.NPoints() > 1 {
				o.gradRefiner(d).GridMin = gridmin
			}
		}
		return
	}
	o.gradRefiner(o.domain(dom)).GridMin = gridmin
}

// gradRefiner returns the gradient refiner of d, installing one if needed
func (o *Sim) gradRefiner(d Domain) *GradRefiner {
	if r, ok := o.refiners[d]; ok {
		if gr, ok2 := r.(*GradRefiner); ok2 {
			return gr
		}
		chk.Panic("domain %q uses a custom refinement policy; criteria must be set on it directly", d.ID())
	}
	gr := NewGradRefiner()
	o.refiners[d] = gr
	return gr
}

// finalize lets every domain record the converged solution
func (o *Sim) finalize() {
	for _, d := range o.Sys.Doms {
		d.Finalize(o.X)
	}
}

// resetBadValues corrects nonphysical trial values in place before assembly
func (o *Sim) resetBadValues() {
	for _, d := range o.Sys.Doms {
		d.ResetBadValues(o.X)
	}
}

// newtonSolve attempts one damped Newton solve of the steady problem.
// Failure is recoverable; X is only updated on success.
func (o *Sim) newtonSolve() (err error) {
	o.resetBadValues()
	o.Sys.SetSteadyMode()
	niter, err := o.Sys.Newt.Solve(o.Sys, o.X, o.Xnew)
	if err != nil {
		return
	}
	copy(o.X[:o.Sys.Size()], o.Xnew[:o.Sys.Size()])
	if o.Verbose {
		io.Pf("> newton converged in %d iteration(s)\n", niter)
	}
	return
}

// Solve drives the problem to a steady solution: damped Newton with a
// pseudo-time-stepping fallback, then (optionally) grid refinement until the
// refiner is satisfied. A convergence failure never discards the last
// successful steady or time-stepped state.
func (o *Sim) Solve(refineGrid bool) (err error) {
	newPoints := 1
	for newPoints > 0 {

		// hybrid Newton / time-stepping loop
		istep := 0
		dt := o.TStep
		solved := false
		for !solved {
			if o.Verbose {
				io.Pf("> attempting steady solve (dt fallback=%10.4g)\n", dt)
			}
			errNw := o.newtonSolve()
			if errNw == nil {
				solved = true
				o.finalize()
				if o.SteadyCallbk != nil {
					o.SteadyCallbk()
				}
				break
			}
			if o.Verbose {
				io.Pf("> steady solve failed: %v\n", errNw)
			}
			if istep >= len(o.Steps) {
				return chk.Err("time-stepping schedule exhausted without reaching the newton basin:\n%v", errNw)
			}
			nsteps := o.Steps[istep]
			istep++
			o.resetBadValues()
			dt, err = o.Sys.TimeStep(nsteps, dt, o.X, o.Xnew)
			o.saveTimeSteppingSolution()
			if err != nil {
				return chk.Err("pseudo-time stepping failed:\n%v", err)
			}
		}

		// grid refinement feedback
		if refineGrid {
			o.saveSteadySolution()
			newPoints, err = o.Refine()
			if err != nil {
				return
			}
			if newPoints > 0 && o.Verbose {
				io.Pf("> grid refined; re-solving\n")
			}
		} else {
			newPoints = 0
		}
	}
	return
}

// saveTimeSteppingSolution snapshots X after successful time stepping
func (o *Sim) saveTimeSteppingSolution() {
	o.XLastTS = append(o.XLastTS[:0], o.X...)
}

// saveSteadySolution snapshots X and the current grids before refinement
func (o *Sim) saveSteadySolution() {
	o.XLastSS = append(o.XLastSS[:0], o.X...)
	o.GridLastSS = o.GridLastSS[:0]
	for _, d := range o.Sys.Doms {
		if d.NPoints() > 1 {
			z := make([]float64, d.Grid().N())
			copy(z, d.Grid().Z)
			o.GridLastSS = append(o.GridLastSS, z)
		}
	}
}

// RestoreTimeSteppingSolution rolls X back to the last successful
// time-stepped state, for diagnosing a failed steady solve
func (o *Sim) RestoreTimeSteppingSolution() (err error) {
	if len(o.XLastTS) == 0 {
		return chk.Err("no successful time steps taken in this simulation")
	}
	copy(o.X, o.XLastTS)
	return
}

// RestoreSteadySolution rolls X and the grids back to the last converged
// steady state, for recovering from a refinement that fails to reconverge
func (o *Sim) RestoreSteadySolution() (err error) {
	if len(o.XLastSS) == 0 {
		return chk.Err("no successful steady state solution in this simulation")
	}
	i := 0
	for _, d := range o.Sys.Doms {
		if d.NPoints() > 1 {
			d.SetupGrid(o.GridLastSS[i])
			i++
		}
	}
	o.Sys.Rebuild()
	o.X = append(o.X[:0], o.XLastSS...)
	o.Xnew = make([]float64, len(o.X))
	o.UpdateBounds()
	return
}

// Refine consults the refinement policy of every multi-point domain,
// resizes grids, state, bounds and bookkeeping, and reinterpolates the
// state linearly onto the new grids. Returns the net point change.
func (o *Sim) Refine() (nChanged int, err error) {
	xnew := make([]float64, 0, len(o.X))
	for _, d := range o.Sys.Doms {
		nc := d.NComp()
		np := d.NPoints()
		if np < 2 {
			// boundary domains carry over unchanged
			for j := 0; j < np; j++ {
				for c := 0; c < nc; c++ {
					xnew = append(xnew, o.X[d.Index(c, j)])
				}
			}
			continue
		}
		r, ok := o.refiners[d]
		if !ok {
			r = o.gradRefiner(d)
		}
		g := d.Grid()
		insert, keep, errA := r.Analyze(d, g, o.X)
		if errA != nil {
			return 0, errA
		}
		if o.Verbose {
			showRefine(d, g, insert, keep)
		}
		znew := make([]float64, 0, g.N())
		for j := 0; j < np; j++ {
			if keep[j] {
				znew = append(znew, g.Z[j])
				for c := 0; c < nc; c++ {
					xnew = append(xnew, o.X[d.Index(c, j)])
				}
			} else {
				nChanged++
			}
			if j < np-1 && insert[j] {
				znew = append(znew, 0.5*(g.Z[j]+g.Z[j+1]))
				for c := 0; c < nc; c++ {
					vm := 0.5 * (o.X[d.Index(c, j)] + o.X[d.Index(c, j+1)])
					xnew = append(xnew, vm)
				}
				nChanged++
			}
		}
		d.SetupGrid(znew)
		d.Resize(len(znew))
	}
	xnew = append(xnew, o.X[len(o.X)-1]) // continuation parameter
	o.Sys.Rebuild()
	o.X = xnew
	o.Xnew = make([]float64, len(o.X))
	o.UpdateBounds()
	return
}

// SetFixedTemperature anchors a freely-propagating flame: the grid point
// where the temperature profile crosses t is located (inserted if
// necessary), its energy equation disabled, and its temperature pinned.
func (o *Sim) SetFixedTemperature(t float64) (err error) {
	for _, d := range o.Sys.Doms {
		fa, ok := d.(FlameAnchor)
		if !ok || d.NPoints() < 2 {
			continue
		}
		nT := fa.TempIndex()
		g := d.Grid()
		for j := 0; j < g.N()-1; j++ {
			t0 := o.X[d.Index(nT, j)]
			t1 := o.X[d.Index(nT, j+1)]
			if (t0-t)*(t1-t) >= 0 {
				continue
			}
			// crossing inside interval j: anchor onto an existing point
			// when the crossing is at (or numerically at) either end,
			// otherwise insert the anchor point first
			w := (t - t0) / (t1 - t0)
			jfix := j + 1
			if w < 1e-9 {
				jfix = j
			} else if w < 1-1e-9 {
				o.insertPoint(d, j, w)
			}
			fa.AnchorTemperature(jfix, t)
			o.X[d.Index(nT, jfix)] = t
			return nil
		}
		return chk.Err("temperature %g is not crossed by the profile of domain %q", t, d.ID())
	}
	return chk.Err("no flame domain can anchor a fixed temperature")
}

// insertPoint splits interval j of domain d at fraction w, interpolating
// every component linearly and rebuilding the global bookkeeping
func (o *Sim) insertPoint(d Domain, j int, w float64) {
	xnew := make([]float64, 0, len(o.X))
	for _, dd := range o.Sys.Doms {
		nc := dd.NComp()
		for p := 0; p < dd.NPoints(); p++ {
			for c := 0; c < nc; c++ {
				xnew = append(xnew, o.X[dd.Index(c, p)])
			}
			if dd == d && p == j {
				for c := 0; c < nc; c++ {
					v0 := o.X[dd.Index(c, j)]
					v1 := o.X[dd.Index(c, j+1)]
					xnew = append(xnew, v0+w*(v1-v0))
				}
			}
		}
	}
	xnew = append(xnew, o.X[len(o.X)-1])
	g := d.Grid()
	znew := make([]float64, 0, g.N()+1)
	znew = append(znew, g.Z[:j+1]...)
	znew = append(znew, g.Z[j]+w*(g.Z[j+1]-g.Z[j]))
	znew = append(znew, g.Z[j+1:]...)
	d.SetupGrid(znew)
	d.Resize(len(znew))
	o.Sys.Rebuild()
	o.X = xnew
	o.Xnew = make([]float64, len(o.X))
	o.UpdateBounds()
}

// continuation ////////////////////////////////////////////////////////////////////////////////////

// SetStrainRateValue sets the continuation parameter without rescaling
func (o *Sim) SetStrainRateValue(a float64) {
	o.Chi = a
	o.X[len(o.X)-1] = a
}

// StrainRate returns the continuation parameter value
func (o *Sim) StrainRate() float64 { return o.Chi }

// SetAmplifyThreshold sets the parameter change beyond which the velocity
// field and the inlet mass flows are rescaled
func (o *Sim) SetAmplifyThreshold(a float64) { o.AmplifyThr = a }

// SetFuelVelocity records the fuel-side inlet velocity entering the
// rescaled mass-flow condition
func (o *Sim) SetFuelVelocity(u float64) { o.UinF = u }

// SetOxidizerVelocity records the oxidizer-side inlet velocity
func (o *Sim) SetOxidizerVelocity(u float64) { o.UinO = u }

// SetFuelDensity records the fuel-side inlet density
func (o *Sim) SetFuelDensity(rho float64) { o.RhoinF = rho }

// SetOxidizerDensity records the oxidizer-side inlet density
func (o *Sim) SetOxidizerDensity(rho float64) { o.RhoinO = rho }

// SetStrainRate requests a new continuation parameter value. When the
// change exceeds the threshold, the interior velocity profile and the inlet
// mass-flow conditions are rescaled by newValue/oldValue so the initial
// guess stays consistent with the new parameter.
func (o *Sim) SetStrainRate(a1 float64) {
	if math.Abs(o.Chi-a1) > o.AmplifyThr && o.Chi != 0 {
		ratio := a1 / o.Chi

		// amplify the interior velocity field
		for _, d := range o.Sys.Doms {
			if vs, ok := d.(VelocityScaler); ok {
				vs.ScaleVelocities(o.X, ratio)
			}
		}

		// update the boundary mass-flow conditions
		o.UinF *= ratio
		o.UinO *= ratio
		mdots := []float64{o.RhoinF * o.UinF, o.RhoinO * o.UinO}
		i := 0
		for _, d := range o.Sys.Doms {
			if ms, ok := d.(MdotScaler); ok && i < len(mdots) {
				ms.SetMdot(mdots[i])
				i++
			}
		}
	}
	o.Chi = a1
	o.X[len(o.X)-1] = a1
}

// UnboundResidue evaluates the steady residual for a continuation trial
// state x (with trailing parameter), rescaling first if the parameter moved
func (o *Sim) UnboundResidue(x, f []float64) {
	copy(o.X, x[:len(o.X)])
	o.SetStrainRate(x[len(o.X)-1])
	o.Sys.SteadyEval(o.X, f)
}

// BoundResidue is the bound-aware variant: the trial state is projected
// onto [Lb,Ub] first and the residual is biased by the projected excess so
// roots outside the constrained region are pushed back toward feasibility
func (o *Sim) BoundResidue(x, f []float64) {
	n := len(o.X)
	xb := make([]float64, n)
	excess := 0.0
	for i := 0; i < n; i++ {
		switch {
		case x[i] < o.Lb[i]:
			xb[i] = o.Lb[i]
			excess += o.Lb[i] - x[i]
		case x[i] > o.Ub[i]:
			xb[i] = o.Ub[i]
			excess += x[i] - o.Ub[i]
		default:
			xb[i] = x[i]
		}
	}
	copy(o.X, xb)
	o.SetStrainRate(xb[n-1])
	o.Sys.SteadyEval(o.X, f)
	o.Sys.Newt.Penalize(f[:o.Sys.Size()], excess)
}

// adjoint /////////////////////////////////////////////////////////////////////////////////////////

// EvalSSJacobian assembles the steady Jacobian about the current solution
func (o *Sim) EvalSSJacobian() {
	o.Sys.SetSteadyMode()
	o.Sys.SteadyEval(o.X, o.Xnew)
	o.Sys.Jac.Eval(o.X, o.Xnew, 0)
}

// Jacobian reads one entry of the assembled Jacobian
func (o *Sim) Jacobian(i, j int) float64 {
	return o.Sys.Jac.Value(i, j)
}

// SolveAdjoint solves Jᵀ·lambda = b against the Jacobian of the last
// converged Newton step, without re-assembling the residual
func (o *Sim) SolveAdjoint(b, lambda []float64) (err error) {
	return o.Sys.Jac.SolveTranspose(lambda, b)
}
