// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. state access and profile initialization")

	d := newReactDiff("rod", utl.LinSpace(0, 2, 5), 0.5, 0.5, 1)
	sim := NewSim(d)

	// InitialSoln filled the flat estimate
	chk.Float64(tst, "c(0) initial", 1e-17, sim.Value(0, 0, 0), 0.5)

	sim.SetValue(0, 0, 2, 1.5)
	chk.Float64(tst, "c(2) set", 1e-17, sim.Value(0, 0, 2), 1.5)

	// piecewise-linear profile over relative positions
	sim.SetProfile(0, 0, []float64{0, 0.5, 1}, []float64{0, 2, 0})
	chk.Float64(tst, "c(0) profile", 1e-15, sim.Value(0, 0, 0), 0)
	chk.Float64(tst, "c(1) profile", 1e-15, sim.Value(0, 0, 1), 1)
	chk.Float64(tst, "c(2) profile", 1e-15, sim.Value(0, 0, 2), 2)
	chk.Float64(tst, "c(3) profile", 1e-15, sim.Value(0, 0, 3), 1)

	sim.SetFlatProfile(0, 0, 0.25)
	chk.Float64(tst, "c(3) flat", 1e-17, sim.Value(0, 0, 3), 0.25)

	sim.SetInitialGuess("c", []float64{0, 1}, []float64{1, 1})
	chk.Float64(tst, "c(4) guess", 1e-17, sim.Value(0, 0, 4), 1)

	// bounds carry the trailing continuation parameter row
	n := sim.SystemSize()
	chk.Ints(tst, "sizes", []int{n, len(sim.Lb), len(sim.Ub)}, []int{6, 6, 6})
	chk.Float64(tst, "param lower", 1e-17, sim.Lb[n-1], 0)
	chk.Float64(tst, "param upper", 1e-17, sim.Ub[n-1], 1e10)
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. hybrid solve with grid refinement")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 9), 0, 0, 25)
	sim := NewSim(d)
	sim.SetMaxGridPoints(-1, 60)
	sim.SetRefineCriteria(-1, 10, 0.2, 0.8, -0.1)

	calls := 0
	sim.SteadyCallbk = func() { calls++ }

	err := sim.Solve(true)
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	io.Pf("grid: 9 -> %d points, %d steady solve(s)\n", d.NPoints(), calls)
	if d.NPoints() <= 9 {
		tst.Errorf("refinement must have added points\n")
	}
	if calls < 2 {
		tst.Errorf("every refinement pass ends in a steady solve; got %d\n", calls)
	}

	r := make([]float64, sim.Sys.Size())
	if ss := sim.Sys.SSNorm(sim.X, r); ss > 1e-6 {
		tst.Errorf("steady residual too large after refinement: %g\n", ss)
	}

	// rollback to the last steady solution restores grid and state
	zsave := append([]float64{}, d.Grid().Z...)
	xsave := append([]float64{}, sim.X...)
	sim.SetFlatProfile(0, 0, -1)
	err = sim.RestoreSteadySolution()
	if err != nil {
		tst.Errorf("restore failed: %v\n", err)
		return
	}
	chk.Array(tst, "grid restored", 1e-17, d.Grid().Z, zsave)
	chk.Array(tst, "state restored", 1e-17, sim.X, xsave)
}

func Test_sim03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim03. snapshots round-trip through yaml files")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 7), 0, 1, 2)
	sim := NewSim(d)
	err := sim.Solve(false)
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	sim.SetStrainRateValue(120)

	fname := filepath.Join(os.TempDir(), "goflame_rod_snapshot.yaml")
	defer os.Remove(fname)
	if err = sim.Save(fname, "rod", "converged rod"); err != nil {
		tst.Errorf("save failed: %v\n", err)
		return
	}

	xsave := append([]float64{}, sim.X...)
	sim.SetFlatProfile(0, 0, 0)
	sim.SetStrainRateValue(0)

	if err = sim.Restore(fname); err != nil {
		tst.Errorf("restore failed: %v\n", err)
		return
	}
	chk.Array(tst, "state", 1e-14, sim.X, xsave)
	chk.Float64(tst, "chi", 1e-14, sim.StrainRate(), 120)

	// a snapshot with mismatched grids is rejected
	s := sim.TakeSnapshot("bad", "broken")
	s.Grids = nil
	if err = sim.ApplySnapshot(s); err == nil {
		tst.Errorf("snapshot with missing grids must be rejected\n")
	}
}
