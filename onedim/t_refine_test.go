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

func Test_refine01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("refine01. gradient refiner targets the steep front")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 21), 0, 1, 0)
	sys := NewSystem(d)

	// steep tanh front at z=0.5
	x := make([]float64, sys.Size())
	for j := 0; j < d.NPoints(); j++ {
		x[d.Index(0, j)] = 0.5 * (1 + math.Tanh(40*(d.G.Z[j]-0.5)))
	}

	r := NewGradRefiner()
	r.Slope = 0.2
	r.Curve = 0.2
	insert, keep, err := r.Analyze(d, d.Grid(), x)
	if err != nil {
		tst.Errorf("analyze failed: %v\n", err)
		return
	}

	nins := 0
	for _, in := range insert {
		if in {
			nins++
		}
	}
	io.Pf("inserting %d point(s)\n", nins)
	if nins == 0 {
		tst.Errorf("the front must trigger insertions\n")
	}

	// boundary points always survive; pruning disabled keeps everything
	if !keep[0] || !keep[len(keep)-1] {
		tst.Errorf("boundary points must be kept\n")
	}
	for j, k := range keep {
		if !k {
			tst.Errorf("pruning is disabled but point %d is marked removable\n", j)
		}
	}

	// the flat tails must not be refined
	if insert[0] || insert[len(insert)-1] {
		tst.Errorf("flat tail intervals must not be subdivided\n")
	}
}

func Test_refine02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("refine02. point budget and spacing-ratio rule")

	// grid with a spacing jump beyond the allowed ratio
	z := []float64{0, 0.001, 0.002, 0.5, 1}
	d := newReactDiff("rod", z, 0, 0, 0)
	sys := NewSystem(d)
	x := make([]float64, sys.Size())

	r := NewGradRefiner()
	insert, _, err := r.Analyze(d, d.Grid(), x)
	if err != nil {
		tst.Errorf("analyze failed: %v\n", err)
		return
	}
	if !insert[2] {
		tst.Errorf("interval 2 violates the spacing ratio and must be subdivided\n")
	}

	// a full grid is an error and no further insertions are budgeted
	r2 := NewGradRefiner()
	r2.NPMax = 5
	insert, _, err = r2.Analyze(d, d.Grid(), x)
	if err == nil {
		tst.Errorf("a grid at the point cap must report an error\n")
	}
	for j, in := range insert {
		if in {
			tst.Errorf("no insertion may exceed the budget; interval %d marked\n", j)
		}
	}
}

func Test_refine03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("refine03. refinement preserves a linear profile")

	d := newReactDiff("rod", utl.LinSpace(0, 1, 6), 1, 3, 0)
	sim := NewSim(d)
	sim.SetProfile(0, 0, []float64{0, 1}, []float64{1, 3})

	// a low slope threshold subdivides every interval
	sim.SetRefineCriteria(-1, 10, 0.1, 1, -0.1)
	nch, err := sim.Refine()
	if err != nil {
		tst.Errorf("refine failed: %v\n", err)
		return
	}
	chk.Ints(tst, "points,changes", []int{d.NPoints(), nch}, []int{11, 5})

	// every value, kept or inserted, still lies on the line
	for j := 0; j < d.NPoints(); j++ {
		z := d.Grid().Z[j]
		chk.Float64(tst, io.Sf("c(z=%.2f)", z), 1e-14, sim.X[d.Index(0, j)], 1+2*z)
	}
}
