// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Refiner decides where a domain's grid needs points inserted or removed.
// The engine owns the resizing and reinterpolation; policies only analyze.
type Refiner interface {
	Analyze(d Domain, g *Grid, x []float64) (insert, keep []bool, err error)
	MaxPoints() int
}

// GradRefiner is the gradient-based refinement policy: intervals whose
// value jump or slope jump exceeds a fraction of the domain-wide variation
// are subdivided; points contributing nothing beyond the prune fraction are
// removed; neighboring interval length ratios are kept within Ratio.
type GradRefiner struct {
	Ratio   float64 // maximum ratio of adjacent grid spacings
	Slope   float64 // fraction of total value variation triggering insertion
	Curve   float64 // fraction of total slope variation triggering insertion
	Prune   float64 // variation fraction below which points are removable (≤0 disables)
	NPMax   int     // maximum number of points
	GridMin float64 // minimum allowable grid spacing
}

// NewGradRefiner returns a refiner with the customary defaults
func NewGradRefiner() (o *GradRefiner) {
	o = new(GradRefiner)
	o.Ratio = 10.0
	o.Slope = 0.8
	o.Curve = 0.8
	o.Prune = -0.1
	o.NPMax = 1000
	o.GridMin = 1e-10
	return
}

// MaxPoints returns the point-count cap
func (o *GradRefiner) MaxPoints() int { return o.NPMax }

// Analyze inspects every component profile of domain d and returns, per
// interval, whether a midpoint must be inserted and, per point, whether the
// point must be kept.
func (o *GradRefiner) Analyze(d Domain, g *Grid, x []float64) (insert, keep []bool, err error) {
	n := g.N()
	insert = make([]bool, n-1)
	keep = make([]bool, n)
	keep[0] = true
	keep[n-1] = true
	if n < 3 {
		for j := range keep {
			keep[j] = true
		}
		return
	}
	if n >= o.NPMax {
		err = chk.Err("domain %q already has the maximum of %d points", d.ID(), o.NPMax)
	}

	const tiny = 1e-300
	lay := d.Layout()
	v := make([]float64, n)
	s := make([]float64, n-1)
	for nc := 0; nc < lay.NComp(); nc++ {
		vmin, vmax := math.Inf(1), math.Inf(-1)
		for j := 0; j < n; j++ {
			v[j] = x[d.Index(nc, j)]
			vmin = math.Min(vmin, v[j])
			vmax = math.Max(vmax, v[j])
		}
		smin, smax := math.Inf(1), math.Inf(-1)
		for j := 0; j < n-1; j++ {
			s[j] = (v[j+1] - v[j]) / g.Dz[j]
			smin = math.Min(smin, s[j])
			smax = math.Max(smax, s[j])
		}
		aa := math.Max(math.Abs(vmax), math.Abs(vmin))
		ss := math.Max(math.Abs(smax), math.Abs(smin))

		// refine intervals with too large a change in value
		dmax := o.Slope*(vmax-vmin) + 1e-5*aa + tiny
		for j := 0; j < n-1; j++ {
			r := math.Abs(v[j+1] - v[j])
			if r > dmax && g.Dz[j] >= 2*o.GridMin {
				insert[j] = true
				keep[j] = true
				keep[j+1] = true
			}
			if r > o.Prune*(vmax-vmin) {
				keep[j] = true
				keep[j+1] = true
			}
		}

		// refine intervals bounding too large a change in slope
		dmax = o.Curve*(smax-smin) + 1e-5*ss + tiny
		for j := 0; j < n-2; j++ {
			r := math.Abs(s[j+1] - s[j])
			if r > dmax {
				if g.Dz[j] >= 2*o.GridMin {
					insert[j] = true
				}
				if g.Dz[j+1] >= 2*o.GridMin {
					insert[j+1] = true
				}
				keep[j] = true
				keep[j+1] = true
				keep[j+2] = true
			}
			if r > o.Prune*(smax-smin) {
				keep[j+1] = true
			}
		}
	}

	// keep the spacing ratio of adjacent intervals within bounds
	for j := 1; j < n-1; j++ {
		if g.Dz[j] > o.Ratio*g.Dz[j-1] && g.Dz[j] >= 2*o.GridMin {
			insert[j] = true
			keep[j] = true
			keep[j+1] = true
		}
		if g.Dz[j-1] > o.Ratio*g.Dz[j] && g.Dz[j-1] >= 2*o.GridMin {
			insert[j-1] = true
			keep[j-1] = true
			keep[j] = true
		}
	}

	// pruning disabled: everything stays
	if o.Prune <= 0 {
		for j := range keep {
			keep[j] = true
		}
	}

	// honor the point budget
	budget := o.NPMax - n
	for j := range insert {
		if insert[j] {
			if budget <= 0 {
				insert[j] = false
			} else {
				budget--
			}
		}
	}
	return
}

// showRefine lists the refinement decisions
func showRefine(d Domain, g *Grid, insert, keep []bool) {
	nins, nrem := 0, 0
	for j := range insert {
		if insert[j] {
			nins++
		}
	}
	for j := range keep {
		if !keep[j] {
			nrem++
		}
	}
	io.Pf("  refine %q: %d point(s) inserted, %d removed (np: %d -> %d)\n",
		d.ID(), nins, nrem, g.N(), g.N()+nins-nrem)
}
