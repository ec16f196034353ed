// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import "github.com/cpmech/gosl/chk"

// Comp describes one solution component of a domain: its name, bound box,
// error-weighting tolerances and whether it carries a pseudo-time derivative
// (differential) or is purely algebraic.
type Comp struct {
	Name         string  // component key; e.g. "u", "V", "T"
	Lower, Upper float64 // bound box for the Newton iterates
	Rtol, Atol   float64 // relative and absolute error weights
	TimeDeriv    bool    // component carries d/dt term during time stepping
}

// Layout is the ordered component descriptor of one domain. It is built once
// per domain and shared by the assembler, the bounds arrays and any
// introspection; nothing else may hand-derive component offsets.
type Layout struct {
	comps  []Comp
	byName map[string]int
}

// NewLayout returns an empty layout
func NewLayout() (o *Layout) {
	o = new(Layout)
	o.byName = make(map[string]int)
	return
}

// Append adds one component to the end of the layout and returns its index.
// Panics on duplicated names since this is a setup-time programmer error.
func (o *Layout) Append(c Comp) int {
	if _, ok := o.byName[c.Name]; ok {
		chk.Panic("component %q is already in layout", c.Name)
	}
	o.byName[c.Name] = len(o.comps)
	o.comps = append(o.comps, c)
	return len(o.comps) - 1
}

// NComp returns the number of components per point
func (o *Layout) NComp() int { return len(o.comps) }

// Name returns the name of component n
func (o *Layout) Name(n int) string {
	if n < 0 || n >= len(o.comps) {
		chk.Panic("component index %d is out of range [0,%d)", n, len(o.comps))
	}
	return o.comps[n].Name
}

// Index returns the index of the named component or -1 if absent
func (o *Layout) Index(name string) int {
	if n, ok := o.byName[name]; ok {
		return n
	}
	return -1
}

// Comp returns the descriptor of component n
func (o *Layout) Comp(n int) *Comp {
	if n < 0 || n >= len(o.comps) {
		chk.Panic("component index %d is out of range [0,%d)", n, len(o.comps))
	}
	return &o.comps[n]
}

// Bounds returns the bound box of component n
func (o *Layout) Bounds(n int) (lo, hi float64) {
	c := o.Comp(n)
	return c.Lower, c.Upper
}
