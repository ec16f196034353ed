// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"github.com/cpmech/gosl/chk"

	"github.com/gpavanb/goflame/onedim"
)

// Inlet is a single-point boundary domain imposing mass flow, temperature
// and composition on the adjacent edge of its neighbor flow. It carries two
// unknowns of its own (mdot and temperature, pinned to the prescribed
// values) and adjusts the neighbor's edge rows in place, so the flow never
// needs to know which boundary it faces.
type Inlet struct {
	onedim.DomBase

	Mdt  float64 // prescribed mass flow rate per unit area [kg/m²/s]
	Temp float64 // inlet temperature [K]
	V0   float64 // inlet spreading rate [1/s]

	yin  []float64
	flow *Flow

	// droplet injection carried to a spray neighbor
	sprayInj  [5]float64
	haveSpray bool

	maskScratch []int
}

// NewInlet returns an inlet feeding flow domain f; its side (left or right
// of f) follows from the domain ordering handed to the simulation
func NewInlet(id string, f *Flow) (o *Inlet) {
	if f == nil {
		chk.Panic("inlet %q needs a flow domain", id)
	}
	o = new(Inlet)
	o.Name = id
	o.flow = f
	o.Temp = 300
	o.yin = make([]float64, f.NSpecies())
	o.yin[0] = 1
	o.Lay = onedim.NewLayout()
	o.Lay.Append(onedim.Comp{Name: "mdot", Lower: -1e20, Upper: 1e20, Rtol: 1e-5, Atol: 1e-12})
	o.Lay.Append(onedim.Comp{Name: "temperature", Lower: -1e20, Upper: 1e20, Rtol: 1e-5, Atol: 1e-12})
	o.SetupGrid([]float64{0})
	return
}

// Mdot returns the prescribed mass flow rate
func (o *Inlet) Mdot() float64 { return o.Mdt }

// SetMdot sets the mass flow rate; also called by the continuation rescale
func (o *Inlet) SetMdot(mdot float64) { o.Mdt = mdot }

// SetTemperature sets the inlet temperature
func (o *Inlet) SetTemperature(t float64) { o.Temp = t }

// SetSpreadRate sets the inlet spreading (strain) rate
func (o *Inlet) SetSpreadRate(v0 float64) { o.V0 = v0 }

// SetMassFractions sets the inlet composition; y is normalized in place
func (o *Inlet) SetMassFractions(y []float64) {
	if len(y) != len(o.yin) {
		chk.Panic("inlet %q expects %d mass fractions; got %d", o.Name, len(o.yin), len(y))
	}
	sum := 0.0
	for _, yk := range y {
		sum += yk
	}
	if sum <= 0 {
		chk.Panic("inlet %q composition sums to %g", o.Name, sum)
	}
	for k, yk := range y {
		o.yin[k] = yk / sum
	}
}

// SetComposition sets the inlet composition by species name
func (o *Inlet) SetComposition(comp map[string]float64) {
	y := make([]float64, len(o.yin))
	for name, v := range comp {
		k := o.flow.Thermo.SpeciesIndex(name)
		if k < 0 {
			chk.Panic("inlet %q: species %q is not in the gas phase", o.Name, name)
		}
		y[k] = v
	}
	o.SetMassFractions(y)
}

// MassFraction returns the inlet mass fraction of species k
func (o *Inlet) MassFraction(k int) float64 { return o.yin[k] }

// SetSprayInjection sets the droplet state injected with the gas; only
// meaningful when the neighbor flow carries the liquid phase
func (o *Inlet) SetSprayInjection(ul, vl, tl, ml, nl float64) {
	o.sprayInj = [5]float64{ul, vl, tl, ml, nl}
	o.haveSpray = true
	if o.flow.Spray != nil {
		o.flow.Spray.SetInjection(ul, vl, tl, ml, nl)
	}
}

// InitialSoln seeds the inlet unknowns with the prescribed values
func (o *Inlet) InitialSoln(x []float64) {
	x[o.Index(0, 0)] = o.Mdt
	x[o.Index(1, 0)] = o.Temp
}

// Eval pins the inlet's own rows and folds the prescribed conditions into
// the neighbor flow's edge rows
func (o *Inlet) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	if !o.Touches(jGlobal) {
		return
	}
	if mask == nil {
		if len(o.maskScratch) < len(rsd) {
			o.maskScratch = make([]int, len(rsd))
		}
		mask = o.maskScratch
	}
	i0 := o.Index(0, 0)
	i1 := o.Index(1, 0)
	rsd[i0] = o.Mdt - x[i0]
	rsd[i1] = o.Temp - x[i1]
	mask[i0] = 0
	mask[i1] = 0

	f := o.flow
	kexL, kexR := f.ExcessSpecies()
	if fr, ok := o.Right().(*Flow); ok && fr == f {
		// left inlet: feed the first point of the flow
		rsd[f.Index(CompV, 0)] -= o.V0
		if f.EnergyEnabled(0) {
			rsd[f.Index(CompT, 0)] -= o.Temp
		}
		if f.FixedMassFlux() {
			rsd[f.Index(CompL, 0)] += o.Mdt
		} else {
			// the mass flux floats; read it back from the solution
			o.Mdt = f.Density(0) * f.U(x, 0)
		}
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexL {
				rsd[f.Index(CompY+k, 0)] += o.Mdt * o.yin[k]
			}
		}
		if f.Spray != nil && o.haveSpray {
			s := o.sprayInj
			f.Spray.SetInjection(s[0], s[1], s[2], s[3], s[4])
		}
		return
	}
	if fl, ok := o.Left().(*Flow); ok && fl == f {
		// right inlet: feed the last point of the flow
		j := f.NPoints() - 1
		rsd[f.Index(CompV, j)] -= o.V0
		if f.EnergyEnabled(j) {
			rsd[f.Index(CompT, j)] -= o.Temp
		}
		rsd[f.Index(CompU, j)] += o.Mdt
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexR {
				rsd[f.Index(CompY+k, j)] += o.Mdt * o.yin[k]
			}
		}
		return
	}
	chk.Panic("inlet %q is not adjacent to its flow domain %q", o.Name, f.ID())
}

// Outlet is a single-point boundary domain imposing zero-gradient outflow
// on the adjacent edge of its neighbor flow. Its single unknown is a dummy
// pinned to zero so the global bookkeeping stays uniform.
type Outlet struct {
	onedim.DomBase

	flow        *Flow
	maskScratch []int
}

// NewOutlet returns an outlet attached to flow domain f
func NewOutlet(id string, f *Flow) (o *Outlet) {
	if f == nil {
		chk.Panic("outlet %q needs a flow domain", id)
	}
	o = new(Outlet)
	o.Name = id
	o.flow = f
	o.Lay = onedim.NewLayout()
	o.Lay.Append(onedim.Comp{Name: "dummy", Lower: -1e20, Upper: 1e20, Rtol: 1e-5, Atol: 1e-12})
	o.SetupGrid([]float64{0})
	return
}

// Eval pins the dummy row and replaces the neighbor's edge temperature and
// species rows by zero-gradient closures
func (o *Outlet) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	if !o.Touches(jGlobal) {
		return
	}
	if mask == nil {
		if len(o.maskScratch) < len(rsd) {
			o.maskScratch = make([]int, len(rsd))
		}
		mask = o.maskScratch
	}
	i0 := o.Index(0, 0)
	rsd[i0] = -x[i0]
	mask[i0] = 0

	f := o.flow
	kexL, kexR := f.ExcessSpecies()
	if fl, ok := o.Left().(*Flow); ok && fl == f {
		j := f.NPoints() - 1
		if f.EnergyEnabled(j) {
			rsd[f.Index(CompT, j)] = f.T(x, j) - f.T(x, j-1)
		}
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexR {
				rsd[f.Index(CompY+k, j)] = f.Y(x, k, j) - f.Y(x, k, j-1)
			}
		}
		return
	}
	if fr, ok := o.Right().(*Flow); ok && fr == f {
		if f.EnergyEnabled(0) {
			rsd[f.Index(CompT, 0)] = f.T(x, 0) - f.T(x, 1)
		}
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexL {
				rsd[f.Index(CompY+k, 0)] = f.Y(x, k, 0) - f.Y(x, k, 1)
			}
		}
		return
	}
	chk.Panic("outlet %q is not adjacent to its flow domain %q", o.Name, f.ID())
}

// OutletRes is an outlet backed by a reservoir: instead of zero-gradient
// closure it pins the neighbor's edge temperature and composition to the
// reservoir state, so backflow re-enters with known properties.
type OutletRes struct {
	onedim.DomBase

	Temp float64
	yres []float64

	flow        *Flow
	maskScratch []int
}

// NewOutletRes returns a reservoir outlet attached to flow domain f
func NewOutletRes(id string, f *Flow) (o *OutletRes) {
	if f == nil {
		chk.Panic("outlet %q needs a flow domain", id)
	}
	o = new(OutletRes)
	o.Name = id
	o.flow = f
	o.Temp = 300
	o.yres = make([]float64, f.NSpecies())
	o.yres[0] = 1
	o.Lay = onedim.NewLayout()
	o.Lay.Append(onedim.Comp{Name: "dummy", Lower: -1e20, Upper: 1e20, Rtol: 1e-5, Atol: 1e-12})
	o.SetupGrid([]float64{0})
	return
}

// SetTemperature sets the reservoir temperature
func (o *OutletRes) SetTemperature(t float64) { o.Temp = t }

// SetMassFractions sets the reservoir composition; y is normalized in place
func (o *OutletRes) SetMassFractions(y []float64) {
	if len(y) != len(o.yres) {
		chk.Panic("outlet %q expects %d mass fractions; got %d", o.Name, len(o.yres), len(y))
	}
	sum := 0.0
	for _, yk := range y {
		sum += yk
	}
	if sum <= 0 {
		chk.Panic("outlet %q composition sums to %g", o.Name, sum)
	}
	for k, yk := range y {
		o.yres[k] = yk / sum
	}
}

// SetComposition sets the reservoir composition by species name
func (o *OutletRes) SetComposition(comp map[string]float64) {
	y := make([]float64, len(o.yres))
	for name, v := range comp {
		k := o.flow.Thermo.SpeciesIndex(name)
		if k < 0 {
			chk.Panic("outlet %q: species %q is not in the gas phase", o.Name, name)
		}
		y[k] = v
	}
	o.SetMassFractions(y)
}

// Eval pins the dummy row and replaces the neighbor's edge temperature and
// species rows by the reservoir state
func (o *OutletRes) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	if !o.Touches(jGlobal) {
		return
	}
	if mask == nil {
		if len(o.maskScratch) < len(rsd) {
			o.maskScratch = make([]int, len(rsd))
		}
		mask = o.maskScratch
	}
	i0 := o.Index(0, 0)
	rsd[i0] = -x[i0]
	mask[i0] = 0

	f := o.flow
	kexL, kexR := f.ExcessSpecies()
	if fl, ok := o.Left().(*Flow); ok && fl == f {
		j := f.NPoints() - 1
		if f.EnergyEnabled(j) {
			rsd[f.Index(CompT, j)] = f.T(x, j) - o.Temp
		}
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexR {
				rsd[f.Index(CompY+k, j)] = f.Y(x, k, j) - o.yres[k]
			}
		}
		return
	}
	if fr, ok := o.Right().(*Flow); ok && fr == f {
		if f.EnergyEnabled(0) {
			rsd[f.Index(CompT, 0)] = f.T(x, 0) - o.Temp
		}
		for k := 0; k < f.NSpecies(); k++ {
			if k != kexL {
				rsd[f.Index(CompY+k, 0)] = f.Y(x, k, 0) - o.yres[k]
			}
		}
		return
	}
	chk.Panic("outlet %q is not adjacent to its flow domain %q", o.Name, f.ID())
}
