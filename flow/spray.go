// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/gpavanb/goflame/onedim"
)

// Liquid holds the property correlations of the dispersed fuel: Antoine
// vapor pressure, Clausius-Clapeyron latent heat and DIPPR-105 liquid
// density, plus the constant liquid heat capacity.
type Liquid struct {
	Fuel string  // gas-phase species receiving the vapor
	CpL  float64 // liquid specific heat [J/kg/K]

	// Antoine correlation log10(p) = A - B/(C + T); Unit converts the
	// fitted pressure to Pa (MmHg2Pa or Bar2Pa)
	AntA, AntB, AntC float64
	Unit             float64

	// DIPPR-105 density A/B^(1+(1-T/C)^D); RhoConst is used when the
	// correlation coefficients are unset
	RhoA, RhoB, RhoC, RhoD float64
	RhoConst               float64
}

// VaporPressure evaluates the Antoine correlation at temperature t [Pa]
func (o *Liquid) VaporPressure(t float64) float64 {
	return math.Pow(10, o.AntA-o.AntB/(o.AntC+t)) * o.Unit
}

// LatentHeat returns the Clausius-Clapeyron latent heat derived from the
// Antoine slope, per unit mass of fuel with molecular weight wf [J/kg]
func (o *Liquid) LatentHeat(wf float64) float64 {
	return o.AntB * GasConstant / wf
}

// Density evaluates the DIPPR-105 liquid density at temperature t, falling
// back to the constant value when the correlation is not populated [kg/m³]
func (o *Liquid) Density(t float64) float64 {
	if o.RhoA <= 0 || o.RhoB <= 0 || o.RhoC <= 0 {
		return o.RhoConst
	}
	return o.RhoA / math.Pow(o.RhoB, 1+math.Pow(1-t/o.RhoC, o.RhoD))
}

// Spray appends the liquid-phase droplet equations to a Flow domain: radial
// and axial droplet velocity, droplet temperature, droplet mass and number
// density. Each interior row carries an artificial-viscosity term to keep
// the (hyperbolic) droplet transport stable on refined grids.
type Spray struct {
	Liq   *Liquid
	kFuel int
	wf    float64
	lv    float64 // latent heat at wf

	// component offsets within the flow layout
	iUl, ivl, iTl, iml, inl int

	// artificial-viscosity coefficients per droplet equation
	AvUl, AvVl, AvTl, AvMl, AvNl float64

	// left-boundary injection values
	InjUl, InjVl, InjTl, InjMl, InjNl float64

	// per-point caches from updateProps
	diam, mdot, q, fr, fz []float64

	dscr []float64 // diffusivity scratch
}

// newSpray appends the droplet components to the flow layout and returns
// the liquid-phase extension
func newSpray(f *Flow, liq *Liquid, npoints int) (o *Spray) {
	if liq == nil {
		chk.Panic("spray flow %q needs liquid-fuel properties", f.ID())
	}
	k := f.Thermo.SpeciesIndex(liq.Fuel)
	if k < 0 {
		chk.Panic("liquid fuel %q is not a species of the gas phase", liq.Fuel)
	}
	if liq.CpL <= 0 {
		chk.Panic("liquid fuel %q needs a positive heat capacity; got %g", liq.Fuel, liq.CpL)
	}
	o = new(Spray)
	o.Liq = liq
	o.kFuel = k
	o.wf = f.wt[k]
	o.lv = liq.LatentHeat(o.wf)
	o.InjTl = 300

	o.iUl = f.Lay.Append(onedim.Comp{Name: "Ul", Lower: -1e20, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.ivl = f.Lay.Append(onedim.Comp{Name: "vl", Lower: -1e20, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.iTl = f.Lay.Append(onedim.Comp{Name: "Tl", Lower: 200, Upper: 1e5, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.iml = f.Lay.Append(onedim.Comp{Name: "ml", Lower: 0, Upper: 1e5, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.inl = f.Lay.Append(onedim.Comp{Name: "nl", Lower: 0, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})

	o.dscr = make([]float64, f.nsp)
	o.resize(npoints)
	return
}

// SetInjection sets the droplet state imposed at the left boundary
func (o *Spray) SetInjection(ul, vl, tl, ml, nl float64) {
	o.InjUl, o.InjVl, o.InjTl, o.InjMl, o.InjNl = ul, vl, tl, ml, nl
}

// SetArtificialViscosity sets the stabilization coefficients of the five
// droplet equations
func (o *Spray) SetArtificialViscosity(avUl, avVl, avTl, avMl, avNl float64) {
	o.AvUl, o.AvVl, o.AvTl, o.AvMl, o.AvNl = avUl, avVl, avTl, avMl, avNl
}

func (o *Spray) resize(npoints int) {
	o.diam = make([]float64, npoints)
	o.mdot = make([]float64, npoints)
	o.q = make([]float64, npoints)
	o.fr = make([]float64, npoints)
	o.fz = make([]float64, npoints)
}

// Diameter returns the droplet diameter at point j from the last assembly
func (o *Spray) Diameter(j int) float64 { return o.diam[j] }

// Mdot returns the single-droplet evaporation rate at point j [kg/s]
func (o *Spray) Mdot(j int) float64 { return o.mdot[j] }

// updateProps refreshes the droplet diameter, drag forces, evaporation rate
// and film heat transfer over points j0..j1. A droplet mass below the
// extinction threshold zeroes everything so no row divides by a vanishing
// mass.
func (o *Spray) updateProps(f *Flow, x []float64, j0, j1 int) {
	for j := j0; j <= j1; j++ {
		ml := x[f.Index(o.iml, j)]
		if ml < SmallNumber {
			o.diam[j] = 0
			o.mdot[j] = 0
			o.q[j] = 0
			o.fr[j] = 0
			o.fz[j] = 0
			continue
		}
		tl := x[f.Index(o.iTl, j)]
		rhoL := o.Liq.Density(tl)
		d := math.Cbrt(6 * ml / (math.Pi * rhoL))
		o.diam[j] = d

		f.setGas(x, j)
		mu := f.Trans.Viscosity()
		o.fr[j] = 3 * math.Pi * d * mu * (f.V(x, j) - x[f.Index(o.iUl, j)])
		o.fz[j] = 3 * math.Pi * d * mu * (f.U(x, j) - x[f.Index(o.ivl, j)])

		// Spalding transfer number from the Antoine surface state
		prs := o.Liq.VaporPressure(tl)
		if prs > 0.999*f.Press {
			prs = 0.999 * f.Press
		}
		xs := prs / f.Press
		ys := xs * o.wf / (xs*o.wf + (1-xs)*f.wtm[j])
		yf := f.Y(x, o.kFuel, j)
		bm := (ys - yf) / (1 - ys)
		if bm < 0 {
			bm = 0
		}

		f.Trans.MixDiffCoeffs(o.dscr)
		o.mdot[j] = 2 * math.Pi * d * f.rho[j] * o.dscr[o.kFuel] * math.Log(1+bm)

		// film heat flow with the blowing correction
		cpg := f.cp[j]
		dT := f.T(x, j) - tl
		if bm > 0 {
			o.q[j] = cpg * dT / bm
		} else {
			o.q[j] = cpg * dT
		}
	}
}

// eval assembles the droplet residual rows and the gas-phase exchange terms
// over points jmin..jmax. Gas rows are already in place: exchange is added
// with +=, mirroring how boundary collaborators adjust edge rows.
func (o *Spray) eval(f *Flow, x, rsd []float64, mask []int, jmin, jmax int, rdt float64) {
	np := f.NPoints()
	for j := jmin; j <= jmax; j++ {
		switch {
		case j == 0:
			o.evalInjection(f, x, rsd, mask)
		case j == np-1:
			o.evalOutflow(f, x, rsd, mask, j)
		default:
			o.evalInterior(f, x, rsd, mask, j, rdt)
		}
	}
}

// evalInjection pins the droplet state at the left boundary to the injected
// values
func (o *Spray) evalInjection(f *Flow, x, rsd []float64, mask []int) {
	set := func(n int, inj float64) {
		i := f.Index(n, 0)
		rsd[i] = x[i] - inj
		mask[i] = 0
	}
	set(o.iUl, o.InjUl)
	set(o.ivl, o.InjVl)
	set(o.iTl, o.InjTl)
	set(o.iml, o.InjMl)
	set(o.inl, o.InjNl)
}

// evalOutflow imposes zero-gradient closure at the right boundary
func (o *Spray) evalOutflow(f *Flow, x, rsd []float64, mask []int, j int) {
	for _, n := range []int{o.iUl, o.ivl, o.iTl, o.iml, o.inl} {
		i := f.Index(n, j)
		rsd[i] = x[i] - x[f.Index(n, j-1)]
		mask[i] = 0
	}
}

func (o *Spray) evalInterior(f *Flow, x, rsd []float64, mask []int, j int, rdt float64) {
	ml := x[f.Index(o.iml, j)]
	nl := x[f.Index(o.inl, j)]
	if nl < 0 {
		nl = 0
	}
	vl := x[f.Index(o.ivl, j)]

	// upwind toward the droplet flow direction
	jloc := j
	if vl <= 0 {
		jloc = j + 1
	}
	dz := f.G.Dz[jloc-1]
	grad := func(n int) float64 {
		return (x[f.Index(n, jloc)] - x[f.Index(n, jloc-1)]) / dz
	}

	alive := ml >= SmallNumber

	// radial droplet momentum
	i := f.Index(o.iUl, j)
	r := -vl * grad(o.iUl)
	if alive {
		r += o.fr[j] / ml
	}
	r += o.av(f, x, o.iUl, o.AvUl, j)
	rsd[i] = r - rdt*(x[i]-f.PrevSoln(o.iUl, j))
	mask[i] = 1

	// axial droplet momentum
	i = f.Index(o.ivl, j)
	r = -vl * grad(o.ivl)
	if alive {
		r += o.fz[j] / ml
	}
	r += o.av(f, x, o.ivl, o.AvVl, j)
	rsd[i] = r - rdt*(x[i]-f.PrevSoln(o.ivl, j))
	mask[i] = 1

	// droplet temperature: film heating less the latent sink
	i = f.Index(o.iTl, j)
	r = -vl * grad(o.iTl)
	if alive {
		r += o.mdot[j] * (o.q[j] - o.lv) / (ml * o.Liq.CpL)
	}
	r += o.av(f, x, o.iTl, o.AvTl, j)
	rsd[i] = r - rdt*(x[i]-f.PrevSoln(o.iTl, j))
	mask[i] = 1

	// droplet mass: evaporation
	i = f.Index(o.iml, j)
	r = -vl*grad(o.iml) - o.mdot[j] + o.av(f, x, o.iml, o.AvMl, j)
	rsd[i] = r - rdt*(x[i]-f.PrevSoln(o.iml, j))
	mask[i] = 1

	// number density: flux divergence with the radial dilution term
	i = f.Index(o.inl, j)
	dnv := (x[f.Index(o.inl, jloc)]*x[f.Index(o.ivl, jloc)] -
		x[f.Index(o.inl, jloc-1)]*x[f.Index(o.ivl, jloc-1)]) / dz
	r = -dnv - 2*nl*x[f.Index(o.iUl, j)] + o.av(f, x, o.inl, o.AvNl, j)
	rsd[i] = r - rdt*(x[i]-f.PrevSoln(o.inl, j))
	mask[i] = 1

	// gas-phase exchange: evaporated mass, fuel vapor, film heat and drag
	src := nl * o.mdot[j]
	rsd[f.Index(CompU, j)] += src
	for k := 0; k < f.nsp; k++ {
		del := 0.0
		if k == o.kFuel {
			del = 1.0
		}
		rsd[f.Index(CompY+k, j)] += src * (del - f.Y(x, k, j)) / f.rho[j]
	}
	if f.doEnergy[j] {
		rsd[f.Index(CompT, j)] -= src * o.q[j] / (f.rho[j] * f.cp[j])
	}
	rsd[f.Index(CompV, j)] -= nl * o.fr[j] / f.rho[j]
}

// av is the artificial-viscosity second difference of component n at point j
func (o *Spray) av(f *Flow, x []float64, n int, coeff float64, j int) float64 {
	if coeff == 0 {
		return 0
	}
	c1 := (x[f.Index(n, j+1)] - x[f.Index(n, j)]) / f.G.Dz[j]
	c2 := (x[f.Index(n, j)] - x[f.Index(n, j-1)]) / f.G.Dz[j-1]
	return coeff * 2 * (c1 - c2) / (f.G.Z[j+1] - f.G.Z[j-1])
}

// initialSoln fills a droplet-free quiescent estimate
func (o *Spray) initialSoln(f *Flow, x []float64) {
	for j := 0; j < f.NPoints(); j++ {
		x[f.Index(o.iUl, j)] = 0
		x[f.Index(o.ivl, j)] = 0
		x[f.Index(o.iTl, j)] = o.InjTl
		x[f.Index(o.iml, j)] = 0
		x[f.Index(o.inl, j)] = 0
	}
}

// resetBadValues clips negative droplet mass and number density
func (o *Spray) resetBadValues(f *Flow, x []float64) {
	for j := 0; j < f.NPoints(); j++ {
		for _, n := range []int{o.iml, o.inl} {
			if i := f.Index(n, j); x[i] < 0 {
				x[i] = 0
			}
		}
	}
}

// NewSprayFlow returns a stagnation flow domain extended with the liquid
// droplet phase
func NewSprayFlow(id string, therm ThermoPhase, kin Kinetics, trans Transport, liq *Liquid, press float64, npoints int) (o *Flow) {
	o = NewFlow(id, therm, kin, trans, AxiStagnation, press, npoints)
	o.Spray = newSpray(o, liq, npoints)
	return
}
