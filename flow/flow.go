// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/gpavanb/goflame/onedim"
)

// gas-phase component offsets within each grid point
const (
	CompU = iota // axial velocity [m/s]
	CompV        // strain rate: radial velocity divided by radius [1/s]
	CompT        // temperature [K]
	CompL        // pressure eigenvalue (1/r)(dP/dr) [Pa/m²]
	CompY        // first species mass fraction
)

// Flow is the 1D similarity flow domain: it assembles the steady (or
// pseudo-transient) conservation equations of mass, radial momentum, energy
// and species on its grid. Flow-configuration differences (stagnation vs
// freely-propagating) live in the strategy hooks; an optional liquid phase
// appends the droplet components.
type Flow struct {
	onedim.DomBase

	Thermo ThermoPhase
	Kin    Kinetics
	Trans  Transport

	Press float64  // operating pressure [Pa]
	Type  FlowType // flow configuration

	nsp   int
	wt    []float64
	strat *flowStrategy

	// options
	multi     bool      // multicomponent diffusion instead of mixture-averaged
	soret     bool      // thermal diffusion (requires multi)
	doEnergy  []bool    // per point: solve the energy equation
	fixedTemp []float64 // temperature pinned where doEnergy is off
	tfixProfZ []float64 // relative positions of the fixed-T profile
	tfixProfT []float64 // temperatures of the fixed-T profile
	zfixed    float64   // anchor location (freely-propagating flames)
	tfixed    float64   // anchor temperature

	// radiation
	radiation        bool
	epsLeft, epsRight float64 // boundary emissivities
	kRadH2O, kRadCO2  int
	qdotRad           []float64 // radiative heat loss per point [W/m³]

	// per-point property caches; recomputed from x before use
	rho, wtm, cp []float64 // at points
	visc, tcon   []float64 // at midpoints j..j+1
	diff         []float64 // nsp×np, premultiplied ρ·W_k·D_km/W̄ at midpoints
	multidiff    []float64 // nsp×nsp×np at midpoints
	dthermal     []float64 // nsp×np Soret coefficients at midpoints
	flux         []float64 // nsp×np diffusive mass fluxes at midpoints
	wdot         []float64 // nsp×np net production rates at points
	hRT          []float64 // nsp×np nondimensional enthalpies at points
	cpR          []float64 // nsp×np nondimensional heat capacities at points

	kExcessLeft  int // locally most abundant species at the left boundary
	kExcessRight int

	Spray *Spray // nil unless the liquid phase is enabled

	ybar        []float64 // composition scratch
	maskScratch []int
}

// NewFlow returns a flow domain of the given configuration with a uniform
// placeholder grid of npoints over [0, 0.1] m; call SetupGrid to replace it.
func NewFlow(id string, therm ThermoPhase, kin Kinetics, trans Transport, ftype FlowType, press float64, npoints int) (o *Flow) {
	if therm == nil || kin == nil || trans == nil {
		chk.Panic("flow domain %q needs thermo, kinetics and transport collaborators", id)
	}
	if press <= 0 {
		chk.Panic("flow domain %q needs a positive pressure; got %g", id, press)
	}
	o = new(Flow)
	o.Name = id
	o.Thermo = therm
	o.Kin = kin
	o.Trans = trans
	o.Press = press
	o.Type = ftype
	o.strat = strategyFor(ftype)
	o.nsp = therm.NSpecies()
	o.wt = therm.MolecularWeights()
	o.zfixed = math.Inf(-1)
	o.kRadH2O = therm.SpeciesIndex("H2O")
	o.kRadCO2 = therm.SpeciesIndex("CO2")
	o.epsLeft = 0
	o.epsRight = 0
	o.ybar = make([]float64, o.nsp)

	o.Lay = onedim.NewLayout()
	o.Lay.Append(onedim.Comp{Name: "u", Lower: -1e20, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9})
	o.Lay.Append(onedim.Comp{Name: "V", Lower: -1e20, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.Lay.Append(onedim.Comp{Name: "T", Lower: 200, Upper: 1e5, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	o.Lay.Append(onedim.Comp{Name: "lambda", Lower: -1e20, Upper: 1e20, Rtol: 1e-4, Atol: 1e-9})
	for _, name := range therm.SpeciesNames() {
		o.Lay.Append(onedim.Comp{Name: name, Lower: -1e-7, Upper: 1e5, Rtol: 1e-4, Atol: 1e-9, TimeDeriv: true})
	}

	o.SetupGrid(utl.LinSpace(0, 0.1, npoints))
	o.Resize(npoints)
	return
}

// NSpecies returns the number of gas species
func (o *Flow) NSpecies() int { return o.nsp }

// Resize reallocates the per-point caches for npoints grid points. Energy
// flags and fixed temperatures are preserved for surviving point indices.
func (o *Flow) Resize(npoints int) {
	o.rho = make([]float64, npoints)
	o.wtm = make([]float64, npoints)
	o.cp = make([]float64, npoints)
	o.visc = make([]float64, npoints)
	o.tcon = make([]float64, npoints)
	o.diff = make([]float64, o.nsp*npoints)
	o.dthermal = make([]float64, o.nsp*npoints)
	o.flux = make([]float64, o.nsp*npoints)
	o.wdot = make([]float64, o.nsp*npoints)
	o.hRT = make([]float64, o.nsp*npoints)
	o.cpR = make([]float64, o.nsp*npoints)
	o.qdotRad = make([]float64, npoints)
	if o.multi {
		o.multidiff = make([]float64, o.nsp*o.nsp*npoints)
	}

	doE := make([]bool, npoints)
	ft := make([]float64, npoints)
	for j := 0; j < npoints; j++ {
		if j < len(o.doEnergy) {
			doE[j] = o.doEnergy[j]
			ft[j] = o.fixedTemp[j]
		} else if len(o.doEnergy) > 0 {
			doE[j] = o.doEnergy[len(o.doEnergy)-1]
			ft[j] = o.fixedTemp[len(o.fixedTemp)-1]
		} else {
			doE[j] = true
			ft[j] = 300
		}
	}
	o.doEnergy = doE
	o.fixedTemp = ft
	o.applyFixedTempProfile()

	if o.Spray != nil {
		o.Spray.resize(npoints)
	}
}

// options /////////////////////////////////////////////////////////////////

// SolveEnergy enables the energy equation at point j; j < 0 enables it at
// every point
func (o *Flow) SolveEnergy(j int) {
	o.setEnergy(j, true)
}

// FixTemperature disables the energy equation at point j (j < 0: all
// points), replacing it by a fixed-temperature constraint
func (o *Flow) FixTemperature(j int) {
	o.setEnergy(j, false)
}

func (o *Flow) setEnergy(j int, on bool) {
	if j < 0 {
		for p := range o.doEnergy {
			o.doEnergy[p] = on
		}
	} else {
		if j >= len(o.doEnergy) {
			chk.Panic("point %d is out of range [0,%d) in domain %q", j, len(o.doEnergy), o.Name)
		}
		o.doEnergy[j] = on
	}
	if o.Sys != nil {
		o.Sys.Jac.MarkStale()
	}
}

// EnergyEnabled reports whether the energy equation is solved at point j
func (o *Flow) EnergyEnabled(j int) bool { return o.doEnergy[j] }

// SetFixedTempProfile installs the temperature profile used wherever the
// energy equation is disabled, given at relative positions 0..1
func (o *Flow) SetFixedTempProfile(zrel, temp []float64) {
	if len(zrel) != len(temp) || len(zrel) == 0 {
		chk.Panic("fixed-temperature profile arrays have invalid lengths: %d and %d", len(zrel), len(temp))
	}
	o.tfixProfZ = append([]float64{}, zrel...)
	o.tfixProfT = append([]float64{}, temp...)
	o.applyFixedTempProfile()
}

func (o *Flow) applyFixedTempProfile() {
	if len(o.tfixProfZ) == 0 || o.G == nil {
		return
	}
	z0 := o.G.Z[0]
	z1 := o.G.Z[o.G.N()-1]
	for j := 0; j < o.G.N() && j < len(o.fixedTemp); j++ {
		frac := 0.0
		if z1 > z0 {
			frac = (o.G.Z[j] - z0) / (z1 - z0)
		}
		o.fixedTemp[j] = interpProfile(o.tfixProfZ, o.tfixProfT, frac)
	}
}

// EnableMulticomponent switches species diffusion to the multicomponent
// formulation
func (o *Flow) EnableMulticomponent() {
	o.multi = true
	o.multidiff = make([]float64, o.nsp*o.nsp*o.NPoints())
}

// EnableSoret turns thermal diffusion on; requires multicomponent transport
func (o *Flow) EnableSoret(on bool) {
	if on && !o.multi {
		chk.Panic("thermal diffusion requires multicomponent transport in domain %q", o.Name)
	}
	o.soret = on
}

// EnableRadiation switches the optically-thin two-band radiation model on
// with the given boundary emissivities
func (o *Flow) EnableRadiation(epsLeft, epsRight float64) {
	if epsLeft < 0 || epsLeft > 1 || epsRight < 0 || epsRight > 1 {
		chk.Panic("emissivities must lie in [0,1]; got %g and %g", epsLeft, epsRight)
	}
	o.radiation = true
	o.epsLeft = epsLeft
	o.epsRight = epsRight
}

// RadiationEnabled reports whether the radiation source term is active
func (o *Flow) RadiationEnabled() bool { return o.radiation }

// QdotRadiation returns the radiative heat loss at point j from the last
// assembly [W/m³]
func (o *Flow) QdotRadiation(j int) float64 { return o.qdotRad[j] }

// flame anchoring /////////////////////////////////////////////////////////

// TempIndex returns the component index of temperature
func (o *Flow) TempIndex() int { return CompT }

// AnchorTemperature pins the flame by fixing the temperature at point j;
// used by freely-propagating flames to remove the mass-flux indeterminacy
func (o *Flow) AnchorTemperature(j int, t float64) {
	if j < 0 || j >= o.NPoints() {
		chk.Panic("anchor point %d is out of range [0,%d) in domain %q", j, o.NPoints(), o.Name)
	}
	o.zfixed = o.G.Z[j]
	o.tfixed = t
	if o.Sys != nil {
		o.Sys.Jac.MarkStale()
	}
}

// FixedPoint returns the anchor location and temperature
func (o *Flow) FixedPoint() (zfixed, tfixed float64) { return o.zfixed, o.tfixed }

// ScaleVelocities multiplies the axial velocity and strain-rate profiles by
// ratio; used when the continuation parameter changes
func (o *Flow) ScaleVelocities(x []float64, ratio float64) {
	for j := 0; j < o.NPoints(); j++ {
		x[o.Index(CompU, j)] *= ratio
		x[o.Index(CompV, j)] *= ratio
	}
}

// lifecycle ///////////////////////////////////////////////////////////////

// InitialSoln fills a cold uniform estimate: stagnant flow at the left-edge
// fixed temperature and the first species carrying all the mass
func (o *Flow) InitialSoln(x []float64) {
	for j := 0; j < o.NPoints(); j++ {
		x[o.Index(CompU, j)] = 0
		x[o.Index(CompV, j)] = 0
		x[o.Index(CompT, j)] = o.fixedTemp[j]
		x[o.Index(CompL, j)] = 0
		for k := 0; k < o.nsp; k++ {
			x[o.Index(CompY+k, j)] = 0
		}
		x[o.Index(CompY, j)] = 1
	}
	if o.Spray != nil {
		o.Spray.initialSoln(o, x)
	}
}

// Finalize records the converged solution: boundary excess species and the
// pinned temperatures where the energy equation is off
func (o *Flow) Finalize(x []float64) {
	np := o.NPoints()
	for j := 0; j < np; j++ {
		if !o.doEnergy[j] {
			o.fixedTemp[j] = o.T(x, j)
		}
	}
	o.kExcessLeft = o.maxYIndex(x, 0)
	o.kExcessRight = o.maxYIndex(x, np-1)
}

// ResetBadValues repairs nonphysical trial values in place: temperatures are
// clamped to their bound box and mass fractions clipped to [0,1] and
// renormalized
func (o *Flow) ResetBadValues(x []float64) {
	tlo, thi := o.Lay.Bounds(CompT)
	for j := 0; j < o.NPoints(); j++ {
		it := o.Index(CompT, j)
		if x[it] < tlo {
			x[it] = tlo
		} else if x[it] > thi {
			x[it] = thi
		}
		sum := 0.0
		for k := 0; k < o.nsp; k++ {
			i := o.Index(CompY+k, j)
			if x[i] < 0 {
				x[i] = 0
			} else if x[i] > 1 {
				x[i] = 1
			}
			sum += x[i]
		}
		if sum > 0 {
			for k := 0; k < o.nsp; k++ {
				x[o.Index(CompY+k, j)] /= sum
			}
		}
	}
	if o.Spray != nil {
		o.Spray.resetBadValues(o, x)
	}
}

// residual assembly ///////////////////////////////////////////////////////

// Eval assembles the residual rows of this domain for global point jGlobal
// (AllPoints: everything). Property caches are refreshed over the touched
// range; transport and the excess-species bookkeeping only on full
// assemblies, so they stay frozen during Jacobian perturbations.
func (o *Flow) Eval(jGlobal int, x, rsd []float64, mask []int, rdt float64) {
	if !o.Touches(jGlobal) {
		return
	}
	if mask == nil {
		if len(o.maskScratch) < len(rsd) {
			o.maskScratch = make([]int, len(rsd))
		}
		mask = o.maskScratch
	}
	np := o.NPoints()
	jmin, jmax := 0, np-1
	if jGlobal != onedim.AllPoints {
		jpt := jGlobal - o.FirstPt
		if jpt < 0 {
			jpt = 0
		}
		if jpt > np-1 {
			jpt = np - 1
		}
		jmin = imax(jpt-1, 0)
		jmax = imin(jpt+1, np-1)
	}

	j0 := imax(jmin-1, 0)
	j1 := imin(jmax+1, np-1)
	o.updateThermo(x, j0, j1)
	if jGlobal == onedim.AllPoints {
		o.updateTransport(x)
		o.kExcessLeft = o.maxYIndex(x, 0)
		o.kExcessRight = o.maxYIndex(x, np-1)
	}
	if o.Spray != nil {
		o.Spray.updateProps(o, x, j0, j1)
	}
	o.updateDiffFluxes(x, j0, j1)
	if o.radiation {
		o.updateRadiation(x, jmin, jmax)
	}

	if jmin == 0 {
		o.evalLeftBoundary(x, rsd, mask)
	}
	if jmax == np-1 {
		o.strat.rightBoundary(o, x, rsd, mask, rdt)
	}
	for j := imax(jmin, 1); j <= imin(jmax, np-2); j++ {
		o.evalInterior(x, rsd, mask, j, rdt)
	}
	if o.Spray != nil {
		o.Spray.eval(o, x, rsd, mask, jmin, jmax, rdt)
	}
}

// evalLeftBoundary assembles the default rows of the first point. The
// attached left boundary modifies them afterwards: the Λ row receives the
// prescribed mass flow and the species rows the inlet composition fluxes.
func (o *Flow) evalLeftBoundary(x, rsd []float64, mask []int) {
	rsd[o.Index(CompU, 0)] = -(o.rhoU(x, 1)-o.rhoU(x, 0))/o.G.Dz[0] -
		(o.rho[1]*o.V(x, 1) + o.rho[0]*o.V(x, 0))
	rsd[o.Index(CompV, 0)] = o.V(x, 0)
	if o.doEnergy[0] {
		rsd[o.Index(CompT, 0)] = o.T(x, 0)
	} else {
		rsd[o.Index(CompT, 0)] = o.T(x, 0) - o.fixedTemp[0]
	}
	if o.strat.usesLambda {
		rsd[o.Index(CompL, 0)] = -o.rhoU(x, 0)
	} else {
		rsd[o.Index(CompL, 0)] = o.lambda(x, 0)
	}
	sum := 0.0
	for k := 0; k < o.nsp; k++ {
		yk := o.Y(x, k, 0)
		sum += yk
		rsd[o.Index(CompY+k, 0)] = -(o.flux[k] + o.rhoU(x, 0)*yk)
	}
	rsd[o.Index(CompY+o.kExcessLeft, 0)] = 1.0 - sum
	for n := 0; n < o.NComp(); n++ {
		mask[o.Index(n, 0)] = 0
	}
}

// evalInterior assembles continuity, radial momentum, species and energy at
// interior point j
func (o *Flow) evalInterior(x, rsd []float64, mask []int, j int, rdt float64) {
	o.strat.continuity(o, x, rsd, mask, j, rdt)

	iV := o.Index(CompV, j)
	iL := o.Index(CompL, j)
	if o.strat.usesLambda {
		rsd[iV] = (o.shear(x, j)-o.lambda(x, j)-o.rhoU(x, j)*o.dVdz(x, j)-
			o.rho[j]*o.V(x, j)*o.V(x, j))/o.rho[j] -
			rdt*(o.V(x, j)-o.PrevSoln(CompV, j))
		mask[iV] = 1
		rsd[iL] = o.lambda(x, j) - o.lambda(x, j-1)
		mask[iL] = 0
	} else {
		rsd[iV] = o.V(x, j)
		mask[iV] = 0
		rsd[iL] = o.lambda(x, j)
		mask[iL] = 0
	}

	dzc := o.G.Z[j+1] - o.G.Z[j-1]
	for k := 0; k < o.nsp; k++ {
		i := o.Index(CompY+k, j)
		convec := o.rhoU(x, j) * o.dYdz(x, k, j)
		diffus := 2.0 * (o.flux[k+j*o.nsp] - o.flux[k+(j-1)*o.nsp]) / dzc
		rsd[i] = (o.wt[k]*o.wdot[k+j*o.nsp]-convec-diffus)/o.rho[j] -
			rdt*(o.Y(x, k, j)-o.PrevSoln(CompY+k, j))
		mask[i] = 1
	}

	iT := o.Index(CompT, j)
	if o.doEnergy[j] {
		sum := 0.0
		sum2 := 0.0
		for k := 0; k < o.nsp; k++ {
			flxk := 0.5 * (o.flux[k+(j-1)*o.nsp] + o.flux[k+j*o.nsp])
			sum += o.wdot[k+j*o.nsp] * o.hRT[k+j*o.nsp]
			sum2 += flxk * o.cpR[k+j*o.nsp] / o.wt[k]
		}
		dtdz := o.dTdz(x, j)
		sum *= GasConstant * o.T(x, j)
		sum2 *= GasConstant * dtdz
		r := -o.cp[j]*o.rhoU(x, j)*dtdz - o.divHeatFlux(x, j) - sum - sum2
		r /= o.rho[j] * o.cp[j]
		r -= rdt * (o.T(x, j) - o.PrevSoln(CompT, j))
		r -= o.qdotRad[j] / (o.rho[j] * o.cp[j])
		rsd[iT] = r
		mask[iT] = 1
	} else {
		rsd[iT] = o.T(x, j) - o.fixedTemp[j]
		mask[iT] = 0
	}
}

// property caches /////////////////////////////////////////////////////////

// setGas syncs the thermo collaborator to the state at point j
func (o *Flow) setGas(x []float64, j int) {
	for k := 0; k < o.nsp; k++ {
		o.ybar[k] = o.Y(x, k, j)
	}
	o.Thermo.SetState(o.ybar, o.T(x, j), o.Press)
}

// updateThermo refreshes density, mean weight, heat capacity, production
// rates and species thermo over points j0..j1
func (o *Flow) updateThermo(x []float64, j0, j1 int) {
	for j := j0; j <= j1; j++ {
		o.setGas(x, j)
		o.rho[j] = o.Thermo.Density()
		o.wtm[j] = o.Thermo.MeanMolecularWeight()
		o.cp[j] = o.Thermo.CpMass()
		o.Kin.NetProductionRates(o.wdot[j*o.nsp : (j+1)*o.nsp])
		o.Thermo.EnthalpiesRT(o.hRT[j*o.nsp : (j+1)*o.nsp])
		o.Thermo.CpR(o.cpR[j*o.nsp : (j+1)*o.nsp])
	}
}

// updateTransport refreshes the midpoint transport properties over the whole
// grid; the diffusion coefficients are stored premultiplied so the flux loop
// only needs mole-fraction differences
func (o *Flow) updateTransport(x []float64) {
	np := o.NPoints()
	for j := 0; j < np-1; j++ {
		o.setGasMid(x, j)
		wtm := o.Thermo.MeanMolecularWeight()
		rho := o.Thermo.Density()
		o.visc[j] = 0
		if o.strat.usesLambda {
			o.visc[j] = o.Trans.Viscosity()
		}
		o.tcon[j] = o.Trans.ThermalConductivity()
		if o.multi {
			o.Trans.MultiDiffCoeffs(o.multidiff[j*o.nsp*o.nsp : (j+1)*o.nsp*o.nsp])
			for k := 0; k < o.nsp; k++ {
				o.diff[k+j*o.nsp] = o.wt[k] * rho / (wtm * wtm)
			}
			if o.soret {
				o.Trans.ThermalDiffCoeffs(o.dthermal[j*o.nsp : (j+1)*o.nsp])
			}
		} else {
			o.Trans.MixDiffCoeffs(o.diff[j*o.nsp : (j+1)*o.nsp])
			for k := 0; k < o.nsp; k++ {
				o.diff[k+j*o.nsp] *= o.wt[k] * rho / wtm
			}
		}
	}
}

// setGasMid syncs the thermo collaborator to the arithmetic midpoint of
// interval j
func (o *Flow) setGasMid(x []float64, j int) {
	tmid := 0.5 * (o.T(x, j) + o.T(x, j+1))
	for k := 0; k < o.nsp; k++ {
		o.ybar[k] = 0.5 * (o.Y(x, k, j) + o.Y(x, k, j+1))
	}
	o.Thermo.SetState(o.ybar, tmid, o.Press)
}

// updateDiffFluxes recomputes the diffusive mass fluxes at the midpoints of
// intervals j0..j1-1, with the correction flux enforcing ΣY·V = 0 in the
// mixture-averaged case
func (o *Flow) updateDiffFluxes(x []float64, j0, j1 int) {
	for j := j0; j < j1; j++ {
		dz := o.G.Dz[j]
		if o.multi {
			for k := 0; k < o.nsp; k++ {
				sum := 0.0
				for l := 0; l < o.nsp; l++ {
					sum += o.wt[l] * o.multidiff[k*o.nsp+l+j*o.nsp*o.nsp] *
						(o.moleFrac(x, l, j+1) - o.moleFrac(x, l, j))
				}
				o.flux[k+j*o.nsp] = sum * o.diff[k+j*o.nsp] / dz
			}
		} else {
			sum := 0.0
			for k := 0; k < o.nsp; k++ {
				o.flux[k+j*o.nsp] = o.diff[k+j*o.nsp] *
					(o.moleFrac(x, k, j) - o.moleFrac(x, k, j+1)) / dz
				sum -= o.flux[k+j*o.nsp]
			}
			// correction flux
			for k := 0; k < o.nsp; k++ {
				o.flux[k+j*o.nsp] += sum * o.Y(x, k, j)
			}
		}
		if o.soret {
			gradT := 2.0 * (o.T(x, j+1) - o.T(x, j)) / (dz * (o.T(x, j) + o.T(x, j+1)))
			for k := 0; k < o.nsp; k++ {
				o.flux[k+j*o.nsp] += o.dthermal[k+j*o.nsp] * gradT
			}
		}
	}
}

// updateRadiation evaluates the optically-thin two-band radiative loss at
// points jmin..jmax, with Planck-mean absorption of H2O and CO2 from the
// Liu-Rogg polynomial fits in 1000/T
func (o *Flow) updateRadiation(x []float64, jmin, jmax int) {
	cH2O := [6]float64{-0.23093, -1.12390, 9.41530, -2.99880, 0.51382, -1.86840e-5}
	cCO2 := [6]float64{18.741, -121.310, 273.500, -194.050, 56.310, -5.8169}
	np := o.NPoints()
	kPref := 1.0 * OneAtm
	t0 := o.T(x, 0)
	t1 := o.T(x, np-1)
	radLeft := o.epsLeft * StefanBoltz * t0 * t0 * t0 * t0
	radRight := o.epsRight * StefanBoltz * t1 * t1 * t1 * t1
	for j := jmin; j <= jmax; j++ {
		if j == 0 || j == np-1 {
			o.qdotRad[j] = 0
			continue
		}
		tj := o.T(x, j)
		kP := 0.0
		if o.kRadH2O >= 0 {
			kH2O := 0.0
			for n := 0; n <= 5; n++ {
				kH2O += cH2O[n] * math.Pow(1000/tj, float64(n))
			}
			kP += kH2O / kPref * o.Press * o.moleFrac(x, o.kRadH2O, j)
		}
		if o.kRadCO2 >= 0 {
			kCO2 := 0.0
			for n := 0; n <= 5; n++ {
				kCO2 += cCO2[n] * math.Pow(1000/tj, float64(n))
			}
			kP += kCO2 / kPref * o.Press * o.moleFrac(x, o.kRadCO2, j)
		}
		o.qdotRad[j] = 2 * kP * (2*StefanBoltz*tj*tj*tj*tj - radLeft - radRight)
	}
}

// state accessors /////////////////////////////////////////////////////////

// U returns the axial velocity at point j
func (o *Flow) U(x []float64, j int) float64 { return x[o.Index(CompU, j)] }

// V returns the strain rate at point j
func (o *Flow) V(x []float64, j int) float64 { return x[o.Index(CompV, j)] }

// T returns the temperature at point j
func (o *Flow) T(x []float64, j int) float64 { return x[o.Index(CompT, j)] }

// Y returns the mass fraction of species k at point j
func (o *Flow) Y(x []float64, k, j int) float64 { return x[o.Index(CompY+k, j)] }

func (o *Flow) lambda(x []float64, j int) float64 { return x[o.Index(CompL, j)] }

// rhoU returns the mass flux ρ·u at point j, using the cached density
func (o *Flow) rhoU(x []float64, j int) float64 { return o.rho[j] * o.U(x, j) }

// Density returns the cached density at point j
func (o *Flow) Density(j int) float64 { return o.rho[j] }

// moleFrac converts the stored mass fraction to a mole fraction using the
// cached mean weight
func (o *Flow) moleFrac(x []float64, k, j int) float64 {
	return o.Y(x, k, j) * o.wtm[j] / o.wt[k]
}

// ExcessSpecies returns the boundary species whose row carries the 1-ΣY
// closure instead of its own flux balance
func (o *Flow) ExcessSpecies() (left, right int) { return o.kExcessLeft, o.kExcessRight }

// FixedMassFlux reports whether the mass flux is imposed by the boundaries
// (stagnation flows) or floats and is pinned by the flame anchor
// (freely-propagating flames)
func (o *Flow) FixedMassFlux() bool { return o.strat.usesLambda }

// upwind derivatives; the convective term is discretized toward the side the
// flow comes from

func (o *Flow) dVdz(x []float64, j int) float64 {
	jloc := j
	if o.U(x, j) <= 0 {
		jloc = j + 1
	}
	return (o.V(x, jloc) - o.V(x, jloc-1)) / o.G.Dz[jloc-1]
}

func (o *Flow) dTdz(x []float64, j int) float64 {
	jloc := j
	if o.U(x, j) <= 0 {
		jloc = j + 1
	}
	return (o.T(x, jloc) - o.T(x, jloc-1)) / o.G.Dz[jloc-1]
}

func (o *Flow) dYdz(x []float64, k, j int) float64 {
	jloc := j
	if o.U(x, j) <= 0 {
		jloc = j + 1
	}
	return (o.Y(x, k, jloc) - o.Y(x, k, jloc-1)) / o.G.Dz[jloc-1]
}

// shear evaluates the second derivative d/dz(μ·dV/dz) at point j with a
// three-point stencil on the nonuniform grid
func (o *Flow) shear(x []float64, j int) float64 {
	c1 := o.visc[j-1] * (o.V(x, j) - o.V(x, j-1))
	c2 := o.visc[j] * (o.V(x, j+1) - o.V(x, j))
	return 2.0 * (c2/o.G.Dz[j] - c1/o.G.Dz[j-1]) / (o.G.Z[j+1] - o.G.Z[j-1])
}

// divHeatFlux evaluates -d/dz(k·dT/dz) at point j
func (o *Flow) divHeatFlux(x []float64, j int) float64 {
	c1 := o.tcon[j-1] * (o.T(x, j) - o.T(x, j-1))
	c2 := o.tcon[j] * (o.T(x, j+1) - o.T(x, j))
	return -2.0 * (c2/o.G.Dz[j] - c1/o.G.Dz[j-1]) / (o.G.Z[j+1] - o.G.Z[j-1])
}

// auxiliary ///////////////////////////////////////////////////////////////

// maxYIndex returns the most abundant species at point j
func (o *Flow) maxYIndex(x []float64, j int) (kmax int) {
	ymax := o.Y(x, 0, j)
	for k := 1; k < o.nsp; k++ {
		if yk := o.Y(x, k, j); yk > ymax {
			ymax = yk
			kmax = k
		}
	}
	return
}

func interpProfile(xs, ys []float64, x float64) float64 {
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

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
