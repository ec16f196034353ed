// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import "github.com/cpmech/gosl/chk"

// ConstProps is a constant-property ideal-gas mixture with frozen (or
// caller-supplied) chemistry. It implements ThermoPhase, Kinetics and
// Transport and is the working fluid of the tests and of the "frozen" CLI
// mode, where real kinetics would only obscure the solver behavior.
type ConstProps struct {
	Names []string  // species names
	Wt    []float64 // molecular weights [kg/kmol]
	Cp    float64   // constant specific heat [J/kg/K]
	Mu    float64   // constant viscosity [Pa·s]
	Lam   float64   // constant thermal conductivity [W/m/K]
	Diff  float64   // constant binary diffusivity [m²/s]

	// WdotFn, when non-nil, supplies net production rates for the synced
	// state; nil means frozen chemistry
	WdotFn func(y []float64, temp, press float64, wdot []float64)

	// synced state
	y     []float64
	temp  float64
	press float64
	wbar  float64
}

// NewConstProps returns a constant-property gas with the given species set
func NewConstProps(names []string, wt []float64) (o *ConstProps) {
	if len(names) == 0 || len(names) != len(wt) {
		chk.Panic("need matching species names and weights: %d names, %d weights", len(names), len(wt))
	}
	o = new(ConstProps)
	o.Names = names
	o.Wt = wt
	o.Cp = 1200.0
	o.Mu = 2.0e-5
	o.Lam = 0.05
	o.Diff = 2.0e-5
	o.y = make([]float64, len(names))
	o.temp = 300.0
	o.press = OneAtm
	o.syncWbar()
	return
}

// NSpecies returns the number of species
func (o *ConstProps) NSpecies() int { return len(o.Names) }

// SpeciesNames returns the species names
func (o *ConstProps) SpeciesNames() []string { return o.Names }

// SpeciesIndex returns the index of the named species or -1
func (o *ConstProps) SpeciesIndex(name string) int {
	for k, n := range o.Names {
		if n == name {
			return k
		}
	}
	return -1
}

// MolecularWeights returns the species molecular weights
func (o *ConstProps) MolecularWeights() []float64 { return o.Wt }

// SetState syncs composition, temperature and pressure
func (o *ConstProps) SetState(y []float64, temp, press float64) {
	copy(o.y, y)
	o.temp = temp
	o.press = press
	o.syncWbar()
}

// Density returns the ideal-gas density of the synced state
func (o *ConstProps) Density() float64 {
	return o.press * o.wbar / (GasConstant * o.temp)
}

// MeanMolecularWeight returns the mean molecular weight of the synced state
func (o *ConstProps) MeanMolecularWeight() float64 { return o.wbar }

// CpMass returns the mixture specific heat
func (o *ConstProps) CpMass() float64 { return o.Cp }

// MassFractions copies the synced mass fractions into y
func (o *ConstProps) MassFractions(y []float64) { copy(y, o.y) }

// EnthalpiesRT fills the nondimensional species enthalpies h_k/(R·T),
// taking the constant cp as species-independent with a zero reference
func (o *ConstProps) EnthalpiesRT(h []float64) {
	for k := range h {
		h[k] = o.Cp * o.Wt[k] / GasConstant
	}
}

// CpR fills the nondimensional species heat capacities cp_k/R
func (o *ConstProps) CpR(cp []float64) {
	for k := range cp {
		cp[k] = o.Cp * o.Wt[k] / GasConstant
	}
}

// NetProductionRates fills wdot for the synced state; zero when frozen
func (o *ConstProps) NetProductionRates(wdot []float64) {
	if o.WdotFn == nil {
		for k := range wdot {
			wdot[k] = 0
		}
		return
	}
	o.WdotFn(o.y, o.temp, o.press, wdot)
}

// Viscosity returns the constant viscosity
func (o *ConstProps) Viscosity() float64 { return o.Mu }

// ThermalConductivity returns the constant conductivity
func (o *ConstProps) ThermalConductivity() float64 { return o.Lam }

// MixDiffCoeffs fills the constant mixture-averaged diffusivities
func (o *ConstProps) MixDiffCoeffs(d []float64) {
	for k := range d {
		d[k] = o.Diff
	}
}

// MultiDiffCoeffs fills a diagonal multicomponent matrix with the constant
// diffusivity (row-major nsp×nsp)
func (o *ConstProps) MultiDiffCoeffs(d []float64) {
	nsp := len(o.Names)
	for i := range d {
		d[i] = 0
	}
	for k := 0; k < nsp; k++ {
		d[k*nsp+k] = o.Diff
	}
}

// ThermalDiffCoeffs fills zero Soret coefficients
func (o *ConstProps) ThermalDiffCoeffs(dt []float64) {
	for k := range dt {
		dt[k] = 0
	}
}

// auxiliary ////////////////////////////////////////////////////////////////

func (o *ConstProps) syncWbar() {
	sum := 0.0
	for k, yk := range o.y {
		sum += yk / o.Wt[k]
	}
	if sum <= 0 {
		o.wbar = o.Wt[0]
		return
	}
	o.wbar = 1.0 / sum
}
