// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flow implements the residual assembler for one-dimensional
// similarity solutions of chemically-reacting axisymmetric flows: the
// gas-phase conservation laws with upwind convection and central diffusion,
// flow-type strategies for stagnation, freely-propagating and spray flames,
// an optional liquid-phase droplet extension, and the inlet/outlet boundary
// collaborators contributing the edge residual rows.
package flow

// physical constants
const (
	GasConstant = 8314.4621    // universal gas constant [J/kmol/K]
	StefanBoltz = 5.670367e-8  // Stefan-Boltzmann constant [W/m²/K⁴]
	OneAtm      = 101325.0     // one atmosphere [Pa]
	MmHg2Pa     = 133.322365   // mmHg to Pa
	Bar2Pa      = 1.0e5        // bar to Pa
	SmallNumber = 1.2207e-162  // droplet-mass extinction threshold
)

// ThermoPhase evaluates the thermodynamic state of the gas mixture. The
// assembler syncs it point by point before reading any property.
type ThermoPhase interface {
	NSpecies() int
	SpeciesNames() []string
	SpeciesIndex(name string) int // -1 if absent
	MolecularWeights() []float64  // [kg/kmol]

	SetState(y []float64, temp, press float64)
	Density() float64             // [kg/m³]
	MeanMolecularWeight() float64 // [kg/kmol]
	CpMass() float64              // [J/kg/K]
	MassFractions(y []float64)

	EnthalpiesRT(h []float64) // nondimensional species enthalpies at the synced T
	CpR(cp []float64)         // nondimensional species heat capacities
}

// Kinetics evaluates net species production rates for the currently synced
// thermodynamic state
type Kinetics interface {
	NetProductionRates(wdot []float64) // [kmol/m³/s]
}

// Transport evaluates transport properties for the currently synced state
type Transport interface {
	Viscosity() float64            // [Pa·s]
	ThermalConductivity() float64  // [W/m/K]
	MixDiffCoeffs(d []float64)     // [m²/s] mixture-averaged
	MultiDiffCoeffs(d []float64)   // [m²/s] dense nsp×nsp, row-major
	ThermalDiffCoeffs(dt []float64) // [kg/m/s] Soret coefficients
}
