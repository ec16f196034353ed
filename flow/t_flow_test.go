// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/gpavanb/goflame/onedim"
)

// counterflowCase builds an isothermal two-inlet stagnation case with a
// frozen equal-weight binary gas, so density is uniform and the converged
// flow is the potential-flow similarity solution
func counterflowCase(np int, uF, uO float64) (sim *onedim.Sim, f *Flow, fuel, oxid *Inlet, rho float64) {
	gas := NewConstProps([]string{"A", "B"}, []float64{28, 28})
	f = NewFlow("flame", gas, gas, gas, AxiStagnation, OneAtm, np)
	f.SetupGrid(utl.LinSpace(0, 0.02, np))
	f.Resize(np)
	f.FixTemperature(-1)

	rho = OneAtm * 28 / (GasConstant * 300)
	fuel = NewInlet("fuel-inlet", f)
	fuel.SetMdot(rho * uF)
	fuel.SetTemperature(300)
	fuel.SetMassFractions([]float64{1, 0})

	oxid = NewInlet("oxid-inlet", f)
	oxid.SetMdot(rho * uO)
	oxid.SetTemperature(300)
	oxid.SetMassFractions([]float64{0, 1})

	sim = onedim.NewSim(fuel, f, oxid)

	// initial guess: linear axial velocity between the inlet values
	sim.SetInitialGuess("u", []float64{0, 1}, []float64{uF, -uO})
	sim.SetInitialGuess("T", []float64{0, 1}, []float64{300, 300})
	sim.SetInitialGuess("A", []float64{0, 1}, []float64{1, 0})
	sim.SetInitialGuess("B", []float64{0, 1}, []float64{0, 1})
	return
}

func Test_flow01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow01. component layout and bound boxes")

	gas := NewConstProps([]string{"CH4", "O2", "N2"}, []float64{16, 32, 28})
	f := NewFlow("flame", gas, gas, gas, AxiStagnation, OneAtm, 5)

	lay := f.Layout()
	chk.Ints(tst, "ncomp", []int{lay.NComp()}, []int{4 + 3})
	if lay.Name(CompU) != "u" || lay.Name(CompV) != "V" || lay.Name(CompT) != "T" || lay.Name(CompL) != "lambda" {
		tst.Errorf("gas component names are wrong\n")
	}
	if lay.Index("O2") != CompY+1 {
		tst.Errorf("species must follow the gas block in order\n")
	}

	lo, hi := lay.Bounds(CompT)
	chk.Array(tst, "T bounds", 1e-17, []float64{lo, hi}, []float64{200, 1e5})
	lo, hi = lay.Bounds(CompY + 2)
	chk.Array(tst, "Y bounds", 1e-23, []float64{lo, hi}, []float64{-1e-7, 1e5})

	if f.FixedMassFlux() != true {
		tst.Errorf("stagnation flows impose the mass flux\n")
	}
	free := NewFlow("free", gas, gas, gas, FreePropagation, OneAtm, 5)
	if free.FixedMassFlux() {
		tst.Errorf("freely-propagating flames let the mass flux float\n")
	}
}

func Test_flow02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow02. upwind derivatives follow the flow direction")

	gas := NewConstProps([]string{"A", "B"}, []float64{28, 28})
	f := NewFlow("flame", gas, gas, gas, AxiStagnation, OneAtm, 3)
	f.SetupGrid([]float64{0, 0.01, 0.03})
	f.Resize(3)

	x := make([]float64, f.NComp()*3)
	for j := 0; j < 3; j++ {
		x[f.Index(CompT, j)] = 300 + 100*float64(j)
		x[f.Index(CompV, j)] = 10 * float64(j)
		x[f.Index(CompY, j)] = 0.2 * float64(j)
	}

	// positive u: backward difference
	x[f.Index(CompU, 1)] = 1
	chk.Float64(tst, "dTdz up", 1e-10, f.dTdz(x, 1), (400.0-300.0)/0.01)
	chk.Float64(tst, "dVdz up", 1e-10, f.dVdz(x, 1), 10.0/0.01)
	chk.Float64(tst, "dYdz up", 1e-10, f.dYdz(x, 0, 1), 0.2/0.01)

	// negative u: forward difference
	x[f.Index(CompU, 1)] = -1
	chk.Float64(tst, "dTdz down", 1e-10, f.dTdz(x, 1), (500.0-400.0)/0.02)
	chk.Float64(tst, "dVdz down", 1e-10, f.dVdz(x, 1), 10.0/0.02)
	chk.Float64(tst, "dYdz down", 1e-10, f.dYdz(x, 0, 1), 0.2/0.02)
}

func Test_flow03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow03. assembly idempotence and the excess-species closure")

	sim, f, _, _, _ := counterflowCase(6, 0.3, 0.3)

	r1 := make([]float64, sim.Sys.Size())
	r2 := make([]float64, sim.Sys.Size())
	sim.Sys.SteadyEval(sim.X, r1)
	sim.Sys.SteadyEval(sim.X, r2)
	chk.Array(tst, "idempotent residual", 1e-15, r1, r2)

	// species A dominates the left edge: its row carries the closure
	kexL, kexR := f.ExcessSpecies()
	chk.Ints(tst, "excess", []int{kexL, kexR}, []int{0, 1})
	chk.Float64(tst, "closure left", 1e-14, r1[f.Index(CompY+kexL, 0)], 0)

	// breaking ΣY=1 shows up directly in the closure row
	sim.X[f.Index(CompY+kexL, 0)] += 0.1
	sim.Sys.SteadyEval(sim.X, r1)
	chk.Float64(tst, "closure violated", 1e-14, r1[f.Index(CompY+kexL, 0)], -0.1)
}

func Test_flow04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow04. fixed-temperature rows replace the energy equation")

	sim, f, _, _, _ := counterflowCase(6, 0.3, 0.3)
	sim.SetInitialGuess("T", []float64{0, 1}, []float64{350, 350})

	r := make([]float64, sim.Sys.Size())
	sim.Sys.SteadyEval(sim.X, r)
	for j := 1; j < f.NPoints()-1; j++ {
		chk.Float64(tst, io.Sf("T row %d", j), 1e-13, r[f.Index(CompT, j)], 50)
	}

	f.SolveEnergy(-1)
	sim.Sys.SteadyEval(sim.X, r)
	for j := 1; j < f.NPoints()-1; j++ {
		if r[f.Index(CompT, j)] == 50 {
			tst.Errorf("energy row %d still pinned after SolveEnergy\n", j)
		}
	}
}

func Test_flow05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow05. counterflow converges to the potential-flow profile")

	sim, f, fuel, oxid, rho := counterflowCase(6, 0.3, 0.3)

	err := sim.Solve(false)
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}

	r := make([]float64, sim.Sys.Size())
	ss := sim.Sys.SSNorm(sim.X, r)
	io.Pf("log10(ss) = %g\n", math.Log10(ss))
	if ss > 1e-6 {
		tst.Errorf("steady residual too large: %g\n", ss)
	}

	// the imposed mass fluxes fix the axial velocity at both ends
	chk.Float64(tst, "u left", 1e-8, sim.X[f.Index(CompU, 0)], fuel.Mdot()/rho)
	chk.Float64(tst, "u right", 1e-8, sim.X[f.Index(CompU, f.NPoints()-1)], -oxid.Mdot()/rho)

	// axial velocity decreases monotonically toward the opposed stream
	for j := 0; j < f.NPoints()-1; j++ {
		if sim.X[f.Index(CompU, j+1)] >= sim.X[f.Index(CompU, j)] {
			tst.Errorf("u must decrease monotonically; u(%d)=%g u(%d)=%g\n",
				j, sim.X[f.Index(CompU, j)], j+1, sim.X[f.Index(CompU, j+1)])
		}
	}

	// interior strain rate is positive and the mass fractions stay in [0,1]
	for j := 1; j < f.NPoints()-1; j++ {
		if sim.X[f.Index(CompV, j)] <= 0 {
			tst.Errorf("interior strain rate must be positive; V(%d)=%g\n", j, sim.X[f.Index(CompV, j)])
		}
		for k := 0; k < 2; k++ {
			yk := sim.X[f.Index(CompY+k, j)]
			if yk < -1e-9 || yk > 1+1e-9 {
				tst.Errorf("Y(%d,%d)=%g out of range\n", k, j, yk)
			}
		}
	}
}

func Test_flow06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow06. continuation rescales velocities and inlet mass flows")

	sim, f, fuel, oxid, rho := counterflowCase(6, 0.3, 0.3)
	sim.SetFuelVelocity(0.3)
	sim.SetOxidizerVelocity(0.3)
	sim.SetFuelDensity(rho)
	sim.SetOxidizerDensity(rho)
	sim.SetAmplifyThreshold(10)
	sim.SetStrainRateValue(100)

	usave := sim.X[f.Index(CompU, 0)]
	sim.X[f.Index(CompV, 2)] = 40

	sim.SetStrainRate(150)
	chk.Float64(tst, "chi", 1e-14, sim.StrainRate(), 150)
	chk.Float64(tst, "param entry", 1e-14, sim.X[sim.SystemSize()-1], 150)
	chk.Float64(tst, "u rescaled", 1e-13, sim.X[f.Index(CompU, 0)], 1.5*usave)
	chk.Float64(tst, "V rescaled", 1e-13, sim.X[f.Index(CompV, 2)], 60)
	chk.Float64(tst, "fuel mdot", 1e-12, fuel.Mdot(), rho*0.45)
	chk.Float64(tst, "oxid mdot", 1e-12, oxid.Mdot(), rho*0.45)

	// below the threshold nothing is rescaled
	sim.SetStrainRate(155)
	chk.Float64(tst, "u unchanged", 1e-13, sim.X[f.Index(CompU, 0)], 1.5*usave)
}

func Test_flow07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow07. two-band radiative loss needs radiating species")

	gas := NewConstProps([]string{"CH4", "O2", "CO2", "H2O"}, []float64{16, 32, 44, 18})
	f := NewFlow("flame", gas, gas, gas, AxiStagnation, OneAtm, 5)
	f.EnableRadiation(0, 0)

	fuel := NewInlet("fuel-inlet", f)
	fuel.SetMassFractions([]float64{0.2, 0.2, 0.3, 0.3})
	oxid := NewInlet("oxid-inlet", f)
	oxid.SetMassFractions([]float64{0, 1, 0, 0})
	sim := onedim.NewSim(fuel, f, oxid)
	sim.SetInitialGuess("T", []float64{0, 0.5, 1}, []float64{300, 1500, 300})
	sim.SetInitialGuess("CO2", []float64{0, 1}, []float64{0.3, 0.3})
	sim.SetInitialGuess("H2O", []float64{0, 1}, []float64{0.3, 0.3})
	sim.SetInitialGuess("O2", []float64{0, 1}, []float64{0.4, 0.4})
	sim.SetInitialGuess("CH4", []float64{0, 1}, []float64{0, 0})

	r := make([]float64, sim.Sys.Size())
	sim.Sys.SteadyEval(sim.X, r)
	if f.QdotRadiation(2) <= 0 {
		tst.Errorf("hot interior gas must lose heat; qdot=%g\n", f.QdotRadiation(2))
	}
	chk.Float64(tst, "qdot boundary", 1e-17, f.QdotRadiation(0), 0)

	// without CO2/H2O in the mixture there is nothing to radiate
	inert := NewConstProps([]string{"A", "B"}, []float64{28, 28})
	f2 := NewFlow("flame2", inert, inert, inert, AxiStagnation, OneAtm, 5)
	f2.EnableRadiation(0.5, 0.5)
	fuel2 := NewInlet("fuel-inlet", f2)
	oxid2 := NewInlet("oxid-inlet", f2)
	sim2 := onedim.NewSim(fuel2, f2, oxid2)
	sim2.SetInitialGuess("T", []float64{0, 0.5, 1}, []float64{300, 1500, 300})
	sim2.Sys.SteadyEval(sim2.X, r[:sim2.Sys.Size()])
	chk.Float64(tst, "qdot inert", 1e-17, f2.QdotRadiation(2), 0)
}

func Test_flow08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow08. flame anchoring pins temperature and continuity")

	gas := NewConstProps([]string{"A", "B"}, []float64{28, 28})
	f := NewFlow("flame", gas, gas, gas, FreePropagation, OneAtm, 7)
	f.SetupGrid(utl.LinSpace(0, 0.02, 7))
	f.Resize(7)

	in := NewInlet("inlet", f)
	in.SetMdot(0.4)
	in.SetTemperature(300)
	in.SetMassFractions([]float64{1, 0})
	out := NewOutlet("outlet", f)
	sim := onedim.NewSim(in, f, out)

	sim.SetInitialGuess("u", []float64{0, 1}, []float64{0.4, 0.4})
	sim.SetInitialGuess("T", []float64{0, 1}, []float64{300, 1800})

	err := sim.SetFixedTemperature(1100)
	if err != nil {
		tst.Errorf("anchoring failed: %v\n", err)
		return
	}
	zfix, tfix := f.FixedPoint()
	io.Pf("anchor at z=%g t=%g\n", zfix, tfix)
	chk.Float64(tst, "tfixed", 1e-14, tfix, 1100)
	if zfix <= 0 || zfix >= 0.02 {
		tst.Errorf("anchor must be interior; z=%g\n", zfix)
	}

	// the anchor row turns into the temperature pin
	janchor := -1
	for j := 0; j < f.NPoints(); j++ {
		if f.Grid().Z[j] == zfix {
			janchor = j
		}
	}
	if janchor < 0 {
		tst.Errorf("anchor point must exist on the grid\n")
		return
	}
	chk.Float64(tst, "T at anchor", 1e-13, sim.X[f.Index(CompT, janchor)], 1100)

	r := make([]float64, sim.Sys.Size())
	sim.Sys.SteadyEval(sim.X, r)
	chk.Float64(tst, "anchor row", 1e-12, r[f.Index(CompU, janchor)], 0)

	sim.X[f.Index(CompT, janchor)] += 5
	sim.Sys.SteadyEval(sim.X, r)
	chk.Float64(tst, "anchor row perturbed", 1e-12, r[f.Index(CompU, janchor)], 5)
}

func Test_flow09(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flow09. reservoir outlet pins the edge state")

	gas := NewConstProps([]string{"A", "B"}, []float64{28, 28})
	f := NewFlow("flame", gas, gas, gas, FreePropagation, OneAtm, 5)
	f.SetupGrid(utl.LinSpace(0, 0.02, 5))
	f.Resize(5)

	in := NewInlet("inlet", f)
	in.SetMdot(0.1)
	in.SetMassFractions([]float64{0.2, 0.8})

	res := NewOutletRes("outlet", f)
	res.SetTemperature(350)
	res.SetMassFractions([]float64{0.1, 0.9})

	sim := onedim.NewSim(in, f, res)
	sim.SetInitialGuess("A", []float64{0, 1}, []float64{0.2, 0.2})
	sim.SetInitialGuess("B", []float64{0, 1}, []float64{0.8, 0.8})

	r := make([]float64, sim.Sys.Size())
	sim.Sys.SteadyEval(sim.X, r)

	last := f.NPoints() - 1
	_, kexR := f.ExcessSpecies()
	chk.Ints(tst, "excess right", []int{kexR}, []int{1})

	// edge rows carry the mismatch against the reservoir state
	chk.Float64(tst, "T row", 1e-12, r[f.Index(CompT, last)], 300-350)
	chk.Float64(tst, "Y(A) row", 1e-13, r[f.Index(CompY, last)], 0.2-0.1)
	chk.Float64(tst, "closure row", 1e-13, r[f.Index(CompY+1, last)], 0)
}
