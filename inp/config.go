// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp reads flame-case definitions from YAML files and assembles
// the corresponding simulation: domains, boundary values and solver
// settings.
package inp

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"

	"github.com/gpavanb/goflame/flow"
	"github.com/gpavanb/goflame/onedim"
)

// Config is one flame case
type Config struct {
	Title    string  `yaml:"title"`
	FlowType string  `yaml:"flowtype"` // stagnation | free | spray
	Pressure float64 `yaml:"pressure"`

	Grid struct {
		Points int     `yaml:"points"`
		Width  float64 `yaml:"width"`
	} `yaml:"grid"`

	Gas GasConfig `yaml:"gas"`

	Energy    bool          `yaml:"energy"`
	FixedTemp ProfileConfig `yaml:"fixedtemp"`

	Radiation struct {
		Enabled  bool    `yaml:"enabled"`
		EpsLeft  float64 `yaml:"epsleft"`
		EpsRight float64 `yaml:"epsright"`
	} `yaml:"radiation"`

	FuelInlet InletConfig  `yaml:"fuelinlet"`
	OxidInlet *InletConfig `yaml:"oxidinlet,omitempty"` // absent for free flames

	// right-boundary closure when no oxidizer inlet is given
	Outlet *OutletConfig `yaml:"outlet,omitempty"`

	Spray *SprayConfig `yaml:"spray,omitempty"`

	Solver SolverConfig `yaml:"solver"`
}

// GasConfig defines the constant-property gas mixture
type GasConfig struct {
	Species      []string  `yaml:"species"`
	Weights      []float64 `yaml:"weights"`
	Cp           float64   `yaml:"cp"`
	Viscosity    float64   `yaml:"viscosity"`
	Conductivity float64   `yaml:"conductivity"`
	Diffusivity  float64   `yaml:"diffusivity"`
}

// ProfileConfig is a piecewise-linear profile over relative positions 0..1
type ProfileConfig struct {
	Pos  []float64 `yaml:"pos"`
	Vals []float64 `yaml:"vals"`
}

// InletConfig defines one inlet boundary
type InletConfig struct {
	Mdot        float64            `yaml:"mdot"`
	Temperature float64            `yaml:"temperature"`
	SpreadRate  float64            `yaml:"spreadrate"`
	Composition map[string]float64 `yaml:"composition"`
}

// OutletConfig selects the right-boundary closure: plain zero-gradient
// outflow or a reservoir with prescribed state
type OutletConfig struct {
	Reservoir   bool               `yaml:"reservoir"`
	Temperature float64            `yaml:"temperature"`
	Composition map[string]float64 `yaml:"composition"`
}

// SprayConfig defines the liquid fuel and its injection state
type SprayConfig struct {
	Fuel string  `yaml:"fuel"`
	CpL  float64 `yaml:"cpl"`

	Antoine struct {
		A    float64 `yaml:"a"`
		B    float64 `yaml:"b"`
		C    float64 `yaml:"c"`
		Unit string  `yaml:"unit"` // mmHg | bar
	} `yaml:"antoine"`

	Dippr struct {
		A     float64 `yaml:"a"`
		B     float64 `yaml:"b"`
		C     float64 `yaml:"c"`
		D     float64 `yaml:"d"`
		Const float64 `yaml:"const"`
	} `yaml:"dippr"`

	Injection struct {
		Ul float64 `yaml:"ul"`
		Vl float64 `yaml:"vl"`
		Tl float64 `yaml:"tl"`
		Ml float64 `yaml:"ml"`
		Nl float64 `yaml:"nl"`
	} `yaml:"injection"`

	ArtVisc struct {
		Ul float64 `yaml:"ul"`
		Vl float64 `yaml:"vl"`
		Tl float64 `yaml:"tl"`
		Ml float64 `yaml:"ml"`
		Nl float64 `yaml:"nl"`
	} `yaml:"artvisc"`
}

// SolverConfig collects the pseudo-time schedule and refinement criteria
type SolverConfig struct {
	TimeStep float64 `yaml:"timestep"`
	Steps    []int   `yaml:"steps"`

	Refine struct {
		Ratio   float64 `yaml:"ratio"`
		Slope   float64 `yaml:"slope"`
		Curve   float64 `yaml:"curve"`
		Prune   float64 `yaml:"prune"`
		NPMax   int     `yaml:"npmax"`
		GridMin float64 `yaml:"gridmin"`
	} `yaml:"refine"`
}

// Default returns a case with sensible fallbacks; Load overlays the file
// contents on top of it
func Default() (o *Config) {
	o = new(Config)
	o.Title = "unnamed"
	o.FlowType = "stagnation"
	o.Pressure = flow.OneAtm
	o.Grid.Points = 11
	o.Grid.Width = 0.02
	o.Gas.Cp = 1200
	o.Gas.Viscosity = 2e-5
	o.Gas.Conductivity = 0.05
	o.Gas.Diffusivity = 2e-5
	o.FuelInlet.Temperature = 300
	o.Solver.TimeStep = 1e-5
	o.Solver.Steps = []int{10, 20, 40, 80, 160}
	o.Solver.Refine.Ratio = 10
	o.Solver.Refine.Slope = 0.8
	o.Solver.Refine.Curve = 0.8
	o.Solver.Refine.Prune = -0.1
	o.Solver.Refine.NPMax = 400
	o.Solver.Refine.GridMin = 1e-10
	return
}

// Load reads a case file, overlaying it on the defaults
func Load(path string) (o *Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read case file:\n%v", err)
	}
	o = Default()
	if err = yaml.Unmarshal(b, o); err != nil {
		return nil, chk.Err("cannot decode case file %q:\n%v", path, err)
	}
	if err = o.Validate(); err != nil {
		return nil, err
	}
	return
}

// Save writes the case to a file
func (o *Config) Save(path string) (err error) {
	b, err := yaml.Marshal(o)
	if err != nil {
		return chk.Err("cannot encode case:\n%v", err)
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the case for setup errors before anything is built
func (o *Config) Validate() (err error) {
	switch o.FlowType {
	case "stagnation", "free", "spray":
	default:
		return chk.Err("unknown flow type %q (want stagnation, free or spray)", o.FlowType)
	}
	if len(o.Gas.Species) == 0 || len(o.Gas.Species) != len(o.Gas.Weights) {
		return chk.Err("gas needs matching species and weights; got %d and %d", len(o.Gas.Species), len(o.Gas.Weights))
	}
	if o.Grid.Points < 3 {
		return chk.Err("grid needs at least 3 points; got %d", o.Grid.Points)
	}
	if o.Grid.Width <= 0 {
		return chk.Err("grid width must be positive; got %g", o.Grid.Width)
	}
	if o.FlowType == "spray" && o.Spray == nil {
		return chk.Err("spray cases need a spray section")
	}
	if o.FlowType == "stagnation" && o.OxidInlet == nil {
		return chk.Err("stagnation cases need an oxidizer inlet")
	}
	return
}

// Case is the assembled simulation with direct handles to its domains
type Case struct {
	Cfg  *Config
	Sim  *onedim.Sim
	Gas  *flow.ConstProps
	Flow *flow.Flow
	Fuel *flow.Inlet
	Oxid *flow.Inlet // nil for free flames
}

// Build assembles the simulation described by the case
func (o *Config) Build() (c *Case, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("case setup failed: %v", r)
		}
	}()

	c = new(Case)
	c.Cfg = o
	c.Gas = flow.NewConstProps(o.Gas.Species, o.Gas.Weights)
	c.Gas.Cp = o.Gas.Cp
	c.Gas.Mu = o.Gas.Viscosity
	c.Gas.Lam = o.Gas.Conductivity
	c.Gas.Diff = o.Gas.Diffusivity

	switch o.FlowType {
	case "free":
		c.Flow = flow.NewFlow("flame", c.Gas, c.Gas, c.Gas, flow.FreePropagation, o.Pressure, o.Grid.Points)
	case "spray":
		liq := &flow.Liquid{
			Fuel:     o.Spray.Fuel,
			CpL:      o.Spray.CpL,
			AntA:     o.Spray.Antoine.A,
			AntB:     o.Spray.Antoine.B,
			AntC:     o.Spray.Antoine.C,
			Unit:     flow.MmHg2Pa,
			RhoA:     o.Spray.Dippr.A,
			RhoB:     o.Spray.Dippr.B,
			RhoC:     o.Spray.Dippr.C,
			RhoD:     o.Spray.Dippr.D,
			RhoConst: o.Spray.Dippr.Const,
		}
		if o.Spray.Antoine.Unit == "bar" {
			liq.Unit = flow.Bar2Pa
		}
		c.Flow = flow.NewSprayFlow("flame", c.Gas, c.Gas, c.Gas, liq, o.Pressure, o.Grid.Points)
		av := o.Spray.ArtVisc
		c.Flow.Spray.SetArtificialViscosity(av.Ul, av.Vl, av.Tl, av.Ml, av.Nl)
	default:
		c.Flow = flow.NewFlow("flame", c.Gas, c.Gas, c.Gas, flow.AxiStagnation, o.Pressure, o.Grid.Points)
	}
	c.Flow.SetupGrid(uniformGrid(o.Grid.Width, o.Grid.Points))
	c.Flow.Resize(o.Grid.Points)

	if o.Energy {
		c.Flow.SolveEnergy(-1)
	} else {
		c.Flow.FixTemperature(-1)
		if len(o.FixedTemp.Pos) > 0 {
			c.Flow.SetFixedTempProfile(o.FixedTemp.Pos, o.FixedTemp.Vals)
		}
	}
	if o.Radiation.Enabled {
		c.Flow.EnableRadiation(o.Radiation.EpsLeft, o.Radiation.EpsRight)
	}

	c.Fuel = flow.NewInlet("fuel-inlet", c.Flow)
	applyInlet(c.Fuel, &o.FuelInlet)
	if o.Spray != nil && c.Flow.Spray != nil {
		inj := o.Spray.Injection
		c.Fuel.SetSprayInjection(inj.Ul, inj.Vl, inj.Tl, inj.Ml, inj.Nl)
	}

	doms := []onedim.Domain{c.Fuel, c.Flow}
	if o.OxidInlet != nil {
		c.Oxid = flow.NewInlet("oxid-inlet", c.Flow)
		applyInlet(c.Oxid, o.OxidInlet)
		doms = append(doms, c.Oxid)
	} else if o.Outlet != nil && o.Outlet.Reservoir {
		res := flow.NewOutletRes("outlet", c.Flow)
		if o.Outlet.Temperature > 0 {
			res.SetTemperature(o.Outlet.Temperature)
		}
		if len(o.Outlet.Composition) > 0 {
			res.SetComposition(o.Outlet.Composition)
		}
		doms = append(doms, res)
	} else {
		doms = append(doms, flow.NewOutlet("outlet", c.Flow))
	}

	c.Sim = onedim.NewSim(doms...)
	c.Sim.SetTimeStep(o.Solver.TimeStep, o.Solver.Steps)
	r := o.Solver.Refine
	c.Sim.SetRefineCriteria(-1, r.Ratio, r.Slope, r.Curve, r.Prune)
	c.Sim.SetMaxGridPoints(-1, r.NPMax)
	c.Sim.SetGridMin(-1, r.GridMin)
	return
}

func applyInlet(in *flow.Inlet, cfg *InletConfig) {
	in.SetMdot(cfg.Mdot)
	in.SetTemperature(cfg.Temperature)
	in.SetSpreadRate(cfg.SpreadRate)
	if len(cfg.Composition) > 0 {
		in.SetComposition(cfg.Composition)
	}
}

func uniformGrid(width float64, n int) (z []float64) {
	z = make([]float64, n)
	for i := range z {
		z[i] = width * float64(i) / float64(n-1)
	}
	return
}
