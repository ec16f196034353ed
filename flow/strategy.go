// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

// FlowType selects the flow-configuration strategy of a Flow domain
type FlowType int

const (
	// AxiStagnation is the axisymmetric stagnation/counterflow configuration:
	// the radial momentum and pressure-eigenvalue equations are solved and
	// the axial velocity is fixed at both ends by the attached boundaries
	AxiStagnation FlowType = iota

	// FreePropagation is the freely-propagating adiabatic flame: no strain,
	// mass flux floats and is pinned by an interior fixed-temperature point
	FreePropagation
)

// String returns the configuration tag used in logs and snapshots
func (t FlowType) String() string {
	switch t {
	case AxiStagnation:
		return "stagnation"
	case FreePropagation:
		return "free"
	}
	return "unknown"
}

// flowStrategy collects the residual hooks that differ between flow
// configurations. Everything else (species, energy, radial momentum, the
// left boundary block) is shared by the Flow assembler.
type flowStrategy struct {
	// usesLambda tells whether the V and Λ rows carry the radial momentum
	// equation and the pressure-eigenvalue chain
	usesLambda bool

	// continuity assembles the axial-velocity row at interior point j
	continuity func(o *Flow, x, rsd []float64, mask []int, j int, rdt float64)

	// rightBoundary assembles the default rows of the last point; an
	// attached right boundary may modify them afterwards
	rightBoundary func(o *Flow, x, rsd []float64, mask []int, rdt float64)
}

func strategyFor(t FlowType) *flowStrategy {
	switch t {
	case FreePropagation:
		return &freeStrategy
	default:
		return &stagnStrategy
	}
}

// stagnStrategy: d(ρu)/dz + 2ρV = 0 marching from the right boundary, where
// the attached boundary sets ρu. The forward difference makes each U row
// depend on the point to its right.
var stagnStrategy = flowStrategy{
	usesLambda: true,
	continuity: func(o *Flow, x, rsd []float64, mask []int, j int, rdt float64) {
		rsd[o.Index(CompU, j)] = -(o.rhoU(x, j+1)-o.rhoU(x, j))/o.G.Dz[j] -
			(o.rho[j+1]*o.V(x, j+1) + o.rho[j]*o.V(x, j))
		mask[o.Index(CompU, j)] = 0
	},
	rightBoundary: func(o *Flow, x, rsd []float64, mask []int, rdt float64) {
		j := o.NPoints() - 1
		rsd[o.Index(CompU, j)] = o.rhoU(x, j)
		rsd[o.Index(CompV, j)] = o.V(x, j)
		rsd[o.Index(CompL, j)] = o.lambda(x, j) - o.lambda(x, j-1)
		if o.doEnergy[j] {
			rsd[o.Index(CompT, j)] = o.T(x, j)
		} else {
			rsd[o.Index(CompT, j)] = o.T(x, j) - o.fixedTemp[j]
		}
		sum := 0.0
		for k := 0; k < o.nsp; k++ {
			yk := o.Y(x, k, j)
			sum += yk
			rsd[o.Index(CompY+k, j)] = o.flux[k+(j-1)*o.nsp] + o.rhoU(x, j)*yk
		}
		rsd[o.Index(CompY+o.kExcessRight, j)] = 1.0 - sum
		for n := 0; n < o.NComp(); n++ {
			mask[o.Index(n, j)] = 0
		}
	},
}

// freeStrategy: the mass flux ρu is uniform and floats; its value is pinned
// by requiring T = Tfixed at the anchor point. Continuity is upwinded away
// from the anchor so information propagates outward from it.
var freeStrategy = flowStrategy{
	usesLambda: false,
	continuity: func(o *Flow, x, rsd []float64, mask []int, j int, rdt float64) {
		i := o.Index(CompU, j)
		switch {
		case o.G.Z[j] > o.zfixed:
			rsd[i] = -(o.rhoU(x, j)-o.rhoU(x, j-1))/o.G.Dz[j-1] -
				(o.rho[j-1]*o.V(x, j-1) + o.rho[j]*o.V(x, j))
		case o.G.Z[j] == o.zfixed:
			if o.doEnergy[j] {
				rsd[i] = o.T(x, j) - o.tfixed
			} else {
				rsd[i] = o.rhoU(x, j) - o.rho[0]*0.3
			}
		default:
			rsd[i] = -(o.rhoU(x, j+1)-o.rhoU(x, j))/o.G.Dz[j] -
				(o.rho[j+1]*o.V(x, j+1) + o.rho[j]*o.V(x, j))
		}
		mask[i] = 0
	},
	rightBoundary: func(o *Flow, x, rsd []float64, mask []int, rdt float64) {
		j := o.NPoints() - 1
		rsd[o.Index(CompU, j)] = o.rhoU(x, j) - o.rhoU(x, j-1)
		rsd[o.Index(CompV, j)] = o.V(x, j)
		rsd[o.Index(CompL, j)] = o.lambda(x, j)
		if o.doEnergy[j] {
			rsd[o.Index(CompT, j)] = o.T(x, j) - o.T(x, j-1)
		} else {
			rsd[o.Index(CompT, j)] = o.T(x, j) - o.fixedTemp[j]
		}
		sum := 0.0
		for k := 0; k < o.nsp; k++ {
			yk := o.Y(x, k, j)
			sum += yk
			rsd[o.Index(CompY+k, j)] = o.flux[k+(j-1)*o.nsp] + o.rhoU(x, j)*yk
		}
		rsd[o.Index(CompY+o.kExcessRight, j)] = 1.0 - sum
		for n := 0; n < o.NComp(); n++ {
			mask[o.Index(n, j)] = 0
		}
	},
}
