// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// BandMat is a general band matrix with kl subdiagonals and ku
// superdiagonals, stored compactly row by row: entry (i,j) lives at
// a[i][j-i+kl]. Factor performs an LU decomposition with partial pivoting
// into separate storage, so the original entries stay readable afterwards.
type BandMat struct {
	N      int // matrix dimension
	Kl, Ku int // number of sub- and super-diagonals

	a [][]float64 // [N][kl+ku+1] band entries

	// factorization
	lu       [][]float64 // [N][kl+ku+1] upper factor (rows left-justified)
	al       [][]float64 // [N][kl] multipliers
	indx     []int       // pivot rows
	factored bool
}

// NewBandMat returns a new zeroed band matrix
func NewBandMat(n, kl, ku int) (o *BandMat) {
	if n < 1 || kl < 0 || ku < 0 {
		chk.Panic("invalid band matrix dimensions: n=%d kl=%d ku=%d", n, kl, ku)
	}
	o = new(BandMat)
	o.N, o.Kl, o.Ku = n, kl, ku
	w := kl + ku + 1
	o.a = allocBand(n, w)
	o.lu = allocBand(n, w)
	o.al = allocBand(n, kl)
	o.indx = make([]int, n)
	return
}

func allocBand(n, w int) [][]float64 {
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, w)
	}
	return m
}

// Zero clears all entries and invalidates any factorization
func (o *BandMat) Zero() {
	for i := 0; i < o.N; i++ {
		for k := range o.a[i] {
			o.a[i][k] = 0
		}
	}
	o.factored = false
}

// inBand tells whether (i,j) is inside the band
func (o *BandMat) inBand(i, j int) bool {
	return i >= 0 && i < o.N && j >= 0 && j < o.N && j-i <= o.Ku && i-j <= o.Kl
}

// Get returns entry (i,j); zero outside the band
func (o *BandMat) Get(i, j int) float64 {
	if !o.inBand(i, j) {
		return 0
	}
	return o.a[i][j-i+o.Kl]
}

// Set stores entry (i,j). Panics outside the band: the assembly stencil
// guarantees all couplings fit, so a miss is a programmer error.
func (o *BandMat) Set(i, j int, v float64) {
	if !o.inBand(i, j) {
		chk.Panic("entry (%d,%d) is outside band kl=%d ku=%d n=%d", i, j, o.Kl, o.Ku, o.N)
	}
	o.a[i][j-i+o.Kl] = v
	o.factored = false
}

// Factor computes the LU decomposition with partial pivoting. A zero pivot
// makes the factorization fail with a recoverable error; the caller falls
// back to pseudo-time stepping.
func (o *BandMat) Factor() (err error) {
	n, m1, m2 := o.N, o.Kl, o.Ku
	m := m1 + m2 + 1
	for i := 0; i < n; i++ {
		copy(o.lu[i], o.a[i])
	}

	// left-justify the first m1 rows
	l := m1
	for i := 0; i < m1 && i < n; i++ {
		for j := m1 - i; j < m; j++ {
			o.lu[i][j-l] = o.lu[i][j]
		}
		l--
		for j := m - l - 1; j < m; j++ {
			o.lu[i][j] = 0
		}
	}

	// decompose
	l = m1
	for k := 0; k < n; k++ {
		piv := o.lu[k][0]
		i0 := k
		if l < n {
			l++
		}
		for j := k + 1; j < l; j++ {
			if math.Abs(o.lu[j][0]) > math.Abs(piv) {
				piv = o.lu[j][0]
				i0 = j
			}
		}
		o.indx[k] = i0
		if piv == 0 {
			return chk.Err("band matrix is singular at row %d", k)
		}
		if i0 != k {
			o.lu[k], o.lu[i0] = o.lu[i0], o.lu[k]
		}
		for i := k + 1; i < l; i++ {
			mult := o.lu[i][0] / o.lu[k][0]
			o.al[k][i-k-1] = mult
			for j := 1; j < m; j++ {
				o.lu[i][j-1] = o.lu[i][j] - mult*o.lu[k][j]
			}
			o.lu[i][m-1] = 0
		}
	}
	o.factored = true
	return
}

// Solve solves A·x = b using the factorization. x and b may alias.
func (o *BandMat) Solve(x, b []float64) (err error) {
	if !o.factored {
		if err = o.Factor(); err != nil {
			return
		}
	}
	n, m1, m2 := o.N, o.Kl, o.Ku
	m := m1 + m2 + 1
	if x == nil {
		chk.Panic("solution vector must not be nil")
	}
	if len(x) < n || len(b) < n {
		chk.Panic("vector lengths (%d,%d) are smaller than the system size %d", len(x), len(b), n)
	}
	if &x[0] != &b[0] {
		copy(x[:n], b[:n])
	}

	// forward substitution with interleaved row swaps
	l := m1
	for k := 0; k < n; k++ {
		i := o.indx[k]
		if i != k {
			x[k], x[i] = x[i], x[k]
		}
		if l < n {
			l++
		}
		for i := k + 1; i < l; i++ {
			x[i] -= o.al[k][i-k-1] * x[k]
		}
	}

	// back substitution
	l = 1
	for i := n - 1; i >= 0; i-- {
		sum := x[i]
		for k := 1; k < l; k++ {
			sum -= o.lu[i][k] * x[k+i]
		}
		x[i] = sum / o.lu[i][0]
		if l < m {
			l++
		}
	}
	return
}

// Transpose returns a new band matrix holding Aᵀ (kl and ku swapped).
// Used by the adjoint solve against the last converged Jacobian.
func (o *BandMat) Transpose() (t *BandMat) {
	t = NewBandMat(o.N, o.Ku, o.Kl)
	for i := 0; i < o.N; i++ {
		jlo, jhi := i-o.Kl, i+o.Ku
		if jlo < 0 {
			jlo = 0
		}
		if jhi > o.N-1 {
			jhi = o.N - 1
		}
		for j := jlo; j <= jhi; j++ {
			t.a[j][i-j+t.Kl] = o.a[i][j-i+o.Kl]
		}
	}
	return
}

// MulVec computes r = A·x
func (o *BandMat) MulVec(r, x []float64) {
	for i := 0; i < o.N; i++ {
		jlo, jhi := i-o.Kl, i+o.Ku
		if jlo < 0 {
			jlo = 0
		}
		if jhi > o.N-1 {
			jhi = o.N - 1
		}
		sum := 0.0
		for j := jlo; j <= jhi; j++ {
			sum += o.a[i][j-i+o.Kl] * x[j]
		}
		r[i] = sum
	}
}
