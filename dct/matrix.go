// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dct

import (
	"fmt"
	"strings"
)

// A Matrix is an n x n matrix of reals.  Operations return new
// matrices and leave their operands alone.
type Matrix struct {
	n int
	a []float64 // row-major
}

// NewMatrix returns an n x n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n, make([]float64, n*n)}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.a[i*n+i] = 1
	}
	return m
}

// FromRows returns a matrix with the given rows, which must all have
// len(rows) elements.
func FromRows(rows [][]float64) *Matrix {
	n := len(rows)
	m := NewMatrix(n)
	for i, r := range rows {
		if len(r) != n {
			panic("dct: matrix is not square")
		}
		copy(m.a[i*n:], r)
	}
	return m
}

// Size returns n.
func (m *Matrix) Size() int { return m.n }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.a[i*m.n+j] }

// Set sets the element at row i, column j.
func (m *Matrix) Set(i, j int, v float64) { m.a[i*m.n+j] = v }

// Clone returns a copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{m.n, append([]float64(nil), m.a...)}
}

// Mul returns m*b.  The sizes must match.
func (m *Matrix) Mul(b *Matrix) *Matrix {
	n := m.n
	if b.n != n {
		panic("dct: matrix size mismatch")
	}
	r := NewMatrix(n)
	for i := 0; i < n; i++ {
		row := m.a[i*n : i*n+n]
		out := r.a[i*n : i*n+n]
		for k, v := range row {
			if v == 0 {
				continue
			}
			bk := b.a[k*n : k*n+n]
			for j := range out {
				out[j] += v * bk[j]
			}
		}
	}
	return r
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	n := m.n
	r := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r.a[j*n+i] = m.a[i*n+j]
		}
	}
	return r
}

// Scale returns m with every element multiplied by s.
func (m *Matrix) Scale(s float64) *Matrix {
	r := m.Clone()
	for i := range r.a {
		r.a[i] *= s
	}
	return r
}

// String formats m one row per line.
func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if j != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", m.a[i*m.n+j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
