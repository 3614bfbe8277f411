// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dct

import (
	"fmt"

	"github.com/unixdj/imcompress"
)

// ZigZagOrder returns the row-major indices of an n x n matrix in
// zig-zag order.  The scan starts at (0,0), moves right to (0,1), then
// walks the anti-diagonals alternating direction, as in JPEG.
func ZigZagOrder(n int) []int {
	order := make([]int, 0, n*n)
	ltr := true
	// upper-left triangle including the main anti-diagonal
	for d := 1; d <= n; d++ {
		for e := 0; e < d; e++ {
			if ltr {
				order = append(order, (d-e-1)*n+e)
			} else {
				order = append(order, e*n+d-e-1)
			}
		}
		ltr = !ltr
	}
	// lower-right triangle
	start := 1
	for d := n - 1; d > 0; d-- {
		for e := 0; e < d; e++ {
			if ltr {
				order = append(order, (n-e-1)*n+start+e)
			} else {
				order = append(order, (start+e)*n+n-e-1)
			}
		}
		start++
		ltr = !ltr
	}
	return order
}

// ZigZagRead returns the elements of m in zig-zag order.
func ZigZagRead(m *Matrix) []float64 {
	order := ZigZagOrder(m.n)
	v := make([]float64, len(order))
	for i, k := range order {
		v[i] = m.a[k]
	}
	return v
}

// ZigZagWrite places v, in zig-zag order, into an n x n matrix.
// It fails with ErrBadData unless len(v) == n*n.
func ZigZagWrite(v []float64, n int) (*Matrix, error) {
	if n < 0 || len(v) != n*n {
		return nil, fmt.Errorf("dct: %d coefficients for %dx%d block: %w",
			len(v), n, n, imcompress.ErrBadData)
	}
	m := NewMatrix(n)
	for i, k := range ZigZagOrder(n) {
		m.a[k] = v[i]
	}
	return m, nil
}
