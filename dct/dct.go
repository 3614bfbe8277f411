// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package dct implements the block transform of the lossy codec: an
orthonormal n x n type II cosine transform applied as T*B*T', scalar
quantization against a table and the zig-zag coefficient order.

The basis matrix is

	T[i][j] = a(i) * cos((2j+1) * i * pi / 2n)
	a(0) = sqrt(1/n), a(i>0) = sqrt(2/n)

and the inverse is T'*B*T.
*/
package dct // import "github.com/unixdj/imcompress/dct"

import (
	"fmt"
	"math"

	"github.com/unixdj/imcompress"
)

// BlockSize is the block size of the lossy codec.
const BlockSize = 8

// DefaultTable returns the fixed 8x8 quantization table.
func DefaultTable() *Matrix {
	return FromRows([][]float64{
		{1, 1, 2, 4, 8, 16, 32, 64},
		{1, 1, 2, 4, 8, 16, 32, 64},
		{2, 2, 2, 4, 8, 16, 32, 64},
		{4, 4, 4, 4, 8, 16, 32, 64},
		{8, 8, 8, 8, 8, 16, 32, 64},
		{16, 16, 16, 16, 16, 16, 32, 64},
		{32, 32, 32, 32, 32, 32, 32, 64},
		{64, 64, 64, 64, 64, 64, 64, 64},
	})
}

// A Transform is a cosine transform of one block size with a scaled
// quantization table.  It is safe for concurrent use.
type Transform struct {
	n    int
	t    *Matrix // basis
	tt   *Matrix // transposed basis
	quan *Matrix // scaled quantization table
}

// NewTransform returns a transform for n x n blocks quantized by
// table scaled by quality.  Scaled entries are rounded to the nearest
// integer, with a minimum of 1.  Larger quality means coarser
// quantization.
func NewTransform(n int, table *Matrix, quality float64) (*Transform, error) {
	if n < 1 {
		return nil, fmt.Errorf("dct: block size %d: %w", n, imcompress.ErrEncoding)
	}
	if !(quality > 0) || math.IsInf(quality, 0) {
		return nil, fmt.Errorf("dct: quality %g: %w", quality, imcompress.ErrEncoding)
	}
	t := NewMatrix(n)
	for i := 0; i < n; i++ {
		a := math.Sqrt(2 / float64(n))
		if i == 0 {
			a = math.Sqrt(1 / float64(n))
		}
		for j := 0; j < n; j++ {
			t.Set(i, j, a*math.Cos(float64((2*j+1)*i)*math.Pi/float64(2*n)))
		}
	}
	q := table.Scale(quality)
	for i, v := range q.a {
		q.a[i] = max(math.Round(v), 1)
	}
	return &Transform{n, t, t.Transpose(), q}, nil
}

// Size returns the block size.
func (t *Transform) Size() int { return t.n }

// Table returns a copy of the scaled quantization table.
func (t *Transform) Table() *Matrix { return t.quan.Clone() }

func (t *Transform) check(b *Matrix, m *Matrix) error {
	if b.n != m.n {
		return fmt.Errorf("dct: %dx%d block, %dx%d table: %w",
			b.n, b.n, m.n, m.n, imcompress.ErrEncoding)
	}
	return nil
}

// Forward returns T*b*T'.
func (t *Transform) Forward(b *Matrix) (*Matrix, error) {
	if err := t.check(b, t.t); err != nil {
		return nil, err
	}
	return t.t.Mul(b).Mul(t.tt), nil
}

// Inverse returns T'*b*T.
func (t *Transform) Inverse(b *Matrix) (*Matrix, error) {
	if err := t.check(b, t.t); err != nil {
		return nil, err
	}
	return t.tt.Mul(b).Mul(t.t), nil
}

// Quantize divides b element-wise by the quantization table and
// rounds to the nearest integer.
func (t *Transform) Quantize(b *Matrix) (*Matrix, error) {
	if err := t.check(b, t.quan); err != nil {
		return nil, err
	}
	r := NewMatrix(b.n)
	for i, v := range b.a {
		r.a[i] = math.Round(v / t.quan.a[i])
	}
	return r, nil
}

// Dequantize multiplies b element-wise by the quantization table and
// rounds to the nearest integer.
func (t *Transform) Dequantize(b *Matrix) (*Matrix, error) {
	if err := t.check(b, t.quan); err != nil {
		return nil, err
	}
	r := NewMatrix(b.n)
	for i, v := range b.a {
		r.a[i] = math.Round(v * t.quan.a[i])
	}
	return r, nil
}
