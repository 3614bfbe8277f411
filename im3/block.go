// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package im3

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/dct"
)

// runLen is the size of a run-length triple.
const runLen = 3

// appendRuns appends the run-length coding of the coefficients v.
// Only nonzero coefficients are stored, each preceded by the number
// of zeros before it.  The block ends with a zero triple.
func appendRuns(dst []byte, v []float64) []byte {
	var skip byte
	for _, x := range v {
		if x == 0 {
			skip++
			continue
		}
		dst = append(dst, skip)
		dst = binary.BigEndian.AppendUint16(dst, uint16(int16(x)))
		skip = 0
	}
	return append(dst, 0, 0, 0)
}

// expandRuns decodes one block of n coefficients from the start of b
// and returns it with the rest of b.  Coefficients after the end
// marker are zero.  A triple with a zero value but a nonzero count is
// not an end marker: it stands for count+1 zeros.
func expandRuns(b []byte, n int) ([]float64, []byte, error) {
	v := make([]float64, 0, n) // zero beyond len up to n
	for {
		if len(b) < runLen {
			return nil, nil, fmt.Errorf("block truncated: %w", imcompress.ErrBadData)
		}
		skip, x := int(b[0]), int16(binary.BigEndian.Uint16(b[1:]))
		b = b[runLen:]
		if skip == 0 && x == 0 {
			break
		}
		if len(v)+skip+1 > n {
			return nil, nil, fmt.Errorf("run past coefficient %d: %w", n, imcompress.ErrOutOfRange)
		}
		v = append(v, make([]float64, skip)...)
		v = append(v, float64(x))
	}
	return v[:n], b, nil
}

// pad returns the w x h plane p extended to whole blocks by repeating
// its last column and row, with the new size.
func pad(p []int16, w, h int) ([]int16, int, int) {
	n := dct.BlockSize
	pw, ph := (w+n-1)/n*n, (h+n-1)/n*n
	if pw == w && ph == h {
		return p, w, h
	}
	q := make([]int16, pw*ph)
	for y := 0; y < ph; y++ {
		src := p[min(y, h-1)*w:][:w]
		row := q[y*pw:][:pw]
		copy(row, src)
		for x := w; x < pw; x++ {
			row[x] = src[w-1]
		}
	}
	return q, pw, ph
}

// crop returns the top left w x h part of the pw wide plane p.
func crop(p []int16, pw, w, h int) []int16 {
	if pw == w {
		return p[:w*h]
	}
	q := make([]int16, w*h)
	for y := 0; y < h; y++ {
		copy(q[y*w:][:w], p[y*pw:])
	}
	return q
}

// encodePlane appends the runs for every block of the w x h plane p,
// left to right, top to bottom.
func encodePlane(dst []byte, t *dct.Transform, p []int16, w, h int) ([]byte, error) {
	n := dct.BlockSize
	p, pw, ph := pad(p, w, h)
	b := dct.NewMatrix(n)
	for by := 0; by < ph; by += n {
		for bx := 0; bx < pw; bx += n {
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					b.Set(y, x, float64(p[(by+y)*pw+bx+x]))
				}
			}
			f, err := t.Forward(b)
			if err != nil {
				return nil, err
			}
			if f, err = t.Quantize(f); err != nil {
				return nil, err
			}
			dst = appendRuns(dst, dct.ZigZagRead(f))
		}
	}
	return dst, nil
}

// decodePlane decodes a w x h plane from the start of runs and
// returns it with the rest of runs.
// blocks returns the number of blocks in a w*h plane.
func blocks(w, h int) int {
	n := dct.BlockSize
	return (w + n - 1) / n * ((h + n - 1) / n)
}

func decodePlane(runs []byte, t *dct.Transform, w, h int) ([]int16, []byte, error) {
	n := dct.BlockSize
	pw, ph := (w+n-1)/n*n, (h+n-1)/n*n
	p := make([]int16, pw*ph)
	for by := 0; by < ph; by += n {
		for bx := 0; bx < pw; bx += n {
			var (
				v   []float64
				err error
			)
			if v, runs, err = expandRuns(runs, n*n); err != nil {
				return nil, nil, err
			}
			b, err := dct.ZigZagWrite(v, n)
			if err != nil {
				return nil, nil, err
			}
			if b, err = t.Dequantize(b); err != nil {
				return nil, nil, err
			}
			if b, err = t.Inverse(b); err != nil {
				return nil, nil, err
			}
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					p[(by+y)*pw+bx+x] = sample(b.At(y, x))
				}
			}
		}
	}
	return crop(p, pw, w, h), runs, nil
}

// sample rounds x to the nearest int16.
func sample(x float64) int16 {
	switch {
	case x >= 1<<15-1:
		return 1<<15 - 1
	case x <= -1<<15:
		return -1 << 15
	}
	return int16(math.Round(x))
}
