// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package im3

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unixdj/imcompress"
)

func texture(w, h int) *imcompress.Image {
	m := imcompress.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := m.Pix[3*(y*w+x):]
			p[0] = byte(int(128 + 100*math.Sin(float64(x)/3)*math.Cos(float64(y)/5)))
			p[1] = byte(x * 255 / max(w-1, 1))
			p[2] = byte(y * 255 / max(h-1, 1))
		}
	}
	return m
}

func uniform(w, h int, r, g, b byte) *imcompress.Image {
	m := imcompress.NewImage(w, h)
	for i := 0; i < len(m.Pix); i += 3 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
	}
	return m
}

func roundTrip(t *testing.T, m *imcompress.Image, o *Options) *imcompress.Image {
	t.Helper()
	b, err := Encode(m, o)
	require.NoError(t, err)
	d, err := Decode(b, o)
	require.NoError(t, err)
	require.Equal(t, m.Width, d.Width)
	require.Equal(t, m.Height, d.Height)
	require.Len(t, d.Pix, len(m.Pix))
	return d
}

func maxError(a, b *imcompress.Image) int {
	e := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		e = max(e, d, -d)
	}
	return e
}

func TestRedBlock(t *testing.T) {
	m := uniform(8, 8, 255, 0, 0)
	d := roundTrip(t, m, &Options{Quality: 1})
	require.LessOrEqual(t, maxError(m, d), 2)
}

func TestOnePixel(t *testing.T) {
	m := uniform(1, 1, 200, 100, 50)
	for _, q := range []float64{1, 2, 16} {
		d := roundTrip(t, m, &Options{Quality: q})
		require.Equal(t, m.Pix, d.Pix, "quality %g", q)
	}
}

func TestSizes(t *testing.T) {
	for _, sz := range [][2]int{{8, 8}, {16, 16}, {3, 5}, {17, 9}, {24, 16}, {16, 24}, {40, 8}} {
		t.Run(fmt.Sprintf("%dx%d", sz[0], sz[1]), func(t *testing.T) {
			m := texture(sz[0], sz[1])
			d := roundTrip(t, m, nil)
			mse, err := imcompress.MSE(m, d)
			require.NoError(t, err)
			require.Less(t, mse, 100.0)
		})
	}
}

func TestQualityMonotonic(t *testing.T) {
	for _, sz := range [][2]int{{32, 32}, {17, 9}, {24, 16}} {
		m := texture(sz[0], sz[1])
		prev := math.Inf(1)
		for _, q := range []float64{16, 4, 2, 1} {
			d := roundTrip(t, m, &Options{Quality: q})
			mse, err := imcompress.MSE(m, d)
			require.NoError(t, err)
			require.LessOrEqual(t, mse, prev, "%dx%d quality %g", sz[0], sz[1], q)
			prev = mse
		}
	}
}

func TestHigherQualityIsSmaller(t *testing.T) {
	m := texture(32, 32)
	fine, err := Encode(m, &Options{Quality: 1})
	require.NoError(t, err)
	coarse, err := Encode(m, &Options{Quality: 16})
	require.NoError(t, err)
	require.Less(t, len(coarse), len(fine))
}

func TestContainer(t *testing.T) {
	b, err := Encode(texture(300, 2), nil)
	require.NoError(t, err)
	require.Equal(t, []byte("0IM3\x01\x2c\x00\x02"), b[:headerLen])
}

func TestBlackImage(t *testing.T) {
	// Every block is a lone end marker, so the coefficient stream
	// has a single distinct byte.
	_, err := Encode(imcompress.NewImage(16, 16), nil)
	require.ErrorIs(t, err, imcompress.ErrEmptyInput)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(&imcompress.Image{Width: 2, Height: 2}, nil)
	require.ErrorIs(t, err, imcompress.ErrBadData)
	_, err = Encode(texture(8, 8), &Options{})
	require.ErrorIs(t, err, imcompress.ErrEncoding)
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(texture(17, 9), nil)
	require.NoError(t, err)
	zeroWidth := append([]byte(nil), good...)
	zeroWidth[4], zeroWidth[5] = 0, 0
	big := append([]byte(nil), good...)
	big[6], big[7] = 1, 10 // taller than the stream holds
	huge := append([]byte(nil), good...)
	binary.BigEndian.PutUint16(huge[4:], 20000)
	binary.BigEndian.PutUint16(huge[6:], 20000)
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header", good[:headerLen]},
		{"magic", append([]byte("0IM4"), good[4:]...)},
		{"zero width", zeroWidth},
		{"truncated", good[:len(good)-len(good)/4]},
		{"taller", big},
		{"huge", huge},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data, nil)
			require.ErrorIs(t, err, imcompress.ErrBadData)
		})
	}
}

func TestRuns(t *testing.T) {
	v := make([]float64, 64)
	v[0], v[3], v[63] = 608, -2, 1
	b := appendRuns([]byte{0xaa}, v)
	require.Equal(t, []byte{
		0xaa,
		0, 0x02, 0x60,
		2, 0xff, 0xfe,
		59, 0x00, 0x01,
		0, 0, 0,
	}, b)
	got, rest, err := expandRuns(append(b[1:], 9), 64)
	require.NoError(t, err)
	require.Equal(t, v, got)
	require.Equal(t, []byte{9}, rest)

	got, rest, err = expandRuns(appendRuns(nil, make([]float64, 64)), 64)
	require.NoError(t, err)
	require.Equal(t, make([]float64, 64), got)
	require.Empty(t, rest)
}

func TestRunsZeroValue(t *testing.T) {
	// Only an all-zero triple ends a block.  A zero value with a
	// nonzero count never comes out of appendRuns, but decodes as
	// count+1 zeros.
	got, _, err := expandRuns([]byte{3, 0, 0, 0, 0, 5, 0, 0, 0}, 64)
	require.NoError(t, err)
	want := make([]float64, 64)
	want[4] = 5
	require.Equal(t, want, got)
}

func TestRunsErrors(t *testing.T) {
	_, _, err := expandRuns([]byte{0, 0, 1}, 64)
	require.ErrorIs(t, err, imcompress.ErrBadData)
	_, _, err = expandRuns([]byte{0, 0, 1, 0, 0}, 64)
	require.ErrorIs(t, err, imcompress.ErrBadData)
	_, _, err = expandRuns([]byte{63, 0, 1, 0, 0, 1, 0, 0, 0}, 64)
	require.ErrorIs(t, err, imcompress.ErrOutOfRange)
	_, _, err = expandRuns([]byte{64, 0, 1, 0, 0, 0}, 64)
	require.ErrorIs(t, err, imcompress.ErrOutOfRange)
}

func TestPadCrop(t *testing.T) {
	p := []int16{1, 2, 3, 4, 5, 6}
	q, pw, ph := pad(p, 3, 2)
	require.Equal(t, 8, pw)
	require.Equal(t, 8, ph)
	require.Equal(t, []int16{1, 2, 3, 3, 3, 3, 3, 3}, q[:8])
	require.Equal(t, []int16{4, 5, 6, 6, 6, 6, 6, 6}, q[8:16])
	require.Equal(t, q[8:16], q[56:])
	require.Equal(t, p, crop(q, pw, 3, 2))

	q, pw, ph = pad(make([]int16, 64), 8, 8)
	require.Len(t, q, 64)
	require.Equal(t, [2]int{8, 8}, [2]int{pw, ph})
}

func TestGeometry(t *testing.T) {
	sub, size := geometry(32, 16)
	require.True(t, sub)
	require.Equal(t, [3][2]int{{32, 16}, {16, 8}, {16, 8}}, size)
	sub, size = geometry(32, 24)
	require.False(t, sub)
	require.Equal(t, [3][2]int{{32, 24}, {32, 24}, {32, 24}}, size)
	require.Equal(t, 12, blocks(32, 24))
	require.Equal(t, 6, blocks(17, 9))
	require.Equal(t, 1, blocks(1, 1))
}
