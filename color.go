// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imcompress

import "math"

// A ColorSpace holds the luma/chroma conversion matrices.  Rows of
// Forward produce Y, U and V from R, G and B; rows of Inverse produce
// R, G and B from Y, U and V.
type ColorSpace struct {
	Forward [3][3]float64
	Inverse [3][3]float64
}

// YUV returns the colour space used by the lossy codec.
func YUV() ColorSpace {
	return ColorSpace{
		Forward: [3][3]float64{
			{0.299, 0.587, 0.114},
			{-0.299, -0.587, 0.886},
			{0.701, -0.587, -0.114},
		},
		Inverse: [3][3]float64{
			{1, 0, 1},
			{1, -0.194208, -0.50937},
			{1, 1, 0},
		},
	}
}

// Planes converts m into three full resolution planes, rounding to
// the nearest integer.  Values are not clamped.
func (cs *ColorSpace) Planes(m *Image) [3][]int16 {
	n := m.Width * m.Height
	var p [3][]int16
	for c := range p {
		p[c] = make([]int16, n)
	}
	f := &cs.Forward
	for i := 0; i < n; i++ {
		r, g, b := float64(m.Pix[3*i]), float64(m.Pix[3*i+1]), float64(m.Pix[3*i+2])
		for c := range p {
			p[c][i] = int16(math.Round(f[c][0]*r + f[c][1]*g + f[c][2]*b))
		}
	}
	return p
}

// Image converts three w*h planes back to an Image, clamping each
// channel to [0,255].
func (cs *ColorSpace) Image(p [3][]int16, w, h int) *Image {
	m := NewImage(w, h)
	v := &cs.Inverse
	for i := 0; i < w*h; i++ {
		y, u, vv := float64(p[0][i]), float64(p[1][i]), float64(p[2][i])
		for c := 0; c < 3; c++ {
			m.Pix[3*i+c] = clamp(math.Round(v[c][0]*y + v[c][1]*u + v[c][2]*vv))
		}
	}
	return m
}

func clamp(x float64) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Downsample halves both dimensions of the w*h plane p by averaging
// each 2x2 block, rounding to nearest.  w and h must be even.
func Downsample(p []int16, w, h int) []int16 {
	d := make([]int16, 0, w*h/4)
	for y := 0; y+1 < h; y += 2 {
		for x := 0; x+1 < w; x += 2 {
			sum := int(p[y*w+x]) + int(p[y*w+x+1]) +
				int(p[(y+1)*w+x]) + int(p[(y+1)*w+x+1])
			d = append(d, int16(math.Round(float64(sum)/4)))
		}
	}
	return d
}

// Upsample doubles both dimensions of the plane p, replicating each
// value over a 2x2 block.  The result is w*h; w and h must be even.
func Upsample(p []int16, w, h int) []int16 {
	u := make([]int16, w*h)
	hw := w / 2
	for y := 0; y < h/2; y++ {
		for x := 0; x < hw; x++ {
			v := p[y*hw+x]
			i := 2*y*w + 2*x
			u[i], u[i+1], u[i+w], u[i+w+1] = v, v, v, v
		}
	}
	return u
}
