// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package imcompress holds the types shared by the image codecs in its
subpackages: the pixel buffer, the colour space conversion and the
chroma resampling helpers.

The codecs live in subpackages:

  - bits:    bit-level reader and writer
  - huffman: static Huffman coder with a direct lookup decoder
  - dct:     square matrices, 8x8 cosine transform, quantization, zig-zag
  - lzw:     12-bit LZW encoder for compression ratio comparisons
  - bmp:     24-bit BMP reader and writer
  - im3:     lossy transform codec
  - in3:     lossless predictive codec
*/
package imcompress // import "github.com/unixdj/imcompress"

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// MaxSize is the largest width or height the containers can record.
const MaxSize = 0xffff

// An Image is a truecolour pixel buffer.
// It implements image.Image.
type Image struct {
	Width  int
	Height int
	Pix    []byte // RGB triples, row-major, no row padding
}

// NewImage returns a black image of the given size.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]byte, 3*w*h)}
}

// FromImage copies any image.Image into an Image.  Alpha is dropped.
func FromImage(src image.Image) *Image {
	if m, ok := src.(*Image); ok {
		return m.Clone()
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	m := NewImage(b.Dx(), b.Dy())
	for i, j := 0, 0; j < len(m.Pix); i, j = i+4, j+3 {
		copy(m.Pix[j:j+3], rgba.Pix[i:i+3])
	}
	return m
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	return &Image{m.Width, m.Height, append([]byte(nil), m.Pix...)}
}

// Check reports whether m has a size the codecs accept and a buffer
// matching it.
func (m *Image) Check() error {
	switch {
	case m == nil:
		return fmt.Errorf("nil image: %w", ErrBadData)
	case m.Width < 1 || m.Height < 1 || m.Width > MaxSize || m.Height > MaxSize:
		return fmt.Errorf("image size %dx%d: %w", m.Width, m.Height, ErrBadData)
	case len(m.Pix) != 3*m.Width*m.Height:
		return fmt.Errorf("%d pixel bytes for %dx%d image: %w",
			len(m.Pix), m.Width, m.Height, ErrBadData)
	}
	return nil
}

// RGB returns the colour at (x,y).
func (m *Image) RGB(x, y int) (r, g, b uint8, err error) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0, 0, 0, fmt.Errorf("pixel (%d,%d) in %dx%d image: %w",
			x, y, m.Width, m.Height, ErrOutOfRange)
	}
	p := m.Pix[3*(y*m.Width+x):]
	return p[0], p[1], p[2], nil
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image.  Pixels outside the bounds are black.
func (m *Image) At(x, y int) color.Color {
	r, g, b, err := m.RGB(x, y)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{r, g, b, 0xff}
}

// A Renderer displays or stores a decoded image.
type Renderer interface {
	Render(m *Image) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(m *Image) error

// Render calls f(m).
func (f RendererFunc) Render(m *Image) error { return f(m) }
