// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package im3 implements the lossy image codec.

The image is converted to YUV and each plane is cut into 8x8 blocks,
padded by edge replication where the size is not a multiple of 8.
When both dimensions are multiples of 16 the chroma planes are first
halved by averaging 2x2 blocks.  Each block is transformed, quantized,
read in zig-zag order and run-length coded as triples of a zero count
byte and a big endian int16 coefficient, ending with three zero bytes.
The runs of the Y, U and V planes are concatenated and Huffman coded.

Container layout, big endian:

	4 bytes   "0IM3"
	2 bytes   width
	2 bytes   height
	          Huffman parameters
	          Huffman payload

The quality scale is not recorded; the decoder must use the same
Options as the encoder.
*/
package im3 // import "github.com/unixdj/imcompress/im3"

import (
	"encoding/binary"
	"fmt"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/dct"
	"github.com/unixdj/imcompress/huffman"
)

// Magic starts every container.
const Magic = "0IM3"

const headerLen = len(Magic) + 4

// DefaultQuality is the quantization scale used with nil Options.
const DefaultQuality = 2.0

// Options are the coding parameters.
type Options struct {
	// Quality scales the quantization table.  Larger values
	// compress more and lose more.
	Quality float64
}

func (o *Options) transform() (*dct.Transform, error) {
	q := DefaultQuality
	if o != nil {
		q = o.Quality
	}
	return dct.NewTransform(dct.BlockSize, dct.DefaultTable(), q)
}

// geometry returns the plane sizes for a w x h image.
func geometry(w, h int) (sub bool, size [3][2]int) {
	sub = w%16 == 0 && h%16 == 0
	size[0] = [2]int{w, h}
	if sub {
		w, h = w/2, h/2
	}
	size[1], size[2] = [2]int{w, h}, [2]int{w, h}
	return sub, size
}

// Encode compresses m.  If o is nil, DefaultQuality is used.
func Encode(m *imcompress.Image, o *Options) ([]byte, error) {
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("im3: %w", err)
	}
	t, err := o.transform()
	if err != nil {
		return nil, fmt.Errorf("im3: %w", err)
	}
	cs := imcompress.YUV()
	p := cs.Planes(m)
	sub, size := geometry(m.Width, m.Height)
	if sub {
		p[1] = imcompress.Downsample(p[1], m.Width, m.Height)
		p[2] = imcompress.Downsample(p[2], m.Width, m.Height)
	}
	var runs []byte
	for c := range p {
		if runs, err = encodePlane(runs, t, p[c], size[c][0], size[c][1]); err != nil {
			return nil, fmt.Errorf("im3: %w", err)
		}
	}
	b := make([]byte, headerLen, headerLen+len(runs)/2)
	copy(b, Magic)
	binary.BigEndian.PutUint16(b[4:], uint16(m.Width))
	binary.BigEndian.PutUint16(b[6:], uint16(m.Height))
	if b, err = huffman.Pack(b, runs); err != nil {
		return nil, fmt.Errorf("im3: %w", err)
	}
	return b, nil
}

// Decode decompresses a container produced by Encode with the same
// Options.
func Decode(data []byte, o *Options) (*imcompress.Image, error) {
	if len(data) < headerLen || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("im3: not a %s container: %w", Magic, imcompress.ErrBadData)
	}
	w := int(binary.BigEndian.Uint16(data[4:]))
	h := int(binary.BigEndian.Uint16(data[6:]))
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("im3: image size %dx%d: %w", w, h, imcompress.ErrBadData)
	}
	t, err := o.transform()
	if err != nil {
		return nil, fmt.Errorf("im3: %w", err)
	}
	runs, err := huffman.Unpack(data[headerLen:])
	if err != nil {
		return nil, fmt.Errorf("im3: %w", err)
	}
	sub, size := geometry(w, h)
	nb := 0
	for _, sz := range size {
		nb += blocks(sz[0], sz[1])
	}
	if len(runs) < runLen*nb {
		return nil, fmt.Errorf("im3: %d bytes of runs for %d blocks: %w",
			len(runs), nb, imcompress.ErrBadData)
	}
	var p [3][]int16
	for c := range p {
		if p[c], runs, err = decodePlane(runs, t, size[c][0], size[c][1]); err != nil {
			return nil, fmt.Errorf("im3: plane %d: %w", c, err)
		}
	}
	if len(runs) != 0 {
		return nil, fmt.Errorf("im3: %d trailing bytes: %w", len(runs), imcompress.ErrBadData)
	}
	if sub {
		p[1] = imcompress.Upsample(p[1], w, h)
		p[2] = imcompress.Upsample(p[2], w, h)
	}
	cs := imcompress.YUV()
	return cs.Image(p, w, h), nil
}
