// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bmp reads and writes uncompressed 24-bit BMP files.

Decode keeps the file split into its header, everything before the
pixel data, and its body, the pixel data itself, since the lossless
codec stores the header verbatim and codes the body.  Rows in the
body are stored bottom-up unless the height is negative, as BGR
triples, and padded to a multiple of 4 bytes.
*/
package bmp // import "github.com/unixdj/imcompress/bmp"

import (
	"encoding/binary"
	"fmt"

	"github.com/unixdj/imcompress"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40

	// MinHeaderLen is the shortest header Decode accepts.
	MinHeaderLen = fileHeaderLen + infoHeaderLen
)

// A File is a decoded BMP file.
type File struct {
	Width   int
	Height  int
	TopDown bool
	Header  []byte // bytes before the pixel data
	Body    []byte // pixel data, at least RowSize(Width)*Height bytes
	Image   *imcompress.Image
}

// RowSize returns the padded length of a row of w pixels.
func RowSize(w int) int {
	return (3*w + 3) &^ 3
}

func badData(format string, a ...any) error {
	return fmt.Errorf("bmp: "+format+": %w", append(a, imcompress.ErrBadData)...)
}

// HeaderLen returns the offset of the pixel data in raw.
func HeaderLen(raw []byte) (int, error) {
	if len(raw) < MinHeaderLen {
		return 0, badData("%d byte file", len(raw))
	}
	if raw[0] != 'B' || raw[1] != 'M' {
		return 0, badData("bad magic %q", raw[:2])
	}
	off := uint64(binary.LittleEndian.Uint32(raw[10:]))
	dib := uint64(binary.LittleEndian.Uint32(raw[14:]))
	switch {
	case dib < infoHeaderLen:
		return 0, badData("%d byte info header", dib)
	case off < fileHeaderLen+dib || off > uint64(len(raw)):
		return 0, badData("data offset %d in %d byte file", off, len(raw))
	}
	return int(off), nil
}

// parse validates the headers in raw and returns the File they
// describe, without the pixel data, and the data offset.
func parse(raw []byte) (*File, int, error) {
	off, err := HeaderLen(raw)
	if err != nil {
		return nil, 0, err
	}
	w := int(int32(binary.LittleEndian.Uint32(raw[18:])))
	h := int(int32(binary.LittleEndian.Uint32(raw[22:])))
	bpp := binary.LittleEndian.Uint16(raw[28:])
	comp := binary.LittleEndian.Uint32(raw[30:])
	f := &File{Width: w, Height: h}
	if h < 0 {
		f.Height, f.TopDown = -h, true
	}
	switch {
	case bpp != 24:
		return nil, 0, badData("%d bits per pixel", bpp)
	case comp != 0:
		return nil, 0, badData("compression type %d", comp)
	case f.Width < 1 || f.Width > imcompress.MaxSize ||
		f.Height < 1 || f.Height > imcompress.MaxSize:
		return nil, 0, badData("image size %dx%d", w, h)
	}
	return f, off, nil
}

// BodyLen returns the length of the pixel data described by the
// headers in raw, RowSize(Width)*Height.  raw needs to hold the
// headers only.
func BodyLen(raw []byte) (int, error) {
	f, _, err := parse(raw)
	if err != nil {
		return 0, err
	}
	return RowSize(f.Width) * f.Height, nil
}

// Decode parses a 24-bit uncompressed BMP file.  A body short by at
// most one row is zero-extended; a shorter one is an error.  The
// returned File does not share memory with raw.
func Decode(raw []byte) (*File, error) {
	f, off, err := parse(raw)
	if err != nil {
		return nil, err
	}
	stride := RowSize(f.Width)
	if short := stride*f.Height - (len(raw) - off); short > stride {
		return nil, badData("%dx%d image body short by %d bytes",
			f.Width, f.Height, short)
	}
	f.Header = append([]byte(nil), raw[:off]...)
	f.Body = make([]byte, max(len(raw)-off, stride*f.Height))
	copy(f.Body, raw[off:])
	f.Image = imcompress.NewImage(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		row := f.Body[y*stride:]
		if !f.TopDown {
			row = f.Body[(f.Height-1-y)*stride:]
		}
		pix := f.Image.Pix[3*y*f.Width : 3*(y+1)*f.Width]
		for i := 0; i < len(pix); i += 3 {
			pix[i], pix[i+1], pix[i+2] = row[i+2], row[i+1], row[i]
		}
	}
	return f, nil
}

// Encode returns m as a bottom-up 24-bit BMP file with a 54 byte
// header.
func Encode(m *imcompress.Image) ([]byte, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	stride := RowSize(m.Width)
	size := MinHeaderLen + stride*m.Height
	b := make([]byte, size)
	b[0], b[1] = 'B', 'M'
	le := binary.LittleEndian
	le.PutUint32(b[2:], uint32(size))
	le.PutUint32(b[10:], MinHeaderLen)
	le.PutUint32(b[14:], infoHeaderLen)
	le.PutUint32(b[18:], uint32(m.Width))
	le.PutUint32(b[22:], uint32(m.Height))
	le.PutUint16(b[26:], 1) // planes
	le.PutUint16(b[28:], 24)
	le.PutUint32(b[34:], uint32(stride*m.Height))
	le.PutUint32(b[38:], 2835) // 72 dpi
	le.PutUint32(b[42:], 2835)
	for y := 0; y < m.Height; y++ {
		row := b[MinHeaderLen+(m.Height-1-y)*stride:]
		pix := m.Pix[3*y*m.Width : 3*(y+1)*m.Width]
		for i := 0; i < len(pix); i += 3 {
			row[i], row[i+1], row[i+2] = pix[i+2], pix[i+1], pix[i]
		}
	}
	return b, nil
}
