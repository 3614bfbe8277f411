// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bits implements sequential bit access over byte slices.
// Bits are stored most significant first within each byte, which is
// the convention shared by every coder in this module.
package bits // import "github.com/unixdj/imcompress/bits"

// A Writer is a write buffer for bit-oriented data.
type Writer struct {
	buf  []byte
	bit  uint64 // pending bits, right-aligned
	nbit uint   // number of pending bits, below 8 between calls
}

// NewWriter returns a Writer whose buffer has capacity for n bytes.
func NewWriter(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n)}
}

// WriteBits appends the low nbit bits of bit, most significant
// first.  nbit must not exceed 64.
func (w *Writer) WriteBits(bit uint64, nbit uint) {
	for nbit > 0 {
		k := min(nbit, 56)
		nbit -= k
		w.bit = w.bit<<k | bit>>nbit&(1<<k-1)
		w.nbit += k
		for w.nbit >= 8 {
			w.nbit -= 8
			w.buf = append(w.buf, byte(w.bit>>w.nbit))
		}
		w.bit &= 1<<w.nbit - 1
	}
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(b bool) {
	var v uint64
	if b {
		v = 1
	}
	w.WriteBits(v, 1)
}

// Flush appends the last partial byte, if any, padded with zero bits.
func (w *Writer) Flush() {
	if w.nbit > 0 {
		w.buf = append(w.buf, byte(w.bit<<(8-w.nbit)))
		w.bit, w.nbit = 0, 0
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() int { return len(w.buf)*8 + int(w.nbit) }

// Bytes returns the completed bytes.  Call Flush first to include a
// trailing partial byte.
func (w *Writer) Bytes() []byte { return w.buf }

// A Reader reads bits from a byte slice.
//
// Reading past the end is not an error: missing bits read as zero,
// the read reports !ok and Padding counts the bits supplied.
type Reader struct {
	data []byte
	pos  int // bit offset
	pad  int // zero bits supplied past the end
}

// NewReader returns a Reader reading from b.
func NewReader(b []byte) *Reader {
	return &Reader{data: b}
}

// ReadBits returns the next nbit bits, most significant first.
// nbit must not exceed 64.  ok is false if any bit was past the end
// of data.
func (r *Reader) ReadBits(nbit uint) (bit uint64, ok bool) {
	ok = true
	for nbit > 0 {
		i, off := r.pos>>3, uint(r.pos&7)
		k := min(8-off, nbit)
		var b byte
		if i < len(r.data) {
			b = r.data[i]
		} else {
			ok = false
			r.pad += int(k)
		}
		bit = bit<<k | uint64(b>>(8-off-k))&(1<<k-1)
		r.pos += int(k)
		nbit -= k
	}
	return bit, ok
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (bit, ok bool) {
	v, ok := r.ReadBits(1)
	return v != 0, ok
}

// Offset returns the current byte and bit offsets.
func (r *Reader) Offset() (byteOff, bitOff int) { return r.pos >> 3, r.pos & 7 }

// Padding returns the number of zero bits supplied past the end.
func (r *Reader) Padding() int { return r.pad }
