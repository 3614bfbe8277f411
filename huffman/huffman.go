// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package huffman implements a static, per-stream Huffman coder over bytes.

Encoding builds one code from the byte histogram of the whole input.
The decoder is table driven: every codeword is left-justified to the
maximum codeword length, so a window of that many bits indexes a table
of 2**MaxLen entries directly.

The tree is built in three stages:
 1. Queue the leaves ordered by frequency, ties by symbol value.
 2. Until one tree is left, remove the two lightest trees and queue
    their parent after all trees of equal or lower weight.
 3. Walk the tree depth first with an explicit stack, appending 0 for
    the lighter child and 1 for the heavier one.

Nodes live in an array and refer to their children by index.
*/
package huffman // import "github.com/unixdj/imcompress/huffman"

import (
	"fmt"
	"sort"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/bits"
)

// MaxCodeLen is the longest codeword the coder produces or accepts.
const MaxCodeLen = 31

// code is a Huffman code.
type code struct {
	bit  uint32 // value
	nbit byte   // bit length, 0 for absent symbols
}

// An Entry is a decoder lookup table entry.
type Entry struct {
	Sym  byte   // original symbol
	Len  byte   // codeword length
	Code uint32 // codeword left-justified to Params.MaxLen bits
}

// Params holds everything the decoder needs besides the payload.
type Params struct {
	MaxLen int     // maximum codeword length
	Count  uint64  // number of encoded symbols
	LUT    []Entry // sorted by Code
}

// node is a Huffman tree node.
type node struct {
	freq  uint64
	child [2]int // child indices, -1 for leaves
	sym   byte
}

// buildCodes returns a code table for the symbol frequencies in f and
// the maximum code length.  At least two frequencies must be nonzero.
func buildCodes(f *[256]uint64) (*[256]code, int, error) {
	nodes := make([]node, 0, 2*len(f)-1) // node pool
	for i, v := range f {
		if v != 0 {
			nodes = append(nodes, node{freq: v, child: [2]int{-1, -1}, sym: byte(i)})
		}
	}
	if len(nodes) < 2 {
		return nil, 0, imcompress.ErrEmptyInput
	}
	queue := make([]int, len(nodes))
	for i := range queue {
		queue[i] = i
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return nodes[queue[i]].freq < nodes[queue[j]].freq
	})

	// Build the tree.
	for len(queue) > 1 {
		l, r := queue[0], queue[1]
		queue = queue[2:]
		freq := nodes[l].freq + nodes[r].freq
		nodes = append(nodes, node{freq: freq, child: [2]int{l, r}})
		at := sort.Search(len(queue), func(i int) bool {
			return nodes[queue[i]].freq > freq
		})
		queue = append(queue, 0)
		copy(queue[at+1:], queue[at:])
		queue[at] = len(nodes) - 1
	}

	// Walk it.
	type frame struct {
		n int
		c code
	}
	var c [256]code
	maxlen := 0
	stack := []frame{{n: queue[0]}}
	for len(stack) != 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &nodes[fr.n]
		if nd.child[0] < 0 {
			c[nd.sym] = fr.c
			maxlen = max(maxlen, int(fr.c.nbit))
			continue
		}
		if fr.c.nbit == MaxCodeLen {
			return nil, 0, fmt.Errorf("tree deeper than %d: %w",
				MaxCodeLen, imcompress.ErrCodeTooLong)
		}
		for b, ch := range nd.child {
			stack = append(stack, frame{ch, code{fr.c.bit<<1 | uint32(b), fr.c.nbit + 1}})
		}
	}
	return &c, maxlen, nil
}

// Encode compresses data and returns the packed codewords and the
// decoder parameters.  data must hold at least two distinct bytes.
func Encode(data []byte) ([]byte, *Params, error) {
	var f [256]uint64
	for _, b := range data {
		f[b]++
	}
	c, maxlen, err := buildCodes(&f)
	if err != nil {
		return nil, nil, fmt.Errorf("huffman: %w", err)
	}

	p := &Params{MaxLen: maxlen, Count: uint64(len(data))}
	var nbits uint64
	for i, cc := range c {
		if cc.nbit != 0 {
			p.LUT = append(p.LUT, Entry{byte(i), cc.nbit, cc.bit << (maxlen - int(cc.nbit))})
			nbits += f[i] * uint64(cc.nbit)
		}
	}
	sort.Slice(p.LUT, func(i, j int) bool { return p.LUT[i].Code < p.LUT[j].Code })

	w := bits.NewWriter(int((nbits + 7) / 8))
	for _, b := range data {
		w.WriteBits(uint64(c[b].bit), uint(c[b].nbit))
	}
	w.Flush()
	return w.Bytes(), p, nil
}

// lookupTable returns the direct decoding table for p.  Each value
// holds the symbol in the low byte and the codeword length above it.
//
// The LUT must describe a complete prefix code: sorted ascending,
// starting at zero, each entry's range ending where the next begins
// and the last ending at 2**MaxLen.
func lookupTable(p *Params) ([]uint16, error) {
	lut := p.LUT
	if len(lut) < 2 {
		return nil, fmt.Errorf("%d entries: %w", len(lut), imcompress.ErrInvalidLUT)
	}
	if p.MaxLen < 1 || p.MaxLen > MaxCodeLen {
		return nil, fmt.Errorf("max length %d: %w", p.MaxLen, imcompress.ErrInvalidLUT)
	}
	size := uint64(1) << p.MaxLen
	var next uint64
	for i, e := range lut {
		if e.Len == 0 || int(e.Len) > p.MaxLen || uint64(e.Code) != next {
			return nil, fmt.Errorf("entry %d (%d/%d): %w",
				i, e.Code, e.Len, imcompress.ErrInvalidLUT)
		}
		next += 1 << (p.MaxLen - int(e.Len))
	}
	if next != size {
		return nil, fmt.Errorf("codes cover %d of %d: %w", next, size, imcompress.ErrInvalidLUT)
	}

	t := make([]uint16, size)
	cur := lut[0]
	for i, j := uint64(0), 0; i < size; i++ {
		if j < len(lut) && uint64(lut[j].Code) == i {
			cur = lut[j]
			j++
		}
		t[i] = uint16(cur.Len)<<8 | uint16(cur.Sym)
	}
	return t, nil
}

// Decode decompresses exactly p.Count symbols from payload.
//
// The decoder looks MaxLen bits ahead, so reading runs past the end of
// a well formed payload by up to MaxLen bits; those read as zero.
// Decode returns the number of padding bits supplied.  More than
// p.MaxLen means the payload was truncated.
func Decode(payload []byte, p *Params) (out []byte, padding int, err error) {
	// Every symbol takes at least one bit.
	if p.Count > uint64(len(payload))*8 {
		return nil, 0, fmt.Errorf("huffman: %d symbols in %d bytes: %w",
			p.Count, len(payload), imcompress.ErrBadData)
	}
	t, err := lookupTable(p)
	if err != nil {
		return nil, 0, fmt.Errorf("huffman: %w", err)
	}

	r := bits.NewReader(payload)
	mask := uint64(1)<<p.MaxLen - 1
	x, _ := r.ReadBits(uint(p.MaxLen))
	out = make([]byte, p.Count)
	for i := range out {
		e := t[x]
		out[i] = byte(e)
		n := uint(e >> 8)
		v, _ := r.ReadBits(n)
		x = (x<<n | v) & mask
	}
	return out, r.Padding(), nil
}
