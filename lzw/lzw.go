// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lzw implements an encode-only LZW coder with 12-bit codes.

Unlike the classic variant, the dictionary starts out empty.  A
single byte gets a code the first time it is emitted, so the output
cannot be decoded without the dictionary; the coder exists to compare
compression ratios.  Strings are added to the dictionary while it
holds fewer than MaxStrings entries, which leaves room in the 12-bit
code space for all 256 single bytes.

Codes are packed most significant bit first, two codes per three
bytes.  An odd number of codes leaves the low nibble of the last byte
zero.
*/
package lzw // import "github.com/unixdj/imcompress/lzw"

import (
	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/bits"
)

const (
	// CodeWidth is the width of an output code in bits.
	CodeWidth = 12

	// MaxStrings is the dictionary size at which extension stops.
	MaxStrings = 1<<CodeWidth - 256
)

// codes returns the code sequence for data.
func codes(data []byte) []uint16 {
	dict := make(map[string]uint16)
	var (
		out  []uint16
		next uint16
	)
	lookup := func(s string) uint16 {
		c, ok := dict[s]
		if !ok {
			c = next
			dict[s] = c
			next++
		}
		return c
	}
	s := data[:1]
	for i := 1; i < len(data); i++ {
		sc := data[i-len(s) : i+1]
		if _, ok := dict[string(sc)]; ok {
			s = sc
			continue
		}
		out = append(out, lookup(string(s)))
		if len(dict) < MaxStrings {
			dict[string(sc)] = next
			next++
		}
		s = data[i : i+1]
	}
	return append(out, lookup(string(s)))
}

// Encode returns the packed LZW codes for data.  It fails with
// imcompress.ErrEmptyInput if data is empty.
func Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, imcompress.ErrEmptyInput
	}
	c := codes(data)
	w := bits.NewWriter((len(c)*CodeWidth + 7) / 8)
	for _, v := range c {
		w.WriteBits(uint64(v), CodeWidth)
	}
	w.Flush()
	return w.Bytes(), nil
}
